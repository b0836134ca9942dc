package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/backend/config"
)

func TestRun_UnknownDriverFails(t *testing.T) {
	var cfg config.AppConfig
	cfg.DB.Driver = "oracle"

	err := run(cfg, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported db driver")
}
