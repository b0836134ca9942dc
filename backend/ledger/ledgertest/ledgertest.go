// Package ledgertest opens throwaway sqlite ledgers for tests.
package ledgertest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"socialhub/backend/ledger"
)

// Clock is a settable ledger clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Epoch is where test clocks start.
var Epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// Open returns a migrated sqlite store in t's temp dir, driven by the
// returned clock. The store is closed when the test ends.
func Open(t testing.TB) (*ledger.Store, *Clock) {
	t.Helper()
	clock := NewClock(Epoch)
	path := filepath.Join(t.TempDir(), "ledger.db")
	store, err := ledger.Open(context.Background(), ledger.DriverSQLite, path, ledger.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, clock
}
