package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"8080"`

	DB struct {
		Driver string `envconfig:"DB_DRIVER" default:"sqlite3"`
		DSN    string `envconfig:"DB_DSN" default:"database/socialhub.db"`
	} `envconfig:""`

	Auth struct {
		JWTSecret string        `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`
		TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	} `envconfig:""`

	Redis struct {
		Addr     string `envconfig:"REDIS_ADDR"`
		Password string `envconfig:"REDIS_PASSWORD"`
		Channel  string `envconfig:"REDIS_CHANNEL" default:"socialhub:deliveries"`
	} `envconfig:""`

	Server struct {
		RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
		ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
		WSSendBuffer    int           `envconfig:"WS_SEND_BUFFER" default:"256"`
	} `envconfig:""`

	SeedUsers    bool          `envconfig:"SEED_USERS" default:"false"`
	PokeCooldown time.Duration `envconfig:"POKE_COOLDOWN" default:"1h"`
}

func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if cfg.DB.Driver != "sqlite3" && cfg.DB.Driver != "postgres" {
		return cfg, fmt.Errorf("load config: DB_DRIVER must be sqlite3 or postgres, got %q", cfg.DB.Driver)
	}
	if cfg.AppEnv != "dev" && cfg.Auth.JWTSecret == "dev-secret-change-me" {
		return cfg, fmt.Errorf("load config: JWT_SECRET must be set outside dev")
	}
	return cfg, nil
}

func (c AppConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }
