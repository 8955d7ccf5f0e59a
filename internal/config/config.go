// Package config loads contactdb settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/store"
)

// Config holds the process settings.
type Config struct {
	Path          string `env:"CONTACTDB_PATH"          envDefault:"contacts.db"`
	Driver        string `env:"CONTACTDB_DRIVER"        envDefault:"sqlite3"`
	ManagerURI    string `env:"CONTACTDB_MANAGER_URI"`
	NonPrivileged bool   `env:"CONTACTDB_NONPRIVILEGED" envDefault:"false"`
	EventLog      string `env:"CONTACTDB_EVENT_LOG"`
	LogLevel      string `env:"CONTACTDB_LOG_LEVEL"     envDefault:"info"`
	OTelEndpoint  string `env:"CONTACTDB_OTEL_ENDPOINT"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ManagerURI == "" {
		cfg.ManagerURI = contact.DefaultManagerURI
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Driver {
	case store.DriverCGO, store.DriverPure:
	default:
		return fmt.Errorf("CONTACTDB_DRIVER: unsupported driver %q (want %q or %q)",
			c.Driver, store.DriverCGO, store.DriverPure)
	}
	if c.Path == "" {
		return fmt.Errorf("CONTACTDB_PATH: must not be empty")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("CONTACTDB_LOG_LEVEL: %w", err)
	}
	return level, nil
}
