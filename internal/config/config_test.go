package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONTACTDB_PATH", "CONTACTDB_DRIVER", "CONTACTDB_MANAGER_URI", "CONTACTDB_NONPRIVILEGED",
		"CONTACTDB_EVENT_LOG", "CONTACTDB_LOG_LEVEL", "CONTACTDB_OTEL_ENDPOINT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Path:       "contacts.db",
		Driver:     "sqlite3",
		ManagerURI: contact.DefaultManagerURI,
		LogLevel:   "info",
	}, cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTACTDB_PATH", "/tmp/book.db")
	t.Setenv("CONTACTDB_DRIVER", "sqlite")
	t.Setenv("CONTACTDB_MANAGER_URI", "org.example.book")
	t.Setenv("CONTACTDB_NONPRIVILEGED", "true")
	t.Setenv("CONTACTDB_EVENT_LOG", "/tmp/events.jsonl")
	t.Setenv("CONTACTDB_LOG_LEVEL", "debug")
	t.Setenv("CONTACTDB_OTEL_ENDPOINT", "http://localhost:4318")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/book.db", cfg.Path)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "org.example.book", cfg.ManagerURI)
	assert.True(t, cfg.NonPrivileged)
	assert.Equal(t, "/tmp/events.jsonl", cfg.EventLog)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"driver", "CONTACTDB_DRIVER", "postgres", "unsupported driver"},
		{"level", "CONTACTDB_LOG_LEVEL", "chatty", "CONTACTDB_LOG_LEVEL"},
		{"bool", "CONTACTDB_NONPRIVILEGED", "maybe", "parse env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
