package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err) // explicit path must exist

	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "auviostream.db", cfg.Database.DSN)
	assert.Empty(t, cfg.Sync.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 20, cfg.Progress.HistoryLimit)
	assert.InDelta(t, 0.95, cfg.Progress.CompletionThreshold, 0.0001)
	assert.Equal(t, 3, cfg.Upstream.RetryAttempts)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9999
database:
  driver: sqlite
  dsn: "file::memory:?cache=shared"
sync:
  dsn: "host=db.example.com user=app dbname=auvio"
  user_id: "user-42"
logging:
  level: debug
  format: text
progress:
  history_limit: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Database.DSN)
	assert.Equal(t, "user-42", cfg.Sync.UserID)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, 5, cfg.Progress.HistoryLimit)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("AUVIOSTREAM_SERVER_PORT", "7070")
	t.Setenv("AUVIOSTREAM_LOGGING_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8090},
			Database: DatabaseConfig{Driver: "sqlite", DSN: "test.db"},
			Logging:  LoggingConfig{Level: "info", Format: "json"},
			Auth:     AuthConfig{SessionTTL: time.Hour},
			Progress: ProgressConfig{HistoryLimit: 20, CompletionThreshold: 0.95},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.Server.Port = 0
		assert.ErrorContains(t, cfg.Validate(), "server.port")
	})

	t.Run("bad driver", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "oracle"
		assert.ErrorContains(t, cfg.Validate(), "database.driver")
	})

	t.Run("missing dsn", func(t *testing.T) {
		cfg := base()
		cfg.Database.DSN = ""
		assert.ErrorContains(t, cfg.Validate(), "database.dsn")
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := base()
		cfg.Logging.Level = "trace"
		assert.ErrorContains(t, cfg.Validate(), "logging.level")
	})

	t.Run("bad threshold", func(t *testing.T) {
		cfg := base()
		cfg.Progress.CompletionThreshold = 1.5
		assert.ErrorContains(t, cfg.Validate(), "completion_threshold")
	})

	t.Run("bad history limit", func(t *testing.T) {
		cfg := base()
		cfg.Progress.HistoryLimit = 0
		assert.ErrorContains(t, cfg.Validate(), "history_limit")
	})

	t.Run("bad session ttl", func(t *testing.T) {
		cfg := base()
		cfg.Auth.SessionTTL = 0
		assert.ErrorContains(t, cfg.Validate(), "session_ttl")
	})
}
