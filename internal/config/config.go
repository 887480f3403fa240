// Package config provides configuration management for auviostream using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort      = 8090
	defaultServerTimeout   = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultHTTPTimeout     = 30 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 1 * time.Second

	// defaultSessionTTL is the client-side session lifetime. The upstream
	// auth services never return a real expiry, so a conservative fixed
	// window is applied from issuance.
	defaultSessionTTL = 3600 * time.Second

	defaultHistoryLimit        = 20
	defaultCompletionThreshold = 0.95
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Progress ProgressConfig `mapstructure:"progress"`
	Jobs     JobsConfig     `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds the local store connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// SyncConfig holds the optional hosted-Postgres mirror configuration.
// An empty DSN disables remote sync entirely; every remote operation
// then degrades to a no-op.
type SyncConfig struct {
	DSN    string `mapstructure:"dsn"`
	UserID string `mapstructure:"user_id"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// UpstreamConfig holds settings for outbound calls to platform APIs.
type UpstreamConfig struct {
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
	UserAgent     string        `mapstructure:"user_agent"`
}

// AuthConfig holds the primary broadcaster login endpoints and credentials.
type AuthConfig struct {
	LoginURL        string        `mapstructure:"login_url"`
	JWTURL          string        `mapstructure:"jwt_url"`
	EntitlementURL  string        `mapstructure:"entitlement_url"`
	TokenURL        string        `mapstructure:"token_url"`
	APIKey          string        `mapstructure:"api_key"`
	OAuthClientID   string        `mapstructure:"oauth_client_id"`
	OAuthClientKey  string        `mapstructure:"oauth_client_key"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
}

// ProgressConfig holds watch-progress tracking configuration.
type ProgressConfig struct {
	HistoryLimit        int     `mapstructure:"history_limit"`
	CompletionThreshold float64 `mapstructure:"completion_threshold"`
}

// JobsConfig holds scheduled background job configuration.
type JobsConfig struct {
	RegistryRefreshCron string `mapstructure:"registry_refresh_cron"`
	HistorySyncCron     string `mapstructure:"history_sync_cron"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with AUVIOSTREAM_ and use
// underscores for nesting. Example: AUVIOSTREAM_SERVER_PORT=8090.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/auviostream")
		v.AddConfigPath("$HOME/.auviostream")
	}

	v.SetEnvPrefix("AUVIOSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file so defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Local store defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "auviostream.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Remote sync defaults: disabled until a DSN is provided.
	v.SetDefault("sync.dsn", "")
	v.SetDefault("sync.user_id", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Upstream defaults
	v.SetDefault("upstream.http_timeout", defaultHTTPTimeout)
	v.SetDefault("upstream.retry_attempts", defaultRetryAttempts)
	v.SetDefault("upstream.retry_delay", defaultRetryDelay)
	v.SetDefault("upstream.user_agent", "Chrome-web-3.0")

	// Primary broadcaster auth defaults
	v.SetDefault("auth.login_url", "https://login.rtbf.be/accounts.login")
	v.SetDefault("auth.jwt_url", "https://login.rtbf.be/accounts.getJWT")
	v.SetDefault("auth.entitlement_url", "https://exposure.api.redbee.live/v2/customer/RTBF/businessunit/Auvio")
	v.SetDefault("auth.token_url", "https://auth-service.rtbf.be/oauth/v1/token")
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.oauth_client_id", "")
	v.SetDefault("auth.oauth_client_key", "")
	v.SetDefault("auth.session_ttl", defaultSessionTTL)

	// Watch progress defaults
	v.SetDefault("progress.history_limit", defaultHistoryLimit)
	v.SetDefault("progress.completion_threshold", defaultCompletionThreshold)

	// Background jobs (6-field cron expressions)
	v.SetDefault("jobs.registry_refresh_cron", "0 0 */6 * * *") // every 6 hours
	v.SetDefault("jobs.history_sync_cron", "0 */15 * * * *")    // every 15 minutes
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Progress.HistoryLimit < 1 {
		return fmt.Errorf("progress.history_limit must be at least 1")
	}
	if c.Progress.CompletionThreshold <= 0 || c.Progress.CompletionThreshold > 1 {
		return fmt.Errorf("progress.completion_threshold must be in (0, 1]")
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}

	return nil
}
