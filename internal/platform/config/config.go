// Package config loads application configuration from environment variables.
// All variables use the FENN_ prefix.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Session     SessionConfig
	Log         LogConfig
	ContentPath string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// DatabaseConfig holds PostgreSQL connection settings. An empty URL
// keeps progress and correction history in process memory.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Redis connection settings. An empty URL keeps
// sessions in process memory.
type CacheConfig struct {
	URL string
}

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	TTL time.Duration
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with FENN_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("FENN_SERVER_PORT", 8080),
			Host: envStr("FENN_SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			URL:      envStr("FENN_DATABASE_URL", ""),
			MaxConns: envInt("FENN_DATABASE_MAX_CONNS", 25),
			MinConns: envInt("FENN_DATABASE_MIN_CONNS", 5),
		},
		Cache: CacheConfig{
			URL: envStr("FENN_CACHE_URL", ""),
		},
		Session: SessionConfig{
			TTL: envDuration("FENN_SESSION_TTL", 24*time.Hour),
		},
		Log: LogConfig{
			Level:  envStr("FENN_LOG_LEVEL", "info"),
			Format: envStr("FENN_LOG_FORMAT", "json"),
		},
		ContentPath: envStr("FENN_CONTENT_PATH", "./content"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is coherent.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("FENN_SERVER_PORT must be a valid port, got %d", c.Server.Port)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("FENN_LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("FENN_LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("FENN_SESSION_TTL must be positive, got %s", c.Session.TTL)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
