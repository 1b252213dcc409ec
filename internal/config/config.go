// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all runtime configuration for the API server.
type Config struct {
	Port int `env:"TASKHUB_PORT" envDefault:"8080"`

	// PostgreSQL DSN. When empty the server runs on in-memory stores, which
	// is only useful for local development and tests.
	DatabaseDSN string `env:"TASKHUB_PG_DSN"`

	// Redis URL for the shared task-list cache. When empty an in-process
	// TTL cache is used instead.
	RedisURL string `env:"TASKHUB_REDIS_URL"`

	// Secret used to sign and verify bearer tokens.
	AuthSecret string `env:"TASKHUB_AUTH_SECRET"`

	TokenTTL time.Duration `env:"TASKHUB_TOKEN_TTL" envDefault:"15m"`
	CacheTTL time.Duration `env:"TASKHUB_CACHE_TTL" envDefault:"5m"`

	// Optional bootstrap administrator, created at startup when absent.
	AdminEmail    string `env:"TASKHUB_ADMIN_EMAIL"`
	AdminPassword string `env:"TASKHUB_ADMIN_PASSWORD"`

	ReadTimeout     time.Duration `env:"TASKHUB_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"TASKHUB_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"TASKHUB_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"TASKHUB_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	RateLimitRPS   int   `env:"TASKHUB_RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int   `env:"TASKHUB_RATE_LIMIT_BURST" envDefault:"100"`
	MaxBodyBytes   int64 `env:"TASKHUB_MAX_BODY_BYTES" envDefault:"1048576"`

	// Comma-separated list of allowed CORS origins. Localhost origins are
	// always allowed for development.
	CORSAllowedOrigins string `env:"TASKHUB_CORS_ORIGINS" envDefault:""`
}

// Load parses configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that env tags alone cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return errors.New("TASKHUB_AUTH_SECRET is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.CacheTTL <= 0 {
		return errors.New("cache TTL must be positive")
	}
	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return errors.New("admin email and password must be set together")
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowedOrigins splits the configured CORS origin list.
func (c *Config) AllowedOrigins() []string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
