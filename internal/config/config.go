// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Event store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Event store backend: memory, redis or postgres
	EventStoreBackend string `env:"EVENT_STORE_BACKEND" envDefault:"redis"`

	// Database (PostgreSQL) - required for the postgres backend and
	// the page title/URL resolver
	DatabaseURL string `env:"DATABASE_URL"`

	// Cache (Redis) - rate limit markers, and the redis backend
	RedisURL string `env:"REDIS_URL,required"`

	// Site timezone for day bucketing (IANA name, e.g. Asia/Riyadh)
	SiteTimezone string `env:"SITE_TIMEZONE" envDefault:"UTC"`

	// Admin key granting access to summaries, exports and ops endpoints
	AdminAPIKey string `env:"ADMIN_API_KEY,required"`

	// Ingest anti-forgery token
	IngestTokenSecret string        `env:"INGEST_TOKEN_SECRET,required"`
	IngestTokenTTL    time.Duration `env:"INGEST_TOKEN_TTL" envDefault:"15m"`

	// Rate limiting of ingested events
	RateLimitEnabled bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitTTL     time.Duration `env:"RATE_LIMIT_TTL" envDefault:"3s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g. "https://fiberlite.example")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB; beacons are tiny)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Location resolves the configured site timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.SiteTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SITE_TIMEZONE %q: %w", c.SiteTimezone, err)
	}
	return loc, nil
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints that env tags cannot express.
func (c *Config) Validate() error {
	switch c.EventStoreBackend {
	case BackendMemory, BackendRedis:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("EVENT_STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown EVENT_STORE_BACKEND %q", c.EventStoreBackend)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
