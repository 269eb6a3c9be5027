// Package config handles loading and validating runtime configuration for the PlayMate API.
// Configuration values (like the database URL and API port) are read from environment variables
// rather than being hardcoded, so the same binary runs in development and production with
// nothing but a different environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	// In production, real env vars are used instead.
	"github.com/joho/godotenv"
	// envconfig decodes the environment into the tagged Config struct, applying defaults.
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port         string `envconfig:"PORT" default:"3000"`                // TCP port the HTTP server listens on
	Env          string `envconfig:"ENV" default:"development"`          // "development" or "production"
	DatabaseURL  string `envconfig:"DATABASE_URL" default:"playmate.db"` // postgres://... or a SQLite file path
	ServiceName  string `envconfig:"SERVICE_NAME" default:"playmate"`    // Reported in logs and traces
	StaticDir    string `envconfig:"STATIC_DIR"`                         // Optional directory of client files served at /
	CORSOrigins  string `envconfig:"CORS_ORIGINS" default:"*"`           // Comma-separated allowed origins
	BcryptCost   int    `envconfig:"BCRYPT_COST" default:"10"`           // Work factor for password hashes
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`        // host:port of an OTLP/HTTP collector; empty disables export

	Redis RedisConfig
	Seed  SeedConfig
}

// RedisConfig selects the session store. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL      string `envconfig:"REDIS_URL"` // host:port
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// SeedConfig controls what is inserted into an empty database at startup.
type SeedConfig struct {
	DefaultTurfs  bool   `envconfig:"SEED_DEFAULT_TURFS" default:"true"`
	Admin         bool   `envconfig:"ADMIN_SEED" default:"true"`
	AdminPhone    string `envconfig:"ADMIN_PHONE" default:"0000000000"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin"`
	AdminZone     string `envconfig:"ADMIN_ZONE" default:"Patia"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine: real environment variables are set by the deployment platform.
	_ = godotenv.Load()

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("config: PORT must not be empty")
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must not be empty")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Seed.Admin && (c.Seed.AdminPhone == "" || c.Seed.AdminPassword == "") {
		return errors.New("config: ADMIN_PHONE and ADMIN_PASSWORD are required when ADMIN_SEED is on")
	}
	return nil
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// AllowedOrigins returns CORS_ORIGINS as the comma-separated list Fiber's CORS middleware expects,
// with blanks around each origin removed.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return "*"
	}
	return strings.Join(out, ",")
}
