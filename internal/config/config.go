package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the rink store service.
// Environment variables are automatically parsed from the RINKSTORED_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// StoreDriver selects the backing store: memory or postgres.
	// "auto" picks postgres when a DSN is configured, memory otherwise.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"auto"`

	// Postgres Configuration
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// APIKey, when set, is required as a bearer token on every request.
	APIKey string `envconfig:"API_KEY" default:""`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// ResolveDefaults derives StoreDriver when set to "auto" or empty and
// validates the resulting driver selection.
func (c *Config) ResolveDefaults() error {
	if c.StoreDriver == "" || c.StoreDriver == "auto" {
		if c.PostgresDSN != "" {
			c.StoreDriver = "postgres"
		} else {
			c.StoreDriver = "memory"
		}
	}

	allowed := map[string]bool{"memory": true, "postgres": true}
	if !allowed[c.StoreDriver] {
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}
	if c.StoreDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables should be prefixed with RINKSTORED_
// Example: RINKSTORED_HTTP_PORT, RINKSTORED_POSTGRES_DSN
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("RINKSTORED", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("store_driver", cfg.StoreDriver).
		Str("postgres_dsn_present", func() string {
			if cfg.PostgresDSN != "" {
				return "true"
			}
			return "false"
		}()).
		Bool("api_key_required", cfg.APIKey != "").
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment: EnvTesting,
		HTTPPort:    8080,
		StoreDriver: "memory",
		LogLevel:    "debug",
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
