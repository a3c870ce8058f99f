// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	LogJSON     bool

	// DefaultCurrency is applied to expenses and payments created without
	// an explicit currency.
	DefaultCurrency string

	// DeleteReplacedReceipts controls what happens to the previous receipt
	// artifact when a payment's receipt is replaced. The default (false)
	// retains old receipts for audit; set to true to delete them
	// best-effort after a successful save.
	DeleteReplacedReceipts bool

	// SeedDemoData inserts a demo school on startup for local development.
	SeedDemoData bool

	// TracingEnabled turns on the OpenTelemetry providers. Spans go to
	// OTLPEndpoint when set, to stdout otherwise.
	TracingEnabled bool
	OTLPEndpoint   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(os.Getenv("DEFAULT_CURRENCY"))),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "NGN"
	}
	cfg.LogJSON = os.Getenv("LOG_JSON") == "true"
	cfg.DeleteReplacedReceipts = os.Getenv("DELETE_REPLACED_RECEIPTS") == "true"
	cfg.SeedDemoData = os.Getenv("SEED_DEMO_DATA") == "true"
	cfg.TracingEnabled = os.Getenv("TRACING_ENABLED") == "true"
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

	// Validate required configuration.
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
