// Package common provides shared utilities for Cartera
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Cartera
type Config struct {
	Environment       string        `toml:"environment"`
	ReportingCurrency string        `toml:"reporting_currency"` // Default currency for portfolio totals ("USD" or "PEN", default "USD")
	Server            ServerConfig  `toml:"server"`
	Storage           StorageConfig `toml:"storage"`
	Clients           ClientsConfig `toml:"clients"`
	Logging           LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the SQLite database location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds market-data provider client configurations
type ClientsConfig struct {
	Polygon      ProviderConfig `toml:"polygon"`
	AlphaVantage ProviderConfig `toml:"alphavantage"`
	Yahoo        ProviderConfig `toml:"yahoo"`
	SBS          ProviderConfig `toml:"sbs"`

	// RefreshDelay is the pause between tickers during a bulk price refresh,
	// to stay under free-tier provider rate limits.
	RefreshDelay string `toml:"refresh_delay"`
}

// GetRefreshDelay parses and returns the inter-ticker refresh delay.
func (c *ClientsConfig) GetRefreshDelay() time.Duration {
	d, err := time.ParseDuration(c.RefreshDelay)
	if err != nil {
		return time.Second
	}
	return d
}

// ProviderConfig holds configuration for one external data provider.
type ProviderConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *ProviderConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment:       "development",
		ReportingCurrency: "USD",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/cartera.db",
		},
		Clients: ClientsConfig{
			Polygon: ProviderConfig{
				BaseURL:   "https://api.polygon.io",
				RateLimit: 5,
				Timeout:   "30s",
			},
			AlphaVantage: ProviderConfig{
				BaseURL:   "https://www.alphavantage.co",
				RateLimit: 5,
				Timeout:   "30s",
			},
			Yahoo: ProviderConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
			},
			SBS: ProviderConfig{
				BaseURL:   "https://www.sbs.gob.pe",
				RateLimit: 2,
				Timeout:   "30s",
			},
			RefreshDelay: "1s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	// Pick up a local .env if present before reading env overrides.
	_ = godotenv.Load()

	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)
	validateReportingCurrency(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CARTERA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("CARTERA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("CARTERA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("CARTERA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("CARTERA_DB_PATH"); path != "" {
		config.Storage.Path = path
	}

	if rc := os.Getenv("CARTERA_REPORTING_CURRENCY"); rc != "" {
		config.ReportingCurrency = strings.ToUpper(rc)
	}

	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		config.Clients.Polygon.APIKey = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		config.Clients.AlphaVantage.APIKey = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// validateReportingCurrency ensures ReportingCurrency is "USD" or "PEN", defaulting to "USD".
func validateReportingCurrency(config *Config) {
	rc := strings.ToUpper(config.ReportingCurrency)
	if rc != "USD" && rc != "PEN" {
		rc = "USD"
	}
	config.ReportingCurrency = rc
}
