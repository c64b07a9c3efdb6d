// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Refresh     RefreshConfig `toml:"refresh"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the persistence backend.
// Backend is "local" (badger, default) or "sheet" (Apps Script collaborator).
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`      // local backend data directory
	SeedDemo bool   `toml:"seed_demo"` // seed sample assets into an empty local store
}

// ClientsConfig holds quote source and collaborator configurations
type ClientsConfig struct {
	Yahoo     QuoteSourceConfig `toml:"yahoo"`
	CoinGecko QuoteSourceConfig `toml:"coingecko"`
	Sheet     SheetConfig       `toml:"sheet"`
}

// QuoteSourceConfig holds configuration for an external quote API.
type QuoteSourceConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"` // requests per second
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *QuoteSourceConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SheetConfig holds the spreadsheet script collaborator configuration.
// ScriptURL empty means the sheet backend is unavailable.
type SheetConfig struct {
	ScriptURL string `toml:"script_url"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SheetConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// RefreshConfig controls the background price updater.
type RefreshConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"` // duration string, default "5m"
}

// GetInterval parses and returns the refresh interval.
func (c *RefreshConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(c.Interval)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "local",
			Path:    "data/folio",
		},
		Clients: ClientsConfig{
			Yahoo: QuoteSourceConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "10s",
			},
			CoinGecko: QuoteSourceConfig{
				BaseURL:   "https://api.coingecko.com/api/v3",
				RateLimit: 2,
				Timeout:   "10s",
			},
			Sheet: SheetConfig{
				Timeout: "30s",
			},
		},
		Refresh: RefreshConfig{
			Enabled:  true,
			Interval: "5m",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
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

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("FOLIO_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("FOLIO_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if backend := os.Getenv("FOLIO_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = strings.ToLower(backend)
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("FOLIO_SEED_DEMO"); v != "" {
		config.Storage.SeedDemo = v == "1" || strings.EqualFold(v, "true")
	}

	if url := os.Getenv("FOLIO_SHEET_URL"); url != "" {
		config.Clients.Sheet.ScriptURL = url
	}

	// Interval accepts either a duration string ("5m") or minutes ("5"),
	// matching the original dashboard's minute-denominated knob.
	if iv := os.Getenv("FOLIO_REFRESH_INTERVAL"); iv != "" {
		if _, err := time.ParseDuration(iv); err == nil {
			config.Refresh.Interval = iv
		} else if mins, err := strconv.Atoi(iv); err == nil && mins > 0 {
			config.Refresh.Interval = fmt.Sprintf("%dm", mins)
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
