// pkg/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config represents the application configuration.
type Config struct {
	// Layer folders
	CSVFolder    string
	BronzeFolder string
	SilverFolder string
	GoldFolder   string

	// Remote object store (optional)
	RemoteEndpoint string
	RemoteToken    string

	// Ingestion behavior
	AllowSyntheticFallback bool
	RetryAttempts          int
	RetryDelay             time.Duration
	FetchTimeout           time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying the
// conventional relative-path defaults. Absence of remote credentials is
// not an error; the ingestion stage decides how to proceed.
func Load() (*Config, error) {
	cfg := &Config{
		CSVFolder:              getEnv("CSV_FOLDER", "data/source_csv"),
		BronzeFolder:           getEnv("BRONZE_FOLDER", "data/bronze"),
		SilverFolder:           getEnv("SILVER_FOLDER", "data/silver"),
		GoldFolder:             getEnv("GOLD_FOLDER", "data/gold"),
		RemoteEndpoint:         getEnv("REMOTE_ENDPOINT", ""),
		RemoteToken:            getEnv("REMOTE_TOKEN", ""),
		AllowSyntheticFallback: getEnvAsBool("ALLOW_SYNTHETIC_FALLBACK", false),
		RetryAttempts:          getEnvAsInt("RETRY_ATTEMPTS", 3),
		RetryDelay:             time.Duration(getEnvAsInt("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		FetchTimeout:           time.Duration(getEnvAsInt("FETCH_TIMEOUT_MS", 30000)) * time.Millisecond,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures all required configuration is present and valid.
func (c *Config) Validate() error {
	if c.BronzeFolder == "" || c.SilverFolder == "" || c.GoldFolder == "" {
		return errors.New("bronze, silver and gold folders are required")
	}
	if c.RetryAttempts < 0 {
		return errors.New("retry attempts cannot be negative")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch timeout must be positive")
	}
	return nil
}

// HasRemote reports whether a remote object-store endpoint is
// configured.
func (c *Config) HasRemote() bool {
	return c.RemoteEndpoint != ""
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
