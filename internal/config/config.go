// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Session store backends recognized by SESSION_STORE.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Port            string
	APIKey          string
	AssistantID     string
	BaseURL         string
	SessionStore    string
	ThreadsFile     string
	DBPath          string
	RunPollInterval time.Duration
	RunTimeout      time.Duration // 0 disables the run deadline
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		APIKey:          getEnv("OPENAI_API_KEY", ""),
		AssistantID:     getEnv("ASSISTANT_ID", ""),
		BaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		SessionStore:    getEnv("SESSION_STORE", StoreFile),
		ThreadsFile:     getEnv("THREADS_FILE", "./data/threads.json"),
		DBPath:          getEnv("DB_PATH", "./data/readai.db"),
		RunPollInterval: getEnvDuration("RUN_POLL_INTERVAL", time.Second),
		RunTimeout:      getEnvDuration("RUN_TIMEOUT", 2*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY cannot be empty")
	}
	if c.AssistantID == "" {
		return fmt.Errorf("ASSISTANT_ID cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("OPENAI_BASE_URL cannot be empty")
	}
	switch c.SessionStore {
	case StoreFile:
		if c.ThreadsFile == "" {
			return fmt.Errorf("THREADS_FILE cannot be empty")
		}
	case StoreSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreFile, StoreSQLite, c.SessionStore)
	}
	if c.RunPollInterval <= 0 {
		return fmt.Errorf("RUN_POLL_INTERVAL must be > 0")
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("RUN_TIMEOUT cannot be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
