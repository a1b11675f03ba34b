// Package config loads the CLI project configuration: where the backend
// lives. Resolution order: WAKEUP_API_URL env var, wakeup.json in the
// current directory, then the local development default.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	configFileName = "wakeup.json"
	defaultAPIURL  = "http://localhost:8080"
)

// Config represents the project configuration file
type Config struct {
	APIURL string `json:"api_url"`
}

// Load resolves the backend base URL
func Load() (*Config, error) {
	if envURL := os.Getenv("WAKEUP_API_URL"); envURL != "" {
		return &Config{APIURL: envURL}, nil
	}

	data, err := os.ReadFile(configFileName)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{APIURL: defaultAPIURL}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", configFileName, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configFileName, err)
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}

	return &cfg, nil
}

// Save writes the project configuration to the current directory
func Save(cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFileName, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configFileName, err)
	}
	return nil
}
