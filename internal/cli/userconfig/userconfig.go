// Package userconfig stores per-user CLI state under
// ~/.config/wakeup/config.json, next to the persisted session profile.
package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "wakeup"
	configFileName = "config.json"
)

// UserConfig represents the user's local CLI state
type UserConfig struct {
	// Registration prefill captured from a failed login or a social
	// sign-in that found no account. Cleared once registration uses it.
	PrefillName  string `json:"prefill_name,omitempty"`
	PrefillEmail string `json:"prefill_email,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &UserConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		// Local preference state is disposable, start over
		return &UserConfig{}, nil
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetPrefill stores registration prefill data
func SetPrefill(name, email string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.PrefillName = name
	cfg.PrefillEmail = email
	return Save(cfg)
}

// TakePrefill returns stored prefill data and clears it
func TakePrefill() (name, email string, err error) {
	cfg, err := Load()
	if err != nil {
		return "", "", err
	}

	name, email = cfg.PrefillName, cfg.PrefillEmail
	cfg.PrefillName, cfg.PrefillEmail = "", ""
	if err := Save(cfg); err != nil {
		return "", "", err
	}

	return name, email, nil
}
