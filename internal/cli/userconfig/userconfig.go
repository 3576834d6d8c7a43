package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configDirName  = "appshell"
	configFileName = "config.json"
)

// UserConfig represents the user's local configuration stored in ~/.config/appshell/config.json
type UserConfig struct {
	SelectedApp string `json:"selected_app"`

	// Locations holds the last route (notes) or page (movies) per app alias
	Locations map[string]string `json:"locations,omitempty"`
}

// Dir returns ~/.config/appshell, the root of all per-user state
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName), nil
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
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

// SetSelectedApp updates the selected app alias and saves the config
func SetSelectedApp(alias string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedApp = alias
	return Save(cfg)
}

// GetSelectedApp returns the selected app alias, or empty string if not set
func GetSelectedApp() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedApp, nil
}

// SetLocation remembers where the app's navigator was left
func SetLocation(alias, location string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	if cfg.Locations == nil {
		cfg.Locations = make(map[string]string)
	}
	if location == "" {
		delete(cfg.Locations, alias)
	} else {
		cfg.Locations[alias] = location
	}
	return Save(cfg)
}

// GetLocation returns the remembered location, or empty string if none
func GetLocation(alias string) (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.Locations[alias], nil
}
