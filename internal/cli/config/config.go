// Package config reads the project file that declares the client shells.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/appshell-dev/appshell/internal/cli/endpoint"
)

const ConfigFileName = "appshell.json"

// Kind selects which shell an app runs
type Kind string

const (
	KindNotes  Kind = "notes"
	KindMovies Kind = "movies"
)

// StoreKind selects where the token store lives
type StoreKind string

const (
	StoreFile    StoreKind = "file"
	StoreKeyring StoreKind = "keyring"
	StoreMemory  StoreKind = "memory"
)

// App is one client shell and the environment its requests go to
type App struct {
	Alias      string            `json:"alias"`
	Kind       Kind              `json:"kind"`
	Platform   endpoint.Platform `json:"platform"`
	Mode       endpoint.Mode     `json:"mode"`
	BaseURL    string            `json:"baseUrl"`
	PageOrigin string            `json:"pageOrigin,omitempty"`
	Store      StoreKind         `json:"store,omitempty"` // Defaults to file
}

// Environment returns the app's request environment with APPSHELL_* overrides applied
func (a *App) Environment() endpoint.Environment {
	return endpoint.Environment{
		Platform:   a.Platform,
		Mode:       a.Mode,
		BaseURL:    a.BaseURL,
		PageOrigin: a.PageOrigin,
	}.WithOverrides()
}

// StoreKind returns the configured store, defaulting to file
func (a *App) StoreKind() StoreKind {
	if a.Store == "" {
		return StoreFile
	}
	return a.Store
}

// Validate checks the fields a shell cannot start without
func (a *App) Validate() error {
	if strings.TrimSpace(a.Alias) == "" {
		return fmt.Errorf("app alias is required")
	}
	switch a.Kind {
	case KindNotes, KindMovies:
	default:
		return fmt.Errorf("app %q: invalid kind %q, must be one of: notes, movies", a.Alias, a.Kind)
	}
	switch a.StoreKind() {
	case StoreFile, StoreKeyring, StoreMemory:
	default:
		return fmt.Errorf("app %q: invalid store %q, must be one of: file, keyring, memory", a.Alias, a.Store)
	}
	if err := a.Environment().Validate(); err != nil {
		return fmt.Errorf("app %q: %w", a.Alias, err)
	}
	return nil
}

// Config represents the CLI configuration file
type Config struct {
	Apps []App `json:"apps"`
}

// DefaultConfig returns the two stock shells
func DefaultConfig() *Config {
	return &Config{
		Apps: []App{
			{
				Alias:      "notes",
				Kind:       KindNotes,
				Platform:   endpoint.PlatformH5,
				Mode:       endpoint.ModeDevelopment,
				BaseURL:    "http://127.0.0.1:8088",
				PageOrigin: "http://localhost:3000",
				Store:      StoreFile,
			},
			{
				Alias:    "movies",
				Kind:     KindMovies,
				Platform: endpoint.PlatformApp,
				Mode:     endpoint.ModeProduction,
				BaseURL:  "http://192.168.31.84:8086",
				Store:    StoreFile,
			},
		},
	}
}

// FindConfigFile searches for appshell.json in current directory and parent directories
func FindConfigFile() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	// Search upwards until we find appshell.json or reach root
	dir := currentDir
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("%s not found in %s or any parent directory", ConfigFileName, currentDir)
}

// Load reads and validates the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Apps))
	for i := range cfg.Apps {
		app := &cfg.Apps[i]
		if err := app.Validate(); err != nil {
			return nil, err
		}
		if seen[app.Alias] {
			return nil, fmt.Errorf("duplicate app alias %q", app.Alias)
		}
		seen[app.Alias] = true
	}

	return &cfg, nil
}

// LoadFromCurrentDir loads config from current directory or parent directories
func LoadFromCurrentDir() (*Config, error) {
	configPath, err := FindConfigFile()
	if err != nil {
		return nil, err
	}

	return Load(configPath)
}

// Save writes the configuration to a file
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetAppByAlias returns an app by its alias
func (c *Config) GetAppByAlias(alias string) (*App, error) {
	for i := range c.Apps {
		if c.Apps[i].Alias == alias {
			return &c.Apps[i], nil
		}
	}
	return nil, fmt.Errorf("app with alias '%s' not found", alias)
}

// GetDefaultApp returns the first app in the list
func (c *Config) GetDefaultApp() (*App, error) {
	if len(c.Apps) == 0 {
		return nil, fmt.Errorf("no apps configured in %s", ConfigFileName)
	}
	return &c.Apps[0], nil
}
