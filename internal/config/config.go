// Package config manages the xman CLI configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir is used when no base directory is configured or given.
	DefaultBaseDir = "experiments"

	// DefaultPruneKeep is how many recent runs prune retains by default.
	DefaultPruneKeep = 10
)

// Config represents the xman user configuration
type Config struct {
	BaseDir   string `json:"baseDir,omitempty"`
	PruneKeep int    `json:"pruneKeep,omitempty"`
}

// Path returns the location of the configuration file
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "xman", "config.json"), nil
}

// Load reads the user configuration, returning defaults when no file exists
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return withDefaults(&Config{}), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from an explicit path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Config doesn't exist - return defaults
		return withDefaults(&Config{}), nil
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return withDefaults(&config), nil
}

// SaveTo writes the configuration to an explicit path, creating the parent
// directory if needed
func SaveTo(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configJSON, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, configJSON, 0o600)
}

func withDefaults(config *Config) *Config {
	if config.BaseDir == "" {
		config.BaseDir = DefaultBaseDir
	}
	if config.PruneKeep <= 0 {
		config.PruneKeep = DefaultPruneKeep
	}
	return config
}
