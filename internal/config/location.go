package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigPathEnv names the variable that overrides the config file location.
const ConfigPathEnv = "VSS_CONFIG"

// GetConfigPath returns $VSS_CONFIG, or ~/.vss/config when it is unset or
// empty.
func GetConfigPath() (string, error) {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("no %s and no home directory: %w", ConfigPathEnv, err)
	}
	return filepath.Join(home, ".vss", "config"), nil
}

// EnsureConfigDir creates the directory that will hold the config file at
// path.
func EnsureConfigDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}
