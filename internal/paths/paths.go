package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvDir overrides the base directory.
const EnvDir = "ASH_AI_DIR"

// GetBaseDir returns the directory where ash-ai files are stored.
// It checks ASH_AI_DIR first, then falls back to ~/.ash-ai
func GetBaseDir() (string, error) {
	var baseDir string

	if envDir := os.Getenv(EnvDir); envDir != "" {
		baseDir = envDir
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".ash-ai")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create base directory: %w", err)
	}

	return baseDir, nil
}

// GetDomainsDir returns the directory where domain definitions are stored
func GetDomainsDir() (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}

	domainsDir := filepath.Join(baseDir, "domains")
	if err := os.MkdirAll(domainsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create domains directory: %w", err)
	}

	return domainsDir, nil
}

// GetConfigPath returns the full path to the default config.yaml
func GetConfigPath() (string, error) {
	baseDir, err := GetBaseDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(baseDir, "config.yaml"), nil
}
