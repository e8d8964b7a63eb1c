package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nebari-dev/registrar/internal/models"
	"gopkg.in/yaml.v3"
)

// CLIConfig holds the CLI configuration.
type CLIConfig struct {
	ComponentsURL string `yaml:"components_url,omitempty"`
	RolesURL      string `yaml:"roles_url,omitempty"`
}

var (
	configDir    string
	cachedConfig *CLIConfig
)

// defaultURLs point at the default ports of a local `registrar serve`.
var defaultURLs = map[string]string{
	"components": "http://localhost:5001",
	"roles":      "http://localhost:5002",
}

// getConfigDir returns the platform-specific config directory.
func getConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}

	if envDir := os.Getenv("REGISTRAR_CONFIG_DIR"); envDir != "" {
		configDir = envDir
		return configDir, nil
	}

	baseDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}

	configDir = filepath.Join(baseDir, "registrar")
	return configDir, nil
}

// loadConfig loads the CLI config from disk.
func loadConfig() (*CLIConfig, error) {
	if cachedConfig != nil {
		return cachedConfig, nil
	}

	dir, err := getConfigDir()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			cachedConfig = &CLIConfig{}
			applyEnvOverrides(cachedConfig)
			return cachedConfig, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cachedConfig = &cfg
	applyEnvOverrides(cachedConfig)
	return cachedConfig, nil
}

// applyEnvOverrides overrides config values with environment variables if set.
func applyEnvOverrides(cfg *CLIConfig) {
	if v := os.Getenv("REGISTRAR_COMPONENTS_URL"); v != "" {
		cfg.ComponentsURL = v
	}
	if v := os.Getenv("REGISTRAR_ROLES_URL"); v != "" {
		cfg.RolesURL = v
	}
}

// serviceURL resolves the base URL for kind: the flag value, then env or
// config file, then the local default.
func serviceURL(kind models.Kind, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}

	switch kind.Plural {
	case "components":
		if cfg.ComponentsURL != "" {
			return cfg.ComponentsURL, nil
		}
	case "roles":
		if cfg.RolesURL != "" {
			return cfg.RolesURL, nil
		}
	}
	return defaultURLs[kind.Plural], nil
}
