package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const minishellConfigEnvVar = "MINI_SHELL_CONFIG"

// ShellConfig is the startup configuration: a prompt override and a set
// of environment variables exported before the first command runs.
type ShellConfig struct {
	Prompt string            `toml:"prompt"`
	Env    map[string]string `toml:"env"`
}

// LoadConfig resolves, reads, and decodes the config file.
// Cases:
// - --config PATH: returns the decoded config + path, or an error if
//   missing/unreadable/invalid.
// - MINI_SHELL_CONFIG set: same as above.
// - Default path exists: returns the decoded config + path, or an error
//   if unreadable/invalid.
// - Default path missing: returns (nil, "", nil).
func LoadConfig(configFlagPath string) (*ShellConfig, string, error) {
	configPath, explicit, err := resolveConfigPath(configFlagPath)
	if err != nil {
		return nil, "", err
	}
	if configPath == "" {
		return nil, "", nil
	}

	contents, err := os.ReadFile(configPath)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("config file %s: %w", configPath, err)
	}

	var config ShellConfig
	if _, err := toml.Decode(string(contents), &config); err != nil {
		return nil, "", fmt.Errorf("config file %s: %w", configPath, err)
	}

	return &config, configPath, nil
}

// resolveConfigPath returns the resolved path and whether it was
// explicitly set.
func resolveConfigPath(configFlagPath string) (string, bool, error) {
	if configFlagPath != "" {
		return configFlagPath, true, nil
	}

	if envValue, ok := os.LookupEnv(minishellConfigEnvVar); ok && envValue != "" {
		return envValue, true, nil
	}

	defaultPath, err := defaultConfigPath()
	if err != nil {
		return "", false, err
	}

	return defaultPath, false, nil
}

// defaultConfigPath returns the XDG or ~/.config default config path.
func defaultConfigPath() (string, error) {
	if xdgConfigHome, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "mini-shell", "config.toml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "mini-shell", "config.toml"), nil
}

// Apply exports the configured environment variables into the process.
func (c *ShellConfig) Apply() error {
	if c == nil {
		return nil
	}
	for name, value := range c.Env {
		if err := os.Setenv(name, value); err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
	}
	return nil
}
