package config

import (
	"os"
	"path/filepath"
)

// GetDefaultConfig returns the built-in configuration used when no config
// file is present. Paths live under the user's config and state directories.
func GetDefaultConfig() LisaConfig {
	return LisaConfig{
		LogLevel:   "info",
		FeatureDir: filepath.Join(defaultConfigDir(), "features"),
		Bridge: BridgeConfig{
			Enabled:    false,
			Root:       filepath.Join(defaultStateDir(), "fs"),
			DebounceMs: 200,
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}

// GetDefaultConfigPathOrPanic returns the default config file location.
// Panics when the home directory cannot be determined, which means the
// environment is too broken to run at all.
func GetDefaultConfigPathOrPanic() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic("cannot determine user home directory: " + err.Error())
	}
	return filepath.Join(home, ".config", "lisa")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		panic("cannot determine user home directory: " + err.Error())
	}
	return filepath.Join(home, ".local", "state", "lisa")
}
