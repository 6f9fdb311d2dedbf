package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pierregondois/lisa/pkg/logging"
)

// LoadConfig reads the configuration file at path and overlays it on the
// defaults. A missing file is not an error; every field keeps its default
// unless the file sets it.
func LoadConfig(path string) (LisaConfig, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Debug("Config", "No config file at %s, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logging.Debug("Config", "Loaded configuration from %s", path)
	return cfg, nil
}

func (c LisaConfig) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	if c.Bridge.Enabled && c.Bridge.Root == "" {
		return fmt.Errorf("bridge enabled without a root directory")
	}
	if c.Bridge.DebounceMs < 0 {
		return fmt.Errorf("negative bridge debounce")
	}
	return nil
}
