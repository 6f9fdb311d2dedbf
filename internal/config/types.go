// Package config loads the daemon configuration from YAML, falling back to
// built-in defaults when no file exists.
package config

// LisaConfig is the top level daemon configuration.
type LisaConfig struct {
	// LogLevel selects logging verbosity: debug, info, warn or error.
	LogLevel string `yaml:"logLevel"`

	// FeatureDir points at the directory of feature definition files.
	// Missing directory means builtins only.
	FeatureDir string `yaml:"featureDir"`

	Bridge BridgeConfig `yaml:"bridge"`
	MCP    MCPConfig    `yaml:"mcp"`
}

// BridgeConfig controls the host directory bridge.
type BridgeConfig struct {
	// Enabled turns the bridge on. Off by default; the MCP server and the
	// shell work without it.
	Enabled bool `yaml:"enabled"`

	// Root is the host directory the virtual tree is mirrored into.
	Root string `yaml:"root"`

	// DebounceMs delays reaction to a burst of filesystem events.
	DebounceMs int `yaml:"debounceMs"`
}

// MCPConfig controls the MCP stdio server.
type MCPConfig struct {
	Enabled bool `yaml:"enabled"`
}
