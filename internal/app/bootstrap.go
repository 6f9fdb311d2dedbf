// Package app wires the subsystems together: configuration, logging, the
// feature catalog, the virtual filesystem and its api handlers. Both the
// daemon and the interactive front ends bootstrap through it.
package app

import (
	"fmt"
	"os"

	"github.com/pierregondois/lisa/internal/config"
	"github.com/pierregondois/lisa/internal/configfs"
	"github.com/pierregondois/lisa/internal/features"
	"github.com/pierregondois/lisa/pkg/logging"
)

// Options selects bootstrap behavior per front end.
type Options struct {
	// ConfigPath overrides the default config file location.
	ConfigPath string

	// LogLevel overrides the configured level when non-empty.
	LogLevel string

	// Quiet routes logs to the void; the shell uses it so log lines do
	// not interleave with the prompt.
	Quiet bool
}

// App holds the bootstrapped subsystems.
type App struct {
	Config   config.LisaConfig
	Registry *features.Registry
	FS       *configfs.FS
}

// Bootstrap loads configuration, initializes logging, builds the sealed
// feature catalog and the filesystem, and registers the api handlers.
func Bootstrap(opts Options) (*App, error) {
	path := opts.ConfigPath
	if path == "" {
		path = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	out := os.Stderr
	if opts.Quiet {
		devnull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err == nil {
			out = devnull
		}
	}
	logging.Init(logging.ParseLevel(level), out)

	registry := features.NewRegistry()
	if err := features.RegisterBuiltins(registry); err != nil {
		return nil, fmt.Errorf("registering builtin features: %w", err)
	}
	if err := features.LoadDefinitions(registry, cfg.FeatureDir); err != nil {
		return nil, fmt.Errorf("loading feature definitions: %w", err)
	}
	registry.Seal()

	fsys, err := configfs.New(registry, registry)
	if err != nil {
		return nil, fmt.Errorf("building filesystem: %w", err)
	}

	features.RegisterAPIHandler(registry)
	configfs.RegisterAPIHandler(fsys)

	logging.Info("Bootstrap", "Initialized with %d features", len(registry.Features()))
	return &App{Config: cfg, Registry: registry, FS: fsys}, nil
}

// Close releases the filesystem, tearing down active configurations and
// draining the global stores.
func (a *App) Close() error {
	return a.FS.Close()
}
