package configfs

import (
	"sync"

	"github.com/pierregondois/lisa/internal/params"
)

// Config is a named, independently activatable bundle of feature selections
// and parameter values. It is created when its directory node appears under
// the configs container and destroyed when the node is removed; registry
// membership and node existence are always consistent.
type Config struct {
	name         string
	active       bool
	activationID string

	// selection is the implicit entry behind select_features.
	selection *Entry

	// entries holds one entry per parameter the configuration has a
	// generated file for.
	entries map[*params.Param]*Entry

	dir *node
}

// Name returns the configuration's identifier.
func (c *Config) Name() string { return c.name }

// Entry binds one (configuration, parameter) pair to its value store.
type Entry struct {
	cfg   *Config
	param *params.Param
	store *params.Store
}

func newEntry(cfg *Config, p *params.Param) *Entry {
	return &Entry{cfg: cfg, param: p, store: params.NewStore()}
}

// registry is the set of live configurations plus the one exclusive lock
// serializing every registry and node-tree mutation.
//
// The lock is scoped to synchronous, bounded work: tree edits, single-call
// chunk parsing, activation delegation and whole read sequences. It is never
// held while waiting for caller input.
type registry struct {
	mu      sync.Mutex
	configs map[string]*Config
}

func newConfigRegistry() *registry {
	return &registry{configs: make(map[string]*Config)}
}

// find returns the configuration with the given name, or nil.
// Caller holds the lock.
func (r *registry) find(name string) *Config {
	return r.configs[name]
}

// insert adds a configuration. Caller holds the lock and has checked the
// name is free.
func (r *registry) insert(c *Config) {
	r.configs[c.name] = c
}

// remove drops a configuration. Caller holds the lock.
func (r *registry) remove(c *Config) {
	delete(r.configs, c.name)
}
