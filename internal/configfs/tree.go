package configfs

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/pierregondois/lisa/internal/params"
	"github.com/pierregondois/lisa/pkg/logging"
)

// Generated file names.
const (
	selectFeaturesFile    = "select_features"
	availableFeaturesFile = "available_features"
	activateFile          = "activate"
	configsDirName        = "configs"
)

// rootConfigName is the name under which the root configuration registers.
// The root directory carries the same generated file set as every
// configuration directory, plus the configs container.
const rootConfigName = "root"

type nodeKind int

const (
	kindConfigDir nodeKind = iota
	kindConfigsDir
	kindFeatureDir
	kindSelect
	kindAvailable
	kindActivate
	kindParam
)

// node is one dentry of the synthetic tree. Nodes are only ever created and
// removed by the tree manager under the registry lock.
type node struct {
	name     string
	parent   *node
	kind     nodeKind
	mode     fs.FileMode
	modTime  time.Time
	children []*node

	// cfg is the owning configuration for config dirs and their generated
	// files. The configs container belongs to the root configuration.
	cfg *Config

	// entry backs kindSelect and kindParam nodes.
	entry *Entry

	// param backs kindParam nodes.
	param *params.Param
}

func (n *node) isDir() bool {
	switch n.kind {
	case kindConfigDir, kindConfigsDir, kindFeatureDir:
		return true
	}
	return false
}

func (n *node) child(name string) *node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

func (n *node) addChild(c *node) error {
	if n.child(c.name) != nil {
		return fmt.Errorf("node %s already exists under %s", c.name, n.name)
	}
	c.parent = n
	n.children = append(n.children, c)
	return nil
}

func (n *node) removeChild(name string) {
	for i, c := range n.children {
		if c.name == name {
			c.parent = nil
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// path rebuilds the node's absolute path for error reporting.
func (n *node) path() string {
	if n.parent == nil {
		return "/"
	}
	parent := n.parent.path()
	if parent == "/" {
		return "/" + n.name
	}
	return parent + "/" + n.name
}

// createConfig allocates a configuration, registers it and creates its
// directory node with the full generated file set. parent is nil only for
// the root configuration. Any failure while generating the file set unwinds
// the partially created configuration and its nodes.
//
// Caller holds the registry lock.
func (fsys *FS) createConfig(parent *node, name string) (*Config, error) {
	if fsys.reg.find(name) != nil {
		return nil, fs.ErrExist
	}

	cfg := &Config{
		name:    name,
		entries: make(map[*params.Param]*Entry),
	}
	dir := &node{
		name:    name,
		kind:    kindConfigDir,
		mode:    fs.ModeDir | 0o755,
		modTime: fsys.now(),
		cfg:     cfg,
	}
	cfg.dir = dir

	fsys.reg.insert(cfg)
	if parent != nil {
		if err := parent.addChild(dir); err != nil {
			fsys.reg.remove(cfg)
			return nil, err
		}
	}

	if err := fsys.generateFileSet(cfg, dir, parent == nil); err != nil {
		// Roll back the partially created configuration.
		fsys.reg.remove(cfg)
		if parent != nil {
			parent.removeChild(name)
		}
		return nil, err
	}

	logging.Debug("ConfigFS", "Created configuration %s", name)
	return cfg, nil
}

// generateFileSet populates a configuration directory: the selection file,
// the feature listing, the activation gate, one subdirectory per feature
// that declares parameters, and, at the root only, the configs container.
func (fsys *FS) generateFileSet(cfg *Config, dir *node, isRoot bool) error {
	now := fsys.now()

	cfg.selection = newEntry(cfg, fsys.catalog.SelectionParam())
	if err := dir.addChild(&node{
		name:    selectFeaturesFile,
		kind:    kindSelect,
		mode:    0o644,
		modTime: now,
		cfg:     cfg,
		entry:   cfg.selection,
		param:   fsys.catalog.SelectionParam(),
	}); err != nil {
		return err
	}

	if err := dir.addChild(&node{
		name:    availableFeaturesFile,
		kind:    kindAvailable,
		mode:    0o444,
		modTime: now,
		cfg:     cfg,
	}); err != nil {
		return err
	}

	if err := dir.addChild(&node{
		name:    activateFile,
		kind:    kindActivate,
		mode:    0o644,
		modTime: now,
		cfg:     cfg,
	}); err != nil {
		return err
	}

	if isRoot {
		if err := dir.addChild(&node{
			name:    configsDirName,
			kind:    kindConfigsDir,
			mode:    fs.ModeDir | 0o755,
			modTime: now,
			cfg:     cfg,
		}); err != nil {
			return err
		}
	}

	for _, f := range fsys.catalog.Features() {
		if len(f.Params) == 0 {
			continue
		}
		featDir := &node{
			name:    f.Name,
			kind:    kindFeatureDir,
			mode:    fs.ModeDir | 0o755,
			modTime: now,
			cfg:     cfg,
		}
		if err := dir.addChild(featDir); err != nil {
			return err
		}
		for _, p := range f.Params {
			entry := newEntry(cfg, p)
			cfg.entries[p] = entry
			mode := fs.FileMode(0o644)
			if !p.Writable {
				mode = 0o444
			}
			if err := featDir.addChild(&node{
				name:    p.Name,
				kind:    kindParam,
				mode:    mode,
				modTime: now,
				cfg:     cfg,
				entry:   entry,
				param:   p,
			}); err != nil {
				return err
			}
		}
	}

	return nil
}

// destroyConfig removes the configuration owning dir: registry entry, value
// stores and the directory subtree. A directory without a registered
// configuration is a consistency fault; it is logged and the subtree removal
// proceeds so the operation ends satisfied either way.
//
// Caller holds the registry lock.
func (fsys *FS) destroyConfig(dir *node) {
	cfg := fsys.reg.find(dir.name)
	if cfg == nil {
		logging.Error("ConfigFS", ErrNotFound, "Destroy of %s found no registered configuration", dir.path())
	} else {
		if cfg.active {
			// Removing a live configuration tears its features down first;
			// teardown errors are logged since there is nobody left to
			// correct the configuration afterwards.
			if err := fsys.setActivationLocked(cfg, false); err != nil {
				logging.Error("ConfigFS", err, "Teardown during destroy of %s reported errors", cfg.name)
			}
		}
		fsys.releaseConfig(cfg)
	}

	if dir.parent != nil {
		dir.parent.removeChild(dir.name)
	}
	logging.Debug("ConfigFS", "Destroyed configuration %s", dir.name)
}

// releaseConfig drops a configuration from the registry and releases its
// entries and value stores. Caller holds the registry lock.
func (fsys *FS) releaseConfig(cfg *Config) {
	fsys.reg.remove(cfg)
	if cfg.selection != nil {
		cfg.selection.store.Clear()
	}
	for _, e := range cfg.entries {
		e.store.Clear()
	}
	cfg.entries = nil
	cfg.dir = nil
}
