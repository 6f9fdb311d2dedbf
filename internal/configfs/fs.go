package configfs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/pierregondois/lisa/internal/features"
	"github.com/pierregondois/lisa/internal/params"
	"github.com/pierregondois/lisa/pkg/logging"
)

// Catalog is the immutable feature catalog the filesystem renders. It must be
// sealed before the filesystem is constructed.
type Catalog interface {
	Features() []*features.Feature
	SelectionParam() *params.Param
	DrainGlobals()
}

// Activator applies and tears down configurations through the feature
// registry. Both calls run under the registry lock and must be synchronous
// and bounded.
type Activator interface {
	Apply(ctx context.Context, cfg string, selected []string, values map[*params.Param][]params.Value) error
	Teardown(ctx context.Context, cfg string, selected []string) error
}

// FS is the virtual configuration filesystem. It implements afero.Fs over a
// synthetic tree:
//
//	/select_features        RW  feature selection of the root configuration
//	/available_features     RO  newline list of non-hidden features
//	/activate               RW  activation gate of the root configuration
//	/<feature>/<param>      RW  parameter values of the root configuration
//	/configs/               dir mkdir creates a configuration, remove destroys it
//	/configs/<cfg>/...          same generated file set per configuration
//
// One exclusive lock serializes configuration create/destroy, activation
// transitions, parameter writes and whole read sequences. Opening a value
// file for read holds the lock until the handle is closed; a goroutine must
// therefore close its read handle before touching the filesystem again.
type FS struct {
	reg       *registry
	catalog   Catalog
	activator Activator
	root      *node
	now       func() time.Time
}

var _ afero.Fs = (*FS)(nil)

// New builds a filesystem over a sealed catalog. The root of the tree is
// itself a configuration, so host-wide feature selection works without
// creating a named configuration first.
func New(catalog Catalog, activator Activator) (*FS, error) {
	fsys := &FS{
		reg:       newConfigRegistry(),
		catalog:   catalog,
		activator: activator,
		now:       time.Now,
	}

	fsys.reg.mu.Lock()
	defer fsys.reg.mu.Unlock()

	rootCfg, err := fsys.createConfig(nil, rootConfigName)
	if err != nil {
		return nil, err
	}
	fsys.root = rootCfg.dir

	return fsys, nil
}

// Close tears the filesystem down: every live configuration is destroyed
// (active ones are torn down first) and the global parameter stores are
// drained afterwards.
func (fsys *FS) Close() error {
	fsys.reg.mu.Lock()
	defer fsys.reg.mu.Unlock()

	if fsys.root == nil {
		return nil
	}

	if container := fsys.root.child(configsDirName); container != nil {
		for _, c := range append([]*node(nil), container.children...) {
			fsys.destroyConfig(c)
		}
	}
	fsys.destroyConfig(fsys.root)
	fsys.root = nil

	fsys.catalog.DrainGlobals()
	logging.Info("ConfigFS", "Filesystem released")
	return nil
}

// lookup resolves an absolute or root-relative path to its node.
// Caller holds the registry lock.
func (fsys *FS) lookup(name string) (*node, error) {
	if fsys.root == nil {
		return nil, fs.ErrClosed
	}
	cleaned := path.Clean("/" + strings.TrimPrefix(name, "/"))
	if cleaned == "/" {
		return fsys.root, nil
	}

	n := fsys.root
	for _, part := range strings.Split(strings.TrimPrefix(cleaned, "/"), "/") {
		if !n.isDir() {
			return nil, fs.ErrNotExist
		}
		n = n.child(part)
		if n == nil {
			return nil, fs.ErrNotExist
		}
	}
	return n, nil
}

// Name identifies the filesystem implementation.
func (fsys *FS) Name() string { return "lisafs" }

// Create is never allowed: the tree only contains generated files.
func (fsys *FS) Create(name string) (afero.File, error) {
	return nil, permErr("create", name)
}

// Mkdir creates a configuration. The only directory exposing the create
// capability is the configs container; mkdir anywhere else is a structural
// violation.
func (fsys *FS) Mkdir(name string, perm os.FileMode) error {
	fsys.reg.mu.Lock()
	defer fsys.reg.mu.Unlock()

	parentPath, base := path.Split(path.Clean("/" + strings.TrimPrefix(name, "/")))
	if base == "" {
		return pathErr("mkdir", name, fs.ErrExist)
	}

	parent, err := fsys.lookup(parentPath)
	if err != nil {
		return pathErr("mkdir", name, err)
	}
	if parent.kind != kindConfigsDir {
		return permErr("mkdir", name)
	}
	if parent.child(base) != nil {
		return pathErr("mkdir", name, fs.ErrExist)
	}

	if _, err := fsys.createConfig(parent, base); err != nil {
		return pathErr("mkdir", name, err)
	}
	return nil
}

// MkdirAll behaves like Mkdir; the tree never allows more than one missing
// level, so there is nothing extra to create. An existing directory is not
// an error, matching os.MkdirAll.
func (fsys *FS) MkdirAll(p string, perm os.FileMode) error {
	fsys.reg.mu.Lock()
	existing, err := fsys.lookup(p)
	fsys.reg.mu.Unlock()
	if err == nil {
		if existing.isDir() {
			return nil
		}
		return pathErr("mkdir", p, fs.ErrExist)
	}
	return fsys.Mkdir(p, perm)
}

// Open opens a file or directory for reading.
func (fsys *FS) Open(name string) (afero.File, error) {
	return fsys.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a node. Value files opened for read hold the registry lock
// for the whole read sequence; writes take it per call instead.
func (fsys *FS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	fsys.reg.mu.Lock()
	n, err := fsys.lookup(name)
	if err != nil {
		fsys.reg.mu.Unlock()
		return nil, pathErr("open", name, err)
	}

	writing := flag&(os.O_WRONLY|os.O_RDWR) != 0

	if n.isDir() {
		defer fsys.reg.mu.Unlock()
		if writing {
			return nil, pathErr("open", name, fs.ErrInvalid)
		}
		return newDirHandle(n), nil
	}

	switch n.kind {
	case kindSelect, kindParam:
		if writing {
			fsys.reg.mu.Unlock()
			if n.mode&0o200 == 0 {
				return nil, permErr("open", name)
			}
			return newEntryWriter(fsys, n, flag&os.O_APPEND != 0), nil
		}
		// Read side: the lock stays held until Close.
		return newEntryReader(fsys, n), nil

	case kindAvailable:
		defer fsys.reg.mu.Unlock()
		if writing {
			return nil, permErr("open", name)
		}
		return newTextFile(n, fsys.renderAvailable()), nil

	case kindActivate:
		defer fsys.reg.mu.Unlock()
		if writing {
			return newActivateWriter(fsys, n), nil
		}
		return newTextFile(n, renderBool(n.cfg.active)), nil
	}

	fsys.reg.mu.Unlock()
	return nil, pathErr("open", name, fs.ErrInvalid)
}

// Remove destroys the configuration behind a directory node. Generated files
// and the root cannot be removed.
func (fsys *FS) Remove(name string) error {
	fsys.reg.mu.Lock()
	defer fsys.reg.mu.Unlock()
	return fsys.removeLocked("remove", name)
}

// RemoveAll is Remove with os.RemoveAll semantics: removing a missing path
// succeeds.
func (fsys *FS) RemoveAll(p string) error {
	fsys.reg.mu.Lock()
	defer fsys.reg.mu.Unlock()

	err := fsys.removeLocked("removeall", p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (fsys *FS) removeLocked(op, name string) error {
	n, err := fsys.lookup(name)
	if err != nil {
		return pathErr(op, name, err)
	}
	if n.kind != kindConfigDir || n.parent == nil || n.parent.kind != kindConfigsDir {
		return permErr(op, name)
	}
	fsys.destroyConfig(n)
	return nil
}

// Rename is never allowed.
func (fsys *FS) Rename(oldname, newname string) error {
	return permErr("rename", oldname)
}

// Stat describes a node.
func (fsys *FS) Stat(name string) (os.FileInfo, error) {
	fsys.reg.mu.Lock()
	defer fsys.reg.mu.Unlock()

	n, err := fsys.lookup(name)
	if err != nil {
		return nil, pathErr("stat", name, err)
	}
	return fsys.statLocked(n), nil
}

// statLocked renders a FileInfo snapshot. Caller holds the registry lock.
func (fsys *FS) statLocked(n *node) os.FileInfo {
	info := fileInfo{
		name:    n.name,
		mode:    n.mode,
		modTime: n.modTime,
		dir:     n.isDir(),
	}
	switch n.kind {
	case kindSelect, kindParam:
		info.size = int64(len(renderStore(n.entry)))
	case kindAvailable:
		info.size = int64(len(fsys.renderAvailable()))
	case kindActivate:
		info.size = int64(len(renderBool(n.cfg.active)))
	}
	return info
}

// Chmod is not supported; modes are fixed by the generated file set.
func (fsys *FS) Chmod(name string, mode os.FileMode) error {
	return permErr("chmod", name)
}

// Chown is not supported.
func (fsys *FS) Chown(name string, uid, gid int) error {
	return permErr("chown", name)
}

// Chtimes is not supported.
func (fsys *FS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return permErr("chtimes", name)
}

// renderAvailable builds the feature listing: one non-hidden feature name
// per line, in registration order. The catalog is sealed, so no lock is
// needed to walk it.
func (fsys *FS) renderAvailable() []byte {
	var b strings.Builder
	for _, f := range fsys.catalog.Features() {
		if f.Hidden {
			continue
		}
		b.WriteString(f.Name)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func renderBool(v bool) []byte {
	if v {
		return []byte("1\n")
	}
	return []byte("0\n")
}

// renderStore formats a value store, one value per line, in insertion order.
// Caller holds the registry lock.
func renderStore(e *Entry) []byte {
	var b strings.Builder
	for i := 0; i < e.store.Len(); i++ {
		b.WriteString(e.param.Ops.Format(e.store.At(i)))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// fileInfo is an immutable stat snapshot.
type fileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	dir     bool
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return fi.mode }
func (fi fileInfo) ModTime() time.Time { return fi.modTime }
func (fi fileInfo) IsDir() bool        { return fi.dir }
func (fi fileInfo) Sys() interface{}   { return nil }
