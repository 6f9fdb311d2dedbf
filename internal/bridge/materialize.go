package bridge

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// materializeAll renders the whole virtual tree into the host root and puts
// every directory under watch. Stale host entries from a previous run are
// cleared first.
func (b *Bridge) materializeAll() error {
	entries, err := os.ReadDir(b.root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(b.root, e.Name())); err != nil {
			return err
		}
	}
	return b.materializeDir("/")
}

// materializeDir renders one virtual directory subtree onto the host and
// watches each directory in it.
func (b *Bridge) materializeDir(virtual string) error {
	return afero.Walk(b.fsys, virtual, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		host := b.hostPath(path)
		b.markSelfWrite(host)

		if info.IsDir() {
			if err := os.MkdirAll(host, 0o755); err != nil {
				return err
			}
			return b.watcher.Add(host)
		}
		return b.renderFile(path)
	})
}

// renderFile writes a virtual file's current content to its host twin. A
// twin already holding the canonical content is left alone, so reconciling
// the tail of a self-write burst raises no further events.
func (b *Bridge) renderFile(virtual string) error {
	data, err := afero.ReadFile(b.fsys, virtual)
	if err != nil {
		return err
	}
	host := b.hostPath(virtual)
	if current, err := os.ReadFile(host); err == nil && bytes.Equal(current, data) {
		return nil
	}
	b.markSelfWrite(host)

	info, err := b.fsys.Stat(virtual)
	if err != nil {
		return err
	}
	// Read-only twins cannot be rewritten in place.
	os.Remove(host)
	return os.WriteFile(host, data, info.Mode().Perm())
}

// restore re-renders a virtual path onto the host after an invalid host-side
// removal.
func (b *Bridge) restore(virtual string) error {
	info, err := b.fsys.Stat(virtual)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return b.materializeDir(virtual)
	}
	return b.renderFile(virtual)
}
