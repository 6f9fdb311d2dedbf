// Package bridge mirrors the virtual configuration tree into a host
// directory and feeds host-side edits back into it. Editors and scripts can
// then drive the control plane with plain file operations: mkdir under
// configs/ creates a configuration, writing a value file updates its store,
// rmdir destroys it.
package bridge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/pierregondois/lisa/pkg/logging"
)

const subsystem = "Bridge"

// Bridge keeps a host directory and the virtual filesystem in sync.
type Bridge struct {
	fsys     afero.Fs
	root     string
	debounce time.Duration

	watcher *fsnotify.Watcher

	mu       sync.Mutex
	timers   map[string]*time.Timer
	suppress map[string]time.Time
}

// New prepares a bridge rooted at dir. The directory is created if missing;
// its previous content is replaced by a fresh render of the virtual tree
// when Start runs.
func New(fsys afero.Fs, dir string, debounce time.Duration) (*Bridge, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Bridge{
		fsys:     fsys,
		root:     dir,
		debounce: debounce,
		watcher:  watcher,
		timers:   make(map[string]*time.Timer),
		suppress: make(map[string]time.Time),
	}, nil
}

// Start materializes the virtual tree into the host directory and processes
// host events until ctx is done. It blocks; run it in its own goroutine.
func (b *Bridge) Start(ctx context.Context) error {
	if err := b.materializeAll(); err != nil {
		b.watcher.Close()
		return err
	}
	logging.Info(subsystem, "Bridging virtual tree at %s", b.root)

	defer b.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			b.cancelTimers()
			logging.Info(subsystem, "Bridge stopped")
			return ctx.Err()

		case event, ok := <-b.watcher.Events:
			if !ok {
				return nil
			}
			b.handleEvent(event)

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn(subsystem, "Watcher error: %v", err)
		}
	}
}

// handleEvent coalesces bursts: each path gets one debounce timer, reset on
// every new event, and the path is processed once the burst settles.
func (b *Bridge) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Suppression is one shot: it swallows the first event raised by the
	// bridge's own write, then a user edit inside the window still gets
	// reconciled instead of waiting for some later event on the same path.
	if until, ok := b.suppress[event.Name]; ok {
		delete(b.suppress, event.Name)
		if time.Now().Before(until) {
			return
		}
	}

	if t, ok := b.timers[event.Name]; ok {
		t.Stop()
	}
	path := event.Name
	b.timers[path] = time.AfterFunc(b.debounce, func() {
		b.mu.Lock()
		delete(b.timers, path)
		b.mu.Unlock()
		b.process(path)
	})
}

func (b *Bridge) cancelTimers() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.timers {
		t.Stop()
	}
	b.timers = make(map[string]*time.Timer)
}

// markSelfWrite tells the event loop to ignore the next burst of events
// for a path the bridge itself is about to touch.
func (b *Bridge) markSelfWrite(hostPath string) {
	b.mu.Lock()
	b.suppress[hostPath] = time.Now().Add(b.debounce + time.Second)
	b.mu.Unlock()
}

// virtualPath maps a host path under the bridge root to its virtual path.
func (b *Bridge) virtualPath(hostPath string) (string, bool) {
	rel, err := filepath.Rel(b.root, hostPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "/", true
	}
	return "/" + filepath.ToSlash(rel), true
}

func (b *Bridge) hostPath(virtual string) string {
	return filepath.Join(b.root, filepath.FromSlash(strings.TrimPrefix(virtual, "/")))
}

// process reconciles one settled host path against the virtual tree.
func (b *Bridge) process(hostPath string) {
	virtual, ok := b.virtualPath(hostPath)
	if !ok {
		return
	}

	hostInfo, hostErr := os.Stat(hostPath)
	_, virtErr := b.fsys.Stat(virtual)

	switch {
	case hostErr == nil && hostInfo.IsDir() && virtErr != nil:
		// New host directory: try to create the configuration. Anything
		// structurally invalid is rolled back from the host.
		if err := b.fsys.Mkdir(virtual, 0o755); err != nil {
			logging.Warn(subsystem, "Rejecting host directory %s: %v", hostPath, err)
			os.RemoveAll(hostPath)
			return
		}
		logging.Info(subsystem, "Created configuration for %s", virtual)
		if err := b.materializeDir(virtual); err != nil {
			logging.Error(subsystem, err, "Materializing %s", virtual)
		}

	case hostErr != nil && virtErr == nil:
		// Host path disappeared: destroy the configuration behind it. If
		// the virtual side refuses (generated file, root), re-render.
		if err := b.fsys.RemoveAll(virtual); err != nil {
			logging.Warn(subsystem, "Restoring %s after invalid removal: %v", virtual, err)
			if err := b.restore(virtual); err != nil {
				logging.Error(subsystem, err, "Restoring %s", virtual)
			}
			return
		}
		logging.Info(subsystem, "Destroyed configuration for %s", virtual)

	case hostErr == nil && !hostInfo.IsDir() && virtErr == nil:
		if err := b.ingestFile(hostPath, virtual); err != nil {
			logging.Warn(subsystem, "Write to %s rejected: %v", virtual, err)
		}
		// Re-render regardless, so the host file always shows the store
		// as the virtual side parsed it.
		if err := b.renderFile(virtual); err != nil {
			logging.Error(subsystem, err, "Rendering %s", virtual)
		}

	case hostErr == nil && virtErr != nil:
		// A stray file the virtual tree does not know. Remove it.
		logging.Debug(subsystem, "Removing stray host file %s", hostPath)
		os.Remove(hostPath)
	}
}

// ingestFile replaces the virtual file's content with the host file's. The
// whole buffer goes through one Write call; the write protocol chunks it
// internally and its carry buffer keeps tokens intact across those chunks,
// so splitting the buffer here would break tokens at arbitrary offsets.
func (b *Bridge) ingestFile(hostPath, virtual string) error {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return err
	}

	f, err := b.fsys.OpenFile(virtual, os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}
