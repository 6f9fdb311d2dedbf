package configfs

import (
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/pierregondois/lisa/internal/params"
)

// baseFile supplies the afero.File methods a synthetic handle never
// supports. Concrete handles embed it and override what they implement.
type baseFile struct {
	path string
}

func (f *baseFile) Name() string { return f.path }

func (f *baseFile) Read(p []byte) (int, error)                   { return 0, permErr("read", f.path) }
func (f *baseFile) ReadAt(p []byte, off int64) (int, error)      { return 0, permErr("read", f.path) }
func (f *baseFile) Write(p []byte) (int, error)                  { return 0, permErr("write", f.path) }
func (f *baseFile) WriteAt(p []byte, off int64) (int, error)     { return 0, permErr("write", f.path) }
func (f *baseFile) WriteString(s string) (int, error)            { return f.Write([]byte(s)) }
func (f *baseFile) Seek(offset int64, whence int) (int64, error) { return 0, permErr("seek", f.path) }
func (f *baseFile) Truncate(size int64) error                    { return permErr("truncate", f.path) }
func (f *baseFile) Sync() error                                  { return nil }
func (f *baseFile) Close() error                                 { return nil }

func (f *baseFile) Readdir(count int) ([]os.FileInfo, error) {
	return nil, pathErr("readdir", f.path, fs.ErrInvalid)
}

func (f *baseFile) Readdirnames(n int) ([]string, error) {
	return nil, pathErr("readdir", f.path, fs.ErrInvalid)
}

func (f *baseFile) Stat() (os.FileInfo, error) {
	return nil, pathErr("stat", f.path, fs.ErrInvalid)
}

// dirHandle serves Readdir from a snapshot taken at open, under the registry
// lock, so a listing never observes a half-created configuration.
type dirHandle struct {
	baseFile
	info    os.FileInfo
	entries []os.FileInfo
	pos     int
}

var _ afero.File = (*dirHandle)(nil)

// newDirHandle snapshots a directory. Caller holds the registry lock.
func newDirHandle(n *node) *dirHandle {
	h := &dirHandle{
		baseFile: baseFile{path: n.path()},
		info: fileInfo{
			name:    n.name,
			mode:    n.mode,
			modTime: n.modTime,
			dir:     true,
		},
	}
	for _, c := range n.children {
		h.entries = append(h.entries, fileInfo{
			name:    c.name,
			mode:    c.mode,
			modTime: c.modTime,
			dir:     c.isDir(),
		})
	}
	return h
}

func (h *dirHandle) Stat() (os.FileInfo, error) { return h.info, nil }

func (h *dirHandle) Readdir(count int) ([]os.FileInfo, error) {
	if count <= 0 {
		out := h.entries[h.pos:]
		h.pos = len(h.entries)
		return out, nil
	}
	if h.pos >= len(h.entries) {
		return nil, io.EOF
	}
	end := h.pos + count
	if end > len(h.entries) {
		end = len(h.entries)
	}
	out := h.entries[h.pos:end]
	h.pos = end
	return out, nil
}

func (h *dirHandle) Readdirnames(n int) ([]string, error) {
	infos, err := h.Readdir(n)
	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Name()
	}
	return names, err
}

// textFile is a read-only handle over content rendered at open time. Used
// for available_features and for reads of the activation gate.
type textFile struct {
	baseFile
	info    os.FileInfo
	content []byte
	off     int64
}

var _ afero.File = (*textFile)(nil)

func newTextFile(n *node, content []byte) *textFile {
	return &textFile{
		baseFile: baseFile{path: n.path()},
		info: fileInfo{
			name:    n.name,
			size:    int64(len(content)),
			mode:    n.mode,
			modTime: n.modTime,
		},
		content: content,
	}
}

func (f *textFile) Stat() (os.FileInfo, error) { return f.info, nil }

func (f *textFile) Read(p []byte) (int, error) {
	if f.off >= int64(len(f.content)) {
		return 0, io.EOF
	}
	n := copy(p, f.content[f.off:])
	f.off += int64(n)
	return n, nil
}

func (f *textFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.content)) {
		return 0, io.EOF
	}
	n := copy(p, f.content[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (f *textFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset += f.off
	case io.SeekEnd:
		offset += int64(len(f.content))
	}
	if offset < 0 {
		return 0, pathErr("seek", f.path, fs.ErrInvalid)
	}
	f.off = offset
	return offset, nil
}

// entryReader is the read side of a value file. Opening one acquires the
// registry lock for the whole sequence; Close releases it even when the
// consumer only partially iterates. Iteration is lazy, one formatted value
// per line, and restarts from position 0 on Seek(0, io.SeekStart).
type entryReader struct {
	baseFile
	fsys    *FS
	node    *node
	entry   *Entry
	next    int    // index of the next store value to render
	pending []byte // rendered but unread bytes
	closed  bool
}

var _ afero.File = (*entryReader)(nil)

// newEntryReader takes ownership of the registry lock held by the caller.
func newEntryReader(fsys *FS, n *node) *entryReader {
	return &entryReader{
		baseFile: baseFile{path: n.path()},
		fsys:     fsys,
		node:     n,
		entry:    n.entry,
	}
}

func (r *entryReader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, pathErr("read", r.path, fs.ErrClosed)
	}

	for len(r.pending) < len(p) && r.next < r.entry.store.Len() {
		r.pending = append(r.pending, r.entry.param.Ops.Format(r.entry.store.At(r.next))...)
		r.pending = append(r.pending, '\n')
		r.next++
	}

	if len(r.pending) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// Seek supports exactly the restart: position 0 from the start.
func (r *entryReader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, pathErr("seek", r.path, fs.ErrClosed)
	}
	if offset != 0 || whence != io.SeekStart {
		return 0, pathErr("seek", r.path, fs.ErrInvalid)
	}
	r.next = 0
	r.pending = nil
	return 0, nil
}

func (r *entryReader) Stat() (os.FileInfo, error) {
	if r.closed {
		return nil, pathErr("stat", r.path, fs.ErrClosed)
	}
	// The lock is already held by this handle.
	return r.fsys.statLocked(r.node), nil
}

func (r *entryReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.fsys.reg.mu.Unlock()
	return nil
}

// entryWriter is the write side of a value file. Each Write call takes the
// registry lock for its own bounded parse; the handle never holds the lock
// between calls.
type entryWriter struct {
	baseFile
	fsys       *FS
	node       *node
	entry      *Entry
	appendMode bool
	touched    bool
	closed     bool
}

var _ afero.File = (*entryWriter)(nil)

func newEntryWriter(fsys *FS, n *node, appendMode bool) *entryWriter {
	return &entryWriter{
		baseFile:   baseFile{path: n.path()},
		fsys:       fsys,
		node:       n,
		entry:      n.entry,
		appendMode: appendMode,
	}
}

func (w *entryWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, pathErr("write", w.path, fs.ErrClosed)
	}

	w.fsys.reg.mu.Lock()
	defer w.fsys.reg.mu.Unlock()

	if err := w.checkMutable(); err != nil {
		return 0, pathErr("write", w.path, err)
	}

	// Replace semantics: a handle opened without the append flag clears the
	// store before its first tokens land. Later Write calls on the same
	// handle accumulate, so chunked callers do not truncate their own work.
	if !w.appendMode && !w.touched {
		w.entry.store.Clear()
	}
	w.touched = true

	n, err := ingest(w.entry, p)
	if err != nil {
		return n, pathErr("write", w.path, err)
	}
	return n, nil
}

func (w *entryWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }

func (w *entryWriter) Truncate(size int64) error {
	if size != 0 {
		return pathErr("truncate", w.path, fs.ErrInvalid)
	}
	w.fsys.reg.mu.Lock()
	defer w.fsys.reg.mu.Unlock()

	if err := w.checkMutable(); err != nil {
		return pathErr("truncate", w.path, err)
	}
	w.entry.store.Clear()
	w.touched = true
	return nil
}

// checkMutable enforces the activation gate and rejects handles whose
// configuration has been destroyed underneath them. Caller holds the lock.
func (w *entryWriter) checkMutable() error {
	cfg := w.entry.cfg
	if cfg.dir == nil {
		return ErrNotFound
	}
	if cfg.active {
		return ErrBusy
	}
	return nil
}

func (w *entryWriter) Stat() (os.FileInfo, error) {
	w.fsys.reg.mu.Lock()
	defer w.fsys.reg.mu.Unlock()
	return w.fsys.statLocked(w.node), nil
}

func (w *entryWriter) Close() error {
	w.closed = true
	return nil
}

// activateWriter is the write side of the activation gate. Each Write parses
// one truthy boolean and runs the transition under the registry lock.
type activateWriter struct {
	baseFile
	fsys   *FS
	node   *node
	cfg    *Config
	closed bool
}

var _ afero.File = (*activateWriter)(nil)

func newActivateWriter(fsys *FS, n *node) *activateWriter {
	return &activateWriter{
		baseFile: baseFile{path: n.path()},
		fsys:     fsys,
		node:     n,
		cfg:      n.cfg,
	}
}

func (w *activateWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, pathErr("write", w.path, fs.ErrClosed)
	}

	desired, err := params.ParseBool(strings.TrimSpace(string(p)))
	if err != nil {
		return 0, pathErr("write", w.path, ErrInvalidInput)
	}

	w.fsys.reg.mu.Lock()
	defer w.fsys.reg.mu.Unlock()

	if w.cfg.dir == nil {
		return 0, pathErr("write", w.path, ErrNotFound)
	}
	if err := w.fsys.setActivationLocked(w.cfg, desired); err != nil {
		return 0, pathErr("write", w.path, err)
	}
	return len(p), nil
}

func (w *activateWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }

func (w *activateWriter) Stat() (os.FileInfo, error) {
	w.fsys.reg.mu.Lock()
	defer w.fsys.reg.mu.Unlock()
	return w.fsys.statLocked(w.node), nil
}

func (w *activateWriter) Close() error {
	w.closed = true
	return nil
}
