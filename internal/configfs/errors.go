package configfs

import (
	"errors"
	"io/fs"
)

// Sentinel errors surfaced by the filesystem. They are wrapped in
// *fs.PathError by the afero surface, so callers test them with errors.Is
// through the filesystem boundary.
var (
	// ErrBusy is returned for any mutation attempted while the owning
	// configuration is active. The required workflow is deactivate, edit,
	// reactivate.
	ErrBusy = errors.New("configuration is active")

	// ErrInvalidInput is returned when a token fails its parameter's parse
	// contract or when the activation file receives a malformed boolean.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when a configuration name has no live
	// configuration behind it.
	ErrNotFound = errors.New("configuration not found")
)

// pathErr wraps a sentinel in the fs.PathError shape users of the afero
// surface expect.
func pathErr(op, path string, err error) *fs.PathError {
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// permErr flags operations the tree structurally never allows: user file
// creation, renames, mkdir outside the configs container, writes to
// read-only files.
func permErr(op, path string) *fs.PathError {
	return pathErr(op, path, fs.ErrPermission)
}
