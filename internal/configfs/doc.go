// Package configfs implements lisa's control-plane filesystem: a synthetic,
// in-process afero.Fs whose directory tree is the configuration surface.
//
// # Tree shape
//
// The tree is shallow and fully generated. The root is itself a
// configuration and carries the same file set as every named one:
//
//	/select_features
//	/available_features
//	/activate
//	/<feature>/<param>
//	/configs/<cfg>/select_features
//	/configs/<cfg>/activate
//	...
//
// Creating a directory under /configs instantiates a configuration with its
// generated file set; removing it destroys the configuration. No other user
// file or directory creation exists, and mkdir anywhere else fails with a
// permission error.
//
// # Write protocol
//
// Parameter files ingest comma separated textual values. Input is scanned in
// bounded chunks with an explicit carry buffer, so a token split across a
// chunk boundary survives intact. Tokens are trimmed, empty tokens skipped,
// and each non-empty token parsed through the parameter's value contract;
// the first parse failure aborts the write, keeping the values already
// appended by the same call. A handle opened without O_APPEND replaces the
// store on its first write; with O_APPEND values accumulate.
//
// # Read protocol
//
// Opening a value file for read acquires the registry lock for the whole
// sequence and releases it on Close, even after partial iteration. The
// reader formats one value per line in insertion order and restarts from
// zero on Seek(0, io.SeekStart) or on re-open. Because the lock is held,
// a goroutine must close its read handle before touching the filesystem
// again.
//
// # Concurrency
//
// One exclusive lock per filesystem instance serializes configuration
// create/destroy, activation transitions, parameter writes and whole read
// sequences. The lock covers bounded synchronous work only; it is never held
// while waiting for more caller input, so each write call computes its own
// carry state.
//
// # Errors
//
// Sentinels ErrBusy, ErrInvalidInput and ErrNotFound surface through the
// afero boundary wrapped in *fs.PathError; structural violations surface as
// fs.ErrPermission. A destroy that finds no registered configuration is
// logged as a consistency fault and treated as already satisfied.
package configfs
