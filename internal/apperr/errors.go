// Package apperr defines the sentinel errors shared across the application.
package apperr

import "errors"

var (
	// ErrAccessDenied is returned when a path resolves outside the vault root.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound is returned when a file or directory does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when the target of a create or move is occupied.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotADirectory is returned when a directory operation hits a file (or vice versa).
	ErrNotADirectory = errors.New("not a directory")
	// ErrNotText is returned when a file expected to be text is not valid UTF-8.
	ErrNotText = errors.New("not a text file")
	// ErrDirectoryNotEmpty is returned when deleting a directory that still has entries.
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	// ErrInvalidOperation is returned for structurally invalid requests,
	// e.g. a board move with an out-of-range source index.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrConflict is returned when an If-Match checksum does not match the current content.
	ErrConflict = errors.New("conflict")
	// ErrUnauthenticated is returned for missing or invalid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
)
