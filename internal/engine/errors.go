package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates a write was attempted on a read-only file.
	ErrReadOnly = errors.New("file is read-only")
)
