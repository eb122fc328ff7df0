// Package errs defines the error kinds shared across the engine.
//
// Batch operations (directory walks, cache purges, identity mutation over
// many artifacts) count failures and continue; single-target operations
// (one backup, one restore, one process kill) fail fast. Callers classify
// failures with errors.Is against the sentinels below.
package errs

import "errors"

var (
	// ErrValidation indicates a bad path, name, or input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a missing application, backup, or target path.
	ErrNotFound = errors.New("not found")

	// ErrInsufficientSpace indicates the backup volume lacks the required
	// free space (1.5x the source size).
	ErrInsufficientSpace = errors.New("insufficient disk space")

	// ErrPermission indicates an access-denied failure.
	ErrPermission = errors.New("permission denied")

	// ErrCorruption indicates a checksum mismatch or an unparseable
	// structured document.
	ErrCorruption = errors.New("corruption detected")

	// ErrProcess indicates a process terminate/kill failure.
	ErrProcess = errors.New("process error")
)
