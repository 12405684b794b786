package project

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates bad user input; nothing was changed.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a stale project or snapshot id.
	ErrNotFound = errors.New("not found")
	// ErrInvariant indicates the operation would break a store invariant.
	ErrInvariant = errors.New("invariant violated")
	// ErrPersistence indicates the durable store could not be written.
	// The in-memory state stays authoritative.
	ErrPersistence = errors.New("persistence failed")

	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = fmt.Errorf("project %w", ErrNotFound)
	// ErrSnapshotNotFound indicates the snapshot doesn't exist in the project.
	ErrSnapshotNotFound = fmt.Errorf("snapshot %w", ErrNotFound)
	// ErrLastProject indicates an attempt to delete the only project.
	ErrLastProject = fmt.Errorf("%w: at least one project must exist", ErrInvariant)
	// ErrWritesBlocked indicates the store could not be read at open, so
	// writing would overwrite projects that were never loaded.
	ErrWritesBlocked = fmt.Errorf("%w: stored projects were not loaded", ErrPersistence)
)
