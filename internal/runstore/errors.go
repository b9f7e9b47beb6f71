package runstore

import "errors"

// Domain errors for the runstore package.
var (
	// ErrRunNotFound is returned when no run has the requested ID.
	ErrRunNotFound = errors.New("run: not found")

	// ErrRunExists is returned when a run ID is reused.
	ErrRunExists = errors.New("run: already exists")

	// ErrInvalidRun is returned when a run is missing required fields.
	ErrInvalidRun = errors.New("run: invalid")
)
