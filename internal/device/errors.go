package device

import "errors"

// Domain errors for the device package.
var (
	// ErrUnknownKind is returned when a kind name is not recognised.
	ErrUnknownKind = errors.New("device: unknown kind")

	// ErrAlreadyRotated is returned when rotating a device that already
	// carries a rotation. Rotations compose on the base device instead.
	ErrAlreadyRotated = errors.New("device: already rotated")

	// ErrInvalidRotation is returned for rotation offsets outside 1..3.
	ErrInvalidRotation = errors.New("device: invalid rotation")

	// ErrUnknownDevice is returned when a device is not in the registry.
	ErrUnknownDevice = errors.New("device: not registered")
)
