package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrDeviceExists is returned when creating a device with an ID that already exists.
	ErrDeviceExists = errors.New("device: already exists")

	// ErrInvalidDevice is returned when device validation fails.
	ErrInvalidDevice = errors.New("device: invalid")

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidSlug is returned when a slug format is invalid.
	ErrInvalidSlug = errors.New("device: invalid slug")

	// ErrInvalidRoom is returned when a device has no room reference.
	ErrInvalidRoom = errors.New("device: invalid room")

	// ErrInvalidTypeID is returned when a device type identifier is empty or too long.
	ErrInvalidTypeID = errors.New("device: invalid type id")
)
