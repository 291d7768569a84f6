package device

import "errors"

var (
	ErrDeviceNotFound        = errors.New("device not found")
	ErrDeviceAssigned        = errors.New("device is attached to a cargo and cannot be deleted")
	ErrDeviceOwnedElsewhere  = errors.New("device is already attached to another cargo")
	ErrInvalidType           = errors.New("invalid device type")
	ErrCoordinatesOutOfRange = errors.New("coordinates out of range")
)
