package cargo

import "errors"

var (
	ErrCargoNotFound  = errors.New("cargo not found")
	ErrCargoInTransit = errors.New("cargo is in transit and cannot be deleted")
	ErrInvalidStatus  = errors.New("invalid cargo status")
)
