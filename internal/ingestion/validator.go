package ingestion

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// ValidateLocationMessage validates a location report before it enters the
// processing queue. Coordinate bounds are re-checked downstream too; this
// keeps obviously broken payloads from occupying buffer slots.
func ValidateLocationMessage(msg *LocationMessage) error {
	if msg.DeviceID == "" {
		return &ValidationError{Field: "device_id", Message: "device_id is required"}
	}
	if _, err := uuid.Parse(msg.DeviceID); err != nil {
		return &ValidationError{Field: "device_id", Message: "device_id must be valid UUID"}
	}

	if msg.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Message: "timestamp is required"}
	}

	if msg.Latitude < -90 || msg.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"}
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"}
	}

	if msg.Speed != nil && *msg.Speed < 0 {
		return &ValidationError{Field: "speed", Message: "speed must be non-negative"}
	}

	return nil
}
