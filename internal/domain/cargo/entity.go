package cargo

import (
	"time"

	"github.com/google/uuid"

	"cargo-transport/internal/domain/device"
)

// Status represents where a cargo currently is in its delivery lifecycle.
type Status string

const (
	StatusPending       Status = "pending"
	StatusRouteAssigned Status = "route_assigned"
	StatusInTransit     Status = "in_transit"
	StatusDelivered     Status = "delivered"
	StatusCancelled     Status = "cancelled"
)

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusRouteAssigned, StatusInTransit, StatusDelivered, StatusCancelled:
		return Status(raw), true
	}
	return "", false
}

// IsTerminal reports whether the cargo has reached an end state. Vehicles
// referenced only by terminal cargos may be deleted.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cargo represents a shipment of goods moving between a dispatcher and a
// client along a route. Devices reference the cargo through their CargoID;
// the cargo does not own device lifecycle.
type Cargo struct {
	ID        uuid.UUID
	SenderID  uuid.UUID
	ClientID  uuid.UUID
	RouteID   uuid.UUID
	VehicleID *uuid.UUID
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	// Version is the optimistic-concurrency token. It is compared, never
	// interpreted, by callers.
	Version int64

	// Devices holds the currently attached tracking devices when the cargo
	// was loaded as a full view.
	Devices []*device.Device
}
