package cargo

import (
	"time"

	"github.com/google/uuid"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDevice "cargo-transport/internal/domain/device"
)

type CreateCargoRequest struct {
	SenderID  uuid.UUID   `json:"sender_id" validate:"required"`
	ClientID  uuid.UUID   `json:"client_id" validate:"required"`
	RouteID   uuid.UUID   `json:"route_id" validate:"required"`
	VehicleID *uuid.UUID  `json:"vehicle_id"`
	Status    string      `json:"status" validate:"omitempty,oneof=pending route_assigned in_transit delivered cancelled"`
	DeviceIDs []uuid.UUID `json:"device_ids"`
}

type UpdateCargoRequest struct {
	SenderID  uuid.UUID   `json:"sender_id" validate:"required"`
	ClientID  uuid.UUID   `json:"client_id" validate:"required"`
	RouteID   uuid.UUID   `json:"route_id" validate:"required"`
	VehicleID *uuid.UUID  `json:"vehicle_id"`
	Status    string      `json:"status" validate:"required,oneof=pending route_assigned in_transit delivered cancelled"`
	DeviceIDs []uuid.UUID `json:"device_ids"`

	// ExpectedVersion is the version token the caller last observed. A stale
	// value makes the whole update fail with a conflict.
	ExpectedVersion int64 `json:"expected_version" validate:"required,min=1"`
}

type DeviceSummary struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	LastUpdate time.Time `json:"last_update"`
}

type CargoResponse struct {
	ID        uuid.UUID  `json:"id"`
	SenderID  uuid.UUID  `json:"sender_id"`
	ClientID  uuid.UUID  `json:"client_id"`
	RouteID   uuid.UUID  `json:"route_id"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
	Status    string     `json:"status"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Devices []DeviceSummary `json:"devices"`

	// UnresolvedDeviceIDs lists requested device ids that did not resolve to
	// existing devices. The operation still succeeded for the rest.
	UnresolvedDeviceIDs []uuid.UUID `json:"unresolved_device_ids,omitempty"`
}

type CargoListResponse struct {
	Cargos []CargoResponse `json:"cargos"`
	Total  int             `json:"total"`
}

func ToCargoResponse(c *domainCargo.Cargo, unresolved []uuid.UUID) *CargoResponse {
	if c == nil {
		return nil
	}

	devices := make([]DeviceSummary, len(c.Devices))
	for i, d := range c.Devices {
		devices[i] = toDeviceSummary(d)
	}

	return &CargoResponse{
		ID:                  c.ID,
		SenderID:            c.SenderID,
		ClientID:            c.ClientID,
		RouteID:             c.RouteID,
		VehicleID:           c.VehicleID,
		Status:              string(c.Status),
		Version:             c.Version,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
		Devices:             devices,
		UnresolvedDeviceIDs: unresolved,
	}
}

func toDeviceSummary(d *domainDevice.Device) DeviceSummary {
	return DeviceSummary{
		ID:         d.ID,
		Type:       string(d.Type),
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
		LastUpdate: d.LastUpdate,
	}
}
