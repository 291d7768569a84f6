package device

import (
	"time"

	"github.com/google/uuid"

	domainDevice "cargo-transport/internal/domain/device"
)

type CreateDeviceRequest struct {
	Type      string     `json:"type" validate:"required,oneof=gps rfid sensor"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	CargoID   *uuid.UUID `json:"cargo_id"`
}

type UpdateDeviceRequest struct {
	Type      string     `json:"type" validate:"required,oneof=gps rfid sensor"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	CargoID   *uuid.UUID `json:"cargo_id"`

	// ExpectedVersion is the version token the caller last observed.
	ExpectedVersion int64 `json:"expected_version" validate:"required,min=1"`
}

// RecordLocationRequest carries one position report, typically from the
// MQTT ingestion pipeline.
type RecordLocationRequest struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ObservedAt time.Time `json:"observed_at"`
}

type HistoryQuery struct {
	From *time.Time
	To   *time.Time
}

type DeviceResponse struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Latitude   float64    `json:"latitude"`
	Longitude  float64    `json:"longitude"`
	LastUpdate time.Time  `json:"last_update"`
	CargoID    *uuid.UUID `json:"cargo_id,omitempty"`
	Version    int64      `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type DeviceListResponse struct {
	Devices []DeviceResponse `json:"devices"`
	Total   int              `json:"total"`
}

type HistoryEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	DeviceID  uuid.UUID `json:"device_id"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

type HistoryResponse struct {
	DeviceID uuid.UUID              `json:"device_id"`
	Entries  []HistoryEntryResponse `json:"entries"`
	Total    int                    `json:"total"`
}

func ToDeviceResponse(d *domainDevice.Device) *DeviceResponse {
	if d == nil {
		return nil
	}
	return &DeviceResponse{
		ID:         d.ID,
		Type:       string(d.Type),
		Latitude:   d.Latitude,
		Longitude:  d.Longitude,
		LastUpdate: d.LastUpdate,
		CargoID:    d.CargoID,
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func ToHistoryResponse(deviceID uuid.UUID, entries []*domainDevice.HistoryEntry) *HistoryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			ID:        e.ID,
			DeviceID:  e.DeviceID,
			Latitude:  e.Latitude,
			Longitude: e.Longitude,
			Timestamp: e.Timestamp,
		}
	}
	return &HistoryResponse{DeviceID: deviceID, Entries: out, Total: len(out)}
}
