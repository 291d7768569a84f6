package device

import (
	"time"

	"github.com/google/uuid"
)

// Type classifies the tracking hardware mounted on a cargo.
type Type string

const (
	TypeGPS    Type = "gps"
	TypeRFID   Type = "rfid"
	TypeSensor Type = "sensor"
)

// ParseType validates a raw device type string.
func ParseType(raw string) (Type, bool) {
	switch Type(raw) {
	case TypeGPS, TypeRFID, TypeSensor:
		return Type(raw), true
	}
	return "", false
}

// Device represents a tracking unit. A device belongs to at most one cargo at
// a time; CargoID is the sole ownership edge.
type Device struct {
	ID         uuid.UUID
	Type       Type
	Latitude   float64
	Longitude  float64
	LastUpdate time.Time
	CargoID    *uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Version is the optimistic-concurrency token.
	Version int64
}

// HistoryEntry is one immutable position record. Entries are only ever
// inserted; they disappear solely through the cascade when their device is
// deleted.
type HistoryEntry struct {
	ID        uuid.UUID
	DeviceID  uuid.UUID
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}
