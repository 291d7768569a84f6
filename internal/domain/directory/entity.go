package directory

import (
	"time"

	"github.com/google/uuid"
)

// Client is the receiving party of a cargo.
type Client struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Dispatcher is the sending party of a cargo.
type Dispatcher struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Route describes the path a cargo travels.
type Route struct {
	ID            uuid.UUID
	StartPoint    string
	EndPoint      string
	WayPoints     []string
	EstimatedTime time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// Vehicle is the optional carrier assigned to a cargo.
type Vehicle struct {
	ID           uuid.UUID
	LicensePlate *string
	DriverName   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}
