package models

import (
	"time"

	"github.com/google/uuid"
)

type ClientModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ClientModel) TableName() string {
	return "clients"
}

type DispatcherModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     *string   `gorm:"type:varchar(255)"`
	Phone     *string   `gorm:"type:varchar(50)"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (DispatcherModel) TableName() string {
	return "dispatchers"
}

type RouteModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	StartPoint    string    `gorm:"type:varchar(255);not null"`
	EndPoint      string    `gorm:"type:varchar(255);not null"`
	WayPoints     string    `gorm:"type:text"` // JSON-encoded list of stops
	EstimatedTime time.Time `gorm:"not null"`
	Version       int64     `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

func (RouteModel) TableName() string {
	return "routes"
}

type VehicleModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	LicensePlate *string   `gorm:"type:varchar(50);uniqueIndex"`
	DriverName   *string   `gorm:"type:varchar(255)"`
	Version      int64     `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (VehicleModel) TableName() string {
	return "vehicles"
}
