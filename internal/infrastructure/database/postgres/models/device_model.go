package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel represents the database model for Devices. CargoID is the sole
// ownership edge between cargos and devices.
type DeviceModel struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	Type       string     `gorm:"type:varchar(50);not null"`
	Latitude   float64    `gorm:"not null"`
	Longitude  float64    `gorm:"not null"`
	LastUpdate time.Time  `gorm:"not null"`
	CargoID    *uuid.UUID `gorm:"type:uuid;index"`
	Version    int64      `gorm:"not null;default:1"`
	CreatedAt  time.Time  `gorm:"not null"`
	UpdatedAt  time.Time  `gorm:"not null"`

	Cargo *CargoModel `gorm:"foreignKey:CargoID;constraint:OnDelete:SET NULL"`
}

func (DeviceModel) TableName() string {
	return "devices"
}

// DeviceHistoryModel is the append-only position log. Rows are never updated;
// they are removed only through the cascade when the owning device is deleted.
type DeviceHistoryModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	DeviceID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Latitude  float64   `gorm:"not null"`
	Longitude float64   `gorm:"not null"`
	Timestamp time.Time `gorm:"not null;index"`

	Device *DeviceModel `gorm:"foreignKey:DeviceID;constraint:OnDelete:CASCADE"`
}

func (DeviceHistoryModel) TableName() string {
	return "device_history"
}
