package models

import (
	"time"

	"github.com/google/uuid"
)

// CargoModel represents the database model for Cargos.
type CargoModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	SenderID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	RouteID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	VehicleID *uuid.UUID `gorm:"type:uuid;index"`
	Status    string     `gorm:"type:varchar(50);not null;default:'pending';index"`
	Version   int64      `gorm:"not null;default:1"`
	CreatedAt time.Time  `gorm:"not null;index"`
	UpdatedAt time.Time  `gorm:"not null"`

	// Relations
	Sender   *DispatcherModel `gorm:"foreignKey:SenderID"`
	Receiver *ClientModel     `gorm:"foreignKey:ClientID"`
	Route    *RouteModel      `gorm:"foreignKey:RouteID"`
	Vehicle  *VehicleModel    `gorm:"foreignKey:VehicleID"`
	Devices  []DeviceModel    `gorm:"foreignKey:CargoID"`
}

func (CargoModel) TableName() string {
	return "cargos"
}
