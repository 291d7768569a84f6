package directory

import (
	"time"

	"github.com/google/uuid"

	domainDirectory "cargo-transport/internal/domain/directory"
)

type CreateClientRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type UpdateClientRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=255"`
	ExpectedVersion int64  `json:"expected_version" validate:"required,min=1"`
}

type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateDispatcherRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=255"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}

type UpdateDispatcherRequest struct {
	Name            string  `json:"name" validate:"required,min=1,max=255"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	ExpectedVersion int64   `json:"expected_version" validate:"required,min=1"`
}

type DispatcherResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateRouteRequest struct {
	StartPoint    string    `json:"start_point" validate:"required,min=1,max=255"`
	EndPoint      string    `json:"end_point" validate:"required,min=1,max=255"`
	WayPoints     []string  `json:"way_points"`
	EstimatedTime time.Time `json:"estimated_time"`
}

type UpdateRouteRequest struct {
	StartPoint      string    `json:"start_point" validate:"required,min=1,max=255"`
	EndPoint        string    `json:"end_point" validate:"required,min=1,max=255"`
	WayPoints       []string  `json:"way_points"`
	EstimatedTime   time.Time `json:"estimated_time"`
	ExpectedVersion int64     `json:"expected_version" validate:"required,min=1"`
}

type RouteResponse struct {
	ID            uuid.UUID `json:"id"`
	StartPoint    string    `json:"start_point"`
	EndPoint      string    `json:"end_point"`
	WayPoints     []string  `json:"way_points"`
	EstimatedTime time.Time `json:"estimated_time"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateVehicleRequest struct {
	LicensePlate *string `json:"license_plate" validate:"omitempty,min=1,max=32"`
	DriverName   *string `json:"driver_name" validate:"omitempty,max=255"`
}

type UpdateVehicleRequest struct {
	LicensePlate    *string `json:"license_plate" validate:"omitempty,min=1,max=32"`
	DriverName      *string `json:"driver_name" validate:"omitempty,max=255"`
	ExpectedVersion int64   `json:"expected_version" validate:"required,min=1"`
}

type VehicleResponse struct {
	ID           uuid.UUID `json:"id"`
	LicensePlate *string   `json:"license_plate,omitempty"`
	DriverName   *string   `json:"driver_name,omitempty"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toClientResponse(c *domainDirectory.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toDispatcherResponse(d *domainDirectory.Dispatcher) *DispatcherResponse {
	return &DispatcherResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toRouteResponse(r *domainDirectory.Route) *RouteResponse {
	return &RouteResponse{
		ID:            r.ID,
		StartPoint:    r.StartPoint,
		EndPoint:      r.EndPoint,
		WayPoints:     r.WayPoints,
		EstimatedTime: r.EstimatedTime,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toVehicleResponse(v *domainDirectory.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		DriverName:   v.DriverName,
		Version:      v.Version,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}
