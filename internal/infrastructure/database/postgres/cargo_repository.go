package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/infrastructure/database/postgres/models"
)

// CargoRepository implements domain cargo.Repository.
type CargoRepository struct {
	db *DB
}

func NewCargoRepository(db *DB) domainCargo.Repository {
	return &CargoRepository{db: db}
}

func (r *CargoRepository) Create(ctx context.Context, c *domainCargo.Cargo) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1

	dbModel := toCargoModel(c)
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create cargo: %w", err)
	}

	return nil
}

func (r *CargoRepository) GetByID(ctx context.Context, cargoID uuid.UUID) (*domainCargo.Cargo, error) {
	var dbModel models.CargoModel
	err := conn(ctx, r.db.DB).
		Where("id = ?", cargoID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCargo.ErrCargoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cargo: %w", err)
	}

	return toCargoEntity(&dbModel), nil
}

func (r *CargoRepository) GetWithDevices(ctx context.Context, cargoID uuid.UUID) (*domainCargo.Cargo, error) {
	var dbModel models.CargoModel
	err := conn(ctx, r.db.DB).
		Preload("Devices").
		Where("id = ?", cargoID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainCargo.ErrCargoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cargo: %w", err)
	}

	return toCargoEntity(&dbModel), nil
}

func (r *CargoRepository) List(ctx context.Context) ([]*domainCargo.Cargo, error) {
	var dbModels []models.CargoModel
	err := conn(ctx, r.db.DB).
		Preload("Devices").
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cargos: %w", err)
	}

	cargos := make([]*domainCargo.Cargo, len(dbModels))
	for i := range dbModels {
		cargos[i] = toCargoEntity(&dbModels[i])
	}
	return cargos, nil
}

func (r *CargoRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domainCargo.Cargo, error) {
	var dbModels []models.CargoModel
	err := conn(ctx, r.db.DB).
		Preload("Devices").
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cargos for client: %w", err)
	}

	cargos := make([]*domainCargo.Cargo, len(dbModels))
	for i := range dbModels {
		cargos[i] = toCargoEntity(&dbModels[i])
	}
	return cargos, nil
}

func (r *CargoRepository) UpdateGuarded(ctx context.Context, c *domainCargo.Cargo, expectedVersion int64) error {
	c.UpdatedAt = time.Now().UTC()

	return guardedUpdate(conn(ctx, r.db.DB), &models.CargoModel{}, c.ID, expectedVersion, map[string]interface{}{
		"sender_id":  c.SenderID,
		"client_id":  c.ClientID,
		"route_id":   c.RouteID,
		"vehicle_id": c.VehicleID,
		"status":     string(c.Status),
		"updated_at": c.UpdatedAt,
	}, domainCargo.ErrCargoNotFound)
}

func (r *CargoRepository) Delete(ctx context.Context, cargoID uuid.UUID) error {
	result := conn(ctx, r.db.DB).
		Where("id = ?", cargoID).
		Delete(&models.CargoModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete cargo: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainCargo.ErrCargoNotFound
	}

	return nil
}

func (r *CargoRepository) CountBySender(ctx context.Context, senderID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db.DB).
		Model(&models.CargoModel{}).
		Where("sender_id = ?", senderID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cargos by sender: %w", err)
	}
	return count, nil
}

func (r *CargoRepository) CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db.DB).
		Model(&models.CargoModel{}).
		Where("client_id = ?", clientID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cargos by client: %w", err)
	}
	return count, nil
}

func (r *CargoRepository) CountByRoute(ctx context.Context, routeID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db.DB).
		Model(&models.CargoModel{}).
		Where("route_id = ?", routeID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count cargos by route: %w", err)
	}
	return count, nil
}

func (r *CargoRepository) CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var count int64
	err := conn(ctx, r.db.DB).
		Model(&models.CargoModel{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, []string{
			string(domainCargo.StatusPending),
			string(domainCargo.StatusRouteAssigned),
			string(domainCargo.StatusInTransit),
		}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active cargos by vehicle: %w", err)
	}
	return count, nil
}

// Helper functions to convert between domain entities and database models

func toCargoModel(c *domainCargo.Cargo) *models.CargoModel {
	return &models.CargoModel{
		ID:        c.ID,
		SenderID:  c.SenderID,
		ClientID:  c.ClientID,
		RouteID:   c.RouteID,
		VehicleID: c.VehicleID,
		Status:    string(c.Status),
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toCargoEntity(m *models.CargoModel) *domainCargo.Cargo {
	c := &domainCargo.Cargo{
		ID:        m.ID,
		SenderID:  m.SenderID,
		ClientID:  m.ClientID,
		RouteID:   m.RouteID,
		VehicleID: m.VehicleID,
		Status:    domainCargo.Status(m.Status),
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if len(m.Devices) > 0 {
		c.Devices = make([]*domainDevice.Device, len(m.Devices))
		for i := range m.Devices {
			c.Devices[i] = toDeviceEntity(&m.Devices[i])
		}
	}
	return c
}
