package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/infrastructure/database/postgres/models"
)

// DeviceRepository implements domain device.Repository.
type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	d.ID = uuid.New()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.LastUpdate.IsZero() {
		d.LastUpdate = now
	}
	d.Version = 1

	dbModel := toDeviceModel(d)
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := conn(ctx, r.db.DB).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByIDs(ctx context.Context, deviceIDs []uuid.UUID) ([]*domainDevice.Device, error) {
	if len(deviceIDs) == 0 {
		return nil, nil
	}

	var dbModels []models.DeviceModel
	err := conn(ctx, r.db.DB).
		Where("id IN ?", deviceIDs).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func (r *DeviceRepository) List(ctx context.Context) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel
	err := conn(ctx, r.db.DB).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func (r *DeviceRepository) ListByCargo(ctx context.Context, cargoID uuid.UUID) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel
	err := conn(ctx, r.db.DB).
		Where("cargo_id = ?", cargoID).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list devices for cargo: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func (r *DeviceRepository) UpdateGuarded(ctx context.Context, d *domainDevice.Device, expectedVersion int64) error {
	d.UpdatedAt = time.Now().UTC()

	return guardedUpdate(conn(ctx, r.db.DB), &models.DeviceModel{}, d.ID, expectedVersion, map[string]interface{}{
		"type":        string(d.Type),
		"latitude":    d.Latitude,
		"longitude":   d.Longitude,
		"last_update": d.LastUpdate,
		"cargo_id":    d.CargoID,
		"updated_at":  d.UpdatedAt,
	}, domainDevice.ErrDeviceNotFound)
}

func (r *DeviceRepository) Attach(ctx context.Context, deviceID, cargoID uuid.UUID, expectedVersion int64) error {
	return guardedUpdate(conn(ctx, r.db.DB), &models.DeviceModel{}, deviceID, expectedVersion, map[string]interface{}{
		"cargo_id":   cargoID,
		"updated_at": time.Now().UTC(),
	}, domainDevice.ErrDeviceNotFound)
}

func (r *DeviceRepository) Detach(ctx context.Context, deviceID uuid.UUID, expectedVersion int64) error {
	return guardedUpdate(conn(ctx, r.db.DB), &models.DeviceModel{}, deviceID, expectedVersion, map[string]interface{}{
		"cargo_id":   nil,
		"updated_at": time.Now().UTC(),
	}, domainDevice.ErrDeviceNotFound)
}

func (r *DeviceRepository) Delete(ctx context.Context, deviceID uuid.UUID) error {
	result := conn(ctx, r.db.DB).
		Where("id = ?", deviceID).
		Delete(&models.DeviceModel{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func (r *DeviceRepository) AppendHistory(ctx context.Context, entry *domainDevice.HistoryEntry) error {
	entry.ID = uuid.New()

	dbModel := &models.DeviceHistoryModel{
		ID:        entry.ID,
		DeviceID:  entry.DeviceID,
		Latitude:  entry.Latitude,
		Longitude: entry.Longitude,
		Timestamp: entry.Timestamp,
	}
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to append device history: %w", err)
	}

	return nil
}

func (r *DeviceRepository) HistoryByDevice(ctx context.Context, deviceID uuid.UUID, from, to *time.Time) ([]*domainDevice.HistoryEntry, error) {
	query := conn(ctx, r.db.DB).
		Model(&models.DeviceHistoryModel{}).
		Where("device_id = ?", deviceID)

	if from != nil {
		query = query.Where("timestamp >= ?", *from)
	}
	if to != nil {
		query = query.Where("timestamp < ?", *to)
	}

	var dbModels []models.DeviceHistoryModel
	if err := query.Order("timestamp ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to query device history: %w", err)
	}

	entries := make([]*domainDevice.HistoryEntry, len(dbModels))
	for i := range dbModels {
		entries[i] = &domainDevice.HistoryEntry{
			ID:        dbModels[i].ID,
			DeviceID:  dbModels[i].DeviceID,
			Latitude:  dbModels[i].Latitude,
			Longitude: dbModels[i].Longitude,
			Timestamp: dbModels[i].Timestamp,
		}
	}
	return entries, nil
}

// Helper functions to convert between domain entities and database models

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
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

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	return &domainDevice.Device{
		ID:         m.ID,
		Type:       domainDevice.Type(m.Type),
		Latitude:   m.Latitude,
		Longitude:  m.Longitude,
		LastUpdate: m.LastUpdate,
		CargoID:    m.CargoID,
		Version:    m.Version,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
