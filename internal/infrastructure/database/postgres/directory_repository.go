package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainDirectory "cargo-transport/internal/domain/directory"
	"cargo-transport/internal/infrastructure/database/postgres/models"
)

// ClientRepository implements domain directory.ClientRepository.
type ClientRepository struct {
	db *DB
}

func NewClientRepository(db *DB) domainDirectory.ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domainDirectory.Client) error {
	c.ID = uuid.New()
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1

	dbModel := &models.ClientModel{
		ID:        c.ID,
		Name:      c.Name,
		Version:   c.Version,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainDirectory.Client, error) {
	var dbModel models.ClientModel
	err := conn(ctx, r.db.DB).Where("id = ?", id).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDirectory.ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return toClientEntity(&dbModel), nil
}

func (r *ClientRepository) List(ctx context.Context) ([]*domainDirectory.Client, error) {
	var dbModels []models.ClientModel
	if err := conn(ctx, r.db.DB).Order("name ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	clients := make([]*domainDirectory.Client, len(dbModels))
	for i := range dbModels {
		clients[i] = toClientEntity(&dbModels[i])
	}
	return clients, nil
}

func (r *ClientRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db.DB).Model(&models.ClientModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check client existence: %w", err)
	}
	return count > 0, nil
}

func (r *ClientRepository) UpdateGuarded(ctx context.Context, c *domainDirectory.Client, expectedVersion int64) error {
	c.UpdatedAt = time.Now().UTC()
	return guardedUpdate(conn(ctx, r.db.DB), &models.ClientModel{}, c.ID, expectedVersion, map[string]interface{}{
		"name":       c.Name,
		"updated_at": c.UpdatedAt,
	}, domainDirectory.ErrClientNotFound)
}

func (r *ClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db.DB).Where("id = ?", id).Delete(&models.ClientModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDirectory.ErrClientNotFound
	}
	return nil
}

func toClientEntity(m *models.ClientModel) *domainDirectory.Client {
	return &domainDirectory.Client{
		ID:        m.ID,
		Name:      m.Name,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// DispatcherRepository implements domain directory.DispatcherRepository.
type DispatcherRepository struct {
	db *DB
}

func NewDispatcherRepository(db *DB) domainDirectory.DispatcherRepository {
	return &DispatcherRepository{db: db}
}

func (r *DispatcherRepository) Create(ctx context.Context, d *domainDirectory.Dispatcher) error {
	d.ID = uuid.New()
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Version = 1

	dbModel := &models.DispatcherModel{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}
	return nil
}

func (r *DispatcherRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainDirectory.Dispatcher, error) {
	var dbModel models.DispatcherModel
	err := conn(ctx, r.db.DB).Where("id = ?", id).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDirectory.ErrDispatcherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher: %w", err)
	}
	return toDispatcherEntity(&dbModel), nil
}

func (r *DispatcherRepository) List(ctx context.Context) ([]*domainDirectory.Dispatcher, error) {
	var dbModels []models.DispatcherModel
	if err := conn(ctx, r.db.DB).Order("name ASC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list dispatchers: %w", err)
	}
	dispatchers := make([]*domainDirectory.Dispatcher, len(dbModels))
	for i := range dbModels {
		dispatchers[i] = toDispatcherEntity(&dbModels[i])
	}
	return dispatchers, nil
}

func (r *DispatcherRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db.DB).Model(&models.DispatcherModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check dispatcher existence: %w", err)
	}
	return count > 0, nil
}

func (r *DispatcherRepository) UpdateGuarded(ctx context.Context, d *domainDirectory.Dispatcher, expectedVersion int64) error {
	d.UpdatedAt = time.Now().UTC()
	return guardedUpdate(conn(ctx, r.db.DB), &models.DispatcherModel{}, d.ID, expectedVersion, map[string]interface{}{
		"name":       d.Name,
		"email":      d.Email,
		"phone":      d.Phone,
		"updated_at": d.UpdatedAt,
	}, domainDirectory.ErrDispatcherNotFound)
}

func (r *DispatcherRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db.DB).Where("id = ?", id).Delete(&models.DispatcherModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete dispatcher: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDirectory.ErrDispatcherNotFound
	}
	return nil
}

func toDispatcherEntity(m *models.DispatcherModel) *domainDirectory.Dispatcher {
	return &domainDirectory.Dispatcher{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Version:   m.Version,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// RouteRepository implements domain directory.RouteRepository.
type RouteRepository struct {
	db *DB
}

func NewRouteRepository(db *DB) domainDirectory.RouteRepository {
	return &RouteRepository{db: db}
}

func (r *RouteRepository) Create(ctx context.Context, route *domainDirectory.Route) error {
	route.ID = uuid.New()
	now := time.Now().UTC()
	route.CreatedAt = now
	route.UpdatedAt = now
	route.Version = 1

	wayPoints, err := encodeWayPoints(route.WayPoints)
	if err != nil {
		return err
	}

	dbModel := &models.RouteModel{
		ID:            route.ID,
		StartPoint:    route.StartPoint,
		EndPoint:      route.EndPoint,
		WayPoints:     wayPoints,
		EstimatedTime: route.EstimatedTime,
		Version:       route.Version,
		CreatedAt:     route.CreatedAt,
		UpdatedAt:     route.UpdatedAt,
	}
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

func (r *RouteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainDirectory.Route, error) {
	var dbModel models.RouteModel
	err := conn(ctx, r.db.DB).Where("id = ?", id).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDirectory.ErrRouteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return toRouteEntity(&dbModel)
}

func (r *RouteRepository) List(ctx context.Context) ([]*domainDirectory.Route, error) {
	var dbModels []models.RouteModel
	if err := conn(ctx, r.db.DB).Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list routes: %w", err)
	}
	routes := make([]*domainDirectory.Route, 0, len(dbModels))
	for i := range dbModels {
		route, err := toRouteEntity(&dbModels[i])
		if err != nil {
			return nil, err
		}
		routes = append(routes, route)
	}
	return routes, nil
}

func (r *RouteRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db.DB).Model(&models.RouteModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check route existence: %w", err)
	}
	return count > 0, nil
}

func (r *RouteRepository) UpdateGuarded(ctx context.Context, route *domainDirectory.Route, expectedVersion int64) error {
	route.UpdatedAt = time.Now().UTC()

	wayPoints, err := encodeWayPoints(route.WayPoints)
	if err != nil {
		return err
	}

	return guardedUpdate(conn(ctx, r.db.DB), &models.RouteModel{}, route.ID, expectedVersion, map[string]interface{}{
		"start_point":    route.StartPoint,
		"end_point":      route.EndPoint,
		"way_points":     wayPoints,
		"estimated_time": route.EstimatedTime,
		"updated_at":     route.UpdatedAt,
	}, domainDirectory.ErrRouteNotFound)
}

func (r *RouteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db.DB).Where("id = ?", id).Delete(&models.RouteModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete route: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDirectory.ErrRouteNotFound
	}
	return nil
}

func encodeWayPoints(wayPoints []string) (string, error) {
	if len(wayPoints) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(wayPoints)
	if err != nil {
		return "", fmt.Errorf("failed to encode way points: %w", err)
	}
	return string(encoded), nil
}

func toRouteEntity(m *models.RouteModel) (*domainDirectory.Route, error) {
	var wayPoints []string
	if m.WayPoints != "" {
		if err := json.Unmarshal([]byte(m.WayPoints), &wayPoints); err != nil {
			return nil, fmt.Errorf("failed to decode way points: %w", err)
		}
	}
	return &domainDirectory.Route{
		ID:            m.ID,
		StartPoint:    m.StartPoint,
		EndPoint:      m.EndPoint,
		WayPoints:     wayPoints,
		EstimatedTime: m.EstimatedTime,
		Version:       m.Version,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// VehicleRepository implements domain directory.VehicleRepository.
type VehicleRepository struct {
	db *DB
}

func NewVehicleRepository(db *DB) domainDirectory.VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *domainDirectory.Vehicle) error {
	v.ID = uuid.New()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	v.Version = 1

	dbModel := &models.VehicleModel{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		DriverName:   v.DriverName,
		Version:      v.Version,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
	if err := conn(ctx, r.db.DB).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainDirectory.Vehicle, error) {
	var dbModel models.VehicleModel
	err := conn(ctx, r.db.DB).Where("id = ?", id).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDirectory.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) GetByPlate(ctx context.Context, plate string) (*domainDirectory.Vehicle, error) {
	var dbModel models.VehicleModel
	err := conn(ctx, r.db.DB).Where("license_plate = ?", plate).First(&dbModel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDirectory.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle by plate: %w", err)
	}
	return toVehicleEntity(&dbModel), nil
}

func (r *VehicleRepository) List(ctx context.Context) ([]*domainDirectory.Vehicle, error) {
	var dbModels []models.VehicleModel
	if err := conn(ctx, r.db.DB).Order("created_at DESC").Find(&dbModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	vehicles := make([]*domainDirectory.Vehicle, len(dbModels))
	for i := range dbModels {
		vehicles[i] = toVehicleEntity(&dbModels[i])
	}
	return vehicles, nil
}

func (r *VehicleRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := conn(ctx, r.db.DB).Model(&models.VehicleModel{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check vehicle existence: %w", err)
	}
	return count > 0, nil
}

func (r *VehicleRepository) UpdateGuarded(ctx context.Context, v *domainDirectory.Vehicle, expectedVersion int64) error {
	v.UpdatedAt = time.Now().UTC()
	return guardedUpdate(conn(ctx, r.db.DB), &models.VehicleModel{}, v.ID, expectedVersion, map[string]interface{}{
		"license_plate": v.LicensePlate,
		"driver_name":   v.DriverName,
		"updated_at":    v.UpdatedAt,
	}, domainDirectory.ErrVehicleNotFound)
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db.DB).Where("id = ?", id).Delete(&models.VehicleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDirectory.ErrVehicleNotFound
	}
	return nil
}

func toVehicleEntity(m *models.VehicleModel) *domainDirectory.Vehicle {
	return &domainDirectory.Vehicle{
		ID:           m.ID,
		LicensePlate: m.LicensePlate,
		DriverName:   m.DriverName,
		Version:      m.Version,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
