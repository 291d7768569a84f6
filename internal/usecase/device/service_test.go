package device

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/infrastructure/database/postgres"
	"cargo-transport/internal/infrastructure/database/postgres/models"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func setupService(t *testing.T) (*Service, *postgres.DB) {
	return setupServiceWithPolicy(t, true)
}

func setupServiceWithPolicy(t *testing.T, allowReassign bool) (*Service, *postgres.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// SQLite leaves foreign keys off unless asked; the cascade tests need
	// them enforced.
	require.NoError(t, gdb.Exec("PRAGMA foreign_keys = ON").Error)

	db := &postgres.DB{DB: gdb}
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() { _ = db.Close() })

	return NewService(
		postgres.NewTxManager(db),
		postgres.NewDeviceRepository(db),
		postgres.NewCargoRepository(db),
		allowReassign,
	), db
}

// seedCargo inserts a cargo row with freshly created directory references.
func seedCargo(t *testing.T, db *postgres.DB) uuid.UUID {
	t.Helper()

	dispatcher := &models.DispatcherModel{ID: uuid.New(), Name: "Test Dispatcher", Version: 1}
	client := &models.ClientModel{ID: uuid.New(), Name: "Test Client", Version: 1}
	route := &models.RouteModel{ID: uuid.New(), StartPoint: "A", EndPoint: "B", EstimatedTime: time.Now(), Version: 1}
	require.NoError(t, db.DB.Create(dispatcher).Error)
	require.NoError(t, db.DB.Create(client).Error)
	require.NoError(t, db.DB.Create(route).Error)

	cargoID := uuid.New()
	require.NoError(t, db.DB.Create(&models.CargoModel{
		ID:       cargoID,
		SenderID: dispatcher.ID,
		ClientID: client.ID,
		RouteID:  route.ID,
		Status:   "pending",
		Version:  1,
	}).Error)
	return cargoID
}

func createGPSDevice(t *testing.T, s *Service) *DeviceResponse {
	t.Helper()
	resp, err := s.CreateDevice(context.Background(), &CreateDeviceRequest{
		Type:      "gps",
		Latitude:  48.85,
		Longitude: 2.35,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateDeviceWritesInitialHistory(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	assert.Equal(t, int64(1), created.Version)

	history, err := s.GetDeviceHistory(context.Background(), created.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 1, history.Total)
	assert.Equal(t, 48.85, history.Entries[0].Latitude)
	assert.Equal(t, 2.35, history.Entries[0].Longitude)
}

func TestCreateDeviceRejectsBadCoordinates(t *testing.T) {
	s, _ := setupService(t)

	_, err := s.CreateDevice(context.Background(), &CreateDeviceRequest{
		Type:     "gps",
		Latitude: 91.0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDevice.ErrCoordinatesOutOfRange)

	_, err = s.CreateDevice(context.Background(), &CreateDeviceRequest{
		Type:      "gps",
		Longitude: -180.5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDevice.ErrCoordinatesOutOfRange)
}

func TestCreateDeviceRejectsUnknownType(t *testing.T) {
	s, _ := setupService(t)

	_, err := s.CreateDevice(context.Background(), &CreateDeviceRequest{Type: "sonar"})
	require.Error(t, err)
}

func TestUpdateDevicePositionChangeAppendsHistory(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	updated, err := s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        50.11,
		Longitude:       8.68,
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	history, err := s.GetDeviceHistory(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, history.Total)
}

func TestUpdateDeviceSamePositionSkipsHistory(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	_, err := s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "rfid",
		Latitude:        created.Latitude,
		Longitude:       created.Longitude,
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)

	history, err := s.GetDeviceHistory(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, history.Total)
}

func TestUpdateDeviceStaleVersionConflicts(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	req := &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        10,
		Longitude:       10,
		ExpectedVersion: created.Version,
	}
	_, err := s.UpdateDevice(context.Background(), created.ID, req)
	require.NoError(t, err)

	req.Latitude = 20
	_, err = s.UpdateDevice(context.Background(), created.ID, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrVersionConflict)

	// The losing write left no trace.
	got, err := s.GetDevice(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Latitude)

	history, err := s.GetDeviceHistory(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, history.Total)
}

func TestRecordLocationAppendsHistory(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	observed := time.Now().UTC().Add(-time.Minute)
	resp, err := s.RecordLocation(context.Background(), created.ID, &RecordLocationRequest{
		Latitude:   51.5,
		Longitude:  -0.12,
		ObservedAt: observed,
	})
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, resp.Version)
	assert.WithinDuration(t, observed, resp.LastUpdate, time.Second)

	history, err := s.GetDeviceHistory(context.Background(), created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, history.Total)
}

func TestGetDeviceHistoryRangeIsWholeDaysInclusive(t *testing.T) {
	s, db := setupService(t)
	created := createGPSDevice(t, s)

	repo := postgres.NewDeviceRepository(db)
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

	for i, offset := range []time.Duration{-48 * time.Hour, 0, 30 * time.Minute, 72 * time.Hour} {
		require.NoError(t, repo.AppendHistory(ctx, &domainDevice.HistoryEntry{
			DeviceID:  created.ID,
			Latitude:  float64(i),
			Longitude: float64(i),
			Timestamp: base.Add(offset),
		}))
	}

	// An instant between is enough: the bounds widen to the whole of March
	// 10, so both entries of that day come back.
	bound := time.Date(2026, 3, 10, 16, 30, 0, 0, time.UTC)
	history, err := s.GetDeviceHistory(ctx, created.ID, &HistoryQuery{From: &bound, To: &bound})
	require.NoError(t, err)
	assert.Equal(t, 2, history.Total)

	// Entries come back oldest first.
	require.Len(t, history.Entries, 2)
	assert.True(t, history.Entries[0].Timestamp.Before(history.Entries[1].Timestamp))
}

func TestGetDeviceHistoryRejectsInvertedRange(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	from := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	_, err := s.GetDeviceHistory(context.Background(), created.ID, &HistoryQuery{From: &from, To: &to})
	require.Error(t, err)
}

func TestDeleteDeviceRejectedWhileAssigned(t *testing.T) {
	s, db := setupService(t)
	created := createGPSDevice(t, s)
	cargoID := seedCargo(t, db)

	repo := postgres.NewDeviceRepository(db)
	require.NoError(t, repo.Attach(context.Background(), created.ID, cargoID, created.Version))

	err := s.DeleteDevice(context.Background(), created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceAssigned)
}

func TestDeleteDeviceCascadesHistory(t *testing.T) {
	s, db := setupService(t)
	created := createGPSDevice(t, s)

	_, err := s.RecordLocation(context.Background(), created.ID, &RecordLocationRequest{
		Latitude:  1,
		Longitude: 1,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteDevice(context.Background(), created.ID))

	_, err = s.GetDevice(context.Background(), created.ID)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceNotFound)

	var count int64
	require.NoError(t, db.DB.Model(&models.DeviceHistoryModel{}).
		Where("device_id = ?", created.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateDeviceRejectsUnknownCargo(t *testing.T) {
	s, _ := setupService(t)

	bogus := uuid.New()
	_, err := s.CreateDevice(context.Background(), &CreateDeviceRequest{
		Type:      "gps",
		Latitude:  48.85,
		Longitude: 2.35,
		CargoID:   &bogus,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainCargo.ErrCargoNotFound)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))

	list, listErr := s.ListDevices(context.Background())
	require.NoError(t, listErr)
	assert.Zero(t, list.Total)
}

func TestUpdateDeviceRejectsUnknownCargo(t *testing.T) {
	s, _ := setupService(t)
	created := createGPSDevice(t, s)

	bogus := uuid.New()
	_, err := s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        created.Latitude,
		Longitude:       created.Longitude,
		CargoID:         &bogus,
		ExpectedVersion: created.Version,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainCargo.ErrCargoNotFound)
	assert.Equal(t, appErrors.CodeNotFound, appErrors.CodeOf(err))

	current, getErr := s.GetDevice(context.Background(), created.ID)
	require.NoError(t, getErr)
	assert.Nil(t, current.CargoID)
	assert.Equal(t, created.Version, current.Version)
}

func TestUpdateDeviceReassignRejectedWhenDisallowed(t *testing.T) {
	s, db := setupServiceWithPolicy(t, false)
	created := createGPSDevice(t, s)
	first := seedCargo(t, db)
	second := seedCargo(t, db)

	attached, err := s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        created.Latitude,
		Longitude:       created.Longitude,
		CargoID:         &first,
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)
	require.NotNil(t, attached.CargoID)

	_, err = s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        created.Latitude,
		Longitude:       created.Longitude,
		CargoID:         &second,
		ExpectedVersion: attached.Version,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceOwnedElsewhere)
	assert.Equal(t, appErrors.CodeInvariantViolation, appErrors.CodeOf(err))

	current, getErr := s.GetDevice(context.Background(), created.ID)
	require.NoError(t, getErr)
	require.NotNil(t, current.CargoID)
	assert.Equal(t, first, *current.CargoID)
}

func TestUpdateDeviceReassignMovesWhenAllowed(t *testing.T) {
	s, db := setupService(t)
	created := createGPSDevice(t, s)
	first := seedCargo(t, db)
	second := seedCargo(t, db)

	attached, err := s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        created.Latitude,
		Longitude:       created.Longitude,
		CargoID:         &first,
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)

	moved, err := s.UpdateDevice(context.Background(), created.ID, &UpdateDeviceRequest{
		Type:            "gps",
		Latitude:        created.Latitude,
		Longitude:       created.Longitude,
		CargoID:         &second,
		ExpectedVersion: attached.Version,
	})
	require.NoError(t, err)
	require.NotNil(t, moved.CargoID)
	assert.Equal(t, second, *moved.CargoID)
}
