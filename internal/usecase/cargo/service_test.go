package cargo

import (
	"context"
	"errors"
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
	domainDirectory "cargo-transport/internal/domain/directory"
	"cargo-transport/internal/infrastructure/database/postgres"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testEnv struct {
	db      *postgres.DB
	service *Service
	devices domainDevice.Repository
	cargos  domainCargo.Repository

	dispatcherID uuid.UUID
	clientID     uuid.UUID
	routeID      uuid.UUID
	vehicleID    uuid.UUID
}

func setupEnv(t *testing.T, allowReassign bool) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := &postgres.DB{DB: gdb}
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() { _ = db.Close() })

	tx := postgres.NewTxManager(db)
	cargos := postgres.NewCargoRepository(db)
	devices := postgres.NewDeviceRepository(db)
	clients := postgres.NewClientRepository(db)
	dispatchers := postgres.NewDispatcherRepository(db)
	routes := postgres.NewRouteRepository(db)
	vehicles := postgres.NewVehicleRepository(db)

	reconciler := NewReconciler(devices, allowReassign)
	service := NewService(tx, cargos, devices, clients, dispatchers, routes, vehicles, reconciler)

	ctx := context.Background()

	dispatcher := &domainDirectory.Dispatcher{Name: "Northern Freight"}
	require.NoError(t, dispatchers.Create(ctx, dispatcher))
	client := &domainDirectory.Client{Name: "Harbor Imports"}
	require.NoError(t, clients.Create(ctx, client))
	route := &domainDirectory.Route{
		StartPoint:    "Rotterdam",
		EndPoint:      "Hamburg",
		WayPoints:     []string{"Utrecht", "Bremen"},
		EstimatedTime: time.Now().Add(48 * time.Hour),
	}
	require.NoError(t, routes.Create(ctx, route))
	plate := "NL-44-XYZ"
	vehicle := &domainDirectory.Vehicle{LicensePlate: &plate}
	require.NoError(t, vehicles.Create(ctx, vehicle))

	return &testEnv{
		db:           db,
		service:      service,
		devices:      devices,
		cargos:       cargos,
		dispatcherID: dispatcher.ID,
		clientID:     client.ID,
		routeID:      route.ID,
		vehicleID:    vehicle.ID,
	}
}

func (e *testEnv) createDevice(t *testing.T) *domainDevice.Device {
	t.Helper()
	d := &domainDevice.Device{
		Type:      domainDevice.TypeGPS,
		Latitude:  52.37,
		Longitude: 4.89,
	}
	require.NoError(t, e.devices.Create(context.Background(), d))
	return d
}

func (e *testEnv) createCargo(t *testing.T, deviceIDs []uuid.UUID) *CargoResponse {
	t.Helper()
	resp, err := e.service.CreateCargo(context.Background(), &CreateCargoRequest{
		SenderID:  e.dispatcherID,
		ClientID:  e.clientID,
		RouteID:   e.routeID,
		DeviceIDs: deviceIDs,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateCargoAttachesDevices(t *testing.T) {
	env := setupEnv(t, true)
	d1 := env.createDevice(t)
	d2 := env.createDevice(t)

	resp := env.createCargo(t, []uuid.UUID{d1.ID, d2.ID})

	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(1), resp.Version)
	assert.Len(t, resp.Devices, 2)
	assert.Empty(t, resp.UnresolvedDeviceIDs)

	got, err := env.devices.GetByID(context.Background(), d1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CargoID)
	assert.Equal(t, resp.ID, *got.CargoID)
}

func TestCreateCargoReportsUnresolvedDevices(t *testing.T) {
	env := setupEnv(t, true)
	d := env.createDevice(t)
	missing := uuid.New()

	resp := env.createCargo(t, []uuid.UUID{d.ID, missing})

	assert.Len(t, resp.Devices, 1)
	assert.Equal(t, []uuid.UUID{missing}, resp.UnresolvedDeviceIDs)
}

func TestCreateCargoRejectsUnknownDispatcher(t *testing.T) {
	env := setupEnv(t, true)

	_, err := env.service.CreateCargo(context.Background(), &CreateCargoRequest{
		SenderID: uuid.New(),
		ClientID: env.clientID,
		RouteID:  env.routeID,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainDirectory.ErrDispatcherNotFound)
}

func TestUpdateCargoReconcilesDeviceSet(t *testing.T) {
	env := setupEnv(t, true)
	keep := env.createDevice(t)
	drop := env.createDevice(t)
	add := env.createDevice(t)

	created := env.createCargo(t, []uuid.UUID{keep.ID, drop.ID})

	resp, err := env.service.UpdateCargo(context.Background(), created.ID, &UpdateCargoRequest{
		SenderID:        env.dispatcherID,
		ClientID:        env.clientID,
		RouteID:         env.routeID,
		Status:          "route_assigned",
		DeviceIDs:       []uuid.UUID{keep.ID, add.ID},
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)

	assert.Equal(t, "route_assigned", resp.Status)
	assert.Equal(t, created.Version+1, resp.Version)
	assert.Len(t, resp.Devices, 2)

	dropped, err := env.devices.GetByID(context.Background(), drop.ID)
	require.NoError(t, err)
	assert.Nil(t, dropped.CargoID)

	added, err := env.devices.GetByID(context.Background(), add.ID)
	require.NoError(t, err)
	require.NotNil(t, added.CargoID)
	assert.Equal(t, created.ID, *added.CargoID)
}

func TestUpdateCargoStaleVersionConflicts(t *testing.T) {
	env := setupEnv(t, true)
	created := env.createCargo(t, nil)

	req := &UpdateCargoRequest{
		SenderID:        env.dispatcherID,
		ClientID:        env.clientID,
		RouteID:         env.routeID,
		Status:          "route_assigned",
		ExpectedVersion: created.Version,
	}
	_, err := env.service.UpdateCargo(context.Background(), created.ID, req)
	require.NoError(t, err)

	// Same observed version a second time must lose.
	req.Status = "in_transit"
	_, err = env.service.UpdateCargo(context.Background(), created.ID, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrVersionConflict)

	current, err := env.cargos.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domainCargo.StatusRouteAssigned, current.Status)
}

func TestUpdateCargoConflictRollsBackDeviceChanges(t *testing.T) {
	env := setupEnv(t, true)
	d := env.createDevice(t)
	created := env.createCargo(t, nil)

	_, err := env.service.UpdateCargo(context.Background(), created.ID, &UpdateCargoRequest{
		SenderID:        env.dispatcherID,
		ClientID:        env.clientID,
		RouteID:         env.routeID,
		Status:          "pending",
		DeviceIDs:       []uuid.UUID{d.ID},
		ExpectedVersion: created.Version + 5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrVersionConflict)

	// The attach never happened because the guarded cargo write failed first.
	got, err := env.devices.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CargoID)
}

func TestReassignMovesDeviceWhenAllowed(t *testing.T) {
	env := setupEnv(t, true)
	d := env.createDevice(t)

	first := env.createCargo(t, []uuid.UUID{d.ID})
	second := env.createCargo(t, []uuid.UUID{d.ID})

	got, err := env.devices.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CargoID)
	assert.Equal(t, second.ID, *got.CargoID)

	firstView, err := env.service.GetCargo(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Empty(t, firstView.Devices)
}

func TestReassignRejectedWhenDisallowed(t *testing.T) {
	env := setupEnv(t, false)
	d := env.createDevice(t)

	env.createCargo(t, []uuid.UUID{d.ID})

	_, err := env.service.CreateCargo(context.Background(), &CreateCargoRequest{
		SenderID:  env.dispatcherID,
		ClientID:  env.clientID,
		RouteID:   env.routeID,
		DeviceIDs: []uuid.UUID{d.ID},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainDevice.ErrDeviceOwnedElsewhere)
}

func TestDeleteCargoDetachesDevices(t *testing.T) {
	env := setupEnv(t, true)
	d := env.createDevice(t)
	created := env.createCargo(t, []uuid.UUID{d.ID})

	require.NoError(t, env.service.DeleteCargo(context.Background(), created.ID))

	_, err := env.cargos.GetByID(context.Background(), created.ID)
	assert.ErrorIs(t, err, domainCargo.ErrCargoNotFound)

	// The device survives the cargo, unassigned.
	got, err := env.devices.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CargoID)
}

func TestDeleteCargoInTransitRejected(t *testing.T) {
	env := setupEnv(t, true)
	created := env.createCargo(t, nil)

	_, err := env.service.UpdateCargo(context.Background(), created.ID, &UpdateCargoRequest{
		SenderID:        env.dispatcherID,
		ClientID:        env.clientID,
		RouteID:         env.routeID,
		Status:          "in_transit",
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)

	err = env.service.DeleteCargo(context.Background(), created.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainCargo.ErrCargoInTransit)

	_, err = env.cargos.GetByID(context.Background(), created.ID)
	assert.NoError(t, err)
}

func TestUpdateCargoRejectsUnknownStatus(t *testing.T) {
	env := setupEnv(t, true)
	created := env.createCargo(t, nil)

	_, err := env.service.UpdateCargo(context.Background(), created.ID, &UpdateCargoRequest{
		SenderID:        env.dispatcherID,
		ClientID:        env.clientID,
		RouteID:         env.routeID,
		Status:          "teleported",
		ExpectedVersion: created.Version,
	})

	require.Error(t, err)
	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.CodeValidation, appErr.Code)
}

func TestListCargosByClient(t *testing.T) {
	env := setupEnv(t, true)
	env.createCargo(t, nil)
	env.createCargo(t, nil)

	resp, err := env.service.ListCargosByClient(context.Background(), env.clientID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	empty, err := env.service.ListCargosByClient(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
}
