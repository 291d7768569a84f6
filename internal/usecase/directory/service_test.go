package directory

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

type directoryEnv struct {
	service *Service
	cargos  domainCargo.Repository
}

func setupDirectory(t *testing.T) *directoryEnv {
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

	cargos := postgres.NewCargoRepository(db)
	service := NewService(
		postgres.NewTxManager(db),
		postgres.NewClientRepository(db),
		postgres.NewDispatcherRepository(db),
		postgres.NewRouteRepository(db),
		postgres.NewVehicleRepository(db),
		NewReferenceGuard(cargos),
	)

	return &directoryEnv{service: service, cargos: cargos}
}

func (e *directoryEnv) seedCargo(t *testing.T, status domainCargo.Status, vehicleID *uuid.UUID) (dispatcherID, clientID, routeID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	dispatcher, err := e.service.CreateDispatcher(ctx, &CreateDispatcherRequest{Name: "Central Dispatch"})
	require.NoError(t, err)
	client, err := e.service.CreateClient(ctx, &CreateClientRequest{Name: "Western Mills"})
	require.NoError(t, err)
	route, err := e.service.CreateRoute(ctx, &CreateRouteRequest{
		StartPoint:    "Lyon",
		EndPoint:      "Milan",
		EstimatedTime: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, e.cargos.Create(ctx, &domainCargo.Cargo{
		SenderID:  dispatcher.ID,
		ClientID:  client.ID,
		RouteID:   route.ID,
		VehicleID: vehicleID,
		Status:    status,
	}))
	return dispatcher.ID, client.ID, route.ID
}

func TestClientCRUDWithVersionGuard(t *testing.T) {
	env := setupDirectory(t)
	ctx := context.Background()

	created, err := env.service.CreateClient(ctx, &CreateClientRequest{Name: "Acme Retail"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	updated, err := env.service.UpdateClient(ctx, created.ID, &UpdateClientRequest{
		Name:            "Acme Retail Group",
		ExpectedVersion: created.Version,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "Acme Retail Group", updated.Name)

	_, err = env.service.UpdateClient(ctx, created.ID, &UpdateClientRequest{
		Name:            "Stale Write",
		ExpectedVersion: created.Version,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrVersionConflict)

	require.NoError(t, env.service.DeleteClient(ctx, created.ID))
	_, err = env.service.GetClient(ctx, created.ID)
	assert.ErrorIs(t, err, domainDirectory.ErrClientNotFound)
}

func TestDeleteClientBlockedByCargoReference(t *testing.T) {
	env := setupDirectory(t)
	_, clientID, _ := env.seedCargo(t, domainCargo.StatusPending, nil)

	err := env.service.DeleteClient(context.Background(), clientID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDirectory.ErrClientInUse)
}

func TestDeleteDispatcherBlockedByCargoReference(t *testing.T) {
	env := setupDirectory(t)
	dispatcherID, _, _ := env.seedCargo(t, domainCargo.StatusDelivered, nil)

	// Even terminal cargos pin their dispatcher.
	err := env.service.DeleteDispatcher(context.Background(), dispatcherID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDirectory.ErrDispatcherInUse)
}

func TestDeleteRouteBlockedByCargoReference(t *testing.T) {
	env := setupDirectory(t)
	_, _, routeID := env.seedCargo(t, domainCargo.StatusCancelled, nil)

	err := env.service.DeleteRoute(context.Background(), routeID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDirectory.ErrRouteInUse)
}

func TestDeleteVehicleBlockedOnlyByActiveCargo(t *testing.T) {
	env := setupDirectory(t)
	ctx := context.Background()

	plate := "FR-120-AB"
	vehicle, err := env.service.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: &plate})
	require.NoError(t, err)

	env.seedCargo(t, domainCargo.StatusInTransit, &vehicle.ID)

	err = env.service.DeleteVehicle(ctx, vehicle.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDirectory.ErrVehicleInUse)

	// A vehicle referenced only by a delivered cargo may go.
	plate2 := "FR-121-AB"
	done, err := env.service.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: &plate2})
	require.NoError(t, err)
	env.seedCargo(t, domainCargo.StatusDelivered, &done.ID)

	assert.NoError(t, env.service.DeleteVehicle(ctx, done.ID))
}

func TestDuplicateLicensePlateRejected(t *testing.T) {
	env := setupDirectory(t)
	ctx := context.Background()

	plate := "DE-556-KL"
	first, err := env.service.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: &plate})
	require.NoError(t, err)

	_, err = env.service.CreateVehicle(ctx, &CreateVehicleRequest{LicensePlate: &plate})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainDirectory.ErrDuplicatePlate)

	// Re-submitting a vehicle's own plate on update is fine.
	_, err = env.service.UpdateVehicle(ctx, first.ID, &UpdateVehicleRequest{
		LicensePlate:    &plate,
		ExpectedVersion: first.Version,
	})
	assert.NoError(t, err)

	// Two plateless vehicles can coexist.
	_, err = env.service.CreateVehicle(ctx, &CreateVehicleRequest{})
	require.NoError(t, err)
	_, err = env.service.CreateVehicle(ctx, &CreateVehicleRequest{})
	assert.NoError(t, err)
}

func TestRouteWayPointsRoundTrip(t *testing.T) {
	env := setupDirectory(t)
	ctx := context.Background()

	created, err := env.service.CreateRoute(ctx, &CreateRouteRequest{
		StartPoint:    "Vienna",
		EndPoint:      "Prague",
		WayPoints:     []string{"Brno", "Jihlava"},
		EstimatedTime: time.Now().Add(12 * time.Hour),
	})
	require.NoError(t, err)

	got, err := env.service.GetRoute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Brno", "Jihlava"}, got.WayPoints)
}

func TestDispatcherValidation(t *testing.T) {
	env := setupDirectory(t)
	ctx := context.Background()

	badEmail := "not-an-email"
	_, err := env.service.CreateDispatcher(ctx, &CreateDispatcherRequest{
		Name:  "Bad Mail Co",
		Email: &badEmail,
	})
	require.Error(t, err)

	_, err = env.service.CreateDispatcher(ctx, &CreateDispatcherRequest{Name: ""})
	require.Error(t, err)
}
