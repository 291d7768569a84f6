package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDirectory "cargo-transport/internal/domain/directory"
	appErrors "cargo-transport/pkg/errors"
)

// ReferenceGuard blocks directory deletions that would orphan cargo
// references. Checks run inside the same transaction as the delete, so a
// cargo created concurrently cannot slip past the guard.
//
// Clients, dispatchers and routes are pinned by any cargo at all; vehicles
// only by cargos that have not reached a terminal status.
type ReferenceGuard struct {
	cargos domainCargo.Repository
}

func NewReferenceGuard(cargos domainCargo.Repository) *ReferenceGuard {
	return &ReferenceGuard{cargos: cargos}
}

func (g *ReferenceGuard) CheckClientDeletable(ctx context.Context, clientID uuid.UUID) error {
	n, err := g.cargos.CountByClient(ctx, clientID)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErrors.Invariant(
			fmt.Sprintf("client is referenced by %d cargo(s)", n),
			domainDirectory.ErrClientInUse,
		)
	}
	return nil
}

func (g *ReferenceGuard) CheckDispatcherDeletable(ctx context.Context, dispatcherID uuid.UUID) error {
	n, err := g.cargos.CountBySender(ctx, dispatcherID)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErrors.Invariant(
			fmt.Sprintf("dispatcher is referenced by %d cargo(s)", n),
			domainDirectory.ErrDispatcherInUse,
		)
	}
	return nil
}

func (g *ReferenceGuard) CheckRouteDeletable(ctx context.Context, routeID uuid.UUID) error {
	n, err := g.cargos.CountByRoute(ctx, routeID)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErrors.Invariant(
			fmt.Sprintf("route is referenced by %d cargo(s)", n),
			domainDirectory.ErrRouteInUse,
		)
	}
	return nil
}

func (g *ReferenceGuard) CheckVehicleDeletable(ctx context.Context, vehicleID uuid.UUID) error {
	n, err := g.cargos.CountActiveByVehicle(ctx, vehicleID)
	if err != nil {
		return err
	}
	if n > 0 {
		return appErrors.Invariant(
			fmt.Sprintf("vehicle is assigned to %d active cargo(s)", n),
			domainDirectory.ErrVehicleInUse,
		)
	}
	return nil
}
