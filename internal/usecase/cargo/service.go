package cargo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/domain/directory"
	"cargo-transport/internal/domain/store"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
	"cargo-transport/pkg/utils"
)

// Service implements cargo management. Every mutating operation runs inside
// a single transaction: the cargo write and the device reconciliation it
// triggers either all land or all roll back.
type Service struct {
	tx          store.TxManager
	cargos      domainCargo.Repository
	devices     domainDevice.Repository
	clients     directory.ClientRepository
	dispatchers directory.DispatcherRepository
	routes      directory.RouteRepository
	vehicles    directory.VehicleRepository
	reconciler  *Reconciler
}

func NewService(
	tx store.TxManager,
	cargos domainCargo.Repository,
	devices domainDevice.Repository,
	clients directory.ClientRepository,
	dispatchers directory.DispatcherRepository,
	routes directory.RouteRepository,
	vehicles directory.VehicleRepository,
	reconciler *Reconciler,
) *Service {
	return &Service{
		tx:          tx,
		cargos:      cargos,
		devices:     devices,
		clients:     clients,
		dispatchers: dispatchers,
		routes:      routes,
		vehicles:    vehicles,
		reconciler:  reconciler,
	}
}

func (s *Service) CreateCargo(ctx context.Context, req *CreateCargoRequest) (*CargoResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	status := domainCargo.StatusPending
	if req.Status != "" {
		parsed, ok := domainCargo.ParseStatus(req.Status)
		if !ok {
			return nil, appErrors.Validation(fmt.Sprintf("unknown status %q", req.Status), domainCargo.ErrInvalidStatus)
		}
		status = parsed
	}

	c := &domainCargo.Cargo{
		SenderID:  req.SenderID,
		ClientID:  req.ClientID,
		RouteID:   req.RouteID,
		VehicleID: req.VehicleID,
		Status:    status,
	}

	var outcome *ReconcileOutcome
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkReferences(ctx, c); err != nil {
			return err
		}
		if err := s.cargos.Create(ctx, c); err != nil {
			return err
		}
		var err error
		outcome, err = s.reconciler.Reconcile(ctx, c.ID, req.DeviceIDs)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.Devices = outcome.Devices
	logger.Info("Cargo created",
		zap.String("cargo_id", c.ID.String()),
		zap.String("status", string(c.Status)),
		zap.Int("devices_attached", len(outcome.Attached)),
		zap.String("event", "cargo_created"),
	)
	return ToCargoResponse(c, outcome.Unresolved), nil
}

// UpdateCargo replaces the cargo's mutable fields and reconciles its device
// set to req.DeviceIDs, all guarded by req.ExpectedVersion. A stale token
// rolls back every change, including any device attachments already applied.
func (s *Service) UpdateCargo(ctx context.Context, cargoID uuid.UUID, req *UpdateCargoRequest) (*CargoResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	status, ok := domainCargo.ParseStatus(req.Status)
	if !ok {
		return nil, appErrors.Validation(fmt.Sprintf("unknown status %q", req.Status), domainCargo.ErrInvalidStatus)
	}

	var (
		updated *domainCargo.Cargo
		outcome *ReconcileOutcome
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.cargos.GetByID(ctx, cargoID)
		if err != nil {
			return err
		}

		current.SenderID = req.SenderID
		current.ClientID = req.ClientID
		current.RouteID = req.RouteID
		current.VehicleID = req.VehicleID
		current.Status = status

		if err := s.checkReferences(ctx, current); err != nil {
			return err
		}
		if err := s.cargos.UpdateGuarded(ctx, current, req.ExpectedVersion); err != nil {
			return err
		}

		outcome, err = s.reconciler.Reconcile(ctx, cargoID, req.DeviceIDs)
		if err != nil {
			return err
		}

		updated, err = s.cargos.GetByID(ctx, cargoID)
		return err
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrVersionConflict) {
			logger.Warn("Cargo update rejected on stale version",
				zap.String("cargo_id", cargoID.String()),
				zap.Int64("expected_version", req.ExpectedVersion),
			)
		}
		return nil, err
	}

	updated.Devices = outcome.Devices
	logger.Info("Cargo updated",
		zap.String("cargo_id", cargoID.String()),
		zap.String("status", string(updated.Status)),
		zap.Int("devices_attached", len(outcome.Attached)),
		zap.Int("devices_detached", len(outcome.Detached)),
		zap.String("event", "cargo_updated"),
	)
	return ToCargoResponse(updated, outcome.Unresolved), nil
}

// DeleteCargo removes a cargo after detaching its devices. Devices survive
// the delete unassigned; only the association is severed. A cargo that is
// currently in transit cannot be deleted.
func (s *Service) DeleteCargo(ctx context.Context, cargoID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.cargos.GetWithDevices(ctx, cargoID)
		if err != nil {
			return err
		}
		if c.Status == domainCargo.StatusInTransit {
			return appErrors.Invariant("cargo is in transit", domainCargo.ErrCargoInTransit)
		}

		for _, d := range c.Devices {
			if err := s.devices.Detach(ctx, d.ID, d.Version); err != nil {
				return fmt.Errorf("detaching device %s: %w", d.ID, err)
			}
		}
		return s.cargos.Delete(ctx, cargoID)
	})
	if err != nil {
		return err
	}

	logger.Info("Cargo deleted",
		zap.String("cargo_id", cargoID.String()),
		zap.String("event", "cargo_deleted"),
	)
	return nil
}

func (s *Service) GetCargo(ctx context.Context, cargoID uuid.UUID) (*CargoResponse, error) {
	c, err := s.cargos.GetWithDevices(ctx, cargoID)
	if err != nil {
		return nil, err
	}
	return ToCargoResponse(c, nil), nil
}

func (s *Service) ListCargos(ctx context.Context) (*CargoListResponse, error) {
	cargos, err := s.cargos.List(ctx)
	if err != nil {
		return nil, err
	}
	return toListResponse(cargos), nil
}

func (s *Service) ListCargosByClient(ctx context.Context, clientID uuid.UUID) (*CargoListResponse, error) {
	cargos, err := s.cargos.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toListResponse(cargos), nil
}

// checkReferences verifies that every directory entity the cargo points at
// exists. Unlike device ids, a dangling directory reference fails the whole
// operation.
func (s *Service) checkReferences(ctx context.Context, c *domainCargo.Cargo) error {
	ok, err := s.dispatchers.Exists(ctx, c.SenderID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NotFound(fmt.Sprintf("dispatcher %s not found", c.SenderID), directory.ErrDispatcherNotFound)
	}

	ok, err = s.clients.Exists(ctx, c.ClientID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NotFound(fmt.Sprintf("client %s not found", c.ClientID), directory.ErrClientNotFound)
	}

	ok, err = s.routes.Exists(ctx, c.RouteID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.NotFound(fmt.Sprintf("route %s not found", c.RouteID), directory.ErrRouteNotFound)
	}

	if c.VehicleID != nil {
		ok, err = s.vehicles.Exists(ctx, *c.VehicleID)
		if err != nil {
			return err
		}
		if !ok {
			return appErrors.NotFound(fmt.Sprintf("vehicle %s not found", *c.VehicleID), directory.ErrVehicleNotFound)
		}
	}
	return nil
}

func toListResponse(cargos []*domainCargo.Cargo) *CargoListResponse {
	out := make([]CargoResponse, len(cargos))
	for i, c := range cargos {
		out[i] = *ToCargoResponse(c, nil)
	}
	return &CargoListResponse{Cargos: out, Total: len(out)}
}
