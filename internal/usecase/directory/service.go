package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDirectory "cargo-transport/internal/domain/directory"
	"cargo-transport/internal/domain/store"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
	"cargo-transport/pkg/utils"
)

// Service implements CRUD for the directory entities a cargo references:
// clients, dispatchers, routes and vehicles. Deletes run inside a
// transaction together with their reference-guard check.
type Service struct {
	tx          store.TxManager
	clients     domainDirectory.ClientRepository
	dispatchers domainDirectory.DispatcherRepository
	routes      domainDirectory.RouteRepository
	vehicles    domainDirectory.VehicleRepository
	guard       *ReferenceGuard
}

func NewService(
	tx store.TxManager,
	clients domainDirectory.ClientRepository,
	dispatchers domainDirectory.DispatcherRepository,
	routes domainDirectory.RouteRepository,
	vehicles domainDirectory.VehicleRepository,
	guard *ReferenceGuard,
) *Service {
	return &Service{
		tx:          tx,
		clients:     clients,
		dispatchers: dispatchers,
		routes:      routes,
		vehicles:    vehicles,
		guard:       guard,
	}
}

func (s *Service) CreateClient(ctx context.Context, req *CreateClientRequest) (*ClientResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	c := &domainDirectory.Client{Name: req.Name}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.Info("Client created", zap.String("client_id", c.ID.String()))
	return toClientResponse(c), nil
}

func (s *Service) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

func (s *Service) ListClients(ctx context.Context) ([]ClientResponse, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ClientResponse, len(clients))
	for i, c := range clients {
		out[i] = *toClientResponse(c)
	}
	return out, nil
}

func (s *Service) UpdateClient(ctx context.Context, id uuid.UUID, req *UpdateClientRequest) (*ClientResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = req.Name

	if err := s.clients.UpdateGuarded(ctx, c, req.ExpectedVersion); err != nil {
		return nil, err
	}
	c, err = s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

func (s *Service) DeleteClient(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.clients.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.guard.CheckClientDeletable(ctx, id); err != nil {
			return err
		}
		return s.clients.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Info("Client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *Service) CreateDispatcher(ctx context.Context, req *CreateDispatcherRequest) (*DispatcherResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	d := &domainDirectory.Dispatcher{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if err := s.dispatchers.Create(ctx, d); err != nil {
		return nil, err
	}
	logger.Info("Dispatcher created", zap.String("dispatcher_id", d.ID.String()))
	return toDispatcherResponse(d), nil
}

func (s *Service) GetDispatcher(ctx context.Context, id uuid.UUID) (*DispatcherResponse, error) {
	d, err := s.dispatchers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDispatcherResponse(d), nil
}

func (s *Service) ListDispatchers(ctx context.Context) ([]DispatcherResponse, error) {
	dispatchers, err := s.dispatchers.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DispatcherResponse, len(dispatchers))
	for i, d := range dispatchers {
		out[i] = *toDispatcherResponse(d)
	}
	return out, nil
}

func (s *Service) UpdateDispatcher(ctx context.Context, id uuid.UUID, req *UpdateDispatcherRequest) (*DispatcherResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	d, err := s.dispatchers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Name = req.Name
	d.Email = req.Email
	d.Phone = req.Phone

	if err := s.dispatchers.UpdateGuarded(ctx, d, req.ExpectedVersion); err != nil {
		return nil, err
	}
	d, err = s.dispatchers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDispatcherResponse(d), nil
}

func (s *Service) DeleteDispatcher(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.dispatchers.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.guard.CheckDispatcherDeletable(ctx, id); err != nil {
			return err
		}
		return s.dispatchers.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Info("Dispatcher deleted", zap.String("dispatcher_id", id.String()))
	return nil
}

func (s *Service) CreateRoute(ctx context.Context, req *CreateRouteRequest) (*RouteResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	r := &domainDirectory.Route{
		StartPoint:    req.StartPoint,
		EndPoint:      req.EndPoint,
		WayPoints:     req.WayPoints,
		EstimatedTime: req.EstimatedTime,
	}
	if err := s.routes.Create(ctx, r); err != nil {
		return nil, err
	}
	logger.Info("Route created", zap.String("route_id", r.ID.String()))
	return toRouteResponse(r), nil
}

func (s *Service) GetRoute(ctx context.Context, id uuid.UUID) (*RouteResponse, error) {
	r, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRouteResponse(r), nil
}

func (s *Service) ListRoutes(ctx context.Context) ([]RouteResponse, error) {
	routes, err := s.routes.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RouteResponse, len(routes))
	for i, r := range routes {
		out[i] = *toRouteResponse(r)
	}
	return out, nil
}

func (s *Service) UpdateRoute(ctx context.Context, id uuid.UUID, req *UpdateRouteRequest) (*RouteResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	r, err := s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.StartPoint = req.StartPoint
	r.EndPoint = req.EndPoint
	r.WayPoints = req.WayPoints
	r.EstimatedTime = req.EstimatedTime

	if err := s.routes.UpdateGuarded(ctx, r, req.ExpectedVersion); err != nil {
		return nil, err
	}
	r, err = s.routes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRouteResponse(r), nil
}

func (s *Service) DeleteRoute(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.routes.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.guard.CheckRouteDeletable(ctx, id); err != nil {
			return err
		}
		return s.routes.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Info("Route deleted", zap.String("route_id", id.String()))
	return nil
}

func (s *Service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	v := &domainDirectory.Vehicle{
		LicensePlate: req.LicensePlate,
		DriverName:   req.DriverName,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkPlateAvailable(ctx, req.LicensePlate, uuid.Nil); err != nil {
			return err
		}
		return s.vehicles.Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Vehicle created", zap.String("vehicle_id", v.ID.String()))
	return toVehicleResponse(v), nil
}

func (s *Service) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleResponse, error) {
	v, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toVehicleResponse(v), nil
}

func (s *Service) ListVehicles(ctx context.Context) ([]VehicleResponse, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]VehicleResponse, len(vehicles))
	for i, v := range vehicles {
		out[i] = *toVehicleResponse(v)
	}
	return out, nil
}

func (s *Service) UpdateVehicle(ctx context.Context, id uuid.UUID, req *UpdateVehicleRequest) (*VehicleResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}

	var updated *domainDirectory.Vehicle
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.vehicles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkPlateAvailable(ctx, req.LicensePlate, id); err != nil {
			return err
		}
		v.LicensePlate = req.LicensePlate
		v.DriverName = req.DriverName

		if err := s.vehicles.UpdateGuarded(ctx, v, req.ExpectedVersion); err != nil {
			return err
		}
		updated, err = s.vehicles.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toVehicleResponse(updated), nil
}

func (s *Service) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.vehicles.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.guard.CheckVehicleDeletable(ctx, id); err != nil {
			return err
		}
		return s.vehicles.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	logger.Info("Vehicle deleted", zap.String("vehicle_id", id.String()))
	return nil
}

// checkPlateAvailable rejects a license plate already registered to a
// different vehicle. Pass uuid.Nil as self when creating.
func (s *Service) checkPlateAvailable(ctx context.Context, plate *string, self uuid.UUID) error {
	if plate == nil || *plate == "" {
		return nil
	}
	existing, err := s.vehicles.GetByPlate(ctx, *plate)
	if err != nil {
		if errors.Is(err, domainDirectory.ErrVehicleNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return appErrors.Validation(
			fmt.Sprintf("license plate %q already registered", *plate),
			domainDirectory.ErrDuplicatePlate,
		)
	}
	return nil
}
