package directory

import "errors"

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrDispatcherNotFound = errors.New("dispatcher not found")
	ErrRouteNotFound      = errors.New("route not found")
	ErrVehicleNotFound    = errors.New("vehicle not found")

	ErrClientInUse     = errors.New("client is referenced by existing cargos")
	ErrDispatcherInUse = errors.New("dispatcher is referenced by existing cargos")
	ErrRouteInUse      = errors.New("route is referenced by existing cargos")
	ErrVehicleInUse    = errors.New("vehicle is assigned to an active cargo")

	ErrDuplicatePlate = errors.New("license plate already registered")
)
