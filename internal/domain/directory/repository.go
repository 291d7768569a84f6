package directory

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository persists clients. UpdateGuarded compares the version token
// in the write itself; a stale version yields errors.ErrVersionConflict.
type ClientRepository interface {
	Create(ctx context.Context, c *Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*Client, error)
	List(ctx context.Context) ([]*Client, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateGuarded(ctx context.Context, c *Client, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DispatcherRepository interface {
	Create(ctx context.Context, d *Dispatcher) error
	GetByID(ctx context.Context, id uuid.UUID) (*Dispatcher, error)
	List(ctx context.Context) ([]*Dispatcher, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateGuarded(ctx context.Context, d *Dispatcher, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RouteRepository interface {
	Create(ctx context.Context, r *Route) error
	GetByID(ctx context.Context, id uuid.UUID) (*Route, error)
	List(ctx context.Context) ([]*Route, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateGuarded(ctx context.Context, r *Route, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type VehicleRepository interface {
	Create(ctx context.Context, v *Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*Vehicle, error)
	List(ctx context.Context) ([]*Vehicle, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateGuarded(ctx context.Context, v *Vehicle, expectedVersion int64) error
	Delete(ctx context.Context, id uuid.UUID) error
}
