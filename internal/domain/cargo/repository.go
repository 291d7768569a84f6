package cargo

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for cargos. Updates are
// guarded by the row version token: a stale expectedVersion yields
// errors.ErrVersionConflict from the implementation, and a successful update
// writes expectedVersion+1 atomically with the field changes.
type Repository interface {
	Create(ctx context.Context, c *Cargo) error
	GetByID(ctx context.Context, cargoID uuid.UUID) (*Cargo, error)
	GetWithDevices(ctx context.Context, cargoID uuid.UUID) (*Cargo, error)
	List(ctx context.Context) ([]*Cargo, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*Cargo, error)
	UpdateGuarded(ctx context.Context, c *Cargo, expectedVersion int64) error
	Delete(ctx context.Context, cargoID uuid.UUID) error

	// Reference counts used by the lifecycle guard when deleting directory
	// entities. Checks run inside the same transaction as the delete.
	CountBySender(ctx context.Context, senderID uuid.UUID) (int64, error)
	CountByClient(ctx context.Context, clientID uuid.UUID) (int64, error)
	CountByRoute(ctx context.Context, routeID uuid.UUID) (int64, error)
	CountActiveByVehicle(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}
