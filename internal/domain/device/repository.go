package device

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for devices and their position history.
//
// Attach, Detach and UpdateGuarded are version-guarded: they compare the row
// version token inside the UPDATE itself, so two concurrent mutations against
// the same observed version resolve to exactly one success and one
// errors.ErrVersionConflict.
type Repository interface {
	Create(ctx context.Context, d *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetByIDs(ctx context.Context, deviceIDs []uuid.UUID) ([]*Device, error)
	List(ctx context.Context) ([]*Device, error)
	ListByCargo(ctx context.Context, cargoID uuid.UUID) ([]*Device, error)
	UpdateGuarded(ctx context.Context, d *Device, expectedVersion int64) error
	Attach(ctx context.Context, deviceID, cargoID uuid.UUID, expectedVersion int64) error
	Detach(ctx context.Context, deviceID uuid.UUID, expectedVersion int64) error
	Delete(ctx context.Context, deviceID uuid.UUID) error

	// AppendHistory inserts one immutable history row. There is deliberately
	// no update or single-row delete for history.
	AppendHistory(ctx context.Context, entry *HistoryEntry) error
	// HistoryByDevice returns entries ordered by timestamp ascending,
	// restricted to [from, to) when the bounds are non-nil.
	HistoryByDevice(ctx context.Context, deviceID uuid.UUID, from, to *time.Time) ([]*HistoryEntry, error)
}
