package cargo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
)

// Reconciler brings a cargo's attached device set in line with a requested
// target set. Detaches run before attaches; both are version-guarded device
// mutations, so a concurrently modified device fails the enclosing
// transaction with a conflict instead of being silently overwritten.
//
// Requested ids that do not resolve to existing devices are reported back as
// a warning rather than failing the operation: partial fulfillment is
// preferable to blocking an entire cargo update over one bad device id.
type Reconciler struct {
	devices       domainDevice.Repository
	allowReassign bool
}

// NewReconciler creates a reconciler. allowReassign controls what happens
// when a target device already belongs to a different cargo: true moves the
// device (last writer wins), false rejects the attach as an invariant
// violation.
func NewReconciler(devices domainDevice.Repository, allowReassign bool) *Reconciler {
	return &Reconciler{
		devices:       devices,
		allowReassign: allowReassign,
	}
}

// ReconcileOutcome reports what a reconciliation run changed.
type ReconcileOutcome struct {
	Attached   []uuid.UUID
	Detached   []uuid.UUID
	Unresolved []uuid.UUID

	// Devices is the fully reconciled device set of the cargo.
	Devices []*domainDevice.Device
}

// Reconcile computes toDetach = current \ target and toAttach = target \
// current, then applies both. Devices already attached to the cargo and kept
// in the target set are not touched, which makes a repeated run with the
// same target a no-op.
func (r *Reconciler) Reconcile(ctx context.Context, cargoID uuid.UUID, target []uuid.UUID) (*ReconcileOutcome, error) {
	current, err := r.devices.ListByCargo(ctx, cargoID)
	if err != nil {
		return nil, err
	}

	toDetach, toAttach := diffAssignments(current, target)
	outcome := &ReconcileOutcome{}

	for _, d := range toDetach {
		if err := r.devices.Detach(ctx, d.ID, d.Version); err != nil {
			return nil, fmt.Errorf("detaching device %s: %w", d.ID, err)
		}
		outcome.Detached = append(outcome.Detached, d.ID)
		logger.Info("Device detached from cargo",
			zap.String("device_id", d.ID.String()),
			zap.String("cargo_id", cargoID.String()),
			zap.String("event", "device_detached"),
		)
	}

	resolved, err := r.devices.GetByIDs(ctx, toAttach)
	if err != nil {
		return nil, err
	}
	resolvedSet := make(map[uuid.UUID]*domainDevice.Device, len(resolved))
	for _, d := range resolved {
		resolvedSet[d.ID] = d
	}

	for _, id := range toAttach {
		d, ok := resolvedSet[id]
		if !ok {
			outcome.Unresolved = append(outcome.Unresolved, id)
			logger.Warn("Requested device not found for attachment",
				zap.String("device_id", id.String()),
				zap.String("cargo_id", cargoID.String()),
			)
			continue
		}

		if d.CargoID != nil && *d.CargoID != cargoID && !r.allowReassign {
			return nil, appErrors.Invariant(
				fmt.Sprintf("device %s is already attached to cargo %s", d.ID, d.CargoID),
				domainDevice.ErrDeviceOwnedElsewhere,
			)
		}

		if err := r.devices.Attach(ctx, d.ID, cargoID, d.Version); err != nil {
			return nil, fmt.Errorf("attaching device %s: %w", d.ID, err)
		}
		outcome.Attached = append(outcome.Attached, d.ID)
		logger.Info("Device attached to cargo",
			zap.String("device_id", d.ID.String()),
			zap.String("cargo_id", cargoID.String()),
			zap.String("event", "device_attached"),
		)
	}

	outcome.Devices, err = r.devices.ListByCargo(ctx, cargoID)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// diffAssignments splits the requested target set against the currently
// attached devices. Duplicate target ids are collapsed.
func diffAssignments(current []*domainDevice.Device, target []uuid.UUID) (toDetach []*domainDevice.Device, toAttach []uuid.UUID) {
	targetSet := make(map[uuid.UUID]struct{}, len(target))
	ordered := make([]uuid.UUID, 0, len(target))
	for _, id := range target {
		if _, seen := targetSet[id]; seen {
			continue
		}
		targetSet[id] = struct{}{}
		ordered = append(ordered, id)
	}

	currentSet := make(map[uuid.UUID]struct{}, len(current))
	for _, d := range current {
		currentSet[d.ID] = struct{}{}
		if _, keep := targetSet[d.ID]; !keep {
			toDetach = append(toDetach, d)
		}
	}

	for _, id := range ordered {
		if _, attached := currentSet[id]; !attached {
			toAttach = append(toAttach, id)
		}
	}
	return toDetach, toAttach
}
