package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainCargo "cargo-transport/internal/domain/cargo"
	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/domain/store"
	"cargo-transport/internal/logger"
	appErrors "cargo-transport/pkg/errors"
	"cargo-transport/pkg/utils"
)

// Service implements device management and location recording. Mutations
// that touch both the device row and its history run inside one transaction.
type Service struct {
	tx            store.TxManager
	devices       domainDevice.Repository
	cargos        domainCargo.Repository
	recorder      *Recorder
	allowReassign bool
}

func NewService(tx store.TxManager, devices domainDevice.Repository, cargos domainCargo.Repository, allowReassign bool) *Service {
	return &Service{
		tx:            tx,
		devices:       devices,
		cargos:        cargos,
		recorder:      NewRecorder(devices),
		allowReassign: allowReassign,
	}
}

// checkAssignment validates a requested cargo assignment. The cargo must
// exist, and moving a device that is attached to a different cargo follows
// the same reassignment policy the cargo-side reconciler enforces.
func (s *Service) checkAssignment(ctx context.Context, prev *domainDevice.Device, cargoID *uuid.UUID) error {
	if cargoID == nil {
		return nil
	}
	if _, err := s.cargos.GetByID(ctx, *cargoID); err != nil {
		if errors.Is(err, domainCargo.ErrCargoNotFound) {
			return appErrors.NotFound(fmt.Sprintf("cargo %s not found", *cargoID), domainCargo.ErrCargoNotFound)
		}
		return err
	}
	if prev != nil && prev.CargoID != nil && *prev.CargoID != *cargoID && !s.allowReassign {
		return appErrors.Invariant(
			fmt.Sprintf("device %s is already attached to cargo %s", prev.ID, prev.CargoID),
			domainDevice.ErrDeviceOwnedElsewhere,
		)
	}
	return nil
}

func (s *Service) CreateDevice(ctx context.Context, req *CreateDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}
	deviceType, err := parseType(req.Type)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	d := &domainDevice.Device{
		Type:       deviceType,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		LastUpdate: time.Now().UTC(),
		CargoID:    req.CargoID,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkAssignment(ctx, nil, req.CargoID); err != nil {
			return err
		}
		if err := s.devices.Create(ctx, d); err != nil {
			return err
		}
		return s.recorder.RecordInitial(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Device created",
		zap.String("device_id", d.ID.String()),
		zap.String("type", string(d.Type)),
		zap.String("event", "device_created"),
	)
	return ToDeviceResponse(d), nil
}

// UpdateDevice rewrites the device's mutable fields under the caller's
// version token. The value sent as CargoID becomes the new assignment, nil
// included; it must name an existing cargo and honors the reassignment
// policy. Position changes append to the history.
func (s *Service) UpdateDevice(ctx context.Context, deviceID uuid.UUID, req *UpdateDeviceRequest) (*DeviceResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation(err.Error(), appErrors.ErrInvalidInput)
	}
	deviceType, err := parseType(req.Type)
	if err != nil {
		return nil, err
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	var updated *domainDevice.Device
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		prev, err := s.devices.GetByID(ctx, deviceID)
		if err != nil {
			return err
		}
		if err := s.checkAssignment(ctx, prev, req.CargoID); err != nil {
			return err
		}

		next := *prev
		next.Type = deviceType
		next.Latitude = req.Latitude
		next.Longitude = req.Longitude
		next.CargoID = req.CargoID
		next.LastUpdate = time.Now().UTC()

		if err := s.devices.UpdateGuarded(ctx, &next, req.ExpectedVersion); err != nil {
			return err
		}
		if err := s.recorder.RecordIfChanged(ctx, prev, &next); err != nil {
			return err
		}

		updated, err = s.devices.GetByID(ctx, deviceID)
		return err
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrVersionConflict) {
			logger.Warn("Device update rejected on stale version",
				zap.String("device_id", deviceID.String()),
				zap.Int64("expected_version", req.ExpectedVersion),
			)
		}
		return nil, err
	}

	logger.Info("Device updated",
		zap.String("device_id", deviceID.String()),
		zap.String("event", "device_updated"),
	)
	return ToDeviceResponse(updated), nil
}

// RecordLocation applies one position report. The write is a single
// load-then-guarded-update attempt; on concurrent modification the conflict
// surfaces to the caller, which decides whether to retry with fresh state.
func (s *Service) RecordLocation(ctx context.Context, deviceID uuid.UUID, req *RecordLocationRequest) (*DeviceResponse, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	observedAt := req.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	var updated *domainDevice.Device
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		prev, err := s.devices.GetByID(ctx, deviceID)
		if err != nil {
			return err
		}

		next := *prev
		next.Latitude = req.Latitude
		next.Longitude = req.Longitude
		next.LastUpdate = observedAt

		if err := s.devices.UpdateGuarded(ctx, &next, prev.Version); err != nil {
			return err
		}
		if err := s.recorder.RecordIfChanged(ctx, prev, &next); err != nil {
			return err
		}

		updated, err = s.devices.GetByID(ctx, deviceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ToDeviceResponse(updated), nil
}

// DeleteDevice removes a device and, via the cascade, its entire history.
// A device still attached to a cargo cannot be deleted.
func (s *Service) DeleteDevice(ctx context.Context, deviceID uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		d, err := s.devices.GetByID(ctx, deviceID)
		if err != nil {
			return err
		}
		if d.CargoID != nil {
			return appErrors.Invariant("device is attached to a cargo", domainDevice.ErrDeviceAssigned)
		}
		return s.devices.Delete(ctx, deviceID)
	})
	if err != nil {
		return err
	}

	logger.Info("Device deleted",
		zap.String("device_id", deviceID.String()),
		zap.String("event", "device_deleted"),
	)
	return nil
}

func (s *Service) GetDevice(ctx context.Context, deviceID uuid.UUID) (*DeviceResponse, error) {
	d, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return ToDeviceResponse(d), nil
}

func (s *Service) ListDevices(ctx context.Context) (*DeviceListResponse, error) {
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]DeviceResponse, len(devices))
	for i, d := range devices {
		out[i] = *ToDeviceResponse(d)
	}
	return &DeviceListResponse{Devices: out, Total: len(out)}, nil
}

// GetDeviceHistory returns the device's position trail ordered oldest first.
// Date bounds are interpreted as whole days, both ends inclusive.
func (s *Service) GetDeviceHistory(ctx context.Context, deviceID uuid.UUID, q *HistoryQuery) (*HistoryResponse, error) {
	if _, err := s.devices.GetByID(ctx, deviceID); err != nil {
		return nil, err
	}

	var from, to *time.Time
	if q != nil {
		if q.From != nil && q.To != nil && q.To.Before(*q.From) {
			return nil, appErrors.Validation("history range end precedes start", appErrors.ErrInvalidInput)
		}
		from, to = dayRange(q.From, q.To)
	}

	entries, err := s.devices.HistoryByDevice(ctx, deviceID, from, to)
	if err != nil {
		return nil, err
	}
	return ToHistoryResponse(deviceID, entries), nil
}
