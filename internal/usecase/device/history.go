package device

import (
	"context"
	"time"

	domainDevice "cargo-transport/internal/domain/device"
)

// Recorder appends to the device position history. History is append-only:
// the recorder inserts, never updates, and rows vanish only through the
// cascade when their device is deleted.
type Recorder struct {
	devices domainDevice.Repository
}

func NewRecorder(devices domainDevice.Repository) *Recorder {
	return &Recorder{devices: devices}
}

// RecordInitial writes the first history entry for a freshly created device,
// stamping its current position.
func (r *Recorder) RecordInitial(ctx context.Context, d *domainDevice.Device) error {
	return r.devices.AppendHistory(ctx, &domainDevice.HistoryEntry{
		DeviceID:  d.ID,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Timestamp: d.LastUpdate,
	})
}

// RecordIfChanged appends an entry only when the position actually moved.
// Updates that touch other fields leave the history untouched.
func (r *Recorder) RecordIfChanged(ctx context.Context, prev, next *domainDevice.Device) error {
	if prev.Latitude == next.Latitude && prev.Longitude == next.Longitude {
		return nil
	}
	return r.devices.AppendHistory(ctx, &domainDevice.HistoryEntry{
		DeviceID:  next.ID,
		Latitude:  next.Latitude,
		Longitude: next.Longitude,
		Timestamp: next.LastUpdate,
	})
}

// dayRange widens an optional [from, to] pair of instants into whole days:
// from is truncated to midnight and to is extended to the start of the next
// day, so both boundary days are fully included.
func dayRange(from, to *time.Time) (*time.Time, *time.Time) {
	var lo, hi *time.Time
	if from != nil {
		t := truncateToDay(*from)
		lo = &t
	}
	if to != nil {
		t := truncateToDay(*to).AddDate(0, 0, 1)
		hi = &t
	}
	return lo, hi
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
