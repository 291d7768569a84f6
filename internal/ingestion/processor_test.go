package ingestion

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cargo-transport/internal/logger"
	deviceUC "cargo-transport/internal/usecase/device"
	appErrors "cargo-transport/pkg/errors"
)

func TestMain(m *testing.M) {
	if err := logger.Init("development"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type stubApplier struct {
	mu        sync.Mutex
	calls     []uuid.UUID
	failFirst bool
	err       error
}

func (s *stubApplier) RecordLocation(_ context.Context, deviceID uuid.UUID, _ *deviceUC.RecordLocationRequest) (*deviceUC.DeviceResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, deviceID)
	if s.failFirst && len(s.calls) == 1 {
		return nil, appErrors.ErrVersionConflict
	}
	if s.err != nil {
		return nil, s.err
	}
	return &deviceUC.DeviceResponse{ID: deviceID}, nil
}

func (s *stubApplier) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func validMessage(deviceID uuid.UUID) *LocationMessage {
	return &LocationMessage{
		DeviceID:  deviceID.String(),
		Timestamp: time.Now().UTC(),
		Latitude:  59.33,
		Longitude: 18.07,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestProcessorAppliesLocationReports(t *testing.T) {
	applier := &stubApplier{}
	p := NewProcessor(applier, 2, 16, time.Second)
	p.Start()
	defer p.Stop()

	id := uuid.New()
	p.Enqueue(validMessage(id))

	waitFor(t, func() bool { return p.GetMetrics().MessagesProcessed == 1 })
	assert.Equal(t, 1, applier.callCount())
	assert.Equal(t, int64(1), p.GetMetrics().MessagesReceived)
	assert.Zero(t, p.GetMetrics().MessagesFailed)
}

func TestProcessorRetriesOnceOnVersionConflict(t *testing.T) {
	applier := &stubApplier{failFirst: true}
	p := NewProcessor(applier, 1, 16, time.Second)
	p.Start()
	defer p.Stop()

	p.Enqueue(validMessage(uuid.New()))

	waitFor(t, func() bool { return p.GetMetrics().MessagesProcessed == 1 })
	assert.Equal(t, 2, applier.callCount())
	assert.Equal(t, int64(1), p.GetMetrics().ConflictRetries)
}

func TestProcessorCountsPersistentFailure(t *testing.T) {
	applier := &stubApplier{err: appErrors.ErrVersionConflict}
	p := NewProcessor(applier, 1, 16, time.Second)
	p.Start()
	defer p.Stop()

	p.Enqueue(validMessage(uuid.New()))

	waitFor(t, func() bool { return p.GetMetrics().MessagesFailed == 1 })
	// One initial attempt plus exactly one retry, never more.
	assert.Equal(t, 2, applier.callCount())
	assert.Zero(t, p.GetMetrics().MessagesProcessed)
}

func TestProcessorDropsInvalidMessages(t *testing.T) {
	applier := &stubApplier{}
	p := NewProcessor(applier, 1, 16, time.Second)
	p.Start()
	defer p.Stop()

	msg := validMessage(uuid.New())
	msg.Latitude = 95
	p.Enqueue(msg)

	waitFor(t, func() bool { return p.GetMetrics().MessagesFailed == 1 })
	assert.Zero(t, applier.callCount())
}

func TestValidateLocationMessage(t *testing.T) {
	base := validMessage(uuid.New())
	require.NoError(t, ValidateLocationMessage(base))

	cases := []struct {
		name   string
		mutate func(*LocationMessage)
	}{
		{"missing device id", func(m *LocationMessage) { m.DeviceID = "" }},
		{"malformed device id", func(m *LocationMessage) { m.DeviceID = "not-a-uuid" }},
		{"zero timestamp", func(m *LocationMessage) { m.Timestamp = time.Time{} }},
		{"latitude too high", func(m *LocationMessage) { m.Latitude = 90.01 }},
		{"longitude too low", func(m *LocationMessage) { m.Longitude = -180.5 }},
		{"negative speed", func(m *LocationMessage) { s := -1.0; m.Speed = &s }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := *validMessage(uuid.New())
			tc.mutate(&msg)
			assert.Error(t, ValidateLocationMessage(&msg))
		})
	}
}

func TestParseLocationMessageDefaultsTimestamp(t *testing.T) {
	msg, err := ParseLocationMessage([]byte(`{"latitude": 10.5, "longitude": -3.25}`))
	require.NoError(t, err)
	assert.Equal(t, 10.5, msg.Latitude)
	assert.False(t, msg.Timestamp.IsZero())

	_, err = ParseLocationMessage([]byte(`{broken`))
	assert.Error(t, err)
}

func TestDeviceIDFromTopic(t *testing.T) {
	id, ok := deviceIDFromTopic("devices/abc-123/location")
	require.True(t, ok)
	assert.Equal(t, "abc-123", id)

	_, ok = deviceIDFromTopic("devices/abc-123/status")
	assert.False(t, ok)

	_, ok = deviceIDFromTopic("telemetry/abc-123/location")
	assert.False(t, ok)
}

func TestProcessorStopDrainsBufferedReports(t *testing.T) {
	applier := &stubApplier{}
	p := NewProcessor(applier, 1, 16, time.Second)

	// Fill the buffer before any worker runs, then start and stop: every
	// buffered report must still be applied.
	for i := 0; i < 10; i++ {
		p.Enqueue(validMessage(uuid.New()))
	}
	p.Start()
	p.Stop()

	assert.Equal(t, 10, applier.callCount())
	assert.Equal(t, int64(10), p.GetMetrics().MessagesProcessed)
}

func TestProcessorEnqueueAfterStopIsSafe(t *testing.T) {
	applier := &stubApplier{}
	p := NewProcessor(applier, 1, 16, time.Second)
	p.Start()
	p.Stop()

	// Late MQTT callbacks must be dropped, not panic on a closed channel.
	p.Enqueue(validMessage(uuid.New()))
	p.Stop()

	assert.Zero(t, applier.callCount())
	assert.Zero(t, p.GetMetrics().MessagesReceived)
}
