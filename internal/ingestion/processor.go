package ingestion

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "cargo-transport/internal/domain/device"
	"cargo-transport/internal/logger"
	deviceUC "cargo-transport/internal/usecase/device"
	appErrors "cargo-transport/pkg/errors"
)

// LocationApplier applies one position report to a device. Satisfied by the
// device service.
type LocationApplier interface {
	RecordLocation(ctx context.Context, deviceID uuid.UUID, req *deviceUC.RecordLocationRequest) (*deviceUC.DeviceResponse, error)
}

// Processor fans incoming location reports out to a pool of workers. Each
// worker applies the report through the device service; on a version
// conflict it retries once with fresh state, since the report itself is
// still the latest word on where the device is.
type Processor struct {
	applier LocationApplier

	workerCount  int
	applyTimeout time.Duration

	locationChan chan *LocationMessage

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// mu guards stopped so Enqueue never races a send against close.
	mu      sync.Mutex
	stopped bool

	metrics *MetricsTracker
}

// NewProcessor creates a processor with the given worker pool size and
// channel buffer.
func NewProcessor(applier LocationApplier, workerCount, bufferSize int, applyTimeout time.Duration) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		applier:      applier,
		workerCount:  workerCount,
		applyTimeout: applyTimeout,
		locationChan: make(chan *LocationMessage, bufferSize),
		ctx:          ctx,
		cancel:       cancel,
		metrics:      NewMetricsTracker(),
	}
}

// Start starts the processor workers
func (p *Processor) Start() {
	logger.Info("Starting ingestion processor",
		zap.Int("workers", p.workerCount),
		zap.Int("buffer_size", cap(p.locationChan)),
	)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.locationWorker(i)
	}
}

// Stop rejects further enqueues, lets the workers drain the buffer, then
// releases the apply context. Safe to call more than once.
func (p *Processor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	close(p.locationChan)
	p.wg.Wait()
	p.cancel()
	logger.Info("Ingestion processor stopped")
}

// Enqueue queues a location report for processing. When the buffer is full
// the report is dropped rather than blocking the MQTT callback.
func (p *Processor) Enqueue(msg *LocationMessage) {
	if err := ValidateLocationMessage(msg); err != nil {
		logger.Warn("Invalid location message", zap.Error(err))
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}

	select {
	case p.locationChan <- msg:
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesReceived++
			m.BufferSize = len(p.locationChan)
		})
	default:
		logger.Warn("Location buffer full, dropping message",
			zap.String("device_id", msg.DeviceID),
		)
		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesFailed++
		})
	}
}

func (p *Processor) locationWorker(id int) {
	defer p.wg.Done()

	logger.Debug("Location worker started", zap.Int("worker_id", id))

	// Ranging over the channel keeps the worker alive until the buffer is
	// fully drained after Stop closes it.
	for msg := range p.locationChan {
		start := time.Now()
		if err := p.applyLocation(msg); err != nil {
			logger.Error("Failed to apply location report",
				zap.Int("worker_id", id),
				zap.String("device_id", msg.DeviceID),
				zap.Error(err),
			)
			p.metrics.Update(func(m *IngestMetrics) {
				m.MessagesFailed++
			})
			continue
		}

		p.metrics.Update(func(m *IngestMetrics) {
			m.MessagesProcessed++
			m.LastProcessedAt = time.Now()

			processingTime := time.Since(start)
			if m.AverageProcessingTime == 0 {
				m.AverageProcessingTime = processingTime
			} else {
				m.AverageProcessingTime = (m.AverageProcessingTime + processingTime) / 2
			}
		})
	}
}

// applyLocation pushes one report through the device service. A version
// conflict means some other writer touched the device between our read and
// write; the position report is still valid, so retry exactly once.
func (p *Processor) applyLocation(msg *LocationMessage) error {
	deviceID, err := uuid.Parse(msg.DeviceID)
	if err != nil {
		return err
	}

	req := &deviceUC.RecordLocationRequest{
		Latitude:   msg.Latitude,
		Longitude:  msg.Longitude,
		ObservedAt: msg.Timestamp,
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.applyTimeout)
	defer cancel()

	_, err = p.applier.RecordLocation(ctx, deviceID, req)
	if errors.Is(err, appErrors.ErrVersionConflict) {
		p.metrics.Update(func(m *IngestMetrics) {
			m.ConflictRetries++
		})
		_, err = p.applier.RecordLocation(ctx, deviceID, req)
	}
	if errors.Is(err, domainDevice.ErrDeviceNotFound) {
		logger.Warn("Location report for unknown device",
			zap.String("device_id", msg.DeviceID),
		)
		return err
	}
	return err
}

// GetMetrics returns current metrics
func (p *Processor) GetMetrics() IngestMetrics {
	return p.metrics.Snapshot()
}
