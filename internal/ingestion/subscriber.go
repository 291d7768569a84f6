package ingestion

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"cargo-transport/internal/logger"
	pkgmqtt "cargo-transport/pkg/mqtt"
)

// DefaultLocationTopic matches position reports from every device. The
// wildcard segment carries the device id.
const DefaultLocationTopic = "devices/+/location"

// SubscriberConfig describes the topic and MQTT connection parameters.
type SubscriberConfig struct {
	ClientConfig  *pkgmqtt.Config
	LocationTopic string
	QoS           byte
}

// Subscriber wires MQTT location reports into the ingestion processor.
type Subscriber struct {
	cfg       *SubscriberConfig
	client    *pkgmqtt.Client
	processor *Processor

	mu            sync.Mutex
	started       bool
	subscriptions []string
}

// NewSubscriber builds a new MQTT subscriber for location ingestion.
func NewSubscriber(cfg *SubscriberConfig, processor *Processor) (*Subscriber, error) {
	if cfg == nil || cfg.ClientConfig == nil {
		return nil, errors.New("mqtt subscriber config is not configured")
	}
	if processor == nil {
		return nil, errors.New("processor is required")
	}
	if cfg.LocationTopic == "" {
		cfg.LocationTopic = DefaultLocationTopic
	}

	client := pkgmqtt.NewClient(cfg.ClientConfig)
	return &Subscriber{
		cfg:       cfg,
		client:    client,
		processor: processor,
	}, nil
}

// Start establishes the MQTT connection and subscribes to the location topic.
func (s *Subscriber) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}

	if err := s.client.Subscribe(s.cfg.LocationTopic, s.cfg.QoS, s.handleLocationMessage); err != nil {
		s.client.Disconnect()
		return fmt.Errorf("subscribe failed for topic %s: %w", s.cfg.LocationTopic, err)
	}
	s.subscriptions = append(s.subscriptions, s.cfg.LocationTopic)

	s.started = true
	return nil
}

// Stop unsubscribes and disconnects from the broker.
func (s *Subscriber) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if len(s.subscriptions) > 0 {
		if err := s.client.Unsubscribe(s.subscriptions...); err != nil {
			logger.Warn("Failed to unsubscribe from MQTT topics", zap.Error(err))
		}
	}

	s.client.Disconnect()
	s.started = false
	s.subscriptions = nil
}

// handleLocationMessage decodes a position report and hands it to the
// processor. The device id comes from the topic; an id in the payload is
// ignored when the topic carries one.
func (s *Subscriber) handleLocationMessage(topic string, payload []byte) {
	msg, err := ParseLocationMessage(payload)
	if err != nil {
		logger.Warn("Invalid location payload",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	if id, ok := deviceIDFromTopic(topic); ok {
		msg.DeviceID = id
	}

	s.processor.Enqueue(msg)
}

// deviceIDFromTopic extracts the device id segment from a
// devices/<id>/location topic.
func deviceIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) == 3 && parts[0] == "devices" && parts[2] == "location" {
		return parts[1], true
	}
	return "", false
}
