package ingestion

import (
	"encoding/json"
	"time"
)

// LocationMessage represents one GPS position report published by a tracking
// device. The device id is taken from the topic, not the payload.
type LocationMessage struct {
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Altitude  *float64  `json:"altitude"`
	Speed     *float64  `json:"speed"`
	Accuracy  *float64  `json:"accuracy"`
}

// ParseLocationMessage parses a JSON payload into a LocationMessage.
func ParseLocationMessage(payload []byte) (*LocationMessage, error) {
	var msg LocationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return nil, err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	return &msg, nil
}
