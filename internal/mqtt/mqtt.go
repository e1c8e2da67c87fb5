// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"
)

// Topic is the MQTT topic for LED state-change events.
const Topic = "badge/leds/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "badge/leds/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an LED event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Event represents one LED output state change.
type Event struct {
	Timestamp time.Time
	Output    string // configured output or group name
	Effect    string // effect name, e.g. "blink"
	State     uint8  // effect state value; 0 is off
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	LED LEDPayload `json:"led"`
}

// LEDPayload contains the LED event details.
type LEDPayload struct {
	Timestamp string `json:"timestamp"`
	Output    string `json:"output"`
	Effect    string `json:"effect"`
	State     uint8  `json:"state"`
	On        bool   `json:"on"`
}

// FormatPayload creates the JSON payload for an LED event.
func FormatPayload(event Event) ([]byte, error) {
	payload := Payload{
		LED: LEDPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Output:    event.Output,
			Effect:    event.Effect,
			State:     event.State,
			On:        event.State != 0,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
