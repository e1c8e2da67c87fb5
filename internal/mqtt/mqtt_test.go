package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFormatPayload(t *testing.T) {
	event := Event{
		Timestamp: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
		Output:    "front",
		Effect:    "blink",
		State:     2,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}

	if decoded.LED.Timestamp != "2025-03-14T15:09:26Z" {
		t.Errorf("timestamp = %q, want RFC3339 UTC", decoded.LED.Timestamp)
	}
	if decoded.LED.Output != "front" {
		t.Errorf("output = %q, want front", decoded.LED.Output)
	}
	if decoded.LED.Effect != "blink" {
		t.Errorf("effect = %q, want blink", decoded.LED.Effect)
	}
	if decoded.LED.State != 2 {
		t.Errorf("state = %d, want 2", decoded.LED.State)
	}
	if !decoded.LED.On {
		t.Error("on = false, want true for nonzero state")
	}
}

func TestFormatPayloadOff(t *testing.T) {
	payload, err := FormatPayload(Event{
		Timestamp: time.Now(),
		Output:    "front",
		Effect:    "pulse",
		State:     0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.LED.On {
		t.Error("on = true, want false for state 0")
	}
}

func TestFormatPayloadLocalTimeNormalized(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	event := Event{
		Timestamp: time.Date(2025, 3, 14, 16, 9, 26, 0, loc),
		Output:    "front",
		Effect:    "blink",
		State:     1,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded Payload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.LED.Timestamp != "2025-03-14T15:09:26Z" {
		t.Errorf("timestamp = %q, want UTC-normalized", decoded.LED.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded SystemPayload
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.System.Event != "SHUTDOWN" {
		t.Errorf("event = %q, want SHUTDOWN", decoded.System.Event)
	}
	if decoded.System.Reason != "SIGTERM" {
		t.Errorf("reason = %q, want SIGTERM", decoded.System.Reason)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "HEARTBEAT",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw map[string]map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatal(err)
	}
	if _, ok := raw["system"]["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"system":{"event":"STARTUP","outputs":3}}`)
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp:  time.Now(),
		Event:      "STARTUP",
		RawPayload: raw,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("payload = %s, want the raw payload unchanged", payload)
	}
}

func TestFakePublisherRecords(t *testing.T) {
	f := NewFakePublisher()

	event := Event{Timestamp: time.Now(), Output: "front", Effect: "blink", State: 1}
	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 || f.Events[0].Output != "front" {
		t.Errorf("events = %+v, want the published event", f.Events)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads = %d, want 1", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("broker down")

	if err := f.Publish(Event{}); err == nil {
		t.Error("expected error")
	}
	if len(f.Events) != 0 {
		t.Error("failed publish should not record the event")
	}
}

func TestFakePublisherClose(t *testing.T) {
	f := NewFakePublisher()
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("Closed should be set")
	}
}
