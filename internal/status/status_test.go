package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := Config{PollMs: 10, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", snap.Config.PollMs)
	}
	if snap.Config.HTTPAddr != ":8080" {
		t.Errorf("Config.HTTPAddr: got %q, want %q", snap.Config.HTTPAddr, ":8080")
	}
	if len(snap.Outputs) != 0 {
		t.Errorf("expected no outputs initially, got %d", len(snap.Outputs))
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestRegisterAndSetState(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.Register("front", "blink")
	tr.Register("scanner", "bounce")
	tr.SetState("front", 2)
	tr.SetState("front", 1)
	tr.SetBrightness("front", 200)

	snap := tr.Snapshot()
	if len(snap.Outputs) != 2 {
		t.Fatalf("outputs: got %d, want 2", len(snap.Outputs))
	}
	front := snap.Outputs[0]
	if front.Name != "front" || front.Effect != "blink" {
		t.Errorf("output 0 = %+v, want front/blink", front)
	}
	if front.State != 1 || !front.On() {
		t.Errorf("front state = %d, want 1 (on)", front.State)
	}
	if front.Changes != 2 {
		t.Errorf("front changes = %d, want 2", front.Changes)
	}
	if front.Brightness != 200 {
		t.Errorf("front brightness = %d, want 200", front.Brightness)
	}
	if snap.Outputs[1].Name != "scanner" {
		t.Errorf("output 1 = %q, want scanner (registration order)", snap.Outputs[1].Name)
	}
}

func TestSetStateUnknownOutput(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetState("ghost", 1) // must not panic
	if n := len(tr.Snapshot().Outputs); n != 0 {
		t.Errorf("outputs: got %d, want 0", n)
	}
}

func TestRegisterTwiceKeepsPosition(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Register("front", "blink")
	tr.SetState("front", 1)
	tr.Register("front", "pulse")

	snap := tr.Snapshot()
	if len(snap.Outputs) != 1 {
		t.Fatalf("outputs: got %d, want 1", len(snap.Outputs))
	}
	if snap.Outputs[0].Effect != "pulse" {
		t.Errorf("effect = %q, want pulse", snap.Outputs[0].Effect)
	}
	if snap.Outputs[0].Changes != 1 {
		t.Errorf("changes = %d, want 1 (re-register must not reset)", snap.Outputs[0].Changes)
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSnapshotUptime(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Register("front", "blink")
	tr.SetState("front", 1)

	snap1 := tr.Snapshot()
	tr.SetState("front", 0)
	if snap1.Outputs[0].State != 1 {
		t.Error("snapshot must not see later mutations")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Register("front", "blink")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(state uint8) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.SetState("front", state)
				_ = tr.Snapshot()
			}
		}(uint8(i % 3))
	}
	wg.Wait()

	if tr.Snapshot().Outputs[0].Changes != 800 {
		t.Errorf("changes = %d, want 800", tr.Snapshot().Outputs[0].Changes)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snap := Snapshot{
		Outputs: []OutputStatus{
			{Name: "front", Effect: "blink", State: 2, Brightness: 128, Changes: 7},
		},
		StartTime:     start,
		Now:           start.Add(90 * time.Second),
		MQTTConnected: true,
		Config:        Config{PollMs: 10, Broker: "tcp://localhost:1883", HTTPAddr: ":8080"},
	}

	var decoded StatusJSON
	if err := json.Unmarshal(FormatJSON(snap), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded.Status.UptimeSeconds != 90 {
		t.Errorf("uptime_seconds = %d, want 90", decoded.Status.UptimeSeconds)
	}
	if len(decoded.Status.Outputs) != 1 {
		t.Fatalf("outputs = %d, want 1", len(decoded.Status.Outputs))
	}
	out := decoded.Status.Outputs[0]
	if out.Name != "front" || out.State != 2 || !out.On || out.Changes != 7 {
		t.Errorf("output = %+v", out)
	}
	if !decoded.Status.MQTT.Connected {
		t.Error("mqtt.connected = false, want true")
	}
	if decoded.Status.Event != "" {
		t.Errorf("event = %q, want empty for web JSON", decoded.Status.Event)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		StartTime: time.Now(),
		Now:       time.Now(),
	}

	var decoded StatusJSON
	if err := json.Unmarshal(FormatStatusEvent(snap, "SHUTDOWN", "SIGTERM"), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Status.Event != "SHUTDOWN" {
		t.Errorf("event = %q, want SHUTDOWN", decoded.Status.Event)
	}
	if decoded.Status.Reason != "SIGTERM" {
		t.Errorf("reason = %q, want SIGTERM", decoded.Status.Reason)
	}
}
