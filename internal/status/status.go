// Package status provides a thread-safe status tracker for the badge-leds
// daemon. It is read by HTTP handlers and serialized into MQTT system events.
package status

import (
	"sync"
	"time"
)

// OutputStatus is the tracked state of one configured output or group.
type OutputStatus struct {
	Name       string
	Effect     string
	State      uint8
	Brightness uint8
	Changes    int // state-change callbacks seen since startup
}

// On reports whether the output is in a running state.
func (o OutputStatus) On() bool {
	return o.State != 0
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs     int64
	Broker     string
	HTTPAddr   string
	ConfigPath string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Outputs       []OutputStatus // in registration order
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	indices map[string]int
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		indices: make(map[string]int),
	}
}

// Register adds an output to the tracker. Registration order is display
// order. Registering an existing name only updates its effect.
func (t *Tracker) Register(name, effect string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.indices[name]; ok {
		t.snap.Outputs[i].Effect = effect
		return
	}
	t.indices[name] = len(t.snap.Outputs)
	t.snap.Outputs = append(t.snap.Outputs, OutputStatus{Name: name, Effect: effect})
}

// SetState records a state change of one output. Unknown names are ignored.
func (t *Tracker) SetState(name string, state uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.indices[name]
	if !ok {
		return
	}
	t.snap.Outputs[i].State = state
	t.snap.Outputs[i].Changes++
}

// SetBrightness records the current brightness of one output.
func (t *Tracker) SetBrightness(name string, level uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.indices[name]; ok {
		t.snap.Outputs[i].Brightness = level
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Outputs = append([]OutputStatus(nil), t.snap.Outputs...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
