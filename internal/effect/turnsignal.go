package effect

import "github.com/sweeney/badge-leds/internal/sink"

// SignalState selects which turn signal blinks.
type SignalState uint8

const (
	SignalOff SignalState = iota
	SignalLeft
	SignalRight
	SignalHazard
)

// String returns the signal name.
func (s SignalState) String() string {
	switch s {
	case SignalOff:
		return "OFF"
	case SignalLeft:
		return "LEFT"
	case SignalRight:
		return "RIGHT"
	case SignalHazard:
		return "HAZARD"
	}
	return "UNKNOWN"
}

// Lamp indices within the group.
const (
	lampLeft = iota
	lampRight
	lampDash
)

// Turnsignal blinks car turn signals: the left or right lamp alone, or —
// for hazard — both plus the dashboard indicator in unison.
type Turnsignal struct {
	group         sink.Group
	state         SignalState
	previous      Millis
	phase         uint8 // 0 dark, 1 lit
	onInterval    uint32
	offInterval   uint32
	onStateChange func(SignalState)
	onWriteError  func(error)
}

// NewTurnsignal creates a turn signal over the first three outputs of the
// group (left, right, dashboard indicator), 500ms on / 500ms off.
func NewTurnsignal(g sink.Group) *Turnsignal {
	return &Turnsignal{
		group:       g,
		state:       SignalLeft,
		onInterval:  500,
		offInterval: 500,
	}
}

// Begin initializes the underlying hardware. Call it exactly once.
func (t *Turnsignal) Begin() error {
	return t.group.Begin()
}

// State returns the active signal.
func (t *Turnsignal) State() SignalState {
	return t.state
}

// SetInterval sets the blink on and off times in milliseconds.
func (t *Turnsignal) SetInterval(on, off uint32) {
	t.onInterval = on
	t.offInterval = off
}

// SetOnStateChange registers the signal-change callback.
func (t *Turnsignal) SetOnStateChange(fn func(SignalState)) {
	t.onStateChange = fn
}

// SetOnWriteError registers a hook receiving sink write failures.
func (t *Turnsignal) SetOnWriteError(fn func(error)) {
	t.onWriteError = fn
}

// SetOnColor sets the on color of one lamp (0 left, 1 right, 2 dashboard)
// on color-capable groups; no-op otherwise.
func (t *Turnsignal) SetOnColor(lamp int, color uint32) {
	if c, ok := t.group.(sink.GroupColorer); ok {
		c.SetOnColor(lamp, color)
	}
}

// SetOffColor sets the off color on color-capable groups; no-op otherwise.
func (t *Turnsignal) SetOffColor(color uint32) {
	if c, ok := t.group.(sink.GroupColorer); ok {
		c.SetOffColor(color)
	}
}

// Left activates the left signal; it lights on the next update tick.
func (t *Turnsignal) Left(now Millis) {
	previous := t.state
	t.SetState(SignalLeft, now)
	if t.onStateChange != nil && previous != t.state {
		t.onStateChange(t.state)
	}
}

// Right activates the right signal.
func (t *Turnsignal) Right(now Millis) {
	previous := t.state
	t.SetState(SignalRight, now)
	if t.onStateChange != nil && previous != t.state {
		t.onStateChange(t.state)
	}
}

// Hazard drives both signals and the dashboard indicator in unison.
func (t *Turnsignal) Hazard(now Millis) {
	previous := t.state
	t.SetState(SignalHazard, now)
	if t.onStateChange != nil && previous != t.state {
		t.onStateChange(t.state)
	}
}

// Off switches all signal lamps off.
func (t *Turnsignal) Off() {
	previous := t.state
	t.state = SignalOff
	t.allOff()
	if t.onStateChange != nil && previous != SignalOff {
		t.onStateChange(SignalOff)
	}
}

// SetState selects a signal without firing the callback (the caller made
// the change, so it already knows). The blink phase is reset so the new
// signal lights on the next update tick.
func (t *Turnsignal) SetState(state SignalState, now Millis) {
	if state != t.state {
		t.allOff()
	}
	t.state = state
	t.previous = now - Millis(t.onInterval+t.offInterval)
	t.phase = 0
}

// Update blinks the active signal.
func (t *Turnsignal) Update(now Millis) {
	if t.state == SignalOff {
		return
	}
	if t.phase == 0 && now-t.previous >= Millis(t.offInterval) {
		t.previous = now
		t.phase = 1
		switch t.state {
		case SignalLeft:
			t.digWrite(lampLeft, true)
		case SignalRight:
			t.digWrite(lampRight, true)
		case SignalHazard:
			t.digWrite(lampLeft, true)
			t.digWrite(lampRight, true)
			t.digWrite(lampDash, true)
		}
	} else if t.phase == 1 && now-t.previous >= Millis(t.onInterval) {
		t.previous = now
		t.phase = 0
		t.allOff()
	}
}

func (t *Turnsignal) allOff() {
	t.digWrite(lampLeft, false)
	t.digWrite(lampRight, false)
	t.digWrite(lampDash, false)
}

func (t *Turnsignal) digWrite(lamp int, on bool) {
	if err := t.group.DigitalWrite(lamp, on); err != nil && t.onWriteError != nil {
		t.onWriteError(err)
	}
}
