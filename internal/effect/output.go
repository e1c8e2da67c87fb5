// Package effect contains the LED effect state machines. The package is pure:
// no hardware, no clocks, no goroutines. All effects are advanced by calling
// Update with a caller-supplied Millis timestamp from one cooperative polling
// loop; every call returns in bounded time. Hardware access goes through the
// sink contract, and write failures are reported through a best-effort error
// hook — effects are never safety-critical.
package effect

import "github.com/sweeney/badge-leds/internal/sink"

// StateFunc observes effect state changes. It is invoked exactly once per
// observed transition with the new state value, never for no-op calls.
// A callback is a pure observer; the last registered one wins.
type StateFunc func(state uint8)

// Output is the shared core of every single-sink effect: the state value,
// the state-change callback and the bound sink. The sink's lifetime must
// exceed the effect's.
type Output struct {
	sink          sink.Sink
	state         uint8
	onStateChange StateFunc
	onWriteError  func(error)
}

// Begin initializes the underlying hardware. Call it exactly once.
func (o *Output) Begin() error {
	return o.sink.Begin()
}

// State returns the current state value. 0 is off; positive values are
// effect phases whose meaning depends on the active mode.
func (o *Output) State() uint8 {
	return o.state
}

// SetOnStateChange registers the state-change callback, replacing any
// previously registered one.
func (o *Output) SetOnStateChange(fn StateFunc) {
	o.onStateChange = fn
}

// SetOnWriteError registers a hook receiving sink write failures.
// Failures are best-effort notifications; the effect keeps running.
func (o *Output) SetOnWriteError(fn func(error)) {
	o.onWriteError = fn
}

// SetOnColor forwards the on color to color-capable sinks; no-op otherwise.
func (o *Output) SetOnColor(color uint32) {
	if c, ok := o.sink.(sink.Colorer); ok {
		c.SetOnColor(color)
	}
}

// SetOffColor forwards the off color to color-capable sinks; no-op otherwise.
func (o *Output) SetOffColor(color uint32) {
	if c, ok := o.sink.(sink.Colorer); ok {
		c.SetOffColor(color)
	}
}

// setState records a new state and fires the callback if it changed.
func (o *Output) setState(state uint8) {
	previous := o.state
	o.state = state
	if o.onStateChange != nil && previous != state {
		o.onStateChange(state)
	}
}

// notify fires the callback unconditionally with the current state.
// Used by multi-phase effects that already know a transition happened.
func (o *Output) notify() {
	if o.onStateChange != nil {
		o.onStateChange(o.state)
	}
}

func (o *Output) digWrite(on bool) {
	if err := o.sink.DigitalWrite(on); err != nil && o.onWriteError != nil {
		o.onWriteError(err)
	}
}

func (o *Output) pwmWrite(level uint8) {
	if err := o.sink.PWMWrite(level); err != nil && o.onWriteError != nil {
		o.onWriteError(err)
	}
}
