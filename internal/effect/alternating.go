package effect

import "github.com/sweeney/badge-leds/internal/sink"

// Alternating blinks two outputs alternately: A lit while B is dark and
// vice versa. State 1 means A is in its on phase, state 2 means B is.
type Alternating struct {
	groupOutput
	previous    Millis
	onInterval  uint32 // on time of output A = off time of output B
	offInterval uint32
}

// NewAlternating creates an alternating pair over the first two outputs of
// the group, 500ms per side.
func NewAlternating(g sink.Group) *Alternating {
	return &Alternating{
		groupOutput: groupOutput{group: g, state: 1},
		onInterval:  500,
		offInterval: 500,
	}
}

// SetInterval sets the on time of each output in milliseconds.
func (a *Alternating) SetInterval(onA, onB uint32) {
	a.onInterval = onA
	a.offInterval = onB
}

// SetOnInterval sets the same on time for both outputs.
func (a *Alternating) SetOnInterval(ms uint32) {
	a.SetInterval(ms, ms)
}

// On resumes the alternation.
func (a *Alternating) On() {
	a.setState(1)
}

// Off halts the alternation and darkens both outputs.
func (a *Alternating) Off() {
	previous := a.state
	a.state = 0
	a.allOff(2)
	if a.onStateChange != nil && previous != 0 {
		a.onStateChange(0)
	}
}

// Toggle switches between on and off.
func (a *Alternating) Toggle() {
	if a.state == 0 {
		a.On()
	} else {
		a.Off()
	}
}

// Update advances the alternation when the current side's time is up.
// While off, no writes are issued (Off already darkened the pair).
func (a *Alternating) Update(now Millis) {
	if a.state == 0 {
		return
	}
	if a.state == 1 && now-a.previous >= Millis(a.onInterval) {
		a.previous = now
		a.digWrite(0, false)
		a.digWrite(1, true)
		a.state = 2
		a.notify()
	} else if a.state == 2 && now-a.previous >= Millis(a.offInterval) {
		a.previous = now
		a.digWrite(0, true)
		a.digWrite(1, false)
		a.state = 1
		a.notify()
	}
}
