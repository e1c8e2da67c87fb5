package effect

import "github.com/sweeney/badge-leds/internal/sink"

// bouncePattern is the order the five outputs are lit, sweeping left to
// right and back like a Larson scanner.
var bouncePattern = [8]int{0, 1, 2, 3, 4, 3, 2, 1}

// bounceOutputs is the number of outputs a Bounce drives.
const bounceOutputs = 5

// Bounce sweeps a single lit output back and forth over five outputs.
// Each step has two sub-phases: lit for the on interval (state 1), then an
// all-off gap for the off interval (state 2).
type Bounce struct {
	groupOutput
	previous    Millis
	onInterval  uint32
	offInterval uint32
	current     uint8 // position in bouncePattern
}

// NewBounce creates a bounce over the first five outputs of the group,
// 200ms lit with a 20ms gap.
func NewBounce(g sink.Group) *Bounce {
	return &Bounce{
		groupOutput: groupOutput{group: g, state: 2},
		onInterval:  200,
		offInterval: 20,
	}
}

// SetOnInterval sets how long each output stays lit, in milliseconds.
func (b *Bounce) SetOnInterval(ms uint32) {
	b.onInterval = ms
}

// SetOffInterval sets the all-off gap between steps, in milliseconds.
func (b *Bounce) SetOffInterval(ms uint32) {
	b.offInterval = ms
}

// On resumes the sweep.
func (b *Bounce) On() {
	b.setState(1)
}

// Off halts the sweep and darkens all outputs.
func (b *Bounce) Off() {
	previous := b.state
	b.state = 0
	b.allOff(bounceOutputs)
	if b.onStateChange != nil && previous != 0 {
		b.onStateChange(0)
	}
}

// Toggle switches between on and off.
func (b *Bounce) Toggle() {
	if b.state == 0 {
		b.On()
	} else {
		b.Off()
	}
}

// Update advances the sweep. The 1<->2 sub-phase changes fire no callback.
func (b *Bounce) Update(now Millis) {
	if b.state == 0 {
		return
	}
	if b.state == 1 && now-b.previous >= Millis(b.onInterval) {
		b.previous = now
		b.allOff(bounceOutputs)
		b.state = 2
	} else if b.state == 2 && now-b.previous >= Millis(b.offInterval) {
		b.previous = now
		b.digWrite(bouncePattern[b.current], true)
		b.current++
		if int(b.current) >= len(bouncePattern) {
			b.current = 0
		}
		b.state = 1
	}
}
