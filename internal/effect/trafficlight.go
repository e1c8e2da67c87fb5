package effect

import (
	"fmt"

	"github.com/sweeney/badge-leds/internal/sink"
)

// TrafficState is one face of a traffic light.
type TrafficState uint8

const (
	TrafficOff TrafficState = iota
	TrafficRed
	TrafficRedYellow
	TrafficGreen
	TrafficYellow
	TrafficYellowBlink
	TrafficGreenBlink
)

// String returns the face name.
func (s TrafficState) String() string {
	switch s {
	case TrafficOff:
		return "OFF"
	case TrafficRed:
		return "RED"
	case TrafficRedYellow:
		return "RED_YELLOW"
	case TrafficGreen:
		return "GREEN"
	case TrafficYellow:
		return "YELLOW"
	case TrafficYellowBlink:
		return "YELLOW_BLINK"
	case TrafficGreenBlink:
		return "GREEN_BLINK"
	}
	return "UNKNOWN"
}

// TrafficMode switches between sequence-driven and caller-driven operation.
type TrafficMode uint8

const (
	TrafficManual TrafficMode = iota
	TrafficAutomatic
)

// Lamp indices within the group.
const (
	lampRed = iota
	lampYellow
	lampGreen
)

// SequenceStep pairs a face with how long it is shown.
type SequenceStep struct {
	State    TrafficState
	Interval uint32 // milliseconds
}

// maxSequence is the sequence capacity.
const maxSequence = 8

// Trafficlight cycles three lamps (red, yellow, green) through a
// configurable ordered sequence of faces. The two blinking faces use an
// independent sub-timer. Besides the state-change callback it exposes a
// sequence-advance callback so a companion light (a pedestrian signal,
// the crossing line) can stay synchronized.
type Trafficlight struct {
	group            sink.Group
	state            TrafficState
	mode             TrafficMode
	previous         Millis // last sequence advance
	previousBlink    Millis
	blinkInterval    uint32
	blinkOn          bool
	sequence         [maxSequence]SequenceStep
	sequenceLen      int
	current          int // position in sequence
	onStateChange    func(TrafficState)
	onSequenceChange func(index int)
	onWriteError     func(error)
}

// NewTrafficlight creates a traffic light over the first three outputs of
// the group (red, yellow, green), preloaded with the EU-style cycle
// RED 5s -> RED+YELLOW 3s -> GREEN 2.5s -> YELLOW 3s.
func NewTrafficlight(g sink.Group) *Trafficlight {
	t := &Trafficlight{
		group:         g,
		state:         TrafficYellowBlink,
		mode:          TrafficAutomatic,
		blinkInterval: 500,
		sequenceLen:   4,
	}
	t.sequence[0] = SequenceStep{TrafficRed, 5000}
	t.sequence[1] = SequenceStep{TrafficRedYellow, 3000}
	t.sequence[2] = SequenceStep{TrafficGreen, 2500}
	t.sequence[3] = SequenceStep{TrafficYellow, 3000}
	return t
}

// Begin initializes the underlying hardware. Call it exactly once.
func (t *Trafficlight) Begin() error {
	return t.group.Begin()
}

// State returns the currently shown face.
func (t *Trafficlight) State() TrafficState {
	return t.state
}

// SetBlinkInterval sets the blink period of the blinking faces, in
// milliseconds.
func (t *Trafficlight) SetBlinkInterval(ms uint32) {
	t.blinkInterval = ms
}

// SetSequenceStep replaces one step of the sequence. Indices past the
// capacity are rejected without mutating the sequence.
func (t *Trafficlight) SetSequenceStep(index int, state TrafficState, interval uint32) error {
	if index < 0 || index >= maxSequence {
		return fmt.Errorf("sequence index %d out of range [0..%d]", index, maxSequence-1)
	}
	t.sequence[index] = SequenceStep{State: state, Interval: interval}
	return nil
}

// SetSequenceLength sets how many sequence steps are played before
// wrapping. Lengths outside [1..capacity] are rejected.
func (t *Trafficlight) SetSequenceLength(n int) error {
	if n < 1 || n > maxSequence {
		return fmt.Errorf("sequence length %d out of range [1..%d]", n, maxSequence)
	}
	t.sequenceLen = n
	return nil
}

// SetMode switches between automatic sequence playback and manual control.
func (t *Trafficlight) SetMode(mode TrafficMode) {
	t.mode = mode
}

// SetOnStateChange registers the face-change callback.
func (t *Trafficlight) SetOnStateChange(fn func(TrafficState)) {
	t.onStateChange = fn
}

// SetOnSequenceChange registers the callback fired on every sequence
// advance with the new sequence index.
func (t *Trafficlight) SetOnSequenceChange(fn func(index int)) {
	t.onSequenceChange = fn
}

// SetOnWriteError registers a hook receiving sink write failures.
func (t *Trafficlight) SetOnWriteError(fn func(error)) {
	t.onWriteError = fn
}

// SetOnColor sets the on color of one lamp (0 red, 1 yellow, 2 green) on
// color-capable groups; no-op otherwise.
func (t *Trafficlight) SetOnColor(lamp int, color uint32) {
	if c, ok := t.group.(sink.GroupColorer); ok {
		c.SetOnColor(lamp, color)
	}
}

// SetOffColor sets the off color on color-capable groups; no-op otherwise.
func (t *Trafficlight) SetOffColor(color uint32) {
	if c, ok := t.group.(sink.GroupColorer); ok {
		c.SetOffColor(color)
	}
}

// Off darkens all lamps and leaves the light off until the next SetState
// or sequence advance.
func (t *Trafficlight) Off() {
	t.SetState(TrafficOff)
}

// Red shows the red face.
func (t *Trafficlight) Red() { t.SetState(TrafficRed) }

// Yellow shows the yellow face.
func (t *Trafficlight) Yellow() { t.SetState(TrafficYellow) }

// Green shows the green face.
func (t *Trafficlight) Green() { t.SetState(TrafficGreen) }

// YellowBlink shows the blinking yellow face.
func (t *Trafficlight) YellowBlink() { t.SetState(TrafficYellowBlink) }

// GreenBlink shows the blinking green face.
func (t *Trafficlight) GreenBlink() { t.SetState(TrafficGreenBlink) }

// SetState shows a face. The static faces write their lamps immediately;
// the blinking faces are driven by Update. Fires the state-change callback
// once when the face actually changes.
func (t *Trafficlight) SetState(state TrafficState) {
	switch state {
	case TrafficOff:
		t.writeLamps(false, false, false)
	case TrafficRed:
		t.writeLamps(true, false, false)
	case TrafficYellow:
		t.writeLamps(false, true, false)
	case TrafficRedYellow:
		t.writeLamps(true, true, false)
	case TrafficGreen:
		t.writeLamps(false, false, true)
	}
	if t.onStateChange != nil && t.state != state {
		t.onStateChange(state)
	}
	t.state = state
}

// Update advances the sequence (in automatic mode) and drives the blink
// sub-timer of the blinking faces.
func (t *Trafficlight) Update(now Millis) {
	if t.mode != TrafficManual {
		if now-t.previous >= Millis(t.sequence[t.current].Interval) {
			t.previous = now
			t.current++
			if t.current >= t.sequenceLen {
				t.current = 0
			}
			if t.onSequenceChange != nil {
				t.onSequenceChange(t.current)
			}
			t.SetState(t.sequence[t.current].State)
		}
	}
	if t.state == TrafficGreenBlink {
		t.blinkLamp(lampGreen, now)
	}
	if t.state == TrafficYellowBlink {
		t.blinkLamp(lampYellow, now)
	}
}

func (t *Trafficlight) blinkLamp(lamp int, now Millis) {
	if now-t.previousBlink >= Millis(t.blinkInterval) {
		t.previousBlink = now
		t.blinkOn = !t.blinkOn
		t.digWrite(lamp, t.blinkOn)
	}
}

func (t *Trafficlight) writeLamps(red, yellow, green bool) {
	t.digWrite(lampRed, red)
	t.digWrite(lampYellow, yellow)
	t.digWrite(lampGreen, green)
}

func (t *Trafficlight) digWrite(lamp int, on bool) {
	if err := t.group.DigitalWrite(lamp, on); err != nil && t.onWriteError != nil {
		t.onWriteError(err)
	}
}
