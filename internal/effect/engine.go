package effect

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sweeney/badge-leds/internal/sink"
)

// Mode selects which update algorithm an Engine runs. Modes are mutually
// exclusive; exactly one is active at a time.
type Mode uint8

const (
	ModeOnOff Mode = iota
	ModeBlink
	ModeFlicker
	ModeFluorescent
	ModeHeartbeat
	ModePulse
	ModeRhythm
	ModeSmooth
)

// String returns the lowercase mode name.
func (m Mode) String() string {
	switch m {
	case ModeOnOff:
		return "onoff"
	case ModeBlink:
		return "blink"
	case ModeFlicker:
		return "flicker"
	case ModeFluorescent:
		return "fluorescent"
	case ModeHeartbeat:
		return "heartbeat"
	case ModePulse:
		return "pulse"
	case ModeRhythm:
		return "rhythm"
	case ModeSmooth:
		return "smooth"
	}
	return "unknown"
}

// glimmerLevel is the faint level a fluorescent tube shows right after power-on.
const glimmerLevel = 2

// Engine is the multi-mode single-output effect state machine. It is bound
// permanently to one sink; construct it, pick a mode with one of the SetMode
// functions, then call Update with the current timestamp on every iteration
// of the polling loop.
//
// The interval pattern is an ordered sequence of up to 8 durations in
// milliseconds, interpreted in ON/OFF pairs. Which slots are authoritative
// depends on the mode: BLINK uses slots 0-1, RHYTHM up to all 8.
type Engine struct {
	Output
	mode           Mode
	previous       Millis // last phase transition
	previousEffect Millis // secondary timer (fluorescent flashes)
	current        uint8  // current brightness
	min            uint8
	max            uint8
	pattern        [8]uint32
	patternLen     uint8
	rand           *rand.Rand
}

// NewEngine creates an Engine bound to the given sink. The initial state is
// explicit: pass false for effects that must stay dark until triggered
// (typical for PULSE), true for effects that run from startup.
func NewEngine(s sink.Sink, initiallyOn bool) *Engine {
	e := &Engine{
		Output:     Output{sink: s},
		pattern:    [8]uint32{150, 60, 20, 270},
		patternLen: 4,
		max:        255,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if initiallyOn {
		e.state = 1
	}
	return e
}

// Mode returns the active mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// On switches the effect on. The timestamp restarts mode timers where the
// mode needs it (PULSE re-arms its monoflop, FLUORESCENT starts its warm-up).
// A multi-phase effect already past phase 1 is left in its phase; use
// ForceOn to restart from phase 1.
func (e *Engine) On(now Millis) {
	e.turnOn(now, false)
}

// ForceOn switches on and restarts the effect at its first phase.
func (e *Engine) ForceOn(now Millis) {
	e.turnOn(now, true)
}

func (e *Engine) turnOn(now Millis, force bool) {
	previous := e.state
	if e.state == 0 || force {
		e.state = 1
	}
	switch e.mode {
	case ModeOnOff, ModePulse:
		e.digWrite(true)
		e.previous = now
	case ModeFluorescent:
		e.current = 0
		e.previous = now
		e.pwmWrite(glimmerLevel)
		e.pattern[1] = uint32(e.randRange(50, 500))
		e.pattern[0] = uint32(e.randRange(500, 5000))
	}
	if e.onStateChange != nil && previous != e.state {
		e.onStateChange(e.state)
	}
}

// Off switches the effect off, immediately halting its periodic writes.
// In SMOOTH mode the output decays on subsequent updates instead of
// snapping dark; every other mode writes LOW at once.
func (e *Engine) Off() {
	previous := e.state
	e.state = 0
	if e.mode != ModeSmooth {
		e.digWrite(false)
		e.current = 0
	}
	if e.onStateChange != nil && previous != 0 {
		e.onStateChange(0)
	}
}

// OffForced switches off immediately, skipping the SMOOTH decay.
func (e *Engine) OffForced() {
	previous := e.state
	e.state = 0
	e.current = 0
	e.pwmWrite(0)
	if e.onStateChange != nil && previous != 0 {
		e.onStateChange(0)
	}
}

// Toggle switches between on and off.
func (e *Engine) Toggle(now Millis) {
	if e.state == 0 {
		e.On(now)
	} else {
		e.Off()
	}
}

// CurrentBrightness returns the current output level.
func (e *Engine) CurrentBrightness() uint8 {
	return e.current
}

// SetCurrentBrightness sets the output level and writes it immediately.
func (e *Engine) SetCurrentBrightness(level uint8) {
	e.current = level
	e.pwmWrite(level)
}

// SetMaxBrightness sets the upper brightness bound. Values below the
// current minimum are rejected.
func (e *Engine) SetMaxBrightness(level uint8) {
	if level >= e.min {
		e.max = level
	}
}

// SetMinBrightness sets the lower brightness bound. Values above the
// current maximum are rejected.
func (e *Engine) SetMinBrightness(level uint8) {
	if level <= e.max {
		e.min = level
	}
}

// SetOnInterval sets the on duration (pattern slot 0) in milliseconds.
func (e *Engine) SetOnInterval(ms uint32) {
	e.pattern[0] = ms
}

// SetOffInterval sets the off duration (pattern slot 1) in milliseconds.
func (e *Engine) SetOffInterval(ms uint32) {
	e.pattern[1] = ms
}

// SetInterval replaces the interval pattern. Accepts 2, 4, 6 or 8 durations
// (ON/OFF pairs); any other count is rejected. Calling it with fewer pairs
// than the previous pattern reinterprets the pattern length accordingly.
func (e *Engine) SetInterval(intervals ...uint32) error {
	switch len(intervals) {
	case 2, 4, 6, 8:
	default:
		return fmt.Errorf("interval pattern needs 2, 4, 6 or 8 durations, got %d", len(intervals))
	}
	copy(e.pattern[:], intervals)
	e.patternLen = uint8(len(intervals))
	return nil
}

// SetModeOnOff activates plain on/off operation; Update does nothing.
func (e *Engine) SetModeOnOff() {
	e.mode = ModeOnOff
}

// SetModeBlink activates two-phase blinking with 500ms/500ms defaults.
func (e *Engine) SetModeBlink() {
	e.mode = ModeBlink
	e.SetOnInterval(500)
	e.SetOffInterval(500)
}

// SetModeFlicker activates flame-like random flickering.
func (e *Engine) SetModeFlicker() {
	e.mode = ModeFlicker
	e.pattern[0] = 100
	e.normalizeState()
}

// SetModeFluorescent activates the fluorescent-tube startup simulation
// and seeds its random warm-up timers.
func (e *Engine) SetModeFluorescent() {
	e.mode = ModeFluorescent
	e.pattern[0] = uint32(e.randRange(500, 5000))
	e.pattern[1] = uint32(e.randRange(50, 500))
	e.normalizeState()
}

// SetModeHeartbeat activates the triangle-wave brightness walk with a 5ms
// step interval over the full 0..255 range.
func (e *Engine) SetModeHeartbeat() {
	e.mode = ModeHeartbeat
	e.pattern[0] = 5
	e.current = 0
	e.min = 0
	e.max = 255
	e.normalizeState()
}

// SetModePulse activates monoflop operation with a 500ms on time.
// The on/off state is left as constructed; a pulse that must stay dark
// until triggered is created with NewEngine(s, false).
func (e *Engine) SetModePulse() {
	e.mode = ModePulse
	e.SetOnInterval(500)
	e.normalizeState()
}

// SetModeRhythm activates cyclic pattern playback with the ECE2
// emergency-flash default (150/60/20/270 ms).
func (e *Engine) SetModeRhythm() {
	e.mode = ModeRhythm
	e.SetInterval(150, 60, 20, 270)
}

// SetModeSmooth activates smooth dimming: 25ms per step up, 15ms per
// step down.
func (e *Engine) SetModeSmooth() {
	e.mode = ModeSmooth
	e.pattern[0] = 25
	e.pattern[1] = 15
}

// normalizeState collapses any multi-phase state to phase 1 when switching
// modes, without firing the callback.
func (e *Engine) normalizeState() {
	if e.state != 0 {
		e.state = 1
	}
}

// Update advances the active mode. now is a caller-supplied monotonic
// millisecond timestamp; calls where no timer has elapsed are no-ops.
func (e *Engine) Update(now Millis) {
	switch e.mode {
	case ModeOnOff:
		// nothing periodic
	case ModeBlink:
		e.blink(now)
	case ModeFlicker:
		e.flicker(now)
	case ModeFluorescent:
		e.fluorescent(now)
	case ModeHeartbeat:
		e.heartbeat(now)
	case ModePulse:
		e.pulse(now)
	case ModeRhythm:
		e.rhythm(now)
	case ModeSmooth:
		e.smooth(now)
	}
}

// blink alternates between lit (state 2, for pattern[0] ms) and dark
// (state 1, for pattern[1] ms) while the effect is on.
func (e *Engine) blink(now Millis) {
	if e.state == 0 {
		return
	}
	if e.state == 2 {
		if now-e.previous >= Millis(e.pattern[0]) {
			e.state = 1
			e.digWrite(false)
			e.previous = now
			e.notify()
		}
	} else {
		if now-e.previous >= Millis(e.pattern[1]) {
			e.state = 2
			e.digWrite(true)
			e.previous = now
			e.notify()
		}
	}
}

// flicker writes a pseudo-random brightness at random 20-150ms intervals.
// These intra-mode brightness writes fire no callback.
func (e *Engine) flicker(now Millis) {
	if e.state != 1 || e.max == 0 {
		return
	}
	if now-e.previous > Millis(e.pattern[0]) {
		level := (e.rand.Intn(int(e.max))/10)*10 + 5
		e.pwmWrite(uint8(level))
		e.pattern[0] = uint32(e.randRange(20, 150))
		e.previous = now
	}
}

// fluorescent runs the three-phase tube startup: random flashes against a
// dark glimmer (phase 1) until the warm-up timer elapses, then a slow ramp
// from 200 to full brightness (phase 2), then stable on (phase 3).
func (e *Engine) fluorescent(now Millis) {
	if e.state == 1 {
		if now-e.previousEffect > Millis(e.pattern[1]) {
			if e.current >= 200 {
				// back to the faint glimmer of the tube ends
				e.current = uint8(e.randRange(0, 5))
				e.pattern[1] = uint32(e.randRange(400, 2000))
			} else {
				e.current = uint8(e.randRange(200, 255))
				e.pattern[1] = uint32(e.randRange(20, 40))
			}
			e.pwmWrite(e.current)
			e.previousEffect = now
		}
		if now-e.previous > Millis(e.pattern[0]) {
			// stable now, but reaching 100% still takes a while
			e.current = 200
			e.pattern[0] = 100
			e.pwmWrite(e.current)
			e.previous = now
			e.state = 2
			e.notify()
		}
	}
	if e.state == 2 {
		if now-e.previous >= Millis(e.pattern[0]) {
			e.previous = now
			e.current++
			e.pwmWrite(e.current)
			if e.current >= 255 {
				e.state = 3
				e.notify()
			}
		}
	}
}

// heartbeat walks the brightness between min and max, one step per
// interval. Direction flips at the bounds without firing the callback.
func (e *Engine) heartbeat(now Millis) {
	if e.state == 0 || now-e.previous <= Millis(e.pattern[0]) {
		return
	}
	e.previous = now
	if e.state == 1 { // going upwards
		if e.current < e.max {
			e.current++
		} else {
			e.state = 2
		}
	} else { // going downwards
		if e.current > e.min {
			e.current--
		} else {
			e.state = 1
		}
	}
	e.pwmWrite(e.current)
}

// pulse switches off after the on interval has elapsed (monoflop).
func (e *Engine) pulse(now Millis) {
	if e.state != 1 {
		return
	}
	if now-e.previous >= Millis(e.pattern[0]) {
		e.digWrite(false)
		e.state = 0
		e.notify()
	}
}

// rhythm plays the interval pattern cyclically. Odd phases are lit; at the
// end of each phase the opposite level is written and the phase advances,
// wrapping to 1 past the pattern length.
func (e *Engine) rhythm(now Millis) {
	if e.state == 0 {
		return
	}
	if now-e.previous > Millis(e.pattern[e.state-1]) {
		if e.state%2 != 0 {
			e.digWrite(false)
		} else {
			e.digWrite(true)
		}
		e.state++
		if e.state > e.patternLen {
			e.state = 1
		}
		e.previous = now
	}
}

// smooth ramps the brightness toward max while on (pattern[0] per step)
// and decays toward the target or zero (pattern[1] per step) otherwise.
// Down is faster than up by default.
func (e *Engine) smooth(now Millis) {
	switch {
	case e.state == 1 && e.current < e.max && now-e.previous > Millis(e.pattern[0]):
		e.current++
		e.pwmWrite(e.current)
		e.previous = now
	case e.state == 1 && e.current > e.max && now-e.previous > Millis(e.pattern[1]):
		e.current--
		e.pwmWrite(e.current)
		e.previous = now
	case e.state == 0 && e.current > 0 && now-e.previous > Millis(e.pattern[1]):
		e.current--
		e.pwmWrite(e.current)
		e.previous = now
	}
}

// randRange returns a random int in [lo, hi).
func (e *Engine) randRange(lo, hi int) int {
	return lo + e.rand.Intn(hi-lo)
}
