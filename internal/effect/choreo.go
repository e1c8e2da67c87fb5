package effect

import "github.com/sweeney/badge-leds/internal/sink"

// groupOutput is the shared core of the multi-output choreographies:
// the bound group, the phase value and the observer hooks.
type groupOutput struct {
	group         sink.Group
	state         uint8
	onStateChange StateFunc
	onWriteError  func(error)
}

// Begin initializes the underlying hardware. Call it exactly once.
func (g *groupOutput) Begin() error {
	return g.group.Begin()
}

// State returns the current state value; 0 is off.
func (g *groupOutput) State() uint8 {
	return g.state
}

// SetOnStateChange registers the state-change callback, replacing any
// previously registered one.
func (g *groupOutput) SetOnStateChange(fn StateFunc) {
	g.onStateChange = fn
}

// SetOnWriteError registers a hook receiving sink write failures.
func (g *groupOutput) SetOnWriteError(fn func(error)) {
	g.onWriteError = fn
}

// SetOnColor forwards an indexed on color to color-capable groups.
func (g *groupOutput) SetOnColor(index int, color uint32) {
	if c, ok := g.group.(sink.GroupColorer); ok {
		c.SetOnColor(index, color)
	}
}

// SetOffColor forwards the off color to color-capable groups.
func (g *groupOutput) SetOffColor(color uint32) {
	if c, ok := g.group.(sink.GroupColorer); ok {
		c.SetOffColor(color)
	}
}

// setState records a new state and fires the callback if it changed.
func (g *groupOutput) setState(state uint8) {
	previous := g.state
	g.state = state
	if g.onStateChange != nil && previous != state {
		g.onStateChange(state)
	}
}

func (g *groupOutput) notify() {
	if g.onStateChange != nil {
		g.onStateChange(g.state)
	}
}

func (g *groupOutput) digWrite(index int, on bool) {
	if err := g.group.DigitalWrite(index, on); err != nil && g.onWriteError != nil {
		g.onWriteError(err)
	}
}

// allOff writes LOW to the first n outputs.
func (g *groupOutput) allOff(n int) {
	for i := 0; i < n; i++ {
		g.digWrite(i, false)
	}
}
