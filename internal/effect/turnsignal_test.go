package effect

import (
	"testing"

	"github.com/sweeney/badge-leds/internal/sink"
)

func TestTurnsignalLeftBlinks(t *testing.T) {
	g := sink.NewFakeGroup(3)
	ts := NewTurnsignal(g)

	ts.Left(0)
	ts.Update(0) // phase reset: lights on the very next tick
	if lit := g.Lit(); len(lit) != 1 || lit[0] != lampLeft {
		t.Fatalf("lit after Left = %v, want [%d]", lit, lampLeft)
	}

	ts.Update(500) // on interval over: dark
	if lit := g.Lit(); len(lit) != 0 {
		t.Errorf("lit during off phase = %v, want none", lit)
	}
	ts.Update(1000)
	if !g.On(lampLeft) {
		t.Error("left lamp should be lit again after the off interval")
	}
	if g.On(lampRight) || g.On(lampDash) {
		t.Error("right/dash must stay dark for a left signal")
	}
}

func TestTurnsignalHazard(t *testing.T) {
	g := sink.NewFakeGroup(3)
	ts := NewTurnsignal(g)

	ts.Hazard(0)
	ts.Update(0)
	lit := g.Lit()
	if len(lit) != 3 {
		t.Fatalf("lit during hazard on phase = %v, want all three", lit)
	}
	ts.Update(500)
	if lit := g.Lit(); len(lit) != 0 {
		t.Errorf("lit during hazard off phase = %v, want none", lit)
	}
}

func TestTurnsignalSwitchDarkensPrevious(t *testing.T) {
	g := sink.NewFakeGroup(3)
	ts := NewTurnsignal(g)

	ts.Left(0)
	ts.Update(0)
	ts.Right(100) // mid lit phase
	if g.On(lampLeft) {
		t.Error("left lamp must go dark when switching signals")
	}
	ts.Update(100)
	if !g.On(lampRight) {
		t.Error("right lamp should light on the first tick after switching")
	}
}

func TestTurnsignalCallbackOncePerChange(t *testing.T) {
	ts := NewTurnsignal(sink.NewFakeGroup(3))

	var calls []SignalState
	ts.SetOnStateChange(func(state SignalState) {
		calls = append(calls, state)
	})

	ts.Right(0)
	ts.Right(100) // same signal: no callback
	ts.Hazard(200)
	ts.Off()
	ts.Off()

	want := []SignalState{SignalRight, SignalHazard, SignalOff}
	if len(calls) != len(want) {
		t.Fatalf("callback states = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("callback %d = %s, want %s", i, calls[i], want[i])
		}
	}
}

func TestTurnsignalOffHalts(t *testing.T) {
	g := sink.NewFakeGroup(3)
	ts := NewTurnsignal(g)

	ts.Left(0)
	ts.Update(0)
	ts.Off()
	if lit := g.Lit(); len(lit) != 0 {
		t.Errorf("lit after Off = %v, want none", lit)
	}

	writes := len(g.Writes)
	for now := Millis(100); now <= 5000; now += 100 {
		ts.Update(now)
	}
	if len(g.Writes) != writes {
		t.Errorf("writes while off = %d, want 0", len(g.Writes)-writes)
	}
}

func TestTurnsignalInterval(t *testing.T) {
	g := sink.NewFakeGroup(3)
	ts := NewTurnsignal(g)
	ts.SetInterval(300, 700)

	ts.Left(0)
	ts.Update(0) // lit
	ts.Update(200)
	if !g.On(lampLeft) {
		t.Error("lamp should still be lit 200ms into a 300ms on phase")
	}
	ts.Update(300) // dark
	if g.On(lampLeft) {
		t.Error("lamp should be dark after the on interval")
	}
	ts.Update(900) // 600ms into a 700ms off phase
	if g.On(lampLeft) {
		t.Error("lamp should still be dark 600ms into a 700ms off phase")
	}
	ts.Update(1000)
	if !g.On(lampLeft) {
		t.Error("lamp should be lit after the off interval")
	}
}
