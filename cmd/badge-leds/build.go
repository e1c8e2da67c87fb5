package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/badge-leds/internal/config"
	"github.com/sweeney/badge-leds/internal/effect"
	"github.com/sweeney/badge-leds/internal/sink"
	"github.com/sweeney/badge-leds/internal/sink/gpio"
	"github.com/sweeney/badge-leds/internal/sink/i2c"
	"github.com/sweeney/badge-leds/internal/sink/sysfs"
)

// stateFunc receives every output state change, for MQTT and the tracker.
type stateFunc func(name, effectName string, state uint8)

// runner binds one configured output or group to the polling loop.
type runner struct {
	name    string
	effect  string
	begin   func() error
	update  func(effect.Millis)
	current func() uint8 // nil when the effect has no brightness
}

// buildAll creates runners for every configured output and group. The
// returned closers release hardware resources in construction order.
func buildAll(cfg *config.Config, onChange stateFunc) ([]*runner, []func(), error) {
	var runners []*runner
	var closers []func()

	for i := range cfg.Outputs {
		r, closer, err := buildOutput(&cfg.Outputs[i], onChange)
		if err != nil {
			return nil, closers, fmt.Errorf("output %q: %w", cfg.Outputs[i].Name, err)
		}
		runners = append(runners, r)
		if closer != nil {
			closers = append(closers, closer)
		}
	}
	for i := range cfg.Groups {
		r, closer, err := buildGroup(&cfg.Groups[i], onChange)
		if err != nil {
			return nil, closers, fmt.Errorf("group %q: %w", cfg.Groups[i].Name, err)
		}
		runners = append(runners, r)
		if closer != nil {
			closers = append(closers, closer)
		}
	}
	return runners, closers, nil
}

func buildOutput(o *config.Output, onChange stateFunc) (*runner, func(), error) {
	s, closer, err := buildSink(o)
	if err != nil {
		return nil, nil, err
	}

	e := effect.NewEngine(s, o.On)
	switch o.Effect {
	case "onoff":
		e.SetModeOnOff()
	case "blink":
		e.SetModeBlink()
	case "flicker":
		e.SetModeFlicker()
	case "fluorescent":
		e.SetModeFluorescent()
	case "heartbeat":
		e.SetModeHeartbeat()
	case "pulse":
		e.SetModePulse()
	case "rhythm":
		e.SetModeRhythm()
	case "smooth":
		e.SetModeSmooth()
	default:
		return nil, closer, fmt.Errorf("unknown effect %q", o.Effect)
	}

	if len(o.Interval) > 0 {
		if err := e.SetInterval(o.Interval...); err != nil {
			return nil, closer, err
		}
	}
	if o.MaxBrightness != nil {
		e.SetMaxBrightness(*o.MaxBrightness)
	}
	if o.MinBrightness != nil {
		e.SetMinBrightness(*o.MinBrightness)
	}

	name, effectName := o.Name, o.Effect
	e.SetOnStateChange(func(state uint8) {
		onChange(name, effectName, state)
	})
	e.SetOnWriteError(func(err error) {
		log.WithError(err).WithField("output", name).Warn("write error")
	})

	on := o.On
	return &runner{
		name:   name,
		effect: effectName,
		begin: func() error {
			if err := e.Begin(); err != nil {
				return err
			}
			if on {
				e.On(0)
			}
			return nil
		},
		update:  e.Update,
		current: e.CurrentBrightness,
	}, closer, nil
}

func buildSink(o *config.Output) (sink.Sink, func(), error) {
	switch o.Driver {
	case "gpio":
		pin := gpio.NewPin(gpio.Config{Chip: o.Chip, Pin: o.Pin, ActiveLow: o.ActiveLow})
		return pin, func() { pin.Close() }, nil
	case "sysfs":
		led := sysfs.NewLED(o.LED)
		return led, func() { led.Close() }, nil
	case "pcf8574", "pca9685", "ht16k33":
		bus, err := i2c.OpenBus(o.Bus)
		if err != nil {
			return nil, nil, err
		}
		var grp sink.Group
		switch o.Driver {
		case "pcf8574":
			grp = i2c.NewPCF8574(bus, i2cAddr(o.Address, i2c.PCF8574DefaultAddress))
		case "pca9685":
			grp = i2c.NewPCA9685(bus, i2cAddr(o.Address, i2c.PCA9685DefaultAddress))
		default:
			grp = i2c.NewHT16K33(bus, i2cAddr(o.Address, i2c.HT16K33DefaultAddress))
		}
		// A single output rides channel 0 of the expander.
		return sink.First{Group: grp}, func() { bus.Close() }, nil
	case "fake":
		return sink.NewFake(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown driver %q", o.Driver)
}

func buildGroup(g *config.Group, onChange stateFunc) (*runner, func(), error) {
	grp, closer, err := buildGroupSink(g)
	if err != nil {
		return nil, nil, err
	}

	name, effectName := g.Name, g.Effect
	notify := func(state uint8) {
		onChange(name, effectName, state)
	}
	logWrite := func(err error) {
		log.WithError(err).WithField("output", name).Warn("write error")
	}

	r := &runner{name: name, effect: effectName}
	switch g.Effect {
	case "alternating":
		a := effect.NewAlternating(grp)
		if len(g.Interval) >= 2 {
			a.SetInterval(g.Interval[0], g.Interval[1])
		}
		a.SetOnStateChange(notify)
		a.SetOnWriteError(logWrite)
		r.begin = a.Begin
		r.update = a.Update
	case "bounce":
		b := effect.NewBounce(grp)
		if len(g.Interval) >= 2 {
			b.SetOnInterval(g.Interval[0])
			b.SetOffInterval(g.Interval[1])
		}
		b.SetOnStateChange(notify)
		b.SetOnWriteError(logWrite)
		r.begin = b.Begin
		r.update = b.Update
	case "trafficlight":
		tl := effect.NewTrafficlight(grp)
		if len(g.Interval) >= 1 {
			tl.SetBlinkInterval(g.Interval[0])
		}
		tl.SetOnStateChange(func(state effect.TrafficState) {
			notify(uint8(state))
		})
		tl.SetOnWriteError(logWrite)
		r.begin = tl.Begin
		r.update = tl.Update
	case "turnsignal":
		ts := effect.NewTurnsignal(grp)
		if len(g.Interval) >= 2 {
			ts.SetInterval(g.Interval[0], g.Interval[1])
		}
		ts.SetOnStateChange(func(state effect.SignalState) {
			notify(uint8(state))
		})
		ts.SetOnWriteError(logWrite)
		r.begin = ts.Begin
		r.update = ts.Update
	default:
		return nil, closer, fmt.Errorf("unknown effect %q", g.Effect)
	}
	return r, closer, nil
}

func buildGroupSink(g *config.Group) (sink.Group, func(), error) {
	switch g.Driver {
	case "gpio":
		pins := make(sink.Pins, len(g.Pins))
		gpios := make([]*gpio.Pin, len(g.Pins))
		for i, p := range g.Pins {
			pin := gpio.NewPin(gpio.Config{Chip: g.Chip, Pin: p, ActiveLow: g.ActiveLow})
			pins[i] = pin
			gpios[i] = pin
		}
		closer := func() {
			for _, pin := range gpios {
				pin.Close()
			}
		}
		return pins, closer, nil

	case "pcf8574", "pca9685", "ht16k33":
		bus, err := i2c.OpenBus(g.Bus)
		if err != nil {
			return nil, nil, err
		}
		closer := func() { bus.Close() }
		switch g.Driver {
		case "pcf8574":
			return i2c.NewPCF8574(bus, i2cAddr(g.Address, i2c.PCF8574DefaultAddress)), closer, nil
		case "pca9685":
			return i2c.NewPCA9685(bus, i2cAddr(g.Address, i2c.PCA9685DefaultAddress)), closer, nil
		default:
			return i2c.NewHT16K33(bus, i2cAddr(g.Address, i2c.HT16K33DefaultAddress)), closer, nil
		}

	case "fake":
		return sink.NewFakeGroup(maxGroupSize), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown driver %q", g.Driver)
}

// maxGroupSize covers the largest choreography (the five-output bounce).
const maxGroupSize = 5

func i2cAddr(configured uint16, fallback uint16) uint16 {
	if configured != 0 {
		return configured
	}
	return fallback
}
