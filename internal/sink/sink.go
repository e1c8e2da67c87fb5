// Package sink defines the capability contract every hardware output adapter
// implements. Concrete adapters (GPIO pin, sysfs LED, I2C expander channel)
// live in subpackages; this package only holds the contract, helpers and
// test doubles, so the effect layer stays free of hardware dependencies.
package sink

import "fmt"

// PWMThreshold is the level at which adapters without true PWM capability
// switch a binary output on. Levels at or above it read as HIGH.
const PWMThreshold = 128

// Sink drives a single output.
//
// Begin performs one-time hardware initialization; call it exactly once.
// DigitalWrite drives the output to a logical level, independent of
// electrical polarity. PWMWrite drives a brightness level 0-255; adapters
// without PWM capability must threshold (>= PWMThreshold -> on) rather
// than fail. Every write may trigger an immediate hardware transaction;
// callers must not assume coalescing of rapid writes.
type Sink interface {
	Begin() error
	DigitalWrite(on bool) error
	PWMWrite(level uint8) error
}

// Group drives a fixed set of indexed outputs sharing one adapter
// (an expander, a pixel strip segment, or a Pins bundle).
type Group interface {
	Begin() error
	DigitalWrite(index int, on bool) error
	PWMWrite(index int, level uint8) error
}

// Colorer is an optional capability of color-capable sinks.
// Colors are 0xRRGGBB. Binary sinks simply don't implement it.
type Colorer interface {
	SetOnColor(color uint32)
	SetOffColor(color uint32)
}

// GroupColorer is an optional capability of color-capable groups,
// setting the on color of one indexed output.
type GroupColorer interface {
	SetOnColor(index int, color uint32)
	SetOffColor(color uint32)
}

// Reader is an optional capability for reading an output back.
// Adapters that cannot read true hardware state return the last
// written value as a best-effort proxy.
type Reader interface {
	DigitalRead() bool
}

// Pins bundles independent Sinks into a Group. Index order is the
// order of the slice.
type Pins []Sink

// Begin initializes every pin in the bundle.
func (p Pins) Begin() error {
	for i, s := range p {
		if err := s.Begin(); err != nil {
			return fmt.Errorf("begin pin %d: %w", i, err)
		}
	}
	return nil
}

// DigitalWrite drives a single pin of the bundle.
func (p Pins) DigitalWrite(index int, on bool) error {
	if index < 0 || index >= len(p) {
		return fmt.Errorf("pin index %d out of range [0..%d]", index, len(p)-1)
	}
	return p[index].DigitalWrite(on)
}

// PWMWrite drives a single pin of the bundle with a brightness level.
func (p Pins) PWMWrite(index int, level uint8) error {
	if index < 0 || index >= len(p) {
		return fmt.Errorf("pin index %d out of range [0..%d]", index, len(p)-1)
	}
	return p[index].PWMWrite(level)
}

// First adapts index 0 of a Group to the single-output Sink interface.
type First struct {
	Group Group
}

func (f First) Begin() error                { return f.Group.Begin() }
func (f First) DigitalWrite(on bool) error  { return f.Group.DigitalWrite(0, on) }
func (f First) PWMWrite(level uint8) error  { return f.Group.PWMWrite(0, level) }
