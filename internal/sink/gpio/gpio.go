// Package gpio drives LEDs attached to GPIO lines via the Linux GPIO
// character device. Lines are binary only; PWM levels are thresholded.
// The real implementation is Linux-only; other platforms get a stub that
// fails at Begin.
package gpio

import "github.com/sweeney/badge-leds/internal/sink"

// Config describes one GPIO output line.
type Config struct {
	// Chip is the gpiochip device name, e.g. "gpiochip0".
	Chip string

	// Pin is the line offset (BCM numbering on Raspberry Pi).
	Pin int

	// ActiveLow inverts the electrical level: the LED is wired between
	// the pin and VCC, so logical ON drives the line low.
	ActiveLow bool
}

// DefaultChip is used when Config.Chip is empty.
const DefaultChip = "gpiochip0"

var _ sink.Sink = (*Pin)(nil)
var _ sink.Reader = (*Pin)(nil)
