// Package i2c drives LEDs behind I2C expander and driver chips. Every
// adapter takes a drivers.I2C bus so tests can substitute a scripted fake
// and the same code runs against any bus implementation.
package i2c

import "github.com/sweeney/badge-leds/internal/sink"

var (
	_ sink.Group = (*PCF8574)(nil)
	_ sink.Group = (*PCA9685)(nil)
	_ sink.Group = (*HT16K33)(nil)
)
