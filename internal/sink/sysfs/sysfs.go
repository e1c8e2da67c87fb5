// Package sysfs drives LEDs registered with the kernel LED class
// (/sys/class/leds). Unlike raw GPIO lines these support true brightness
// levels up to the per-LED max_brightness.
package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeney/badge-leds/internal/sink"
)

// Root is the LED class directory. A variable so tests can point it at a
// temporary directory.
var Root = "/sys/class/leds"

// LED drives one kernel LED class device by name.
type LED struct {
	name string
	max  int
	last bool
}

var _ sink.Sink = (*LED)(nil)
var _ sink.Reader = (*LED)(nil)

// NewLED creates a sink for the named LED class device, e.g. "led0" or
// "ACT". The device is not touched until Begin.
func NewLED(name string) *LED {
	return &LED{name: name, max: 255}
}

// Begin reads max_brightness, clears any trigger the kernel may have
// attached (heartbeat, mmc activity) and darkens the LED.
func (l *LED) Begin() error {
	raw, err := os.ReadFile(l.path("max_brightness"))
	if err != nil {
		return fmt.Errorf("read max_brightness of %s: %w", l.name, err)
	}
	max, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || max < 1 {
		return fmt.Errorf("parse max_brightness of %s: %q", l.name, raw)
	}
	l.max = max

	// Triggers fight over the brightness file; "none" hands it to us.
	// Not every device exposes the file, so a failure is not fatal.
	_ = os.WriteFile(l.path("trigger"), []byte("none"), 0o644)

	return l.DigitalWrite(false)
}

// DigitalWrite drives the LED fully on or off.
func (l *LED) DigitalWrite(on bool) error {
	value := 0
	if on {
		value = l.max
	}
	if err := l.write(value); err != nil {
		return err
	}
	l.last = on
	return nil
}

// PWMWrite scales the 0-255 level to the device's brightness range.
func (l *LED) PWMWrite(level uint8) error {
	value := int(level) * l.max / 255
	if err := l.write(value); err != nil {
		return err
	}
	l.last = level >= sink.PWMThreshold
	return nil
}

// DigitalRead returns the level implied by the last write.
func (l *LED) DigitalRead() bool {
	return l.last
}

// Close darkens the LED.
func (l *LED) Close() error {
	return l.DigitalWrite(false)
}

func (l *LED) write(value int) error {
	data := []byte(strconv.Itoa(value))
	if err := os.WriteFile(l.path("brightness"), data, 0o644); err != nil {
		return fmt.Errorf("write brightness of %s: %w", l.name, err)
	}
	return nil
}

func (l *LED) path(file string) string {
	return filepath.Join(Root, l.name, file)
}
