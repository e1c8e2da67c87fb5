//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/badge-leds/internal/sink"
)

// Pin drives a single LED on a GPIO line of a Linux GPIO character device.
type Pin struct {
	cfg  Config
	chip *gpiocdev.Chip
	line *gpiocdev.Line
	last bool
}

// NewPin creates a pin sink for the given line. The line is not touched
// until Begin.
func NewPin(cfg Config) *Pin {
	if cfg.Chip == "" {
		cfg.Chip = DefaultChip
	}
	return &Pin{cfg: cfg}
}

// Begin opens the chip and requests the line as an output, initially off.
func (p *Pin) Begin() error {
	chip, err := gpiocdev.NewChip(p.cfg.Chip)
	if err != nil {
		return fmt.Errorf("open gpio chip %s: %w", p.cfg.Chip, err)
	}

	opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
	if p.cfg.ActiveLow {
		opts = append(opts, gpiocdev.AsActiveLow)
	}
	line, err := chip.RequestLine(p.cfg.Pin, opts...)
	if err != nil {
		chip.Close()
		return fmt.Errorf("request pin %d: %w", p.cfg.Pin, err)
	}

	p.chip = chip
	p.line = line
	return nil
}

// DigitalWrite drives the line. ActiveLow inversion is handled by the
// kernel via the line flag, so on always means logically lit.
func (p *Pin) DigitalWrite(on bool) error {
	value := 0
	if on {
		value = 1
	}
	if err := p.line.SetValue(value); err != nil {
		return fmt.Errorf("write pin %d: %w", p.cfg.Pin, err)
	}
	p.last = on
	return nil
}

// PWMWrite thresholds the level; GPIO lines have no duty cycle.
func (p *Pin) PWMWrite(level uint8) error {
	return p.DigitalWrite(level >= sink.PWMThreshold)
}

// DigitalRead returns the last written level. The line is requested as
// output, so reading back the hardware is not possible.
func (p *Pin) DigitalRead() bool {
	return p.last
}

// Close darkens the LED and releases the line.
// Reconfigures the line to input (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (p *Pin) Close() error {
	var errs []error

	if p.line != nil {
		if err := p.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("darken pin %d: %w", p.cfg.Pin, err))
		}
		if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", p.cfg.Pin, err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", p.cfg.Pin, err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
