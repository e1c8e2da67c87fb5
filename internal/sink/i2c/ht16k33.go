package i2c

import (
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/sweeney/badge-leds/internal/sink"
)

// HT16K33DefaultAddress is the chip's address with all address pins low.
const HT16K33DefaultAddress = 0x70

// HT16K33 command bytes.
const (
	ht16k33SystemOn  = 0x21 // oscillator on
	ht16k33DisplayOn = 0x81 // display on, no blink
	ht16k33Dimming   = 0xE0 // low nibble = duty 0..15
)

// ht16k33Outputs is the LED count driven here: one 16-LED row common.
const ht16k33Outputs = 16

// HT16K33 drives up to sixteen LEDs on a HT16K33 matrix driver. The chip
// holds a display RAM bitmap; individual LEDs are set in a shadow buffer
// and flushed per write. Brightness is global 16-step dimming, so per-LED
// PWM levels threshold the on/off bit and the global duty follows the
// most recent level.
type HT16K33 struct {
	bus    drivers.I2C
	addr   uint16
	shadow uint16
	duty   uint8 // 0..15
}

// NewHT16K33 creates an adapter for the driver at addr on bus.
func NewHT16K33(bus drivers.I2C, addr uint16) *HT16K33 {
	return &HT16K33{bus: bus, addr: addr, duty: 15}
}

// Begin starts the oscillator, switches the display on at full duty and
// clears the bitmap.
func (d *HT16K33) Begin() error {
	for _, cmd := range []byte{ht16k33SystemOn, ht16k33DisplayOn, ht16k33Dimming | d.duty} {
		if err := d.bus.Tx(d.addr, []byte{cmd}, nil); err != nil {
			return fmt.Errorf("ht16k33 command %#02x: %w", cmd, err)
		}
	}
	d.shadow = 0
	return d.flush()
}

// DigitalWrite sets one LED bit and flushes the bitmap.
func (d *HT16K33) DigitalWrite(index int, on bool) error {
	if index < 0 || index >= ht16k33Outputs {
		return fmt.Errorf("ht16k33: led index %d out of range [0..%d]", index, ht16k33Outputs-1)
	}
	if on {
		d.shadow |= 1 << index
	} else {
		d.shadow &^= 1 << index
	}
	return d.flush()
}

// PWMWrite thresholds the LED bit and maps the level onto the global
// 16-step dimming. The dimming applies to every lit LED of the chip.
func (d *HT16K33) PWMWrite(index int, level uint8) error {
	duty := level >> 4
	if duty != d.duty {
		d.duty = duty
		if err := d.bus.Tx(d.addr, []byte{ht16k33Dimming | duty}, nil); err != nil {
			return fmt.Errorf("ht16k33 dimming: %w", err)
		}
	}
	return d.DigitalWrite(index, level >= sink.PWMThreshold)
}

func (d *HT16K33) flush() error {
	// Display RAM starts at address 0; row 0 occupies the first two bytes.
	buf := []byte{0x00, byte(d.shadow), byte(d.shadow >> 8)}
	if err := d.bus.Tx(d.addr, buf, nil); err != nil {
		return fmt.Errorf("ht16k33 write: %w", err)
	}
	return nil
}
