package i2c

import (
	"fmt"

	"tinygo.org/x/drivers"

	"github.com/sweeney/badge-leds/internal/sink"
)

// PCF8574DefaultAddress is the chip's address with all address pins low.
// The PCF8574A variant starts at 0x38.
const PCF8574DefaultAddress = 0x20

// PCF8574 drives up to eight LEDs on a PCF8574 port expander. The chip has
// one quasi-bidirectional 8-bit port and no registers: every write sets all
// eight pins at once, so the adapter keeps a shadow of the port state.
//
// The expander sinks current much better than it sources it, so LEDs are
// wired pin-to-VCC and lit by driving the pin low.
type PCF8574 struct {
	bus    drivers.I2C
	addr   uint16
	shadow uint8 // 1 bit per pin, 1 = lit (pin driven low)
}

// NewPCF8574 creates an adapter for the expander at addr on bus.
func NewPCF8574(bus drivers.I2C, addr uint16) *PCF8574 {
	return &PCF8574{bus: bus, addr: addr}
}

// Begin darkens all eight pins.
func (d *PCF8574) Begin() error {
	d.shadow = 0
	return d.flush()
}

// DigitalWrite drives one pin. The full port is rewritten from the shadow.
func (d *PCF8574) DigitalWrite(index int, on bool) error {
	if index < 0 || index > 7 {
		return fmt.Errorf("pcf8574: pin index %d out of range [0..7]", index)
	}
	if on {
		d.shadow |= 1 << index
	} else {
		d.shadow &^= 1 << index
	}
	return d.flush()
}

// PWMWrite thresholds the level; the chip has no PWM.
func (d *PCF8574) PWMWrite(index int, level uint8) error {
	return d.DigitalWrite(index, level >= sink.PWMThreshold)
}

func (d *PCF8574) flush() error {
	// Active low: a shadow bit of 1 clears the port bit.
	if err := d.bus.Tx(d.addr, []byte{^d.shadow}, nil); err != nil {
		return fmt.Errorf("pcf8574 write: %w", err)
	}
	return nil
}
