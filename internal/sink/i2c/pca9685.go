package i2c

import (
	"fmt"

	"tinygo.org/x/drivers"
)

// PCA9685DefaultAddress is the chip's address with all address pins low.
const PCA9685DefaultAddress = 0x40

// PCA9685 register map (the slice used here).
const (
	pca9685Mode1    = 0x00
	pca9685Led0OnL  = 0x06 // each channel has 4 registers: ON_L ON_H OFF_L OFF_H
	pca9685Prescale = 0xFE

	pca9685Mode1AutoInc = 0x20
	pca9685Mode1Sleep   = 0x10
)

// pca9685Channels is the channel count of the chip.
const pca9685Channels = 16

// PCA9685 drives up to sixteen LEDs on a PCA9685 16-channel PWM driver.
// Each channel has true 12-bit PWM, so brightness levels map to real duty
// cycles instead of a threshold.
type PCA9685 struct {
	bus  drivers.I2C
	addr uint16
}

// NewPCA9685 creates an adapter for the driver at addr on bus.
func NewPCA9685(bus drivers.I2C, addr uint16) *PCA9685 {
	return &PCA9685{bus: bus, addr: addr}
}

// Begin wakes the chip, enables register auto-increment and darkens all
// channels.
func (d *PCA9685) Begin() error {
	if err := d.write(pca9685Mode1, pca9685Mode1AutoInc); err != nil {
		return fmt.Errorf("pca9685 init: %w", err)
	}
	for ch := 0; ch < pca9685Channels; ch++ {
		if err := d.setDuty(ch, 0); err != nil {
			return err
		}
	}
	return nil
}

// DigitalWrite drives one channel fully on or off.
func (d *PCA9685) DigitalWrite(index int, on bool) error {
	if on {
		return d.PWMWrite(index, 255)
	}
	return d.PWMWrite(index, 0)
}

// PWMWrite sets the channel duty cycle. The 0-255 level scales to the
// chip's 12-bit range (level * 16), with 255 mapped to the full 4096.
func (d *PCA9685) PWMWrite(index int, level uint8) error {
	if index < 0 || index >= pca9685Channels {
		return fmt.Errorf("pca9685: channel %d out of range [0..%d]", index, pca9685Channels-1)
	}
	duty := uint16(level) * 16
	if level == 255 {
		duty = 4096 // full-on flag bit
	}
	return d.setDuty(index, duty)
}

func (d *PCA9685) setDuty(ch int, duty uint16) error {
	reg := byte(pca9685Led0OnL + 4*ch)
	// ON time 0, OFF time = duty; duty 4096 sets the full-on bit instead.
	buf := []byte{reg, 0x00, 0x00, byte(duty), byte(duty >> 8)}
	if duty >= 4096 {
		buf = []byte{reg, 0x00, 0x10, 0x00, 0x00}
	}
	if err := d.bus.Tx(d.addr, buf, nil); err != nil {
		return fmt.Errorf("pca9685 channel %d write: %w", ch, err)
	}
	return nil
}

func (d *PCA9685) write(reg, value byte) error {
	return d.bus.Tx(d.addr, []byte{reg, value}, nil)
}
