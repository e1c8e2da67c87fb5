//go:build !linux

package gpio

import "errors"

// Pin is not available on non-Linux platforms.
type Pin struct{}

// NewPin returns a stub whose Begin fails.
func NewPin(cfg Config) *Pin {
	return &Pin{}
}

// Begin returns an error on non-Linux platforms.
func (p *Pin) Begin() error {
	return errors.New("gpio: not supported on this platform (requires Linux)")
}

// DigitalWrite is not implemented on non-Linux platforms.
func (p *Pin) DigitalWrite(on bool) error {
	return errors.New("gpio: not supported")
}

// PWMWrite is not implemented on non-Linux platforms.
func (p *Pin) PWMWrite(level uint8) error {
	return errors.New("gpio: not supported")
}

// DigitalRead is not implemented on non-Linux platforms.
func (p *Pin) DigitalRead() bool {
	return false
}

// Close is not implemented on non-Linux platforms.
func (p *Pin) Close() error {
	return nil
}
