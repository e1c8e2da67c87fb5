//go:build linux

package i2c

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl selecting the peripheral address.
const i2cSlave = 0x0703

// Bus is a drivers.I2C implementation over a Linux i2c-dev device.
type Bus struct {
	mu   sync.Mutex
	file *os.File
	addr uint16 // currently selected peripheral
}

// OpenBus opens an I2C bus device, e.g. /dev/i2c-1.
func OpenBus(path string) (*Bus, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", path, err)
	}
	return &Bus{file: file}, nil
}

// Tx selects addr and performs a write followed by an optional read.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.addr != addr {
		if err := unix.IoctlSetInt(int(b.file.Fd()), i2cSlave, int(addr)); err != nil {
			return fmt.Errorf("select i2c address %#02x: %w", addr, err)
		}
		b.addr = addr
	}
	if len(w) > 0 {
		if _, err := b.file.Write(w); err != nil {
			return fmt.Errorf("i2c write to %#02x: %w", addr, err)
		}
	}
	if len(r) > 0 {
		if _, err := b.file.Read(r); err != nil {
			return fmt.Errorf("i2c read from %#02x: %w", addr, err)
		}
	}
	return nil
}

// Close releases the bus device.
func (b *Bus) Close() error {
	return b.file.Close()
}
