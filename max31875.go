// Package max31875 drives the Maxim MAX31875 I2C temperature sensor
// family (parts MAX31875R0 through MAX31875R7).
//
// Typical usage:
//
//	dev, err := max31875.New(bus, 7) // MAX31875R7 at 0x4F
//	t, err := dev.GetTemperature(ctx)
//
// Configuration fields are staged in memory and committed with
// WriteConfig; threshold writes go to the sensor immediately. All
// transactions can be protected by an SMBus PEC checksum once PEC is
// enabled in the configuration.
package max31875

import (
	"context"
	"errors"
	"fmt"

	"github.com/mklimuk/max31875/pec"
)

// Register map, fixed by hardware.
const (
	regTemperature byte = 0x00
	regConfig      byte = 0x01
	regTHyst       byte = 0x02
	regTOS         byte = 0x03
)

// baseAddress is the 7-bit address of the R0 part; the part-number
// suffix is added to it.
const baseAddress byte = 0x48

// DefaultPartNumber matches the most common stocked variant, the
// MAX31875R7 at 0x4F.
const DefaultPartNumber uint8 = 7

// porConfigBits is the power-on-reset content of the configuration
// register: 10-bit resolution, normal format, everything else off.
const porConfigBits uint16 = 0x0040

// ErrCRCMismatch reports detected corruption on a PEC-protected read.
// The raw Read entry point surfaces it as an explicit error.
var ErrCRCMismatch = fmt.Errorf("pec checksum mismatch")

// ErrNoValidData is what the high-level accessors (temperature,
// thresholds, configuration) return instead when a PEC-protected read
// fails its checksum: the call produced no usable data and any prior
// in-memory state is left untouched.
var ErrNoValidData = fmt.Errorf("no valid data")

// MAX31875 is a handle to one sensor on the bus. It owns its
// configuration mirrors exclusively and borrows the transport; callers
// sharing a handle or a bus across goroutines must serialize access
// themselves.
type MAX31875 struct {
	transport I2CBus
	addr      byte
	layout    configLayout

	staged Config // field values pending a WriteConfig
	active Config // last state known to be on the device
}

// New returns a driver handle for the part with the given part-number
// suffix (0-7, MAX31875R0..R7). The suffix selects both the bus
// address and the register layout variant. Both mirrors start at the
// power-on-reset state.
func New(transport I2CBus, partNumber uint8) (*MAX31875, error) {
	if partNumber > 7 {
		return nil, fmt.Errorf("max31875: invalid part number suffix %d: %w", partNumber, ErrInvalidFieldValue)
	}
	layout := configLayouts[partNumber]
	d := &MAX31875{
		transport: transport,
		addr:      baseAddress + partNumber,
		layout:    layout,
		staged:    layout.unpack(porConfigBits),
	}
	d.active = d.staged
	return d, nil
}

// Address returns the 7-bit bus address resolved from the part number.
func (d *MAX31875) Address() byte {
	return d.addr
}

// Write writes data bytes to a device register. With PEC active the
// checksum byte, covering the framed transaction as seen on the wire,
// is appended after data. A transport failure is fatal to the call and
// is never retried.
func (d *MAX31875) Write(ctx context.Context, register byte, data []byte) error {
	frame := make([]byte, 0, len(data)+2)
	frame = append(frame, register)
	frame = append(frame, data...)
	if d.active.PEC {
		covered := make([]byte, 0, len(data)+2)
		covered = append(covered, d.addr<<1, register)
		covered = append(covered, data...)
		frame = append(frame, pec.Checksum(covered))
	}
	if err := d.transport.WriteToAddr(ctx, d.addr, frame); err != nil {
		return fmt.Errorf("max31875: write of register %#x failed: %w", register, err)
	}
	return nil
}

// Read reads length data bytes from a device register. With PEC active
// one extra byte is transferred; the checksum is recomputed over the
// address and data bytes observed on the bus and a mismatch surfaces
// as an explicit error wrapping ErrCRCMismatch.
func (d *MAX31875) Read(ctx context.Context, register byte, length int) ([]byte, error) {
	if err := d.transport.WriteToAddr(ctx, d.addr, []byte{register}); err != nil {
		return nil, fmt.Errorf("max31875: select of register %#x failed: %w", register, err)
	}
	if !d.active.PEC {
		buf := make([]byte, length)
		if err := d.transport.ReadFromAddr(ctx, d.addr, buf); err != nil {
			return nil, fmt.Errorf("max31875: read of register %#x failed: %w", register, err)
		}
		return buf, nil
	}
	buf := make([]byte, length+1)
	if err := d.transport.ReadFromAddr(ctx, d.addr, buf); err != nil {
		return nil, fmt.Errorf("max31875: read of register %#x failed: %w", register, err)
	}
	// the checksum covers both phases of the transaction: the write of
	// the register pointer and the addressed read of the data bytes
	covered := make([]byte, 0, length+3)
	covered = append(covered, d.addr<<1, register, d.addr<<1|1)
	covered = append(covered, buf[:length]...)
	if !pec.Verify(covered, buf[length]) {
		return nil, fmt.Errorf("max31875: read of register %#x: %w", register, ErrCRCMismatch)
	}
	return buf[:length], nil
}

// readChecked is the read path of the high-level accessors: a checksum
// failure degrades to ErrNoValidData instead of an I/O error.
func (d *MAX31875) readChecked(ctx context.Context, register byte, length int) ([]byte, error) {
	buf, err := d.Read(ctx, register, length)
	if err != nil {
		if errors.Is(err, ErrCRCMismatch) {
			return nil, ErrNoValidData
		}
		return nil, err
	}
	return buf, nil
}
