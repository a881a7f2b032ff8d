// Package adapter contains bus implementations backed by USB bridge
// chips, for driving the sensor from a host without native I2C pins.
package adapter

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mklimuk/max31875"
)

// USB identifiers of the Microchip MCP2221/MCP2221A USB-to-I2C bridge.
const VendorID = 0x04D8
const ProductID = 0x00DD

var ErrDeviceNotFound = errors.New("MCP2221 device not found")

// MCP2221 talks to the bridge's I2C engine over 64-byte HID reports.
// All methods serialize on an internal mutex; a single bridge cannot
// interleave transactions anyway.
type MCP2221 struct {
	mx           sync.Mutex
	dev          *hid.Device
	request      []byte
	response     []byte
	responseWait time.Duration
}

// MCP2221Status is a decoded status report of the bridge's I2C engine.
type MCP2221Status struct {
	I2CDataBufferCounter   int    `yaml:"i2c_data_buffer_counter"`
	I2CSpeedDivider        int    `yaml:"i2c_speed_divider"`
	I2CTimeout             int    `yaml:"i2c_timeout"`
	CurrentAddress         string `yaml:"current_address"`
	LastWriteRequestedSize uint16 `yaml:"last_write_requested_size"`
	LastWriteSentSize      uint16 `yaml:"last_write_sent_size"`
	ReadPending            int    `yaml:"read_pending"`
}

func NewMCP2221() *MCP2221 {
	return &MCP2221{
		request:      make([]byte, 64),
		response:     make([]byte, 64),
		responseWait: 50 * time.Millisecond,
	}
}

// Devices enumerates MCP2221 bridges currently attached over USB.
func Devices() []hid.DeviceInfo {
	return hid.Enumerate(VendorID, ProductID)
}

// Init opens the bridge and holds it for the lifetime of the adapter.
// With more than one bridge attached, id selects which enumerated
// device to use. Without Init every transaction opens and closes the
// device on its own, which is fine for one-shot CLI use.
func (d *MCP2221) Init(id ...int) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.dev != nil {
		return nil
	}
	devs := hid.Enumerate(VendorID, ProductID)
	if len(devs) == 0 {
		return ErrDeviceNotFound
	}
	if len(devs) > 1 && len(id) == 0 {
		return fmt.Errorf("ambiguous device identification: %d bridges attached", len(devs))
	}
	which := 0
	if len(id) > 0 {
		which = id[0]
	}
	if which < 0 || which >= len(devs) {
		return fmt.Errorf("no device with id %d", which)
	}
	dev, err := devs[which].Open()
	if err != nil {
		return fmt.Errorf("error opening device: %w", err)
	}
	d.dev = dev
	return nil
}

// Close releases the USB handle held by Init.
func (d *MCP2221) Close() error {
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.dev == nil {
		return nil
	}
	err := d.dev.Close()
	d.dev = nil
	return err
}

func (d *MCP2221) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = 0x90
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address << 1
	if len(buffer) > 0 {
		copy(d.request[4:], buffer)
	}
	err := d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	// engine still busy with the previous transfer
	if d.response[1] == 0x01 {
		slog.Debug("adapter busy")
		return max31875.ErrBusBusy
	}
	return nil
}

func (d *MCP2221) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = 0x91
	binary.LittleEndian.PutUint16(d.request[1:3], uint16(len(buffer)))
	d.request[3] = address<<1 + 1
	err := d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	d.request[0] = 0x40
	resetBuffer(d.response)
	err = d.send(ctx, true)
	if err != nil {
		return fmt.Errorf("error getting read data from adapter: %w", err)
	}
	if d.response[1] == 0x41 {
		return fmt.Errorf("error reading the I2C slave data from the I2C engine")
	}
	if d.response[3] == 127 || int(d.response[3]) != len(buffer) {
		return fmt.Errorf("invalid data size byte; expected %d, got %d", len(buffer), d.response[3])
	}
	copy(buffer, d.response[4:])
	return nil
}

// Status queries the I2C engine state without touching the bus.
func (d *MCP2221) Status(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	d.resetBuffers()
	d.request[0] = 0x10
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func bufferToStatus(buffer []byte) *MCP2221Status {
	/*
		9: Lower byte (16-bit value) of the requested I2C transfer length
		10: Higher byte (16-bit value) of the requested I2C transfer length
		11:	Lower byte (16-bit value) of the already transferred (through I2C) number of bytes
		12:	Higher byte (16-bit value) of the already transferred (through I2C) number of bytes
		13:	Internal I2C data buffer counter
		14: Current I2C communication speed divider value
		15: Current I2C timeout value
		16:	Lower byte (16-bit value) of the I2C address being used
		17:	Higher byte (16-bit value) of the I2C address being used
	*/
	status := &MCP2221Status{
		I2CDataBufferCounter: int(buffer[13]),
		I2CSpeedDivider:      int(buffer[14]),
		I2CTimeout:           int(buffer[15]),
		ReadPending:          int(buffer[25]),
		CurrentAddress:       hex.EncodeToString(buffer[16:18]),
	}
	status.LastWriteRequestedSize = binary.LittleEndian.Uint16(buffer[9:11])
	status.LastWriteSentSize = binary.LittleEndian.Uint16(buffer[11:13])
	return status
}

// Release cancels any pending transfer, freeing the engine after a
// device held the bus mid-transaction.
func (d *MCP2221) Release(ctx context.Context) error {
	d.mx.Lock()
	defer d.mx.Unlock()
	_, err := d.releaseBus(ctx)
	return err
}

// ReleaseBus is Release plus the engine status after cancellation.
func (d *MCP2221) ReleaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.releaseBus(ctx)
}

func (d *MCP2221) releaseBus(ctx context.Context) (*MCP2221Status, error) {
	d.resetBuffers()
	d.request[0] = 0x10
	d.request[2] = 0x10
	err := d.send(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	return bufferToStatus(d.response), nil
}

func (d *MCP2221) send(ctx context.Context, response bool) error {
	dev := d.dev
	if dev == nil {
		devs := hid.Enumerate(VendorID, ProductID)
		if len(devs) == 0 {
			return ErrDeviceNotFound
		}
		if len(devs) > 1 {
			return fmt.Errorf("ambiguous device identification: %d bridges attached", len(devs))
		}
		var err error
		dev, err = devs[0].Open()
		if err != nil {
			return fmt.Errorf("error opening device: %w", err)
		}
		defer func() {
			_ = dev.Close()
		}()
	}
	slog.Debug("sending message to adapter", "dump", hex.Dump(d.request))
	n, err := dev.Write(d.request)
	if err != nil {
		return fmt.Errorf("could not write request: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short write: %d", n)
	}
	if !response {
		return nil
	}
	time.Sleep(d.responseWait)
	n, err = dev.Read(d.response)
	if err != nil {
		return fmt.Errorf("could not read response: %w", err)
	}
	if n != 64 {
		return fmt.Errorf("short read: %d", n)
	}
	slog.Debug("read message from adapter", "dump", hex.Dump(d.response))
	return nil
}

func (d *MCP2221) resetBuffers() {
	resetBuffer(d.request)
	resetBuffer(d.response)
}

func resetBuffer(buf []byte) {
	for i := 0; i < len(buf)-1; i++ {
		buf[i] = 0x00
	}
}
