package adapter

import (
	"context"
	"fmt"
	"sync"

	"gobot.io/x/gobot/v2/drivers/i2c"
)

// GobotBus adapts a gobot i2c.Connector (any gobot platform adaptor:
// Raspberry Pi, NanoPi, BeagleBone...) to the bus interface the driver
// expects. Connections are opened lazily and cached per address.
type GobotBus struct {
	mx        sync.Mutex
	connector i2c.Connector
	busNr     int
	conns     map[byte]i2c.Connection
}

func NewGobotBus(connector i2c.Connector, busNr int) *GobotBus {
	return &GobotBus{
		connector: connector,
		busNr:     busNr,
		conns:     make(map[byte]i2c.Connection),
	}
}

func (b *GobotBus) connection(address byte) (i2c.Connection, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if conn, ok := b.conns[address]; ok {
		return conn, nil
	}
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not open connection to %#x on bus %d: %w", address, b.busNr, err)
	}
	b.conns[address] = conn
	return conn, nil
}

func (b *GobotBus) WriteToAddr(_ context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Write(buffer)
	if err != nil {
		return fmt.Errorf("write to %x failed: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short write to %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

func (b *GobotBus) ReadFromAddr(_ context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	n, err := conn.Read(buffer)
	if err != nil {
		return fmt.Errorf("bus read from %x failed: %w", address, err)
	}
	if n != len(buffer) {
		return fmt.Errorf("short read from %x: %d of %d bytes", address, n, len(buffer))
	}
	return nil
}

// Release closes all cached connections. The underlying platform
// adaptor stays connected; Finalize it separately.
func (b *GobotBus) Release(context.Context) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	var first error
	for addr, conn := range b.conns {
		if err := conn.Close(); err != nil && first == nil {
			first = fmt.Errorf("could not close connection to %#x: %w", addr, err)
		}
		delete(b.conns, addr)
	}
	return first
}
