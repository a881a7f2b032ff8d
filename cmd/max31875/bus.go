package main

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/max31875"
	"github.com/mklimuk/max31875/adapter"
	"github.com/mklimuk/max31875/cmd/max31875/console"
	"github.com/mklimuk/max31875/i2c"
)

// flags shared by every command that touches the sensor
func busFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Value:   "mcp2221",
			Usage:   "bus adapter: mcp2221, i2c or nanopi",
		},
		&cli.StringFlag{
			Name:  "bus",
			Value: "",
			Usage: "i2c bus name for the native adapter (e.g. /dev/i2c-1)",
		},
		&cli.IntFlag{
			Name:  "speed",
			Value: 0,
			Usage: "i2c bus clock in kHz for the native adapter",
		},
		&cli.UintFlag{
			Name:    "part",
			Aliases: []string{"p"},
			Value:   uint(max31875.DefaultPartNumber),
			Usage:   "part number suffix (0-7, selects bus address 0x48-0x4F)",
		},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
	}
}

// openBus builds the bus selected by the adapter flag; the returned
// closer always has to be called.
func openBus(c *cli.Context) (max31875.I2CBus, func(), error) {
	switch c.String("adapter") {
	case "i2c":
		bus, err := i2c.NewGenericBus(c.String("bus"))
		if err != nil {
			return nil, func() {}, err
		}
		if speed := c.Int("speed"); speed > 0 {
			err = bus.SetSpeed(physic.Frequency(speed) * physic.KiloHertz)
			if err != nil {
				_ = bus.Close()
				return nil, func() {}, err
			}
		}
		return bus, func() { _ = bus.Close() }, nil
	case "nanopi":
		npi := nanopi.NewNeoAdaptor()
		err := npi.I2cBusAdaptor.Connect()
		if err != nil {
			return nil, func() {}, err
		}
		busNr := 0
		if b := c.String("bus"); b != "" {
			busNr, err = strconv.Atoi(b)
			if err != nil {
				return nil, func() {}, err
			}
		}
		bus := adapter.NewGobotBus(npi, busNr)
		return bus, func() {
			_ = bus.Release(context.Background())
			_ = npi.I2cBusAdaptor.Finalize()
		}, nil
	default:
		mcp := adapter.NewMCP2221()
		err := mcp.Init()
		if err != nil {
			return nil, func() {}, err
		}
		return mcp, func() { _ = mcp.Close() }, nil
	}
}

func openSensor(c *cli.Context) (*max31875.MAX31875, func(), error) {
	bus, done, err := openBus(c)
	if err != nil {
		return nil, done, console.Exit(1, "adapter initialization error: %s", console.Red(err))
	}
	dev, err := max31875.New(bus, uint8(c.Uint("part")))
	if err != nil {
		done()
		return nil, func() {}, console.Exit(1, "%s", console.Red(err))
	}
	return dev, done, nil
}
