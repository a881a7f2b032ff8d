package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/max31875"
	"github.com/mklimuk/max31875/cmd/max31875/console"
)

var configCmd = cli.Command{
	Name:    "config",
	Aliases: []string{"cfg"},
	Usage:   "inspect and change the configuration register",
	Subcommands: cli.Commands{
		&configShowCmd,
		&configSetCmd,
	},
}

var configShowCmd = cli.Command{
	Name:  "show",
	Usage: "read the configuration register from the sensor",
	Flags: busFlags(),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		err = dev.ReadConfig(ctx)
		if err != nil {
			return console.Exit(1, "error reading configuration: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "configuration register: %s", console.White(fmt.Sprintf("%#04x", dev.ConfigBits())))
		enc := yaml.NewEncoder(os.Stdout)
		err = enc.Encode(dev.ActiveConfig())
		if err != nil {
			return console.Exit(1, "encoding error: %s", console.Red(err))
		}
		return nil
	},
}

var configSetCmd = cli.Command{
	Name:  "set",
	Usage: "stage configuration changes and commit them to the sensor",
	Flags: append(busFlags(),
		&cli.StringFlag{Name: "preset", Usage: "yaml file with a full configuration"},
		&cli.IntFlag{Name: "resolution", Usage: "conversion resolution in bits: 8, 9, 10 or 12"},
		&cli.StringFlag{Name: "format", Usage: "data format: normal or extended"},
		&cli.Float64Flag{Name: "rate", Usage: "conversion rate in Hz: 0.25, 1, 4 or 8"},
		&cli.IntFlag{Name: "fault-queue", Usage: "fault queue depth: 1, 2, 4 or 6"},
		&cli.BoolFlag{Name: "pec", Usage: "enable packet error checking"},
		&cli.BoolFlag{Name: "shutdown", Usage: "enter shutdown mode"},
		&cli.BoolFlag{Name: "interrupt", Usage: "comparator to interrupt mode"},
		&cli.BoolFlag{Name: "timeout-disabled", Usage: "disable the bus timeout"},
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"},
	),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()

		if preset := c.String("preset"); preset != "" {
			raw, err := os.ReadFile(preset)
			if err != nil {
				return console.Exit(1, "could not read preset file: %s", console.Red(err))
			}
			var cfg max31875.Config
			err = yaml.Unmarshal(raw, &cfg)
			if err != nil {
				return console.Exit(1, "could not parse preset file: %s", console.Red(err))
			}
			err = dev.ApplyConfig(cfg)
			if err != nil {
				return console.Exit(1, "invalid preset: %s", console.Red(err))
			}
		}
		err = stageFlags(c, dev)
		if err != nil {
			return console.Exit(1, "%s", console.Red(err))
		}

		if !c.Bool("yes") {
			answer, err := console.YesOrNo(fmt.Sprintf("write configuration to the sensor at %#x?", dev.Address()))
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			if answer != console.Yes {
				console.PInfof(console.PictoStop, "aborted, nothing written")
				return nil
			}
		}
		err = dev.WriteConfig(ctx)
		if err != nil {
			return console.Exit(1, "error writing configuration: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "configuration written: %s", console.White(fmt.Sprintf("%#04x", dev.ConfigBits())))
		return nil
	},
}

func stageFlags(c *cli.Context, dev *max31875.MAX31875) error {
	if c.IsSet("resolution") {
		var res max31875.Resolution
		switch c.Int("resolution") {
		case 8:
			res = max31875.Resolution8Bit
		case 9:
			res = max31875.Resolution9Bit
		case 10:
			res = max31875.Resolution10Bit
		case 12:
			res = max31875.Resolution12Bit
		default:
			return fmt.Errorf("invalid resolution: %d", c.Int("resolution"))
		}
		if err := dev.SetResolution(res); err != nil {
			return err
		}
	}
	if c.IsSet("format") {
		switch c.String("format") {
		case "normal":
			_ = dev.SetFormat(max31875.FormatNormal)
		case "extended":
			_ = dev.SetFormat(max31875.FormatExtended)
		default:
			return fmt.Errorf("invalid format: %s", c.String("format"))
		}
	}
	if c.IsSet("rate") {
		var rate max31875.ConversionRate
		switch c.Float64("rate") {
		case 0.25:
			rate = max31875.ConversionRateQuarterHz
		case 1:
			rate = max31875.ConversionRate1Hz
		case 4:
			rate = max31875.ConversionRate4Hz
		case 8:
			rate = max31875.ConversionRate8Hz
		default:
			return fmt.Errorf("invalid conversion rate: %v", c.Float64("rate"))
		}
		if err := dev.SetConversionRate(rate); err != nil {
			return err
		}
	}
	if c.IsSet("fault-queue") {
		var q max31875.FaultQueue
		switch c.Int("fault-queue") {
		case 1:
			q = max31875.FaultQueue1
		case 2:
			q = max31875.FaultQueue2
		case 4:
			q = max31875.FaultQueue4
		case 6:
			q = max31875.FaultQueue6
		default:
			return fmt.Errorf("invalid fault queue depth: %d", c.Int("fault-queue"))
		}
		if err := dev.SetFaultQueue(q); err != nil {
			return err
		}
	}
	if c.IsSet("pec") {
		dev.SetPEC(c.Bool("pec"))
	}
	if c.IsSet("shutdown") {
		dev.SetShutdown(c.Bool("shutdown"))
	}
	if c.IsSet("interrupt") {
		dev.SetInterruptMode(c.Bool("interrupt"))
	}
	if c.IsSet("timeout-disabled") {
		dev.SetTimeoutDisabled(c.Bool("timeout-disabled"))
	}
	return nil
}
