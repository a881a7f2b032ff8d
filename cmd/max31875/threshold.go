package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/max31875/cmd/max31875/console"
)

var thresholdCmd = cli.Command{
	Name:    "threshold",
	Aliases: []string{"th"},
	Usage:   "read and set the overtemperature and hysteresis thresholds",
	Subcommands: cli.Commands{
		&thresholdGetCmd,
		&thresholdSetCmd,
	},
}

var thresholdGetCmd = cli.Command{
	Name:  "get",
	Flags: busFlags(),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		tos, err := dev.TOS(ctx)
		if err != nil {
			return console.Exit(1, "error reading overtemperature threshold: %s", console.Red(err))
		}
		thyst, err := dev.THyst(ctx)
		if err != nil {
			return console.Exit(1, "error reading hysteresis threshold: %s", console.Red(err))
		}
		console.PInfof(console.PictoAlert, "overtemperature: %s°C, hysteresis: %s°C", console.White(tos), console.White(thyst))
		return nil
	},
}

var thresholdSetCmd = cli.Command{
	Name: "set",
	Flags: append(busFlags(),
		&cli.Float64Flag{Name: "tos", Usage: "overtemperature threshold in °C"},
		&cli.Float64Flag{Name: "thyst", Usage: "hysteresis threshold in °C"},
	),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		if !c.IsSet("tos") && !c.IsSet("thyst") {
			return console.Exit(1, "nothing to set: pass --tos and/or --thyst")
		}
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		if c.IsSet("tos") {
			err = dev.SetTOS(ctx, c.Float64("tos"))
			if err != nil {
				return console.Exit(1, "error setting overtemperature threshold: %s", console.Red(err))
			}
			console.PInfof(console.PictoAlert, "overtemperature threshold set to %s°C", console.White(c.Float64("tos")))
		}
		if c.IsSet("thyst") {
			err = dev.SetTHyst(ctx, c.Float64("thyst"))
			if err != nil {
				return console.Exit(1, "error setting hysteresis threshold: %s", console.Red(err))
			}
			console.PInfof(console.PictoAlert, "hysteresis threshold set to %s°C", console.White(c.Float64("thyst")))
		}
		return nil
	},
}
