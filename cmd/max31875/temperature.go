package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/max31875/cmd/max31875/console"
)

var tempReadCmd = cli.Command{
	Name:    "temperature",
	Aliases: []string{"temp"},
	Usage:   "read the current temperature",
	Flags:   busFlags(),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		temp, err := dev.GetTemperature(ctx)
		if err != nil {
			return console.Exit(1, "error getting temperature read: %s", console.Red(err))
		}
		console.Printf("%s %s°C\n", console.PictoThermometer, console.White(temp))
		return nil
	},
}
