package main

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/max31875/cmd/max31875/console"
)

var registerCmd = cli.Command{
	Name:    "register",
	Aliases: []string{"reg"},
	Usage:   "raw register access",
	Subcommands: cli.Commands{
		&registerReadCmd,
		&registerWriteCmd,
	},
}

var registerReadCmd = cli.Command{
	Name:      "read",
	Usage:     "read bytes from a register",
	ArgsUsage: "<register> [length]",
	Flags:     busFlags(),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		if c.NArg() < 1 {
			return console.Exit(1, "usage: max31875 register read <register> [length]")
		}
		reg, err := strconv.ParseUint(c.Args().Get(0), 0, 8)
		if err != nil {
			return console.Exit(1, "invalid register: %s", console.Red(err))
		}
		length := 2
		if c.NArg() > 1 {
			length, err = strconv.Atoi(c.Args().Get(1))
			if err != nil || length < 1 {
				return console.Exit(1, "invalid length: %s", c.Args().Get(1))
			}
		}
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		data, err := dev.Read(ctx, byte(reg), length)
		if err != nil {
			return console.Exit(1, "read error: %s", console.Red(err))
		}
		console.Printf("%s\n", hex.Dump(data))
		return nil
	},
}

var registerWriteCmd = cli.Command{
	Name:      "write",
	Usage:     "write hex bytes to a register",
	ArgsUsage: "<register> <hex bytes>",
	Flags:     busFlags(),
	Action: func(c *cli.Context) error {
		ctx := console.SetVerbose(context.Background(), c.Bool("verbose"))
		if c.NArg() < 2 {
			return console.Exit(1, "usage: max31875 register write <register> <hex bytes>")
		}
		reg, err := strconv.ParseUint(c.Args().Get(0), 0, 8)
		if err != nil {
			return console.Exit(1, "invalid register: %s", console.Red(err))
		}
		data, err := hex.DecodeString(c.Args().Get(1))
		if err != nil {
			return console.Exit(1, "invalid data: %s", console.Red(err))
		}
		dev, done, err := openSensor(c)
		if err != nil {
			return err
		}
		defer done()
		err = dev.Write(ctx, byte(reg), data)
		if err != nil {
			return console.Exit(1, "write error: %s", console.Red(err))
		}
		console.PInfof(console.PictoPin, "wrote %d bytes to register %#x", len(data), reg)
		return nil
	},
}
