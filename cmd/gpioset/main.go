// SPDX-License-Identifier: MIT

// gpioset sets the values of a set of GPIO lines and holds them until
// terminated.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	linectl "github.com/linectl/go-linectl"
	"github.com/linectl/go-linectl/cmd/internal/tool"
)

func main() {
	app := &cli.App{
		Name:      "gpioset",
		Usage:     "set the values of a set of GPIO lines",
		ArgsUsage: "<chip> <offset>=<value>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "active-low",
				Aliases: []string{"l"},
				Usage:   "treat the lines as active low",
			},
			&cli.StringFlag{
				Name:    "bias",
				Aliases: []string{"b"},
				Usage:   "the line bias to apply (as-is, disabled, pull-up, pull-down)",
			},
			&cli.StringFlag{
				Name:    "drive",
				Aliases: []string{"d"},
				Usage:   "the line drive to apply (push-pull, open-drain, open-source)",
			},
			&cli.DurationFlag{
				Name:    "hold-period",
				Aliases: []string{"p"},
				Usage:   "the period to hold the lines before exiting (0 holds until interrupted)",
			},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}},
		},
		Action: set,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func set(ctx *cli.Context) error {
	tool.SetupLogger(ctx.Bool("verbose"))
	if ctx.Args().Len() < 2 {
		return errors.New("require a chip and at least one <offset>=<value> pair")
	}
	offsets, values, err := tool.ParseLineValues(ctx.Args().Tail())
	if err != nil {
		return err
	}
	bias, err := tool.ParseBias(ctx.String("bias"))
	if err != nil {
		return err
	}
	drive, err := tool.ParseDrive(ctx.String("drive"))
	if err != nil {
		return err
	}
	c, err := linectl.NewChip(ctx.Args().First())
	if err != nil {
		return err
	}
	defer c.Close()

	settings := linectl.LineSettings{
		Direction: linectl.LineDirectionOutput,
		ActiveLow: ctx.Bool("active-low"),
		Bias:      bias,
		Drive:     drive,
	}
	cfg := linectl.NewLineConfig()
	for i, o := range offsets {
		settings.OutputValue = values[i]
		if err = cfg.AddLine(o, settings); err != nil {
			return err
		}
	}
	req, err := c.RequestLines(cfg, linectl.WithConsumer("gpioset"))
	if err != nil {
		return err
	}
	defer req.Close()
	logrus.WithField("offsets", offsets).Debug("lines driven")

	if period := ctx.Duration("hold-period"); period > 0 {
		time.Sleep(period)
		return nil
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	sig := <-quit
	logrus.WithField("signal", sig).Debug("releasing lines")
	return nil
}
