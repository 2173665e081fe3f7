// SPDX-License-Identifier: MIT

// gpionotify watches a set of GPIO lines for state changes made by any
// process and prints them as they arrive.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	linectl "github.com/linectl/go-linectl"
	"github.com/linectl/go-linectl/cmd/internal/tool"
)

func main() {
	app := &cli.App{
		Name:      "gpionotify",
		Usage:     "watch GPIO lines for requests, releases and reconfigurations",
		ArgsUsage: "<chip> <offset>...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "num-events",
				Aliases: []string{"n"},
				Usage:   "exit after processing this many events (0 means forever)",
			},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}},
		},
		Action: notify,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func notify(ctx *cli.Context) error {
	tool.SetupLogger(ctx.Bool("verbose"))
	if ctx.Args().Len() < 2 {
		return errors.New("require a chip and at least one offset")
	}
	offsets, err := tool.ParseOffsets(ctx.Args().Tail())
	if err != nil {
		return err
	}
	c, err := linectl.NewChip(ctx.Args().First())
	if err != nil {
		return err
	}
	defer c.Close()

	for _, o := range offsets {
		info, err := c.WatchLineInfo(o)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"offset": o,
			"used":   info.Used,
		}).Debug("watching line")
	}

	remaining := ctx.Int("num-events")
	for {
		if _, err := c.WaitInfoEvent(-1); err != nil {
			return err
		}
		evt, err := c.ReadInfoEvent()
		if err != nil {
			return err
		}
		change := "requested"
		switch evt.Type {
		case linectl.LineReleased:
			change = "released"
		case linectl.LineReconfigured:
			change = "reconfigured"
		}
		fmt.Printf("%d.%09d line %d %s\n",
			evt.Timestamp/time.Second, evt.Timestamp%time.Second,
			evt.Info.Offset, change)
		if remaining > 0 {
			remaining--
			if remaining == 0 {
				return nil
			}
		}
	}
}
