// SPDX-License-Identifier: MIT

// gpiomon waits for edge events on a set of GPIO lines and prints them as
// they arrive.
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
		Name:      "gpiomon",
		Usage:     "wait for edge events on GPIO lines and print them",
		ArgsUsage: "<chip> <offset>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "edges",
				Aliases: []string{"e"},
				Value:   "both",
				Usage:   "the edges to detect (rising, falling, both)",
			},
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
			&cli.DurationFlag{
				Name:    "debounce-period",
				Aliases: []string{"p"},
				Usage:   "the debounce period to apply to the lines",
			},
			&cli.IntFlag{
				Name:    "num-events",
				Aliases: []string{"n"},
				Usage:   "exit after processing this many events (0 means forever)",
			},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}},
		},
		Action: monitor,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func monitor(ctx *cli.Context) error {
	tool.SetupLogger(ctx.Bool("verbose"))
	if ctx.Args().Len() < 2 {
		return errors.New("require a chip and at least one offset")
	}
	offsets, err := tool.ParseOffsets(ctx.Args().Tail())
	if err != nil {
		return err
	}
	edges, err := tool.ParseEdges(ctx.String("edges"))
	if err != nil {
		return err
	}
	bias, err := tool.ParseBias(ctx.String("bias"))
	if err != nil {
		return err
	}
	c, err := linectl.NewChip(ctx.Args().First())
	if err != nil {
		return err
	}
	defer c.Close()

	cfg := linectl.NewLineConfig()
	err = cfg.Add(offsets, linectl.LineSettings{
		EdgeDetection:  edges,
		ActiveLow:      ctx.Bool("active-low"),
		Bias:           bias,
		DebouncePeriod: ctx.Duration("debounce-period"),
	})
	if err != nil {
		return err
	}
	req, err := c.RequestLines(cfg, linectl.WithConsumer("gpiomon"))
	if err != nil {
		return err
	}
	defer req.Close()
	logrus.WithField("offsets", offsets).Debug("monitoring lines")

	buf := linectl.NewEdgeEventBuffer(0)
	remaining := ctx.Int("num-events")
	for {
		if _, err := req.WaitEdgeEvent(-1); err != nil {
			return err
		}
		n, err := req.ReadEdgeEvents(buf, remaining)
		if err != nil {
			return err
		}
		for _, e := range buf.Events()[:n] {
			edge := "rising"
			if e.Type == linectl.EdgeFalling {
				edge = "falling"
			}
			fmt.Printf("%d.%09d %-7s line %d seqno %d lseqno %d\n",
				e.Timestamp/time.Second, e.Timestamp%time.Second,
				edge, e.Offset, e.Seqno, e.LineSeqno)
		}
		if remaining > 0 {
			remaining -= n
			if remaining <= 0 {
				return nil
			}
		}
	}
}
