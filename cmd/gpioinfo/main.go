// SPDX-License-Identifier: MIT

// gpioinfo prints information about the lines of GPIO chips.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	linectl "github.com/linectl/go-linectl"
	"github.com/linectl/go-linectl/cmd/internal/tool"
)

func main() {
	app := &cli.App{
		Name:      "gpioinfo",
		Usage:     "print information about GPIO lines",
		ArgsUsage: "[chip]...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}},
		},
		Action: info,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func info(ctx *cli.Context) error {
	tool.SetupLogger(ctx.Bool("verbose"))
	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		paths = linectl.Chips()
	}
	for _, path := range paths {
		if err := chipInfo(path); err != nil {
			return err
		}
	}
	return nil
}

func chipInfo(path string) error {
	c, err := linectl.NewChip(path)
	if err != nil {
		return err
	}
	defer c.Close()
	fmt.Printf("%s - %d lines:\n", c.Name, c.Lines())
	for o := 0; o < c.Lines(); o++ {
		li, err := c.LineInfo(o)
		if err != nil {
			return err
		}
		fmt.Printf("\tline %3d:%s\n", o, lineAttrs(li))
	}
	return nil
}

func lineAttrs(li linectl.LineInfo) string {
	attrs := []string{}
	name := "unnamed"
	if li.Name != "" {
		name = fmt.Sprintf("%q", li.Name)
	}
	if li.Used {
		consumer := "kernel"
		if li.Consumer != "" {
			consumer = fmt.Sprintf("%q", li.Consumer)
		}
		attrs = append(attrs, "used by "+consumer)
	}
	switch li.Config.Direction {
	case linectl.LineDirectionInput:
		attrs = append(attrs, "input")
	case linectl.LineDirectionOutput:
		attrs = append(attrs, "output")
	}
	if li.Config.ActiveLow {
		attrs = append(attrs, "active-low")
	}
	switch li.Config.Bias {
	case linectl.LineBiasDisabled:
		attrs = append(attrs, "bias-disabled")
	case linectl.LineBiasPullUp:
		attrs = append(attrs, "pull-up")
	case linectl.LineBiasPullDown:
		attrs = append(attrs, "pull-down")
	}
	switch li.Config.Drive {
	case linectl.LineDriveOpenDrain:
		attrs = append(attrs, "open-drain")
	case linectl.LineDriveOpenSource:
		attrs = append(attrs, "open-source")
	}
	switch li.Config.EdgeDetection {
	case linectl.LineEdgeRising:
		attrs = append(attrs, "rising-edges")
	case linectl.LineEdgeFalling:
		attrs = append(attrs, "falling-edges")
	case linectl.LineEdgeBoth:
		attrs = append(attrs, "both-edges")
	}
	if li.Config.DebouncePeriod > time.Duration(0) {
		attrs = append(attrs, fmt.Sprintf("debounce=%s", li.Config.DebouncePeriod))
	}
	return " " + name + " " + strings.Join(attrs, " ")
}
