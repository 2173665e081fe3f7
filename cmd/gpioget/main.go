// SPDX-License-Identifier: MIT

// gpioget reads the values of a set of GPIO lines.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	linectl "github.com/linectl/go-linectl"
	"github.com/linectl/go-linectl/cmd/internal/tool"
)

func main() {
	app := &cli.App{
		Name:      "gpioget",
		Usage:     "read the values of a set of GPIO lines",
		ArgsUsage: "<chip> <offset>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "active-low",
				Aliases: []string{"l"},
				Usage:   "treat the lines as active low",
			},
			&cli.BoolFlag{
				Name:    "as-is",
				Aliases: []string{"a"},
				Usage:   "request the lines as-is rather than as inputs",
			},
			&cli.StringFlag{
				Name:    "bias",
				Aliases: []string{"b"},
				Usage:   "the line bias to apply (as-is, disabled, pull-up, pull-down)",
			},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}},
		},
		Action: get,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func get(ctx *cli.Context) error {
	tool.SetupLogger(ctx.Bool("verbose"))
	if ctx.Args().Len() < 2 {
		return errors.New("require a chip and at least one offset")
	}
	offsets, err := tool.ParseOffsets(ctx.Args().Tail())
	if err != nil {
		return err
	}
	bias, err := tool.ParseBias(ctx.String("bias"))
	if err != nil {
		return err
	}
	settings := linectl.LineSettings{
		Direction: linectl.LineDirectionInput,
		ActiveLow: ctx.Bool("active-low"),
		Bias:      bias,
	}
	if ctx.Bool("as-is") {
		settings.Direction = linectl.LineDirectionAsIs
	}
	c, err := linectl.NewChip(ctx.Args().First())
	if err != nil {
		return err
	}
	defer c.Close()

	cfg := linectl.NewLineConfig()
	if err = cfg.Add(offsets, settings); err != nil {
		return err
	}
	req, err := c.RequestLines(cfg, linectl.WithConsumer("gpioget"))
	if err != nil {
		return err
	}
	defer req.Close()

	logrus.WithField("offsets", offsets).Debug("requested lines")
	vv, err := req.Values()
	if err != nil {
		return err
	}
	ss := make([]string, len(vv))
	for i, v := range vv {
		ss[i] = fmt.Sprintf("%d", v)
	}
	fmt.Println(strings.Join(ss, " "))
	return nil
}
