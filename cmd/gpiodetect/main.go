// SPDX-License-Identifier: MIT

// gpiodetect lists the GPIO chips present on the system, their labels and
// number of lines.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	linectl "github.com/linectl/go-linectl"
	"github.com/linectl/go-linectl/cmd/internal/tool"
)

func main() {
	app := &cli.App{
		Name:  "gpiodetect",
		Usage: "list all GPIO chips, print their labels and number of GPIO lines",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"V"}},
		},
		Action: detect,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func detect(ctx *cli.Context) error {
	tool.SetupLogger(ctx.Bool("verbose"))
	for _, path := range linectl.Chips() {
		c, err := linectl.NewChip(path)
		if err != nil {
			logrus.WithField("chip", path).Warn(err)
			continue
		}
		fmt.Printf("%s [%s] (%d lines)\n", c.Name, c.Label, c.Lines())
		c.Close()
	}
	return nil
}
