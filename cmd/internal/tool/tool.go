// SPDX-License-Identifier: MIT

// Package tool contains the argument parsing shared by the linectl command
// line tools.
package tool

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	linectl "github.com/linectl/go-linectl"
)

// SetupLogger configures the standard logger for a tool.
func SetupLogger(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// ParseOffsets converts the args to line offsets.
func ParseOffsets(args []string) ([]int, error) {
	oo := make([]int, 0, len(args))
	for _, a := range args {
		o, err := strconv.ParseUint(a, 10, 32)
		if err != nil {
			return nil, errors.Errorf("can't parse offset '%s'", a)
		}
		oo = append(oo, int(o))
	}
	return oo, nil
}

// ParseLineValues converts args of the form <offset>=<value> to parallel
// offset and value arrays.
func ParseLineValues(args []string) ([]int, []int, error) {
	oo := make([]int, 0, len(args))
	vv := make([]int, 0, len(args))
	for _, a := range args {
		fields := strings.Split(a, "=")
		if len(fields) != 2 {
			return nil, nil, errors.Errorf("invalid <offset>=<value> pair '%s'", a)
		}
		o, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, nil, errors.Errorf("can't parse offset '%s'", a)
		}
		v, err := parseValue(fields[1])
		if err != nil {
			return nil, nil, err
		}
		oo = append(oo, int(o))
		vv = append(vv, v)
	}
	return oo, vv, nil
}

func parseValue(s string) (int, error) {
	switch strings.ToLower(s) {
	case "0", "inactive", "off", "false":
		return linectl.LineInactive, nil
	case "1", "active", "on", "true":
		return linectl.LineActive, nil
	}
	return 0, errors.Errorf("can't parse value '%s'", s)
}

// ParseBias converts a bias flag value to the equivalent line setting.
func ParseBias(s string) (linectl.LineBias, error) {
	switch s {
	case "", "as-is":
		return linectl.LineBiasAsIs, nil
	case "disabled":
		return linectl.LineBiasDisabled, nil
	case "pull-up":
		return linectl.LineBiasPullUp, nil
	case "pull-down":
		return linectl.LineBiasPullDown, nil
	}
	return 0, errors.Errorf("unknown bias '%s'", s)
}

// ParseDrive converts a drive flag value to the equivalent line setting.
func ParseDrive(s string) (linectl.LineDrive, error) {
	switch s {
	case "", "push-pull":
		return linectl.LineDrivePushPull, nil
	case "open-drain":
		return linectl.LineDriveOpenDrain, nil
	case "open-source":
		return linectl.LineDriveOpenSource, nil
	}
	return 0, errors.Errorf("unknown drive '%s'", s)
}

// ParseEdges converts an edges flag value to the equivalent line setting.
func ParseEdges(s string) (linectl.LineEdge, error) {
	switch s {
	case "rising":
		return linectl.LineEdgeRising, nil
	case "falling":
		return linectl.LineEdgeFalling, nil
	case "", "both":
		return linectl.LineEdgeBoth, nil
	}
	return 0, errors.Errorf("unknown edges '%s'", s)
}
