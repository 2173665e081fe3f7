// SPDX-License-Identifier: MIT

package linectl

import (
	"time"

	"github.com/pkg/errors"

	"github.com/linectl/go-linectl/uapi"
)

// LineDirection indicates the direction of a line.
type LineDirection int

const (
	// LineDirectionAsIs leaves the line direction unchanged.
	LineDirectionAsIs LineDirection = iota

	// LineDirectionInput requests the line as an input.
	LineDirectionInput

	// LineDirectionOutput requests the line as an output.
	LineDirectionOutput
)

// LineEdge indicates the edges detected on a line.
type LineEdge int

const (
	// LineEdgeNone indicates edge detection is disabled.
	LineEdgeNone LineEdge = iota

	// LineEdgeRising indicates rising edge detection is enabled.
	//
	// A rising edge is a transition from the inactive to the active state.
	LineEdgeRising

	// LineEdgeFalling indicates falling edge detection is enabled.
	//
	// A falling edge is a transition from the active to the inactive state.
	LineEdgeFalling

	// LineEdgeBoth indicates both rising and falling edge detection are
	// enabled.
	LineEdgeBoth = LineEdgeRising | LineEdgeFalling
)

// LineBias indicates the bias applied to a line.
type LineBias int

const (
	// LineBiasAsIs leaves the line bias unchanged.
	LineBiasAsIs LineBias = iota

	// LineBiasDisabled disables the internal line bias.
	LineBiasDisabled

	// LineBiasPullUp enables the internal pull-up.
	LineBiasPullUp

	// LineBiasPullDown enables the internal pull-down.
	LineBiasPullDown
)

// LineDrive indicates the drive of an output line.
type LineDrive int

const (
	// LineDrivePushPull indicates the line is driven in both directions.
	LineDrivePushPull LineDrive = iota

	// LineDriveOpenDrain indicates the line is an open drain output.
	LineDriveOpenDrain

	// LineDriveOpenSource indicates the line is an open source output.
	LineDriveOpenSource
)

// LineEventClock indicates the source clock used to timestamp edge events.
type LineEventClock int

const (
	// LineEventClockMonotonic indicates the source clock is
	// CLOCK_MONOTONIC.
	LineEventClockMonotonic LineEventClock = iota

	// LineEventClockRealtime indicates the source clock is CLOCK_REALTIME.
	LineEventClockRealtime

	// LineEventClockHTE indicates the source clock is the hardware
	// timestamp engine.
	LineEventClockHTE
)

// Line values, as passed to and returned by value accessors.
const (
	// LineInactive is the logical low value.
	LineInactive int = iota

	// LineActive is the logical high value.
	LineActive
)

// LineSettings contains the configuration of a single line.
//
// The zero value leaves the line as-is, with edge detection disabled.
type LineSettings struct {
	// The direction of the line.
	Direction LineDirection

	// The edges detected on the line.
	//
	// Edge detection cannot be combined with output direction.
	EdgeDetection LineEdge

	// The bias applied to the line.
	Bias LineBias

	// The drive of the line.
	//
	// Only applies to outputs.
	Drive LineDrive

	// A flag indicating if the line is active low.
	ActiveLow bool

	// The minimum period a level must be stable for an edge to be
	// reported. Zero disables debouncing.
	//
	// Requires edge detection to be enabled.
	DebouncePeriod time.Duration

	// The source clock for edge event timestamps.
	EventClock LineEventClock

	// The initial value applied to the line.
	//
	// Only applies to outputs.
	OutputValue int
}

// validate checks the per-line invariants.
func (ls LineSettings) validate() error {
	if ls.EdgeDetection != LineEdgeNone && ls.Direction == LineDirectionOutput {
		return errors.Wrap(ErrInvalidConfig, "edge detection requires input direction")
	}
	if ls.DebouncePeriod < 0 {
		return errors.Wrap(ErrInvalidConfig, "negative debounce period")
	}
	if ls.DebouncePeriod > 0 && ls.EdgeDetection == LineEdgeNone {
		return errors.Wrap(ErrInvalidConfig, "debounce requires edge detection")
	}
	return nil
}

// toFlags returns the kernel flags equivalent to the settings.
//
// The debounce period and output value are carried in attributes, not flags.
func (ls LineSettings) toFlags() uapi.LineFlag {
	var flags uapi.LineFlag

	if ls.ActiveLow {
		flags |= uapi.LineFlagActiveLow
	}

	if ls.EdgeDetection != LineEdgeNone {
		// edge detection implies input
		flags |= uapi.LineFlagInput
		if ls.EdgeDetection&LineEdgeRising != 0 {
			flags |= uapi.LineFlagEdgeRising
		}
		if ls.EdgeDetection&LineEdgeFalling != 0 {
			flags |= uapi.LineFlagEdgeFalling
		}
		switch ls.EventClock {
		case LineEventClockRealtime:
			flags |= uapi.LineFlagEventClockRealtime
		case LineEventClockHTE:
			flags |= uapi.LineFlagEventClockHTE
		}
	} else {
		switch ls.Direction {
		case LineDirectionInput:
			flags |= uapi.LineFlagInput
		case LineDirectionOutput:
			flags |= uapi.LineFlagOutput
		}
	}

	if flags&uapi.LineFlagOutput != 0 {
		switch ls.Drive {
		case LineDriveOpenDrain:
			flags |= uapi.LineFlagOpenDrain
		case LineDriveOpenSource:
			flags |= uapi.LineFlagOpenSource
		}
	}

	switch ls.Bias {
	case LineBiasDisabled:
		flags |= uapi.LineFlagBiasDisabled
	case LineBiasPullUp:
		flags |= uapi.LineFlagBiasPullUp
	case LineBiasPullDown:
		flags |= uapi.LineFlagBiasPullDown
	}

	return flags
}

// isOutput returns true if the settings request the line as an output.
func (ls LineSettings) isOutput() bool {
	return ls.Direction == LineDirectionOutput && ls.EdgeDetection == LineEdgeNone
}

// LineInfo contains a snapshot of the publicly available information about a
// line.
type LineInfo struct {
	// The line offset within the chip.
	Offset int

	// The system name for the line.
	Name string

	// A string identifying the requester of the line, if requested.
	Consumer string

	// The line is in use.
	Used bool

	// The configuration of the line.
	Config LineSettings
}

func newLineInfo(li uapi.LineInfo) LineInfo {
	return LineInfo{
		Offset:   int(li.Offset),
		Name:     uapi.BytesToString(li.Name[:]),
		Consumer: uapi.BytesToString(li.Consumer[:]),
		Used:     li.Flags.IsUsed(),
		Config:   newLineSettings(li),
	}
}

func newLineSettings(li uapi.LineInfo) LineSettings {
	ls := LineSettings{ActiveLow: li.Flags.IsActiveLow()}

	if li.Flags.IsOutput() {
		ls.Direction = LineDirectionOutput
		if li.Flags.IsOpenDrain() {
			ls.Drive = LineDriveOpenDrain
		} else if li.Flags.IsOpenSource() {
			ls.Drive = LineDriveOpenSource
		}
	} else if li.Flags.IsInput() {
		ls.Direction = LineDirectionInput
	}

	if li.Flags.IsRisingEdge() {
		ls.EdgeDetection |= LineEdgeRising
	}
	if li.Flags.IsFallingEdge() {
		ls.EdgeDetection |= LineEdgeFalling
	}

	if li.Flags.IsBiasPullUp() {
		ls.Bias = LineBiasPullUp
	} else if li.Flags.IsBiasPullDown() {
		ls.Bias = LineBiasPullDown
	} else if li.Flags.IsBiasDisabled() {
		ls.Bias = LineBiasDisabled
	}

	if li.Flags&uapi.LineFlagEventClockRealtime != 0 {
		ls.EventClock = LineEventClockRealtime
	} else if li.Flags&uapi.LineFlagEventClockHTE != 0 {
		ls.EventClock = LineEventClockHTE
	}

	for i := 0; i < int(li.NumAttrs); i++ {
		if li.Attrs[i].ID == uapi.LineAttributeIDDebounce {
			ls.DebouncePeriod = time.Duration(li.Attrs[i].Value32()) * time.Microsecond
		}
	}
	return ls
}
