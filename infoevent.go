// SPDX-License-Identifier: MIT

package linectl

import (
	"time"
)

// InfoEventType indicates the type of change to the state of a line.
type InfoEventType int

const (
	_ InfoEventType = iota

	// LineRequested indicates the line has been requested.
	LineRequested

	// LineReleased indicates the line has been released.
	LineReleased

	// LineReconfigured indicates the line configuration has changed.
	LineReconfigured
)

// InfoEvent represents a change in the state of a watched line, caused by
// this or any other process.
//
// Info events are produced via the chip's own handle and are independent of
// any request.
type InfoEvent struct {
	// The type of state change.
	Type InfoEventType

	// The time the change occurred, as nanoseconds on CLOCK_MONOTONIC.
	Timestamp time.Duration

	// A snapshot of the line info at the time of the change.
	Info LineInfo
}
