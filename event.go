// SPDX-License-Identifier: MIT

package linectl

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/linectl/go-linectl/uapi"
)

// EdgeType indicates the type of edge detected on a line.
type EdgeType int

const (
	_ EdgeType = iota

	// EdgeRising indicates a transition from the inactive to the active
	// state.
	EdgeRising

	// EdgeFalling indicates a transition from the active to the inactive
	// state.
	EdgeFalling
)

// EdgeEvent represents an edge detected on a requested line.
//
// An event is only meaningful relative to the request that produced it.
type EdgeEvent struct {
	// The type of edge detected.
	Type EdgeType

	// The time the edge was detected, as nanoseconds on the event clock
	// configured for the line.
	Timestamp time.Duration

	// The offset of the line on which the edge was detected.
	Offset int

	// The sequence number of the event across all lines in the request.
	//
	// Strictly increasing for the lifetime of the request.
	Seqno uint32

	// The sequence number of the event on this line.
	//
	// Strictly increasing for the lifetime of the request.
	LineSeqno uint32
}

const (
	// DefaultEdgeEventBufferCapacity is the capacity of an EdgeEventBuffer
	// created without an explicit capacity.
	DefaultEdgeEventBufferCapacity = 64

	// MaxEdgeEventBufferCapacity is the largest usable buffer capacity -
	// the most events the kernel will queue on one request.
	MaxEdgeEventBufferCapacity = 16 * uapi.LinesMax
)

// EdgeEventBuffer is a fixed capacity, reusable container for edge events.
//
// Each read overwrites the contents of the buffer, so events must be
// consumed before the buffer is reused.
type EdgeEventBuffer struct {
	// raw read buffer, sized to hold capacity kernel records.
	raw []byte

	// decoded kernel records, backing for events.
	uevents []uapi.LineEvent

	// the events from the most recent read.
	events []EdgeEvent
}

// NewEdgeEventBuffer creates a buffer holding up to capacity edge events.
//
// A capacity of zero or less selects DefaultEdgeEventBufferCapacity, and
// capacities beyond MaxEdgeEventBufferCapacity are clamped to it.
func NewEdgeEventBuffer(capacity int) *EdgeEventBuffer {
	if capacity <= 0 {
		capacity = DefaultEdgeEventBufferCapacity
	}
	if capacity > MaxEdgeEventBufferCapacity {
		capacity = MaxEdgeEventBufferCapacity
	}
	return &EdgeEventBuffer{
		raw:     make([]byte, capacity*uapi.LineEventSize),
		uevents: make([]uapi.LineEvent, capacity),
		events:  make([]EdgeEvent, 0, capacity),
	}
}

// Capacity returns the maximum number of events the buffer can hold.
func (eb *EdgeEventBuffer) Capacity() int {
	return len(eb.uevents)
}

// Len returns the number of events read into the buffer by the most recent
// read.
func (eb *EdgeEventBuffer) Len() int {
	return len(eb.events)
}

// Events returns the events from the most recent read, in kernel delivery
// order.
//
// The returned slice is only valid until the next read into the buffer.
func (eb *EdgeEventBuffer) Events() []EdgeEvent {
	return eb.events
}

// read performs one batched read of up to max events from the fd,
// overwriting the buffer contents.
//
// A max of zero or less means the buffer capacity.
func (eb *EdgeEventBuffer) read(fd int, max int) (int, error) {
	n := eb.Capacity()
	if max > 0 && max < n {
		n = max
	}
	eb.events = eb.events[:0]
	num, err := uapi.ReadLineEvents(uintptr(fd), eb.raw[:n*uapi.LineEventSize], eb.uevents[:n])
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	for _, ue := range eb.uevents[:num] {
		eb.events = append(eb.events, EdgeEvent{
			Type:      EdgeType(ue.ID),
			Timestamp: time.Duration(ue.Timestamp),
			Offset:    int(ue.Offset),
			Seqno:     ue.Seqno,
			LineSeqno: ue.LineSeqno,
		})
	}
	return num, nil
}
