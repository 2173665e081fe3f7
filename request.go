// SPDX-License-Identifier: MIT

package linectl

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/linectl/go-linectl/uapi"
)

// Request represents a kernel reservation of a set of lines on one chip.
//
// The request owns a single kernel handle shared by all of its lines. The
// lines are views into that handle, addressed by offset - none of them can
// release it individually. The request remains valid if the chip it was
// created from is closed.
//
// A Request is not safe for concurrent use by multiple goroutines - callers
// requiring that must serialize externally.
type Request struct {
	// the name of the chip the lines were requested from.
	chip string

	// the distinct offsets the request was built with, in submission order.
	offsets []int

	// the shared handle for the requested lines.
	fd int

	// mu covers all that follow - those above are immutable.
	mu sync.Mutex

	// the lines currently configured as outputs, by index into offsets.
	outputs uapi.LineBitmap

	// indicates the request has been released.
	closed bool
}

// RequestLines reserves the set of lines described by the configuration in a
// single kernel request.
//
// Offsets are deduplicated preserving first-seen order, the configuration is
// validated as a whole, and lines sharing identical settings are coalesced
// into shared attribute entries. The request either fully succeeds or fully
// fails - there is no partially applied state.
//
// The available options are [WithConsumer] and [WithEventBufferSize].
func (c *Chip) RequestLines(cfg *LineConfig, options ...RequestOption) (*Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	ro := requestOptions{consumer: c.options.consumer}
	for _, option := range options {
		option.applyRequestOption(&ro)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	offsets := cfg.Offsets()
	for _, o := range offsets {
		if o < 0 || o >= c.lines {
			return nil, ErrInvalidOffset
		}
	}
	ucfg, err := cfg.toUapi(offsets)
	if err != nil {
		return nil, err
	}
	lr := uapi.LineRequest{
		Lines:           uint32(len(offsets)),
		Config:          ucfg,
		EventBufferSize: uint32(ro.eventBufferSize),
	}
	copy(lr.Consumer[:len(lr.Consumer)-1], ro.consumer)
	for i, o := range offsets {
		lr.Offsets[i] = uint32(o)
	}
	if err = uapi.GetLine(uintptr(c.fd), &lr); err != nil {
		return nil, err
	}
	// so edge event reads only drain what is already queued
	unix.SetNonblock(int(lr.Fd), true)
	r := Request{
		chip:    c.Name,
		offsets: offsets,
		fd:      int(lr.Fd),
		outputs: outputBitmap(cfg, offsets),
	}
	return &r, nil
}

func outputBitmap(cfg *LineConfig, offsets []int) uapi.LineBitmap {
	var outputs uapi.LineBitmap
	for i, o := range offsets {
		if cfg.lineSettings(o).isOutput() {
			outputs = outputs.Set(i, 1)
		}
	}
	return outputs
}

// Chip returns the name of the chip the lines were requested from.
func (r *Request) Chip() string {
	return r.chip
}

// Offsets returns the offsets of the lines in the request, in the order
// fixed at submission time.
func (r *Request) Offsets() []int {
	return append([]int(nil), r.offsets...)
}

// index returns the position of the offset within the request, or -1 if the
// offset is not part of the request.
func (r *Request) index(offset int) int {
	for i, o := range r.offsets {
		if o == offset {
			return i
		}
	}
	return -1
}

// Value returns the current value (active state) of one line.
//
// All lines in the request are read in a single kernel call and the
// requested line projected out.
func (r *Request) Value(offset int) (int, error) {
	vv, err := r.Values(offset)
	if err != nil {
		return 0, err
	}
	return vv[0], nil
}

// Values returns the current values (active state) of the given lines, or
// of all lines in the request, in submission order, if none are given.
//
// All lines in the request are read in a single kernel call regardless of
// the subset requested.
func (r *Request) Values(offsets ...int) ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	if len(offsets) == 0 {
		offsets = r.offsets
	}
	idx := make([]int, len(offsets))
	for i, o := range offsets {
		idx[i] = r.index(o)
		if idx[i] == -1 {
			return nil, errors.Wrapf(ErrInvalidOffset, "line %d not in request", o)
		}
	}
	lv := uapi.LineValues{Mask: uapi.NewLineBitMask(len(r.offsets))}
	if err := uapi.GetLineValues(uintptr(r.fd), &lv); err != nil {
		return nil, err
	}
	vv := make([]int, len(offsets))
	for i, n := range idx {
		vv[i] = lv.Get(n)
	}
	return vv, nil
}

// SetValue sets the current value (active state) of one line.
//
// Only valid for lines configured as outputs.
func (r *Request) SetValue(offset, value int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	n := r.index(offset)
	if n == -1 {
		return errors.Wrapf(ErrInvalidOffset, "line %d not in request", offset)
	}
	if r.outputs.Get(n) == 0 {
		return errors.Wrapf(ErrInvalidConfig, "line %d is not an output", offset)
	}
	lv := uapi.LineValues{
		Mask: uapi.LineBitmap(0).Set(n, 1),
		Bits: uapi.LineBitmap(0).Set(n, value),
	}
	return uapi.SetLineValues(uintptr(r.fd), lv)
}

// SetValues sets the current values (active state) of all lines in the
// request in a single kernel call.
//
// The values are applied positionally to the offsets in submission order,
// and must cover the request exactly. Only valid if all lines in the request
// are configured as outputs.
func (r *Request) SetValues(values []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if len(values) != len(r.offsets) {
		return errors.Wrapf(ErrInvalidConfig,
			"%d values for %d lines", len(values), len(r.offsets))
	}
	mask := uapi.NewLineBitMask(len(r.offsets))
	if r.outputs != mask {
		for i, o := range r.offsets {
			if r.outputs.Get(i) == 0 {
				return errors.Wrapf(ErrInvalidConfig, "line %d is not an output", o)
			}
		}
	}
	lv := uapi.LineValues{
		Mask: mask,
		Bits: uapi.NewLineBitmap(values...),
	}
	return uapi.SetLineValues(uintptr(r.fd), lv)
}

// Reconfigure updates the configuration of the request in place, reusing
// the same kernel handle.
//
// The deduplicated offsets of the new configuration must exactly match the
// set of offsets the request was built with, though not necessarily in the
// same order - the request's offset order is fixed at submission time, only
// the settings change. The update either fully succeeds or fully fails.
func (r *Request) Reconfigure(cfg *LineConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	offsets := cfg.Offsets()
	if !sameOffsets(offsets, r.offsets) {
		return errors.Wrap(ErrInvalidConfig, "offsets do not match request")
	}
	// masks are by index into the request's offset order
	ucfg, err := cfg.toUapi(r.offsets)
	if err != nil {
		return err
	}
	if err = uapi.SetLineConfig(uintptr(r.fd), &ucfg); err != nil {
		return err
	}
	r.outputs = outputBitmap(cfg, r.offsets)
	return nil
}

// sameOffsets returns true if a and b contain the same offsets, in any
// order.
//
// Both are assumed to contain no duplicates.
func sameOffsets(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for _, o := range a {
		found := false
		for _, oo := range b {
			if o == oo {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Close releases the kernel reservation held by the request.
//
// The requested lines return to being unused, as observed by LineInfo.
// Closing an already closed request is a no-op, so cleanup paths may close
// unconditionally. All other operations on a closed request fail with
// ErrClosed.
func (r *Request) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return unix.Close(r.fd)
}

// WaitEdgeEvent waits until an edge event is available to read from the
// request, or the timeout elapses.
//
// A zero timeout polls, while a negative timeout blocks indefinitely.
// Returns true if an event is available.
//
// Only meaningful for requests with edge detection enabled on at least one
// line.
func (r *Request) WaitEdgeEvent(timeout time.Duration) (bool, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false, ErrClosed
	}
	fd := r.fd
	r.mu.Unlock()
	return waitReadable(fd, timeout)
}

// ReadEdgeEvents reads a batch of edge events from the request into the
// buffer, overwriting its previous contents, and returns the number of
// events read.
//
// At most max events are read, with max <= 0 meaning the buffer capacity.
// The read is performed in a single kernel call. If no events are pending
// the read returns 0 without blocking, so callers are expected to pair this
// with WaitEdgeEvent.
//
// The global and per-line sequence numbers stamped on the events increase
// strictly monotonically for the lifetime of the request.
func (r *Request) ReadEdgeEvents(eb *EdgeEventBuffer, max int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrClosed
	}
	return eb.read(r.fd, max)
}

// waitReadable waits until the fd is readable, or the timeout elapses.
//
// A zero timeout polls, while a negative timeout blocks indefinitely.
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}
	for {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Ppoll(pfd, ts, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n == 1, nil
	}
}
