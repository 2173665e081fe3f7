// SPDX-License-Identifier: MIT

// Package uapi provides the Linux GPIO character device uAPI definitions
// used by linectl.
//
// Only the current generation of the uAPI is supported - the one with
// bit-packed line attributes and sequence numbered edge events.
package uapi

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// GetChipInfo returns the ChipInfo for the GPIO character device.
//
// The fd is an open GPIO character device.
func GetChipInfo(fd uintptr) (ChipInfo, error) {
	var ci ChipInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getChipInfoIoctl),
		uintptr(unsafe.Pointer(&ci)))
	if errno != 0 {
		return ci, errno
	}
	return ci, nil
}

// GetLineInfo returns the LineInfo for one line from the GPIO character
// device.
//
// The fd is an open GPIO character device.
// The offset is zero based.
func GetLineInfo(fd uintptr, offset int) (LineInfo, error) {
	var li LineInfo
	li.Offset = uint32(offset)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineInfoIoctl),
		uintptr(unsafe.Pointer(&li)))
	if errno != 0 {
		return LineInfo{}, errno
	}
	return li, nil
}

// GetLine requests a set of lines from the GPIO character device.
//
// The fd is an open GPIO character device.
// The lines must not already be requested.
// If successful, the fd for the reservation is returned in request.Fd.
func GetLine(fd uintptr, request *LineRequest) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineIoctl),
		uintptr(unsafe.Pointer(request)))
	if errno != 0 {
		return errno
	}
	return nil
}

// GetLineValues returns the values of a set of requested lines.
//
// The fd is a request fd, as returned by GetLine.
// Only the values selected by values.Mask are returned.
func GetLineValues(fd uintptr, values *LineValues) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(getLineValuesIoctl),
		uintptr(unsafe.Pointer(values)))
	if errno != 0 {
		return errno
	}
	return nil
}

// SetLineValues sets the values of a set of requested lines.
//
// The fd is a request fd, as returned by GetLine.
// Only the lines selected by values.Mask are set.
func SetLineValues(fd uintptr, values LineValues) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(setLineValuesIoctl),
		uintptr(unsafe.Pointer(&values)))
	if errno != 0 {
		return errno
	}
	return nil
}

// SetLineConfig updates the configuration of an existing request.
//
// The fd is a request fd, as returned by GetLine.
func SetLineConfig(fd uintptr, config *LineConfig) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(setLineConfigIoctl),
		uintptr(unsafe.Pointer(config)))
	if errno != 0 {
		return errno
	}
	return nil
}

// WatchLineInfo sets a watch on info of a line.
//
// A watch is set on the line indicated by info.Offset. If successful the
// current line info is returned in info.
func WatchLineInfo(fd uintptr, info *LineInfo) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(watchLineInfoIoctl),
		uintptr(unsafe.Pointer(info)))
	if errno != 0 {
		return errno
	}
	return nil
}

// UnwatchLineInfo clears a watch on info of a line.
func UnwatchLineInfo(fd uintptr, offset uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		fd,
		uintptr(unwatchLineInfoIoctl),
		uintptr(unsafe.Pointer(&offset)))
	if errno != 0 {
		return errno
	}
	return nil
}

// BytesToString is a helper function that converts strings stored in byte
// arrays, as returned by GetChipInfo and GetLineInfo, into strings.
func BytesToString(a []byte) string {
	n := bytes.IndexByte(a, 0)
	if n == -1 {
		return string(a)
	}
	return string(a[:n])
}

type fdReader int

func (fd fdReader) Read(b []byte) (int, error) {
	return unix.Read(int(fd), b[:])
}

// ReadLineEvent reads a single edge event from a request fd.
//
// This function does not block if the fd is in non-blocking mode, but
// should otherwise only be called when the fd is known to be ready to read.
func ReadLineEvent(fd uintptr) (LineEvent, error) {
	var le LineEvent
	err := binary.Read(fdReader(fd), nativeEndian, &le)
	return le, err
}

// ReadLineEvents reads a batch of edge events from a request fd with a
// single read.
//
// The buf provides the read buffer and must be sized a multiple of
// LineEventSize. At most len(events) events are returned.
func ReadLineEvents(fd uintptr, buf []byte, events []LineEvent) (int, error) {
	if max := len(events) * LineEventSize; len(buf) > max {
		buf = buf[:max]
	}
	n, err := unix.Read(int(fd), buf)
	if err != nil {
		return 0, err
	}
	num := n / LineEventSize
	for i := 0; i < num; i++ {
		r := bytes.NewReader(buf[i*LineEventSize : (i+1)*LineEventSize])
		if err = binary.Read(r, nativeEndian, &events[i]); err != nil {
			return i, err
		}
	}
	return num, nil
}

// ReadLineInfoChanged reads a line info changed event from a chip fd.
//
// This function does not block if the fd is in non-blocking mode, but
// should otherwise only be called when the fd is known to be ready to read.
func ReadLineInfoChanged(fd uintptr) (LineInfoChanged, error) {
	var lic LineInfoChanged
	err := binary.Read(fdReader(fd), nativeEndian, &lic)
	return lic, err
}

// IOCTL command codes
type ioctl uintptr

var (
	getChipInfoIoctl     ioctl
	getLineInfoIoctl     ioctl
	getLineIoctl         ioctl
	getLineValuesIoctl   ioctl
	setLineValuesIoctl   ioctl
	setLineConfigIoctl   ioctl
	watchLineInfoIoctl   ioctl
	unwatchLineInfoIoctl ioctl
)

// Size of name and consumer strings.
const nameSize = 32

const (
	// LinesMax is the maximum number of lines in one request.
	LinesMax = 64

	// LineNumAttrsMax is the maximum number of attributes in one request.
	LineNumAttrsMax = 10
)

// LineEventSize is the size of a LineEvent on the wire, in bytes.
var LineEventSize = int(unsafe.Sizeof(LineEvent{}))

func init() {
	// ioctls require struct sizes which are only available at runtime.
	var ci ChipInfo
	getChipInfoIoctl = ior(0xB4, 0x01, unsafe.Sizeof(ci))
	var li LineInfo
	getLineInfoIoctl = iorw(0xB4, 0x05, unsafe.Sizeof(li))
	watchLineInfoIoctl = iorw(0xB4, 0x06, unsafe.Sizeof(li))
	var lr LineRequest
	getLineIoctl = iorw(0xB4, 0x07, unsafe.Sizeof(lr))
	unwatchLineInfoIoctl = iorw(0xB4, 0x0C, unsafe.Sizeof(li.Offset))
	var lc LineConfig
	setLineConfigIoctl = iorw(0xB4, 0x0D, unsafe.Sizeof(lc))
	var lv LineValues
	getLineValuesIoctl = iorw(0xB4, 0x0E, unsafe.Sizeof(lv))
	setLineValuesIoctl = iorw(0xB4, 0x0F, unsafe.Sizeof(lv))
}

// ChipInfo contains the details of a GPIO chip.
type ChipInfo struct {
	// The system name of the device.
	Name [nameSize]byte

	// An identifying label added by the device driver.
	Label [nameSize]byte

	// The number of lines supported by this chip.
	Lines uint32
}

// LineInfo contains the details of a single line of a GPIO chip.
type LineInfo struct {
	// The system name for this line.
	Name [nameSize]byte

	// If requested, a string added by the requester to identify the
	// owner of the request.
	Consumer [nameSize]byte

	// The offset of the line within the chip.
	Offset uint32

	// The number of attributes.
	NumAttrs uint32

	// The line flags applied to this line.
	Flags LineFlag

	// The attributes applied to this line.
	Attrs [LineNumAttrsMax]LineAttribute

	// reserved for future use.
	Padding [4]uint32
}

// LineInfoChanged contains the details of a change to line info.
//
// This is returned via the chip fd in response to changes to watched lines.
type LineInfoChanged struct {
	// The updated info.
	Info LineInfo

	// The time the change occurred, in nanoseconds.
	Timestamp uint64

	// The type of change.
	Type ChangeType

	// reserved for future use.
	Padding [5]uint32
}

// ChangeType indicates the type of change that has occurred to a line.
type ChangeType uint32

const (
	_ ChangeType = iota

	// LineChangedRequested indicates the line has been requested.
	LineChangedRequested

	// LineChangedReleased indicates the line has been released.
	LineChangedReleased

	// LineChangedConfig indicates the line configuration has changed.
	LineChangedConfig
)

// LineFlag are the flags for a line.
type LineFlag uint64

const (
	// LineFlagUsed indicates that the line is in use.
	// It may have been requested by this process or another process,
	// or may be reserved by the kernel.
	//
	// The line cannot be requested until this flag is clear.
	LineFlagUsed LineFlag = 1 << iota

	// LineFlagActiveLow indicates that the line is active low.
	LineFlagActiveLow

	// LineFlagInput indicates that the line is an input.
	LineFlagInput

	// LineFlagOutput indicates that the line is an output.
	LineFlagOutput

	// LineFlagEdgeRising indicates that the line will detect rising edge
	// events.
	LineFlagEdgeRising

	// LineFlagEdgeFalling indicates that the line will detect falling edge
	// events.
	LineFlagEdgeFalling

	// LineFlagOpenDrain indicates that the line is an open drain output.
	LineFlagOpenDrain

	// LineFlagOpenSource indicates that the line is an open source output.
	LineFlagOpenSource

	// LineFlagBiasPullUp indicates that the internal line pull up is
	// enabled.
	LineFlagBiasPullUp

	// LineFlagBiasPullDown indicates that the internal line pull down is
	// enabled.
	LineFlagBiasPullDown

	// LineFlagBiasDisabled indicates that the internal line bias is
	// disabled.
	LineFlagBiasDisabled

	// LineFlagEventClockRealtime indicates that edge events are timestamped
	// using CLOCK_REALTIME.
	LineFlagEventClockRealtime

	// LineFlagEventClockHTE indicates that edge events are timestamped by
	// the hardware timestamp engine.
	LineFlagEventClockHTE
)

// IsAvailable returns true if the line is available to be requested.
func (f LineFlag) IsAvailable() bool {
	return f&LineFlagUsed == 0
}

// IsUsed returns true if the line is in use.
func (f LineFlag) IsUsed() bool {
	return f&LineFlagUsed != 0
}

// IsActiveLow returns true if the line is active low.
func (f LineFlag) IsActiveLow() bool {
	return f&LineFlagActiveLow != 0
}

// IsInput returns true if the line is an input.
func (f LineFlag) IsInput() bool {
	return f&LineFlagInput != 0
}

// IsOutput returns true if the line is an output.
func (f LineFlag) IsOutput() bool {
	return f&LineFlagOutput != 0
}

// IsRisingEdge returns true if the line detects rising edges.
func (f LineFlag) IsRisingEdge() bool {
	return f&LineFlagEdgeRising != 0
}

// IsFallingEdge returns true if the line detects falling edges.
func (f LineFlag) IsFallingEdge() bool {
	return f&LineFlagEdgeFalling != 0
}

// IsBothEdges returns true if the line detects both rising and falling
// edges.
func (f LineFlag) IsBothEdges() bool {
	return f.IsRisingEdge() && f.IsFallingEdge()
}

// IsOpenDrain returns true if the line is an open drain output.
func (f LineFlag) IsOpenDrain() bool {
	return f&LineFlagOpenDrain != 0
}

// IsOpenSource returns true if the line is an open source output.
func (f LineFlag) IsOpenSource() bool {
	return f&LineFlagOpenSource != 0
}

// IsBiasPullUp returns true if the line has pull-up enabled.
func (f LineFlag) IsBiasPullUp() bool {
	return f&LineFlagBiasPullUp != 0
}

// IsBiasPullDown returns true if the line has pull-down enabled.
func (f LineFlag) IsBiasPullDown() bool {
	return f&LineFlagBiasPullDown != 0
}

// IsBiasDisabled returns true if the line has bias disabled.
func (f LineFlag) IsBiasDisabled() bool {
	return f&LineFlagBiasDisabled != 0
}

// LineAttributeID identifies the type of a LineAttribute.
type LineAttributeID uint32

const (
	// LineAttributeIDFlags indicates the attribute contains LineFlag
	// flags.
	LineAttributeIDFlags LineAttributeID = iota + 1

	// LineAttributeIDOutputValues indicates the attribute contains line
	// output values.
	LineAttributeIDOutputValues

	// LineAttributeIDDebounce indicates the attribute contains a debounce
	// period.
	LineAttributeIDDebounce
)

// LineAttribute defines a configuration attribute for a line.
type LineAttribute struct {
	// The type of the attribute.
	ID LineAttributeID

	// pad to align the Value to 64bit.
	Padding [1]uint32

	// The value of the attribute.
	// A union in the kernel struct, so the interpretation depends on ID.
	Value [8]byte
}

// Encode32 stores a 32bit value in the attribute.
func (la *LineAttribute) Encode32(id LineAttributeID, value uint32) {
	la.ID = id
	nativeEndian.PutUint32(la.Value[:4], value)
}

// Encode64 stores a 64bit value in the attribute.
func (la *LineAttribute) Encode64(id LineAttributeID, value uint64) {
	la.ID = id
	nativeEndian.PutUint64(la.Value[:], value)
}

// Value32 returns the attribute value as a 32bit value.
func (la LineAttribute) Value32() uint32 {
	return nativeEndian.Uint32(la.Value[:4])
}

// Value64 returns the attribute value as a 64bit value.
func (la LineAttribute) Value64() uint64 {
	return nativeEndian.Uint64(la.Value[:])
}

// DebouncePeriod sets the debounce period attribute, in microseconds.
func (la *LineAttribute) DebouncePeriod(period uint32) {
	la.Encode32(LineAttributeIDDebounce, period)
}

// LineConfigAttribute associates a configuration attribute with a subset of
// the lines in a request.
type LineConfigAttribute struct {
	// The attribute to be applied.
	Attr LineAttribute

	// A bitmap identifying the lines the attribute applies to, by index
	// into the request offsets.
	Mask LineBitmap
}

// LineConfig contains the configuration of a set of lines.
type LineConfig struct {
	// The flags applied to all lines in the request, unless overridden by
	// an attribute.
	Flags LineFlag

	// The number of attributes in Attrs.
	NumAttrs uint32

	// reserved for future use.
	Padding [5]uint32

	// The attributes to be applied to subsets of the requested lines.
	Attrs [LineNumAttrsMax]LineConfigAttribute
}

// AddAttribute adds an attribute to the configuration.
//
// There is no check on the number of attributes - the caller is expected to
// stay within LineNumAttrsMax.
func (lc *LineConfig) AddAttribute(lca LineConfigAttribute) {
	lc.Attrs[lc.NumAttrs] = lca
	lc.NumAttrs++
}

// LineRequest is a request for control of a set of lines.
// The lines must all be on the same GPIO chip.
type LineRequest struct {
	// The lines to be requested.
	Offsets [LinesMax]uint32

	// The string identifying the requester to be applied to the lines.
	Consumer [nameSize]byte

	// The configuration for the requested lines
	Config LineConfig

	// The number of lines being requested.
	Lines uint32

	// A suggested minimum number of events the kernel should buffer.
	EventBufferSize uint32

	// reserved for future use.
	Padding [5]uint32

	// The file handle for the requested lines.
	// Set if the request is successful.
	Fd int32
}

// LineValues contains the values of a set of requested lines.
type LineValues struct {
	// A bitmap containing the value of the lines.
	Bits LineBitmap

	// A bitmap identifying the lines to get or set, by index into the
	// request offsets.
	Mask LineBitmap
}

// Get returns the value of the nth bit.
func (lv LineValues) Get(n int) int {
	return lv.Bits.Get(n)
}

// LineBitmap is a bitmap containing a bit for each of up to LinesMax lines.
type LineBitmap uint64

// NewLineBitmap creates a bitmap from an array of bit values.
func NewLineBitmap(vv ...int) LineBitmap {
	var lb LineBitmap
	for i, v := range vv {
		lb = lb.Set(i, v)
	}
	return lb
}

// NewLineBitMask returns a mask of n bits.
func NewLineBitMask(n int) LineBitmap {
	if n >= LinesMax {
		return 0xffffffffffffffff
	}
	return (LineBitmap(1) << n) - 1
}

// Get returns the value of the nth bit.
func (lb LineBitmap) Get(n int) int {
	mask := LineBitmap(1) << n
	if lb&mask != 0 {
		return 1
	}
	return 0
}

// Set sets the value of the nth bit.
func (lb LineBitmap) Set(n, v int) LineBitmap {
	mask := LineBitmap(1) << n
	if v != 0 {
		return lb | mask
	}
	return lb &^ mask
}

// LineEventID indicates the type of event detected.
type LineEventID uint32

const (
	// LineEventRisingEdge indicates the event is a rising edge.
	LineEventRisingEdge LineEventID = iota + 1

	// LineEventFallingEdge indicates the event is a falling edge.
	LineEventFallingEdge
)

// LineEvent contains the details of a particular line event.
//
// This is returned via the request fd in response to events.
type LineEvent struct {
	// The time the event was detected, in nanoseconds.
	Timestamp uint64

	// The type of event detected.
	ID LineEventID

	// The offset of the line that triggered the event.
	Offset uint32

	// The sequence number for this event in all events on this request.
	Seqno uint32

	// The sequence number for this event in events on this line.
	LineSeqno uint32

	// reserved for future use.
	Padding [6]uint32
}
