// SPDX-License-Identifier: MIT

package linectl

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/linectl/go-linectl/uapi"
)

// Chip represents a single GPIO character device that controls a set of
// lines.
//
// Lines are identified by offset into the chip, with offsets being in the
// range 0..Lines()-1.
type Chip struct {
	// the chip descriptor, held raw and non-blocking so info event reads
	// only drain what is already queued.
	fd int

	// The system name for this chip.
	Name string

	// A more individual label for the chip, if provided by the driver.
	Label string

	// The number of GPIO lines on this chip.
	lines int

	// default options for requests on this chip.
	options chipOptions

	// mu covers the attributes below it.
	mu sync.Mutex

	// offsets with an info watch applied.
	watched map[int]bool

	// indicates the chip has been closed.
	closed bool
}

// NewChip opens a GPIO character device.
//
// The path may be the full path to the device, or just the device name.
func NewChip(path string, options ...ChipOption) (*Chip, error) {
	path = nameToPath(path)
	if err := IsChip(path); err != nil {
		return nil, err
	}
	co := chipOptions{
		consumer: defaultConsumer(),
	}
	for _, option := range options {
		option.applyChipOption(&co)
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC|unix.O_NONBLOCK, 0)
	if err != nil {
		// only happens if the device is removed or locked since the IsChip
		// call.
		return nil, err
	}
	ci, err := uapi.GetChipInfo(uintptr(fd))
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	c := Chip{
		fd:      fd,
		Name:    uapi.BytesToString(ci.Name[:]),
		Label:   uapi.BytesToString(ci.Label[:]),
		lines:   int(ci.Lines),
		options: co,
		watched: map[int]bool{},
	}
	if len(c.Label) == 0 {
		c.Label = "unknown"
	}
	return &c, nil
}

// Close releases the Chip.
//
// It does not release any requests created from the chip - they hold their
// own kernel handle and must be closed independently.
func (c *Chip) Close() error {
	c.mu.Lock()
	closed := c.closed
	c.closed = true
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return unix.Close(c.fd)
}

// Lines returns the number of lines that exist on the GPIO chip.
func (c *Chip) Lines() int {
	return c.lines
}

// LineInfo returns a snapshot of the publicly available information on the
// line.
//
// This is always available and does not require requesting the line.
func (c *Chip) LineInfo(offset int) (info LineInfo, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		err = ErrClosed
		return
	}
	if offset < 0 || offset >= c.lines {
		err = ErrInvalidOffset
		return
	}
	li, err := uapi.GetLineInfo(uintptr(c.fd), offset)
	if err == nil {
		info = newLineInfo(li)
	}
	return
}

// WatchLineInfo enables watching changes to the info of a line.
//
// Returns the line info at the time the watch was applied.
//
// Subsequent changes to the line state - requests, releases and
// reconfigurations, by any process - are reported via WaitInfoEvent and
// ReadInfoEvent.
func (c *Chip) WatchLineInfo(offset int) (info LineInfo, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		err = ErrClosed
		return
	}
	if offset < 0 || offset >= c.lines {
		err = ErrInvalidOffset
		return
	}
	li := uapi.LineInfo{Offset: uint32(offset)}
	err = uapi.WatchLineInfo(uintptr(c.fd), &li)
	if err != nil {
		return
	}
	c.watched[offset] = true
	info = newLineInfo(li)
	return
}

// UnwatchLineInfo disables watching changes to the info of a line.
//
// Events already queued for the line when the watch is removed are not
// flushed and are still returned by ReadInfoEvent.
func (c *Chip) UnwatchLineInfo(offset int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if offset < 0 || offset >= c.lines {
		return ErrInvalidOffset
	}
	delete(c.watched, offset)
	return uapi.UnwatchLineInfo(uintptr(c.fd), uint32(offset))
}

// WaitInfoEvent waits until an info event is available to read from the
// chip, or the timeout elapses.
//
// A zero timeout polls, while a negative timeout blocks indefinitely.
// Returns true if an event is available.
func (c *Chip) WaitInfoEvent(timeout time.Duration) (bool, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false, ErrClosed
	}
	fd := c.fd
	c.mu.Unlock()
	return waitReadable(fd, timeout)
}

// ReadInfoEvent reads a single info event from the chip.
//
// If no event is available the read fails with unix.EAGAIN, so callers are
// expected to pair this with WaitInfoEvent.
func (c *Chip) ReadInfoEvent() (evt InfoEvent, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		err = ErrClosed
		return
	}
	lic, err := uapi.ReadLineInfoChanged(uintptr(c.fd))
	if err != nil {
		return
	}
	evt = InfoEvent{
		Type:      InfoEventType(lic.Type),
		Timestamp: time.Duration(lic.Timestamp),
		Info:      newLineInfo(lic.Info),
	}
	return
}

// IsChip checks if the named device is an accessible GPIO character device.
//
// Returns an error if not.
func IsChip(path string) error {
	path = nameToPath(path)
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.Mode()&os.ModeCharDevice == 0 {
		return ErrNotCharacterDevice
	}
	sysfspath := fmt.Sprintf("/sys/bus/gpio/devices/%s/dev", fi.Name())
	if err = unix.Access(sysfspath, unix.R_OK); err != nil {
		return ErrNotGPIOChip
	}
	sysfsf, err := os.Open(sysfspath)
	if err != nil {
		// changed since Access?
		return ErrNotGPIOChip
	}
	var sysfsdev [16]byte
	n, err := sysfsf.Read(sysfsdev[:])
	sysfsf.Close()
	if err != nil || n <= 0 {
		return ErrNotGPIOChip
	}
	var stat unix.Stat_t
	if err = unix.Lstat(path, &stat); err != nil {
		return err
	}
	devstr := fmt.Sprintf("%d:%d", unix.Major(uint64(stat.Rdev)), unix.Minor(uint64(stat.Rdev)))
	sysstr := string(sysfsdev[:n-1])
	if devstr != sysstr {
		return ErrNotGPIOChip
	}
	return nil
}

// Chips returns the paths of the available GPIO character devices, in chip
// number order.
func Chips() []string {
	ee, err := os.ReadDir("/dev")
	if err != nil {
		return nil
	}
	cc := []string(nil)
	for _, e := range ee {
		name := e.Name()
		if !strings.HasPrefix(name, "gpiochip") {
			continue
		}
		path := nameToPath(name)
		if IsChip(path) == nil {
			cc = append(cc, path)
		}
	}
	sortChips(cc)
	return cc
}

// sortChips sorts the chip paths by chip number, so gpiochip2 sorts before
// gpiochip10.
func sortChips(cc []string) {
	sort.Slice(cc, func(i, j int) bool {
		return chipNum(cc[i]) < chipNum(cc[j])
	})
}

// chipNum returns the number of the chip at the path, or -1 if the path is
// not numbered.
func chipNum(path string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(path, "/dev/gpiochip"))
	if err != nil {
		return -1
	}
	return n
}

func nameToPath(name string) string {
	if strings.HasPrefix(name, "/dev/") {
		return name
	}
	return "/dev/" + name
}

func defaultConsumer() string {
	return fmt.Sprintf("linectl-%d", os.Getpid())
}
