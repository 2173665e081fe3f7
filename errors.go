// SPDX-License-Identifier: MIT

package linectl

import (
	"github.com/pkg/errors"
)

var (
	// ErrClosed indicates the chip or request has already been closed.
	ErrClosed = errors.New("already closed")

	// ErrConfigOverflow indicates the provided configuration is too
	// complicated to be mapped to the kernel uAPI.
	//
	// Reduce the number of distinct line settings or split the request into
	// multiple requests for smaller sets of lines.
	ErrConfigOverflow = errors.New("configuration too complex to map to kernel uAPI")

	// ErrInvalidConfig indicates the configuration is malformed or
	// contradictory.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidOffset indicates a line offset is out of range for the chip
	// or not contained in the request.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrNotCharacterDevice indicates the device is not a character device.
	ErrNotCharacterDevice = errors.New("not a character device")

	// ErrNotGPIOChip indicates the device is a character device, but not a
	// GPIO character device.
	ErrNotGPIOChip = errors.New("not a GPIO character device")

	// ErrTooManyLines indicates a request would contain more lines than the
	// kernel allows in a single request.
	ErrTooManyLines = errors.New("too many lines in one request")
)
