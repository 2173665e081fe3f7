// SPDX-License-Identifier: MIT

package linectl

type chipOptions struct {
	consumer string
}

// ChipOption defines the interface required to provide an option to NewChip.
type ChipOption interface {
	applyChipOption(*chipOptions)
}

type requestOptions struct {
	consumer        string
	eventBufferSize int
}

// RequestOption defines the interface required to provide an option to
// Chip.RequestLines.
type RequestOption interface {
	applyRequestOption(*requestOptions)
}

// ConsumerOption is an option that sets the consumer label.
type ConsumerOption string

// WithConsumer returns an option that sets the consumer label applied to
// requested lines.
//
// Applied to a chip it sets the default for all requests on that chip.
// The default label is of the form "linectl-<pid>".
func WithConsumer(consumer string) ConsumerOption {
	return ConsumerOption(consumer)
}

func (o ConsumerOption) applyChipOption(c *chipOptions) {
	c.consumer = string(o)
}

func (o ConsumerOption) applyRequestOption(r *requestOptions) {
	r.consumer = string(o)
}

// EventBufferSizeOption is an option that suggests a minimum number of edge
// events the kernel should buffer for a request.
type EventBufferSizeOption int

// WithEventBufferSize returns an option that suggests a minimum number of
// edge events the kernel should buffer for the request.
//
// This is a hint - the kernel may round or clamp the size. Zero selects the
// kernel default.
func WithEventBufferSize(size int) EventBufferSizeOption {
	return EventBufferSizeOption(size)
}

func (o EventBufferSizeOption) applyRequestOption(r *requestOptions) {
	r.eventBufferSize = int(o)
}
