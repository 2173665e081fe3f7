// SPDX-License-Identifier: MIT

package linectl

import (
	"github.com/pkg/errors"

	"github.com/linectl/go-linectl/uapi"
)

// LineConfig is an ordered mapping from line offsets to line settings, used
// to build or reconfigure a request.
//
// Offsets are deduplicated, preserving the order in which they were first
// added. Adding settings for an offset already present replaces its settings
// without changing its position.
//
// A LineConfig may be built iteratively - the configuration is only
// validated as a whole when submitted.
type LineConfig struct {
	// distinct offsets in first-seen order
	offsets []int

	// settings keyed by offset
	settings map[int]LineSettings

	// optional override of the output values, zipped positionally against
	// offsets at submission time.
	outputValues []int
}

// NewLineConfig creates an empty line configuration.
func NewLineConfig() *LineConfig {
	return &LineConfig{settings: map[int]LineSettings{}}
}

// Add applies the settings to the given offsets.
//
// Fails if offsets is empty, or if the distinct offsets in the configuration
// would exceed the kernel limit on lines in one request.
func (lc *LineConfig) Add(offsets []int, settings LineSettings) error {
	if len(offsets) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no offsets")
	}
	distinct := 0
	for _, o := range offsets {
		if _, ok := lc.settings[o]; !ok {
			distinct++
		}
	}
	if len(lc.offsets)+distinct > uapi.LinesMax {
		return ErrTooManyLines
	}
	for _, o := range offsets {
		if _, ok := lc.settings[o]; !ok {
			lc.offsets = append(lc.offsets, o)
		}
		lc.settings[o] = settings
	}
	return nil
}

// AddLine applies the settings to a single offset.
func (lc *LineConfig) AddLine(offset int, settings LineSettings) error {
	return lc.Add([]int{offset}, settings)
}

// SetOutputValues records output values to be applied to the output lines in
// the configuration.
//
// The values are zipped positionally against the deduplicated offset order
// when the configuration is submitted, overriding the OutputValue in the
// corresponding line settings. The number of values must match the number of
// distinct offsets at submission time.
func (lc *LineConfig) SetOutputValues(values []int) {
	lc.outputValues = append([]int(nil), values...)
}

// Reset returns the configuration to the empty state.
func (lc *LineConfig) Reset() {
	lc.offsets = nil
	lc.settings = map[int]LineSettings{}
	lc.outputValues = nil
}

// Offsets returns the distinct offsets in the configuration, in the order
// they were first added.
func (lc *LineConfig) Offsets() []int {
	return append([]int(nil), lc.offsets...)
}

// lineSettings returns the settings for the offset, or the zero settings if
// the offset is not present.
func (lc *LineConfig) lineSettings(offset int) LineSettings {
	return lc.settings[offset]
}

// Validate checks the whole configuration, rejecting it on the first
// violation.
//
// Called automatically when the configuration is submitted, but may also be
// called while building to fail early.
func (lc *LineConfig) Validate() error {
	if len(lc.offsets) == 0 {
		return errors.Wrap(ErrInvalidConfig, "no lines")
	}
	for _, o := range lc.offsets {
		if err := lc.settings[o].validate(); err != nil {
			return errors.WithMessagef(err, "line %d", o)
		}
	}
	if lc.outputValues != nil && len(lc.outputValues) != len(lc.offsets) {
		return errors.Wrapf(ErrInvalidConfig,
			"%d output values for %d lines",
			len(lc.outputValues), len(lc.offsets))
	}
	return nil
}

// outputValue returns the effective output value for the offset.
func (lc *LineConfig) outputValue(offset int) int {
	if lc.outputValues != nil {
		for i, o := range lc.offsets {
			if o == offset {
				return lc.outputValues[i]
			}
		}
	}
	return lc.settings[offset].OutputValue
}

// toUapi encodes the configuration into the kernel form, with the lines in
// the given order.
//
// Lines sharing identical flags are coalesced into a single attribute, as
// are lines sharing a debounce period, to stay within the kernel limit on
// attributes per request. If all lines share the same flags they are carried
// in the request-wide flags field instead.
//
// The caller is expected to have validated the configuration, and the
// offsets to be a permutation of the configured offsets.
func (lc *LineConfig) toUapi(offsets []int) (uapi.LineConfig, error) {
	var cfg uapi.LineConfig
	var attrs []uapi.LineConfigAttribute

	// coalesce lines with identical flags, in first-seen order
	type flagGroup struct {
		flags uapi.LineFlag
		mask  uapi.LineBitmap
	}
	var groups []flagGroup
	for i, o := range offsets {
		flags := lc.settings[o].toFlags()
		g := -1
		for j := range groups {
			if groups[j].flags == flags {
				g = j
				break
			}
		}
		if g == -1 {
			groups = append(groups, flagGroup{flags: flags})
			g = len(groups) - 1
		}
		groups[g].mask = groups[g].mask.Set(i, 1)
	}
	if len(groups) == 1 {
		cfg.Flags = groups[0].flags
	} else {
		for _, g := range groups {
			lca := uapi.LineConfigAttribute{Mask: g.mask}
			lca.Attr.Encode64(uapi.LineAttributeIDFlags, uint64(g.flags))
			attrs = append(attrs, lca)
		}
	}

	// the values of the output lines, if any
	var values uapi.LineConfigAttribute
	for i, o := range offsets {
		if !lc.settings[o].isOutput() {
			continue
		}
		values.Mask = values.Mask.Set(i, 1)
		if lc.outputValue(o) != LineInactive {
			bits := uapi.LineBitmap(values.Attr.Value64()).Set(i, 1)
			values.Attr.Encode64(uapi.LineAttributeIDOutputValues, uint64(bits))
		}
	}
	if values.Mask != 0 {
		values.Attr.ID = uapi.LineAttributeIDOutputValues
		attrs = append(attrs, values)
	}

	// coalesce lines with identical debounce periods
	type debounceGroup struct {
		period uint32
		mask   uapi.LineBitmap
	}
	var dgroups []debounceGroup
	for i, o := range offsets {
		period := uint32(lc.settings[o].DebouncePeriod.Microseconds())
		if period == 0 {
			continue
		}
		g := -1
		for j := range dgroups {
			if dgroups[j].period == period {
				g = j
				break
			}
		}
		if g == -1 {
			dgroups = append(dgroups, debounceGroup{period: period})
			g = len(dgroups) - 1
		}
		dgroups[g].mask = dgroups[g].mask.Set(i, 1)
	}
	for _, g := range dgroups {
		lca := uapi.LineConfigAttribute{Mask: g.mask}
		lca.Attr.DebouncePeriod(g.period)
		attrs = append(attrs, lca)
	}

	if len(attrs) > uapi.LineNumAttrsMax {
		return cfg, ErrConfigOverflow
	}
	for _, lca := range attrs {
		cfg.AddAttribute(lca)
	}
	return cfg, nil
}
