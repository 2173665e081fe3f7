// SPDX-License-Identifier: MIT

package linectl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linectl/go-linectl/uapi"
)

func TestLineConfigToUapiUniformFlags(t *testing.T) {
	cfg := NewLineConfig()
	err := cfg.Add([]int{1, 3, 5}, LineSettings{
		Direction: LineDirectionInput,
		Bias:      LineBiasPullUp,
	})
	require.Nil(t, err)

	ucfg, err := cfg.toUapi(cfg.Offsets())
	require.Nil(t, err)
	// identical settings collapse into the request-wide flags
	assert.Equal(t, uapi.LineFlagInput|uapi.LineFlagBiasPullUp, ucfg.Flags)
	assert.Equal(t, uint32(0), ucfg.NumAttrs)
}

func TestLineConfigToUapiFlagGroups(t *testing.T) {
	cfg := NewLineConfig()
	err := cfg.Add([]int{0, 2}, LineSettings{Direction: LineDirectionInput})
	require.Nil(t, err)
	err = cfg.AddLine(4, LineSettings{Direction: LineDirectionOutput})
	require.Nil(t, err)

	ucfg, err := cfg.toUapi(cfg.Offsets())
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlag(0), ucfg.Flags)
	// one flag attribute per distinct flag word, plus the output values
	require.Equal(t, uint32(3), ucfg.NumAttrs)

	inputs := ucfg.Attrs[0]
	assert.Equal(t, uapi.LineAttributeIDFlags, inputs.Attr.ID)
	assert.Equal(t, uapi.NewLineBitmap(1, 1, 0), inputs.Mask)
	assert.Equal(t, uint64(uapi.LineFlagInput), inputs.Attr.Value64())

	outputs := ucfg.Attrs[1]
	assert.Equal(t, uapi.LineAttributeIDFlags, outputs.Attr.ID)
	assert.Equal(t, uapi.NewLineBitmap(0, 0, 1), outputs.Mask)
	assert.Equal(t, uint64(uapi.LineFlagOutput), outputs.Attr.Value64())

	values := ucfg.Attrs[2]
	assert.Equal(t, uapi.LineAttributeIDOutputValues, values.Attr.ID)
	assert.Equal(t, uapi.NewLineBitmap(0, 0, 1), values.Mask)
}

func TestLineConfigToUapiOutputValues(t *testing.T) {
	cfg := NewLineConfig()
	err := cfg.Add([]int{0, 1, 2}, LineSettings{
		Direction: LineDirectionOutput,
	})
	require.Nil(t, err)
	cfg.SetOutputValues([]int{1, 0, 1})

	ucfg, err := cfg.toUapi(cfg.Offsets())
	require.Nil(t, err)
	assert.Equal(t, uapi.LineFlagOutput, ucfg.Flags)
	require.Equal(t, uint32(1), ucfg.NumAttrs)

	values := ucfg.Attrs[0]
	assert.Equal(t, uapi.LineAttributeIDOutputValues, values.Attr.ID)
	assert.Equal(t, uapi.NewLineBitmap(1, 1, 1), values.Mask)
	assert.Equal(t, uint64(uapi.NewLineBitmap(1, 0, 1)), values.Attr.Value64())
}

func TestLineConfigToUapiDebounceGroups(t *testing.T) {
	cfg := NewLineConfig()
	err := cfg.Add([]int{0, 1}, LineSettings{
		EdgeDetection:  LineEdgeBoth,
		DebouncePeriod: 10 * time.Millisecond,
	})
	require.Nil(t, err)
	err = cfg.AddLine(2, LineSettings{
		EdgeDetection:  LineEdgeBoth,
		DebouncePeriod: 20 * time.Millisecond,
	})
	require.Nil(t, err)

	ucfg, err := cfg.toUapi(cfg.Offsets())
	require.Nil(t, err)
	// debounce is not part of the flags, so the lines still share them
	assert.NotEqual(t, uapi.LineFlag(0), ucfg.Flags)
	require.Equal(t, uint32(2), ucfg.NumAttrs)

	d10 := ucfg.Attrs[0]
	assert.Equal(t, uapi.LineAttributeIDDebounce, d10.Attr.ID)
	assert.Equal(t, uapi.NewLineBitmap(1, 1, 0), d10.Mask)
	assert.Equal(t, uint32(10000), d10.Attr.Value32())

	d20 := ucfg.Attrs[1]
	assert.Equal(t, uapi.LineAttributeIDDebounce, d20.Attr.ID)
	assert.Equal(t, uapi.NewLineBitmap(0, 0, 1), d20.Mask)
	assert.Equal(t, uint32(20000), d20.Attr.Value32())
}

func TestLineConfigToUapiOverflow(t *testing.T) {
	cfg := NewLineConfig()
	// distinct debounce periods cannot be coalesced, so enough of them
	// exceeds the attribute limit
	for i := 0; i < uapi.LineNumAttrsMax+1; i++ {
		err := cfg.AddLine(i, LineSettings{
			EdgeDetection:  LineEdgeBoth,
			DebouncePeriod: time.Duration(i+1) * time.Millisecond,
		})
		require.Nil(t, err)
	}
	require.Nil(t, cfg.Validate())

	_, err := cfg.toUapi(cfg.Offsets())
	assert.ErrorIs(t, err, ErrConfigOverflow)
}

func TestLineConfigToUapiReorderedOffsets(t *testing.T) {
	cfg := NewLineConfig()
	err := cfg.AddLine(3, LineSettings{Direction: LineDirectionInput})
	require.Nil(t, err)
	err = cfg.AddLine(7, LineSettings{
		Direction:   LineDirectionOutput,
		OutputValue: LineActive,
	})
	require.Nil(t, err)

	// masks follow the order given, not the order added
	ucfg, err := cfg.toUapi([]int{7, 3})
	require.Nil(t, err)
	require.Equal(t, uint32(3), ucfg.NumAttrs)
	assert.Equal(t, uapi.NewLineBitmap(1), ucfg.Attrs[0].Mask)
	assert.Equal(t, uint64(uapi.LineFlagOutput), ucfg.Attrs[0].Attr.Value64())
	assert.Equal(t, uapi.NewLineBitmap(0, 1), ucfg.Attrs[1].Mask)
	assert.Equal(t, uapi.NewLineBitmap(1), ucfg.Attrs[2].Mask)
	assert.Equal(t, uint64(uapi.NewLineBitmap(1)), ucfg.Attrs[2].Attr.Value64())
}
