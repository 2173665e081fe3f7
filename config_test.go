// SPDX-License-Identifier: MIT

package linectl_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	linectl "github.com/linectl/go-linectl"
)

func TestLineConfigAdd(t *testing.T) {
	cfg := linectl.NewLineConfig()

	// empty offsets
	err := cfg.Add(nil, linectl.LineSettings{})
	assert.ErrorIs(t, err, linectl.ErrInvalidConfig)

	// duplicates collapsed, first-seen order preserved
	err = cfg.Add([]int{2, 0, 0, 4}, linectl.LineSettings{})
	require.Nil(t, err)
	assert.Equal(t, []int{2, 0, 4}, cfg.Offsets())

	// re-adding an offset keeps its position
	err = cfg.Add([]int{0, 5}, linectl.LineSettings{Direction: linectl.LineDirectionInput})
	require.Nil(t, err)
	assert.Equal(t, []int{2, 0, 4, 5}, cfg.Offsets())
}

func TestLineConfigAddTooManyLines(t *testing.T) {
	cfg := linectl.NewLineConfig()
	offsets := make([]int, 64)
	for i := range offsets {
		offsets[i] = i
	}
	err := cfg.Add(offsets, linectl.LineSettings{})
	require.Nil(t, err)

	// already present offsets don't count against the limit
	err = cfg.Add([]int{0, 63}, linectl.LineSettings{})
	assert.Nil(t, err)

	err = cfg.AddLine(64, linectl.LineSettings{})
	assert.ErrorIs(t, err, linectl.ErrTooManyLines)
}

func TestLineConfigReset(t *testing.T) {
	cfg := linectl.NewLineConfig()
	err := cfg.Add([]int{1, 2, 3}, linectl.LineSettings{})
	require.Nil(t, err)
	cfg.SetOutputValues([]int{1, 0, 1})

	cfg.Reset()
	assert.Empty(t, cfg.Offsets())

	err = cfg.AddLine(7, linectl.LineSettings{})
	require.Nil(t, err)
	assert.Equal(t, []int{7}, cfg.Offsets())
}

func TestLineSettingsValidation(t *testing.T) {
	patterns := []struct {
		name     string
		settings linectl.LineSettings
		err      error
	}{
		{
			"default",
			linectl.LineSettings{},
			nil,
		},
		{
			"edge on input",
			linectl.LineSettings{
				Direction:     linectl.LineDirectionInput,
				EdgeDetection: linectl.LineEdgeBoth,
			},
			nil,
		},
		{
			"edge on output",
			linectl.LineSettings{
				Direction:     linectl.LineDirectionOutput,
				EdgeDetection: linectl.LineEdgeRising,
			},
			linectl.ErrInvalidConfig,
		},
		{
			"debounce without edge",
			linectl.LineSettings{
				Direction:      linectl.LineDirectionInput,
				DebouncePeriod: time.Millisecond,
			},
			linectl.ErrInvalidConfig,
		},
		{
			"negative debounce",
			linectl.LineSettings{
				EdgeDetection:  linectl.LineEdgeBoth,
				DebouncePeriod: -time.Millisecond,
			},
			linectl.ErrInvalidConfig,
		},
		{
			"debounced edge",
			linectl.LineSettings{
				EdgeDetection:  linectl.LineEdgeFalling,
				DebouncePeriod: time.Millisecond,
			},
			nil,
		},
	}
	for _, p := range patterns {
		p := p
		t.Run(p.name, func(t *testing.T) {
			cfg := linectl.NewLineConfig()
			err := cfg.AddLine(3, p.settings)
			require.Nil(t, err)
			err = cfg.Validate()
			if p.err == nil {
				assert.Nil(t, err)
			} else {
				assert.ErrorIs(t, err, p.err)
			}
		})
	}
}

func TestLineConfigOutputValuesMismatch(t *testing.T) {
	cfg := linectl.NewLineConfig()
	err := cfg.Add([]int{1, 2, 2, 3}, linectl.LineSettings{
		Direction: linectl.LineDirectionOutput,
	})
	require.Nil(t, err)

	// 4 values for 3 distinct lines
	cfg.SetOutputValues([]int{1, 0, 1, 0})
	assert.ErrorIs(t, cfg.Validate(), linectl.ErrInvalidConfig)

	cfg.SetOutputValues([]int{1, 0, 1})
	assert.Nil(t, cfg.Validate())
}
