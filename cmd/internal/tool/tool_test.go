// SPDX-License-Identifier: MIT

package tool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	linectl "github.com/linectl/go-linectl"
	"github.com/linectl/go-linectl/cmd/internal/tool"
)

func TestParseOffsets(t *testing.T) {
	oo, err := tool.ParseOffsets([]string{"3", "0", "12"})
	require.Nil(t, err)
	assert.Equal(t, []int{3, 0, 12}, oo)

	oo, err = tool.ParseOffsets(nil)
	require.Nil(t, err)
	assert.Empty(t, oo)

	_, err = tool.ParseOffsets([]string{"3", "banana"})
	assert.NotNil(t, err)

	_, err = tool.ParseOffsets([]string{"-1"})
	assert.NotNil(t, err)
}

func TestParseLineValues(t *testing.T) {
	oo, vv, err := tool.ParseLineValues([]string{"3=1", "0=inactive", "5=on"})
	require.Nil(t, err)
	assert.Equal(t, []int{3, 0, 5}, oo)
	assert.Equal(t, []int{1, 0, 1}, vv)

	_, _, err = tool.ParseLineValues([]string{"3"})
	assert.NotNil(t, err)
	_, _, err = tool.ParseLineValues([]string{"x=1"})
	assert.NotNil(t, err)
	_, _, err = tool.ParseLineValues([]string{"3=maybe"})
	assert.NotNil(t, err)
}

func TestParseBias(t *testing.T) {
	b, err := tool.ParseBias("")
	require.Nil(t, err)
	assert.Equal(t, linectl.LineBiasAsIs, b)
	b, err = tool.ParseBias("pull-up")
	require.Nil(t, err)
	assert.Equal(t, linectl.LineBiasPullUp, b)
	_, err = tool.ParseBias("sideways")
	assert.NotNil(t, err)
}

func TestParseDrive(t *testing.T) {
	d, err := tool.ParseDrive("")
	require.Nil(t, err)
	assert.Equal(t, linectl.LineDrivePushPull, d)
	d, err = tool.ParseDrive("open-drain")
	require.Nil(t, err)
	assert.Equal(t, linectl.LineDriveOpenDrain, d)
	_, err = tool.ParseDrive("hard")
	assert.NotNil(t, err)
}

func TestParseEdges(t *testing.T) {
	e, err := tool.ParseEdges("")
	require.Nil(t, err)
	assert.Equal(t, linectl.LineEdgeBoth, e)
	e, err = tool.ParseEdges("rising")
	require.Nil(t, err)
	assert.Equal(t, linectl.LineEdgeRising, e)
	_, err = tool.ParseEdges("sharp")
	assert.NotNil(t, err)
}
