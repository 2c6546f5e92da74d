package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	a, ok := ParseAddress("'Magazzino Tubi'!A2:Z50")
	require.True(t, ok)
	assert.Equal(t, Address{Sheet: "Magazzino Tubi", StartCol: "A", StartRow: 2, EndCol: "Z", EndRow: 50}, a)

	a, ok = ParseAddress("Sheet1!b7")
	require.True(t, ok)
	assert.Equal(t, Address{Sheet: "Sheet1", StartCol: "B", StartRow: 7, EndCol: "B", EndRow: 7}, a)

	_, ok = ParseAddress("Sheet1!")
	assert.False(t, ok)
}

func TestBuildRowRangeAddress(t *testing.T) {
	sheet, addr, ok := BuildRowRangeAddress("Sheet1!A2:Z50", 0, -1)
	require.True(t, ok)
	assert.Equal(t, "Sheet1", sheet)
	assert.Equal(t, "A2:Z2", addr)

	_, addr, ok = BuildRowRangeAddress("Sheet1!A2:Z50", 48, -1)
	require.True(t, ok)
	assert.Equal(t, "A50:Z50", addr)

	_, _, ok = BuildRowRangeAddress("Sheet1!A2:Z50", 49, -1)
	assert.False(t, ok)
	_, _, ok = BuildRowRangeAddress("Sheet1!A2:Z50", -1, -1)
	assert.False(t, ok)
	_, _, ok = BuildRowRangeAddress("Sheet1!A2:Z50", 5, 5)
	assert.False(t, ok)
	_, _, ok = BuildRowRangeAddress("garbage", 0, -1)
	assert.False(t, ok)

	// an empty table has no addressable row
	_, _, ok = BuildRowRangeAddress("Sheet1!A2:Z2", 0, 0)
	assert.False(t, ok)
	_, addr, ok = BuildRowRangeAddress("Sheet1!A2:Z2", 0, 1)
	require.True(t, ok)
	assert.Equal(t, "A2:Z2", addr)
}
