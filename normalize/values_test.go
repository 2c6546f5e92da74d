package normalize

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	Location = time.UTC
	os.Exit(m.Run())
}

func TestTimeValue(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()

	tests := []struct {
		name string
		raw  any
		want int64
	}{
		{"nil", nil, 0},
		{"serial number", float64(45366), day},
		{"serial int", 45366, day},
		{"serial string", "45366", day},
		{"italian slash", "15/03/2024", day},
		{"italian dash", "15-03-2024", day},
		{"italian dot short year", "15.3.24", day},
		{"invalid day", "31/02/2024", 0},
		{"iso date", "2024-03-15", day},
		{"iso timestamp", "2024-03-15T00:00:00Z", day},
		{"garbage", "domani", 0},
		{"blank", "   ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeValue(tt.raw))
		})
	}
}

func TestDisplayAndInputDates(t *testing.T) {
	assert.Equal(t, "15/03/2024", ToDisplayDate("2024-03-15T00:00:00Z"))
	assert.Equal(t, "2024-03-15", ToInputDateIso(45366))
	assert.Equal(t, "", ToDisplayDate(""))
	assert.Equal(t, "", ToInputDateIso("non è una data"))
}

func TestToIsoOrNull(t *testing.T) {
	iso, ok := ToIsoOrNull("05/01/2025")
	require.True(t, ok)
	assert.Equal(t, "2025-01-05T00:00:00.000Z", iso)

	iso, ok = ToIsoOrNull("2025-01-05")
	require.True(t, ok)
	assert.Equal(t, "2025-01-05T00:00:00.000Z", iso)

	_, ok = ToIsoOrNull("")
	assert.False(t, ok)
	_, ok = ToIsoOrNull("30/02/2025")
	assert.False(t, ok)
	_, ok = ToIsoOrNull("boh")
	assert.False(t, ok)
}

func TestToNumberOrNull(t *testing.T) {
	n, ok := ToNumberOrNull(" 12.5 ")
	assert.True(t, ok)
	assert.Equal(t, 12.5, n)

	for _, in := range []string{"", "abc", "Inf", "NaN"} {
		_, ok := ToNumberOrNull(in)
		assert.False(t, ok, in)
	}
	assert.Nil(t, NumberOrNil("x"))
	assert.Equal(t, float64(3), NumberOrNil("3"))
}

func TestSumAdditiveExpression(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"100+20+10", 130, true},
		{"12,5+7,5", 20, true},
		{" 100 + 20 ", 120, true},
		{"100++20", 120, true},
		{"100+x", 0, false},
		{"", 0, false},
		{"+", 0, false},
	}
	for _, tt := range tests {
		got, ok := SumAdditiveExpression(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestExcelSerialRoundTrip(t *testing.T) {
	for _, serial := range []float64{1, 36526, 45366, 50000} {
		got, ok := ToExcelSerial(serial)
		require.True(t, ok)
		assert.Equal(t, serial, got)
	}

	got, ok := ToExcelSerial("2024-03-15T18:30:00Z")
	require.True(t, ok)
	assert.Equal(t, float64(45366), got)

	_, ok = ToExcelSerial("")
	assert.False(t, ok)
}

func TestFormatLottoProg(t *testing.T) {
	assert.Equal(t, "A", FormatLottoProg(""))
	assert.Equal(t, "B", FormatLottoProg("b"))
	assert.Equal(t, FormatLottoProg("c"), FormatLottoProg(FormatLottoProg("c")))
}

func TestToStr(t *testing.T) {
	assert.Equal(t, "", ToStr(nil))
	assert.Equal(t, "12.5", ToStr(12.5))
	assert.Equal(t, "500", ToStr(float64(500)))
	assert.Equal(t, "true", ToStr(true))
}
