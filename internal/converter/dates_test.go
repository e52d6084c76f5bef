package converter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/bkhd-upsse-converter/internal/types"
)

func linesAt(timestamps ...interface{}) []types.RawLine {
	lines := make([]types.RawLine, 0, len(timestamps))
	for i, ts := range timestamps {
		line := sale(11+i, "Công ty A", e5, "10", "20000")
		line.Timestamp = ts
		lines = append(lines, line)
	}
	return lines
}

func TestResolveDate_Unambiguous(t *testing.T) {
	res, err := ResolveDate(linesAt(serialJul15, serialJul15+0.75), "")
	require.NoError(t, err)

	assert.False(t, res.Ambiguous())
	assert.Equal(t, jul15, res.Date)
	assert.Empty(t, res.Options)
}

func TestResolveDate_Ambiguous(t *testing.T) {
	res, err := ResolveDate(linesAt(serialJul03), "")
	require.NoError(t, err)

	require.True(t, res.Ambiguous())
	assert.Equal(t, []DateOption{
		{Label: "03/07/2024", Value: "2024-07-03"},
		{Label: "07/03/2024", Value: "2024-03-07"},
	}, res.Options)
}

func TestResolveDate_DayEqualsMonth(t *testing.T) {
	// 2024-07-07 reads the same either way round.
	res, err := ResolveDate(linesAt(45480.0), "")
	require.NoError(t, err)

	assert.False(t, res.Ambiguous())
	assert.Equal(t, time.Date(2024, time.July, 7, 0, 0, 0, 0, time.UTC), res.Date)
}

func TestResolveDate_TimeValue(t *testing.T) {
	ts := time.Date(2024, time.July, 20, 17, 45, 0, 0, time.Local)
	res, err := ResolveDate(linesAt(ts), "")
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC), res.Date)
}

func TestResolveDate_Confirmed(t *testing.T) {
	// The confirmed date wins even over an ambiguous listing.
	res, err := ResolveDate(linesAt(serialJul03), "2024-03-07")
	require.NoError(t, err)

	assert.False(t, res.Ambiguous())
	assert.Equal(t, time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), res.Date)
}

func TestResolveDate_InvalidConfirmed(t *testing.T) {
	for _, confirmed := range []string{"07/03/2024", "2024-13-01", "yesterday"} {
		_, err := ResolveDate(linesAt(serialJul15), confirmed)
		assert.ErrorIs(t, err, ErrInvalidConfirmedDate, confirmed)
	}
}

func TestResolveDate_MultipleDates(t *testing.T) {
	_, err := ResolveDate(linesAt(serialJul15, serialJul15+1), "")
	assert.ErrorIs(t, err, ErrMultiDateListing)
}

func TestResolveDate_NoQualifyingLines(t *testing.T) {
	lines := linesAt(serialJul15)
	lines[0].Quantity = lines[0].Quantity.Neg()

	_, err := ResolveDate(lines, "")
	assert.ErrorIs(t, err, ErrNoValidRows)

	_, err = ResolveDate(linesAt("not a date", nil), "")
	assert.ErrorIs(t, err, ErrNoValidRows)
}

func TestResolveDate_IgnoresNonQualifyingDates(t *testing.T) {
	lines := linesAt(serialJul15, serialJul15+3)
	lines[1].Quantity = decimal.Zero

	res, err := ResolveDate(lines, "")
	require.NoError(t, err)
	assert.Equal(t, jul15, res.Date)
}
