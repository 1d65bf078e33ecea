package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateDay(t *testing.T) {
	ny := time.FixedZone("EST", -5*3600)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{name: "utc", in: time.Date(2024, 1, 2, 23, 59, 0, 0, time.UTC), want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{name: "keeps local calendar day", in: time.Date(2024, 1, 2, 21, 0, 0, 0, ny), want: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateDay(tt.in))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(start, start.Add(5*time.Hour)))
	assert.Equal(t, 1, DaysBetween(start, start.Add(10*time.Hour)))
	assert.Equal(t, 366, DaysBetween(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", FormatDate(d))

	_, err = ParseDate("02/29/2024")
	assert.Error(t, err)
}

func TestUniqueUpper(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, UniqueUpper([]string{" aapl", "MSFT", "AAPL", ""}))
	assert.Empty(t, UniqueUpper(nil))
}
