package utils

import (
	"fmt"
	"math"
	"time"
)

const DateLayout = "2006-01-02"

func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// TruncateDay returns the calendar day of t as UTC midnight, keeping the
// wall-clock date of t's own location.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from start to end.
func DaysBetween(start, end time.Time) int {
	return int(math.Round(TruncateDay(end).Sub(TruncateDay(start)).Hours() / 24))
}

func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
