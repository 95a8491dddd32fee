package streaks

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid calendar date (must be YYYY-MM-DD)")

// EarliestDate is the first day a habit or tracker may be dated.
var EarliestDate = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// Day truncates t to its calendar day in t's own location and returns that
// day as UTC midnight, so day arithmetic never crosses a DST boundary.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the calendar day of now in loc (UTC when loc is nil).
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return Day(now.In(loc))
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// daysBetween expects two values produced by Day.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}
