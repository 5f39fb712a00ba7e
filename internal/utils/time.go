package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitvault/internal/constants"
)

// Clock returns the current time. Components take a Clock instead of calling
// time.Now directly so "today" can be pinned in tests.
type Clock func() time.Time

// SystemClock is the wall clock
func SystemClock() time.Time { return time.Now() }

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(clock Clock, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return clock().In(loc), nil
}

// Today returns midnight of the current day in the specified timezone.
func Today(clock Clock, timezone string) (time.Time, error) {
	now, err := NowInTimezone(clock, timezone)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(now), nil
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate parses a date string (YYYY-MM-DD) at midnight in loc.
func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", dateStr)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// NormalizeDate reduces a server date to YYYY-MM-DD. It accepts a plain
// date, an RFC 3339 timestamp or a SQL datetime; timestamps keep the
// calendar date they were written with.
func NormalizeDate(s string) (string, error) {
	for _, layout := range []string{constants.DateFormat, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(constants.DateFormat), nil
		}
	}
	return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", s)
}

// FormatDate formats t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ParseMonth parses a month string (YYYY-MM)
func ParseMonth(monthStr string) (int, time.Month, error) {
	t, err := time.Parse(constants.MonthFormat, monthStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month format: %s (expected YYYY-MM)", monthStr)
	}
	return t.Year(), t.Month(), nil
}

// MonthBounds returns the first and last day of a month in loc
func MonthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// DaysBetween returns every day from start to end inclusive.
// It returns nil when end is before start.
func DaysBetween(start, end time.Time) []time.Time {
	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return nil
	}
	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ValidateTimezone checks if the timezone name is valid.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}

// PeriodStart is the first day of the trailing 7, 30 or 365 day window
// ending on end
func PeriodStart(period string, end time.Time) time.Time {
	switch period {
	case constants.PeriodMonth:
		return end.AddDate(0, 0, -29)
	case constants.PeriodYear:
		return end.AddDate(0, 0, -364)
	default:
		return end.AddDate(0, 0, -6)
	}
}
