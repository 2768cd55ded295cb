package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns midnight of the Sunday that opens t's week.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// EndOfWeek returns the last instant of t's Sunday-start week.
func EndOfWeek(t time.Time, loc *time.Location) time.Time {
	return StartOfWeek(t, loc).AddDate(0, 0, 7).Add(-time.Millisecond)
}

// ParseDate accepts RFC3339 timestamps and YYYY-MM-DD dates (midnight in loc).
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// ParseRange returns a range only when both bounds parse. A date-only end
// bound covers its whole day.
func ParseRange(start, end string, loc *time.Location) (from, to *time.Time) {
	f, ok1 := ParseDate(start, loc)
	t, ok2 := ParseDate(end, loc)
	if !ok1 || !ok2 {
		return nil, nil
	}
	if _, err := time.ParseInLocation(DateLayout, strings.TrimSpace(end), loc); err == nil {
		t = t.AddDate(0, 0, 1).Add(-time.Millisecond)
	}
	return &f, &t
}
