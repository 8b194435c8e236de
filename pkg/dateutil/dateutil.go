package dateutil

import (
	"fmt"
	"time"
)

// timestampLayout is the fixed-width prefix every event timestamp must carry.
// Zone suffixes ("Z", "+09:00") are accepted but never interpreted; duration
// arithmetic downstream is timezone-naive on purpose.
const timestampLayout = "2006-01-02T15:04:05"

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// Today returns today's date (start of day)
func Today() time.Time {
	return StartOfDay(time.Now())
}

// IsWeekday returns true if the date is Monday-Friday
func IsWeekday(date time.Time) bool {
	weekday := date.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// WeekIndex returns the zero-based week number of date within year.
// Week 0 is the week containing January 1, anchored to the Monday on or
// before it, so it may cover a few trailing days of the previous year.
// Dates before that Monday yield a negative index; callers must
// bounds-check the result before using it.
func WeekIndex(year int, date time.Time) int {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	monday := jan1.AddDate(0, 0, -mondayOffset(jan1))

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(monday).Hours() / 24)
	if days < 0 {
		// Floor division so that one day before the anchor is week -1, not week 0
		return (days - 6) / 7
	}
	return days / 7
}

// mondayOffset returns how many days the date is past the most recent Monday
func mondayOffset(date time.Time) int {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday = 7
	}
	return weekday - 1
}

// ParseTimestamp parses the fixed-width "YYYY-MM-DDTHH:MM:SS" prefix of an
// ISO-8601 timestamp. Any zone suffix is ignored and the result is UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) < len(timestampLayout) {
		return time.Time{}, fmt.Errorf("timestamp %q is too short", s)
	}

	t, err := time.Parse(timestampLayout, s[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}

	return t, nil
}
