package engine

import (
	"time"

	"github.com/imhyo/lg-foss/pkg/dateutil"
)

const (
	workdayHours   = 8.0
	halfLeaveHours = 4.0
)

// Week is one Monday-to-Sunday bucket of the year, comparing hours
// actually worked against the remaining expected capacity.
type Week struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	ActualHours   float64   `json:"actual_hours"`
	ExpectedHours float64   `json:"expected_hours"`
}

// WeekCalendar is the chronological sequence of week buckets for one
// year, indexed by dateutil.WeekIndex.
type WeekCalendar []Week

// BuildWeekTable walks January 1 of year through asOf (inclusive) and
// opens one bucket per calendar week. Each Mon-Fri day walked adds a full
// workday of expected hours, so a partial first or last week accrues only
// the days it actually contains. If asOf falls mid-week the trailing
// bucket is closed at asOf itself.
func BuildWeekTable(year int, asOf time.Time) WeekCalendar {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return WeekCalendar{}
	}

	weeks := make(WeekCalendar, 0, 54)
	open := Week{Start: start}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Monday {
			open.Start = d
		}
		if dateutil.IsWeekday(d) {
			open.ExpectedHours += workdayHours
		}
		if d.Weekday() == time.Sunday {
			open.End = d
			weeks = append(weeks, open)
			open = Week{Start: d.AddDate(0, 0, 1)}
		}
	}

	// A walk ending on a Sunday closed its last bucket in the loop;
	// anything else leaves a partial week to finalize.
	if end.Weekday() != time.Sunday {
		open.End = end
		weeks = append(weeks, open)
	}

	return weeks
}
