package engine

import (
	"fmt"
	"time"

	"github.com/imhyo/lg-foss/internal/source"
	"github.com/imhyo/lg-foss/pkg/dateutil"
)

const (
	// mailDomain completes a bare nickname into the creator email it owns
	mailDomain = "@gmail.com"

	keywordHalf    = "half"
	keywordHoliday = "holiday"
)

// run holds the mutable state of one aggregation call. It is built fresh
// per call and never shared.
type run struct {
	year      int
	userEmail string
	weeks     WeekCalendar
	grid      *StatusGrid
}

// apply folds a single event into the week table. Structurally broken
// events abort the run; events that are merely irrelevant (wrong creator,
// no keyword, out-of-range week) are ignored.
func (r *run) apply(ev source.Event) error {
	if ev.Creator == nil {
		return fmt.Errorf("%w: missing creator", ErrInvalidEvent)
	}
	if ev.Start == nil || ev.End == nil {
		return fmt.Errorf("%w: missing start or end", ErrInvalidEvent)
	}

	if ev.AllDay() {
		return r.applyAllDay(ev)
	}
	if ev.Start.DateTime == "" || ev.End.DateTime == "" {
		return fmt.Errorf("%w: start carries neither date nor dateTime", ErrInvalidEvent)
	}
	return r.applyTimed(ev)
}

// applyAllDay classifies a day-status event. Only the start date is
// marked; multi-day all-day ranges count as a single day.
func (r *run) applyAllDay(ev source.Event) error {
	day, err := time.Parse("2006-01-02", ev.Start.Date)
	if err != nil {
		return fmt.Errorf("%w: all-day date %q", ErrMalformedTimestamp, ev.Start.Date)
	}

	proposed := StatusWorkday
	switch {
	case ev.Creator.Email == r.userEmail:
		if ev.Summary == keywordHalf || ev.Location == keywordHalf {
			proposed = StatusHalfLeave
		} else {
			proposed = StatusFullLeave
		}
	case ev.Summary == keywordHoliday || ev.Location == keywordHoliday:
		proposed = StatusFullLeave
	default:
		// Someone else's event without a holiday keyword says nothing
		// about this user's week.
		return nil
	}

	date := time.Date(r.year, day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	w := dateutil.WeekIndex(r.year, date)
	if w < 0 || w >= len(r.weeks) {
		return nil
	}

	r.weeks[w].ExpectedHours -= r.grid.Escalate(day.Month(), day.Day(), proposed)
	return nil
}

// applyTimed accrues a worked-hours event created by the user themselves
func (r *run) applyTimed(ev source.Event) error {
	if ev.Creator.Email != r.userEmail {
		return nil
	}

	start, err := dateutil.ParseTimestamp(ev.Start.DateTime)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrMalformedTimestamp, ev.Start.DateTime)
	}
	end, err := dateutil.ParseTimestamp(ev.End.DateTime)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrMalformedTimestamp, ev.End.DateTime)
	}

	w := dateutil.WeekIndex(r.year, start)
	if w < 0 || w >= len(r.weeks) {
		return nil
	}

	r.weeks[w].ActualHours += end.Sub(start).Seconds() / 3600
	return nil
}
