package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/imhyo/lg-foss/internal/source"
)

// Aggregator folds one user's calendar events for one year into a
// WeekCalendar. It holds no per-call state and is safe to reuse across
// requests; every call owns its own tables.
type Aggregator struct {
	source     source.Source
	calendarID string
	logger     *zap.Logger
	now        func() time.Time
}

// NewAggregator creates an Aggregator reading from the given source
func NewAggregator(src source.Source, calendarID string, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		source:     src,
		calendarID: calendarID,
		logger:     logger,
		now:        time.Now,
	}
}

// WeekCalendar aggregates the year's events for user (a bare nickname;
// events are owned by nickname + "@gmail.com"). Pages are fetched and
// folded strictly in order; the first failure aborts the call.
func (a *Aggregator) WeekCalendar(ctx context.Context, user string, year int) (WeekCalendar, error) {
	r := &run{
		year:      year,
		userEmail: user + mailDomain,
		weeks:     BuildWeekTable(year, asOfFor(year, a.now())),
		grid:      NewStatusGrid(),
	}

	q := source.Query{
		CalendarID: a.calendarID,
		TimeMin:    time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		TimeMax:    time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
	}

	pages := 0
	for {
		page, err := a.source.FetchPage(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		pages++

		for _, ev := range page.Events {
			if err := r.apply(ev); err != nil {
				return nil, err
			}
		}

		if page.NextPageToken == "" {
			break
		}
		q.PageToken = page.NextPageToken
	}

	for i := range r.weeks {
		r.weeks[i].ActualHours = roundHours(r.weeks[i].ActualHours)
	}

	a.logger.Info("Week calendar aggregated",
		zap.String("user", user),
		zap.Int("year", year),
		zap.Int("weeks", len(r.weeks)),
		zap.Int("pages", pages))

	return r.weeks, nil
}

// asOfFor bounds the week table: the current year stops at today, any
// other year is summarized in full.
func asOfFor(year int, today time.Time) time.Time {
	endOfYear := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	if year == today.Year() && today.Before(endOfYear) {
		return today
	}
	return endOfYear
}

// roundHours rounds to one decimal place, half away from zero
func roundHours(h float64) float64 {
	f, _ := decimal.NewFromFloat(h).Round(1).Float64()
	return f
}
