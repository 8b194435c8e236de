package source

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

const defaultPageSize = 250

// FixtureSource serves a fixed in-memory event list with real pagination.
// It stands in for the live calendar when the API is unreachable (local
// development) and backs the reserved "test" user.
type FixtureSource struct {
	events   []Event
	pageSize int
	logger   *zap.Logger
}

// NewFixtureSource creates a FixtureSource serving the given events in
// pages of pageSize. pageSize <= 0 falls back to the default.
func NewFixtureSource(events []Event, pageSize int, logger *zap.Logger) *FixtureSource {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &FixtureSource{
		events:   events,
		pageSize: pageSize,
		logger:   logger,
	}
}

// FetchPage returns the next slice of fixture events. The continuation
// token is the integer offset of the next unread event.
func (s *FixtureSource) FetchPage(ctx context.Context, q Query) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := 0
	if q.PageToken != "" {
		n, err := strconv.Atoi(q.PageToken)
		if err != nil || n < 0 || n > len(s.events) {
			return nil, fmt.Errorf("invalid page token %q", q.PageToken)
		}
		offset = n
	}

	end := offset + s.pageSize
	next := ""
	if end >= len(s.events) {
		end = len(s.events)
	} else {
		next = strconv.Itoa(end)
	}

	s.logger.Debug("Serving fixture page",
		zap.Int("offset", offset),
		zap.Int("count", end-offset),
		zap.String("next_token", next))

	return &Page{
		Events:        s.events[offset:end],
		NextPageToken: next,
	}, nil
}

// Fixture2015 returns the built-in 2015 sample calendar: two company
// holidays, leave entries from two users (one with a backwards date range)
// and three timed work sessions belonging to the "test" user.
func Fixture2015() []Event {
	return []Event{
		{
			Summary: "holiday",
			Creator: &Actor{Email: "hyojun.im@gmail.com"},
			Start:   &EventTime{Date: "2015-01-01"},
			End:     &EventTime{Date: "2015-01-01"},
		},
		{
			Summary: "holiday",
			Creator: &Actor{Email: "hyojun.im@gmail.com"},
			Start:   &EventTime{Date: "2015-01-07"},
			End:     &EventTime{Date: "2015-01-07"},
		},
		{
			// Backwards range; only the start date ever counts.
			Summary: "leave",
			Creator: &Actor{Email: "somebody.else@gmail.com"},
			Start:   &EventTime{Date: "2015-01-08"},
			End:     &EventTime{Date: "2015-01-07"},
		},
		{
			Summary: "leave",
			Creator: &Actor{Email: "hyojun.im@gmail.com"},
			Start:   &EventTime{Date: "2015-01-02"},
			End:     &EventTime{Date: "2015-01-07"},
		},
		{
			Summary: "work",
			Creator: &Actor{Email: "test@gmail.com"},
			Start:   &EventTime{DateTime: "2015-01-02T09:00:00Z"},
			End:     &EventTime{DateTime: "2015-01-02T17:00:00Z"},
		},
		{
			Summary: "work",
			Creator: &Actor{Email: "test@gmail.com"},
			Start:   &EventTime{DateTime: "2015-01-06T11:00:00Z"},
			End:     &EventTime{DateTime: "2015-01-06T18:00:00Z"},
		},
		{
			Summary: "work",
			Creator: &Actor{Email: "test@gmail.com"},
			Start:   &EventTime{DateTime: "2015-01-09T09:00:00Z"},
			End:     &EventTime{DateTime: "2015-01-09T15:00:00Z"},
		},
		{
			Summary: "holiday",
			Creator: &Actor{Email: "test@gmail.com"},
			Start:   &EventTime{Date: "2015-02-18"},
			End:     &EventTime{Date: "2015-02-18"},
		},
	}
}
