package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/imhyo/lg-foss/internal/source"
)

// stubSource serves pre-built pages in order, ignoring the query
type stubSource struct {
	pages []source.Page
	err   error
	calls int
}

func (s *stubSource) FetchPage(ctx context.Context, q source.Query) (*source.Page, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.calls >= len(s.pages) {
		return &source.Page{}, nil
	}
	p := s.pages[s.calls]
	s.calls++
	return &p, nil
}

func allDay(summary, email, day string) source.Event {
	return source.Event{
		Summary: summary,
		Creator: &source.Actor{Email: email},
		Start:   &source.EventTime{Date: day},
		End:     &source.EventTime{Date: day},
	}
}

func timed(summary, email, start, end string) source.Event {
	return source.Event{
		Summary: summary,
		Creator: &source.Actor{Email: email},
		Start:   &source.EventTime{DateTime: start},
		End:     &source.EventTime{DateTime: end},
	}
}

func newTestAggregator(src source.Source, today time.Time) *Aggregator {
	agg := NewAggregator(src, "primary", zap.NewNop())
	agg.now = func() time.Time { return today }
	return agg
}

func singlePage(events ...source.Event) *stubSource {
	return &stubSource{pages: []source.Page{{Events: events}}}
}

func TestWeekCalendar_FixtureScenario(t *testing.T) {
	src := source.NewFixtureSource(source.Fixture2015(), 3, zap.NewNop())
	agg := newTestAggregator(src, date(2016, 6, 1))

	weeks, err := agg.WeekCalendar(context.Background(), "test", 2015)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	if len(weeks) != 53 {
		t.Fatalf("week count = %d, want 53", len(weeks))
	}

	// Week 0 (Jan 1-4): 16h base minus the Jan 1 holiday, one 8h session.
	if weeks[0].ExpectedHours != 8 {
		t.Errorf("week 0 expected hours = %v, want 8", weeks[0].ExpectedHours)
	}
	if weeks[0].ActualHours != 8.0 {
		t.Errorf("week 0 actual hours = %v, want 8.0", weeks[0].ActualHours)
	}

	// Week 1 (Jan 5-11): 40h base minus the Jan 7 holiday, 7h + 6h worked.
	// The backwards "leave" range from another user must change nothing.
	if weeks[1].ExpectedHours != 32 {
		t.Errorf("week 1 expected hours = %v, want 32", weeks[1].ExpectedHours)
	}
	if weeks[1].ActualHours != 13.0 {
		t.Errorf("week 1 actual hours = %v, want 13.0", weeks[1].ActualHours)
	}

	// Week 7 (Feb 16-22): the user's own Feb 18 entry counts as full leave.
	if weeks[7].ExpectedHours != 32 {
		t.Errorf("week 7 expected hours = %v, want 32", weeks[7].ExpectedHours)
	}

	for i, w := range weeks {
		if i != 0 && i != 1 && w.ActualHours != 0 {
			t.Errorf("week %d actual hours = %v, want 0", i, w.ActualHours)
		}
	}
}

func TestWeekCalendar_OtherUserSeesOwnLeave(t *testing.T) {
	src := source.NewFixtureSource(source.Fixture2015(), 0, zap.NewNop())
	agg := newTestAggregator(src, date(2016, 6, 1))

	weeks, err := agg.WeekCalendar(context.Background(), "hyojun.im", 2015)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	// Jan 1 holiday plus the user's own Jan 2 leave empty the first week.
	if weeks[0].ExpectedHours != 0 {
		t.Errorf("week 0 expected hours = %v, want 0", weeks[0].ExpectedHours)
	}
	// The timed sessions belong to test@gmail.com, not this user.
	if weeks[0].ActualHours != 0 || weeks[1].ActualHours != 0 {
		t.Errorf("actual hours = %v / %v, want 0 for both weeks",
			weeks[0].ActualHours, weeks[1].ActualHours)
	}
}

func TestWeekCalendar_PaginationEquivalence(t *testing.T) {
	today := date(2016, 6, 1)

	onePass, err := newTestAggregator(
		source.NewFixtureSource(source.Fixture2015(), 100, zap.NewNop()), today).
		WeekCalendar(context.Background(), "test", 2015)
	if err != nil {
		t.Fatalf("single-page WeekCalendar() error = %v", err)
	}

	paged, err := newTestAggregator(
		source.NewFixtureSource(source.Fixture2015(), 1, zap.NewNop()), today).
		WeekCalendar(context.Background(), "test", 2015)
	if err != nil {
		t.Fatalf("paged WeekCalendar() error = %v", err)
	}

	if !reflect.DeepEqual(onePass, paged) {
		t.Errorf("paged aggregation differs from single-pass aggregation")
	}
}

func TestWeekCalendar_EscalationOrderIndependent(t *testing.T) {
	half := allDay("half", "alice@gmail.com", "2015-03-10")
	full := allDay("holiday", "boss@gmail.com", "2015-03-10")
	today := date(2016, 6, 1)

	for name, events := range map[string][]source.Event{
		"half then full": {half, full},
		"full then half": {full, half},
	} {
		agg := newTestAggregator(singlePage(events...), today)
		weeks, err := agg.WeekCalendar(context.Background(), "alice", 2015)
		if err != nil {
			t.Fatalf("%s: WeekCalendar() error = %v", name, err)
		}

		// Mar 10, 2015 is in week 10; 40h base minus one full day.
		if weeks[10].ExpectedHours != 32 {
			t.Errorf("%s: week 10 expected hours = %v, want 32", name, weeks[10].ExpectedHours)
		}
	}
}

func TestWeekCalendar_DuplicateAllDayIsIdempotent(t *testing.T) {
	holiday := allDay("holiday", "boss@gmail.com", "2015-03-10")
	agg := newTestAggregator(singlePage(holiday, holiday), date(2016, 6, 1))

	weeks, err := agg.WeekCalendar(context.Background(), "alice", 2015)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	if weeks[10].ExpectedHours != 32 {
		t.Errorf("week 10 expected hours = %v, want 32 after duplicate holiday", weeks[10].ExpectedHours)
	}
}

func TestWeekCalendar_CurrentYearStopsAtToday(t *testing.T) {
	src := source.NewFixtureSource(source.Fixture2015(), 0, zap.NewNop())
	agg := newTestAggregator(src, date(2015, 1, 14))

	weeks, err := agg.WeekCalendar(context.Background(), "test", 2015)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	// Jan 1 .. Jan 14 is three buckets; the Feb 18 entry falls outside
	// the window and must be ignored without mutation.
	if len(weeks) != 3 {
		t.Fatalf("week count = %d, want 3", len(weeks))
	}
	if weeks[0].ExpectedHours != 8 || weeks[1].ExpectedHours != 32 {
		t.Errorf("expected hours = %v / %v, want 8 / 32",
			weeks[0].ExpectedHours, weeks[1].ExpectedHours)
	}
}

func TestWeekCalendar_OutOfRangeTimedEventIgnored(t *testing.T) {
	work := timed("work", "test@gmail.com", "2015-02-02T09:00:00Z", "2015-02-02T17:00:00Z")
	agg := newTestAggregator(singlePage(work), date(2015, 1, 14))

	weeks, err := agg.WeekCalendar(context.Background(), "test", 2015)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	for i, w := range weeks {
		if w.ActualHours != 0 {
			t.Errorf("week %d actual hours = %v, want 0", i, w.ActualHours)
		}
	}
}

func TestWeekCalendar_FutureYearSummarizedInFull(t *testing.T) {
	agg := newTestAggregator(singlePage(), date(2016, 6, 1))

	weeks, err := agg.WeekCalendar(context.Background(), "test", 2030)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	total := 0.0
	for _, w := range weeks {
		total += w.ExpectedHours
	}
	if total != 261*8 {
		t.Errorf("total expected hours = %v, want %v for a full 2030", total, 261*8)
	}
}

func TestWeekCalendar_RoundsToOneDecimal(t *testing.T) {
	work := timed("work", "test@gmail.com", "2015-01-02T09:00:00Z", "2015-01-02T09:20:00Z")
	agg := newTestAggregator(singlePage(work), date(2016, 6, 1))

	weeks, err := agg.WeekCalendar(context.Background(), "test", 2015)
	if err != nil {
		t.Fatalf("WeekCalendar() error = %v", err)
	}

	if weeks[0].ActualHours != 0.3 {
		t.Errorf("week 0 actual hours = %v, want 0.3", weeks[0].ActualHours)
	}
}

func TestWeekCalendar_SourceFailure(t *testing.T) {
	agg := newTestAggregator(&stubSource{err: errors.New("boom")}, date(2016, 6, 1))

	_, err := agg.WeekCalendar(context.Background(), "test", 2015)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("error = %v, want ErrSourceUnavailable", err)
	}
}

func TestWeekCalendar_InvalidEvents(t *testing.T) {
	tests := []struct {
		name string
		ev   source.Event
	}{
		{
			name: "missing creator",
			ev: source.Event{
				Summary: "work",
				Start:   &source.EventTime{DateTime: "2015-01-02T09:00:00Z"},
				End:     &source.EventTime{DateTime: "2015-01-02T17:00:00Z"},
			},
		},
		{
			name: "missing end",
			ev: source.Event{
				Summary: "work",
				Creator: &source.Actor{Email: "test@gmail.com"},
				Start:   &source.EventTime{DateTime: "2015-01-02T09:00:00Z"},
			},
		},
		{
			name: "start carries neither marker",
			ev: source.Event{
				Summary: "work",
				Creator: &source.Actor{Email: "test@gmail.com"},
				Start:   &source.EventTime{},
				End:     &source.EventTime{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregator(singlePage(tt.ev), date(2016, 6, 1))

			_, err := agg.WeekCalendar(context.Background(), "test", 2015)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("error = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestWeekCalendar_MalformedTimestamps(t *testing.T) {
	tests := []struct {
		name string
		ev   source.Event
	}{
		{"bad timed start", timed("work", "test@gmail.com", "2015-13-40T09:00:00Z", "2015-01-02T17:00:00Z")},
		{"bad timed end", timed("work", "test@gmail.com", "2015-01-02T09:00:00Z", "not-a-timestamp")},
		{"bad all-day date", allDay("holiday", "boss@gmail.com", "2015-02-31")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := newTestAggregator(singlePage(tt.ev), date(2016, 6, 1))

			_, err := agg.WeekCalendar(context.Background(), "test", 2015)
			if !errors.Is(err, ErrMalformedTimestamp) {
				t.Errorf("error = %v, want ErrMalformedTimestamp", err)
			}
		})
	}
}
