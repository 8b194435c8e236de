package source

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"
)

// ICSSource serves events parsed from a local iCalendar file, paginated
// the same way as the fixture. Useful for exported calendars and offline
// runs.
type ICSSource struct {
	filePath string
	logger   *zap.Logger
	fixture  *FixtureSource
}

// NewICSSource creates an ICSSource for the given .ics file. Load must be
// called before the first FetchPage.
func NewICSSource(filePath string, pageSize int, logger *zap.Logger) *ICSSource {
	return &ICSSource{
		filePath: filePath,
		logger:   logger,
		fixture:  NewFixtureSource(nil, pageSize, logger),
	}
}

// Load parses the ICS file into the shared event shape. VEVENTs that
// cannot be normalized are skipped, not fatal.
func (s *ICSSource) Load() error {
	file, err := os.Open(s.filePath)
	if err != nil {
		return fmt.Errorf("failed to open ICS file: %w", err)
	}
	defer file.Close()

	cal, err := ical.ParseCalendar(file)
	if err != nil {
		return fmt.Errorf("failed to parse ICS file %s: %w", s.filePath, err)
	}

	events := make([]Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, err := eventFromVEvent(ve)
		if err != nil {
			s.logger.Warn("Skipping unparsable VEVENT",
				zap.String("file", s.filePath),
				zap.Error(err))
			continue
		}
		events = append(events, ev)
	}

	s.fixture = NewFixtureSource(events, s.fixture.pageSize, s.logger)

	s.logger.Info("ICS calendar loaded",
		zap.String("file", s.filePath),
		zap.Int("events", len(events)))

	return nil
}

// FetchPage returns the next page of loaded events
func (s *ICSSource) FetchPage(ctx context.Context, q Query) (*Page, error) {
	return s.fixture.FetchPage(ctx, q)
}

func eventFromVEvent(ve *ical.VEvent) (Event, error) {
	var ev Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyOrganizer); p != nil {
		email := strings.TrimPrefix(p.Value, "mailto:")
		email = strings.TrimPrefix(email, "MAILTO:")
		ev.Creator = &Actor{Email: email}
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return ev, fmt.Errorf("missing DTSTART")
	}

	if isDateOnly(dtStart) {
		start, err := time.Parse("20060102", dtStart.Value)
		if err != nil {
			return ev, fmt.Errorf("bad DTSTART date %q: %w", dtStart.Value, err)
		}
		ev.Start = &EventTime{Date: start.Format("2006-01-02")}

		// DTEND is optional for all-day entries; fall back to the start day.
		ev.End = &EventTime{Date: ev.Start.Date}
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil && dtEnd.Value != "" {
			end, err := time.Parse("20060102", dtEnd.Value)
			if err != nil {
				return ev, fmt.Errorf("bad DTEND date %q: %w", dtEnd.Value, err)
			}
			ev.End = &EventTime{Date: end.Format("2006-01-02")}
		}
		return ev, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return ev, fmt.Errorf("bad DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return ev, fmt.Errorf("bad DTEND: %w", err)
	}

	ev.Start = &EventTime{DateTime: start.UTC().Format("2006-01-02T15:04:05Z")}
	ev.End = &EventTime{DateTime: end.UTC().Format("2006-01-02T15:04:05Z")}

	return ev, nil
}

// isDateOnly detects all-day markers: VALUE=DATE or a value without a
// time part
func isDateOnly(p *ical.IANAProperty) bool {
	if p.ICalParameters != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}
