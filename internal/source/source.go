package source

import (
	"context"
	"time"
)

// Actor identifies who created an event
type Actor struct {
	Email string `json:"email"`
}

// EventTime is one end of an event: either a date-only marker (all-day
// events) or a full timestamp (timed events), never both
type EventTime struct {
	Date     string `json:"date,omitempty"`     // "2006-01-02"
	DateTime string `json:"dateTime,omitempty"` // RFC3339
	TimeZone string `json:"timeZone,omitempty"`
}

// Event is a single calendar entry in the Google Calendar v3 shape.
// Every source implementation normalizes its events into this form.
type Event struct {
	Summary  string     `json:"summary"`
	Location string     `json:"location,omitempty"`
	Creator  *Actor     `json:"creator,omitempty"`
	Start    *EventTime `json:"start,omitempty"`
	End      *EventTime `json:"end,omitempty"`
}

// AllDay reports whether the event carries a date-only start marker
func (e Event) AllDay() bool {
	return e.Start != nil && e.Start.Date != ""
}

// Query bounds one page request. TimeMin is inclusive, TimeMax exclusive;
// PageToken is empty for the first page and echoes NextPageToken afterwards.
type Query struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	PageToken  string
}

// Page is one chunk of a paginated event listing. A non-empty
// NextPageToken means more pages exist for the same query.
type Page struct {
	Events        []Event
	NextPageToken string
}

// Source is a paginated calendar event feed
type Source interface {
	// FetchPage requests one page of events for the query's time range
	FetchPage(ctx context.Context, q Query) (*Page, error)
}
