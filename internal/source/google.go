package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleSource reads events from the Google Calendar v3 API
type GoogleSource struct {
	service *calendar.Service
	logger  *zap.Logger
}

// NewGoogleSource creates a GoogleSource authenticated with the given
// service-account credentials file
func NewGoogleSource(ctx context.Context, credentialsFile string, logger *zap.Logger) (*GoogleSource, error) {
	service, err := calendar.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(calendar.CalendarReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &GoogleSource{
		service: service,
		logger:  logger,
	}, nil
}

// FetchPage requests one events.list page for the query's time range
func (s *GoogleSource) FetchPage(ctx context.Context, q Query) (*Page, error) {
	call := s.service.Events.List(q.CalendarID).
		TimeMin(q.TimeMin.Format(time.RFC3339)).
		TimeMax(q.TimeMax.Format(time.RFC3339)).
		Context(ctx)
	if q.PageToken != "" {
		call = call.PageToken(q.PageToken)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("events.list failed for calendar %s: %w", q.CalendarID, err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromGoogleEvent(item))
	}

	s.logger.Debug("Fetched calendar page",
		zap.String("calendar_id", q.CalendarID),
		zap.Int("count", len(events)),
		zap.Bool("has_next", res.NextPageToken != ""))

	return &Page{
		Events:        events,
		NextPageToken: res.NextPageToken,
	}, nil
}

func fromGoogleEvent(item *calendar.Event) Event {
	ev := Event{
		Summary:  item.Summary,
		Location: item.Location,
	}

	if item.Creator != nil {
		ev.Creator = &Actor{Email: item.Creator.Email}
	}
	if item.Start != nil {
		ev.Start = &EventTime{
			Date:     item.Start.Date,
			DateTime: item.Start.DateTime,
			TimeZone: item.Start.TimeZone,
		}
	}
	if item.End != nil {
		ev.End = &EventTime{
			Date:     item.End.Date,
			DateTime: item.End.DateTime,
			TimeZone: item.End.TimeZone,
		}
	}

	return ev
}
