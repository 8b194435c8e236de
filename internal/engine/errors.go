package engine

import "errors"

var (
	// ErrSourceUnavailable is returned when a page fetch fails. Pages
	// already folded stay folded; the aggregation cannot complete.
	ErrSourceUnavailable = errors.New("event source unavailable")

	// ErrMalformedTimestamp is returned when an event date or timestamp
	// fails fixed-format parsing. The whole aggregation is aborted so a
	// bad payload can never produce silently wrong totals.
	ErrMalformedTimestamp = errors.New("malformed event timestamp")

	// ErrInvalidEvent is returned when an event is missing a field the
	// classifier needs (creator, start or end).
	ErrInvalidEvent = errors.New("invalid event")
)
