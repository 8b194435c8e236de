package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/imhyo/lg-foss/internal/engine"
)

// testUser is the reserved nickname served from the built-in fixture
// instead of the live calendar
const testUser = "test"

const (
	minYear = 1900
	maxYear = 9999
)

// Handler serves the weekly working-hours dashboard
type Handler struct {
	live      *engine.Aggregator
	fixture   *engine.Aggregator
	authorize Authorizer
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a Handler. live and fixture may share the same
// aggregator when the deployment itself runs on fixture data.
func NewHandler(live, fixture *engine.Aggregator, authorize Authorizer, logger *zap.Logger) *Handler {
	return &Handler{
		live:      live,
		fixture:   fixture,
		authorize: authorize,
		logger:    logger,
		now:       time.Now,
	}
}

// weekDTO is one dashboard row
type weekDTO struct {
	WeekStart     string  `json:"week_start"`
	WeekEnd       string  `json:"week_end"`
	ActualHours   float64 `json:"actual_hours"`
	ExpectedHours float64 `json:"expected_hours"`
}

func toWeekDTOs(weeks engine.WeekCalendar) []weekDTO {
	out := make([]weekDTO, 0, len(weeks))
	for _, w := range weeks {
		out = append(out, weekDTO{
			WeekStart:     w.Start.Format("2006-01-02"),
			WeekEnd:       w.End.Format("2006-01-02"),
			ActualHours:   w.ActualHours,
			ExpectedHours: w.ExpectedHours,
		})
	}
	return out
}

// GetWeeks returns the JSON week calendar for ?user=&year=
func (h *Handler) GetWeeks(w http.ResponseWriter, r *http.Request) {
	user, year, weeks, ok := h.aggregate(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":  user,
		"year":  year,
		"weeks": toWeekDTOs(weeks),
	})
}

// Dashboard renders the HTML week table
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, year, weeks, ok := h.aggregate(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTemplate.Execute(w, struct {
		User  string
		Year  int
		Weeks []weekDTO
	}{User: user, Year: year, Weeks: toWeekDTOs(weeks)}); err != nil {
		h.logger.Error("Failed to render dashboard", zap.Error(err))
	}
}

// aggregate resolves the request parameters and runs the engine. On
// failure it writes the error response and returns ok=false.
func (h *Handler) aggregate(w http.ResponseWriter, r *http.Request) (string, int, engine.WeekCalendar, bool) {
	user := r.URL.Query().Get("user")
	if user == "" {
		user = identityFrom(r.Context())
	}

	year := h.now().Year()
	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		n, err := strconv.Atoi(yearStr)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("year %q is not a number", yearStr))
			return "", 0, nil, false
		}
		year = n
	}
	if year < minYear || year > maxYear {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("year should be between %d and %d", minYear, maxYear))
		return "", 0, nil, false
	}

	agg := h.live
	if user == testUser {
		agg = h.fixture
	}

	weeks, err := agg.WeekCalendar(r.Context(), user, year)
	if err != nil {
		h.logger.Error("Aggregation failed",
			zap.String("user", user),
			zap.Int("year", year),
			zap.Error(err))

		switch {
		case errors.Is(err, engine.ErrSourceUnavailable):
			h.writeError(w, http.StatusServiceUnavailable, "calendar source unavailable")
		case errors.Is(err, engine.ErrInvalidEvent), errors.Is(err, engine.ErrMalformedTimestamp):
			h.writeError(w, http.StatusBadGateway, "calendar returned unusable event data")
		default:
			h.writeError(w, http.StatusInternalServerError, "internal error")
		}
		return "", 0, nil, false
	}

	return user, year, weeks, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Working hours {{.Year}} - {{.User}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; text-align: right; }
th { background: #f0f0f0; }
</style>
</head>
<body>
<h1>{{.User}} &mdash; {{.Year}}</h1>
<table>
<tr><th>Week start</th><th>Week end</th><th>Actual</th><th>Expected</th></tr>
{{range .Weeks}}<tr><td>{{.WeekStart}}</td><td>{{.WeekEnd}}</td><td>{{.ActualHours}}</td><td>{{.ExpectedHours}}</td></tr>
{{end}}</table>
</body>
</html>
`))
