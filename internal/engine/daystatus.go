package engine

import "time"

// DayStatus classifies one calendar day of the target year. The order is
// total: a day only ever moves toward "more absent", never back.
type DayStatus int

const (
	StatusWorkday DayStatus = iota
	StatusHalfLeave
	StatusFullLeave // full-day leave or company holiday
)

func (s DayStatus) String() string {
	switch s {
	case StatusWorkday:
		return "workday"
	case StatusHalfLeave:
		return "half-leave"
	case StatusFullLeave:
		return "full-leave"
	default:
		return "unknown"
	}
}

// Escalate applies the monotonic upgrade rule: a proposal weaker than or
// equal to the current status is a no-op, a stronger one wins and each
// step taken removes half a workday (4h) of expected time. The returned
// delta is the number of expected hours to subtract.
func Escalate(current, proposed DayStatus) (DayStatus, float64) {
	if proposed <= current {
		return current, 0
	}
	return proposed, float64(proposed-current) * halfLeaveHours
}

// StatusGrid tracks the status of every day of one year, keyed by
// (month, day) with 1-based indices. The zero value is all-workdays.
type StatusGrid [13][32]DayStatus

// NewStatusGrid returns a grid with every day a workday
func NewStatusGrid() *StatusGrid {
	return &StatusGrid{}
}

// At returns the current status of the given day
func (g *StatusGrid) At(month time.Month, day int) DayStatus {
	return g[month][day]
}

// Escalate upgrades the given day towards proposed and returns the
// expected-hours reduction caused by the transition (0 if nothing changed)
func (g *StatusGrid) Escalate(month time.Month, day int, proposed DayStatus) float64 {
	next, delta := Escalate(g[month][day], proposed)
	g[month][day] = next
	return delta
}
