// Package timewindow splits query windows into day chunks and maps
// timestamps onto a display timeline.
package timewindow

import (
	"fmt"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/domain/entity"
)

// Fixed calendar-free durations.
const (
	Day  = 24 * time.Hour
	Week = 7 * Day
)

// Window is an absolute [Since, Until] query window.
type Window struct {
	Since time.Time
	Until time.Time
}

// Clause renders the window as an NRQL time clause in epoch milliseconds.
func (w Window) Clause() string {
	return fmt.Sprintf("SINCE %d UNTIL %d", w.Since.UnixMilli(), w.Until.UnixMilli())
}

// Plan is the set of query windows a time range is split into.
// Exactly one of Relative or Windows is set.
type Plan struct {
	Relative string
	Windows  []Window
}

// IsRelative reports whether the plan is a single relative clause.
func (p Plan) IsRelative() bool {
	return p.Relative != ""
}

// Clauses returns every NRQL time clause of the plan in chronological order.
func (p Plan) Clauses() []string {
	if p.IsRelative() {
		return []string{p.Relative}
	}
	clauses := make([]string, 0, len(p.Windows))
	for _, w := range p.Windows {
		clauses = append(clauses, w.Clause())
	}
	return clauses
}

// DayChunks splits the window of the given duration ending at now.
// Durations up to one day yield a relative clause. Longer ones yield
// consecutive one-day windows covering [now-duration, now]; the last
// window is shorter when the duration is not a whole number of days.
func DayChunks(duration time.Duration, now time.Time) Plan {
	if duration <= Day {
		return Plan{Relative: entity.TimeRange{Duration: duration}.SinceClause()}
	}

	start := now.Add(-duration)
	windows := make([]Window, 0, int(duration/Day)+1)
	for since := start; since.Before(now); since = since.Add(Day) {
		until := since.Add(Day)
		if until.After(now) {
			until = now
		}
		windows = append(windows, Window{Since: since, Until: until})
	}
	return Plan{Windows: windows}
}
