// Package daterange provides calendar-day arithmetic over half-open stay
// ranges. A stay [Start, End) occupies every night from Start up to, but not
// including, the checkout day End.
package daterange

import (
	"fmt"
	"math"
	"time"
)

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

const day = 24 * time.Hour

// Range is a half-open calendar-day interval.
type Range struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// New builds a Range with both bounds truncated to calendar days.
func New(start, end time.Time) Range {
	return Range{Start: Day(start), End: Day(end)}
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse parses a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Valid reports whether the range ends after it starts.
func (r Range) Valid() bool {
	return Day(r.End).After(Day(r.Start))
}

// Nights returns ceil((End-Start) / 1 day). Invalid ranges yield 0.
func (r Range) Nights() int {
	d := r.End.Sub(r.Start)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d) / float64(day)))
}

// Days lists every calendar day in [Start, End).
func (r Range) Days() []time.Time {
	start, end := Day(r.Start), Day(r.End)
	var days []time.Time
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether the calendar day of t falls inside [Start, End).
func (r Range) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(Day(r.Start)) && d.Before(Day(r.End))
}

// Shift moves both bounds by the given number of days.
func (r Range) Shift(days int) Range {
	return Range{Start: r.Start.AddDate(0, 0, days), End: r.End.AddDate(0, 0, days)}
}

// String renders the range as "YYYY-MM-DD to YYYY-MM-DD".
func (r Range) String() string {
	return Format(r.Start) + " to " + Format(r.End)
}

// Overlaps reports whether two stays collide. A checkout and a check-in on the
// same calendar day never collide (noon turnover); otherwise the usual
// half-open overlap applies. Overlaps(a, b) == Overlaps(b, a).
func Overlaps(a, b Range) bool {
	aStart, aEnd := Day(a.Start), Day(a.End)
	bStart, bEnd := Day(b.Start), Day(b.End)

	if aEnd.Equal(bStart) || bEnd.Equal(aStart) {
		return false
	}
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Turnover reports whether one range ends on the day the other begins.
func Turnover(a, b Range) bool {
	return Day(a.End).Equal(Day(b.Start)) || Day(b.End).Equal(Day(a.Start))
}
