package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// View selects the granularity of a reporting window.
type View string

const (
	ViewMonthly View = "monthly"
	ViewWeekly  View = "weekly"
	ViewDaily   View = "daily"
)

// ParseView normalizes a caller-supplied view string. Unknown values map to
// the monthly view.
func ParseView(s string) View {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case ViewWeekly:
		return ViewWeekly
	case ViewDaily:
		return ViewDaily
	default:
		return ViewMonthly
	}
}

// Period is an inclusive [Start, End] date range derived from a
// (view, token) pair. Start and End are UTC midnights.
type Period struct {
	View  View
	Token string
	Start time.Time
	End   time.Time

	// Fallback is set when the token could not be honored and a default
	// range was substituted. Callers decide whether to log it.
	Fallback bool
}

// Defaults used when a token is absent or unparsable. The period encoding
// carries a single reference year; 2025 ranges mirror the upstream
// dashboards.
var (
	defaultMonthStart = date(2025, time.January, 1)
	defaultWeekStart  = date(2025, time.January, 5)
	defaultDay        = date(2025, time.January, 1)
)

// Resolve turns a (view, token) pair into a concrete period. It is pure and
// total: bad input yields a view-specific default range with Fallback set,
// never an error.
//
// Token formats: monthly "YYYY-MM", weekly "YYYY-NN" (week 1 starts on the
// first Sunday on or after January 1), daily "YYYY-DDD" (1-based
// day-of-year).
func Resolve(view View, token string) Period {
	switch view {
	case ViewWeekly:
		return resolveWeekly(token)
	case ViewDaily:
		return resolveDaily(token)
	default:
		return resolveMonthly(token)
	}
}

func resolveMonthly(token string) Period {
	year, month, ok := splitToken(token)
	if !ok || month < 1 || month > 12 {
		return Period{
			View: ViewMonthly, Token: token,
			Start: defaultMonthStart,
			End:   endOfMonth(defaultMonthStart),
			Fallback: true,
		}
	}
	start := date(year, time.Month(month), 1)
	return Period{View: ViewMonthly, Token: token, Start: start, End: endOfMonth(start)}
}

func resolveWeekly(token string) Period {
	year, week, ok := splitToken(token)
	if !ok || week < 1 {
		return Period{
			View: ViewWeekly, Token: token,
			Start: defaultWeekStart,
			End:   defaultWeekStart.AddDate(0, 0, 6),
			Fallback: true,
		}
	}
	start := firstSunday(year).AddDate(0, 0, 7*(week-1))
	return Period{View: ViewWeekly, Token: token, Start: start, End: start.AddDate(0, 0, 6)}
}

func resolveDaily(token string) Period {
	year, day, ok := splitToken(token)
	if !ok {
		return Period{View: ViewDaily, Token: token, Start: defaultDay, End: defaultDay, Fallback: true}
	}
	fallback := false
	if day < 1 || day > 366 {
		day = 1
		fallback = true
	}
	target := date(year, time.January, 1).AddDate(0, 0, day-1)
	if target.Year() != year {
		target = date(year, time.January, 1)
		fallback = true
	}
	return Period{View: ViewDaily, Token: token, Start: target, End: target, Fallback: fallback}
}

// Days returns the number of calendar days covered, inclusive.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// WorkingDays counts the days in the period whose weekday is in the given
// working set.
func (p Period) WorkingDays(weekdays map[time.Weekday]bool) int {
	n := 0
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		if weekdays[d.Weekday()] {
			n++
		}
	}
	return n
}

// Contains reports whether the given instant's calendar date falls inside
// the period.
func (p Period) Contains(t time.Time) bool {
	day := date(t.Year(), t.Month(), t.Day())
	return !day.Before(p.Start) && !day.After(p.End)
}

// StartOfDay returns the period start as a timestamp (00:00:00).
func (p Period) StartOfDay() time.Time { return p.Start }

// EndOfDay returns the last instant of the period's final day (23:59:59).
func (p Period) EndOfDay() time.Time {
	return p.End.Add(24*time.Hour - time.Second)
}

// HolidayCeiling is the per-view upper bound on holiday-hour deductions,
// guarding against malformed holiday records that span absurd ranges.
func (p Period) HolidayCeiling() float64 {
	switch p.View {
	case ViewDaily:
		return 8
	case ViewWeekly:
		return 40
	default:
		return 200
	}
}

func (p Period) String() string {
	return fmt.Sprintf("%s %s..%s", p.View, p.Start.Format("2006-01-02"), p.End.Format("2006-01-02"))
}

// splitToken parses "YYYY-N" tokens into their two integer parts.
func splitToken(token string) (int, int, bool) {
	parts := strings.SplitN(strings.TrimSpace(token), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return year, n, true
}

// firstSunday returns January 1 of the year when it is a Sunday, otherwise
// the first Sunday after it.
func firstSunday(year int) time.Time {
	jan1 := date(year, time.January, 1)
	offset := (7 - int(jan1.Weekday())) % 7
	return jan1.AddDate(0, 0, offset)
}

func endOfMonth(start time.Time) time.Time {
	return start.AddDate(0, 1, 0).AddDate(0, 0, -1)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
