package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolve_Monthly(t *testing.T) {
	p := Resolve(ViewMonthly, "2025-02")
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	require.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), p.End)
	require.False(t, p.Fallback)

	p = Resolve(ViewMonthly, "2024-02")
	require.Equal(t, 29, p.Days(), "leap February")

	p = Resolve(ViewMonthly, "2025-12")
	require.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), p.End)
}

func TestResolve_MonthlyFallback(t *testing.T) {
	for _, token := range []string{"", "garbage", "2025", "2025-13", "2025-00", "20xx-05"} {
		p := Resolve(ViewMonthly, token)
		require.True(t, p.Fallback, "token %q", token)
		require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
		require.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), p.End)
	}
}

func TestResolve_WeeklyAnchor(t *testing.T) {
	// Jan 1 2025 is a Wednesday; week 1 starts Sunday Jan 5.
	p := Resolve(ViewWeekly, "2025-01")
	require.Equal(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), p.Start)
	require.Equal(t, time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC), p.End)
	require.Equal(t, time.Sunday, p.Start.Weekday())
	require.Equal(t, time.Saturday, p.End.Weekday())

	// Jan 1 2023 is itself a Sunday; it starts week 1.
	p = Resolve(ViewWeekly, "2023-01")
	require.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
}

func TestResolve_WeeklyContiguous(t *testing.T) {
	prev := Resolve(ViewWeekly, "2025-01")
	for _, token := range []string{"2025-02", "2025-03", "2025-04"} {
		next := Resolve(ViewWeekly, token)
		require.Equal(t, prev.End.AddDate(0, 0, 1), next.Start, "weeks must be contiguous")
		require.Equal(t, 7, next.Days())
		prev = next
	}
}

func TestResolve_Daily(t *testing.T) {
	p := Resolve(ViewDaily, "2025-032")
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	require.Equal(t, p.Start, p.End)
	require.False(t, p.Fallback)

	// Day 366 of a non-leap year resolves into the next year: fall back
	// to January 1.
	p = Resolve(ViewDaily, "2025-366")
	require.True(t, p.Fallback)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)

	p = Resolve(ViewDaily, "2024-366")
	require.False(t, p.Fallback)
	require.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), p.Start)

	p = Resolve(ViewDaily, "2025-500")
	require.True(t, p.Fallback)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.Start)
}

func TestResolve_Deterministic(t *testing.T) {
	for _, view := range []View{ViewMonthly, ViewWeekly, ViewDaily} {
		for _, token := range []string{"2025-02", "2025-07", "", "junk"} {
			a := Resolve(view, token)
			b := Resolve(view, token)
			require.Equal(t, a, b)
			require.False(t, a.Start.After(a.End), "start must not exceed end")
		}
	}
}

func TestPeriod_WorkingDays(t *testing.T) {
	sunThu := map[time.Weekday]bool{
		time.Sunday: true, time.Monday: true, time.Tuesday: true,
		time.Wednesday: true, time.Thursday: true,
	}
	p := Resolve(ViewWeekly, "2025-01")
	require.Equal(t, 5, p.WorkingDays(sunThu))

	monFri := map[time.Weekday]bool{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
	// Feb 2025: 20 Mon-Fri working days.
	p = Resolve(ViewMonthly, "2025-02")
	require.Equal(t, 20, p.WorkingDays(monFri))
}

func TestPeriod_Contains(t *testing.T) {
	p := Resolve(ViewMonthly, "2025-02")
	require.True(t, p.Contains(time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)))
	require.True(t, p.Contains(time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC)))
	require.False(t, p.Contains(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	require.False(t, p.Contains(time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)))
}

func TestPeriod_HolidayCeiling(t *testing.T) {
	require.Equal(t, float64(8), Resolve(ViewDaily, "2025-001").HolidayCeiling())
	require.Equal(t, float64(40), Resolve(ViewWeekly, "2025-01").HolidayCeiling())
	require.Equal(t, float64(200), Resolve(ViewMonthly, "2025-01").HolidayCeiling())
}

func TestParseView(t *testing.T) {
	require.Equal(t, ViewWeekly, ParseView(" Weekly "))
	require.Equal(t, ViewDaily, ParseView("daily"))
	require.Equal(t, ViewMonthly, ParseView("monthly"))
	require.Equal(t, ViewMonthly, ParseView("quarterly"))
	require.Equal(t, ViewMonthly, ParseView(""))
}
