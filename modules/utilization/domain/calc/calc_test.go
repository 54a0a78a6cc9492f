package calc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/domain/workforce"
)

func dt(s string) time.Time {
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestSlotContribution_FullyContained(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	slot := workforce.PlanningSlot{
		ResourceID:     1,
		Start:          dt("2025-02-10 09:00:00"),
		End:            dt("2025-02-10 13:00:00"),
		AllocatedHours: 4,
	}
	require.Equal(t, 4.0, SlotContribution(slot, p))
}

func TestSlotContribution_Straddling(t *testing.T) {
	// 60h span, 30h of which fall inside February.
	p := period.Resolve(period.ViewMonthly, "2025-02")
	slot := workforce.PlanningSlot{
		ResourceID:     1,
		Start:          dt("2025-01-30 18:00:00"),
		End:            dt("2025-02-02 06:00:00"),
		AllocatedHours: 24,
	}
	got := SlotContribution(slot, p)
	require.InDelta(t, 12.0, got, 1e-9)
	require.Less(t, got, 24.0)
}

func TestSlotContribution_Bounds(t *testing.T) {
	p := period.Resolve(period.ViewWeekly, "2025-06")
	slots := []workforce.PlanningSlot{
		{Start: dt("2025-01-01 09:00:00"), End: dt("2025-01-01 17:00:00"), AllocatedHours: 8},
		{Start: dt("2025-02-01 00:00:00"), End: dt("2025-03-15 00:00:00"), AllocatedHours: 100},
		{Start: dt("2025-02-09 00:00:00"), End: dt("2025-02-09 08:00:00"), AllocatedHours: 8},
		{Start: dt("2025-02-12 12:00:00"), End: dt("2025-02-12 12:00:00"), AllocatedHours: 3},
	}
	for _, slot := range slots {
		got := SlotContribution(slot, p)
		require.GreaterOrEqual(t, got, 0.0)
		require.LessOrEqual(t, got, slot.AllocatedHours)
	}
}

func TestSlotContribution_NoOverlap(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	slot := workforce.PlanningSlot{
		Start:          dt("2025-03-01 00:00:00"),
		End:            dt("2025-03-02 00:00:00"),
		AllocatedHours: 8,
	}
	require.Zero(t, SlotContribution(slot, p))
}

func TestHolidayHours_FullDaysOnly(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	weekdays := workforce.DefaultWeekdays()

	// Covers Tue Feb 25 and Wed Feb 26 entirely: two working days.
	h := workforce.Holiday{Start: dt("2025-02-25 00:00:00"), End: dt("2025-02-26 23:59:59")}
	require.Equal(t, 16.0, HolidayHours(h, p, weekdays))

	// Half-day coverage deducts nothing.
	h = workforce.Holiday{Start: dt("2025-02-25 12:00:00"), End: dt("2025-02-25 23:59:59")}
	require.Zero(t, HolidayHours(h, p, weekdays))

	// A holiday landing on a non-working day deducts nothing.
	h = workforce.Holiday{Start: dt("2025-02-28 00:00:00"), End: dt("2025-02-28 23:59:59")} // Friday
	require.Zero(t, HolidayHours(h, p, weekdays))
}

func TestHolidayHours_MalformedRange(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	h := workforce.Holiday{Start: dt("2025-02-10 00:00:00"), End: dt("2025-02-09 00:00:00")}
	require.Zero(t, HolidayHours(h, p, workforce.DefaultWeekdays()))
}

func TestCompute_SingleSlotScenario(t *testing.T) {
	// Monthly 2025-02, one 4-hour slot entirely on Feb 10, no holidays,
	// no time off.
	p := period.Resolve(period.ViewMonthly, "2025-02")
	in := Input{
		Scope:  "Creative",
		Period: p,
		Employees: []workforce.Employee{
			{ID: 1, Name: "Dana", Tags: []string{"KSA"}},
		},
		Slots: []workforce.PlanningSlot{{
			ResourceID:     1,
			Start:          dt("2025-02-10 09:00:00"),
			End:            dt("2025-02-10 13:00:00"),
			AllocatedHours: 4,
		}},
	}
	res := Compute(in, time.Now())
	require.Len(t, res.Employees, 1)
	m := res.Employees[0]
	require.Equal(t, 4.0, m.PlannedHours)
	// Feb 2025 has 20 Sunday-Thursday working days.
	require.Equal(t, 160.0, m.BaseHours)
	require.Equal(t, 160.0, m.AvailableHours)
	require.Zero(t, m.TimeOffHours)
	require.Zero(t, m.HolidayHours)
}

func TestCompute_TimeOffNeverLogged(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	in := Input{
		Scope:     "Creative",
		Period:    p,
		Employees: []workforce.Employee{{ID: 1, Name: "Dana"}},
		Timesheets: []workforce.TimesheetEntry{
			{EmployeeID: 1, Hours: 8, TaskName: workforce.TimeOffTaskName, Date: dt("2025-02-03 00:00:00")},
			{EmployeeID: 1, Hours: 6, TaskName: "Design", Date: dt("2025-02-04 00:00:00")},
			// Outside the period: ignored entirely.
			{EmployeeID: 1, Hours: 5, TaskName: "Design", Date: dt("2025-03-04 00:00:00")},
		},
	}
	res := Compute(in, time.Now())
	m := res.Employees[0]
	require.Equal(t, 8.0, m.TimeOffHours)
	require.Equal(t, 6.0, m.LoggedHours)
	require.Equal(t, 152.0, m.AvailableHours)
}

func TestCompute_UnbilledTracked(t *testing.T) {
	p := period.Resolve(period.ViewWeekly, "2025-06")
	in := Input{
		Scope:     "Creative",
		Period:    p,
		Employees: []workforce.Employee{{ID: 1, Name: "Dana"}},
		Timesheets: []workforce.TimesheetEntry{
			{EmployeeID: 1, Hours: 5, TaskName: "Client work", Date: dt("2025-02-09 00:00:00")},
			{EmployeeID: 1, Hours: 3, TaskName: "Ops support", Date: dt("2025-02-10 00:00:00"), Unbilled: true},
		},
	}
	m := Compute(in, time.Now()).Employees[0]
	require.Equal(t, 8.0, m.LoggedHours)
	require.Equal(t, 3.0, m.UnbilledHours)
}

func TestCompute_AvailableNeverNegative(t *testing.T) {
	p := period.Resolve(period.ViewDaily, "2025-033") // Sunday Feb 2
	in := Input{
		Scope:     "Creative",
		Period:    p,
		Employees: []workforce.Employee{{ID: 1, Name: "Dana"}},
		Timesheets: []workforce.TimesheetEntry{
			// Inconsistent source data: more time off than the day holds.
			{EmployeeID: 1, Hours: 20, TaskName: workforce.TimeOffTaskName, Date: dt("2025-02-02 00:00:00")},
		},
	}
	m := Compute(in, time.Now()).Employees[0]
	require.Equal(t, 8.0, m.BaseHours)
	require.Zero(t, m.AvailableHours)
}

func TestCompute_HolidayCeiling(t *testing.T) {
	// An employee working all seven weekdays against a holiday covering
	// the entire month would lose 248h; the monthly ceiling caps it.
	p := period.Resolve(period.ViewMonthly, "2025-03")
	all := map[time.Weekday]bool{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		all[d] = true
	}
	in := Input{
		Scope:     "Creative",
		Period:    p,
		Employees: []workforce.Employee{{ID: 1, Name: "Dana", CalendarID: 9}},
		Calendars: map[int64]workforce.WorkCalendar{9: {ID: 9, Weekdays: all}},
		Holidays: []workforce.Holiday{{
			Name:  "Malformed",
			Start: dt("2025-03-01 00:00:00"),
			End:   dt("2025-03-31 23:59:59"),
		}},
	}
	m := Compute(in, time.Now()).Employees[0]
	require.Equal(t, 200.0, m.HolidayHours)
	require.Equal(t, 248.0-200.0, m.AvailableHours)
}

func TestCompute_HolidayCompanyScoping(t *testing.T) {
	p := period.Resolve(period.ViewWeekly, "2025-09")
	// Week 9 of 2025: Mar 2 (Sunday) - Mar 8. Holiday covers Mon Mar 3.
	holiday := workforce.Holiday{
		Name:      "KSA National Day",
		Start:     dt("2025-03-03 00:00:00"),
		End:       dt("2025-03-03 23:59:59"),
		CompanyID: 2,
	}
	in := Input{
		Scope:  "Creative",
		Period: p,
		Employees: []workforce.Employee{
			{ID: 1, Name: "Dana", CompanyID: 2},
			{ID: 2, Name: "Omar", CompanyID: 3},
		},
		Holidays: []workforce.Holiday{holiday},
	}
	res := Compute(in, time.Now())
	require.Equal(t, 8.0, res.Employees[0].HolidayHours)
	require.Zero(t, res.Employees[1].HolidayHours)
}

func TestCompute_EmptyPoolOmitted(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	in := Input{
		Scope:  "Creative",
		Period: p,
		Employees: []workforce.Employee{
			{ID: 1, Name: "Dana", Tags: []string{"KSA"}},
			{ID: 2, Name: "Omar", Tags: []string{"UAE"}},
		},
		Timesheets: []workforce.TimesheetEntry{
			{EmployeeID: 1, Hours: 80, TaskName: "Design", Date: dt("2025-02-05 00:00:00")},
		},
	}
	res := Compute(in, time.Now())
	require.Contains(t, res.Teams, "KSA")
	require.Contains(t, res.Teams, "UAE")
	require.NotContains(t, res.Teams, "Nightshift")
}

func TestCompute_TeamRates(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	in := Input{
		Scope:  "Creative",
		Period: p,
		Employees: []workforce.Employee{
			{ID: 1, Name: "Dana", Tags: []string{"KSA"}},
			{ID: 2, Name: "Omar", Tags: []string{"KSA"}},
		},
		Timesheets: []workforce.TimesheetEntry{
			{EmployeeID: 1, Hours: 80, TaskName: "Design", Date: dt("2025-02-05 00:00:00")},
		},
		Slots: []workforce.PlanningSlot{{
			ResourceID:     1,
			Start:          dt("2025-02-02 00:00:00"),
			End:            dt("2025-02-06 00:00:00"),
			AllocatedHours: 100,
		}},
	}
	res := Compute(in, time.Now())
	team := res.Teams["KSA"]
	require.Equal(t, 2, team.TotalMembers)
	require.Equal(t, 1, team.ActiveMembers)
	require.Equal(t, 320.0, team.AvailableHours)
	require.Equal(t, 80.0, team.LoggedHours)
	require.Equal(t, 100.0, team.PlannedHours)
	require.InDelta(t, 25.0, team.UtilizationRate, 1e-9)
	require.InDelta(t, -20.0, team.Variance, 1e-9)
}

func TestCompute_ZeroDenominators(t *testing.T) {
	p := period.Resolve(period.ViewDaily, "2025-037") // Thursday Feb 6
	in := Input{
		Scope:  "Creative",
		Period: p,
		Employees: []workforce.Employee{
			{ID: 1, Name: "Dana", Tags: []string{"UAE"}},
		},
		Timesheets: []workforce.TimesheetEntry{
			{EmployeeID: 1, Hours: 8, TaskName: workforce.TimeOffTaskName, Date: dt("2025-02-06 00:00:00")},
		},
	}
	team := Compute(in, time.Now()).Teams["UAE"]
	require.Zero(t, team.AvailableHours)
	require.Zero(t, team.UtilizationRate, "utilization is 0 when available <= 0")
	require.Zero(t, team.Variance, "variance is 0 when planned <= 0")
}

func TestCompute_EmployeeCalendarOverride(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	monFri := map[time.Weekday]bool{
		time.Monday: true, time.Tuesday: true, time.Wednesday: true,
		time.Thursday: true, time.Friday: true,
	}
	in := Input{
		Scope:  "Creative",
		Period: p,
		Employees: []workforce.Employee{
			{ID: 1, Name: "Dana", CalendarID: 4},
			{ID: 2, Name: "Omar"},
		},
		Calendars: map[int64]workforce.WorkCalendar{4: {ID: 4, Weekdays: monFri}},
	}
	res := Compute(in, time.Now())
	require.Equal(t, 160.0, res.Employees[0].BaseHours) // 20 Mon-Fri days
	require.Equal(t, 160.0, res.Employees[1].BaseHours) // 20 Sun-Thu days
}

func TestCompute_NoEmployees(t *testing.T) {
	p := period.Resolve(period.ViewMonthly, "2025-02")
	res := Compute(Input{Scope: "Creative", Period: p}, time.Now())
	require.True(t, res.Empty())
	require.NotNil(t, res.Employees)
	require.NotNil(t, res.Teams)
}
