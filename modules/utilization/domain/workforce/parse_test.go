package workforce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEmployeeFromRecord(t *testing.T) {
	rec := map[string]any{
		"id":                   float64(42),
		"name":                 "Dana Haddad",
		"job_title":            "Senior Designer",
		"department_id":        []any{float64(7), "Creative"},
		"company_id":           []any{float64(2), "Prezlab FZ LLC"},
		"resource_calendar_id": []any{float64(3), "KSA Calendar"},
		"category_ids":         []any{float64(11), float64(12)},
	}
	emp, categoryIDs := EmployeeFromRecord(rec)
	require.Equal(t, int64(42), emp.ID)
	require.Equal(t, "Dana Haddad", emp.Name)
	require.Equal(t, "Senior Designer", emp.JobTitle)
	require.Equal(t, int64(7), emp.DepartmentID)
	require.Equal(t, int64(2), emp.CompanyID)
	require.Equal(t, int64(3), emp.CalendarID)
	require.Equal(t, []int64{11, 12}, categoryIDs)
}

func TestEmployeeFromRecord_MissingFields(t *testing.T) {
	// Absent relational fields decode as boolean false.
	rec := map[string]any{
		"id":                   float64(9),
		"name":                 "New Hire",
		"job_title":            false,
		"department_id":        false,
		"company_id":           false,
		"resource_calendar_id": false,
	}
	emp, categoryIDs := EmployeeFromRecord(rec)
	require.Equal(t, int64(9), emp.ID)
	require.Empty(t, emp.JobTitle)
	require.Zero(t, emp.CompanyID)
	require.Zero(t, emp.CalendarID)
	require.Empty(t, categoryIDs)
}

func TestTimesheetFromRecord(t *testing.T) {
	internal := map[int64]bool{5: true}
	rec := map[string]any{
		"employee_id": []any{float64(42), "Dana Haddad"},
		"unit_amount": 6.5,
		"task_name":   "Design review",
		"project_id":  []any{float64(5), "Internal Ops"},
		"date":        "2025-02-10",
	}
	ts := TimesheetFromRecord(rec, internal)
	require.Equal(t, int64(42), ts.EmployeeID)
	require.Equal(t, 6.5, ts.Hours)
	require.False(t, ts.IsTimeOff())
	require.True(t, ts.Unbilled)
	require.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), ts.Date)
}

func TestTimesheetFromRecord_TimeOff(t *testing.T) {
	ts := TimesheetFromRecord(map[string]any{
		"employee_id": []any{float64(1), "X"},
		"unit_amount": float64(8),
		"task_name":   TimeOffTaskName,
	}, nil)
	require.True(t, ts.IsTimeOff())
	require.False(t, ts.Unbilled)
}

func TestSlotFromRecord(t *testing.T) {
	slot := SlotFromRecord(map[string]any{
		"resource_id":     []any{float64(42), "Dana Haddad"},
		"start_datetime":  "2025-02-10 09:00:00",
		"end_datetime":    "2025-02-10 13:00:00",
		"allocated_hours": float64(4),
	})
	require.Equal(t, int64(42), slot.ResourceID)
	require.Equal(t, float64(4), slot.AllocatedHours)
	require.Equal(t, 4*time.Hour, slot.End.Sub(slot.Start))
}

func TestHolidayFromRecord(t *testing.T) {
	h, ok := HolidayFromRecord(map[string]any{
		"name":        "National Day",
		"date_from":   "2025-02-25 00:00:00",
		"date_to":     "2025-02-26 23:59:59",
		"company_id":  []any{float64(2), "Prezlab FZ LLC"},
		"resource_id": false,
	})
	require.True(t, ok)
	require.Equal(t, "National Day", h.Name)
	require.Equal(t, int64(2), h.CompanyID)
	require.True(t, h.AppliesTo(2))
	require.False(t, h.AppliesTo(3))

	// Company-agnostic holidays apply to everyone.
	h, ok = HolidayFromRecord(map[string]any{
		"name":        "Global Holiday",
		"date_from":   "2025-01-01 00:00:00",
		"date_to":     "2025-01-01 23:59:59",
		"company_id":  false,
		"resource_id": false,
	})
	require.True(t, ok)
	require.True(t, h.AppliesTo(99))

	// Rows with a resource assigned are individual leave, not holidays.
	_, ok = HolidayFromRecord(map[string]any{
		"name":        "Dana's leave",
		"resource_id": []any{float64(42), "Dana Haddad"},
	})
	require.False(t, ok)
}

func TestCalendarFromRecords(t *testing.T) {
	// Remote convention: 0=Monday .. 6=Sunday. A Sunday-Thursday calendar
	// carries days 6,0,1,2,3.
	rows := []map[string]any{
		{"dayofweek": "6"}, {"dayofweek": "0"}, {"dayofweek": "1"},
		{"dayofweek": "2"}, {"dayofweek": "3"},
	}
	cal := CalendarFromRecords(3, rows)
	require.True(t, cal.Weekdays[time.Sunday])
	require.True(t, cal.Weekdays[time.Monday])
	require.True(t, cal.Weekdays[time.Thursday])
	require.False(t, cal.Weekdays[time.Friday])
	require.False(t, cal.Weekdays[time.Saturday])
}

func TestCalendarFromRecords_EmptyDefaults(t *testing.T) {
	cal := CalendarFromRecords(1, nil)
	require.Equal(t, DefaultWeekdays(), cal.Weekdays)
}
