package workforce

import (
	"time"
)

// Raw remote records arrive as loosely typed maps. The parsers below
// normalize them into typed records at the boundary: many2one fields come
// back as [id, label] pairs, absent values as boolean false, and numbers as
// whatever the decoder picked. Calculation logic never sees raw maps.

const (
	datetimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// EmployeeFromRecord parses an hr.employee read record. CategoryIDs are
// returned separately so the caller can resolve tag names in one batch.
func EmployeeFromRecord(rec map[string]any) (Employee, []int64) {
	return Employee{
		ID:           RecordID(rec["id"]),
		Name:         RecordString(rec["name"]),
		JobTitle:     RecordString(rec["job_title"]),
		DepartmentID: RecordID(rec["department_id"]),
		CompanyID:    RecordID(rec["company_id"]),
		CalendarID:   RecordID(rec["resource_calendar_id"]),
	}, RecordIDs(rec["category_ids"])
}

// TimesheetFromRecord parses an account.analytic.line record.
// internalProjects flags project ids with the internal agreement type.
func TimesheetFromRecord(rec map[string]any, internalProjects map[int64]bool) TimesheetEntry {
	projectID := RecordID(rec["project_id"])
	return TimesheetEntry{
		EmployeeID: RecordID(rec["employee_id"]),
		Hours:      RecordFloat(rec["unit_amount"]),
		TaskName:   RecordString(rec["task_name"]),
		ProjectID:  projectID,
		Date:       RecordDate(rec["date"]),
		Unbilled:   internalProjects[projectID],
	}
}

// SlotFromRecord parses a planning.slot record.
func SlotFromRecord(rec map[string]any) PlanningSlot {
	return PlanningSlot{
		ResourceID:     RecordID(rec["resource_id"]),
		Start:          RecordDatetime(rec["start_datetime"]),
		End:            RecordDatetime(rec["end_datetime"]),
		AllocatedHours: RecordFloat(rec["allocated_hours"]),
	}
}

// HolidayFromRecord parses a resource.calendar.leaves record. The second
// return value is false for rows with a resource assigned: those are
// individual leave, not public holidays.
func HolidayFromRecord(rec map[string]any) (Holiday, bool) {
	if RecordID(rec["resource_id"]) != 0 {
		return Holiday{}, false
	}
	return Holiday{
		Name:      RecordString(rec["name"]),
		Start:     RecordDatetime(rec["date_from"]),
		End:       RecordDatetime(rec["date_to"]),
		CompanyID: RecordID(rec["company_id"]),
	}, true
}

// CalendarFromRecords builds a WorkCalendar from resource.calendar.attendance
// rows, each carrying a "dayofweek" field using the remote convention
// 0=Monday .. 6=Sunday.
func CalendarFromRecords(id int64, rows []map[string]any) WorkCalendar {
	weekdays := make(map[time.Weekday]bool)
	for _, row := range rows {
		d := int(RecordFloat(row["dayofweek"]))
		if sd := RecordString(row["dayofweek"]); sd != "" {
			// dayofweek is a selection field and usually decodes as a string
			if n, ok := atoiSafe(sd); ok {
				d = n
			}
		}
		if d < 0 || d > 6 {
			continue
		}
		// remote 0=Monday .. 6=Sunday -> time.Weekday (0=Sunday)
		weekdays[time.Weekday((d+1)%7)] = true
	}
	if len(weekdays) == 0 {
		weekdays = DefaultWeekdays()
	}
	return WorkCalendar{ID: id, Weekdays: weekdays}
}

// RecordID extracts an integer identifier. Many2one fields decode as
// [id, label]; absent fields as false.
func RecordID(v any) int64 {
	switch t := v.(type) {
	case []any:
		if len(t) > 0 {
			return RecordID(t[0])
		}
	case float64:
		return int64(t)
	case int64:
		return t
	case int:
		return int64(t)
	}
	return 0
}

// RecordIDs extracts a many2many id list.
func RecordIDs(v any) []int64 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		if id := RecordID(item); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// RecordString extracts a string; false-for-null and non-strings yield "".
func RecordString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// RecordFloat extracts a numeric value, defaulting to 0.
func RecordFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	}
	return 0
}

// RecordDatetime parses a remote "YYYY-MM-DD HH:MM:SS" timestamp.
func RecordDatetime(v any) time.Time {
	s := RecordString(v)
	if s == "" {
		return time.Time{}
	}
	ts, err := time.ParseInLocation(datetimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// RecordDate parses a remote "YYYY-MM-DD" date.
func RecordDate(v any) time.Time {
	s := RecordString(v)
	if s == "" {
		return time.Time{}
	}
	d, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return d
}

func atoiSafe(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
