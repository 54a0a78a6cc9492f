package workforce

import (
	"time"
)

// TimeOffTaskName is the sentinel task name marking a timesheet entry as
// time off rather than logged work.
const TimeOffTaskName = "Time Off"

// InternalAgreementType marks a project as internal/no-agreement work;
// hours logged against such projects are counted but flagged unbilled.
const InternalAgreementType = "Internal"

// Employee is a read-only workforce record sourced fresh on every fetch.
type Employee struct {
	ID           int64
	Name         string
	JobTitle     string
	Tags         []string
	DepartmentID int64
	CompanyID    int64 // 0 when unknown
	CalendarID   int64 // 0 when the work calendar is unresolved
}

// HasTag reports whether the employee carries the given tag label.
func (e Employee) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// WorkCalendar is the set of weekdays an employee is expected to work.
type WorkCalendar struct {
	ID       int64
	Weekdays map[time.Weekday]bool
}

// DefaultWeekdays is the fixed five-day pattern applied when an employee's
// calendar cannot be resolved: Sunday through Thursday, matching the
// Sunday-anchored reporting weeks.
func DefaultWeekdays() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Sunday:    true,
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
	}
}

// TimesheetEntry is one logged line: hours an employee booked on a task on
// a given date.
type TimesheetEntry struct {
	EmployeeID int64
	Hours      float64
	TaskName   string
	ProjectID  int64
	Date       time.Time

	// Unbilled is set at the parsing boundary when the entry's project
	// has the internal agreement type.
	Unbilled bool
}

// IsTimeOff reports whether the entry books time off rather than work. An
// entry counted as time off is never also counted as logged.
func (t TimesheetEntry) IsTimeOff() bool {
	return t.TaskName == TimeOffTaskName
}

// PlanningSlot is a planned commitment over a timestamp range. Its
// contribution to a period is proportional to the overlap.
type PlanningSlot struct {
	ResourceID     int64
	Start          time.Time
	End            time.Time
	AllocatedHours float64
}

// Holiday is a company-wide (or company-agnostic) closure. It is
// distinguished from individual leave by having no resource assigned.
type Holiday struct {
	Name      string
	Start     time.Time
	End       time.Time
	CompanyID int64 // 0 = applies to every company
}

// AppliesTo reports whether the holiday covers the given company.
func (h Holiday) AppliesTo(companyID int64) bool {
	return h.CompanyID == 0 || h.CompanyID == companyID
}
