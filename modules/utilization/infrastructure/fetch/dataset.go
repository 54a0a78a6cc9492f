package fetch

import (
	"context"

	"github.com/prezboard/engine/modules/utilization/domain/workforce"
)

// Remote entity collections the orchestrator reads.
const (
	ModelEmployee   = "hr.employee"
	ModelDepartment = "hr.department"
	ModelCategory   = "hr.employee.category"
	ModelTimesheet  = "account.analytic.line"
	ModelSlot       = "planning.slot"
	ModelLeave      = "resource.calendar.leaves"
	ModelAttendance = "resource.calendar.attendance"
	ModelProject    = "project.project"
)

// Caller is the slice of the call executor the orchestrator needs.
type Caller interface {
	Search(ctx context.Context, model string, domain []any, kwargs map[string]any) ([]int64, error)
	Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error)
	SearchRead(ctx context.Context, model string, domain []any, fields []string, offset, limit int) ([]map[string]any, error)
}

// DataSet is everything one computation needs, pulled for a single
// scope and period. Missing sub-collections stay empty; the calculator
// degrades the corresponding term to zero.
type DataSet struct {
	Employees  []workforce.Employee
	Calendars  map[int64]workforce.WorkCalendar
	Timesheets []workforce.TimesheetEntry
	Slots      []workforce.PlanningSlot
	Holidays   []workforce.Holiday

	// Strategy names the tier that produced the data.
	Strategy string
}

// Usable reports whether the set carries anything worth calculating.
func (d *DataSet) Usable() bool {
	return d != nil && len(d.Employees) > 0
}
