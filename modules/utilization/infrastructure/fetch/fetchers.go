package fetch

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/domain/workforce"
	"github.com/prezboard/engine/modules/utilization/infrastructure/cache"
)

var (
	employeeFields  = []string{"id", "name", "job_title", "category_ids", "department_id", "company_id", "resource_calendar_id"}
	timesheetFields = []string{"id", "employee_id", "unit_amount", "task_name", "project_id", "date"}
	slotFields      = []string{"id", "resource_id", "start_datetime", "end_datetime", "allocated_hours"}
	leaveFields     = []string{"id", "name", "date_from", "date_to", "company_id", "resource_id"}
)

// primitives are the raw sub-fetches every strategy tier is built from.
type primitives struct {
	caller   Caller
	refs     *cache.ReferenceCache
	holidays *cache.HolidayCache
	pageSize int
	log      *logrus.Logger

	// Work calendars change rarely enough to cache for the process
	// lifetime.
	calMu     sync.Mutex
	calendars map[int64]workforce.WorkCalendar
}

// searchReadAll pages through a search-read in fixed-size batches until
// a page comes back short.
func (p *primitives) searchReadAll(ctx context.Context, model string, domain []any, fields []string) ([]map[string]any, error) {
	var all []map[string]any
	for offset := 0; ; offset += p.pageSize {
		page, err := p.caller.SearchRead(ctx, model, domain, fields, offset, p.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < p.pageSize {
			return all, nil
		}
	}
}

// fetchEmployees reads the employee roster for a department (0 selects
// every department) and resolves tag names through the reference cache.
// A tag-resolution failure degrades to untagged employees.
func (p *primitives) fetchEmployees(ctx context.Context, departmentID int64) ([]workforce.Employee, error) {
	domain := []any{[]any{"active", "=", true}}
	if departmentID != 0 {
		domain = append(domain, []any{"department_id", "=", departmentID})
	}
	records, err := p.searchReadAll(ctx, ModelEmployee, domain, employeeFields)
	if err != nil {
		return nil, errors.Wrap(err, "read employees")
	}

	employees := make([]workforce.Employee, 0, len(records))
	categoryIDs := make([][]int64, 0, len(records))
	var allIDs []int64
	for _, rec := range records {
		emp, catIDs := workforce.EmployeeFromRecord(rec)
		employees = append(employees, emp)
		categoryIDs = append(categoryIDs, catIDs)
		allIDs = append(allIDs, catIDs...)
	}

	names, err := p.refs.Lookup(ctx, allIDs, p.fetchCategoryNames)
	if err != nil {
		p.log.WithError(err).Warn("tag resolution degraded, continuing without missing tags")
	}
	for i := range employees {
		for _, id := range categoryIDs[i] {
			if name := names[id]; name != "" {
				employees[i].Tags = append(employees[i].Tags, name)
			}
		}
	}
	return employees, nil
}

func (p *primitives) fetchCategoryNames(ctx context.Context, missing []int64) (map[int64]string, error) {
	records, err := p.caller.Read(ctx, ModelCategory, missing, []string{"id", "name"})
	if err != nil {
		return nil, errors.Wrap(err, "read tag names")
	}
	names := make(map[int64]string, len(records))
	for _, rec := range records {
		names[workforce.RecordID(rec["id"])] = workforce.RecordString(rec["name"])
	}
	return names, nil
}

// fetchLogged reads non-time-off timesheet entries for the period.
func (p *primitives) fetchLogged(ctx context.Context, employeeIDs []int64, pd period.Period, internalProjects map[int64]bool) ([]workforce.TimesheetEntry, error) {
	domain := timesheetDomain(employeeIDs, pd)
	domain = append(domain, []any{"task_name", "!=", workforce.TimeOffTaskName})
	return p.readTimesheets(ctx, domain, internalProjects)
}

// fetchTimeOff reads the time-off entries for the period.
func (p *primitives) fetchTimeOff(ctx context.Context, employeeIDs []int64, pd period.Period) ([]workforce.TimesheetEntry, error) {
	domain := timesheetDomain(employeeIDs, pd)
	domain = append(domain, []any{"task_name", "=", workforce.TimeOffTaskName})
	return p.readTimesheets(ctx, domain, nil)
}

func (p *primitives) readTimesheets(ctx context.Context, domain []any, internalProjects map[int64]bool) ([]workforce.TimesheetEntry, error) {
	records, err := p.searchReadAll(ctx, ModelTimesheet, domain, timesheetFields)
	if err != nil {
		return nil, errors.Wrap(err, "read timesheets")
	}
	entries := make([]workforce.TimesheetEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, workforce.TimesheetFromRecord(rec, internalProjects))
	}
	return entries, nil
}

func timesheetDomain(employeeIDs []int64, pd period.Period) []any {
	return []any{
		[]any{"employee_id", "in", employeeIDs},
		[]any{"date", ">=", pd.Start.Format("2006-01-02")},
		[]any{"date", "<=", pd.End.Format("2006-01-02")},
	}
}

// fetchSlots reads planning slots overlapping the period.
func (p *primitives) fetchSlots(ctx context.Context, employeeIDs []int64, pd period.Period) ([]workforce.PlanningSlot, error) {
	domain := []any{
		[]any{"resource_id", "in", employeeIDs},
		[]any{"start_datetime", "<=", pd.End.Format("2006-01-02") + " 23:59:59"},
		[]any{"end_datetime", ">=", pd.Start.Format("2006-01-02") + " 00:00:00"},
	}
	records, err := p.searchReadAll(ctx, ModelSlot, domain, slotFields)
	if err != nil {
		return nil, errors.Wrap(err, "read planning slots")
	}
	slots := make([]workforce.PlanningSlot, 0, len(records))
	for _, rec := range records {
		slots = append(slots, workforce.SlotFromRecord(rec))
	}
	return slots, nil
}

// fetchHolidays reads the public-holiday windows overlapping the period
// for each distinct employee company, through the holiday cache.
func (p *primitives) fetchHolidays(ctx context.Context, companyIDs []int64, pd period.Period) ([]workforce.Holiday, error) {
	var all []workforce.Holiday
	for _, companyID := range companyIDs {
		key := cache.HolidayKey(companyID, pd.Start, pd.End)
		if cached, ok := p.holidays.Get(key); ok {
			all = append(all, cached...)
			continue
		}
		domain := []any{
			[]any{"resource_id", "=", false},
			[]any{"date_from", "<=", pd.End.Format("2006-01-02") + " 23:59:59"},
			[]any{"date_to", ">=", pd.Start.Format("2006-01-02") + " 00:00:00"},
		}
		if companyID != 0 {
			domain = append(domain, []any{"company_id", "=", companyID})
		}
		records, err := p.searchReadAll(ctx, ModelLeave, domain, leaveFields)
		if err != nil {
			return nil, errors.Wrapf(err, "read holidays for company %d", companyID)
		}
		holidays := make([]workforce.Holiday, 0, len(records))
		for _, rec := range records {
			if h, ok := workforce.HolidayFromRecord(rec); ok {
				holidays = append(holidays, h)
			}
		}
		p.holidays.Set(key, holidays)
		all = append(all, holidays...)
	}
	return all, nil
}

// fetchCalendars resolves weekday attendance for the given work
// calendars, reading only the ones not yet seen this process.
func (p *primitives) fetchCalendars(ctx context.Context, calendarIDs []int64) (map[int64]workforce.WorkCalendar, error) {
	out := make(map[int64]workforce.WorkCalendar, len(calendarIDs))
	var missing []int64
	p.calMu.Lock()
	for _, id := range calendarIDs {
		if cal, ok := p.calendars[id]; ok {
			out[id] = cal
		} else {
			missing = append(missing, id)
		}
	}
	p.calMu.Unlock()
	if len(missing) == 0 {
		return out, nil
	}

	records, err := p.searchReadAll(ctx, ModelAttendance,
		[]any{[]any{"calendar_id", "in", missing}},
		[]string{"id", "calendar_id", "dayofweek"})
	if err != nil {
		return nil, errors.Wrap(err, "read work calendars")
	}
	rows := make(map[int64][]map[string]any)
	for _, rec := range records {
		id := workforce.RecordID(rec["calendar_id"])
		rows[id] = append(rows[id], rec)
	}

	p.calMu.Lock()
	for _, id := range missing {
		cal := workforce.CalendarFromRecords(id, rows[id])
		p.calendars[id] = cal
		out[id] = cal
	}
	p.calMu.Unlock()
	return out, nil
}

// fetchInternalProjects lists projects under the internal agreement
// type. Timesheet hours on them count as unbilled.
func (p *primitives) fetchInternalProjects(ctx context.Context) (map[int64]bool, error) {
	ids, err := p.caller.Search(ctx, ModelProject,
		[]any{[]any{"agreement_type", "=", workforce.InternalAgreementType}}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "read internal projects")
	}
	internal := make(map[int64]bool, len(ids))
	for _, id := range ids {
		internal[id] = true
	}
	return internal, nil
}
