package calc

import (
	"sort"
	"time"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/domain/workforce"
)

// Input is the raw material for one scope computation, as assembled by the
// fetch orchestrator. Any missing sub-dataset degrades its term to zero;
// only an empty employee list produces an empty result.
type Input struct {
	Scope     string
	Period    period.Period
	Employees []workforce.Employee

	// Calendars maps calendar id to the resolved work calendar. Employees
	// whose calendar is missing here fall back to DefaultWeekdays.
	Calendars map[int64]workforce.WorkCalendar

	Timesheets []workforce.TimesheetEntry
	Slots      []workforce.PlanningSlot
	Holidays   []workforce.Holiday

	// Pools lists the tag names that form team pools. Pools with no
	// matching employees are omitted from the result.
	Pools []string

	// DefaultWeekdays overrides the fallback work week when set.
	DefaultWeekdays map[time.Weekday]bool
}

// DefaultPools are the team pools reported when the caller does not
// configure its own set.
var DefaultPools = []string{"KSA", "UAE", "Nightshift"}

// Compute produces the per-employee and per-team utilization picture for
// one scope and period.
func Compute(in Input, now time.Time) *ScopeResult {
	result := EmptyResult(in.Scope, in.Period, now)
	if len(in.Employees) == 0 {
		return result
	}

	fallbackWeekdays := in.DefaultWeekdays
	if len(fallbackWeekdays) == 0 {
		fallbackWeekdays = workforce.DefaultWeekdays()
	}

	// Index sub-datasets by employee once.
	timeOffByEmployee := make(map[int64]float64)
	loggedByEmployee := make(map[int64]float64)
	unbilledByEmployee := make(map[int64]float64)
	for _, ts := range in.Timesheets {
		if !in.Period.Contains(ts.Date) {
			continue
		}
		if ts.IsTimeOff() {
			timeOffByEmployee[ts.EmployeeID] += ts.Hours
			continue
		}
		loggedByEmployee[ts.EmployeeID] += ts.Hours
		if ts.Unbilled {
			unbilledByEmployee[ts.EmployeeID] += ts.Hours
		}
	}
	plannedByEmployee := make(map[int64]float64)
	for _, slot := range in.Slots {
		plannedByEmployee[slot.ResourceID] += SlotContribution(slot, in.Period)
	}

	metrics := make([]EmployeeMetrics, 0, len(in.Employees))
	for _, emp := range in.Employees {
		weekdays := fallbackWeekdays
		if cal, ok := in.Calendars[emp.CalendarID]; ok && len(cal.Weekdays) > 0 {
			weekdays = cal.Weekdays
		}

		base := BaseHours(in.Period, weekdays)
		timeOff := timeOffByEmployee[emp.ID]

		holiday := 0.0
		for _, h := range in.Holidays {
			if h.AppliesTo(emp.CompanyID) {
				holiday += HolidayHours(h, in.Period, weekdays)
			}
		}
		if ceiling := in.Period.HolidayCeiling(); holiday > ceiling {
			holiday = ceiling
		}

		// Deductions are capped at base hours: reported availability is
		// never negative even when source data is inconsistent.
		available := base - timeOff - holiday
		if available < 0 {
			available = 0
		}

		planned := plannedByEmployee[emp.ID]
		logged := loggedByEmployee[emp.ID]

		allocatedPct := 0.0
		if available > 0 {
			allocatedPct = planned / available * 100
			if allocatedPct > 100 {
				allocatedPct = 100
			}
		}

		metrics = append(metrics, EmployeeMetrics{
			EmployeeID:             emp.ID,
			Name:                   emp.Name,
			JobTitle:               emp.JobTitle,
			Tags:                   emp.Tags,
			BaseHours:              base,
			TimeOffHours:           timeOff,
			HolidayHours:           holiday,
			AvailableHours:         available,
			PlannedHours:           planned,
			LoggedHours:            logged,
			UnbilledHours:          unbilledByEmployee[emp.ID],
			AllocatedPercentage:    allocatedPct,
			AvailabilityPercentage: 100 - allocatedPct,
		})
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Name < metrics[j].Name })
	result.Employees = metrics

	pools := in.Pools
	if len(pools) == 0 {
		pools = DefaultPools
	}
	result.Teams = aggregateTeams(in.Employees, metrics, pools)
	return result
}

// aggregateTeams groups employees into tag pools and sums member hours.
// A pool with zero resolvable members is omitted, not reported as zero.
func aggregateTeams(employees []workforce.Employee, metrics []EmployeeMetrics, pools []string) map[string]TeamStats {
	tagsByID := make(map[int64]workforce.Employee, len(employees))
	for _, e := range employees {
		tagsByID[e.ID] = e
	}

	teams := make(map[string]TeamStats, len(pools))
	for _, pool := range pools {
		stats := TeamStats{}
		for _, m := range metrics {
			emp, ok := tagsByID[m.EmployeeID]
			if !ok || !emp.HasTag(pool) {
				continue
			}
			stats.TotalMembers++
			if m.LoggedHours > 0 {
				stats.ActiveMembers++
			}
			stats.AvailableHours += m.AvailableHours
			stats.PlannedHours += m.PlannedHours
			stats.LoggedHours += m.LoggedHours
			stats.TimeOffHours += m.TimeOffHours
			stats.HolidayHours += m.HolidayHours
		}
		if stats.TotalMembers == 0 {
			continue
		}
		if stats.AvailableHours > 0 {
			stats.UtilizationRate = stats.LoggedHours / stats.AvailableHours * 100
		}
		if stats.PlannedHours > 0 {
			stats.Variance = (stats.LoggedHours - stats.PlannedHours) / stats.PlannedHours * 100
		}
		teams[pool] = stats
	}
	return teams
}
