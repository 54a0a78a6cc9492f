package calc

import (
	"time"

	"github.com/prezboard/engine/modules/utilization/domain/period"
)

// EmployeeMetrics is the per-employee utilization breakdown for one period.
type EmployeeMetrics struct {
	EmployeeID int64    `json:"id"`
	Name       string   `json:"name"`
	JobTitle   string   `json:"job_title"`
	Tags       []string `json:"tags"`

	BaseHours      float64 `json:"base_available_hours"`
	TimeOffHours   float64 `json:"time_off_hours"`
	HolidayHours   float64 `json:"holiday_hours"`
	AvailableHours float64 `json:"available_hours"`
	PlannedHours   float64 `json:"planned_hours"`
	LoggedHours    float64 `json:"logged_hours"`
	UnbilledHours  float64 `json:"unbilled_hours"`

	AllocatedPercentage    float64 `json:"allocated_percentage"`
	AvailabilityPercentage float64 `json:"availability_percentage"`
}

// TeamStats aggregates a named pool of employees.
type TeamStats struct {
	TotalMembers  int     `json:"total_members"`
	ActiveMembers int     `json:"active_members"`

	AvailableHours float64 `json:"available_hours"`
	PlannedHours   float64 `json:"planned_hours"`
	LoggedHours    float64 `json:"logged_hours"`
	TimeOffHours   float64 `json:"time_off_hours"`
	HolidayHours   float64 `json:"holiday_hours"`

	UtilizationRate float64 `json:"utilization_rate"`
	Variance        float64 `json:"variance"`
}

// ScopeResult is the computed utilization picture for one department scope
// and period. It is the unit stored in the result cache.
type ScopeResult struct {
	Scope       string                `json:"scope"`
	View        period.View           `json:"view_type"`
	PeriodToken string                `json:"period"`
	PeriodStart time.Time             `json:"period_start"`
	PeriodEnd   time.Time             `json:"period_end"`
	Employees   []EmployeeMetrics     `json:"employees"`
	Teams       map[string]TeamStats  `json:"team_utilization"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Empty reports whether the result carries no employees at all.
func (r *ScopeResult) Empty() bool {
	return r == nil || len(r.Employees) == 0
}

// EmptyResult is the explicit zero-valued structure returned for scopes
// with no resolvable data.
func EmptyResult(scope string, p period.Period, now time.Time) *ScopeResult {
	return &ScopeResult{
		Scope:       scope,
		View:        p.View,
		PeriodToken: p.Token,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
		Employees:   []EmployeeMetrics{},
		Teams:       map[string]TeamStats{},
		GeneratedAt: now,
	}
}
