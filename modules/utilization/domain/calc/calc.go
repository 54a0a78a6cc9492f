package calc

import (
	"time"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/domain/workforce"
)

// HoursPerWorkingDay is the assumed length of a full working day.
const HoursPerWorkingDay = 8.0

// SlotContribution returns the planned hours a slot contributes to a
// period: the slot's allocation scaled by the fraction of its span that
// falls inside the period. A slot fully contained in the period contributes
// its full allocation; a slot straddling a boundary contributes
// proportionally. The result is always within [0, AllocatedHours].
func SlotContribution(slot workforce.PlanningSlot, p period.Period) float64 {
	if slot.AllocatedHours <= 0 {
		return 0
	}
	periodStart := p.Start
	periodEnd := p.End.Add(24 * time.Hour)

	total := slot.End.Sub(slot.Start)
	if total <= 0 {
		// Degenerate span: count the full allocation when the instant
		// falls inside the period.
		if !slot.Start.Before(periodStart) && slot.Start.Before(periodEnd) {
			return slot.AllocatedHours
		}
		return 0
	}

	start := maxTime(slot.Start, periodStart)
	end := minTime(slot.End, periodEnd)
	if !end.After(start) {
		return 0
	}
	fraction := end.Sub(start).Seconds() / total.Seconds()
	if fraction > 1 {
		fraction = 1
	}
	return slot.AllocatedHours * fraction
}

// HolidayHours returns the deduction the holiday causes within the period
// for an employee working the given weekdays. A day is deducted as a full
// working day only when the holiday covers that entire day; partial-day
// coverage deducts nothing.
func HolidayHours(h workforce.Holiday, p period.Period, weekdays map[time.Weekday]bool) float64 {
	if h.Start.IsZero() || h.End.IsZero() || h.End.Before(h.Start) {
		return 0
	}
	hours := 0.0
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		if !weekdays[d.Weekday()] {
			continue
		}
		dayEnd := d.Add(24*time.Hour - time.Second)
		if !h.Start.After(d) && !h.End.Before(dayEnd) {
			hours += HoursPerWorkingDay
		}
	}
	return hours
}

// BaseHours is the employee's gross capacity for the period.
func BaseHours(p period.Period, weekdays map[time.Weekday]bool) float64 {
	return float64(p.WorkingDays(weekdays)) * HoursPerWorkingDay
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
