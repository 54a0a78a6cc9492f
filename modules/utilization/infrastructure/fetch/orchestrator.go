package fetch

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/domain/workforce"
	"github.com/prezboard/engine/modules/utilization/infrastructure/cache"
	"github.com/prezboard/engine/pkg/composables"
	"github.com/prezboard/engine/pkg/metrics"
)

// Config bounds the orchestrator's remote usage.
type Config struct {
	Workers         int
	SubFetchTimeout time.Duration
	PageSize        int
}

func DefaultConfig() Config {
	return Config{Workers: 2, SubFetchTimeout: 45 * time.Second, PageSize: 500}
}

// Orchestrator pulls everything one computation needs for a scope and
// period, walking the strategy chain until one tier succeeds.
type Orchestrator struct {
	prim       *primitives
	strategies []Strategy
}

func NewOrchestrator(caller Caller, refs *cache.ReferenceCache, holidays *cache.HolidayCache, cfg Config, log *logrus.Logger) *Orchestrator {
	prim := &primitives{
		caller:    caller,
		refs:      refs,
		holidays:  holidays,
		pageSize:  cfg.PageSize,
		calendars: map[int64]workforce.WorkCalendar{},
		log:       log,
	}
	return &Orchestrator{
		prim: prim,
		strategies: []Strategy{
			&parallelStrategy{prim: prim, workers: cfg.Workers, subTimeout: cfg.SubFetchTimeout},
			&sequentialStrategy{prim: prim},
			&legacyStrategy{prim: prim},
		},
	}
}

// Fetch resolves the scope and assembles its DataSet. An unknown
// department returns ErrUnknownScope; an empty roster returns an empty
// DataSet and no error.
func (o *Orchestrator) Fetch(ctx context.Context, scope string, pd period.Period) (*DataSet, error) {
	var departmentID int64
	if !strings.EqualFold(strings.TrimSpace(scope), ScopeAll) {
		id, err := resolveDepartment(ctx, o.prim.caller, scope)
		if err != nil {
			return nil, err
		}
		departmentID = id
	}

	employees, err := o.prim.fetchEmployees(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	if len(employees) == 0 {
		return &DataSet{Strategy: "empty"}, nil
	}

	req := Request{Scope: scope, Period: pd, Employees: employees}
	companies := map[int64]bool{}
	calendars := map[int64]bool{}
	for _, emp := range employees {
		req.EmployeeIDs = append(req.EmployeeIDs, emp.ID)
		companies[emp.CompanyID] = true
		if emp.CalendarID != 0 {
			calendars[emp.CalendarID] = true
		}
	}
	req.CompanyIDs = sortedKeys(companies)
	req.CalendarIDs = sortedKeys(calendars)

	log := composables.UseLogger(ctx)
	internal, err := o.prim.fetchInternalProjects(ctx)
	if err != nil {
		log.WithError(err).Warn("internal project list degraded, unbilled hours report as zero")
	}
	req.InternalProjects = internal

	var lastErr error
	for _, strategy := range o.strategies {
		ds, err := strategy.Fetch(ctx, req)
		if err != nil {
			metrics.FetchStrategyRuns.WithLabelValues(strategy.Name(), "failure").Inc()
			log.WithError(err).WithFields(logrus.Fields{
				"scope":    scope,
				"strategy": strategy.Name(),
			}).Warn("fetch tier failed, falling back")
			lastErr = err
			continue
		}
		metrics.FetchStrategyRuns.WithLabelValues(strategy.Name(), "success").Inc()
		return ds, nil
	}
	return nil, lastErr
}

func sortedKeys(set map[int64]bool) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
