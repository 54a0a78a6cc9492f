package services

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/modules/utilization/domain/calc"
	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/infrastructure/cache"
	"github.com/prezboard/engine/modules/utilization/infrastructure/fetch"
	"github.com/prezboard/engine/pkg/composables"
)

// Fetcher assembles the raw data for one scope and period.
type Fetcher interface {
	Fetch(ctx context.Context, scope string, pd period.Period) (*fetch.DataSet, error)
}

// Options configure the service beyond its collaborators.
type Options struct {
	Pools           []string
	DefaultWeekdays map[time.Weekday]bool
}

// UtilizationService is the caller-facing surface: it resolves the
// period, consults the result cache, orchestrates the fetch and runs
// the calculator.
type UtilizationService struct {
	fetcher  Fetcher
	results  cache.ResultStore
	refs     *cache.ReferenceCache
	holidays *cache.HolidayCache
	opts     Options
	log      *logrus.Logger
	now      func() time.Time
}

func NewUtilizationService(fetcher Fetcher, results cache.ResultStore, refs *cache.ReferenceCache, holidays *cache.HolidayCache, opts Options, log *logrus.Logger) *UtilizationService {
	if len(opts.Pools) == 0 {
		opts.Pools = calc.DefaultPools
	}
	return &UtilizationService{
		fetcher:  fetcher,
		results:  results,
		refs:     refs,
		holidays: holidays,
		opts:     opts,
		log:      log,
		now:      time.Now,
	}
}

// ComputeUtilization produces the utilization picture for one scope and
// period token. An unreachable source surfaces ErrSourceUnavailable; a
// scope matching no department yields a typed empty result and no
// error. One scope's failure never affects another's: every call is
// independent.
func (s *UtilizationService) ComputeUtilization(ctx context.Context, scope, token string, view period.View) (*calc.ScopeResult, error) {
	ctx = composables.WithRequestID(ctx, "")
	requestID, _ := composables.UseRequestID(ctx)
	log := s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"scope":      scope,
		"view":       view,
		"token":      token,
	})
	ctx = composables.WithLogger(ctx, log)

	pd := period.Resolve(view, token)
	if pd.Fallback {
		log.WithField("period", pd.String()).Warn("period token not parseable, using default range")
	}

	key := cache.ResultKey(scope, token, string(view))
	if res, ok := s.results.Get(ctx, key); ok {
		log.Debug("serving cached result")
		return res, nil
	}

	ds, err := s.fetcher.Fetch(ctx, scope, pd)
	if err != nil {
		if errors.Is(err, fetch.ErrUnknownScope) {
			log.Warn("scope matched no department, returning empty result")
			return calc.EmptyResult(scope, pd, s.now()), nil
		}
		return nil, err
	}
	if !ds.Usable() {
		log.Info("no employees in scope")
		return calc.EmptyResult(scope, pd, s.now()), nil
	}

	res := calc.Compute(calc.Input{
		Scope:           scope,
		Period:          pd,
		Employees:       ds.Employees,
		Calendars:       ds.Calendars,
		Timesheets:      ds.Timesheets,
		Slots:           ds.Slots,
		Holidays:        ds.Holidays,
		Pools:           s.opts.Pools,
		DefaultWeekdays: s.opts.DefaultWeekdays,
	}, s.now())
	s.results.Set(ctx, key, res)

	log.WithFields(logrus.Fields{
		"strategy":  ds.Strategy,
		"employees": len(res.Employees),
		"teams":     len(res.Teams),
	}).Info("utilization computed")
	return res, nil
}

// InvalidateCache flushes cached results. With no scope everything goes,
// including reference and holiday data; with a scope (and optionally a
// view and token) only the matching result entries go. Returns the
// number of result entries removed, or -1 when the backend cannot count.
func (s *UtilizationService) InvalidateCache(ctx context.Context, scope, token string, view period.View) int {
	if scope == "" {
		s.refs.Invalidate()
		s.holidays.Invalidate()
		return s.results.Invalidate(ctx, "")
	}
	prefix := strings.ToLower(scope) + "|"
	if view != "" {
		prefix += string(view) + "|"
		if token != "" {
			return s.results.Invalidate(ctx, cache.ResultKey(scope, token, string(view)))
		}
	}
	return s.results.Invalidate(ctx, prefix)
}

// Snapshot is the diagnostic view over all three caches.
type Snapshot struct {
	Result    cache.Status `json:"result"`
	Reference cache.Status `json:"reference"`
	Holiday   cache.Status `json:"holiday"`
	TakenAt   time.Time    `json:"taken_at"`
}

func (s *UtilizationService) CacheStatus(ctx context.Context) Snapshot {
	return Snapshot{
		Result:    s.results.Status(ctx),
		Reference: s.refs.Status(),
		Holiday:   s.holidays.Status(),
		TakenAt:   s.now(),
	}
}

// RunCacheMaintenance sweeps expired entries in the background until
// the context is done.
func (s *UtilizationService) RunCacheMaintenance(ctx context.Context) {
	go s.refs.Run(ctx)
	go s.holidays.Run(ctx)
	s.results.Run(ctx)
}
