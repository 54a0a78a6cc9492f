package fetch

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prezboard/engine/modules/utilization/domain/period"
	"github.com/prezboard/engine/modules/utilization/domain/workforce"
)

// Request carries the roster an individual strategy works from.
type Request struct {
	Scope            string
	Period           period.Period
	Employees        []workforce.Employee
	EmployeeIDs      []int64
	CompanyIDs       []int64
	CalendarIDs      []int64
	InternalProjects map[int64]bool
}

// Strategy is one tier of the fetch fallback chain. Fetch returns a
// usable DataSet or an error; the orchestrator moves to the next tier
// on error.
type Strategy interface {
	Name() string
	Fetch(ctx context.Context, req Request) (*DataSet, error)
}

// parallelStrategy issues the three bulk sub-fetches concurrently with
// a per-call timeout. Any sub-fetch failure discards all results so a
// lower tier can retry; parallelism is an optimization, never a
// correctness requirement.
type parallelStrategy struct {
	prim       *primitives
	workers    int
	subTimeout time.Duration
}

func (s *parallelStrategy) Name() string { return "parallel" }

func (s *parallelStrategy) Fetch(ctx context.Context, req Request) (*DataSet, error) {
	var (
		logged  []workforce.TimesheetEntry
		timeOff []workforce.TimesheetEntry
		slots   []workforce.PlanningSlot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	g.Go(func() error {
		return s.bounded(gctx, func(ctx context.Context) error {
			var err error
			logged, err = s.prim.fetchLogged(ctx, req.EmployeeIDs, req.Period, req.InternalProjects)
			return err
		})
	})
	g.Go(func() error {
		return s.bounded(gctx, func(ctx context.Context) error {
			var err error
			timeOff, err = s.prim.fetchTimeOff(ctx, req.EmployeeIDs, req.Period)
			return err
		})
	})
	g.Go(func() error {
		return s.bounded(gctx, func(ctx context.Context) error {
			var err error
			slots, err = s.prim.fetchSlots(ctx, req.EmployeeIDs, req.Period)
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &DataSet{
		Employees:  req.Employees,
		Timesheets: append(logged, timeOff...),
		Slots:      slots,
		Strategy:   s.Name(),
	}
	fetchTail(ctx, s.prim, req, ds)
	return ds, nil
}

func (s *parallelStrategy) bounded(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.subTimeout)
	defer cancel()
	return fn(ctx)
}

// sequentialStrategy runs the same sub-fetches serially.
type sequentialStrategy struct {
	prim *primitives
}

func (s *sequentialStrategy) Name() string { return "sequential" }

func (s *sequentialStrategy) Fetch(ctx context.Context, req Request) (*DataSet, error) {
	logged, err := s.prim.fetchLogged(ctx, req.EmployeeIDs, req.Period, req.InternalProjects)
	if err != nil {
		return nil, err
	}
	timeOff, err := s.prim.fetchTimeOff(ctx, req.EmployeeIDs, req.Period)
	if err != nil {
		return nil, err
	}
	slots, err := s.prim.fetchSlots(ctx, req.EmployeeIDs, req.Period)
	if err != nil {
		return nil, err
	}

	ds := &DataSet{
		Employees:  req.Employees,
		Timesheets: append(logged, timeOff...),
		Slots:      slots,
		Strategy:   s.Name(),
	}
	fetchTail(ctx, s.prim, req, ds)
	return ds, nil
}

// fetchTail loads holidays and work calendars. Both degrade to empty on
// failure: the calculator zeroes the holiday term and falls back to the
// default work week.
func fetchTail(ctx context.Context, prim *primitives, req Request, ds *DataSet) {
	holidays, err := prim.fetchHolidays(ctx, req.CompanyIDs, req.Period)
	if err != nil {
		prim.log.WithError(err).WithField("scope", req.Scope).Warn("holiday fetch degraded to none")
	} else {
		ds.Holidays = holidays
	}

	calendars, err := prim.fetchCalendars(ctx, req.CalendarIDs)
	if err != nil {
		prim.log.WithError(err).WithField("scope", req.Scope).Warn("work calendar fetch degraded to default week")
		calendars = map[int64]workforce.WorkCalendar{}
	}
	ds.Calendars = calendars
}

// legacyStrategy is the minimal reconstruction: one combined timesheet
// read split locally on the time-off sentinel, plus planning slots. No
// holidays, no work calendars, no unbilled flags.
type legacyStrategy struct {
	prim *primitives
}

func (s *legacyStrategy) Name() string { return "legacy" }

func (s *legacyStrategy) Fetch(ctx context.Context, req Request) (*DataSet, error) {
	entries, err := s.prim.readTimesheets(ctx, timesheetDomain(req.EmployeeIDs, req.Period), nil)
	if err != nil {
		return nil, err
	}
	slots, err := s.prim.fetchSlots(ctx, req.EmployeeIDs, req.Period)
	if err != nil {
		slots = nil
	}
	return &DataSet{
		Employees:  req.Employees,
		Calendars:  map[int64]workforce.WorkCalendar{},
		Timesheets: entries,
		Slots:      slots,
		Strategy:   s.Name(),
	}, nil
}
