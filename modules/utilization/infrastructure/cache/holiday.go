package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/prezboard/engine/modules/utilization/domain/workforce"
	"github.com/prezboard/engine/pkg/metrics"
)

// HolidayCache keeps public-holiday windows per company and date range.
// Holiday data changes rarely, so it outlives result entries.
type HolidayCache struct {
	store      *store[[]workforce.Holiday]
	ttl        time.Duration
	sweepEvery time.Duration
}

func NewHolidayCache(ttl, sweepEvery time.Duration) *HolidayCache {
	return &HolidayCache{store: newStore[[]workforce.Holiday](ttl), ttl: ttl, sweepEvery: sweepEvery}
}

// HolidayKey identifies one company's holiday window. companyID 0 keys
// the company-agnostic set.
func HolidayKey(companyID int64, start, end time.Time) string {
	return fmt.Sprintf("%d|%s|%s", companyID, start.Format("2006-01-02"), end.Format("2006-01-02"))
}

func (c *HolidayCache) Get(key string) ([]workforce.Holiday, bool) {
	holidays, ok := c.store.get(key)
	metrics.ObserveCache("holiday", ok)
	return holidays, ok
}

func (c *HolidayCache) Set(key string, holidays []workforce.Holiday) {
	c.store.set(key, holidays)
}

func (c *HolidayCache) Invalidate() {
	c.store.clear()
}

func (c *HolidayCache) Status() Status {
	entries := c.store.status()
	return Status{Name: "holiday", Backend: "memory", TTL: c.ttl, Size: len(entries)}
}

func (c *HolidayCache) Run(ctx context.Context) {
	c.store.Run(ctx, c.sweepEvery)
}
