package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/prezboard/engine/pkg/metrics"
)

// ReferenceCache maps reference-record IDs (employee tags, departments)
// to display names. Lookups are batched: only IDs missing from the
// cache reach the fetch callback.
type ReferenceCache struct {
	store      *store[string]
	ttl        time.Duration
	sweepEvery time.Duration
}

func NewReferenceCache(ttl, sweepEvery time.Duration) *ReferenceCache {
	return &ReferenceCache{store: newStore[string](ttl), ttl: ttl, sweepEvery: sweepEvery}
}

// Lookup resolves names for ids, fetching only cache misses. When fetch
// fails, the cached subset is still returned alongside the error so
// callers can degrade instead of aborting.
func (c *ReferenceCache) Lookup(ctx context.Context, ids []int64, fetch func(ctx context.Context, missing []int64) (map[int64]string, error)) (map[int64]string, error) {
	found := make(map[int64]string, len(ids))
	var missing []int64
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		name, ok := c.store.get(strconv.FormatInt(id, 10))
		metrics.ObserveCache("reference", ok)
		if ok {
			found[id] = name
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return found, nil
	}

	fetched, err := fetch(ctx, missing)
	for id, name := range fetched {
		c.store.set(strconv.FormatInt(id, 10), name)
		found[id] = name
	}
	return found, err
}

func (c *ReferenceCache) Invalidate() {
	c.store.clear()
}

func (c *ReferenceCache) Status() Status {
	entries := c.store.status()
	return Status{Name: "reference", Backend: "memory", TTL: c.ttl, Size: len(entries)}
}

func (c *ReferenceCache) Run(ctx context.Context) {
	c.store.Run(ctx, c.sweepEvery)
}
