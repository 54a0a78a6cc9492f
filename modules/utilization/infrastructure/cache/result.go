package cache

import (
	"context"
	"strings"
	"time"

	"github.com/prezboard/engine/modules/utilization/domain/calc"
	"github.com/prezboard/engine/pkg/metrics"
)

// ResultKey builds the result-cache key for a computed scope. An empty
// token keys the scope's current default period for its view.
func ResultKey(scope, token, view string) string {
	if token == "" {
		token = "default_" + view
	}
	return strings.ToLower(scope) + "|" + view + "|" + token
}

// Status is a diagnostic snapshot of one cache.
type Status struct {
	Name    string        `json:"name"`
	Backend string        `json:"backend"`
	TTL     time.Duration `json:"ttl"`
	Size    int           `json:"size"`
	Entries []EntryStatus `json:"entries,omitempty"`
}

// ResultStore holds computed utilization results. Implementations are
// safe for concurrent use.
type ResultStore interface {
	Get(ctx context.Context, key string) (*calc.ScopeResult, bool)
	Set(ctx context.Context, key string, result *calc.ScopeResult)
	// Invalidate removes every entry whose key starts with prefix; an
	// empty prefix clears the store. It returns the number removed,
	// or -1 when the backend cannot count.
	Invalidate(ctx context.Context, prefix string) int
	Status(ctx context.Context) Status
	// Run performs background maintenance until ctx is done. Backends
	// with native expiry return immediately.
	Run(ctx context.Context)
}

// MemoryResultStore keeps results in process memory.
type MemoryResultStore struct {
	store      *store[*calc.ScopeResult]
	ttl        time.Duration
	sweepEvery time.Duration
}

func NewMemoryResultStore(ttl, sweepEvery time.Duration) *MemoryResultStore {
	return &MemoryResultStore{store: newStore[*calc.ScopeResult](ttl), ttl: ttl, sweepEvery: sweepEvery}
}

func (m *MemoryResultStore) Get(_ context.Context, key string) (*calc.ScopeResult, bool) {
	res, ok := m.store.get(key)
	metrics.ObserveCache("result", ok)
	return res, ok
}

func (m *MemoryResultStore) Set(_ context.Context, key string, result *calc.ScopeResult) {
	m.store.set(key, result)
}

func (m *MemoryResultStore) Invalidate(_ context.Context, prefix string) int {
	if prefix == "" {
		m.store.clear()
		return -1
	}
	return m.store.deleteFunc(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

func (m *MemoryResultStore) Status(_ context.Context) Status {
	entries := m.store.status()
	return Status{Name: "result", Backend: "memory", TTL: m.ttl, Size: len(entries), Entries: entries}
}

func (m *MemoryResultStore) Run(ctx context.Context) {
	m.store.Run(ctx, m.sweepEvery)
}
