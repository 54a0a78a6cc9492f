package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

// entry pairs a value with its insertion timestamp. Entries are replaced
// atomically, never mutated in place.
type entry[V any] struct {
	value      V
	insertedAt time.Time
}

// store is a TTL-keyed map safe for concurrent use. Expired entries are
// lazily evicted on access; Run sweeps them periodically in the
// background.
type store[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time // injectable for deterministic tests
}

func newStore[V any](ttl time.Duration) *store[V] {
	return &store[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *store[V]) get(key string) (V, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	var zero V
	if !ok {
		return zero, false
	}
	if s.now().Sub(e.insertedAt) > s.ttl {
		s.mu.Lock()
		// Recheck: a concurrent set may have refreshed the entry.
		if cur, ok := s.entries[key]; ok && s.now().Sub(cur.insertedAt) > s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

func (s *store[V]) set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry[V]{value: value, insertedAt: s.now()}
}

// deleteFunc removes every entry whose key matches the predicate and
// returns the number removed.
func (s *store[V]) deleteFunc(match func(key string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.entries {
		if match(key) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

func (s *store[V]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry[V])
}

// sweep evicts expired entries and returns the number removed.
func (s *store[V]) sweep() int {
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, e := range s.entries {
		if e.insertedAt.Before(cutoff) {
			delete(s.entries, key)
			n++
		}
	}
	return n
}

// Run sweeps expired entries every interval until the context is done.
func (s *store[V]) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// EntryStatus describes one cached entry for diagnostics.
type EntryStatus struct {
	Key       string        `json:"key"`
	Age       time.Duration `json:"age"`
	ExpiresIn time.Duration `json:"expires_in"`
}

func (s *store[V]) status() []EntryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	out := make([]EntryStatus, 0, len(s.entries))
	for key, e := range s.entries {
		age := now.Sub(e.insertedAt)
		out = append(out, EntryStatus{Key: key, Age: age, ExpiresIn: s.ttl - age})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
