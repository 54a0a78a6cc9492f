package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteCalls counts remote RPC operations by entity model, method and
	// outcome (ok, connection_error, data_error).
	RemoteCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Subsystem: "erp",
		Name:      "remote_calls_total",
		Help:      "Remote RPC calls by model, method and outcome.",
	}, []string{"model", "method", "outcome"})

	// RemoteCallDuration observes wall time of remote RPC operations.
	RemoteCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "engine",
		Subsystem: "erp",
		Name:      "remote_call_duration_seconds",
		Help:      "Remote RPC call duration.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"model", "method"})

	// SessionReconnects counts forced session reconnects.
	SessionReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "engine",
		Subsystem: "erp",
		Name:      "session_reconnects_total",
		Help:      "Forced ERP session reconnects.",
	})

	// CacheRequests counts cache lookups by cache name and result (hit, miss).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Subsystem: "cache",
		Name:      "requests_total",
		Help:      "Cache lookups by cache and result.",
	}, []string{"cache", "result"})

	// FetchStrategyRuns counts fetch strategy attempts by tier and outcome.
	FetchStrategyRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Subsystem: "fetch",
		Name:      "strategy_runs_total",
		Help:      "Fetch strategy attempts by tier and outcome.",
	}, []string{"strategy", "outcome"})
)

// ObserveCache records one lookup against the named cache.
func ObserveCache(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequests.WithLabelValues(cache, result).Inc()
}
