package erp

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/pkg/metrics"
)

// Call describes one remote operation.
type Call struct {
	Model  string
	Method string
	Args   []any
	Kwargs map[string]any
}

// ExecutorConfig tunes the retry envelope around a single call.
type ExecutorConfig struct {
	// CallTimeout bounds one remote operation.
	CallTimeout time.Duration
	// Attempts is the total attempt budget, connection-class retries
	// included.
	Attempts int
	// RetryDelay is the base delay between attempts; attempt n waits
	// n * RetryDelay.
	RetryDelay time.Duration
}

// DefaultExecutorConfig mirrors the documented call policy.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CallTimeout: 60 * time.Second,
		Attempts:    3,
		RetryDelay:  2 * time.Second,
	}
}

// Executor wraps every remote call with the timeout, bounded-retry and
// error-classification policy. Connection-class failures invalidate the
// shared session and retry; data-class failures propagate immediately.
type Executor struct {
	sessions *SessionManager
	client   Client
	cfg      ExecutorConfig
	log      *logrus.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewExecutor(sessions *SessionManager, client Client, cfg ExecutorConfig, log *logrus.Logger) *Executor {
	return &Executor{
		sessions: sessions,
		client:   client,
		cfg:      cfg,
		log:      log,
		sleep:    sleepCtx,
	}
}

// Execute runs one remote operation under the resilience policy.
func (e *Executor) Execute(ctx context.Context, call Call) (any, error) {
	var lastErr error
	for attempt := 1; attempt <= e.cfg.Attempts; attempt++ {
		if attempt > 1 {
			delay := time.Duration(attempt-1) * e.cfg.RetryDelay
			if err := e.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		uid, err := e.sessions.Acquire(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, e.cfg.CallTimeout)
		start := time.Now()
		result, err := e.client.ExecuteKw(callCtx, uid, call.Model, call.Method, call.Args, call.Kwargs)
		cancel()
		metrics.RemoteCallDuration.WithLabelValues(call.Model, call.Method).Observe(time.Since(start).Seconds())

		if err == nil {
			metrics.RemoteCalls.WithLabelValues(call.Model, call.Method, "ok").Inc()
			e.sessions.RecordSuccess()
			return result, nil
		}

		e.sessions.RecordFailure()
		if !IsConnectionError(err) {
			metrics.RemoteCalls.WithLabelValues(call.Model, call.Method, "data_error").Inc()
			return nil, errors.Wrapf(err, "%s.%s", call.Model, call.Method)
		}

		metrics.RemoteCalls.WithLabelValues(call.Model, call.Method, "connection_error").Inc()
		e.log.WithError(err).WithFields(logrus.Fields{
			"model":   call.Model,
			"method":  call.Method,
			"attempt": attempt,
		}).Warn("erp call hit connection trouble, invalidating session")
		e.sessions.Invalidate()
		lastErr = err
	}
	return nil, errors.Wrapf(ErrSourceUnavailable, "%s.%s failed after %d attempts: %v", call.Model, call.Method, e.cfg.Attempts, lastErr)
}

// Search returns matching record ids.
func (e *Executor) Search(ctx context.Context, model string, domain []any, kwargs map[string]any) ([]int64, error) {
	result, err := e.Execute(ctx, Call{Model: model, Method: "search", Args: []any{domain}, Kwargs: kwargs})
	if err != nil {
		return nil, err
	}
	return toIDs(result), nil
}

// Read returns full records for the given ids.
func (e *Executor) Read(ctx context.Context, model string, ids []int64, fields []string) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	result, err := e.Execute(ctx, Call{Model: model, Method: "read", Args: []any{ids}, Kwargs: kwargs})
	if err != nil {
		return nil, err
	}
	return toRecords(result), nil
}

// SearchRead combines search and read with optional paging.
func (e *Executor) SearchRead(ctx context.Context, model string, domain []any, fields []string, offset, limit int) ([]map[string]any, error) {
	kwargs := map[string]any{}
	if len(fields) > 0 {
		kwargs["fields"] = fields
	}
	if offset > 0 {
		kwargs["offset"] = offset
	}
	if limit > 0 {
		kwargs["limit"] = limit
	}
	result, err := e.Execute(ctx, Call{Model: model, Method: "search_read", Args: []any{domain}, Kwargs: kwargs})
	if err != nil {
		return nil, err
	}
	return toRecords(result), nil
}

// SearchCount returns the number of records matching the domain.
func (e *Executor) SearchCount(ctx context.Context, model string, domain []any) (int64, error) {
	result, err := e.Execute(ctx, Call{Model: model, Method: "search_count", Args: []any{domain}})
	if err != nil {
		return 0, err
	}
	if n, ok := result.(float64); ok {
		return int64(n), nil
	}
	return 0, nil
}

func toIDs(result any) []int64 {
	list, ok := result.([]any)
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(list))
	for _, item := range list {
		if n, ok := item.(float64); ok {
			ids = append(ids, int64(n))
		}
	}
	return ids
}

func toRecords(result any) []map[string]any {
	list, ok := result.([]any)
	if !ok {
		return nil
	}
	records := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]any); ok {
			records = append(records, rec)
		}
	}
	return records
}
