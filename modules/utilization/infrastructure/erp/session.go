package erp

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/prezboard/engine/pkg/metrics"
)

// Health is the session manager's view of the remote connection.
type Health string

const (
	HealthUnknown   Health = "unknown"
	HealthHealthy   Health = "healthy"
	HealthUnhealthy Health = "unhealthy"
)

// probeModel is the cheap entity used for connection probes.
const probeModel = "res.users"

// SessionConfig tunes session lifecycle behavior.
type SessionConfig struct {
	// AuthTimeout bounds a single authenticate call.
	AuthTimeout time.Duration
	// FreshFor is how long a session is reused without re-validation.
	FreshFor time.Duration
	// HealthCheckEvery limits how often the probe call runs.
	HealthCheckEvery time.Duration
	// ConnectAttempts bounds the connect retry loop.
	ConnectAttempts int
	// MaxBackoff caps the exponential connect backoff.
	MaxBackoff time.Duration
	// FailureThreshold is the consecutive-failure count that forces a
	// reconnect.
	FailureThreshold int
}

// DefaultSessionConfig mirrors the documented lifecycle constants.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		AuthTimeout:      15 * time.Second,
		FreshFor:         5 * time.Minute,
		HealthCheckEvery: 5 * time.Minute,
		ConnectAttempts:  3,
		MaxBackoff:       5 * time.Second,
		FailureThreshold: 2,
	}
}

// SessionManager owns the single shared session to the remote source. All
// connect, health-check and invalidate operations run under its lock.
type SessionManager struct {
	client Client
	cfg    SessionConfig
	log    *logrus.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu              sync.Mutex
	uid             int64
	lastUsed        time.Time
	health          Health
	failures        int
	lastHealthCheck time.Time
}

// SessionStatus is a diagnostic snapshot of the session state.
type SessionStatus struct {
	Connected           bool      `json:"connected"`
	Health              Health    `json:"health"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastUsed            time.Time `json:"last_used"`
	LastHealthCheck     time.Time `json:"last_health_check"`
}

func NewSessionManager(client Client, cfg SessionConfig, log *logrus.Logger) *SessionManager {
	return &SessionManager{
		client: client,
		cfg:    cfg,
		log:    log,
		health: HealthUnknown,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Acquire returns an authenticated user id, reusing the live session when
// it is fresh and healthy, revalidating or reconnecting otherwise. A nil
// error guarantees a usable uid; exhausted connects yield
// ErrSourceUnavailable.
func (m *SessionManager) Acquire(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.uid != 0 && m.health == HealthHealthy && now.Sub(m.lastUsed) < m.cfg.FreshFor && m.failures < m.cfg.FailureThreshold {
		m.lastUsed = now
		return m.uid, nil
	}

	// A session exists but is stale or of unknown health: probe it before
	// paying for a reconnect, at most once per interval.
	if m.uid != 0 && m.failures < m.cfg.FailureThreshold {
		if now.Sub(m.lastHealthCheck) >= m.cfg.HealthCheckEvery {
			m.lastHealthCheck = now
			if err := m.probeLocked(ctx, m.uid); err == nil {
				m.health = HealthHealthy
				m.failures = 0
				m.lastUsed = m.now()
				return m.uid, nil
			}
			m.health = HealthUnhealthy
			m.failures++
			m.log.WithField("failures", m.failures).Warn("erp session probe failed")
		} else if m.health != HealthUnhealthy {
			// Probed recently and not known-bad: keep using it.
			m.lastUsed = now
			return m.uid, nil
		}
	}

	return m.connectLocked(ctx)
}

// Invalidate drops the current session so the next Acquire reconnects.
func (m *SessionManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uid = 0
	m.health = HealthUnknown
	m.lastUsed = time.Time{}
}

// RecordSuccess resets the consecutive-failure counter after a successful
// remote call.
func (m *SessionManager) RecordSuccess() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = 0
	m.health = HealthHealthy
	m.lastUsed = m.now()
}

// RecordFailure increments the consecutive-failure counter. Reaching the
// threshold marks the session unhealthy, forcing a reconnect on the next
// Acquire.
func (m *SessionManager) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
	if m.failures >= m.cfg.FailureThreshold {
		m.health = HealthUnhealthy
	}
}

// Status returns a diagnostic snapshot.
func (m *SessionManager) Status() SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SessionStatus{
		Connected:           m.uid != 0,
		Health:              m.health,
		ConsecutiveFailures: m.failures,
		LastUsed:            m.lastUsed,
		LastHealthCheck:     m.lastHealthCheck,
	}
}

// connectLocked runs the full connect sequence: authenticate with a
// bounded wait, validate with one probe call, retry with increasing
// backoff. Exhausting the attempts is a connection failure the caller must
// treat as non-fatal.
func (m *SessionManager) connectLocked(ctx context.Context) (int64, error) {
	metrics.SessionReconnects.Inc()

	var lastErr error
	for attempt := 1; attempt <= m.cfg.ConnectAttempts; attempt++ {
		if attempt > 1 {
			if err := m.sleep(ctx, backoff(attempt-1, m.cfg.MaxBackoff)); err != nil {
				return 0, err
			}
		}

		m.uid = 0
		m.health = HealthUnknown
		m.lastUsed = time.Time{}

		authCtx, cancel := context.WithTimeout(ctx, m.cfg.AuthTimeout)
		uid, err := m.client.Authenticate(authCtx)
		cancel()
		if err != nil {
			lastErr = err
			m.log.WithError(err).WithField("attempt", attempt).Warn("erp authenticate failed")
			continue
		}

		if err := m.probeLocked(ctx, uid); err != nil {
			lastErr = err
			m.log.WithError(err).WithField("attempt", attempt).Warn("erp connection validation failed")
			continue
		}

		m.uid = uid
		m.health = HealthHealthy
		m.failures = 0
		now := m.now()
		m.lastUsed = now
		m.lastHealthCheck = now
		m.log.WithField("attempt", attempt).Info("erp session established")
		return uid, nil
	}

	m.health = HealthUnhealthy
	return 0, errors.Wrapf(ErrSourceUnavailable, "connect failed after %d attempts: %v", m.cfg.ConnectAttempts, lastErr)
}

// probeLocked issues the lightweight validation call.
func (m *SessionManager) probeLocked(ctx context.Context, uid int64) error {
	probeCtx, cancel := context.WithTimeout(ctx, m.cfg.AuthTimeout)
	defer cancel()
	_, err := m.client.ExecuteKw(probeCtx, uid, probeModel, "search_count", []any{[]any{}}, nil)
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
