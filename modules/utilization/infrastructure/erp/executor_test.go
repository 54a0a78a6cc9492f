package erp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestExecutor(client Client) (*Executor, *SessionManager) {
	sessions := newTestSessions(client)
	exec := NewExecutor(sessions, client, DefaultExecutorConfig(), testLogger())
	exec.sleep = noSleep
	return exec, sessions
}

func TestExecutor_RetriesConnectionErrorThenSucceeds(t *testing.T) {
	dataCalls := 0
	client := &stubClient{}
	client.execFn = func(model, method string) (any, error) {
		if model == probeModel {
			return float64(1), nil
		}
		dataCalls++
		if dataCalls <= 2 {
			return nil, errors.New("call timeout")
		}
		return []any{map[string]any{"id": float64(7)}}, nil
	}
	exec, sessions := newTestExecutor(client)

	records, err := exec.SearchRead(context.Background(), "hr.employee", []any{}, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 3, dataCalls, "third attempt succeeds")

	status := sessions.Status()
	require.Equal(t, HealthHealthy, status.Health)
	require.Zero(t, status.ConsecutiveFailures, "success resets the failure counter")
}

func TestExecutor_DataErrorNotRetried(t *testing.T) {
	dataCalls := 0
	client := &stubClient{}
	client.execFn = func(model, method string) (any, error) {
		if model == probeModel {
			return float64(1), nil
		}
		dataCalls++
		return nil, &RemoteError{Message: "Invalid field 'bogus' on model 'hr.employee'"}
	}
	exec, _ := newTestExecutor(client)

	_, err := exec.Search(context.Background(), "hr.employee", []any{}, nil)
	require.Error(t, err)
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	require.NotErrorIs(t, err, ErrSourceUnavailable)
	require.Equal(t, 1, dataCalls, "data errors propagate without retry")
}

func TestExecutor_ExhaustedRetriesSurfaceSourceUnavailable(t *testing.T) {
	client := &stubClient{}
	client.execFn = func(model, method string) (any, error) {
		if model == probeModel {
			return float64(1), nil
		}
		return nil, errors.New("connection reset by peer")
	}
	exec, _ := newTestExecutor(client)

	_, err := exec.Execute(context.Background(), Call{Model: "planning.slot", Method: "search_read", Args: []any{[]any{}}})
	require.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestExecutor_ConnectionErrorInvalidatesSession(t *testing.T) {
	dataCalls := 0
	client := &stubClient{}
	client.execFn = func(model, method string) (any, error) {
		if model == probeModel {
			return float64(1), nil
		}
		dataCalls++
		if dataCalls == 1 {
			return nil, errors.New("server closed idle connection")
		}
		return []any{}, nil
	}
	exec, _ := newTestExecutor(client)

	_, err := exec.SearchRead(context.Background(), "account.analytic.line", []any{}, nil, 0, 0)
	require.NoError(t, err)
	// First attempt authenticated once; the connection error invalidated
	// the session, so the retry authenticated again.
	require.Equal(t, 2, client.authCalls)
}

func TestExecutor_SearchCount(t *testing.T) {
	client := &stubClient{}
	client.execFn = func(model, method string) (any, error) {
		return float64(42), nil
	}
	exec, _ := newTestExecutor(client)

	n, err := exec.SearchCount(context.Background(), "res.users", []any{})
	require.NoError(t, err)
	require.Equal(t, int64(42), n)
}

func TestExecutor_SearchDecodesIDs(t *testing.T) {
	client := &stubClient{}
	client.execFn = func(model, method string) (any, error) {
		if model == probeModel {
			return float64(1), nil
		}
		return []any{float64(3), float64(9), float64(27)}, nil
	}
	exec, _ := newTestExecutor(client)

	ids, err := exec.Search(context.Background(), "hr.department", []any{}, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 9, 27}, ids)
}
