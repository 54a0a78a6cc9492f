package erp

import (
	"context"
	"errors"
	"net"
	"strings"
)

var (
	// ErrSourceUnavailable signals that the remote source could not be
	// reached at all after exhausting retries. Callers must treat it as a
	// degraded, non-fatal outcome, distinguishable from legitimately
	// empty data.
	ErrSourceUnavailable = errors.New("erp: source unavailable")

	// ErrNoSession signals that no authenticated session could be
	// established.
	ErrNoSession = errors.New("erp: no session")
)

// connectionMarkers match transport-level trouble in error text coming out
// of the HTTP stack or the remote endpoint.
var connectionMarkers = []string{
	"timeout",
	"timed out",
	"connection",
	"reset",
	"request-sent",
	"idle",
	"broken pipe",
	"eof",
	"no such host",
	"unreachable",
	"authentication",
}

// IsConnectionError classifies an error as connection-class: timeouts,
// transport resets, idle-connection drops and authentication failures.
// Connection-class failures invalidate the session and are retried;
// everything else (malformed filters, permission errors) propagates
// immediately.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrNoSession) || errors.Is(err, ErrSourceUnavailable) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		// Remote faults are data errors: the transport worked.
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range connectionMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// RemoteError is a fault reported by the remote endpoint itself: the call
// arrived, the server rejected it. Never retried.
type RemoteError struct {
	Code    int
	Message string
	Data    string
}

func (e *RemoteError) Error() string {
	if e.Data != "" {
		return "erp: remote fault: " + e.Message + ": " + e.Data
	}
	return "erp: remote fault: " + e.Message
}
