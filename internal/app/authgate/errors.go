package authgate

import "errors"

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// ErrNoActiveSession marks a contract violation: an operation that requires an
// active session was invoked without one. Callers should treat this as a
// programming error, not a recoverable runtime condition.
var ErrNoActiveSession = errors.New("no active session")
