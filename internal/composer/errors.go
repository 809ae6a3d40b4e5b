package composer

import "errors"

// ErrDisposed is wrapped into every control-plane error a disposed
// composer returns, so callers can check with errors.Is regardless of
// which operation was attempted.
var ErrDisposed = errors.New("composer is disposed")

// ValidationError wraps a failed Validate() call surfaced as a Go
// error for callers that want the errors.Is/As idiom instead of
// inspecting a Result directly — mirrors the teacher's distinction
// between a *ValidationError (rejected input) and a *ConflictError
// (rejected state transition).
type ValidationError struct {
	Diagnostics []string
}

func (e *ValidationError) Error() string {
	if len(e.Diagnostics) == 0 {
		return "composer: validation failed"
	}
	msg := "composer: validation failed: " + e.Diagnostics[0]
	if len(e.Diagnostics) > 1 {
		msg += " (+more)"
	}
	return msg
}

// ConflictError reports an operation rejected because of the
// composer's current lifecycle state (e.g. mutating a disposed
// composer), as opposed to a ValidationError's rejection of the data
// itself.
type ConflictError struct {
	Op    string
	State State
}

func (e *ConflictError) Error() string {
	return "composer: " + e.Op + " rejected, state is " + e.State.String()
}

func (e *ConflictError) Unwrap() error { return ErrDisposed }
