package pipeline

import "errors"

// DenialReason classifies why a transition request was refused.
type DenialReason string

const (
	ReasonUnknownStage         DenialReason = "unknown_stage"
	ReasonApplicationClosed    DenialReason = "application_closed"
	ReasonNoOp                 DenialReason = "no_op"
	ReasonSkippedRequiredStage DenialReason = "skipped_required_stage"
	ReasonConflict             DenialReason = "conflict"
	ReasonNotFound             DenialReason = "not_found"
)

// TransitionError is the typed, caller-visible result of a refused
// transition. Retryable marks concurrency conflicts where the caller should
// reload the application and decide again.
type TransitionError struct {
	Reason    DenialReason
	Message   string
	Retryable bool
}

func (e *TransitionError) Error() string {
	return e.Message
}

// AsTransitionError unwraps err into a *TransitionError if it is one.
func AsTransitionError(err error) (*TransitionError, bool) {
	var te *TransitionError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// ErrConflict is returned by stores when an optimistic version check fails:
// another caller moved the application between load and commit.
var ErrConflict = &TransitionError{
	Reason:    ReasonConflict,
	Message:   "application was modified concurrently, please refresh and try again",
	Retryable: true,
}

// ErrNotFound is returned when the application does not exist.
var ErrNotFound = &TransitionError{
	Reason:  ReasonNotFound,
	Message: "application not found",
}
