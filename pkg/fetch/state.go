package fetch

import (
	"github.com/matzehuels/gremlin/pkg/errors"
)

// Phase is the lifecycle stage of a controller's current request cycle.
type Phase int

const (
	// PhaseIdle means no request has been triggered yet.
	PhaseIdle Phase = iota
	// PhaseLoading means a request is in flight and no outcome is known.
	PhaseLoading
	// PhaseSuccess means the latest request decoded a payload.
	PhaseSuccess
	// PhaseFailure means the latest request ended in an error.
	PhaseFailure
)

var phaseNames = [...]string{"idle", "loading", "success", "failure"}

// String returns the lowercase phase name.
func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// State is a read-only snapshot of a controller's request state.
//
// Data is meaningful only when Phase is [PhaseSuccess] and Err is non-nil only
// when Phase is [PhaseFailure]; the two are never populated together.
// Snapshots share Data with the controller, so callers must not mutate it.
type State[T any] struct {
	Phase Phase
	Data  T
	Err   *errors.Error
}

// Loading reports whether a request is in flight.
func (s State[T]) Loading() bool { return s.Phase == PhaseLoading }

// Succeeded reports whether the latest request produced data.
func (s State[T]) Succeeded() bool { return s.Phase == PhaseSuccess }

// Failed reports whether the latest request produced an error.
func (s State[T]) Failed() bool { return s.Phase == PhaseFailure }

// Message returns the user-facing error message, or "" when not failed.
func (s State[T]) Message() string {
	if s.Err == nil {
		return ""
	}
	return s.Err.Message
}
