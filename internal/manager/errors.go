package manager

import (
	"errors"
	"fmt"
)

// invalidParameterError reports a sampling parameter outside its bounds.
type invalidParameterError struct {
	field  string
	reason string
}

func (e invalidParameterError) Error() string { return e.field + " " + e.reason }

// IsInvalidParameter reports whether err rejects a request parameter.
func IsInvalidParameter(err error) bool {
	var e invalidParameterError
	return errors.As(err, &e)
}

// emptyPromptError reports a prompt that is empty after trimming.
type emptyPromptError struct{}

func (emptyPromptError) Error() string { return "prompt must not be empty" }

// IsEmptyPrompt reports whether err rejects an empty prompt.
func IsEmptyPrompt(err error) bool {
	var e emptyPromptError
	return errors.As(err, &e)
}

// engineNotReadyError signals that the engine cannot serve right now (503).
type engineNotReadyError struct{ state State }

func (e engineNotReadyError) Error() string {
	return fmt.Sprintf("model not loaded (state: %s)", e.state)
}

// IsEngineNotReady reports whether err means the engine is not ready.
func IsEngineNotReady(err error) bool {
	var e engineNotReadyError
	return errors.As(err, &e)
}

// generationFailedError wraps an error raised by the engine during one generation.
type generationFailedError struct{ err error }

func (e generationFailedError) Error() string { return "generation failed: " + e.err.Error() }
func (e generationFailedError) Unwrap() error { return e.err }

// IsGenerationFailed reports whether err came from the engine during generation.
func IsGenerationFailed(err error) bool {
	var e generationFailedError
	return errors.As(err, &e)
}

// modelLoadFailedError wraps a failure to acquire the engine handle.
type modelLoadFailedError struct{ err error }

func (e modelLoadFailedError) Error() string { return "failed to load model: " + e.err.Error() }
func (e modelLoadFailedError) Unwrap() error { return e.err }

// IsModelLoadFailed reports whether err came from Load or Reload.
func IsModelLoadFailed(err error) bool {
	var e modelLoadFailedError
	return errors.As(err, &e)
}

// invalidTransitionError signals a lifecycle call that is not allowed from
// the current state (409).
type invalidTransitionError struct {
	from State
	op   string
}

func (e invalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.op, e.from)
}

// IsInvalidTransition reports whether err rejects a lifecycle transition.
func IsInvalidTransition(err error) bool {
	var e invalidTransitionError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing external dependency (e.g., llama.cpp
// support not compiled in).
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// FailureDetail returns the underlying engine error message for a generation
// or load failure, or err.Error() for anything else.
func FailureDetail(err error) string {
	var g generationFailedError
	if errors.As(err, &g) {
		return g.err.Error()
	}
	var l modelLoadFailedError
	if errors.As(err, &l) {
		return l.err.Error()
	}
	return err.Error()
}

// Constructors for callers outside the package that need to produce the same
// error kinds, such as alternative Service implementations and tests.

func ErrEngineNotReady(state State) error { return engineNotReadyError{state: state} }

func ErrGenerationFailed(err error) error { return generationFailedError{err: err} }

func ErrModelLoadFailed(err error) error { return modelLoadFailedError{err: err} }

func ErrInvalidTransition(from State, op string) error {
	return invalidTransitionError{from: from, op: op}
}
