package manager

import "time"

// State represents the lifecycle state of the engine.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// canEnterLoading reports whether a load may start from s. Loading is
// entered from unloaded (first load) and from ready/failed (reload).
func (s State) canEnterLoading() bool {
	return s == StateUnloaded || s == StateReady || s == StateFailed
}

// Snapshot is a read-only projection of the engine state. Snapshots are
// immutable once published.
type Snapshot struct {
	State  State
	Reason string
	Since  time.Time
}

// GenerationRequest is a validated generation request. Construct it with
// ValidateRequest; every sampling field is resolved to a concrete value.
type GenerationRequest struct {
	Prompt string
	Params InferParams
}

// GenerationResult is the outcome of a single Execute call.
type GenerationResult struct {
	Text     string
	Duration time.Duration
}
