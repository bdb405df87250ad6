//go:build !llama

package manager

// No-CGO stub for the llama adapter, compiled when the 'llama' build tag is
// NOT set. Start always fails, so the engine lands in the failed state and
// the gateway keeps serving health and system endpoints.

import (
	"context"
)

var llamaBuilt = false

type llamaAdapter struct {
	ctxSize int
	threads int
}

func NewLlamaAdapter(ctxSize, threads int) InferenceAdapter {
	return &llamaAdapter{ctxSize: ctxSize, threads: threads}
}

func (a *llamaAdapter) Start(ctx context.Context, modelPath string) (InferSession, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
