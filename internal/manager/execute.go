package manager

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Execute runs one generation on the ready engine. It never blocks on a
// reload: if the handle is being swapped it fails fast with an
// engine-not-ready error and does not touch the engine. Engine errors are
// wrapped as generation failures and leave the engine state unchanged.
func (m *Manager) Execute(ctx context.Context, req GenerationRequest) (res GenerationResult, err error) {
	if !m.mu.TryRLock() {
		return GenerationResult{}, engineNotReadyError{state: m.Snapshot().State}
	}
	defer m.mu.RUnlock()
	if st := m.Snapshot().State; st != StateReady || m.session == nil {
		return GenerationResult{}, engineNotReadyError{state: st}
	}
	sess := m.session

	if m.generateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.generateTimeout)
		defer cancel()
	}

	m.generationsTotal.Add(1)
	m.inflight.Add(1)
	defer m.inflight.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			m.generationFailures.Add(1)
			res, err = GenerationResult{}, generationFailedError{err: fmt.Errorf("engine panic: %v", r)}
		}
	}()

	start := time.Now()
	text, gerr := sess.Generate(ctx, req.Prompt, req.Params)
	dur := time.Since(start)
	if gerr != nil {
		m.generationFailures.Add(1)
		return GenerationResult{}, generationFailedError{err: gerr}
	}
	return GenerationResult{Text: strings.TrimSpace(text), Duration: dur}, nil
}
