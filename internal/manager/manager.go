package manager

import (
	"sync"
	"sync/atomic"
	"time"
)

// Manager owns the engine handle and its readiness state.
//
// Locking: lifecycleMu serializes Load/Reload/Close. mu guards session;
// Execute holds it shared for the whole generation and handle swaps hold it
// exclusively, so no Execute ever sees a half-swapped handle. The published
// Snapshot is read lock-free so status calls never block.
type Manager struct {
	engine          string
	modelPath       string
	llamaBin        string
	adapter         InferenceAdapter
	publisher       EventPublisher
	generateTimeout time.Duration
	startTime       time.Time

	lifecycleMu sync.Mutex
	mu          sync.RWMutex
	session     InferSession

	snap         atomic.Pointer[Snapshot]
	resolvedPath atomic.Pointer[string]

	loadsTotal         atomic.Uint64
	loadFailuresTotal  atomic.Uint64
	generationsTotal   atomic.Uint64
	generationFailures atomic.Uint64
	inflight           atomic.Int64
}

// New constructs a Manager for modelPath backed by the given adapter.
func New(adapter InferenceAdapter, modelPath string) *Manager {
	return NewWithConfig(ManagerConfig{Adapter: adapter, ModelPath: modelPath})
}

// Snapshot returns the current engine state without blocking.
func (m *Manager) Snapshot() Snapshot {
	return *m.snap.Load()
}

// Ready reports whether the engine state is ready.
func (m *Manager) Ready() bool {
	return m.Snapshot().State == StateReady
}

// Engine returns the configured engine backend name.
func (m *Manager) Engine() string { return m.engine }

// ModelPath returns the resolved model path once a load has resolved it,
// otherwise the configured path.
func (m *Manager) ModelPath() string {
	if p := m.resolvedPath.Load(); p != nil {
		return *p
	}
	return m.modelPath
}

// Uptime returns the time elapsed since the manager was created.
func (m *Manager) Uptime() time.Duration {
	return time.Since(m.startTime)
}

func (m *Manager) setState(s State, reason string) {
	m.snap.Store(&Snapshot{State: s, Reason: reason, Since: time.Now()})
}
