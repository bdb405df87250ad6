package manager

import (
	"context"

	"llmgate/internal/registry"
)

// Load acquires the engine handle. It is called once at process start and
// moves the state from unloaded to loading, then ready or failed. A failure
// is returned for logging but never needs to abort the process: the state
// stays failed until Reload succeeds.
func (m *Manager) Load(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()
	if st := m.Snapshot().State; st != StateUnloaded {
		return invalidTransitionError{from: st, op: "load"}
	}
	return m.loadLocked(ctx, "load")
}

// Reload releases the current handle and loads the model again. New Execute
// calls fail with an engine-not-ready error while the reload runs; in-flight
// ones finish on the old handle before it is closed.
func (m *Manager) Reload(ctx context.Context) error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()
	st := m.Snapshot().State
	if !st.canEnterLoading() {
		return invalidTransitionError{from: st, op: "reload"}
	}
	m.setState(StateLoading, "")
	m.publisher.Publish(Event{Name: "reload_start", ModelID: m.ModelPath(), Fields: map[string]any{"from": string(st)}})
	if err := m.releaseSession(); err != nil {
		m.publisher.Publish(Event{Name: "unload_error", ModelID: m.ModelPath(), Fields: map[string]any{"error": err.Error()}})
	}
	return m.loadLocked(ctx, "reload")
}

// Close releases the engine handle for process shutdown. Subsequent Execute
// calls fail with an engine-not-ready error.
func (m *Manager) Close() error {
	m.lifecycleMu.Lock()
	defer m.lifecycleMu.Unlock()
	return m.releaseSession()
}

// loadLocked runs one load attempt. Callers hold lifecycleMu.
func (m *Manager) loadLocked(ctx context.Context, op string) error {
	m.loadsTotal.Add(1)
	m.setState(StateLoading, "")
	m.publisher.Publish(Event{Name: op + "_start", ModelID: m.modelPath, Fields: map[string]any{"engine": m.engine}})

	sess, err := m.startSession(ctx)
	if err != nil {
		m.loadFailuresTotal.Add(1)
		m.setState(StateFailed, err.Error())
		m.publisher.Publish(Event{Name: "load_failed", ModelID: m.ModelPath(), Fields: map[string]any{"op": op, "error": err.Error()}})
		return modelLoadFailedError{err: err}
	}

	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()
	m.setState(StateReady, "")
	m.publisher.Publish(Event{Name: "load_ready", ModelID: m.ModelPath(), Fields: map[string]any{"op": op}})
	return nil
}

func (m *Manager) startSession(ctx context.Context) (InferSession, error) {
	path := m.modelPath
	// Remote runtimes take a model name, not a file.
	if m.engine == EngineLlama || m.engine == EngineSpawn {
		mdl, err := registry.Resolve(m.modelPath)
		if err != nil {
			return nil, err
		}
		path = mdl.Path
	}
	m.resolvedPath.Store(&path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.adapter.Start(ctx, path)
}

// releaseSession detaches the handle under the exclusive lock, waiting for
// in-flight generations, then closes it.
func (m *Manager) releaseSession() error {
	m.mu.Lock()
	sess := m.session
	m.session = nil
	m.mu.Unlock()
	if sess == nil {
		return nil
	}
	m.publisher.Publish(Event{Name: "unload", ModelID: m.ModelPath(), Fields: map[string]any{}})
	return sess.Close()
}
