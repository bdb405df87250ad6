package manager

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStartsUnloaded(t *testing.T) {
	m := New(&fakeAdapter{}, "m.gguf")
	if st := m.Snapshot().State; st != StateUnloaded {
		t.Fatalf("expected unloaded, got %s", st)
	}
	if m.Ready() {
		t.Fatalf("expected not ready initially")
	}
}

func TestLoadSuccess(t *testing.T) {
	fa := &fakeAdapter{}
	dir := t.TempDir()
	p := createModelFile(t, dir, "m.gguf")
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{Adapter: fa, ModelPath: dir, Publisher: pub})
	if err := m.Load(testCtx(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready, got %+v", m.Snapshot())
	}
	if fa.receivedMP != p {
		t.Fatalf("directory should resolve to %s, adapter got %s", p, fa.receivedMP)
	}
	if m.ModelPath() != p {
		t.Fatalf("ModelPath=%s want %s", m.ModelPath(), p)
	}
	if !hasEvent(pub, "load_start") || !hasEvent(pub, "load_ready") {
		t.Fatalf("missing lifecycle events: %+v", pub.Events())
	}
}

func TestLoadFailureLeavesFailed(t *testing.T) {
	fa := &fakeAdapter{startErr: errors.New("out of memory")}
	p := createModelFile(t, t.TempDir(), "m.gguf")
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{Adapter: fa, ModelPath: p, Publisher: pub})
	err := m.Load(testCtx(t))
	if !IsModelLoadFailed(err) {
		t.Fatalf("expected model load failed, got %v", err)
	}
	snap := m.Snapshot()
	if snap.State != StateFailed || snap.Reason != "out of memory" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if !hasEvent(pub, "load_failed") {
		t.Fatalf("expected load_failed event, got %+v", pub.Events())
	}
}

func TestLoadMissingModelFails(t *testing.T) {
	fa := &fakeAdapter{}
	m := New(fa, filepath.Join(t.TempDir(), "missing.gguf"))
	if err := m.Load(testCtx(t)); !IsModelLoadFailed(err) {
		t.Fatalf("expected model load failed, got %v", err)
	}
	if fa.startCount() != 0 {
		t.Fatalf("adapter must not start without a model file")
	}
	if m.Snapshot().State != StateFailed {
		t.Fatalf("expected failed state")
	}
}

func TestServerEngineSkipsPathResolution(t *testing.T) {
	fa := &fakeAdapter{}
	m := NewWithConfig(ManagerConfig{Adapter: fa, Engine: EngineServer, ModelPath: "mistral-7b-instruct"})
	if err := m.Load(testCtx(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if fa.receivedMP != "mistral-7b-instruct" {
		t.Fatalf("model name should pass through, got %q", fa.receivedMP)
	}
}

func TestLoadTwiceIsInvalidTransition(t *testing.T) {
	m := newReadyManager(t, &fakeAdapter{})
	if err := m.Load(testCtx(t)); !IsInvalidTransition(err) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if !m.Ready() {
		t.Fatalf("second Load must not disturb a ready engine")
	}
}

func TestReloadFromReadyReplacesHandle(t *testing.T) {
	fa := &fakeAdapter{}
	m := newReadyManager(t, fa)
	old := fa.sessions[0]
	if err := m.Reload(testCtx(t)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !old.closed.Load() {
		t.Fatalf("old handle was not released")
	}
	if fa.startCount() != 2 || !m.Ready() {
		t.Fatalf("expected a second start and ready state, starts=%d snap=%+v", fa.startCount(), m.Snapshot())
	}
	if got := m.Status().LoadsTotal; got != 2 {
		t.Fatalf("loads_total=%d want 2", got)
	}
}

func TestReloadFromFailedRecovers(t *testing.T) {
	fa := &fakeAdapter{startErr: errors.New("disk error")}
	p := createModelFile(t, t.TempDir(), "m.gguf")
	m := New(fa, p)
	_ = m.Load(testCtx(t))
	if m.Snapshot().State != StateFailed {
		t.Fatalf("expected failed")
	}
	fa.setStartErr(nil)
	if err := m.Reload(testCtx(t)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready after reload")
	}
}

func TestReloadFailureFromReady(t *testing.T) {
	fa := &fakeAdapter{}
	m := newReadyManager(t, fa)
	fa.setStartErr(errors.New("weights corrupted"))
	if err := m.Reload(testCtx(t)); !IsModelLoadFailed(err) {
		t.Fatalf("expected model load failed, got %v", err)
	}
	if m.Snapshot().State != StateFailed {
		t.Fatalf("expected failed state after failed reload")
	}
	_, err := m.Execute(testCtx(t), validRequest(t, "hi"))
	if !IsEngineNotReady(err) {
		t.Fatalf("expected not ready after failed reload, got %v", err)
	}
}

func TestReloadFromUnloadedLoads(t *testing.T) {
	fa := &fakeAdapter{}
	p := createModelFile(t, t.TempDir(), "m.gguf")
	m := New(fa, p)
	if err := m.Reload(testCtx(t)); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !m.Ready() {
		t.Fatalf("expected ready")
	}
}

func TestStatusNonBlockingDuringLoad(t *testing.T) {
	fa := &fakeAdapter{startDelay: 200 * time.Millisecond}
	p := createModelFile(t, t.TempDir(), "m.gguf")
	m := New(fa, p)
	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background()) }()

	deadline := time.Now().Add(time.Second)
	for m.Snapshot().State != StateLoading {
		if time.Now().After(deadline) {
			t.Fatalf("never observed loading state")
		}
		time.Sleep(time.Millisecond)
	}
	start := time.Now()
	h := m.Health()
	if time.Since(start) > 50*time.Millisecond {
		t.Fatalf("Health blocked during load")
	}
	if h.ModelLoaded || h.State != string(StateLoading) {
		t.Fatalf("unexpected health during load: %+v", h)
	}
	if err := <-done; err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadHonorsCanceledContext(t *testing.T) {
	fa := &fakeAdapter{}
	p := createModelFile(t, t.TempDir(), "m.gguf")
	m := New(fa, p)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Load(ctx); !IsModelLoadFailed(err) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected load failure wrapping context.Canceled, got %v", err)
	}
}

func TestCloseReleasesHandle(t *testing.T) {
	fa := &fakeAdapter{}
	m := newReadyManager(t, fa)
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !fa.sessions[0].closed.Load() {
		t.Fatalf("session not closed")
	}
	if _, err := m.Execute(testCtx(t), validRequest(t, "hi")); !IsEngineNotReady(err) {
		t.Fatalf("expected not ready after close, got %v", err)
	}
}

func TestUnknownEngineFailsLoad(t *testing.T) {
	m := NewWithConfig(ManagerConfig{Engine: "tpu", ModelPath: "x"})
	err := m.Load(testCtx(t))
	if !IsModelLoadFailed(err) {
		t.Fatalf("expected load failure for unknown engine, got %v", err)
	}
}

func hasEvent(p *MemoryPublisher, name string) bool {
	for _, e := range p.Events() {
		if e.Name == name {
			return true
		}
	}
	return false
}
