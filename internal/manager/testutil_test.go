package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// createModelFile creates a small placeholder model file and returns its path.
func createModelFile(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("gguf"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}
	return p
}

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	mu         sync.Mutex
	startErr   error
	startDelay time.Duration
	genErr     error
	genDelay   time.Duration
	genPanic   bool
	text       string
	starts     int
	receivedMP string
	sessions   []*fakeSession
}

func (f *fakeAdapter) Start(ctx context.Context, modelPath string) (InferSession, error) {
	f.mu.Lock()
	f.starts++
	f.receivedMP = modelPath
	startErr, delay := f.startErr, f.startDelay
	f.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if startErr != nil {
		return nil, startErr
	}
	s := &fakeSession{f: f}
	f.mu.Lock()
	f.sessions = append(f.sessions, s)
	f.mu.Unlock()
	return s, nil
}

func (f *fakeAdapter) setStartErr(err error) {
	f.mu.Lock()
	f.startErr = err
	f.mu.Unlock()
}

func (f *fakeAdapter) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *fakeAdapter) generateCalls() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.sessions {
		n += s.calls.Load()
	}
	return n
}

type fakeSession struct {
	f      *fakeAdapter
	calls  atomic.Int64
	closed atomic.Bool
	last   InferParams
}

func (s *fakeSession) Generate(ctx context.Context, prompt string, params InferParams) (string, error) {
	s.calls.Add(1)
	if s.closed.Load() {
		return "", errors.New("generate on closed session")
	}
	s.f.mu.Lock()
	genErr, delay, text, panics := s.f.genErr, s.f.genDelay, s.f.text, s.f.genPanic
	s.last = params
	s.f.mu.Unlock()
	if panics {
		panic("boom")
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if genErr != nil {
		return "", genErr
	}
	if text == "" {
		text = "echo: " + prompt
	}
	return text, nil
}

func (s *fakeSession) Close() error {
	s.closed.Store(true)
	return nil
}

// newReadyManager returns a manager over a fake adapter that has completed Load.
func newReadyManager(t *testing.T, fa *fakeAdapter) *Manager {
	t.Helper()
	p := createModelFile(t, t.TempDir(), "m.gguf")
	m := New(fa, p)
	if err := m.Load(testCtx(t)); err != nil {
		t.Fatalf("load: %v", err)
	}
	return m
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func validRequest(t *testing.T, prompt string) GenerationRequest {
	t.Helper()
	req, err := ValidateRequest(typesRequest(prompt))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	return req
}
