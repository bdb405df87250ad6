package manager

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

// llamaSubprocessAdapter spawns a llama-server process for the model and
// serves generations through it. Each session owns exactly one process.
type llamaSubprocessAdapter struct {
	bin          string
	host         string
	ctxSize      int
	threads      int
	ngl          int
	extraArgs    []string
	readyTimeout time.Duration
	stopGrace    time.Duration
	httpClient   *http.Client
	publisher    EventPublisher
}

// NewLlamaSubprocessAdapter constructs a subprocess-backed adapter.
func NewLlamaSubprocessAdapter(cfg ManagerConfig) *llamaSubprocessAdapter {
	host := strings.TrimSpace(cfg.LlamaHost)
	if host == "" {
		host = "127.0.0.1"
	}
	rt := cfg.SpawnReadyTimeout
	if rt <= 0 {
		rt = defaultSpawnReadyTimeout
	}
	return &llamaSubprocessAdapter{
		bin:          cfg.LlamaBin,
		host:         host,
		ctxSize:      cfg.LlamaCtx,
		threads:      cfg.LlamaThreads,
		ngl:          cfg.LlamaNGL,
		extraArgs:    append([]string(nil), cfg.LlamaExtraArgs...),
		readyTimeout: rt,
		stopGrace:    2 * time.Second,
		// Timeout=0: health checks carry their own context deadlines.
		httpClient: &http.Client{Timeout: 0},
		publisher:  noopPublisher{},
	}
}

// setPublisher installs an EventPublisher for emitting adapter events.
func (a *llamaSubprocessAdapter) setPublisher(p EventPublisher) {
	if p == nil {
		a.publisher = noopPublisher{}
		return
	}
	a.publisher = p
}

// llamaSubprocessSession pairs the spawned process with a server session
// pointed at it.
type llamaSubprocessSession struct {
	*llamaServerSession
	a         *llamaSubprocessAdapter
	modelPath string
	cmd       *exec.Cmd
	exited    chan struct{}
	closeOnce sync.Once
}

func (a *llamaSubprocessAdapter) Start(ctx context.Context, modelPath string) (InferSession, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	bin := a.bin
	if bin == "" {
		bin = discoverLlamaBin()
	}
	if bin == "" {
		return nil, ErrDependencyUnavailable("llama-server not found")
	}
	port, err := pickFreePort(a.host)
	if err != nil {
		return nil, err
	}
	baseURL := "http://" + net.JoinHostPort(a.host, strconv.Itoa(port))

	args := []string{"-m", modelPath, "--host", a.host, "--port", strconv.Itoa(port)}
	if a.ctxSize > 0 {
		args = append(args, "-c", strconv.Itoa(a.ctxSize))
	}
	if a.ngl > 0 {
		args = append(args, "-ngl", strconv.Itoa(a.ngl))
	}
	if a.threads > 0 {
		args = append(args, "-t", strconv.Itoa(a.threads))
	}
	args = append(args, a.extraArgs...)

	cmd := exec.Command(bin, args...)
	// stderr is kept in memory; its tail is included when the process dies before ready.
	var stderr syncBuffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start llama-server: %w", err)
	}
	pid := cmd.Process.Pid
	a.publisher.Publish(Event{Name: "spawn_start", ModelID: modelPath, Fields: map[string]any{"pid": pid, "url": baseURL}})

	exited := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(exited)
	}()

	srv := newLlamaServerAdapter(baseURL, "", time.Second)
	sess := &llamaSubprocessSession{
		llamaServerSession: &llamaServerSession{adapter: srv},
		a:                  a,
		modelPath:          modelPath,
		cmd:                cmd,
		exited:             exited,
	}

	deadline := time.NewTimer(a.readyTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		if srv.probe(ctx) == nil {
			a.publisher.Publish(Event{Name: "spawn_ready", ModelID: modelPath, Fields: map[string]any{"pid": pid, "url": baseURL}})
			return sess, nil
		}
		select {
		case <-exited:
			tail := stderr.Tail(4096)
			a.publisher.Publish(Event{Name: "spawn_exit", ModelID: modelPath, Fields: map[string]any{"pid": pid, "before_ready": true}})
			if waitErr != nil {
				return nil, fmt.Errorf("llama-server exited early: %v; stderr tail: %s", waitErr, tail)
			}
			return nil, fmt.Errorf("llama-server exited before ready; stderr tail: %s", tail)
		case <-deadline.C:
			_ = sess.Close()
			a.publisher.Publish(Event{Name: "spawn_timeout", ModelID: modelPath, Fields: map[string]any{"pid": pid}})
			return nil, fmt.Errorf("llama-server not ready in %s: %s", a.readyTimeout, baseURL)
		case <-ctx.Done():
			_ = sess.Close()
			return nil, ctx.Err()
		case <-tick.C:
		}
	}
}

// Close terminates the process: SIGTERM first, then kill after the grace period.
func (s *llamaSubprocessSession) Close() error {
	s.closeOnce.Do(func() {
		_ = s.llamaServerSession.Close()
		if s.cmd.Process == nil {
			return
		}
		select {
		case <-s.exited:
			return
		default:
		}
		_ = s.cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-s.exited:
		case <-time.After(s.a.stopGrace):
			_ = s.cmd.Process.Kill()
			<-s.exited
		}
		s.a.publisher.Publish(Event{Name: "spawn_stop", ModelID: s.modelPath, Fields: map[string]any{"pid": s.cmd.Process.Pid}})
	})
	return nil
}

func pickFreePort(host string) (int, error) {
	l, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// syncBuffer is a bytes.Buffer safe for the concurrent writer (the process)
// and reader (the readiness loop).
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// Tail returns at most n trailing bytes written so far.
func (b *syncBuffer) Tail(n int) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.buf.String()
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}
