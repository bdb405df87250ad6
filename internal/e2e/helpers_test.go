package e2e

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"llmgate/internal/dispatch"
	"llmgate/internal/httpapi"
	"llmgate/internal/manager"
)

// createTempModel writes an empty .gguf file and returns its path.
func createTempModel(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(""), 0o644); err != nil {
		t.Fatalf("write temp model %s: %v", p, err)
	}
	return p
}

// echoAdapter is an in-memory engine that answers "echo: <prompt>" padded
// with whitespace. startErr makes the next Start fail.
type echoAdapter struct {
	mu       sync.Mutex
	startErr error
	calls    atomic.Int64
	lastMax  atomic.Int64
}

func (a *echoAdapter) Start(ctx context.Context, modelPath string) (manager.InferSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.startErr != nil {
		return nil, a.startErr
	}
	return &echoSession{a: a}, nil
}

func (a *echoAdapter) failNextStart(msg string) {
	a.mu.Lock()
	a.startErr = errors.New(msg)
	a.mu.Unlock()
}

func (a *echoAdapter) heal() {
	a.mu.Lock()
	a.startErr = nil
	a.mu.Unlock()
}

type echoSession struct{ a *echoAdapter }

func (s *echoSession) Generate(ctx context.Context, prompt string, p manager.InferParams) (string, error) {
	s.a.calls.Add(1)
	s.a.lastMax.Store(int64(p.MaxTokens))
	return "  echo: " + prompt + "\n", nil
}

func (s *echoSession) Close() error { return nil }

// newGateway serves httpapi.NewMux over a manager backed by adapter.
func newGateway(t *testing.T, adapter manager.InferenceAdapter) (*httptest.Server, *manager.Manager) {
	t.Helper()
	mgr := manager.New(adapter, createTempModel(t, "tiny.gguf"))
	srv := httptest.NewServer(httpapi.NewMux(mgr, nil))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { _ = mgr.Close() })
	return srv, mgr
}

// newDispatcher points a dispatcher at the gateway and, when cloudURL is
// non-empty, at a cloud endpoint with a test credential.
func newDispatcher(t *testing.T, gatewayURL, cloudURL string) *dispatch.Dispatcher {
	t.Helper()
	cfg := dispatch.Config{LocalURL: gatewayURL}
	if cloudURL != "" {
		cfg.APIKey = "sk-test"
		cfg.CloudBaseURL = cloudURL
	}
	d := dispatch.New(cfg, zerolog.Nop())
	t.Cleanup(d.Close)
	return d
}

// fakeCloud answers every chat completion with text and counts calls.
func fakeCloud(t *testing.T, text string) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n.Add(1)
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"`+text+`"}}]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &n
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
