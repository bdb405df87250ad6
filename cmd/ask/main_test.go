package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llmgate/internal/dispatch"
)

func runAsk(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	var out, errOut bytes.Buffer
	cmd := newAskCmd(lookup, strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReadPrompt(t *testing.T) {
	p, err := readPrompt([]string{"how", "to", "boil"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "how to boil", p)

	p, err = readPrompt(nil, strings.NewReader("  from stdin \n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", p)

	_, err = readPrompt(nil, strings.NewReader(" \n\t"))
	assert.ErrorIs(t, err, errEmptyPrompt)
}

func TestAsk_LocalAnswerPrinted(t *testing.T) {
	gotTokens := make(chan int, 1)
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Prompt    string `json:"prompt"`
			MaxTokens int    `json:"max_tokens"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotTokens <- body.MaxTokens
		_ = json.NewEncoder(w).Encode(map[string]any{"response": " local text ", "generation_time_seconds": 0.1})
	}))
	defer local.Close()

	out, err := runAsk(t, nil, "", "--url", local.URL, "--max-tokens", "64", "hello")
	require.NoError(t, err)
	assert.Equal(t, "\n[Local]\nlocal text\n", out)
	assert.Equal(t, 64, <-gotTokens)
}

func TestAsk_CloudFallbackFromEnv(t *testing.T) {
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail":"Model not loaded. Please try again later."}`))
	}))
	defer local.Close()
	cloud := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"cloud text"}}]}`))
	}))
	defer cloud.Close()

	env := map[string]string{
		"LLMGATE_URL":     local.URL,
		"OPENAI_API_KEY":  "sk-test",
		"OPENAI_BASE_URL": cloud.URL,
	}
	out, err := runAsk(t, env, "prompt on stdin")
	require.NoError(t, err)
	assert.Equal(t, "\n[Cloud]\ncloud text\n", out)
}

func TestAsk_BothTiersFail(t *testing.T) {
	local := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer local.Close()

	out, err := runAsk(t, nil, "", "--url", local.URL, "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, dispatch.ErrMissingCredential), "got %v", err)
	assert.Empty(t, out)
}

func TestAsk_EmptyPrompt(t *testing.T) {
	_, err := runAsk(t, nil, "")
	assert.ErrorIs(t, err, errEmptyPrompt)
}
