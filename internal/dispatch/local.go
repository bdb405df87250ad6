package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"llmgate/pkg/types"
)

// localTier calls the gateway's POST /generate.
type localTier struct {
	url       string
	maxTokens int
	client    *http.Client
}

// generate returns the gateway's answer or a *LocalError. A response counts
// only if it is 2xx JSON carrying a string "response" field.
func (t *localTier) generate(ctx context.Context, prompt, requestID string) (string, error) {
	maxTokens := t.maxTokens
	body, err := json.Marshal(types.GenerateRequest{Prompt: prompt, MaxTokens: &maxTokens})
	if err != nil {
		return "", &LocalError{Reason: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"/generate", bytes.NewReader(body))
	if err != nil {
		return "", &LocalError{Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &LocalError{Reason: "unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &LocalError{Reason: fmt.Sprintf("status %d", resp.StatusCode), Err: errorDetail(resp.Body)}
	}
	var out struct {
		Response *string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &LocalError{Reason: "malformed body", Err: err}
	}
	if out.Response == nil {
		return "", &LocalError{Reason: `missing "response" field`}
	}
	return strings.TrimSpace(*out.Response), nil
}

// errorDetail extracts the gateway's {"detail"} message, if any.
func errorDetail(r io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	var e types.ErrorResponse
	if json.Unmarshal(b, &e) == nil && e.Detail != "" {
		return fmt.Errorf("%s", e.Detail)
	}
	if s := strings.TrimSpace(string(b)); s != "" {
		return fmt.Errorf("%s", s)
	}
	return nil
}
