package manager

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// llamaServerAdapter implements InferenceAdapter by talking to a running
// OpenAI-compatible runtime (llama-server, vLLM) over HTTP.
type llamaServerAdapter struct {
	baseURL      string
	apiKey       string
	probeTimeout time.Duration
	httpClient   *http.Client
}

// NewLlamaServerAdapter constructs a server-backed adapter. probeTimeout
// bounds the readiness probe performed by Start.
func NewLlamaServerAdapter(baseURL, apiKey string, probeTimeout time.Duration) InferenceAdapter {
	return newLlamaServerAdapter(baseURL, apiKey, probeTimeout)
}

func newLlamaServerAdapter(baseURL, apiKey string, probeTimeout time.Duration) *llamaServerAdapter {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout=0: every request carries a context deadline instead.
	return &llamaServerAdapter{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		probeTimeout: probeTimeout,
		httpClient:   &http.Client{Transport: tr, Timeout: 0},
	}
}

// llamaServerSession holds the model name sent with each completion.
type llamaServerSession struct {
	adapter *llamaServerAdapter
	modelID string
}

// Start checks that the runtime answers /v1/models. In server mode the model
// is selected by name; the on-disk path is not used.
func (a *llamaServerAdapter) Start(ctx context.Context, modelName string) (InferSession, error) {
	if a.baseURL == "" {
		return nil, errors.New("engine url is empty")
	}
	if err := a.probe(ctx); err != nil {
		return nil, err
	}
	return &llamaServerSession{adapter: a, modelID: strings.TrimSpace(modelName)}, nil
}

func (a *llamaServerAdapter) probe(ctx context.Context) error {
	if a.probeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.probeTimeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	a.authorize(req)
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("engine probe: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("engine probe: %s", resp.Status)
	}
	return nil
}

func (a *llamaServerAdapter) authorize(req *http.Request) {
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
}

// openAICompletionRequest represents the payload for /v1/completions.
type openAICompletionRequest struct {
	Model       string   `json:"model,omitempty"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop,omitempty"`
	Stream      bool     `json:"stream"`
	// llama-server reads repeat_penalty, vLLM reads repetition_penalty;
	// each ignores the other key.
	RepeatPenalty     *float64 `json:"repeat_penalty,omitempty"`
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty"`
}

type openAICompletionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (s *llamaServerSession) Generate(ctx context.Context, prompt string, params InferParams) (string, error) {
	if s.adapter == nil || s.adapter.httpClient == nil {
		return "", errors.New("llama server adapter not initialized")
	}
	payload := openAICompletionRequest{
		Model:             s.modelID,
		Prompt:            prompt,
		MaxTokens:         params.MaxTokens,
		Temperature:       params.Temperature,
		TopP:              params.TopP,
		Stop:              params.Stop,
		RepeatPenalty:     params.RepeatPenalty,
		RepetitionPenalty: params.RepeatPenalty,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.adapter.baseURL+"/v1/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	s.adapter.authorize(req)
	resp, err := s.adapter.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("llama server http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	var out openAICompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("completion had no choices")
	}
	return out.Choices[0].Text, nil
}

func (s *llamaServerSession) Close() error {
	s.adapter.httpClient.CloseIdleConnections()
	return nil
}
