// Package dispatch answers prompts with the local gateway first and an
// OpenAI-compatible cloud provider second. Each tier gets exactly one
// attempt with its own timeout; a cloud failure is terminal.
package dispatch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Source labels which tier produced an answer.
type Source string

const (
	SourceLocal Source = "Local"
	SourceCloud Source = "Cloud"
)

// Answer is a successful dispatch result.
type Answer struct {
	Text      string
	Source    Source
	RequestID string
}

// Dispatcher owns one HTTP transport shared by both tiers.
type Dispatcher struct {
	cfg       Config
	log       zerolog.Logger
	transport *http.Transport
	local     *localTier
	cloud     *cloudTier
}

// New builds a Dispatcher from cfg, filling unset fields with defaults.
func New(cfg Config, log zerolog.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout=0: each tier runs under its own context deadline.
	client := &http.Client{Transport: tr}
	return &Dispatcher{
		cfg:       cfg,
		log:       log.With().Str("component", "dispatch").Logger(),
		transport: tr,
		local:     &localTier{url: cfg.LocalURL, maxTokens: cfg.MaxTokens, client: client},
		cloud: &cloudTier{
			apiKey:    cfg.APIKey,
			model:     cfg.CloudModel,
			baseURL:   cfg.CloudBaseURL,
			maxTokens: cfg.MaxTokens,
			client:    client,
		},
	}
}

// Answer runs the two-tier chain for prompt. It returns ErrMissingCredential
// or an *UpstreamError when the cloud tier is needed and fails, and ctx.Err()
// when ctx ends first; in that case no cloud attempt is made.
func (d *Dispatcher) Answer(ctx context.Context, prompt string) (Answer, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Answer{}, ErrEmptyPrompt
	}
	rid := uuid.NewString()
	log := d.log.With().Str("request_id", rid).Logger()

	text, err := d.attempt(ctx, rid, d.local.generate, prompt)
	if err == nil {
		log.Debug().Msg("answered locally")
		return Answer{Text: text, Source: SourceLocal, RequestID: rid}, nil
	}
	if ctx.Err() != nil {
		return Answer{}, ctx.Err()
	}
	log.Warn().Err(err).Msg("local query failed")

	text, err = d.attempt(ctx, rid, d.cloud.generate, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		if errors.Is(err, ErrMissingCredential) {
			log.Error().Msg("cloud API key not set; cannot fall back")
		} else {
			log.Error().Err(err).Msg("cloud request failed")
		}
		return Answer{}, err
	}
	return Answer{Text: text, Source: SourceCloud, RequestID: rid}, nil
}

func (d *Dispatcher) attempt(ctx context.Context, rid string, fn func(context.Context, string, string) (string, error), prompt string) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()
	return fn(tctx, prompt, rid)
}

// Close drops idle keep-alive connections held by the dispatcher.
func (d *Dispatcher) Close() {
	d.transport.CloseIdleConnections()
}
