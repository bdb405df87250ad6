package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"llmgate/internal/config"
	"llmgate/internal/httpapi"
	"llmgate/internal/manager"
	"llmgate/internal/sysinfo"
)

const shutdownGrace = 5 * time.Second

func newLogger(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("log level: %w", err)
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return serve(ctx, cfg, ln, log)
}

// serve runs the gateway on ln until ctx is canceled. The model loads in
// the background; a failed load is logged and the gateway keeps serving
// health and system endpoints.
func serve(ctx context.Context, cfg config.Config, ln net.Listener, log zerolog.Logger) error {
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		ModelPath:       cfg.ModelPath,
		Engine:          cfg.Engine,
		Publisher:       manager.NewLogPublisher(log),
		GenerateTimeout: time.Duration(cfg.GenerateTimeoutSeconds) * time.Second,
		EngineURL:       cfg.EngineURL,
		EngineAPIKey:    cfg.EngineAPIKey,
		LlamaBin:        cfg.LlamaBin,
		LlamaCtx:        cfg.LlamaCtx,
		LlamaThreads:    cfg.LlamaThreads,
		LlamaNGL:        cfg.LlamaNGL,
	})

	httpapi.SetLogger(log.With().Str("component", "http").Logger())
	httpapi.SetDefaultLogLevel(cfg.LogLevel)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetCORSOptions(cfg.CORS(), cfg.CORSOrigins, nil, nil)
	httpapi.SetBaseContext(ctx)

	srv := &http.Server{
		Handler:           httpapi.NewMux(mgr, sysinfo.New(log)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Str("engine", cfg.Engine).Str("model", cfg.ModelPath).Msg("llmgate listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := mgr.Load(gctx); err != nil {
			log.Error().Err(err).Msg("model load failed; serving health and system only until reload")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown")
		}
		if err := mgr.Close(); err != nil {
			log.Error().Err(err).Msg("release engine")
		}
		return nil
	})
	return g.Wait()
}
