package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"llmgate/internal/manager"
	"llmgate/pkg/types"
)

// Service defines the engine operations required by the HTTP API layer.
type Service interface {
	Execute(ctx context.Context, req manager.GenerationRequest) (manager.GenerationResult, error)
	Reload(ctx context.Context) error
	Health() types.HealthResponse
	Status() types.StatusResponse
	Ready() bool
	ModelPath() string
}

// SystemReporter supplies host metrics for /system.
type SystemReporter interface {
	Report(ctx context.Context) types.SystemInfoResponse
}

// NewMux builds the gateway router. Only /generate depends on the engine
// being ready; every other route answers in any engine state.
func NewMux(svc Service, sys SystemReporter) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsOrDefault(corsAllowedOrigins, "*"),
			AllowedMethods: corsOrDefault(corsAllowedMethods, http.MethodGet, http.MethodPost, http.MethodOptions),
			AllowedHeaders: corsOrDefault(corsAllowedHeaders, "*"),
			MaxAge:         300,
		}))
	}

	r.Get("/health", handleHealth(svc))
	r.Get("/system", handleSystem(svc, sys))
	r.Post("/generate", handleGenerate(svc))
	r.Post("/reload-model", handleReload(svc))

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(svc.Health().State))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// handleHealth godoc
// @Summary      Engine health
// @Description  Liveness plus engine readiness. Never triggers a load and answers in every engine state.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func handleHealth(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Health())
	}
}

// handleSystem godoc
// @Summary      Host metrics
// @Description  CPU, memory and host identity, sampled per request.
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.SystemInfoResponse
// @Router       /system [get]
func handleSystem(svc Service, sys SystemReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var info types.SystemInfoResponse
		if sys != nil {
			info = sys.Report(r.Context())
		}
		info.ModelPath = svc.ModelPath()
		writeJSON(w, http.StatusOK, info)
	}
}

// handleGenerate godoc
// @Summary      Generate text
// @Description  Runs one non-streaming generation on the loaded model.
// @Tags         generate
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Prompt and sampling parameters"
// @Success      200      {object}  types.GenerateResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      422      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /generate [post]
func handleGenerate(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Content-Type check
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var body types.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			var te *json.UnmarshalTypeError
			if errors.As(err, &te) {
				observeGeneration("invalid", 0)
				writeJSONError(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be of type %s", te.Field, te.Type))
				return
			}
			// Oversized bodies also land here; 400 avoids leaking the limit.
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		req, err := manager.ValidateRequest(body)
		if err != nil {
			observeGeneration("invalid", 0)
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		lvl := requestLogLevel(r)
		log := requestLogger(r)
		start := time.Now()
		if lvl >= LevelInfo {
			log.Info().Str("path", r.URL.Path).Int("prompt_len", len(req.Prompt)).Int("max_tokens", req.Params.MaxTokens).Msg("generate start")
		}
		if lvl >= LevelDebug {
			log.Debug().Str("prompt", req.Prompt).Msg("generate prompt")
		}

		// Join server base context with request context so shutdown cancels work too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := svc.Execute(ctx, req)
		if err != nil {
			// Client went away or the server is shutting down: nobody to answer.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				observeGeneration("canceled", 0)
				return
			}
			status, detail := errorStatus(err)
			if manager.IsEngineNotReady(err) {
				observeGeneration("not_ready", 0)
			} else {
				observeGeneration("failed", 0)
			}
			if lvl >= LevelError {
				log.Error().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("generate end")
			}
			writeJSONError(w, status, detail)
			return
		}
		observeGeneration("ok", res.Duration)
		if lvl >= LevelInfo {
			log.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).Int("response_len", len(res.Text)).Msg("generate end")
		}
		if lvl >= LevelDebug {
			log.Debug().Str("response", res.Text).Msg("generate response")
		}
		writeJSON(w, http.StatusOK, types.GenerateResponse{
			Response:              res.Text,
			GenerationTimeSeconds: res.Duration.Seconds(),
		})
	}
}

// handleReload godoc
// @Summary      Reload the model
// @Description  Releases the engine handle and loads the model again. Generations fail with 503 while it runs.
// @Tags         admin
// @Produce      json
// @Success      200  {object}  types.ReloadResponse
// @Failure      409  {object}  types.ErrorResponse
// @Failure      500  {object}  types.ErrorResponse
// @Router       /reload-model [post]
func handleReload(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(r)
		log.Info().Str("model", svc.ModelPath()).Msg("reload requested")
		// A reload runs to completion even if the caller disconnects; only
		// shutdown aborts it.
		if err := svc.Reload(serverBaseCtx); err != nil {
			status, detail := errorStatus(err)
			observeReload("error")
			log.Error().Int("status", status).Err(err).Msg("reload failed")
			writeJSONError(w, status, detail)
			return
		}
		observeReload("ok")
		log.Info().Str("model", svc.ModelPath()).Msg("reload succeeded")
		writeJSON(w, http.StatusOK, types.ReloadResponse{
			Status:  "success",
			Message: fmt.Sprintf("Model %s reloaded successfully", svc.ModelPath()),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
