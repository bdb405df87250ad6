package types

// GenerateRequest is the body of POST /generate. Optional sampling fields are
// pointers so that "absent" and "zero" stay distinguishable; absent fields are
// filled with server defaults during validation.
type GenerateRequest struct {
	// Required prompt text.
	// example: How do I purify water without a filter?
	Prompt string `json:"prompt" example:"How do I purify water without a filter?"`
	// Maximum number of tokens to generate, 1..4096. Defaults to 256.
	// example: 256
	MaxTokens *int `json:"max_tokens,omitempty" example:"256"`
	// Sampling temperature, 0.0..2.0. Defaults to 0.7.
	// example: 0.7
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability, 0.0..1.0. Defaults to 0.95.
	// example: 0.95
	TopP *float64 `json:"top_p,omitempty" example:"0.95"`
	// Sequences that stop generation.
	// example: ["\n\n"]
	StopSequences []string `json:"stop_sequences,omitempty"`
	// Repetition penalty, must be >= 0 when present.
	// example: 1.1
	RepetitionPenalty *float64 `json:"repetition_penalty,omitempty" example:"1.1"`
}

// GenerateResponse is returned by POST /generate on success.
type GenerateResponse struct {
	// Generated text, trimmed of surrounding whitespace.
	Response string `json:"response" example:"Boil it for at least one minute."`
	// Wall-clock generation time in seconds.
	// example: 1.42
	GenerationTimeSeconds float64 `json:"generation_time_seconds" example:"1.42"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// Always "ok" while the process is serving.
	Status string `json:"status" example:"ok"`
	// True only when the engine state is ready.
	ModelLoaded bool `json:"model_loaded" example:"true"`
	// Seconds since the gateway started.
	UptimeSeconds float64 `json:"uptime_seconds" example:"3600.5"`
	// Engine lifecycle state: unloaded, loading, ready or failed.
	State string `json:"state" example:"ready"`
	// Load failure reason when state is failed.
	Error string `json:"error,omitempty"`
}

// SystemInfoResponse is returned by GET /system.
type SystemInfoResponse struct {
	Hostname      string  `json:"hostname" example:"fieldkit"`
	Platform      string  `json:"platform" example:"linux-6.1.0-amd64-x86_64"`
	GoVersion     string  `json:"go_version" example:"go1.24.6"`
	CPUCount      int     `json:"cpu_count" example:"8"`
	CPUPercent    float64 `json:"cpu_percent" example:"12.5"`
	MemoryUsedGB  float64 `json:"memory_used_gb" example:"5.2"`
	MemoryTotalGB float64 `json:"memory_total_gb" example:"15.5"`
	ModelPath     string  `json:"model_path" example:"/models/mistral-7b-instruct-v0.2.Q4_K_M.gguf"`
}

// ReloadResponse is returned by POST /reload-model on success.
type ReloadResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"Model /models/mistral.gguf reloaded successfully"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Model not loaded. Please try again later.
	Detail string `json:"detail" example:"Model not loaded. Please try again later."`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}

// SanityReport describes runtime checks for the configured engine.
type SanityReport struct {
	Engine     string `json:"engine" example:"llama"`
	LlamaBuilt bool   `json:"llama_built"`
	ModelFound bool   `json:"model_found"`
	ModelPath  string `json:"model_path,omitempty"`
	LlamaBin   string `json:"llama_bin,omitempty"`
	LlamaFound bool   `json:"llama_found"`
	Error      string `json:"error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Engine lifecycle state.
	// example: ready
	State string `json:"state" example:"ready"`
	// Failure reason when state is failed.
	Error string `json:"error,omitempty"`
	// Configured engine backend.
	// example: llama
	Engine string `json:"engine" example:"llama"`
	// Resolved model path or name.
	ModelPath string `json:"model_path"`
	// Unix time of the last state transition.
	StateSinceUnix int64 `json:"state_since_unix" example:"1700000000"`
	// Total number of load attempts (startup + reloads).
	LoadsTotal uint64 `json:"loads_total" example:"2"`
	// Total number of failed load attempts.
	LoadFailuresTotal uint64 `json:"load_failures_total" example:"0"`
	// Total number of generations executed, successful or not.
	GenerationsTotal uint64 `json:"generations_total" example:"42"`
	// Total number of failed generations.
	GenerationFailuresTotal uint64 `json:"generation_failures_total" example:"1"`
	// Generations currently running.
	Inflight int64 `json:"inflight" example:"1"`
	// Uptime of the server in seconds.
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Runtime dependency checks.
	Sanity SanityReport `json:"sanity"`
}
