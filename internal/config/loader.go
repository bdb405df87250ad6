package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Default.
const (
	DefaultAddr         = "0.0.0.0:8001"
	DefaultEngine       = "llama"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultMaxBodyBytes = int64(1 << 20)
)

// Config holds runtime parameters for the gateway.
// Zero values mean "unspecified"; Default fills them in.
type Config struct {
	Addr                   string `json:"addr" yaml:"addr" toml:"addr"`
	ModelPath              string `json:"model_path" yaml:"model_path" toml:"model_path"`
	Engine                 string `json:"engine" yaml:"engine" toml:"engine"`
	EngineURL              string `json:"engine_url" yaml:"engine_url" toml:"engine_url"`
	EngineAPIKey           string `json:"engine_api_key" yaml:"engine_api_key" toml:"engine_api_key"`
	LlamaBin               string `json:"llama_bin" yaml:"llama_bin" toml:"llama_bin"`
	LlamaCtx               int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads           int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	LlamaNGL               int    `json:"llama_ngl" yaml:"llama_ngl" toml:"llama_ngl"`
	LogLevel               string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat              string `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes           int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	GenerateTimeoutSeconds int    `json:"generate_timeout_seconds" yaml:"generate_timeout_seconds" toml:"generate_timeout_seconds"`

	// CORSEnabled is a pointer so an explicit false in a file survives Default.
	CORSEnabled *bool    `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// Default returns cfg with unspecified fields set to their defaults.
func (c Config) Default() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.CORSEnabled == nil {
		on := true
		c.CORSEnabled = &on
	}
	return c
}

// CORS reports whether CORS is enabled; unset means enabled.
func (c Config) CORS() bool {
	return c.CORSEnabled == nil || *c.CORSEnabled
}

// ApplyEnv overrides fields from LLMGATE_* environment variables using
// lookup (os.LookupEnv in production). Malformed numbers are reported.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	str("LLMGATE_ADDR", &c.Addr)
	str("LLMGATE_MODEL_PATH", &c.ModelPath)
	str("LLMGATE_ENGINE", &c.Engine)
	str("LLMGATE_ENGINE_URL", &c.EngineURL)
	str("LLMGATE_ENGINE_API_KEY", &c.EngineAPIKey)
	str("LLMGATE_LLAMA_BIN", &c.LlamaBin)
	str("LLMGATE_LOG_LEVEL", &c.LogLevel)
	str("LLMGATE_LOG_FORMAT", &c.LogFormat)
	for key, dst := range map[string]*int{
		"LLMGATE_LLAMA_CTX":                &c.LlamaCtx,
		"LLMGATE_LLAMA_THREADS":            &c.LlamaThreads,
		"LLMGATE_LLAMA_NGL":                &c.LlamaNGL,
		"LLMGATE_GENERATE_TIMEOUT_SECONDS": &c.GenerateTimeoutSeconds,
	} {
		if err := num(key, dst); err != nil {
			return c, err
		}
	}
	if v, ok := lookup("LLMGATE_MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return c, fmt.Errorf("LLMGATE_MAX_BODY_BYTES: %w", err)
		}
		c.MaxBodyBytes = n
	}
	if v, ok := lookup("LLMGATE_CORS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("LLMGATE_CORS_ENABLED: %w", err)
		}
		c.CORSEnabled = &b
	}
	if v, ok := lookup("LLMGATE_CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = SplitCSV(v)
	}
	return c, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Engine {
	case "llama", "spawn":
		if strings.TrimSpace(c.ModelPath) == "" {
			return fmt.Errorf("model_path is required for engine %q", c.Engine)
		}
	case "server":
		if strings.TrimSpace(c.EngineURL) == "" {
			return fmt.Errorf("engine_url is required for engine %q", c.Engine)
		}
	default:
		return fmt.Errorf("unknown engine %q (want llama, server or spawn)", c.Engine)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log_format %q (want json or console)", c.LogFormat)
	}
	if c.GenerateTimeoutSeconds < 0 {
		return fmt.Errorf("generate_timeout_seconds must be >= 0")
	}
	return nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
