package manager

import (
	"context"
	"fmt"
	"time"
)

// Engine backends selectable via ManagerConfig.Engine.
const (
	EngineLlama  = "llama"
	EngineServer = "server"
	EngineSpawn  = "spawn"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultSpawnReadyTimeout = 30 * time.Second
	defaultServerTimeout     = 10 * time.Second
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// ModelPath is a model file, a directory holding *.gguf files, or (for the
	// server engine) the model name sent to the remote runtime.
	ModelPath string
	Engine    string
	// Adapter overrides the adapter selected by Engine.
	Adapter InferenceAdapter
	// Publisher receives lifecycle events. Defaults to a no-op publisher.
	Publisher EventPublisher
	// GenerateTimeout bounds a single Execute call (0 disables).
	GenerateTimeout time.Duration

	// Server engine
	EngineURL    string
	EngineAPIKey string

	// llama.cpp (in-process and spawn)
	LlamaBin          string
	LlamaHost         string
	LlamaCtx          int
	LlamaThreads      int
	LlamaNGL          int
	LlamaExtraArgs    []string
	SpawnReadyTimeout time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig. The engine starts
// unloaded; call Load to acquire the handle.
func NewWithConfig(cfg ManagerConfig) *Manager {
	if cfg.Engine == "" {
		cfg.Engine = EngineLlama
	}
	if cfg.SpawnReadyTimeout <= 0 {
		cfg.SpawnReadyTimeout = defaultSpawnReadyTimeout
	}
	m := &Manager{
		engine:          cfg.Engine,
		modelPath:       cfg.ModelPath,
		llamaBin:        cfg.LlamaBin,
		generateTimeout: cfg.GenerateTimeout,
		publisher:       cfg.Publisher,
		startTime:       time.Now(),
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	m.adapter = cfg.Adapter
	if m.adapter == nil {
		m.adapter = newAdapterFor(cfg, m.publisher)
	}
	m.setState(StateUnloaded, "")
	return m
}

func newAdapterFor(cfg ManagerConfig, pub EventPublisher) InferenceAdapter {
	switch cfg.Engine {
	case EngineLlama:
		return NewLlamaAdapter(cfg.LlamaCtx, cfg.LlamaThreads)
	case EngineServer:
		return NewLlamaServerAdapter(cfg.EngineURL, cfg.EngineAPIKey, defaultServerTimeout)
	case EngineSpawn:
		a := NewLlamaSubprocessAdapter(cfg)
		a.setPublisher(pub)
		return a
	default:
		return unknownEngineAdapter{name: cfg.Engine}
	}
}

// unknownEngineAdapter fails every Start so a misconfigured engine surfaces
// as a failed load instead of a crash.
type unknownEngineAdapter struct{ name string }

func (u unknownEngineAdapter) Start(context.Context, string) (InferSession, error) {
	return nil, fmt.Errorf("unknown engine %q (want %s, %s or %s)", u.name, EngineLlama, EngineServer, EngineSpawn)
}
