package manager

import (
	"os"
	"os/exec"
	"path/filepath"

	"llmgate/internal/common/fsutil"
	"llmgate/internal/registry"
	"llmgate/pkg/types"
)

// SanityCheck validates that the configured engine's dependencies are
// present. It does not mutate state and is safe to call at any time.
func (m *Manager) SanityCheck() types.SanityReport {
	r := types.SanityReport{Engine: m.engine, LlamaBuilt: llamaBuilt}
	switch m.engine {
	case EngineServer:
		// Model is a remote name; nothing to check on disk.
		r.ModelPath = m.modelPath
		r.ModelFound = true
		return r
	case EngineLlama, EngineSpawn:
	default:
		r.Error = "unknown engine: " + m.engine
		return r
	}

	if mdl, err := registry.Resolve(m.modelPath); err != nil {
		r.ModelPath = m.modelPath
		r.Error = err.Error()
	} else {
		r.ModelPath = mdl.Path
		r.ModelFound = fsutil.IsRegularFile(mdl.Path)
	}
	if m.engine == EngineLlama {
		if !llamaBuilt && r.Error == "" {
			r.Error = "llama support not built (missing 'llama' build tag)"
		}
		return r
	}

	bin := m.llamaBin
	if bin == "" {
		bin = discoverLlamaBin()
	}
	r.LlamaBin = bin
	r.LlamaFound = bin != "" && fsutil.IsRegularFile(bin)
	if !r.LlamaFound && r.Error == "" {
		r.Error = "llama-server not found"
	}
	return r
}

// discoverLlamaBin looks for a llama-server binary in common install
// locations, then on PATH.
func discoverLlamaBin() string {
	home, _ := os.UserHomeDir()
	candidates := []string{
		filepath.Join(home, "apps", "llama.cpp", "build", "bin", "llama-server"),
		"/usr/local/bin/llama-server",
		"/opt/homebrew/bin/llama-server",
	}
	for _, p := range candidates {
		if fsutil.IsRegularFile(p) {
			return p
		}
	}
	if lp, err := exec.LookPath("llama-server"); err == nil {
		return lp
	}
	return ""
}
