// Package manager owns the single inference engine behind the gateway: its
// lifecycle (unloaded, loading, ready, failed), request validation and
// generation. Files are split by concern:
//
//   - manager.go: Manager type, constructor, lock-free getters.
//   - config.go: ManagerConfig, engine selection and defaults.
//   - lifecycle.go: Load, Reload, Close.
//   - execute.go: Execute, the generation entry point.
//   - params.go: request validation and sampling defaults.
//   - status_report.go, sanity.go: /health and /status views.
//   - errors.go: error kinds and IsXxx helpers used by the HTTP layer.
//
// Engines:
//
//   - llama: in-process go-llama.cpp, compiled with `-tags=llama`. Without
//     the tag a stub fails every load with a dependency-unavailable error.
//   - server: an already running OpenAI-compatible runtime (llama-server,
//     vLLM) reached over HTTP.
//   - spawn: a llama-server child process started per load on a free port
//     and stopped on reload or close.
//
// Execute holds a read lock for the duration of a generation and never
// waits for a reload; handle swaps take the write lock, so an in-flight
// generation always finishes on the handle it started with.
package manager
