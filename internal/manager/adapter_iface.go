package manager

import "context"

// InferenceAdapter abstracts the model runtime used by the Manager.
// Concrete implementations (llama.cpp in-process, an external OpenAI-compatible
// server, or a spawned llama-server) satisfy this interface.
type InferenceAdapter interface {
	// Start acquires an engine handle for the model at modelPath. It may block
	// while weights load; implementations must honor ctx cancellation.
	Start(ctx context.Context, modelPath string) (InferSession, error)
}

// InferSession is a loaded engine handle. Generate must be safe for
// concurrent use; Close is called exactly once, after all Generate calls
// on the handle have returned.
type InferSession interface {
	// Generate produces a completion for prompt. It is called once per
	// request: no retries, no streaming.
	Generate(ctx context.Context, prompt string, params InferParams) (string, error)
	// Close releases any resources associated with the session.
	Close() error
}

// InferParams captures resolved generation parameters passed to the adapter.
type InferParams struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	Stop        []string
	// RepeatPenalty is nil when the caller did not ask for one.
	RepeatPenalty *float64
}
