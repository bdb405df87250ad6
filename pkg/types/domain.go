package types

// Model describes the model file (or remote model name) the gateway serves.
type Model struct {
	// Stable identifier for the model.
	// example: mistral-7b-instruct-v0.2.Q4_K_M.gguf
	ID string `json:"id" example:"mistral-7b-instruct-v0.2.Q4_K_M.gguf"`
	// Human-friendly name.
	Name string `json:"name" example:"mistral-7b-instruct-v0.2.Q4_K_M.gguf"`
	// Absolute path to the model file on disk, or the model name for remote runtimes.
	// example: /home/user/models/mistral-7b-instruct-v0.2.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/mistral-7b-instruct-v0.2.Q4_K_M.gguf"`
}
