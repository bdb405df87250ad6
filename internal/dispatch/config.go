package dispatch

import (
	"strings"
	"time"
)

// Defaults used by ConfigFromEnv and New when fields are unset.
const (
	DefaultLocalURL     = "http://127.0.0.1:8001"
	DefaultCloudBaseURL = "https://api.openai.com/v1"
	DefaultCloudModel   = "gpt-3.5-turbo"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxTokens    = 256
	cloudTemperature    = 0.7
)

// Config configures both tiers of the dispatcher.
type Config struct {
	// LocalURL is the gateway base URL; /generate is appended.
	LocalURL string
	// APIKey is the cloud bearer credential. Empty disables the cloud tier.
	APIKey       string
	CloudModel   string
	CloudBaseURL string
	// Timeout bounds each tier separately.
	Timeout   time.Duration
	MaxTokens int
}

// ConfigFromEnv reads LLMGATE_URL, OPENAI_API_KEY, OPENAI_MODEL and
// OPENAI_BASE_URL through lookup (os.LookupEnv in production).
func ConfigFromEnv(lookup func(string) (string, bool)) Config {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}
	return Config{
		LocalURL:     get("LLMGATE_URL", DefaultLocalURL),
		APIKey:       get("OPENAI_API_KEY", ""),
		CloudModel:   get("OPENAI_MODEL", DefaultCloudModel),
		CloudBaseURL: get("OPENAI_BASE_URL", DefaultCloudBaseURL),
		Timeout:      DefaultTimeout,
		MaxTokens:    DefaultMaxTokens,
	}
}

func (c Config) withDefaults() Config {
	if c.LocalURL == "" {
		c.LocalURL = DefaultLocalURL
	}
	if c.CloudModel == "" {
		c.CloudModel = DefaultCloudModel
	}
	if c.CloudBaseURL == "" {
		c.CloudBaseURL = DefaultCloudBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	c.LocalURL = strings.TrimRight(c.LocalURL, "/")
	c.CloudBaseURL = strings.TrimRight(c.CloudBaseURL, "/")
	return c
}
