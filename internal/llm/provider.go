package llm

import "context"

// Provider defines the interface for LLM completion backends.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model identifier completions are billed against.
	// Persisted with every evaluation so re-runs can dedup per model.
	Model() string

	// Complete sends the prompt and returns the raw response text.
	// Content-safety filtering is applied by the provider and is not
	// configurable by callers.
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "gemini", "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for the provider
	APIKey string

	// BaseURL for custom endpoints (tests, proxies)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "gemini",
		Model:     "gemini-1.5-flash",
		Timeout:   60,
		MaxTokens: 1024,
	}
}
