// Package llm defines the secondary-model call interface and its provider
// implementations (Gemini, OpenAI, Anthropic).
//
// Providers are deliberately thin: they issue one request and surface the
// provider's error text verbatim so the rate-limit classifier can work on
// it. Pacing and retries belong to the caller.
package llm

import (
	"context"
	"fmt"

	"github.com/edgaragent/edgaragent/internal/usage"
)

// Querier issues one prompt to a model and returns its output.
type Querier interface {
	Query(ctx context.Context, prompt string) (*Response, error)
}

// Response carries the model's output text and the call's token usage for
// observability.
type Response struct {
	Text  string      `json:"text"`
	Usage usage.Usage `json:"usage"`
}

// Provider selects which model backend to use.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config configures the model backend.
type Config struct {
	Provider Provider `yaml:"provider"`
	Model    string   `yaml:"model"`
	APIKey   string   `yaml:"api_key"`
}

// New constructs the Querier for the configured provider.
func New(ctx context.Context, config Config) (Querier, error) {
	switch config.Provider {
	case ProviderGoogle, "":
		return NewGoogleQuerier(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIQuerier(config)
	case ProviderAnthropic:
		return NewAnthropicQuerier(config)
	default:
		return nil, fmt.Errorf("unknown model provider: %q", config.Provider)
	}
}
