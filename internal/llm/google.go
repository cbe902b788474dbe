package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"github.com/edgaragent/edgaragent/internal/usage"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GoogleQuerier implements Querier against the Gemini API. This is the
// default backend; free-tier keys have very low quotas, which is why every
// call through here is paced and retried by the caller.
type GoogleQuerier struct {
	client *genai.Client
	model  string
}

// NewGoogleQuerier creates a Gemini-backed querier.
func NewGoogleQuerier(ctx context.Context, config Config) (*GoogleQuerier, error) {
	if config.APIKey == "" {
		return nil, errors.New("google: API key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := config.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GoogleQuerier{client: client, model: model}, nil
}

// Query sends the prompt and returns the model output with token usage.
// Errors come back with the provider's text intact, including 429 and
// RESOURCE_EXHAUSTED quota failures.
func (q *GoogleQuerier) Query(ctx context.Context, prompt string) (*Response, error) {
	resp, err := q.client.Models.GenerateContent(ctx, q.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, err
	}

	response := &Response{Text: resp.Text()}
	if meta := resp.UsageMetadata; meta != nil {
		response.Usage = usage.Usage{
			InputTokens:  int64(meta.PromptTokenCount),
			OutputTokens: int64(meta.CandidatesTokenCount),
			TotalTokens:  int64(meta.TotalTokenCount),
		}
	}
	return response, nil
}
