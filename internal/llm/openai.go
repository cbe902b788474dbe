package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/edgaragent/edgaragent/internal/usage"
)

const defaultOpenAIModel = openai.GPT4oMini

// OpenAIQuerier implements Querier against the OpenAI chat completions API.
type OpenAIQuerier struct {
	client *openai.Client
	model  string
}

// NewOpenAIQuerier creates an OpenAI-backed querier.
func NewOpenAIQuerier(config Config) (*OpenAIQuerier, error) {
	if config.APIKey == "" {
		return nil, errors.New("openai: API key is not set")
	}
	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIQuerier{client: openai.NewClient(config.APIKey), model: model}, nil
}

// Query sends the prompt as a single user message.
func (q *OpenAIQuerier) Query(ctx context.Context, prompt string) (*Response, error) {
	resp, err := q.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: q.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai: response contained no choices")
	}
	return &Response{
		Text: resp.Choices[0].Message.Content,
		Usage: usage.Usage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
			TotalTokens:  int64(resp.Usage.TotalTokens),
		},
	}, nil
}
