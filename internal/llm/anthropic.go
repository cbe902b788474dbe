package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/edgaragent/edgaragent/internal/usage"
)

const (
	defaultAnthropicModel     = "claude-3-5-haiku-latest"
	defaultAnthropicMaxTokens = 4096
)

// AnthropicQuerier implements Querier against the Anthropic messages API.
type AnthropicQuerier struct {
	client anthropic.Client
	model  string
}

// NewAnthropicQuerier creates an Anthropic-backed querier.
func NewAnthropicQuerier(config Config) (*AnthropicQuerier, error) {
	if config.APIKey == "" {
		return nil, errors.New("anthropic: API key is not set")
	}
	model := config.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &AnthropicQuerier{
		client: anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:  model,
	}, nil
}

// Query sends the prompt as a single user message and concatenates the text
// blocks of the reply.
func (q *AnthropicQuerier) Query(ctx context.Context, prompt string) (*Response, error) {
	message, err := q.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(q.model),
		MaxTokens: defaultAnthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return &Response{
		Text: text.String(),
		Usage: usage.Usage{
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		},
	}, nil
}
