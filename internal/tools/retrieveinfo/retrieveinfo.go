// Package retrieveinfo implements the retrieve_information tool: it turns a
// placeholder prompt plus the conversation's stored documents into a
// secondary model call.
package retrieveinfo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edgaragent/edgaragent/internal/agent"
	"github.com/edgaragent/edgaragent/internal/docstore"
	"github.com/edgaragent/edgaragent/internal/retrieve"
)

// Tool implements agent.Tool over a retrieve.Retriever.
type Tool struct {
	retriever *retrieve.Retriever
	contexts  *docstore.Contexts
}

// NewTool creates the retrieval tool.
func NewTool(retriever *retrieve.Retriever, contexts *docstore.Contexts) *Tool {
	return &Tool{retriever: retriever, contexts: contexts}
}

// Name returns the tool name for LLM function calling.
func (t *Tool) Name() string { return "retrieve_information" }

// Description returns the tool description.
func (t *Tool) Description() string {
	return `Retrieve information from the conversation's data structure (dict) and allow character range extraction.

IMPORTANT: Your prompt MUST include at least one key from the data storage using the exact format: {{key_name}}

For example, if you want to analyze data stored under the key "financial_report", your prompt should look like:
"Analyze the following financial report and extract the revenue figures: {{financial_report}}"

The {{key_name}} will be replaced with the actual content stored under that key before being sent to the LLM.
If you don't use this exact format with double braces, the tool will fail to retrieve the information.

You can optionally specify character ranges for each document key to extract only portions of documents. That can be useful to avoid token limit errors or improve efficiency by selecting only part of the document.
For example, if "financial_report" contains "Annual Report 2023" and you specify a range [1, 5] for that key, only "nnua" will be inserted into the prompt.

The output is the result from the LLM that receives the prompt with the inserted data.

NOTE: This tool makes a model API call each time it's invoked. A single user query can trigger multiple API calls (agent reasoning + tool invocations + answer synthesis), which may hit rate limits on free-tier API keys.`
}

// Schema returns the JSON schema for tool parameters.
func (t *Tool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type": "string",
				"description": "The prompt that will be passed to the LLM. You MUST include at least one data storage key in the format {{key_name}} - " +
					"for example: 'Summarize this 10-K filing: {{company_10k}}'. The content stored under each key will replace the {{key_name}} placeholder.",
			},
			"input_character_ranges": map[string]any{
				"type": []string{"array", "string"},
				"description": "An array mapping document keys to their character ranges. Each range should be an array where the first element is the start index " +
					"and the second element is the end index. Can be used to only read portions of documents. By default, the full document is used. " +
					"To use the full document, set the range to an empty list [].",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"key":   map[string]any{"type": "string"},
						"range": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
					},
					"required": []string{"key", "range"},
				},
			},
		},
		"required": []string{"prompt"},
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}

type retrieveParams struct {
	Prompt string     `json:"prompt"`
	Ranges rangesList `json:"input_character_ranges"`
}

// rangesList tolerates the ranges parameter arriving as its JSON-encoded
// string form, the same quirk StringList handles for plain string arrays.
type rangesList []retrieve.Range

func (r *rangesList) UnmarshalJSON(data []byte) error {
	var ranges []retrieve.Range
	if err := json.Unmarshal(data, &ranges); err == nil {
		*r = ranges
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return fmt.Errorf("input_character_ranges must be an array or a JSON-encoded array: %w", err)
	}
	if encoded == "" {
		*r = nil
		return nil
	}
	if err := json.Unmarshal([]byte(encoded), &ranges); err != nil {
		return fmt.Errorf("input_character_ranges string did not decode to an array: %w", err)
	}
	*r = ranges
	return nil
}

// Execute composes the prompt from stored documents and returns the model's
// answer with its usage metadata.
func (t *Tool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var p retrieveParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}

	store := t.contexts.ForConversation(docstore.ConversationID(ctx))
	resp, err := t.retriever.Retrieve(ctx, store, p.Prompt, p.Ranges)
	if err != nil {
		return nil, err
	}
	return &agent.ToolResult{
		Content: resp.Text,
		Usage:   &resp.Usage,
	}, nil
}
