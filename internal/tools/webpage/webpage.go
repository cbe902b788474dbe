// Package webpage implements the parse_html_page tool: it fetches a page,
// reduces it to plain text, and saves it into the conversation's document
// store so large documents stay out of the agent's context window.
package webpage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edgaragent/edgaragent/internal/agent"
	"github.com/edgaragent/edgaragent/internal/backoff"
	"github.com/edgaragent/edgaragent/internal/docstore"
	"github.com/edgaragent/edgaragent/internal/llmerror"
)

const (
	defaultUserAgent = "edgaragent/1.0"
	fetchTimeout     = 60 * time.Second

	// maxBodyBytes bounds how much of a page is read; SEC filings can run
	// to hundreds of megabytes of inline XBRL.
	maxBodyBytes = 32 << 20
)

// Config holds fetch settings.
type Config struct {
	UserAgent string `yaml:"user_agent"`
}

// ParseTool implements agent.Tool for fetching and storing web pages.
type ParseTool struct {
	config     Config
	contexts   *docstore.Contexts
	httpClient *http.Client
	retryOpts  backoff.Options
}

// NewParseTool creates the page-parse tool bound to the conversation store
// registry.
func NewParseTool(config Config, contexts *docstore.Contexts) *ParseTool {
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	return &ParseTool{
		config:   config,
		contexts: contexts,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		retryOpts: backoff.SearchOptions(),
	}
}

// Name returns the tool name for LLM function calling.
func (t *ParseTool) Name() string { return "parse_html_page" }

// Description returns the tool description.
func (t *ParseTool) Description() string {
	return "Parse an HTML page. This tool is used to parse the HTML content of a page and saves the content outside of the conversation to avoid context window issues. " +
		"You should provide both the URL of the page to parse, as well as the key you want to use to save the result in the agent's data structure. " +
		"The data structure is a dictionary."
}

type parseParams struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Schema returns the JSON schema for tool parameters.
func (t *ParseTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"url": {
				"type": "string",
				"description": "The URL of the HTML page to parse"
			},
			"key": {
				"type": "string",
				"description": "The key to use when saving the result in the conversation's data structure (dict)."
			}
		},
		"required": ["url", "key"]
	}`)
}

// Execute fetches the page, strips it to plain text, and saves it under the
// given key in the calling conversation's store. The returned status string
// flags overwrites and lists the stored keys.
func (t *ParseTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var p parseParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}

	text, err := backoff.Do(ctx, t.retryOpts, func(ctx context.Context) (string, error) {
		return t.fetch(ctx, p.URL)
	})
	if err != nil {
		return nil, err
	}

	store := t.contexts.ForConversation(docstore.ConversationID(ctx))
	status := store.Save(p.Key, text)
	return &agent.ToolResult{Content: status}, nil
}

func (t *ParseTool) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", t.config.UserAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// Timed-out transports can surface with empty message text;
		// reclassify those rather than passing on an opaque error.
		return "", llmerror.Normalize("parse html page", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: %s", pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", llmerror.Normalize("parse html page", err)
	}
	return ExtractText(string(body)), nil
}
