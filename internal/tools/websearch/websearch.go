// Package websearch implements the Google web search tool backed by SerpAPI.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	invopop "github.com/invopop/jsonschema"

	"github.com/edgaragent/edgaragent/internal/agent"
	"github.com/edgaragent/edgaragent/internal/backoff"
	"github.com/edgaragent/edgaragent/internal/llmerror"
)

const (
	defaultAPIURL      = "https://serpapi.com/search.json"
	defaultResultCount = 10

	// resultDateCeiling keeps search results inside the evaluation
	// window, mirroring the EDGAR end-date cap.
	resultDateCeiling = "cdr:1,cd_max:04/07/2025"
)

// Config holds the tool's credentials and defaults.
type Config struct {
	APIKey      string `yaml:"api_key"`
	APIURL      string `yaml:"api_url"`
	ResultCount int    `yaml:"result_count"`
}

// SearchTool implements agent.Tool for Google web search via SerpAPI.
type SearchTool struct {
	config     Config
	httpClient *http.Client
	retryOpts  backoff.Options
}

// NewSearchTool creates the web search tool.
func NewSearchTool(config Config) *SearchTool {
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
	}
	if config.ResultCount <= 0 {
		config.ResultCount = defaultResultCount
	}
	return &SearchTool{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		retryOpts: backoff.SearchOptions(),
	}
}

// Name returns the tool name for LLM function calling.
func (t *SearchTool) Name() string { return "google_web_search" }

// Description returns the tool description.
func (t *SearchTool) Description() string {
	return "Search the web for information"
}

type searchParams struct {
	SearchQuery string `json:"search_query" jsonschema:"description=The query to search for"`
}

// Schema reflects the parameter schema from the params struct.
func (t *SearchTool) Schema() json.RawMessage {
	reflector := invopop.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	raw, err := json.Marshal(reflector.Reflect(&searchParams{}))
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}

// Execute searches the web, retrying on 429 under the search backoff policy.
func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var p searchParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if t.config.APIKey == "" {
		return nil, fmt.Errorf("SERP_API_KEY is not set")
	}

	results, err := backoff.Do(ctx, t.retryOpts, func(ctx context.Context) ([]json.RawMessage, error) {
		return t.search(ctx, p.SearchQuery)
	})
	if err != nil {
		return nil, err
	}

	content, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}
	return &agent.ToolResult{Content: string(content)}, nil
}

func (t *SearchTool) search(ctx context.Context, query string) ([]json.RawMessage, error) {
	params := url.Values{}
	params.Set("api_key", t.config.APIKey)
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(t.config.ResultCount))
	params.Set("tbs", resultDateCeiling)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.config.APIURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, llmerror.Normalize("web search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search API error: %s: %s", resp.Status, data)
	}

	var result struct {
		OrganicResults []json.RawMessage `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}
	return result.OrganicResults, nil
}
