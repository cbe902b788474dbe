// Package edgar implements the SEC EDGAR full-text search tool.
package edgar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edgaragent/edgaragent/internal/agent"
	"github.com/edgaragent/edgaragent/internal/backoff"
	"github.com/edgaragent/edgaragent/internal/llmerror"
)

const (
	defaultAPIURL = "https://api.sec-api.io/full-text-search"

	// maxEndDate caps the search window; filings after this date are out
	// of the evaluation corpus.
	maxEndDate = "2025-04-07"
)

// Config holds the tool's credentials and endpoint.
type Config struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
}

// SearchTool implements agent.Tool for SEC EDGAR full-text search.
type SearchTool struct {
	config     Config
	httpClient *http.Client
	retryOpts  backoff.Options
}

// NewSearchTool creates the EDGAR search tool.
func NewSearchTool(config Config) *SearchTool {
	if config.APIURL == "" {
		config.APIURL = defaultAPIURL
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
func (t *SearchTool) Name() string { return "edgar_search" }

// Description returns the tool description.
func (t *SearchTool) Description() string {
	return "Search the EDGAR Database through the SEC API. " +
		"You should provide a query, a list of form types, a list of CIKs, a start date, an end date, a page number, and a top N results. " +
		"The results are returned as a list of dictionaries, each containing the metadata for a filing. It does not contain the full text of the filing."
}

type searchParams struct {
	Query       string           `json:"query"`
	FormTypes   agent.StringList `json:"form_types"`
	CIKs        agent.StringList `json:"ciks"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	Page        string           `json:"page"`
	TopNResults int              `json:"top_n_results"`
}

// Schema returns the JSON schema for tool parameters.
func (t *SearchTool) Schema() json.RawMessage {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The keyword or phrase to search, such as 'substantial doubt' OR 'material weakness'",
			},
			"form_types": agent.StringListSchema(
				"Limits search to specific SEC form types (e.g., ['8-K', '10-Q']), list of strings."),
			"ciks": agent.StringListSchema(
				"Filters results to filings by specified CIKs, list of strings."),
			"start_date": map[string]any{
				"type":        "string",
				"description": "Start date for the search range in yyyy-mm-dd format. Used with end_date to define the date range. Example: '2024-01-01'.",
			},
			"end_date": map[string]any{
				"type":        "string",
				"description": "End date for the search range, in the same format as start_date.",
			},
			"page": map[string]any{
				"type":        "string",
				"description": "Pagination for results. Default is '1'.",
			},
			"top_n_results": map[string]any{
				"type":        "integer",
				"description": "The top N results to return after the query. Useful if you are not sure the result you are looking for is ranked first after your query.",
			},
		},
		"required": []string{"query", "form_types", "ciks", "start_date", "end_date", "page", "top_n_results"},
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return json.RawMessage(`{"type":"object"}`)
	}
	return raw
}

// Execute searches EDGAR, retrying on 429 under the search backoff policy.
func (t *SearchTool) Execute(ctx context.Context, params json.RawMessage) (*agent.ToolResult, error) {
	var p searchParams
	if err := json.Unmarshal(params, &p); err != nil {
		return &agent.ToolResult{Content: fmt.Sprintf("invalid parameters: %v", err), IsError: true}, nil
	}
	if t.config.APIKey == "" {
		return nil, fmt.Errorf("SEC_EDGAR_API_KEY is not set")
	}
	if p.EndDate > maxEndDate {
		p.EndDate = maxEndDate
	}
	if p.Page == "" {
		p.Page = "1"
	}

	filings, err := backoff.Do(ctx, t.retryOpts, func(ctx context.Context) ([]json.RawMessage, error) {
		return t.search(ctx, p)
	})
	if err != nil {
		return nil, fmt.Errorf("SEC API error: %w", err)
	}

	if p.TopNResults > 0 && len(filings) > p.TopNResults {
		filings = filings[:p.TopNResults]
	}
	content, err := json.Marshal(filings)
	if err != nil {
		return nil, err
	}
	return &agent.ToolResult{Content: string(content)}, nil
}

func (t *SearchTool) search(ctx context.Context, p searchParams) ([]json.RawMessage, error) {
	payload := map[string]any{
		"query":     p.Query,
		"formTypes": []string(p.FormTypes),
		"ciks":      []string(p.CIKs),
		"startDate": p.StartDate,
		"endDate":   p.EndDate,
		"page":      p.Page,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.APIURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", t.config.APIKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, llmerror.Normalize("edgar search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s: %s", resp.Status, bytes.TrimSpace(data))
	}

	var result struct {
		Filings []json.RawMessage `json:"filings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding SEC response: %w", err)
	}
	return result.Filings, nil
}
