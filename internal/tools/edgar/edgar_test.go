package edgar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edgaragent/edgaragent/internal/backoff"
)

// fastRetry keeps retry-path tests from sleeping.
func fastRetry(t *SearchTool) {
	t.retryOpts.Policy = backoff.Policy{
		Initial:     time.Millisecond,
		Max:         time.Millisecond,
		Factor:      2,
		MaxAttempts: 8,
	}
}

func filingsResponse(n int) string {
	filings := make([]string, n)
	for i := range filings {
		filings[i] = `{"id": "f` + string(rune('a'+i)) + `"}`
	}
	return `{"filings": [` + strings.Join(filings, ",") + `]}`
}

func TestExecute_SendsSearchPayload(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "test-key" {
			t.Errorf("Authorization = %q, want %q", auth, "test-key")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Write([]byte(filingsResponse(1)))
	}))
	defer server.Close()

	tool := NewSearchTool(Config{APIKey: "test-key", APIURL: server.URL})
	params := `{
		"query": "material weakness",
		"form_types": ["10-K", "10-Q"],
		"ciks": ["0000320193"],
		"start_date": "2024-01-01",
		"end_date": "2024-12-31",
		"page": "2",
		"top_n_results": 5
	}`
	result, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("Execute() IsError = true, content %q", result.Content)
	}

	if got["query"] != "material weakness" {
		t.Errorf("query = %v", got["query"])
	}
	if got["page"] != "2" {
		t.Errorf("page = %v", got["page"])
	}
	forms, _ := got["formTypes"].([]any)
	if len(forms) != 2 || forms[0] != "10-K" {
		t.Errorf("formTypes = %v", got["formTypes"])
	}
	if got["endDate"] != "2024-12-31" {
		t.Errorf("endDate = %v", got["endDate"])
	}
}

func TestExecute_ClampsEndDate(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"filings": []}`))
	}))
	defer server.Close()

	tool := NewSearchTool(Config{APIKey: "k", APIURL: server.URL})
	params := `{"query": "q", "form_types": [], "ciks": [], "start_date": "2025-01-01", "end_date": "2026-01-01", "page": "1", "top_n_results": 1}`
	if _, err := tool.Execute(context.Background(), json.RawMessage(params)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got["endDate"] != maxEndDate {
		t.Errorf("endDate = %v, want clamped to %s", got["endDate"], maxEndDate)
	}
}

func TestExecute_StringEncodedListParams(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"filings": []}`))
	}))
	defer server.Close()

	tool := NewSearchTool(Config{APIKey: "k", APIURL: server.URL})
	params := `{"query": "q", "form_types": "['10-K', '10-Q']", "ciks": "[]", "start_date": "2024-01-01", "end_date": "2024-06-01", "page": "1", "top_n_results": 3}`
	if _, err := tool.Execute(context.Background(), json.RawMessage(params)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	forms, _ := got["formTypes"].([]any)
	if len(forms) != 2 || forms[0] != "10-K" || forms[1] != "10-Q" {
		t.Errorf("formTypes = %v, want decoded string-encoded list", got["formTypes"])
	}
}

func TestExecute_TruncatesToTopN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(filingsResponse(5)))
	}))
	defer server.Close()

	tool := NewSearchTool(Config{APIKey: "k", APIURL: server.URL})
	params := `{"query": "q", "form_types": [], "ciks": [], "start_date": "2024-01-01", "end_date": "2024-06-01", "page": "1", "top_n_results": 2}`
	result, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var filings []json.RawMessage
	if err := json.Unmarshal([]byte(result.Content), &filings); err != nil {
		t.Fatalf("decoding content: %v", err)
	}
	if len(filings) != 2 {
		t.Errorf("len(filings) = %d, want 2", len(filings))
	}
}

func TestExecute_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(filingsResponse(1)))
	}))
	defer server.Close()

	tool := NewSearchTool(Config{APIKey: "k", APIURL: server.URL})
	fastRetry(tool)
	params := `{"query": "q", "form_types": [], "ciks": [], "start_date": "2024-01-01", "end_date": "2024-06-01", "page": "1", "top_n_results": 1}`
	if _, err := tool.Execute(context.Background(), json.RawMessage(params)); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("server calls = %d, want 3", calls)
	}
}

func TestExecute_NonRetryableStatusFailsImmediately(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	tool := NewSearchTool(Config{APIKey: "k", APIURL: server.URL})
	fastRetry(tool)
	params := `{"query": "q", "form_types": [], "ciks": [], "start_date": "2024-01-01", "end_date": "2024-06-01", "page": "1", "top_n_results": 1}`
	_, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err == nil {
		t.Fatal("Execute() error = nil, want SEC API error")
	}
	if !strings.Contains(err.Error(), "SEC API error") {
		t.Errorf("error = %v, want SEC API error wrapping", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want 1", calls)
	}
}

func TestExecute_MissingAPIKey(t *testing.T) {
	tool := NewSearchTool(Config{})
	params := `{"query": "q", "form_types": [], "ciks": [], "start_date": "2024-01-01", "end_date": "2024-06-01", "page": "1", "top_n_results": 1}`
	_, err := tool.Execute(context.Background(), json.RawMessage(params))
	if err == nil || !strings.Contains(err.Error(), "SEC_EDGAR_API_KEY") {
		t.Errorf("error = %v, want missing key error", err)
	}
}
