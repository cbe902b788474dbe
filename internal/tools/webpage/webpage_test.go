package webpage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edgaragent/edgaragent/internal/backoff"
	"github.com/edgaragent/edgaragent/internal/docstore"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Filing Index</title>
  <style>body { color: red; }</style>
  <script>console.log("tracking");</script>
</head>
<body>
  <!-- nav -->
  <div>Annual Report</div>
  <p>Revenue grew &amp; margins held.</p>
  <table><tr><td>Q1</td><td>Q2</td></tr></table>
</body>
</html>`

func TestExecute_SavesExtractedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != defaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", ua, defaultUserAgent)
		}
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	contexts := docstore.NewContexts()
	tool := NewParseTool(Config{}, contexts)
	ctx := docstore.WithConversation(context.Background(), "conv-1")

	params, _ := json.Marshal(map[string]string{"url": server.URL, "key": "filing"})
	result, err := tool.Execute(ctx, params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("Execute() IsError = true, content %q", result.Content)
	}
	if !strings.Contains(result.Content, "SUCCESS") || !strings.Contains(result.Content, "filing") {
		t.Errorf("status = %q, want success mentioning the key", result.Content)
	}

	text, err := contexts.ForConversation("conv-1").Get("filing")
	if err != nil {
		t.Fatalf("Get(filing) error = %v", err)
	}
	if strings.Contains(text, "console.log") || strings.Contains(text, "color: red") {
		t.Errorf("stored text still contains script or style content:\n%s", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("stored text still contains markup:\n%s", text)
	}
	for _, want := range []string{"Annual Report", "Revenue grew & margins held.", "Q1", "Q2"} {
		if !strings.Contains(text, want) {
			t.Errorf("stored text missing %q:\n%s", want, text)
		}
	}
}

func TestExecute_OverwriteWarnsInStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>fresh</p>"))
	}))
	defer server.Close()

	contexts := docstore.NewContexts()
	contexts.ForConversation("conv-2").Save("page", "stale")
	tool := NewParseTool(Config{}, contexts)
	ctx := docstore.WithConversation(context.Background(), "conv-2")

	params, _ := json.Marshal(map[string]string{"url": server.URL, "key": "page"})
	result, err := tool.Execute(ctx, params)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(result.Content, "WARNING") {
		t.Errorf("status = %q, want overwrite warning", result.Content)
	}
	if text, _ := contexts.ForConversation("conv-2").Get("page"); text != "fresh" {
		t.Errorf("stored text = %q, want overwritten content", text)
	}
}

func TestExecute_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("<p>ok</p>"))
	}))
	defer server.Close()

	tool := NewParseTool(Config{}, docstore.NewContexts())
	tool.retryOpts.Policy = backoff.Policy{Initial: time.Millisecond, Max: time.Millisecond, Factor: 2, MaxAttempts: 8}
	ctx := docstore.WithConversation(context.Background(), "conv-3")

	params, _ := json.Marshal(map[string]string{"url": server.URL, "key": "k"})
	if _, err := tool.Execute(ctx, params); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("server calls = %d, want 2", calls)
	}
}

func TestExecute_HTTPErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	tool := NewParseTool(Config{}, docstore.NewContexts())
	ctx := docstore.WithConversation(context.Background(), "conv-4")
	params, _ := json.Marshal(map[string]string{"url": server.URL, "key": "k"})
	_, err := tool.Execute(ctx, params)
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("error = %v, want 404 status error", err)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "strips tags",
			html: "<p>hello <b>world</b></p>",
			want: "hello world",
		},
		{
			name: "block tags break lines",
			html: "<div>one</div><div>two</div>",
			want: "one\ntwo",
		},
		{
			name: "entities unescape",
			html: "<p>cash &amp; equivalents &gt; 0</p>",
			want: "cash & equivalents > 0",
		},
		{
			name: "script and comments removed",
			html: "<script>x()</script><!-- hidden -->visible",
			want: "visible",
		},
		{
			name: "whitespace collapses",
			html: "<p>  spaced   out\ttext  </p>",
			want: "spaced\nout\ttext",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractText(tt.html); got != tt.want {
				t.Errorf("ExtractText(%q) = %q, want %q", tt.html, got, tt.want)
			}
		})
	}
}
