// handlers.go contains the command implementations: configuration loading,
// tool registry assembly, and output formatting.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/edgaragent/edgaragent/internal/agent"
	"github.com/edgaragent/edgaragent/internal/config"
	"github.com/edgaragent/edgaragent/internal/docstore"
	"github.com/edgaragent/edgaragent/internal/llm"
	"github.com/edgaragent/edgaragent/internal/ratelimit"
	"github.com/edgaragent/edgaragent/internal/retrieve"
	"github.com/edgaragent/edgaragent/internal/tools/edgar"
	"github.com/edgaragent/edgaragent/internal/tools/retrieveinfo"
	"github.com/edgaragent/edgaragent/internal/tools/webpage"
	"github.com/edgaragent/edgaragent/internal/tools/websearch"
)

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}

// lazyQuerier defers model client construction to the first query, so
// commands that never reach the model (tools list, non-model tool calls)
// work without model credentials.
type lazyQuerier struct {
	once    sync.Once
	config  llm.Config
	querier llm.Querier
	err     error
}

func (l *lazyQuerier) Query(ctx context.Context, prompt string) (*llm.Response, error) {
	l.once.Do(func() {
		l.querier, l.err = llm.New(ctx, l.config)
	})
	if l.err != nil {
		return nil, fmt.Errorf("initializing model backend: %w", l.err)
	}
	return l.querier.Query(ctx, prompt)
}

// buildRegistry assembles the tool registry with every tool the agent
// exposes. The model-backed retrieval tool shares one rate limiter with any
// other caller of the same backend.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*agent.Registry, *docstore.Contexts, error) {
	contexts := docstore.NewContexts()

	querier := &lazyQuerier{config: cfg.LLM}
	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	retriever := retrieve.New(querier, limiter, retrieve.WithLogger(logger))

	registry := agent.NewRegistry(
		agent.WithLogger(logger),
		agent.WithVerboseErrors(cfg.Verbose),
	)
	tools := []agent.Tool{
		edgar.NewSearchTool(cfg.Tools.Edgar),
		websearch.NewSearchTool(cfg.Tools.WebSearch),
		webpage.NewParseTool(cfg.Tools.Webpage, contexts),
		retrieveinfo.NewTool(retriever, contexts),
	}
	for _, tool := range tools {
		if err := registry.Register(tool); err != nil {
			return nil, nil, err
		}
	}
	return registry, contexts, nil
}

func runToolsList(ctx context.Context, configPath string, withSchemas bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	registry, _, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	tools := registry.Tools()
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	for _, tool := range tools {
		fmt.Printf("%s\n", tool.Name())
		for _, line := range strings.Split(tool.Description(), "\n") {
			fmt.Printf("    %s\n", line)
		}
		if withSchemas {
			var pretty map[string]any
			if err := json.Unmarshal(tool.Schema(), &pretty); err == nil {
				formatted, _ := json.MarshalIndent(pretty, "    ", "  ")
				fmt.Printf("    %s\n", formatted)
			}
		}
		fmt.Println()
	}
	return nil
}

func runToolsCall(ctx context.Context, configPath, toolName, argsJSON, conversation string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	registry, _, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	if conversation == "" {
		conversation = uuid.NewString()
	}
	ctx = docstore.WithConversation(ctx, conversation)

	envelope := registry.Dispatch(ctx, toolName, json.RawMessage(argsJSON))
	output, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(output))
	return nil
}

func runRetrieve(ctx context.Context, configPath, prompt, rangesJSON string, docs []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Logging)

	querier, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("initializing model backend: %w", err)
	}
	limiter := ratelimit.NewLimiter(cfg.RateLimit)
	retriever := retrieve.New(querier, limiter, retrieve.WithLogger(logger))

	store := docstore.NewStore()
	for _, doc := range docs {
		key, path, ok := strings.Cut(doc, "=")
		if !ok {
			return fmt.Errorf("invalid --doc %q, want key=path", doc)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading document %q: %w", key, err)
		}
		store.Save(key, string(data))
	}

	var ranges []retrieve.Range
	if rangesJSON != "" {
		if err := json.Unmarshal([]byte(rangesJSON), &ranges); err != nil {
			return fmt.Errorf("parsing --ranges: %w", err)
		}
	}

	resp, err := retriever.Retrieve(ctx, store, prompt, ranges)
	if err != nil {
		return err
	}
	fmt.Println(resp.Text)
	logger.Info("retrieval usage", "usage", resp.Usage.String())
	return nil
}
