// Package retrieve resolves {{key}} placeholders in a prompt against a
// conversation's document store and delegates the composed prompt to the
// secondary model call.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/edgaragent/edgaragent/internal/backoff"
	"github.com/edgaragent/edgaragent/internal/docstore"
	"github.com/edgaragent/edgaragent/internal/llm"
	"github.com/edgaragent/edgaragent/internal/metrics"
	"github.com/edgaragent/edgaragent/internal/ratelimit"
)

// placeholderRe matches {{identifier}} tokens. Nested braces are not
// placeholders.
var placeholderRe = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// Range restricts substitution for one document key to a byte range.
// An empty Bounds slice means the whole document; exactly two integers mean
// the half-open slice [start:end). Any other arity is invalid.
type Range struct {
	Key    string `json:"key"`
	Bounds []int  `json:"range"`
}

// MalformedPromptError reports a prompt containing no {{key}} placeholder.
type MalformedPromptError struct {
	Prompt string
}

func (e *MalformedPromptError) Error() string {
	return "the prompt must include at least one data storage key in the format {{key_name}}"
}

// InvalidRangeError reports a character range whose arity is neither 0 nor 2.
type InvalidRangeError struct {
	Key   string
	Arity int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("the character range for key %q must be a list of two elements or an empty list, got %d elements", e.Key, e.Arity)
}

// Retriever composes prompts from stored documents and submits them to the
// model, paced by the shared rate limiter and retried under the quota
// policy.
type Retriever struct {
	model   llm.Querier
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// Option customizes a Retriever.
type Option func(*Retriever)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) { r.logger = logger }
}

// New creates a Retriever. The limiter must be the instance shared by every
// caller of the same model backend.
func New(model llm.Querier, limiter *ratelimit.Limiter, opts ...Option) *Retriever {
	r := &Retriever{
		model:   model,
		limiter: limiter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve validates the prompt, substitutes every placeholder with its
// (possibly sliced) stored content, and submits the composed prompt to the
// model. Validation fails fast, before any store mutation or network call,
// and substitution is atomic: either all placeholders resolve or none are
// applied.
//
// Substitution is deterministic for a fixed prompt and store state; the
// model output is not.
func (r *Retriever) Retrieve(ctx context.Context, store *docstore.Store, prompt string, ranges []Range) (*llm.Response, error) {
	composed, err := Compose(store, prompt, ranges)
	if err != nil {
		return nil, err
	}

	waitStart := time.Now()
	if err := r.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	metrics.LimiterWait.Observe(time.Since(waitStart).Seconds())

	quotaOpts := backoff.QuotaOptions()
	quotaOpts.OnRetry = r.onRetry
	response, err := backoff.Do(ctx, quotaOpts, func(ctx context.Context) (*llm.Response, error) {
		return r.model.Query(ctx, composed)
	})
	metrics.ModelCalls.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	metrics.ModelTokens.WithLabelValues("input").Add(float64(response.Usage.InputTokens))
	metrics.ModelTokens.WithLabelValues("output").Add(float64(response.Usage.OutputTokens))
	r.logger.Debug("retrieval completed",
		"prompt_bytes", len(composed),
		"usage", response.Usage.String(),
	)
	return response, nil
}

// Compose resolves and substitutes placeholders without calling the model.
// Resolution happens in two phases: every key is resolved (and sliced)
// first, so a late-failing key cannot corrupt a partially substituted
// prompt.
func Compose(store *docstore.Store, prompt string, ranges []Range) (string, error) {
	matches := placeholderRe.FindAllStringSubmatch(prompt, -1)
	if len(matches) == 0 {
		return "", &MalformedPromptError{Prompt: prompt}
	}

	// Distinct keys in first-occurrence order.
	seen := make(map[string]bool)
	var keys []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}

	bounds := make(map[string][]int, len(ranges))
	for _, rg := range ranges {
		bounds[rg.Key] = rg.Bounds
	}

	// Phase one: resolve everything.
	resolved := make(map[string]string, len(keys))
	for _, key := range keys {
		content, err := store.Get(key)
		if err != nil {
			return "", err
		}
		if b, ok := bounds[key]; ok {
			switch len(b) {
			case 0:
				// Empty range: whole document.
			case 2:
				content = slice(content, b[0], b[1])
			default:
				return "", &InvalidRangeError{Key: key, Arity: len(b)}
			}
		}
		resolved[key] = content
	}

	// Phase two: substitute.
	return placeholderRe.ReplaceAllStringFunc(prompt, func(token string) string {
		key := placeholderRe.FindStringSubmatch(token)[1]
		return resolved[key]
	}), nil
}

// slice applies half-open [start:end) truncation semantics: out-of-range
// indices clamp, and an inverted range yields the empty string.
func slice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= len(s) || start >= end {
		return ""
	}
	return s[start:end]
}

func (r *Retriever) onRetry(attempt int, delay time.Duration, err error) {
	metrics.RetryAttempts.WithLabelValues("quota").Inc()
	r.logger.Warn("model quota error, backing off",
		"attempt", attempt,
		"delay", delay,
		"error", err,
	)
}
