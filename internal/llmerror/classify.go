// Package llmerror classifies failures from model providers and upstream
// APIs into retry categories, and extracts quota diagnostics from provider
// error text.
//
// Classification is substring-based because providers signal quota and rate
// limit conditions inconsistently (HTTP status, gRPC codes, or prose). The
// classifier is kept isolated here so it can be swapped per provider without
// touching retry logic.
package llmerror

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Category is the retry classification of an upstream failure.
type Category string

const (
	// CategoryRateLimit indicates the caller exceeded an allowed request
	// rate or quota. Retryable.
	CategoryRateLimit Category = "rate_limit"

	// CategoryTimeout indicates the upstream timed out. Errors with empty
	// message text are reclassified here rather than surfaced opaque.
	CategoryTimeout Category = "timeout"

	// CategoryUpstream indicates a non-transient upstream failure.
	CategoryUpstream Category = "upstream"
)

// IsRetryable reports whether errors in this category should be retried.
func (c Category) IsRetryable() bool {
	return c == CategoryRateLimit
}

// rateLimitKeywords are the provider signals that mark a failure as
// rate-limit class. Matching is case-insensitive.
var rateLimitKeywords = []string{
	"rate limit",
	"rate_limit",
	"429",
	"quota",
	"resource_exhausted",
	"resource exhausted",
	"too many requests",
	"free_tier",
	"quota exceeded",
}

// Classify determines the category of an upstream error.
func Classify(err error) Category {
	if err == nil {
		return CategoryUpstream
	}
	msg := strings.ToLower(err.Error())
	if strings.TrimSpace(msg) == "" {
		return CategoryTimeout
	}
	for _, kw := range rateLimitKeywords {
		if strings.Contains(msg, kw) {
			return CategoryRateLimit
		}
	}
	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "deadline exceeded") ||
		strings.Contains(msg, "context deadline") {
		return CategoryTimeout
	}
	return CategoryUpstream
}

// IsRateLimit reports whether the error is rate-limit class.
func IsRateLimit(err error) bool {
	return Classify(err) == CategoryRateLimit
}

var retryAfterRe = regexp.MustCompile(`retry in ([\d.]+)s`)

// RetryAfterHint extracts a provider-suggested "retry in Ns" delay from the
// error text. Returns false when the error carries no hint.
func RetryAfterHint(err error) (time.Duration, bool) {
	if err == nil {
		return 0, false
	}
	m := retryAfterRe.FindStringSubmatch(strings.ToLower(err.Error()))
	if m == nil {
		return 0, false
	}
	seconds, parseErr := time.ParseDuration(m[1] + "s")
	if parseErr != nil {
		return 0, false
	}
	return seconds, true
}

// TimeoutError replaces an upstream error whose message is empty with a
// descriptive timeout error. Empty messages are what aborted HTTP reads
// look like after the transport gives up.
type TimeoutError struct {
	Op    string
	Cause error
}

func (e *TimeoutError) Error() string {
	return e.Op + ": timed out waiting for upstream response; the URL might be blocked or the server is taking too long to respond"
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

// Normalize reclassifies empty-message errors as TimeoutError so callers
// never see an opaque empty string. Other errors pass through unchanged.
func Normalize(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.TrimSpace(err.Error()) == "" {
		return &TimeoutError{Op: op, Cause: err}
	}
	return err
}

// IsTimeout reports whether the error is timeout-class.
func IsTimeout(err error) bool {
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return Classify(err) == CategoryTimeout
}
