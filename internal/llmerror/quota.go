package llmerror

import (
	"fmt"
	"strings"
	"time"
)

// Violation names a specific quota limit that was exceeded, parsed from the
// provider's error text.
type Violation string

const (
	ViolationInputTokensPerMinute Violation = "input tokens per minute limit exceeded"
	ViolationRequestsPerMinute    Violation = "requests per minute limit exceeded"
	ViolationRequestsPerDay       Violation = "requests per day limit exceeded (daily quota exhausted)"
	ViolationInputTokens          Violation = "input tokens limit exceeded"
	ViolationRequests             Violation = "requests limit exceeded"
)

// QuotaViolations parses the free-tier quota breakdown out of a provider
// error message. Returns nil when the message names no recognizable limit.
func QuotaViolations(err error) []Violation {
	if err == nil {
		return nil
	}
	msg := err.Error()
	lower := strings.ToLower(msg)

	var violations []Violation
	if strings.Contains(lower, "input_token_count") {
		violations = append(violations, ViolationInputTokensPerMinute)
	}
	if strings.Contains(msg, "generate_content_free_tier_requests") {
		if strings.Contains(msg, "PerMinute") || strings.Contains(lower, "per minute") {
			violations = append(violations, ViolationRequestsPerMinute)
		}
		if strings.Contains(msg, "PerDay") || strings.Contains(lower, "per day") {
			violations = append(violations, ViolationRequestsPerDay)
		}
	}
	if len(violations) > 0 {
		return violations
	}

	// Fallback when the message carries free-tier markers but none of the
	// structured limit names.
	if strings.Contains(lower, "free_tier") {
		if strings.Contains(lower, "input_token") {
			violations = append(violations, ViolationInputTokens)
		}
		if strings.Contains(lower, "requests") {
			violations = append(violations, ViolationRequests)
		}
	}
	return violations
}

// QuotaExhaustedError is the terminal error raised after the retry ceiling
// on a model quota failure. It carries the diagnostic breakdown and
// remediation guidance for the calling agent.
type QuotaExhaustedError struct {
	Attempts   int
	Violations []Violation
	RetryAfter time.Duration
	Cause      error
}

func (e *QuotaExhaustedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "model quota exceeded after %d attempts", e.Attempts)
	if len(e.Violations) > 0 {
		b.WriteString(":\n")
		for _, v := range e.Violations {
			b.WriteString("- ")
			b.WriteString(string(v))
			b.WriteString("\n")
		}
	} else {
		b.WriteString("\n")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "original error: %v\n", e.Cause)
	}
	b.WriteString("possible remediations:\n")
	fmt.Fprintf(&b, "1. wait and retry: the quota resets based on the limit type (minute/day); wait at least %.1f seconds\n", e.RetryAfter.Seconds())
	b.WriteString("2. upgrade the API key: free tier limits are very low\n")
	b.WriteString("3. reduce call volume: a single user query can trigger multiple model calls (reasoning + tools + synthesis); try simpler queries or increase the rate limiter's minimum delay")
	return b.String()
}

func (e *QuotaExhaustedError) Unwrap() error { return e.Cause }
