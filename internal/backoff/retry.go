package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/edgaragent/edgaragent/internal/llmerror"
)

// Options configures one retryable call.
type Options struct {
	// Policy is the backoff schedule. Required.
	Policy Policy

	// Retryable classifies a failure as retryable. Defaults to
	// llmerror.IsRateLimit: only rate-limit-class errors are retried.
	Retryable func(error) bool

	// RetryAfter extracts a provider-suggested delay from an error, which
	// replaces Policy.Initial as the base for that retry. Optional.
	RetryAfter func(error) (time.Duration, bool)

	// Terminal wraps the final error after the attempt ceiling. Defaults
	// to a generic attempts-exhausted wrap. Only invoked for retryable
	// failures; non-retryable errors always propagate unmodified.
	Terminal func(attempts int, err error) error

	// OnRetry is invoked before each backoff sleep, for logging and
	// metrics. Optional.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// SearchOptions returns the retry configuration for outbound HTTP search
// calls.
func SearchOptions() Options {
	return Options{Policy: SearchPolicy()}
}

// QuotaOptions returns the retry configuration for the secondary model
// call: the provider's retry-after hint seeds the schedule, and exhausting
// the ceiling produces a QuotaExhaustedError carrying the parsed quota
// breakdown and remediation guidance.
func QuotaOptions() Options {
	policy := QuotaPolicy()
	return Options{
		Policy:     policy,
		RetryAfter: llmerror.RetryAfterHint,
		Terminal: func(attempts int, err error) error {
			retryAfter := policy.Initial
			if hint, ok := llmerror.RetryAfterHint(err); ok {
				retryAfter = hint
			}
			return &llmerror.QuotaExhaustedError{
				Attempts:   attempts,
				Violations: llmerror.QuotaViolations(err),
				RetryAfter: retryAfter,
				Cause:      err,
			}
		},
	}
}

// Do executes op until it succeeds, fails with a non-retryable error, or the
// attempt ceiling is reached. Sleeps between attempts are abortable via ctx.
func Do[T any](ctx context.Context, opts Options, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	retryable := opts.Retryable
	if retryable == nil {
		retryable = llmerror.IsRateLimit
	}
	maxAttempts := opts.Policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		value, err := op(ctx)
		if err == nil {
			return value, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		base := time.Duration(0)
		if opts.RetryAfter != nil {
			if hint, ok := opts.RetryAfter(err); ok {
				base = hint
			}
		}
		delay := opts.Policy.Delay(attempt-1, base)
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, delay, err)
		}
		if err := SleepWithContext(ctx, delay); err != nil {
			return zero, err
		}
	}

	if opts.Terminal != nil {
		return zero, opts.Terminal(maxAttempts, lastErr)
	}
	return zero, fmt.Errorf("giving up after %d attempts: %w", maxAttempts, lastErr)
}
