// Package ratelimit paces outbound calls to a rate-limited backend by
// enforcing a minimum delay between consecutive calls.
package ratelimit

import (
	"context"
	"os"
	"strconv"
	"sync"
	"time"
)

// MinDelayEnv overrides the configured minimum delay, in seconds. It matches
// the knob used in production deployments against the Gemini free tier.
const MinDelayEnv = "GEMINI_API_MIN_DELAY"

// Config configures call pacing.
type Config struct {
	// MinDelay is the minimum spacing between consecutive calls.
	MinDelay time.Duration `yaml:"min_delay"`
	// Enabled controls whether pacing is active.
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the default pacing configuration.
func DefaultConfig() Config {
	return Config{
		MinDelay: time.Second,
		Enabled:  true,
	}
}

// FromEnv applies the MinDelayEnv override to the config if set.
func (c Config) FromEnv() Config {
	if raw := os.Getenv(MinDelayEnv); raw != "" {
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil && seconds >= 0 {
			c.MinDelay = time.Duration(seconds * float64(time.Second))
		}
	}
	return c
}

// Limiter serializes call issuance to one shared backend. All callers that
// talk to the same backend must share one instance; construct it explicitly
// and inject it rather than reaching for a package-level singleton, so each
// distinct backend gets its own limiter.
//
// This is global throttling of one upstream resource, not per-key fairness:
// waiters are not guaranteed FIFO order, but each makes forward progress
// because the lock is only held for the wait computation of one call, never
// across the downstream request itself.
type Limiter struct {
	mu       sync.Mutex
	minDelay time.Duration
	enabled  bool
	last     time.Time

	// now and sleep are swappable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a limiter for one backend.
func NewLimiter(config Config) *Limiter {
	return &Limiter{
		minDelay: config.MinDelay,
		enabled:  config.Enabled,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Acquire blocks until at least the configured minimum delay has elapsed
// since the previous successful Acquire returned, then records the new
// timestamp. It returns early with the context's error if the caller is
// cancelled mid-wait; in that case no timestamp is recorded.
func (l *Limiter) Acquire(ctx context.Context) error {
	if !l.enabled || l.minDelay <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.minDelay - l.now().Sub(l.last); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	l.last = l.now()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
