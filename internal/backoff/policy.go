// Package backoff retries operations that fail with rate-limit-class errors,
// using exponential backoff. Non-retryable failures propagate unmodified on
// the first attempt.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Policy defines the parameters for exponential backoff.
type Policy struct {
	// Initial is the base delay before the first retry.
	Initial time.Duration
	// Max caps the computed delay.
	Max time.Duration
	// Factor is the exponential multiplier applied per retry.
	Factor float64
	// FullJitter, when set, replaces each computed delay with a uniform
	// random value in [0, delay).
	FullJitter bool
	// MaxAttempts is the total attempt ceiling, including the first call.
	MaxAttempts int
}

// Delay computes the backoff before retry number `retry` (0-indexed), using
// base as the initial delay. base lets callers seed the schedule from a
// provider-supplied retry-after hint.
func (p Policy) Delay(retry int, base time.Duration) time.Duration {
	return p.delayWithRand(retry, base, rand.Float64()) // #nosec G404 -- jitter does not require cryptographic randomness
}

func (p Policy) delayWithRand(retry int, base time.Duration, random float64) time.Duration {
	if base <= 0 {
		base = p.Initial
	}
	d := float64(base) * math.Pow(p.Factor, float64(retry))
	if p.Max > 0 && d > float64(p.Max) {
		d = float64(p.Max)
	}
	if p.FullJitter {
		d *= random
	}
	return time.Duration(d)
}

// SearchPolicy is the schedule for outbound HTTP search APIs (SEC EDGAR,
// SerpAPI): eight attempts, 3s base doubling per retry, full jitter.
func SearchPolicy() Policy {
	return Policy{
		Initial:     3 * time.Second,
		Max:         60 * time.Second,
		Factor:      2,
		FullJitter:  true,
		MaxAttempts: 8,
	}
}

// QuotaPolicy is the schedule for model-quota failures on the secondary
// model call: four attempts, 5s base doubling per retry, no jitter. The
// provider's retry-after hint, when present, replaces the base delay.
func QuotaPolicy() Policy {
	return Policy{
		Initial:     5 * time.Second,
		Max:         5 * time.Minute,
		Factor:      2,
		MaxAttempts: 4,
	}
}
