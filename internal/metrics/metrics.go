// Package metrics exposes Prometheus instrumentation for tool dispatch and
// upstream call health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolDispatches counts tool invocations by tool name and outcome
	// ("success" or "error").
	ToolDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edgaragent",
		Name:      "tool_dispatches_total",
		Help:      "Tool invocations by name and outcome.",
	}, []string{"tool", "outcome"})

	// RetryAttempts counts backoff retries by policy.
	RetryAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edgaragent",
		Name:      "retry_attempts_total",
		Help:      "Backoff retries by policy.",
	}, []string{"policy"})

	// ModelCalls counts secondary-model calls by provider outcome.
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edgaragent",
		Name:      "model_calls_total",
		Help:      "Secondary model calls by outcome.",
	}, []string{"outcome"})

	// ModelTokens counts tokens consumed by the secondary model call.
	ModelTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edgaragent",
		Name:      "model_tokens_total",
		Help:      "Tokens consumed by secondary model calls.",
	}, []string{"direction"})

	// LimiterWait observes time spent waiting on the shared rate limiter
	// before a model call is issued.
	LimiterWait = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edgaragent",
		Name:      "ratelimit_wait_seconds",
		Help:      "Time spent waiting on the shared rate limiter.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Outcome converts an error into the label value used by the counters.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
