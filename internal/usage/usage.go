// Package usage tracks token consumption reported by model providers.
package usage

import "fmt"

// Usage represents token usage for a single model call.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Total returns the total token count, preferring the provider-reported
// total when present.
func (u Usage) Total() int64 {
	if u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return u.InputTokens + u.OutputTokens
}

// Add accumulates another usage record into this one.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// String formats the usage for log output.
func (u Usage) String() string {
	return fmt.Sprintf("input=%d output=%d total=%d", u.InputTokens, u.OutputTokens, u.Total())
}
