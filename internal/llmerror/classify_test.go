package llmerror

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"http 429", errors.New("HTTP 429: Too Many Requests"), CategoryRateLimit},
		{"rate limit prose", errors.New("you have hit the rate limit"), CategoryRateLimit},
		{"grpc resource exhausted", errors.New("rpc error: code = RESOURCE_EXHAUSTED desc = quota exceeded"), CategoryRateLimit},
		{"free tier", errors.New("free_tier limit reached"), CategoryRateLimit},
		{"quota", errors.New("Quota exceeded for metric"), CategoryRateLimit},
		{"empty message", errors.New(""), CategoryTimeout},
		{"whitespace message", errors.New("   "), CategoryTimeout},
		{"deadline", errors.New("context deadline exceeded"), CategoryTimeout},
		{"plain failure", errors.New("invalid argument: bad CIK"), CategoryUpstream},
		{"server error", errors.New("500 internal server error"), CategoryUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCategory_IsRetryable(t *testing.T) {
	if !CategoryRateLimit.IsRetryable() {
		t.Error("rate limit category should be retryable")
	}
	if CategoryUpstream.IsRetryable() {
		t.Error("upstream category should not be retryable")
	}
	if CategoryTimeout.IsRetryable() {
		t.Error("timeout category should not be retryable at this layer")
	}
}

func TestRetryAfterHint(t *testing.T) {
	tests := []struct {
		msg    string
		want   time.Duration
		wantOK bool
	}{
		{"quota exceeded, retry in 7s", 7 * time.Second, true},
		{"RESOURCE_EXHAUSTED. Retry in 12.5s with backoff", 12500 * time.Millisecond, true},
		{"quota exceeded, try later", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := RetryAfterHint(errors.New(tt.msg))
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("RetryAfterHint(%q) = (%v, %v), want (%v, %v)", tt.msg, got, ok, tt.want, tt.wantOK)
		}
	}
	if _, ok := RetryAfterHint(nil); ok {
		t.Error("RetryAfterHint(nil) should report no hint")
	}
}

func TestNormalize_EmptyMessageBecomesTimeout(t *testing.T) {
	err := Normalize("fetch page", errors.New(""))
	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Normalize() = %T, want *TimeoutError", err)
	}
	if te.Error() == "" {
		t.Error("TimeoutError message must be descriptive, not empty")
	}
	if !IsTimeout(err) {
		t.Error("IsTimeout() = false for normalized timeout")
	}
}

func TestNormalize_PassThrough(t *testing.T) {
	original := errors.New("connection refused")
	if got := Normalize("fetch page", original); got != original {
		t.Errorf("Normalize() = %v, want error unchanged", got)
	}
	if got := Normalize("fetch page", nil); got != nil {
		t.Errorf("Normalize(nil) = %v, want nil", got)
	}
}

func TestQuotaViolations(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want []Violation
	}{
		{
			"per minute requests",
			"429 free_tier: generate_content_free_tier_requests PerMinute exceeded",
			[]Violation{ViolationRequestsPerMinute},
		},
		{
			"per day requests",
			"429 free_tier: generate_content_free_tier_requests, limit per day reached",
			[]Violation{ViolationRequestsPerDay},
		},
		{
			"input tokens",
			"quota metric input_token_count exceeded",
			[]Violation{ViolationInputTokensPerMinute},
		},
		{
			"fallback requests",
			"free_tier requests exceeded",
			[]Violation{ViolationRequests},
		},
		{
			"nothing recognizable",
			"some other failure",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuotaViolations(errors.New(tt.msg))
			if len(got) != len(tt.want) {
				t.Fatalf("QuotaViolations() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("violation[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestQuotaExhaustedError_Message(t *testing.T) {
	err := &QuotaExhaustedError{
		Attempts:   4,
		Violations: []Violation{ViolationRequestsPerDay},
		RetryAfter: 30 * time.Second,
		Cause:      errors.New("429 free_tier"),
	}
	msg := err.Error()
	for _, want := range []string{"4 attempts", string(ViolationRequestsPerDay), "30.0 seconds", "remediation"} {
		if !strings.Contains(msg, want) {
			t.Errorf("QuotaExhaustedError message missing %q:\n%s", want, msg)
		}
	}
	if !errors.Is(err, err.Cause) {
		t.Error("QuotaExhaustedError should unwrap to its cause")
	}
}
