package llm

import (
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("connection refused"), false},
		{"api error 429", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, true},
		{"api error 500", &openai.APIError{HTTPStatusCode: 500, Message: "server error"}, false},
		{"azure rate limit reached", errors.New("RateLimitReached: retry after 60 seconds"), true},
		{"openai rate_limit code", errors.New("error, status code: 429, message: rate_limit_exceeded"), true},
		{"too many requests", errors.New("HTTP 429 Too Many Requests"), true},
		{"wrapped", fmt.Errorf("chat completion (router): %w", &openai.APIError{HTTPStatusCode: 429}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRateLimit(tt.err); got != tt.want {
				t.Errorf("IsRateLimit(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDeriveRouterDeployment(t *testing.T) {
	tests := []struct {
		deployment string
		want       string
	}{
		{"gpt-4o", "gpt-4o-mini"},
		{"gpt-4o-prod", "gpt-4o-mini-prod"},
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"my-deployment", "my-deployment"},
	}

	for _, tt := range tests {
		if got := deriveRouterDeployment(tt.deployment); got != tt.want {
			t.Errorf("deriveRouterDeployment(%q) = %q, want %q", tt.deployment, got, tt.want)
		}
	}
}
