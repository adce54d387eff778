package llm

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// IsRateLimit reports whether an error from the model provider indicates a
// rate limit. Azure surfaces these as HTTP 429 or as messages containing
// "RateLimitReached"; OpenAI uses the "rate_limit" error code family.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 {
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "ratelimitreached") ||
		strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429")
}
