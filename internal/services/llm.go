package services

import (
	"context"
	"fmt"
	"log"
	"time"
)

// TokenUsage accumulates provider-reported token counts across calls.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

func (u *TokenUsage) Add(other TokenUsage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
}

func (u TokenUsage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// TextGenerator is the provider-agnostic contract for a single LLM call.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, TokenUsage, error)
	Model() string
}

// RetryPolicy makes the retry behavior an explicit configuration value.
// MaxAttempts of 1 means a failed call is not retried.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, InitialDelay: 2 * time.Second}
}

// GenerateWithRetry runs a generation call under the given policy. Token
// usage from every attempt is summed, failed attempts included.
func GenerateWithRetry(ctx context.Context, gen TextGenerator, prompt string, temperature float32, policy RetryPolicy) (string, TokenUsage, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var usage TokenUsage
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		result, u, err := gen.Generate(ctx, prompt, temperature)
		usage.Add(u)
		if err == nil {
			return result, usage, nil
		}

		lastErr = err

		// Check if context is cancelled
		select {
		case <-ctx.Done():
			return "", usage, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < attempts {
			log.Printf("⚠️ Attempt %d failed: %v. Retrying...\n", attempt, err)
			if policy.InitialDelay > 0 {
				time.Sleep(policy.InitialDelay)
			}
		}
	}

	return "", usage, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
