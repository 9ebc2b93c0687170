package llms

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"youassist/internal/config"
	"youassist/internal/rag/interfaces"
)

// GenerationError signals a failure of the remote generation backend
// (transport, auth, quota) after retries were exhausted.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation backend %s: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// New creates a generation backend for the configured provider.
func New(cfg config.ProviderConfig) (interfaces.LLM, error) {
	timeout, err := config.ParseDuration(cfg.Timeout, 60*time.Second)
	if err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.Model, cfg.BaseURL, timeout)
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL, timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

const retryAttempts = 3

// withRetry runs op with a per-attempt timeout and bounded exponential
// backoff. The last error is wrapped in a GenerationError.
func withRetry(ctx context.Context, provider string, timeout time.Duration, op func(ctx context.Context) error) error {
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := op(attemptCtx); err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), retryAttempts-1), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return &GenerationError{Provider: provider, Err: err}
	}
	return nil
}
