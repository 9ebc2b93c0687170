package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"youassist/internal/config"
	"youassist/internal/rag/interfaces"
)

// ProviderError signals a failure of the remote embedding provider
// (network, auth, rate limit) after retries were exhausted.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// New creates an embedding model for the configured provider.
func New(cfg config.ProviderConfig) (interfaces.EmbeddingModel, error) {
	timeout, err := config.ParseDuration(cfg.Timeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAIModel(cfg.APIKey, cfg.Model, cfg.BaseURL, timeout)
	case "ollama":
		return NewOllamaModel(cfg.Model, cfg.BaseURL, timeout)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// retryAttempts bounds the retry loop around every remote call. Embedding
// requests are idempotent, so repeating a failed call is safe.
const retryAttempts = 3

// withRetry runs op with a per-attempt timeout and bounded exponential
// backoff. The last error is wrapped in a ProviderError.
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
		return &ProviderError{Provider: provider, Err: err}
	}
	return nil
}
