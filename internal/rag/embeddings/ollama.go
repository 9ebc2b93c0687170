package embeddings

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"

	"youassist/internal/rag/interfaces"
)

// OllamaModel is an embedding client for a local Ollama instance.
type OllamaModel struct {
	client  *ollama.Client
	model   string
	timeout time.Duration
}

// NewOllamaModel creates a new OllamaModel client. An empty baseURL defaults
// to the standard local Ollama address.
func NewOllamaModel(model, baseURL string, timeout time.Duration) (*OllamaModel, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{Timeout: 120 * time.Second}
	return &OllamaModel{
		client:  ollama.NewClient(parsedURL, hc),
		model:   model,
		timeout: timeout,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (m *OllamaModel) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts.
func (m *OllamaModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp *ollama.EmbedResponse

	err := withRetry(ctx, "ollama", m.timeout, func(ctx context.Context) error {
		var err error
		resp, err = m.client.Embed(ctx, &ollama.EmbedRequest{
			Model: m.model,
			Input: texts,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, &ProviderError{Provider: "ollama", Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Embeddings))}
	}
	return resp.Embeddings, nil
}

var _ interfaces.EmbeddingModel = (*OllamaModel)(nil)
