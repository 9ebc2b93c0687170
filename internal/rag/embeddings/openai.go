package embeddings

import (
	"context"
	"fmt"
	"time"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"youassist/internal/rag/interfaces"
)

// OpenAIModel is an embedding client for the OpenAI API.
type OpenAIModel struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIModel creates a new OpenAIModel client. baseURL is optional and
// overrides the default API endpoint.
func NewOpenAIModel(apiKey, model, baseURL string, timeout time.Duration) (*OpenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIModel{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}, nil
}

// Embed generates an embedding vector for a single text.
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embedding vectors for a batch of texts.
func (m *OpenAIModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var resp openai.EmbeddingResponse

	err := withRetry(ctx, "openai", m.timeout, func(ctx context.Context) error {
		var err error
		resp, err = m.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(m.model),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, &ProviderError{Provider: "openai", Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))}
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

var _ interfaces.EmbeddingModel = (*OpenAIModel)(nil)
