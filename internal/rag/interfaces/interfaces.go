package interfaces

import (
	"context"

	"youassist/internal/rag/schema"
)

// Segmenter is the interface for splitting a transcript into overlapping
// bounded-size chunk texts. Segmentation is deterministic: the same text
// always yields the same sequence.
type Segmenter interface {
	Segment(text string) []string
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// CompletionOptions fixes the request shape for one generation call site.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// LLM is the interface for a chat-completion backend.
type LLM interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts CompletionOptions) (string, error)
}

// ChunkStore is the interface for the persistent vector index.
type ChunkStore interface {
	// Upsert inserts the chunk if its id is absent. Existing ids are
	// skipped, never overwritten.
	Upsert(ctx context.Context, chunk schema.Chunk) error
	// QueryNearest returns up to k chunks ordered by decreasing similarity.
	// An empty store yields an empty slice, not an error.
	QueryNearest(ctx context.Context, embedding []float32, k int) ([]schema.ScoredChunk, error)
	// ListIDs returns the set of chunk ids already present for a corpus.
	ListIDs(ctx context.Context, corpusID string) (map[string]struct{}, error)
}
