package schema

import "fmt"

// Chunk is the central data structure representing one bounded segment of a
// transcript together with its vector representation. It is the primary data
// carrier throughout the RAG pipeline.
type Chunk struct {
	// ID is the unique identifier for this chunk. It is derived
	// deterministically from the corpus and the chunk index, which makes
	// ingestion idempotent: re-ingesting the same transcript produces the
	// same ids and already-present ids are skipped.
	ID string

	// CorpusID identifies the transcript this chunk was segmented from.
	CorpusID string

	// Index is the chunk's ordinal position within the transcript.
	Index int

	// Text is the chunk's content, an exact slice of the transcript.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// ChunkID derives the deterministic id for a chunk of a corpus.
func ChunkID(corpusID string, index int) string {
	return fmt.Sprintf("%s-chunk-%d", corpusID, index)
}

// ScoredChunk is a retrieval result: a chunk with its similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// State is the record threaded through a single workflow invocation.
// Only the fields relevant to the invoked entry point are ever populated;
// the rest stay at their zero value.
type State struct {
	TranscriptText string
	UserQuery      string
	Summary        string
	Answer         string
}
