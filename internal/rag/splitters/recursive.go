package splitters

import (
	"fmt"

	"youassist/internal/rag/interfaces"
)

// RecursiveSplitter splits text into overlapping chunks of at most ChunkSize
// runes. Cut points prefer natural boundaries, trying larger separators
// first: paragraph break, line break, sentence end, word break, and finally
// a hard cut. Every chunk is an exact slice of the input and consecutive
// chunks share exactly ChunkOverlap runes, so concatenating the chunks minus
// their overlaps reconstructs the input.
type RecursiveSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewRecursiveSplitter creates a new RecursiveSplitter.
// ChunkSize must be positive and strictly greater than ChunkOverlap;
// anything else is a configuration error, not something to paper over.
func NewRecursiveSplitter(chunkSize, chunkOverlap int) (*RecursiveSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkSize <= chunkOverlap {
		return nil, fmt.Errorf("chunk size (%d) must be greater than chunk overlap (%d)", chunkSize, chunkOverlap)
	}
	return &RecursiveSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, nil
}

// Segment splits text into chunk texts. Empty input yields nil.
func (s *RecursiveSplitter) Segment(text string) []string {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)

	var chunks []string
	start := 0
	for {
		end := start + s.ChunkSize
		if end >= n {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		cut := s.cutPoint(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.ChunkOverlap
	}
	return chunks
}

// cutPoint finds the best position to end the chunk starting at start.
// Candidates lie in (start+ChunkOverlap, end]; the lower bound guarantees
// forward progress of at least one rune per chunk.
func (s *RecursiveSplitter) cutPoint(runes []rune, start, end int) int {
	lo := start + s.ChunkOverlap + 1

	// Paragraph break: cut right after "\n\n".
	for j := end; j >= lo; j-- {
		if j >= 2 && runes[j-1] == '\n' && runes[j-2] == '\n' {
			return j
		}
	}
	// Line break.
	for j := end; j >= lo; j-- {
		if runes[j-1] == '\n' {
			return j
		}
	}
	// Sentence end: terminal punctuation followed by a space.
	for j := end; j >= lo; j-- {
		if j >= 2 && runes[j-1] == ' ' && isSentenceEnd(runes[j-2]) {
			return j
		}
	}
	// Word break.
	for j := end; j >= lo; j-- {
		if runes[j-1] == ' ' {
			return j
		}
	}
	// Hard cut.
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

var _ interfaces.Segmenter = (*RecursiveSplitter)(nil)
