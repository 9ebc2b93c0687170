package splitters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecursiveSplitter_InvalidParams(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecursiveSplitter(tt.size, tt.overlap)
			assert.Error(t, err)
		})
	}
}

func TestSegment_Empty(t *testing.T) {
	s, err := NewRecursiveSplitter(100, 10)
	require.NoError(t, err)
	assert.Nil(t, s.Segment(""))
}

func TestSegment_ShortTextSingleChunk(t *testing.T) {
	s, err := NewRecursiveSplitter(100, 10)
	require.NoError(t, err)

	chunks := s.Segment("a short text")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short text", chunks[0])
}

func TestSegment_ChunkSizeBound(t *testing.T) {
	s, err := NewRecursiveSplitter(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	for i, chunk := range s.Segment(text) {
		assert.LessOrEqual(t, len([]rune(chunk)), 50, "chunk %d exceeds the size bound", i)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	s, err := NewRecursiveSplitter(40, 8)
	require.NoError(t, err)

	text := strings.Repeat("some transcript sentence here. ", 30)
	first := s.Segment(text)
	second := s.Segment(text)
	assert.Equal(t, first, second)
}

func TestSegment_OverlapReconstructsInput(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
	}{
		{"sentences", 50, 10, strings.Repeat("the quick brown fox jumps over the lazy dog. ", 15)},
		{"paragraphs", 60, 12, strings.Repeat("first line of a paragraph.\n\nsecond paragraph text here. ", 10)},
		{"no boundaries", 30, 5, strings.Repeat("x", 200)},
		{"unicode", 25, 5, strings.Repeat("日本語のテキストをここで分割する。", 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRecursiveSplitter(tt.size, tt.overlap)
			require.NoError(t, err)

			chunks := s.Segment(tt.text)
			require.NotEmpty(t, chunks)

			// Every chunk after the first shares exactly overlap leading
			// runes with the previous chunk's tail.
			var sb strings.Builder
			sb.WriteString(chunks[0])
			for i := 1; i < len(chunks); i++ {
				prev := []rune(chunks[i-1])
				cur := []rune(chunks[i])
				require.GreaterOrEqual(t, len(cur), tt.overlap)
				assert.Equal(t, string(prev[len(prev)-tt.overlap:]), string(cur[:tt.overlap]),
					"chunk %d does not share the expected overlap", i)
				sb.WriteString(string(cur[tt.overlap:]))
			}
			assert.Equal(t, tt.text, sb.String())
		})
	}
}

func TestSegment_PrefersWordBoundary(t *testing.T) {
	s, err := NewRecursiveSplitter(20, 4)
	require.NoError(t, err)

	chunks := s.Segment("alpha bravo charlie delta echo foxtrot golf hotel")
	require.Greater(t, len(chunks), 1)
	// Non-final chunks should end right after a space, not mid-word.
	for i := 0; i < len(chunks)-1; i++ {
		assert.True(t, strings.HasSuffix(chunks[i], " "), "chunk %d ends mid-word: %q", i, chunks[i])
	}
}
