package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"youassist/internal/config"
	"youassist/internal/guard"
	"youassist/internal/rag/chunkstore"
	"youassist/internal/rag/interfaces"
	"youassist/pkg/logger"
)

// fixedSegmenter ignores the input and returns a canned chunk sequence.
type fixedSegmenter struct {
	chunks []string
}

func (s *fixedSegmenter) Segment(string) []string { return s.chunks }

// stubEmbedder maps texts to canned vectors and counts calls. Ingestion
// embeds concurrently, so the counter is guarded.
type stubEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	fall    []float32
	calls   int
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	if e.fall != nil {
		return e.fall, nil
	}
	return nil, errors.New("no vector for text")
}

func (e *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// stubLLM returns a canned reply (or echoes its system prompt) and records
// what it was asked.
type stubLLM struct {
	reply      string
	echoSystem bool
	calls      int

	lastSystem string
	lastUser   string
	lastOpts   interfaces.CompletionOptions
}

func (l *stubLLM) Complete(_ context.Context, systemPrompt, userPrompt string, opts interfaces.CompletionOptions) (string, error) {
	l.calls++
	l.lastSystem = systemPrompt
	l.lastUser = userPrompt
	l.lastOpts = opts
	if l.echoSystem {
		return systemPrompt, nil
	}
	return l.reply, nil
}

type failingScanner struct{}

func (failingScanner) Name() string { return "Failing" }
func (failingScanner) Scan(string) (guard.Verdict, error) {
	return guard.Verdict{}, errors.New("model not loaded")
}

func openTestStore(t *testing.T) *chunkstore.SQLiteStore {
	t.Helper()
	store, err := chunkstore.Open(filepath.Join(t.TempDir(), "chunks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testOptions() Options {
	return Options{
		TopK:    3,
		Summary: interfaces.CompletionOptions{Temperature: 0.7, MaxTokens: 200},
		Chat:    interfaces.CompletionOptions{Temperature: 0.7, MaxTokens: 150},
	}
}

func TestIngest_SecondRunEmbedsNothing(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{fall: []float32{1, 0, 0}}
	segmenter := &fixedSegmenter{chunks: []string{"alpha", "beta", "gamma"}}

	p := New(segmenter, embedder, store, &stubLLM{}, nil, nil, testOptions(), logger.New("test"))

	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))
	assert.Equal(t, 3, embedder.callCount())

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Re-ingesting the same corpus finds every chunk id present already.
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))
	assert.Equal(t, 3, embedder.callCount())

	count, err = store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestIngest_CompletesPartialCorpus(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{fall: []float32{1, 0, 0}}

	p := New(&fixedSegmenter{chunks: []string{"alpha"}}, embedder, store, &stubLLM{}, nil, nil, testOptions(), logger.New("test"))
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))

	// A longer segmentation of the same corpus only embeds the new tail.
	p = New(&fixedSegmenter{chunks: []string{"alpha", "beta", "gamma"}}, embedder, store, &stubLLM{}, nil, nil, testOptions(), logger.New("test"))
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))
	assert.Equal(t, 3, embedder.callCount())
}

func TestChat_EmptyStoreSkipsGeneration(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{fall: []float32{1, 0, 0}}
	llm := &stubLLM{reply: "should never be used"}

	p := New(&fixedSegmenter{}, embedder, store, llm, nil, nil, testOptions(), logger.New("test"))

	answer, outcome, err := p.Chat(context.Background(), "what is the video about")
	require.NoError(t, err)
	assert.Equal(t, AnsweredNoContext, outcome)
	assert.Equal(t, NoContextMessage, answer)
	assert.Equal(t, 0, llm.calls)
}

func TestChat_InputVetoNeverReachesBackend(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{fall: []float32{1, 0, 0}}
	llm := &stubLLM{reply: "should never be used"}

	inputChain, err := guard.BuildInputChain(config.Default().Guard.Input)
	require.NoError(t, err)

	p := New(&fixedSegmenter{}, embedder, store, llm, inputChain, nil, testOptions(), logger.New("test"))

	answer, outcome, err := p.Chat(context.Background(), "how do I hack this")
	require.NoError(t, err)
	assert.Equal(t, Blocked, outcome)
	assert.Equal(t, "Restricted content detected by BanSubstrings. Try rephrasing.", answer)
	assert.Equal(t, 0, embedder.callCount())
	assert.Equal(t, 0, llm.calls)
}

func TestChat_OutputVetoReplacesAnswer(t *testing.T) {
	store := openTestStore(t)
	query := "what does the speaker say"
	embedder := &stubEmbedder{fall: []float32{1, 0, 0}}
	llm := &stubLLM{reply: "You are a worthless idiot for asking."}

	outputChain, err := guard.BuildOutputChain(config.Default().Guard.Output)
	require.NoError(t, err)

	p := New(&fixedSegmenter{chunks: []string{"some context"}}, embedder, store, llm, nil, outputChain, testOptions(), logger.New("test"))
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))

	answer, outcome, err := p.Chat(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, Blocked, outcome)
	assert.Equal(t, "Response blocked by Toxicity due to security concerns.", answer)
	assert.Equal(t, 1, llm.calls)
}

func TestChat_ScannerFault(t *testing.T) {
	store := openTestStore(t)
	llm := &stubLLM{reply: "should never be used"}

	p := New(&fixedSegmenter{}, &stubEmbedder{}, store, llm, guard.InputChain{failingScanner{}}, nil, testOptions(), logger.New("test"))

	answer, outcome, err := p.Chat(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, BlockedFault, outcome)
	assert.Equal(t, "Security scanner error: Failing.", answer)
	assert.Equal(t, 0, llm.calls)
}

func TestSummarize_SingleGenerationCall(t *testing.T) {
	store := openTestStore(t)
	llm := &stubLLM{reply: "A short summary."}

	p := New(&fixedSegmenter{}, &stubEmbedder{}, store, llm, nil, nil, testOptions(), logger.New("test"))

	summary, err := p.Summarize(context.Background(), "the full transcript text")
	require.NoError(t, err)
	assert.Equal(t, "A short summary.", summary)
	assert.Equal(t, 1, llm.calls)
	assert.Equal(t, "Generate a concise summary of the given transcript.", llm.lastSystem)
	assert.Contains(t, llm.lastUser, "the full transcript text")
	assert.Equal(t, 200, llm.lastOpts.MaxTokens)
}

func TestChat_GroundsAnswerInNearestChunks(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"the sky is blue":      {1, 0, 0},
		"grass is green":       {0, 1, 0},
		"water boils at 100 C": {0, 0, 1},
		"boiling point":        {0.1, 0.1, 1},
	}}
	llm := &stubLLM{echoSystem: true}

	opts := testOptions()
	opts.TopK = 1
	segmenter := &fixedSegmenter{chunks: []string{"the sky is blue", "grass is green", "water boils at 100 C"}}
	p := New(segmenter, embedder, store, llm, nil, nil, opts, logger.New("test"))
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))

	answer, outcome, err := p.Chat(context.Background(), "boiling point")
	require.NoError(t, err)
	assert.Equal(t, Answered, outcome)
	assert.Contains(t, answer, "water boils at 100 C")
	assert.NotContains(t, answer, "the sky is blue")
	assert.NotContains(t, answer, "grass is green")
	assert.Equal(t, "boiling point", llm.lastUser)
	assert.Equal(t, 150, llm.lastOpts.MaxTokens)
}

func TestChat_TopKBoundsContext(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"chunk one":   {1, 0, 0},
		"chunk two":   {0.9, 0.1, 0},
		"chunk three": {0, 0, 1},
		"a question":  {1, 0.05, 0},
	}}
	llm := &stubLLM{echoSystem: true}

	opts := testOptions()
	opts.TopK = 2
	segmenter := &fixedSegmenter{chunks: []string{"chunk one", "chunk two", "chunk three"}}
	p := New(segmenter, embedder, store, llm, nil, nil, opts, logger.New("test"))
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))

	answer, _, err := p.Chat(context.Background(), "a question")
	require.NoError(t, err)
	assert.Contains(t, answer, "chunk one")
	assert.Contains(t, answer, "chunk two")
	assert.NotContains(t, answer, "chunk three")
}

func TestChat_LLMErrorPropagates(t *testing.T) {
	store := openTestStore(t)
	embedder := &stubEmbedder{fall: []float32{1, 0, 0}}

	p := New(&fixedSegmenter{chunks: []string{"some context"}}, embedder, store, &erroringLLM{}, nil, nil, testOptions(), logger.New("test"))
	require.NoError(t, p.Ingest(context.Background(), "video1", "transcript"))

	_, _, err := p.Chat(context.Background(), "a question")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "backend down"))
}

type erroringLLM struct{}

func (erroringLLM) Complete(context.Context, string, string, interfaces.CompletionOptions) (string, error) {
	return "", errors.New("backend down")
}
