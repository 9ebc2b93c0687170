// Package pipeline contains the RAG orchestrator: ingestion of transcripts
// into the chunk store, transcript summarization, and grounded chat
// answering. Each entry point drives its own workflow explicitly; there is
// no shared multi-node graph where irrelevant nodes run as no-ops.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"youassist/internal/guard"
	"youassist/internal/rag/interfaces"
	"youassist/internal/rag/schema"
	"youassist/pkg/logger"
)

// Outcome classifies how a chat invocation terminated.
type Outcome int

const (
	// Answered is the normal terminal state: a grounded, scanned answer.
	Answered Outcome = iota
	// AnsweredNoContext is the short-circuit when retrieval found nothing;
	// the generation backend is never called.
	AnsweredNoContext
	// Blocked means a scanner vetoed the query or the answer.
	Blocked
	// BlockedFault means a scanner itself failed. Callers see a block, but
	// the cause is infrastructure trouble, not a policy violation.
	BlockedFault
)

// NoContextMessage is returned when the store holds nothing relevant.
const NoContextMessage = "No relevant transcript data found. Try re-extracting the transcript."

const (
	summarizeSystemPrompt = "Generate a concise summary of the given transcript."
	summarizeUserPrompt   = "Summarize the following transcript:\n\n%s"
	chatSystemPrompt      = "Answer the user's question using the transcript context below:\n\n%s\n\n"
)

// embedWorkers bounds concurrent embedding calls during ingestion.
const embedWorkers = 4

// Options fixes the tunables of the pipeline.
type Options struct {
	// TopK is the number of chunks retrieved as grounding context.
	TopK int
	// Summary and Chat fix the sampling parameters per call site.
	Summary interfaces.CompletionOptions
	Chat    interfaces.CompletionOptions
}

// Pipeline is the RAG orchestrator. It owns the segmentation, embedding,
// storage, generation and guard components and coordinates the three
// workflows. All collaborators are passed in explicitly; the pipeline holds
// no ambient global state.
type Pipeline struct {
	segmenter   interfaces.Segmenter
	embedder    interfaces.EmbeddingModel
	store       interfaces.ChunkStore
	llm         interfaces.LLM
	inputChain  guard.InputChain
	outputChain guard.OutputChain
	opts        Options
	log         *logger.Logger

	// ingestMu serializes ingestion so two concurrent ingests of the same
	// corpus cannot both observe a chunk id as absent.
	ingestMu sync.Mutex
}

// New creates a Pipeline.
func New(
	segmenter interfaces.Segmenter,
	embedder interfaces.EmbeddingModel,
	store interfaces.ChunkStore,
	llm interfaces.LLM,
	inputChain guard.InputChain,
	outputChain guard.OutputChain,
	opts Options,
	log *logger.Logger,
) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	return &Pipeline{
		segmenter:   segmenter,
		embedder:    embedder,
		store:       store,
		llm:         llm,
		inputChain:  inputChain,
		outputChain: outputChain,
		opts:        opts,
		log:         log,
	}
}

// Ingest segments the transcript, embeds each new chunk and stores it.
// Chunk ids are derived from the corpus id and chunk index, so re-ingesting
// the same transcript is a no-op for chunks already present. A crash mid-way
// leaves a partial corpus that a re-run completes.
func (p *Pipeline) Ingest(ctx context.Context, corpusID, transcriptText string) error {
	p.ingestMu.Lock()
	defer p.ingestMu.Unlock()

	texts := p.segmenter.Segment(transcriptText)
	p.log.Info(fmt.Sprintf("Ingesting corpus %s: %d chunks", corpusID, len(texts)))
	if len(texts) == 0 {
		return nil
	}

	existing, err := p.store.ListIDs(ctx, corpusID)
	if err != nil {
		return fmt.Errorf("failed to list existing chunk ids: %w", err)
	}

	var missing []schema.Chunk
	for idx, text := range texts {
		id := schema.ChunkID(corpusID, idx)
		if _, ok := existing[id]; ok {
			p.log.Debug(fmt.Sprintf("Skipping duplicate chunk: %s", id))
			continue
		}
		missing = append(missing, schema.Chunk{
			ID:       id,
			CorpusID: corpusID,
			Index:    idx,
			Text:     text,
		})
	}
	if len(missing) == 0 {
		p.log.Info(fmt.Sprintf("Corpus %s already fully ingested", corpusID))
		return nil
	}

	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(embedWorkers)
	for i := range missing {
		chunk := &missing[i]
		eg.Go(func() error {
			embedding, err := p.embedder.Embed(gCtx, chunk.Text)
			if err != nil {
				return fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
			}
			chunk.Embedding = embedding
			if err := p.store.Upsert(gCtx, *chunk); err != nil {
				return fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	p.log.Info(fmt.Sprintf("Ingested %d new chunks for corpus %s", len(missing), corpusID))
	return nil
}

// Summarize generates a concise summary of the transcript with a single
// generation call. The summary reads the raw transcript directly, not the
// chunk store.
func (p *Pipeline) Summarize(ctx context.Context, transcriptText string) (string, error) {
	state := schema.State{TranscriptText: transcriptText}
	if err := p.summarizeNode(ctx, &state); err != nil {
		return "", err
	}
	return state.Summary, nil
}

func (p *Pipeline) summarizeNode(ctx context.Context, state *schema.State) error {
	p.log.Info("Generating transcript summary")
	summary, err := p.llm.Complete(
		ctx,
		summarizeSystemPrompt,
		fmt.Sprintf(summarizeUserPrompt, state.TranscriptText),
		p.opts.Summary,
	)
	if err != nil {
		return err
	}
	state.Summary = summary
	return nil
}

// Chat answers a user query grounded in the stored transcript chunks.
// The query passes the input scanner chain, the answer passes the output
// chain; a veto or scanner failure at either end yields a block message in
// place of the answer. A block is a policy outcome, not an error.
func (p *Pipeline) Chat(ctx context.Context, userQuery string) (string, Outcome, error) {
	if result := p.inputChain.Scan(userQuery); result.Blocked {
		return p.blockMessage(result, true), p.blockOutcome(result), nil
	}

	state := schema.State{UserQuery: userQuery}
	outcome, err := p.chatNode(ctx, &state)
	if err != nil {
		return "", outcome, err
	}
	if outcome == AnsweredNoContext {
		return state.Answer, outcome, nil
	}

	result := p.outputChain.Scan(userQuery, state.Answer)
	if result.Blocked {
		return p.blockMessage(result, false), p.blockOutcome(result), nil
	}
	return result.Sanitized, Answered, nil
}

func (p *Pipeline) chatNode(ctx context.Context, state *schema.State) (Outcome, error) {
	queryEmbedding, err := p.embedder.Embed(ctx, state.UserQuery)
	if err != nil {
		return Answered, fmt.Errorf("failed to embed query: %w", err)
	}

	retrieved, err := p.store.QueryNearest(ctx, queryEmbedding, p.opts.TopK)
	if err != nil {
		return Answered, fmt.Errorf("failed to query chunk store: %w", err)
	}
	if len(retrieved) == 0 {
		p.log.Info("No relevant chunks found for query; skipping generation")
		state.Answer = NoContextMessage
		return AnsweredNoContext, nil
	}
	p.log.Info(fmt.Sprintf("Retrieved %d chunks as grounding context", len(retrieved)))

	contextTexts := make([]string, len(retrieved))
	for i, scored := range retrieved {
		contextTexts[i] = scored.Chunk.Text
	}
	systemPrompt := fmt.Sprintf(chatSystemPrompt, strings.Join(contextTexts, "\n\n"))

	answer, err := p.llm.Complete(ctx, systemPrompt, state.UserQuery, p.opts.Chat)
	if err != nil {
		return Answered, err
	}
	state.Answer = answer
	return Answered, nil
}

func (p *Pipeline) blockOutcome(result guard.Result) Outcome {
	if result.Fault {
		return BlockedFault
	}
	return Blocked
}

func (p *Pipeline) blockMessage(result guard.Result, input bool) string {
	if result.Fault {
		p.log.Error(fmt.Sprintf("Scanner %s failed", result.Scanner))
		return fmt.Sprintf("Security scanner error: %s.", result.Scanner)
	}
	p.log.Warn(fmt.Sprintf("Scanner %s vetoed content (risk %.2f)", result.Scanner, result.Risk))
	if input {
		return fmt.Sprintf("Restricted content detected by %s. Try rephrasing.", result.Scanner)
	}
	return fmt.Sprintf("Response blocked by %s due to security concerns.", result.Scanner)
}
