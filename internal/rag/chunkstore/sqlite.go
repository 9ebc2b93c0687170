package chunkstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"youassist/internal/rag/interfaces"
	"youassist/internal/rag/schema"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS chunks (
	id          TEXT PRIMARY KEY,
	corpus_id   TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	text        TEXT NOT NULL,
	embedding   BLOB NOT NULL,
	dimension   INTEGER NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chunks_corpus ON chunks(corpus_id);
`

// SQLiteStore is the persistent vector index. Chunks and their embeddings
// live in a single SQLite database at a fixed local path, surviving process
// restarts. Similarity search is a brute-force cosine scan, which is exact
// and more than fast enough for a single transcript corpus.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens or creates the chunk store at the given path.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping chunk store: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create chunk store schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Upsert inserts the chunk if its id is absent. An existing id is treated as
// "already ingested" and skipped: idempotent-by-skip, not by-overwrite.
func (s *SQLiteStore) Upsert(ctx context.Context, chunk schema.Chunk) error {
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("cannot store chunk %s with empty embedding", chunk.ID)
	}

	blob := vectorToBlob(chunk.Embedding)
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO chunks (id, corpus_id, chunk_index, text, embedding, dimension, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		chunk.ID, chunk.CorpusID, chunk.Index, chunk.Text, blob, len(chunk.Embedding),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// QueryNearest returns up to k chunks ordered by decreasing cosine
// similarity to the query embedding. An empty store yields an empty slice.
func (s *SQLiteStore) QueryNearest(ctx context.Context, embedding []float32, k int) ([]schema.ScoredChunk, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is empty")
	}
	if k <= 0 {
		return []schema.ScoredChunk{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, corpus_id, chunk_index, text, embedding, dimension FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunks: %w", err)
	}
	defer rows.Close()

	results := make([]schema.ScoredChunk, 0, k)
	for rows.Next() {
		var (
			chunk     schema.Chunk
			blob      []byte
			dimension int
		)
		if err := rows.Scan(&chunk.ID, &chunk.CorpusID, &chunk.Index, &chunk.Text, &blob, &dimension); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		vector := blobToVector(blob)
		if len(vector) != dimension || len(vector) != len(embedding) {
			// Dimension mismatch, e.g. after switching embedding models.
			continue
		}
		chunk.Embedding = vector

		results = append(results, schema.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(embedding, vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunk rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// ListIDs returns the set of chunk ids already present for a corpus.
func (s *SQLiteStore) ListIDs(ctx context.Context, corpusID string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM chunks WHERE corpus_id = ?`, corpusID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunk ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// Count returns the total number of stored chunks.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return count, nil
}

var _ interfaces.ChunkStore = (*SQLiteStore)(nil)
