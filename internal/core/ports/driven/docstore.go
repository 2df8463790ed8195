package driven

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// DocumentStore holds indexed records and answers similarity searches.
// Writes are append-only and must be safe for concurrent callers.
//
// Implementations include:
//   - PostgreSQL with pgvector (full tier)
//   - SQLite (full tier, alternate path)
//   - In-memory (degraded tier)
type DocumentStore interface {
	// WriteRecords appends records with their embeddings.
	WriteRecords(ctx context.Context, records []EmbeddedRecord) error

	// Search returns up to topK records most similar to the query vector,
	// restricted to records matching filter, best match first.
	Search(ctx context.Context, query []float32, topK int, filter domain.Filter) ([]domain.ScoredRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// EmbeddedRecord is a record paired with its embedding for writing.
type EmbeddedRecord struct {
	Record    domain.IndexedRecord
	Embedding []float32
}
