// Package memory provides an in-process document store for the degraded tier.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

type entry struct {
	record    domain.IndexedRecord
	embedding []float32
}

// DocumentStore keeps records in memory and searches them by brute-force cosine similarity.
// Records are lost when the process exits.
type DocumentStore struct {
	mu         sync.RWMutex
	entries    []entry
	dimensions int
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

// WriteRecords appends records. All embeddings must share the size of the first one stored.
func (s *DocumentStore) WriteRecords(ctx context.Context, records []driven.EmbeddedRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dimensions
	if dims == 0 {
		dims = len(records[0].Embedding)
	}
	for _, r := range records {
		if len(r.Embedding) != dims {
			return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dims, len(r.Embedding))
		}
	}

	for _, r := range records {
		rec := r.Record
		rec.Meta = rec.CloneMeta()
		emb := make([]float32, len(r.Embedding))
		copy(emb, r.Embedding)
		s.entries = append(s.entries, entry{record: rec, embedding: emb})
	}
	s.dimensions = dims
	return nil
}

// Search returns up to topK records matching filter, most similar first.
func (s *DocumentStore) Search(
	ctx context.Context, query []float32, topK int, filter domain.Filter,
) ([]domain.ScoredRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []domain.ScoredRecord{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimensions != 0 && len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, s.dimensions, len(query))
	}

	hits := make([]domain.ScoredRecord, 0, len(s.entries))
	for _, e := range s.entries {
		if !filter.Matches(e.record.Meta) {
			continue
		}
		rec := e.record
		rec.Meta = rec.CloneMeta()
		hits = append(hits, domain.ScoredRecord{
			IndexedRecord: rec,
			Score:         vectors.Cosine(query, e.embedding),
		})
	}
	return vectors.Rank(hits, topK), nil
}

// Count returns the number of stored records.
func (s *DocumentStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases nothing; the records stay readable.
func (s *DocumentStore) Close() error {
	return nil
}
