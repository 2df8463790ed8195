package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure EmbeddingRetriever implements the interface.
var _ driven.Retriever = (*EmbeddingRetriever)(nil)

// EmbeddingRetriever embeds the query and runs a similarity search.
type EmbeddingRetriever struct {
	embedder driven.EmbeddingService
	store    driven.DocumentStore
}

// NewEmbeddingRetriever creates a retriever over store.
func NewEmbeddingRetriever(embedder driven.EmbeddingService, store driven.DocumentStore) *EmbeddingRetriever {
	return &EmbeddingRetriever{embedder: embedder, store: store}
}

// Retrieve returns up to topK records most similar to query, best first.
func (r *EmbeddingRetriever) Retrieve(
	ctx context.Context, query string, topK int, filter domain.Filter,
) ([]domain.ScoredRecord, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	records, err := r.store.Search(ctx, vec, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return records, nil
}
