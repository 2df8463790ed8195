package driven

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// Retriever ranks stored records against a question.
type Retriever interface {
	// Retrieve returns up to topK records for the query, best match first.
	Retrieve(ctx context.Context, query string, topK int, filter domain.Filter) ([]domain.ScoredRecord, error)
}

// Generator produces an answer from retrieved context and a question.
type Generator interface {
	// Answer returns the generated answer for the question given the documents.
	Answer(ctx context.Context, question string, documents []domain.ScoredRecord) (string, error)

	// ModelName returns the name of the model behind the generator.
	ModelName() string
}
