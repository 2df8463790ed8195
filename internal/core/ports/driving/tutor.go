package driving

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// TutorService answers questions against the bootstrapped pipeline.
type TutorService interface {
	// Ask answers a question. The result shape is the same at every tier.
	// Returns domain.ErrInvalidInput for a blank question and wraps
	// domain.ErrQueryFailed when a store, retriever or generator fails.
	Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.QueryResult, error)

	// SubjectExpertise returns stored chunks tagged with the subject.
	// It returns an empty slice when no retriever is active.
	SubjectExpertise(ctx context.Context, subject string) ([]domain.ScoredRecord, error)

	// Tier returns the active pipeline tier.
	Tier() domain.PipelineTier
}
