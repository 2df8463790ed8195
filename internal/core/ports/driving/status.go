package driving

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// PipelineStatus reports what bootstrap settled on.
type PipelineStatus interface {
	// Tier returns the active pipeline tier.
	Tier() domain.PipelineTier

	// Transitions returns the bootstrap state changes in order.
	Transitions() []domain.Transition

	// Warnings returns the reasons failed probes gave.
	Warnings() []string

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}
