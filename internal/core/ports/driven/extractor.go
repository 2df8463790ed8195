package driven

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// Extractor turns a file of one format into text.
// Implementations are stateless and safe for concurrent use.
type Extractor interface {
	// Format returns the format tag recorded on extracted documents.
	Format() domain.Format

	// Extensions returns the lower-case file extensions handled, including the dot.
	Extensions() []string

	// Extract reads the file at path and returns its text.
	// The Subject and Metadata fields are left for the caller to fill in.
	Extract(ctx context.Context, path string) (*domain.RawDocument, error)
}

// ExtractorSet dispatches files to the extractor for their format.
type ExtractorSet interface {
	// ExtractFile returns the documents extracted from path, labelled with subject.
	// Failures are logged by the set and yield zero documents.
	ExtractFile(ctx context.Context, path, subject string) []domain.RawDocument

	// Supports returns true if the file's extension has an extractor.
	Supports(path string) bool
}
