// Package plaintext extracts UTF-8 text files.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

const byteOrderMark = "\uFEFF"

// Extractor reads plain text files.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Format returns the format tag for plain text.
func (e *Extractor) Format() domain.Format {
	return domain.FormatText
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".txt"}
}

// Extract reads the whole file as UTF-8 text.
// Files that are not valid UTF-8 are rejected with domain.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, path string) (*domain.RawDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrExtraction, path)
	}

	return &domain.RawDocument{
		Content:    strings.TrimPrefix(string(data), byteOrderMark),
		SourcePath: path,
		Format:     domain.FormatText,
	}, nil
}
