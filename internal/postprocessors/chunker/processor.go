// Package chunker provides a word-window text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultSplitLength is the default number of words per chunk.
const DefaultSplitLength = 200

// DefaultSplitOverlap is the default number of words shared by adjacent chunks.
const DefaultSplitOverlap = 20

// Processor cleans document text and splits it into overlapping word windows.
type Processor struct {
	splitLength       int
	splitOverlap      int
	cleanWhitespace   bool
	cleanEmptyLines   bool
	cleanHeaderFooter bool
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithSplitLength sets the chunk length in words.
func WithSplitLength(words int) Option {
	return func(p *Processor) {
		p.splitLength = words
	}
}

// WithSplitOverlap sets the number of words repeated from the previous chunk.
func WithSplitOverlap(words int) Option {
	return func(p *Processor) {
		p.splitOverlap = words
	}
}

// WithCleanWhitespace toggles collapsing runs of spaces and tabs.
func WithCleanWhitespace(enabled bool) Option {
	return func(p *Processor) {
		p.cleanWhitespace = enabled
	}
}

// WithCleanEmptyLines toggles collapsing runs of blank lines.
func WithCleanEmptyLines(enabled bool) Option {
	return func(p *Processor) {
		p.cleanEmptyLines = enabled
	}
}

// WithCleanHeaderFooter toggles stripping lines repeated at page boundaries.
func WithCleanHeaderFooter(enabled bool) Option {
	return func(p *Processor) {
		p.cleanHeaderFooter = enabled
	}
}

// New creates a chunker with the given options.
// An overlap that is negative or not smaller than the length is rejected
// with domain.ErrInvalidConfig.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		splitLength:       DefaultSplitLength,
		splitOverlap:      DefaultSplitOverlap,
		cleanWhitespace:   true,
		cleanEmptyLines:   true,
		cleanHeaderFooter: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.splitLength <= 0 {
		return nil, fmt.Errorf("%w: split length must be positive, got %d",
			domain.ErrInvalidConfig, p.splitLength)
	}
	if p.splitOverlap < 0 {
		return nil, fmt.Errorf("%w: split overlap must not be negative, got %d",
			domain.ErrInvalidConfig, p.splitOverlap)
	}
	if p.splitOverlap >= p.splitLength {
		return nil, fmt.Errorf("%w: split overlap (%d) must be smaller than split length (%d)",
			domain.ErrInvalidConfig, p.splitOverlap, p.splitLength)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// SplitLength returns the configured chunk length in words.
func (p *Processor) SplitLength() int {
	return p.splitLength
}

// SplitOverlap returns the configured overlap in words.
func (p *Processor) SplitOverlap() int {
	return p.splitOverlap
}

// Process cleans the document content and splits it into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Every chunk carries a copy of the document metadata.
func (p *Processor) Process(_ context.Context, doc *domain.RawDocument, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}

	words := strings.Fields(p.Clean(doc))
	if len(words) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, p.ChunkCount(len(words)))
	step := p.splitLength - p.splitOverlap

	for start := 0; ; start += step {
		end := start + p.splitLength
		if end > len(words) {
			end = len(words)
		}

		chunks = append(chunks, domain.Chunk{
			Content:  strings.Join(words[start:end], " "),
			Position: len(chunks),
			Meta:     domain.CopyMetadata(doc.Metadata),
		})

		if end == len(words) {
			break
		}
	}

	return chunks, nil
}

// ChunkCount returns how many chunks a text of the given word count produces:
// 1 when it fits in one window, otherwise ceil((words-overlap)/(length-overlap)).
func (p *Processor) ChunkCount(words int) int {
	switch {
	case words <= 0:
		return 0
	case words <= p.splitLength:
		return 1
	}
	step := p.splitLength - p.splitOverlap
	return (words - p.splitOverlap + step - 1) / step
}
