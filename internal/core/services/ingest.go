package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService assembles files into chunks and adds them to the pipeline.
type IngestService struct {
	assembler *Assembler
	pipeline  *Pipeline
}

// NewIngestService creates an ingest service.
func NewIngestService(assembler *Assembler, pipeline *Pipeline) *IngestService {
	return &IngestService{
		assembler: assembler,
		pipeline:  pipeline,
	}
}

// IngestFile processes one file. It returns the number of chunks produced,
// or domain.ErrExtraction when the file yielded none.
func (s *IngestService) IngestFile(ctx context.Context, path, subject, topic string) (int, error) {
	chunks := s.assembler.ProcessFileWithTopic(ctx, path, subject, topic)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %s", domain.ErrExtraction, path)
	}
	return s.add(ctx, chunks)
}

// IngestDirectory processes every regular file in dir and returns the chunk count.
func (s *IngestService) IngestDirectory(ctx context.Context, dir, subject string) (int, error) {
	chunks, err := s.assembler.ProcessDirectory(ctx, dir, subject)
	if err != nil {
		return 0, err
	}
	return s.add(ctx, chunks)
}

// Seed adds the built-in sample passages. Seeding again appends duplicates.
func (s *IngestService) Seed(ctx context.Context) (int, error) {
	n, err := s.add(ctx, s.assembler.SampleContent(ctx))
	if err == nil {
		logger.Info("Seeded %d sample chunks", n)
	}
	return n, err
}

func (s *IngestService) add(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if _, err := s.pipeline.AddDocuments(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
