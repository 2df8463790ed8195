package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
	"github.com/custodia-labs/educhat/internal/logger"
)

// Ensure TutorService implements the interface.
var _ driving.TutorService = (*TutorService)(nil)

// TutorService answers student questions using whatever tier bootstrap selected.
type TutorService struct {
	pipeline      *Pipeline
	topK          int
	expertiseTopK int
}

// NewTutorService creates a tutor over pipeline. Non-positive limits use
// domain.DefaultTopK and domain.DefaultExpertiseTopK.
func NewTutorService(pipeline *Pipeline, topK, expertiseTopK int) *TutorService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	if expertiseTopK <= 0 {
		expertiseTopK = domain.DefaultExpertiseTopK
	}
	return &TutorService{
		pipeline:      pipeline,
		topK:          topK,
		expertiseTopK: expertiseTopK,
	}
}

// Tier returns the active pipeline tier.
func (s *TutorService) Tier() domain.PipelineTier {
	return s.pipeline.Tier()
}

// Ask answers question.
//   - null tier: a single acknowledgement and no documents
//   - degraded tier: the retrieved chunk contents, best first
//   - full tier: one generated answer grounded in the retrieved chunks
func (s *TutorService) Ask(ctx context.Context, question string, opts domain.AskOptions) (*domain.QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.topK
	}

	result := &domain.QueryResult{
		Answer:    []string{},
		Documents: []domain.ScoredRecord{},
		Query:     question,
	}

	retriever := s.pipeline.Retriever()
	if retriever == nil {
		result.Answer = []string{domain.Acknowledgement(question)}
		return result, nil
	}

	docs, err := retriever.Retrieve(ctx, question, topK, domain.Filter{Subject: opts.Subject})
	if err != nil {
		logger.Error("Retrieval failed for %q: %v", question, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	if docs != nil {
		result.Documents = docs
	}

	generator := s.pipeline.Generator()
	if generator == nil {
		for _, d := range docs {
			result.Answer = append(result.Answer, d.Content)
		}
		return result, nil
	}

	answer, err := generator.Answer(ctx, question, docs)
	if err != nil {
		logger.Error("Generation failed for %q: %v", question, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryFailed, err)
	}
	result.Answer = []string{answer}
	return result, nil
}

// SubjectExpertise returns up to the expertise limit of chunks tagged with subject.
// Without a retriever, or when retrieval fails, it logs and returns an empty slice.
func (s *TutorService) SubjectExpertise(ctx context.Context, subject string) ([]domain.ScoredRecord, error) {
	retriever := s.pipeline.Retriever()
	if retriever == nil {
		logger.Warn("No retriever available for subject %q", subject)
		return []domain.ScoredRecord{}, nil
	}

	docs, err := retriever.Retrieve(ctx, "subject: "+subject, s.expertiseTopK, domain.Filter{Subject: subject})
	if err != nil {
		logger.Error("Subject lookup failed for %q: %v", subject, err)
		return []domain.ScoredRecord{}, nil
	}
	if docs == nil {
		docs = []domain.ScoredRecord{}
	}
	return docs, nil
}
