package mcp

import (
	"context"

	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// mockTutorService is a mock implementation of driving.TutorService.
type mockTutorService struct {
	result   *domain.QueryResult
	records  []domain.ScoredRecord
	err      error
	question string
	opts     domain.AskOptions
	subject  string
}

func (m *mockTutorService) Ask(_ context.Context, question string, opts domain.AskOptions) (*domain.QueryResult, error) {
	m.question = question
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.QueryResult{Query: question}, nil
}

func (m *mockTutorService) SubjectExpertise(_ context.Context, subject string) ([]domain.ScoredRecord, error) {
	m.subject = subject
	return m.records, m.err
}

func (m *mockTutorService) Tier() domain.PipelineTier {
	return domain.TierFull
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	chunks  int
	err     error
	path    string
	subject string
	topic   string
}

func (m *mockIngestService) IngestFile(_ context.Context, path, subject, topic string) (int, error) {
	m.path, m.subject, m.topic = path, subject, topic
	return m.chunks, m.err
}

func (m *mockIngestService) IngestDirectory(context.Context, string, string) (int, error) {
	return m.chunks, m.err
}

func (m *mockIngestService) Seed(context.Context) (int, error) {
	return m.chunks, m.err
}

// mockPipelineStatus is a mock implementation of driving.PipelineStatus.
type mockPipelineStatus struct {
	count    int
	countErr error
}

func (m *mockPipelineStatus) Tier() domain.PipelineTier { return domain.TierFull }

func (m *mockPipelineStatus) Transitions() []domain.Transition {
	return []domain.Transition{
		{From: domain.StateProbeFull, To: domain.StateReady, Tier: domain.TierFull},
	}
}

func (m *mockPipelineStatus) Warnings() []string { return nil }

func (m *mockPipelineStatus) Count(context.Context) (int, error) {
	return m.count, m.countErr
}

// Ensure mocks implement interfaces.
var (
	_ driving.TutorService   = (*mockTutorService)(nil)
	_ driving.IngestService  = (*mockIngestService)(nil)
	_ driving.PipelineStatus = (*mockPipelineStatus)(nil)
)
