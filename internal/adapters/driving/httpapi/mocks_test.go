package httpapi

import (
	"context"
	"os"
	"path/filepath"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// mockTutorService is a mock implementation of driving.TutorService.
type mockTutorService struct {
	tier     domain.PipelineTier
	result   *domain.QueryResult
	docs     []domain.ScoredRecord
	err      error
	question string
	opts     domain.AskOptions
	subject  string
}

func (m *mockTutorService) Ask(_ context.Context, q string, opts domain.AskOptions) (*domain.QueryResult, error) {
	m.question = q
	m.opts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockTutorService) SubjectExpertise(_ context.Context, subject string) ([]domain.ScoredRecord, error) {
	m.subject = subject
	return m.docs, m.err
}

func (m *mockTutorService) Tier() domain.PipelineTier {
	return m.tier
}

// mockIngestService is a mock implementation of driving.IngestService.
// It records what the uploaded file looked like while it existed.
type mockIngestService struct {
	count    int
	err      error
	path     string
	filename string
	content  string
	subject  string
	topic    string
}

func (m *mockIngestService) IngestFile(_ context.Context, path, subject, topic string) (int, error) {
	m.path = path
	m.filename = filepath.Base(path)
	m.subject = subject
	m.topic = topic
	if data, err := os.ReadFile(path); err == nil {
		m.content = string(data)
	}
	return m.count, m.err
}

func (m *mockIngestService) IngestDirectory(_ context.Context, _, _ string) (int, error) {
	return m.count, m.err
}

func (m *mockIngestService) Seed(_ context.Context) (int, error) {
	return m.count, m.err
}

// mockStatus is a mock implementation of driving.PipelineStatus.
type mockStatus struct {
	tier        domain.PipelineTier
	transitions []domain.Transition
	warnings    []string
	count       int
	err         error
}

func (m *mockStatus) Tier() domain.PipelineTier            { return m.tier }
func (m *mockStatus) Transitions() []domain.Transition     { return m.transitions }
func (m *mockStatus) Warnings() []string                   { return m.warnings }
func (m *mockStatus) Count(_ context.Context) (int, error) { return m.count, m.err }
