package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// MockTutorService implements driving.TutorService for testing.
type MockTutorService struct {
	AskFunc     func(ctx context.Context, question string, opts domain.AskOptions) (*domain.QueryResult, error)
	SubjectFunc func(ctx context.Context, subject string) ([]domain.ScoredRecord, error)
	TierValue   domain.PipelineTier
}

func (m *MockTutorService) Ask(
	ctx context.Context, question string, opts domain.AskOptions,
) (*domain.QueryResult, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, opts)
	}
	return &domain.QueryResult{Answer: []string{"ok"}, Query: question}, nil
}

func (m *MockTutorService) SubjectExpertise(ctx context.Context, subject string) ([]domain.ScoredRecord, error) {
	if m.SubjectFunc != nil {
		return m.SubjectFunc(ctx, subject)
	}
	return nil, nil
}

func (m *MockTutorService) Tier() domain.PipelineTier {
	if m.TierValue == "" {
		return domain.TierFull
	}
	return m.TierValue
}

// MockPipelineStatus implements driving.PipelineStatus for testing.
type MockPipelineStatus struct {
	CountValue int
}

func (m *MockPipelineStatus) Tier() domain.PipelineTier        { return domain.TierFull }
func (m *MockPipelineStatus) Transitions() []domain.Transition { return nil }
func (m *MockPipelineStatus) Warnings() []string               { return nil }
func (m *MockPipelineStatus) Count(context.Context) (int, error) {
	return m.CountValue, nil
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   Ports
		wantErr error
	}{
		{"tutor only", Ports{Tutor: &MockTutorService{}}, nil},
		{"tutor and status", Ports{Tutor: &MockTutorService{}, Status: &MockPipelineStatus{}}, nil},
		{"missing tutor", Ports{Status: &MockPipelineStatus{}}, ErrMissingTutorService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestErrMissingTutorService_Message(t *testing.T) {
	assert.Contains(t, ErrMissingTutorService.Error(), "tutor service")
}
