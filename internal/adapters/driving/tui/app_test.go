package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/educhat/internal/core/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{Tutor: &MockTutorService{}, Status: &MockPipelineStatus{CountValue: 4}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(&Ports{Tutor: &MockTutorService{}})

	require.NoError(t, err)
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.False(t, app.Ready())
	assert.Equal(t, "Initialising...", app.View())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingTutorService)
	assert.Nil(t, app)

	app, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingTutorService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("k"), "v")

	assert.Equal(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_WindowSize(t *testing.T) {
	app, err := NewApp(&Ports{Tutor: &MockTutorService{}})
	require.NoError(t, err)

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Nil(t, cmd)
	assert.True(t, model.(*App).Ready())
	assert.Contains(t, app.View(), "educhat")
}

func TestApp_CtrlCQuits(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_ViewChanges(t *testing.T) {
	tests := []struct {
		view     messages.ViewType
		contains string
		initCmd  bool
	}{
		{messages.ViewChat, "Ask:", true},
		{messages.ViewSubjects, "Browse a subject", true},
		{messages.ViewStatus, "Pipeline status", true},
		{messages.ViewHelp, "Chat commands", false},
		{messages.ViewMenu, "Ask the tutor", false},
	}

	for _, tt := range tests {
		t.Run(tt.view.String(), func(t *testing.T) {
			app := newTestApp(t)

			_, cmd := app.Update(messages.ViewChanged{View: tt.view})

			assert.Equal(t, tt.view, app.CurrentView())
			assert.Equal(t, tt.initCmd, cmd != nil)
			assert.Contains(t, app.View(), tt.contains)
		})
	}
}

func TestApp_AnswerRoutedToChat(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	app.Update(messages.AnswerReceived{
		Question: "What is a prime?",
		Result:   &domain.QueryResult{Answer: []string{"A number with two divisors."}},
	})

	assert.Contains(t, app.View(), "A number with two divisors.")
}

func TestApp_ChatRoundTrip(t *testing.T) {
	var asked string
	tutor := &MockTutorService{AskFunc: func(_ context.Context, q string, _ domain.AskOptions) (*domain.QueryResult, error) {
		asked = q
		return &domain.QueryResult{Answer: []string{"Two."}, Query: q}, nil
	}}
	app, err := NewApp(&Ports{Tutor: tutor})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	app.Update(messages.ViewChanged{View: messages.ViewChat})

	for _, r := range "1+1?" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	// The batch holds the spinner tick and the question.
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(messages.AnswerReceived); ok {
			app.Update(msg)
		}
	}

	assert.Equal(t, "1+1?", asked)
	assert.Contains(t, app.View(), "Two.")
}

func TestApp_SubjectLoadedRouted(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewSubjects})

	app.Update(messages.SubjectLoaded{Subject: "Mathematics", Records: []domain.ScoredRecord{{
		IndexedRecord: domain.IndexedRecord{ID: "m1", Chunk: domain.Chunk{
			Content: "Pythagoras",
			Meta:    map[string]any{domain.MetaSubject: "Mathematics"},
		}},
		Score: 1,
	}}})

	assert.Contains(t, app.View(), "m1 · Mathematics")
}

func TestApp_StatusLoadedRouted(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.Update(messages.ViewChanged{View: messages.ViewStatus})
	require.NotNil(t, cmd)

	app.Update(cmd())

	assert.Contains(t, app.View(), "Records: 4")
}

func TestApp_EscFromHelpReturnsToMenu(t *testing.T) {
	app := newTestApp(t)
	app.Update(messages.ViewChanged{View: messages.ViewHelp})

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_MenuSelectionNavigates(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	app.Update(cmd())

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}
