// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/educhat/internal/core/domain"
)

// AnswerReceived carries the tutor's reply to a question.
type AnswerReceived struct {
	Question string
	Result   *domain.QueryResult
	Err      error
}

// SubjectLoaded carries the stored chunks for a subject.
type SubjectLoaded struct {
	Subject string
	Records []domain.ScoredRecord
	Err     error
}

// StatusLoaded carries the pipeline status snapshot.
type StatusLoaded struct {
	Tier        domain.PipelineTier
	Records     int
	Transitions []domain.Transition
	Warnings    []string
	Err         error
}

// ErrorOccurred is sent when an error needs to be displayed.
type ErrorOccurred struct {
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer transcript.
	ViewChat
	// ViewSubjects browses the chunks stored for a subject.
	ViewSubjects
	// ViewStatus shows the bootstrap outcome.
	ViewStatus
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns a short name for the view.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewSubjects:
		return "subjects"
	case ViewStatus:
		return "status"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}
