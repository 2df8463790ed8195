// Package chat provides the question and answer view for the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// ErrNoTutorService indicates that no tutor service was provided.
var ErrNoTutorService = errors.New("tutor service is required")

// Slash commands typed into the prompt.
const (
	cmdSubject = "/subject"
	cmdClear   = "/clear"
)

// turn is one question and its outcome.
type turn struct {
	question string
	result   *domain.QueryResult
	err      error
}

// View is the chat view: a scrolling transcript above a prompt.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	prompt     *input.Prompt
	transcript viewport.Model
	statusbar  *status.Bar

	tutor driving.TutorService
	ctx   context.Context

	turns   []turn
	subject string
	busy    bool

	width  int
	height int
	ready  bool
}

// NewView creates a new chat view.
func NewView(s *styles.Styles, km *keymap.KeyMap, tutor driving.TutorService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetHints(km.ChatHelp())
	if tutor != nil {
		bar.SetTier(tutor.Tier())
	}

	return &View{
		styles:     s,
		keymap:     km,
		prompt:     input.NewPrompt(s, "Ask", "Type a question, /subject <name> to filter, /clear to reset"),
		transcript: viewport.New(80, 16),
		statusbar:  bar,
		tutor:      tutor,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context questions are asked under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.prompt.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.busy = false
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	cmds = append(cmds, cmd)
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(key, v.keymap.Send):
		return v, v.submit()
	}

	var cmd tea.Cmd
	v.prompt, cmd = v.prompt.Update(msg)
	return v, cmd
}

// submit handles the prompt's contents: a slash command or a question.
func (v *View) submit() tea.Cmd {
	text := strings.TrimSpace(v.prompt.Value())
	if text == "" || v.busy {
		return nil
	}
	v.prompt.Reset()

	switch {
	case text == cmdClear:
		v.turns = nil
		v.statusbar.Done("Transcript cleared")
		v.refresh()
		return nil

	case text == cmdSubject || strings.HasPrefix(text, cmdSubject+" "):
		v.subject = strings.TrimSpace(strings.TrimPrefix(text, cmdSubject))
		if v.subject == "" {
			v.statusbar.Done("Searching all subjects")
		} else {
			v.statusbar.Done("Filtering by " + v.subject)
		}
		return nil
	}

	v.busy = true
	return tea.Batch(v.statusbar.Start(), v.ask(text))
}

func (v *View) ask(question string) tea.Cmd {
	tutor, ctx, subject := v.tutor, v.ctx, v.subject
	return func() tea.Msg {
		if tutor == nil {
			return messages.ErrorOccurred{Err: ErrNoTutorService}
		}
		result, err := tutor.Ask(ctx, question, domain.AskOptions{Subject: subject})
		return messages.AnswerReceived{Question: question, Result: result, Err: err}
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	v.busy = false
	v.turns = append(v.turns, turn{question: msg.Question, result: msg.Result, err: msg.Err})

	if msg.Err != nil {
		v.statusbar.Fail(msg.Err)
	} else if msg.Result != nil {
		v.statusbar.Done(fmt.Sprintf("%d sources", len(msg.Result.Documents)))
	}
	v.refresh()
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.turns) == 0 {
		return v.styles.Muted.Render("Ask the tutor anything about your course material.")
	}

	wrap := lipgloss.NewStyle().Width(v.transcript.Width)
	var b strings.Builder
	for i, t := range v.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("You: "))
		b.WriteString(wrap.Render(t.question))
		b.WriteString("\n")

		if t.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + t.err.Error()))
			b.WriteString("\n")
			continue
		}
		if t.result == nil {
			continue
		}

		b.WriteString(v.styles.Answer.Render("Tutor:"))
		b.WriteString("\n")
		for j, answer := range t.result.Answer {
			if len(t.result.Answer) > 1 {
				answer = fmt.Sprintf("%d. %s", j+1, answer)
			}
			b.WriteString(wrap.Render(answer))
			b.WriteString("\n")
		}
		for j, doc := range t.result.Documents {
			line := fmt.Sprintf("[%d] %s (%.2f)", j+1, list.SourceLabel(doc.IndexedRecord), doc.Score)
			b.WriteString(v.styles.Citation.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("educhat")
	if v.subject != "" {
		header += v.styles.Muted.Render("  subject: " + v.subject)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.transcript.View(),
		"",
		v.prompt.View(),
		v.statusbar.View(),
	)
}

// SetDimensions sizes the transcript to the space left by the header,
// prompt and status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.prompt.SetWidth(width)
	v.statusbar.SetWidth(width)

	v.transcript.Width = width
	v.transcript.Height = max(height-8, 3)
	v.refresh()
}

// Reset clears the prompt and refocuses it. The transcript is kept.
func (v *View) Reset() {
	v.prompt.Reset()
	v.prompt.Focus()
}

// Subject returns the active subject filter.
func (v *View) Subject() string {
	return v.subject
}

// Turns returns the number of questions in the transcript.
func (v *View) Turns() int {
	return len(v.turns)
}

// Busy reports whether a question is awaiting an answer.
func (v *View) Busy() bool {
	return v.busy
}

// Transcript returns the rendered transcript.
func (v *View) Transcript() string {
	return v.renderTranscript()
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
