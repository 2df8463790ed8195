// Package subjects provides the subject browsing view for the TUI.
package subjects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// ErrNoTutorService indicates that no tutor service was provided.
var ErrNoTutorService = errors.New("tutor service is required")

// View lets the user pick a subject and browse its stored chunks.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	prompt    *input.Prompt
	list      *list.RecordList
	statusbar *status.Bar

	tutor driving.TutorService
	ctx   context.Context

	subject    string
	focusInput bool
	width      int
	height     int
	ready      bool
}

// NewView creates a new subjects view.
func NewView(s *styles.Styles, km *keymap.KeyMap, tutor driving.TutorService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	if tutor != nil {
		bar.SetTier(tutor.Tier())
	}

	return &View{
		styles:     s,
		keymap:     km,
		prompt:     input.NewPrompt(s, "Subject", "e.g. Physics"),
		list:       list.NewRecordList(s),
		statusbar:  bar,
		tutor:      tutor,
		ctx:        context.Background(),
		focusInput: true,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context lookups run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.prompt.Init()
}

// Update handles messages for the subjects view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SubjectLoaded:
		v.handleLoaded(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.Fail(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if keymap.Matches(key, v.keymap.Back) {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if keymap.Matches(key, v.keymap.Send) {
			subject := strings.TrimSpace(v.prompt.Value())
			if subject == "" {
				return v, nil
			}
			return v, tea.Batch(v.statusbar.Start(), v.load(subject))
		}
		var cmd tea.Cmd
		v.prompt, cmd = v.prompt.Update(msg)
		return v, cmd
	}

	// "/" picks another subject.
	if key == "/" {
		v.focusInput = true
		v.prompt.SetValue("")
		return v, v.prompt.Focus()
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *View) load(subject string) tea.Cmd {
	tutor, ctx := v.tutor, v.ctx
	return func() tea.Msg {
		if tutor == nil {
			return messages.ErrorOccurred{Err: ErrNoTutorService}
		}
		records, err := tutor.SubjectExpertise(ctx, subject)
		return messages.SubjectLoaded{Subject: subject, Records: records, Err: err}
	}
}

func (v *View) handleLoaded(msg messages.SubjectLoaded) {
	if msg.Err != nil {
		v.statusbar.Fail(msg.Err)
		return
	}

	v.subject = msg.Subject
	v.list.SetRecords(msg.Records)
	v.statusbar.Done(fmt.Sprintf("%d chunks in %s", len(msg.Records), msg.Subject))
	v.statusbar.SetHints(v.keymap.BrowseHelp())

	v.focusInput = false
	v.prompt.Blur()
}

// View renders the subjects view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("Browse a subject"), "", v.prompt.View(), ""}
	if v.subject != "" {
		sections = append(sections, v.list.View())
	} else {
		sections = append(sections, v.styles.Muted.Render("Type a subject and press enter."))
	}
	if !v.focusInput {
		sections = append(sections, "", v.styles.Help.Render("[/] another subject"))
	}
	sections = append(sections, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.prompt.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.list.SetDimensions(width, max(height-10, 4))
}

// Reset returns to the subject prompt.
func (v *View) Reset() {
	v.focusInput = true
	v.prompt.Reset()
	v.prompt.Focus()
	v.statusbar.Clear()
	v.statusbar.SetHints(v.keymap.ShortHelp())
}

// Subject returns the subject currently listed.
func (v *View) Subject() string {
	return v.subject
}

// Records returns the listed chunks.
func (v *View) Records() int {
	return v.list.Count()
}

// InputFocused reports whether the subject prompt has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
