package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/views/pipeline"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/views/subjects"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView     *menu.View
	chatView     *chat.View
	subjectsView *subjects.View
	pipelineView *pipeline.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingTutorService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	tier := ports.Tutor.Tier()

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		menuView:     menu.NewView(s, tier),
		chatView:     chat.NewView(s, km, ports.Tutor),
		subjectsView: subjects.NewView(s, km, ports.Tutor),
		pipelineView: pipeline.NewView(s, km, ports.Status, ports.Tutor),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context questions and lookups run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	a.subjectsView.WithContext(ctx)
	a.pipelineView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("educhat - AI Tutor"),
	)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if keymap.Matches(msg.String(), a.keymap.Quit) {
			return a, tea.Quit
		}
		return a.routeKey(msg)

	case tea.MouseMsg:
		if a.currentView == messages.ViewChat {
			a.chatView, cmd = a.chatView.Update(msg)
		}
		return a, cmd

	case messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.SubjectLoaded:
		a.subjectsView, cmd = a.subjectsView.Update(msg)
		return a, cmd

	case messages.StatusLoaded:
		a.pipelineView, cmd = a.pipelineView.Update(msg)
		return a, cmd

	case spinner.TickMsg:
		// Each bar's spinner ignores ticks it did not start.
		var chatCmd, subjectsCmd tea.Cmd
		a.chatView, chatCmd = a.chatView.Update(msg)
		a.subjectsView, subjectsCmd = a.subjectsView.Update(msg)
		return a, tea.Batch(chatCmd, subjectsCmd)

	case messages.ErrorOccurred:
		switch a.currentView {
		case messages.ViewChat:
			a.chatView, cmd = a.chatView.Update(msg)
		case messages.ViewSubjects:
			a.subjectsView, cmd = a.subjectsView.Update(msg)
		case messages.ViewMenu, messages.ViewStatus, messages.ViewHelp:
		}
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewChat:
			a.chatView.Reset()
			return a, a.chatView.Init()
		case messages.ViewSubjects:
			a.subjectsView.Reset()
			return a, a.subjectsView.Init()
		case messages.ViewStatus:
			return a, a.pipelineView.Init()
		case messages.ViewMenu, messages.ViewHelp:
		}
		return a, nil
	}

	// Anything else (cursor blinks) goes to the active input.
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSubjects:
		a.subjectsView, cmd = a.subjectsView.Update(msg)
	case messages.ViewMenu, messages.ViewStatus, messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewSubjects:
		a.subjectsView, cmd = a.subjectsView.Update(msg)
	case messages.ViewStatus:
		a.pipelineView, cmd = a.pipelineView.Update(msg)
	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewSubjects:
		return a.subjectsView.View()
	case messages.ViewStatus:
		return a.pipelineView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
		return a.menuView.View()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}

	b.WriteString(`Chat commands:
  /subject <name>   only retrieve from that subject
  /subject          search every subject again
  /clear            empty the transcript

`)
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sizes the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.subjectsView.SetDimensions(width, height)
	a.pipelineView.SetDimensions(width, height)
}
