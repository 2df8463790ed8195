// Package pipeline provides the bootstrap status view for the TUI.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driving"
)

// View shows which tier bootstrap settled on and how it got there.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	status driving.PipelineStatus
	tutor  driving.TutorService
	ctx    context.Context

	snapshot *messages.StatusLoaded
	width    int
	height   int
	ready    bool
}

// NewView creates a new pipeline view. status may be nil, in which case
// only the tutor's tier is shown.
func NewView(s *styles.Styles, km *keymap.KeyMap, status driving.PipelineStatus, tutor driving.TutorService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		status: status,
		tutor:  tutor,
		ctx:    context.Background(),
	}
}

// WithContext sets the context the record count is read under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the snapshot.
func (v *View) Init() tea.Cmd {
	return v.load()
}

func (v *View) load() tea.Cmd {
	status, tutor, ctx := v.status, v.tutor, v.ctx
	return func() tea.Msg {
		if status == nil {
			var tier domain.PipelineTier
			if tutor != nil {
				tier = tutor.Tier()
			}
			return messages.StatusLoaded{Tier: tier}
		}

		count, err := status.Count(ctx)
		return messages.StatusLoaded{
			Tier:        status.Tier(),
			Records:     count,
			Transitions: status.Transitions(),
			Warnings:    status.Warnings(),
			Err:         err,
		}
	}
}

// Update handles messages for the pipeline view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatusLoaded:
		v.snapshot = &msg

	case tea.KeyMsg:
		key := msg.String()
		switch {
		case keymap.Matches(key, v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case keymap.Matches(key, v.keymap.Refresh):
			return v, v.load()
		}
	}
	return v, nil
}

// View renders the pipeline view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Pipeline status"))
	b.WriteString("\n\n")

	if v.snapshot == nil {
		b.WriteString(v.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
		return b.String()
	}
	snap := v.snapshot

	fmt.Fprintf(&b, "Tier:    %s %s\n", v.styles.Tier(snap.Tier), snap.Tier.Description())
	if snap.Err != nil {
		b.WriteString(v.styles.Error.Render("Records: " + snap.Err.Error()))
	} else {
		fmt.Fprintf(&b, "Records: %d", snap.Records)
	}
	b.WriteString("\n")

	if len(snap.Transitions) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Bootstrap"))
		b.WriteString("\n")
		for _, t := range snap.Transitions {
			line := fmt.Sprintf("  %s -> %s", t.From, t.To)
			if t.Tier != "" {
				line += " [" + t.Tier.String() + "]"
			}
			if t.Reason != "" {
				line += ": " + t.Reason
			}
			b.WriteString(v.styles.Normal.Render(line))
			b.WriteString("\n")
		}
	}

	if len(snap.Warnings) > 0 {
		b.WriteString("\n")
		b.WriteString(v.styles.Subtitle.Render("Warnings"))
		b.WriteString("\n")
		for _, w := range snap.Warnings {
			b.WriteString(v.styles.Warning.Render("  ! " + w))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[r] Refresh  [esc] Back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Snapshot returns the last loaded status, or nil.
func (v *View) Snapshot() *messages.StatusLoaded {
	return v.snapshot
}
