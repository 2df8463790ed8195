// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/educhat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/educhat/internal/core/domain"
)

// RecordList displays scored chunks in a navigable list.
type RecordList struct {
	records  []domain.ScoredRecord
	selected int
	expanded bool
	styles   *styles.Styles
	width    int
	height   int
}

// NewRecordList creates a new record list component.
func NewRecordList(s *styles.Styles) *RecordList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &RecordList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// Init initialises the record list.
func (r *RecordList) Init() tea.Cmd {
	return nil
}

// Update handles list navigation messages.
func (r *RecordList) Update(msg tea.Msg) (*RecordList, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			r.MoveUp()
		case "down", "j":
			r.MoveDown()
		case "enter":
			r.expanded = !r.expanded
		}
	}
	return r, nil
}

// View renders the record list. The selected record shows its full
// content when expanded.
func (r *RecordList) View() string {
	if len(r.records) == 0 {
		return r.styles.Muted.Render("No documents")
	}

	lines := make([]string, 0, len(r.records)*2+2)
	header := r.styles.Subtitle.Render(fmt.Sprintf("Documents (%d)", len(r.records)))
	lines = append(lines, header, "")

	// Each record takes two lines.
	visibleCount := (r.height - 4) / 2
	if visibleCount < 1 {
		visibleCount = 1
	}

	start := 0
	if r.selected >= visibleCount {
		start = r.selected - visibleCount + 1
	}
	end := start + visibleCount
	if end > len(r.records) {
		end = len(r.records)
	}

	for i := start; i < end; i++ {
		lines = append(lines, r.renderRecord(i, &r.records[i]))
	}

	if r.expanded {
		if rec := r.SelectedRecord(); rec != nil {
			lines = append(lines, "", r.styles.Normal.Width(r.width-4).Render(rec.Chunk.Content))
		}
	}

	return strings.Join(lines, "\n")
}

func (r *RecordList) renderRecord(index int, rec *domain.ScoredRecord) string {
	indicator := "  "
	if index == r.selected {
		indicator = "> "
	}

	title := truncate(SourceLabel(rec.IndexedRecord), r.width-20)
	score := fmt.Sprintf("%.2f", rec.Score)

	var titleLine string
	if index == r.selected {
		titleLine = r.styles.Selected.Render(indicator + title + "  " + score)
	} else {
		titleLine = r.styles.Normal.Render(indicator+title+"  ") + r.styles.Muted.Render(score)
	}

	preview := strings.Join(strings.Fields(rec.Chunk.Content), " ")
	previewLine := r.styles.Muted.Render("    " + truncate(preview, r.width-6))

	return titleLine + "\n" + previewLine
}

// SourceLabel names where a record came from: its filename, the base of
// its source path, or its ID, followed by the subject when known.
func SourceLabel(rec domain.IndexedRecord) string {
	name, _ := rec.Chunk.Meta[domain.MetaFilename].(string)
	if name == "" {
		if src, _ := rec.Chunk.Meta[domain.MetaSource].(string); src != "" {
			name = filepath.Base(src)
		}
	}
	if name == "" {
		name = rec.ID
	}
	if subject := rec.Chunk.Subject(); subject != "" {
		name += " · " + subject
	}
	return name
}

func truncate(s string, n int) string {
	if n < 10 {
		n = 10
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

// SetRecords replaces the list contents and resets the selection.
func (r *RecordList) SetRecords(records []domain.ScoredRecord) {
	r.records = records
	r.selected = 0
	r.expanded = false
}

// Records returns the current records.
func (r *RecordList) Records() []domain.ScoredRecord {
	return r.records
}

// Selected returns the index of the selected record.
func (r *RecordList) Selected() int {
	return r.selected
}

// SelectedRecord returns the selected record, or nil if the list is empty.
func (r *RecordList) SelectedRecord() *domain.ScoredRecord {
	if r.selected < 0 || r.selected >= len(r.records) {
		return nil
	}
	return &r.records[r.selected]
}

// Expanded reports whether the selected record's content is shown.
func (r *RecordList) Expanded() bool {
	return r.expanded
}

// MoveUp moves selection up.
func (r *RecordList) MoveUp() {
	if r.selected > 0 {
		r.selected--
	}
}

// MoveDown moves selection down.
func (r *RecordList) MoveDown() {
	if r.selected < len(r.records)-1 {
		r.selected++
	}
}

// SetDimensions sets the component dimensions.
func (r *RecordList) SetDimensions(width, height int) {
	r.width = width
	r.height = height
}

// Count returns the number of records.
func (r *RecordList) Count() int {
	return len(r.records)
}
