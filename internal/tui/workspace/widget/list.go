// Package widget provides reusable sub-models for workspace views.
package widget

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

// ListItem is one row of a List.
type ListItem struct {
	ID          string
	Title       string
	Description string
	// Extra is right-aligned detail, e.g. "remote".
	Extra string
	// Color renders a project swatch before the title when set.
	Color string
}

func (i ListItem) filterValue() string {
	return strings.ToLower(i.Title + " " + i.Description)
}

// List is a scrolling, filterable selection list.
type List struct {
	items    []ListItem
	filtered []ListItem
	cursor   int
	offset   int
	width    int
	height   int
	focused  bool
	loading  bool

	filtering bool
	filter    string

	styles    *tui.Styles
	keys      workspace.ListKeyMap
	emptyText string
}

func NewList(styles *tui.Styles) *List {
	return &List{
		styles:    styles,
		keys:      workspace.DefaultListKeyMap(),
		focused:   true,
		emptyText: "No items",
	}
}

// SetItems replaces the items. The cursor stays on the same ID when it
// is still present.
func (l *List) SetItems(items []ListItem) {
	var selectedID string
	if sel := l.Selected(); sel != nil {
		selectedID = sel.ID
	}
	l.items = items
	l.loading = false
	l.applyFilter()
	if selectedID == "" || !l.SelectByID(selectedID) {
		l.SelectIndex(l.cursor)
	}
}

func (l *List) SetLoading(loading bool) {
	l.loading = loading
}

func (l *List) Loading() bool { return l.loading }

// SetEmptyText sets the message shown when no items exist.
func (l *List) SetEmptyText(text string) {
	l.emptyText = text
}

func (l *List) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.clampOffset()
}

func (l *List) SetFocused(focused bool) {
	l.focused = focused
}

// Selected returns the highlighted item, or nil.
func (l *List) Selected() *ListItem {
	if l.cursor < 0 || l.cursor >= len(l.filtered) {
		return nil
	}
	item := l.filtered[l.cursor]
	return &item
}

func (l *List) SelectedIndex() int {
	return l.cursor
}

// Len returns the number of visible items.
func (l *List) Len() int {
	return len(l.filtered)
}

// SelectByID moves the cursor to id. It reports whether id is visible.
func (l *List) SelectByID(id string) bool {
	for i, item := range l.filtered {
		if item.ID == id {
			l.cursor = i
			l.clampOffset()
			return true
		}
	}
	return false
}

// SelectIndex moves the cursor to idx, clamped to the visible items.
func (l *List) SelectIndex(idx int) {
	l.cursor = max(0, min(idx, len(l.filtered)-1))
	l.clampOffset()
}

func (l *List) clampOffset() {
	visible := l.visibleHeight()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
	l.offset = max(0, l.offset)
}

// StartFilter enters interactive filter mode.
func (l *List) StartFilter() {
	l.filtering = true
	l.filter = ""
	l.applyFilter()
	l.cursor, l.offset = 0, 0
}

// StopFilter leaves filter mode and shows all items again.
func (l *List) StopFilter() {
	l.filtering = false
	l.filter = ""
	l.applyFilter()
	l.cursor, l.offset = 0, 0
}

// Filtering reports whether keystrokes are going to the filter.
func (l *List) Filtering() bool {
	return l.filtering
}

// Update handles navigation and filter keys. Other messages are ignored.
func (l *List) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !l.focused {
		return nil
	}
	if l.filtering {
		l.handleFilterKey(km)
		return nil
	}

	switch {
	case key.Matches(km, l.keys.Up):
		l.SelectIndex(l.cursor - 1)
	case key.Matches(km, l.keys.Down):
		l.SelectIndex(l.cursor + 1)
	case key.Matches(km, l.keys.Top):
		l.SelectIndex(0)
	case key.Matches(km, l.keys.Bottom):
		l.SelectIndex(len(l.filtered) - 1)
	case key.Matches(km, l.keys.Filter):
		l.StartFilter()
	}
	return nil
}

func (l *List) handleFilterKey(km tea.KeyMsg) {
	switch km.Type {
	case tea.KeyEsc:
		l.StopFilter()
	case tea.KeyEnter:
		// Keep the filter applied.
		l.filtering = false
	case tea.KeyUp:
		l.SelectIndex(l.cursor - 1)
	case tea.KeyDown:
		l.SelectIndex(l.cursor + 1)
	case tea.KeyBackspace:
		if l.filter == "" {
			l.StopFilter()
			return
		}
		runes := []rune(l.filter)
		l.filter = string(runes[:len(runes)-1])
		l.applyFilter()
		l.cursor, l.offset = 0, 0
	case tea.KeyRunes, tea.KeySpace:
		if km.Type == tea.KeySpace {
			l.filter += " "
		} else {
			l.filter += string(km.Runes)
		}
		l.applyFilter()
		l.cursor, l.offset = 0, 0
	}
}

func (l *List) visibleHeight() int {
	h := l.height
	if h <= 0 {
		h = 10
	}
	if l.filtering || l.filter != "" {
		h--
	}
	// One line for the position indicator.
	if len(l.filtered) > h {
		h--
	}
	return max(1, h)
}

func (l *List) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(l.filter))
	if q == "" {
		l.filtered = l.items
		return
	}
	l.filtered = nil
	for _, item := range l.items {
		if strings.Contains(item.filterValue(), q) {
			l.filtered = append(l.filtered, item)
		}
	}
}

func (l *List) View() string {
	if l.width <= 0 || l.height <= 0 {
		return ""
	}
	theme := l.styles.Theme()
	muted := lipgloss.NewStyle().Foreground(theme.Muted)

	if l.loading && len(l.items) == 0 {
		return muted.Render("Loading…")
	}

	var lines []string
	if l.filtering || l.filter != "" {
		cursor := ""
		if l.filtering {
			cursor = lipgloss.NewStyle().Foreground(theme.Primary).Render("█")
		}
		prefix := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("/")
		counts := muted.Render(fmt.Sprintf("%d/%d", len(l.filtered), len(l.items)))
		left := prefix + l.filter + cursor
		gap := max(1, l.width-lipgloss.Width(left)-lipgloss.Width(counts))
		lines = append(lines, left+strings.Repeat(" ", gap)+counts)
	}

	if len(l.filtered) == 0 {
		text := l.emptyText
		if l.filter != "" {
			text = "No matches"
		}
		lines = append(lines, muted.Render(text))
		return strings.Join(lines, "\n")
	}

	visible := l.visibleHeight()
	end := min(l.offset+visible, len(l.filtered))
	for i := l.offset; i < end; i++ {
		lines = append(lines, l.renderItem(l.filtered[i], i == l.cursor && l.focused))
	}
	if len(l.filtered) > visible {
		lines = append(lines, muted.Render(fmt.Sprintf(" %d/%d", l.cursor+1, len(l.filtered))))
	}
	return strings.Join(lines, "\n")
}

func (l *List) renderItem(item ListItem, selected bool) string {
	theme := l.styles.Theme()
	cursor := "  "
	titleStyle := lipgloss.NewStyle().Foreground(theme.Foreground)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)
	if selected {
		cursor = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("> ")
		titleStyle = titleStyle.Bold(true).Foreground(theme.Primary)
	}

	line := cursor
	if item.Color != "" {
		line += l.styles.Swatch(item.Color) + " "
	}
	line += titleStyle.Render(item.Title)
	if item.Description != "" {
		line += descStyle.Render("  " + item.Description)
	}

	extra := ""
	if item.Extra != "" {
		extra = descStyle.Render(item.Extra)
	}
	avail := l.width - lipgloss.Width(extra) - 1
	if lipgloss.Width(line) > avail {
		line = ansi.Truncate(line, max(1, avail), "…")
	}
	if extra != "" {
		line += strings.Repeat(" ", max(1, l.width-lipgloss.Width(line)-lipgloss.Width(extra))) + extra
	}
	return line
}
