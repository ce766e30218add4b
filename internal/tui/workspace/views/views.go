// Package views provides the individual screens for the workspace TUI.
package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

// filterHints returns the key hints shown when a list filter is active.
func filterHints() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
	}
}

func confirmHints() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	}
}

// pageTarget returns the zero-based page a paging key moves to, or false
// when the key would leave the valid range.
func pageTarget(keys workspace.ListKeyMap, msg tea.KeyMsg, current, totalPages int) (int, bool) {
	page := current
	switch {
	case key.Matches(msg, keys.NextPage):
		page++
	case key.Matches(msg, keys.PrevPage):
		page--
	default:
		return current, false
	}
	if page < 0 || page >= max(totalPages, 1) {
		return current, false
	}
	return page, true
}

// pageSummary renders "Page 2/4 · 17 employees".
func pageSummary[T any](styles *tui.Styles, p models.PagedResponse[T], noun string) string {
	total := max(p.TotalPages, 1)
	return styles.Muted.Render(fmt.Sprintf("Page %d/%d · %d %s", max(p.CurrentPage, 1), total, p.TotalItems, noun))
}
