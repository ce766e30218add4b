package chrome

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plannerhq/planner/internal/tui"
)

// Help is the full-screen keyboard shortcuts overlay.
type Help struct {
	styles     *tui.Styles
	viewport   viewport.Model
	globalKeys [][]key.Binding
	viewTitle  string
	viewKeys   [][]key.Binding
}

func NewHelp(styles *tui.Styles) Help {
	return Help{styles: styles, viewport: viewport.New(0, 0)}
}

// SetSize sets the overlay dimensions. One line is kept for the footer.
func (h *Help) SetSize(width, height int) {
	h.viewport.Width = width
	h.viewport.Height = max(1, height-1)
	h.render()
}

func (h *Help) SetGlobalKeys(keys [][]key.Binding) {
	h.globalKeys = keys
	h.render()
}

// SetView sets the section for the current view's bindings.
func (h *Help) SetView(title string, keys [][]key.Binding) {
	h.viewTitle = title
	h.viewKeys = keys
	h.render()
}

// Update scrolls the overlay. It reports whether the overlay should close.
func (h *Help) Update(msg tea.KeyMsg) (shouldClose bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "?":
		h.viewport.GotoTop()
		return true, nil
	}
	h.viewport, cmd = h.viewport.Update(msg)
	return false, cmd
}

func (h *Help) render() {
	theme := h.styles.Theme()
	keyCol := lipgloss.NewStyle().Foreground(theme.Primary).Width(12)
	descCol := lipgloss.NewStyle().Foreground(theme.Muted)
	header := lipgloss.NewStyle().Bold(true).Foreground(theme.Foreground)

	var b strings.Builder
	section := func(title string, rows [][]key.Binding) {
		b.WriteString(header.Render(title) + "\n")
		for _, row := range rows {
			for _, k := range row {
				if !k.Enabled() {
					continue
				}
				help := k.Help()
				b.WriteString("  " + keyCol.Render(help.Key) + descCol.Render(help.Desc) + "\n")
			}
		}
	}

	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(theme.Primary).Render("Keyboard shortcuts") + "\n\n")
	section("Global", h.globalKeys)
	if h.viewTitle != "" && len(h.viewKeys) > 0 {
		b.WriteString("\n")
		section(h.viewTitle, h.viewKeys)
	}
	h.viewport.SetContent(lipgloss.NewStyle().PaddingLeft(2).Render(strings.TrimRight(b.String(), "\n")))
}

func (h Help) View() string {
	footer := "esc close"
	if h.viewport.TotalLineCount() > h.viewport.Height {
		footer = "j/k scroll  esc close"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		h.viewport.View(),
		lipgloss.NewStyle().PaddingLeft(2).Foreground(h.styles.Theme().Muted).Render(footer),
	)
}
