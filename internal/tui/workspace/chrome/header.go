package chrome

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/plannerhq/planner/internal/tui"
)

// Header renders the section tabs followed by the trail of views pushed
// on top of the active section.
type Header struct {
	styles   *tui.Styles
	sections []string
	active   int
	crumbs   []string
	width    int
}

func NewHeader(styles *tui.Styles, sections []string) Header {
	return Header{styles: styles, sections: sections}
}

// SetActive marks the section at index i.
func (h *Header) SetActive(i int) {
	h.active = i
}

// SetCrumbs sets the titles of the views above the section root.
func (h *Header) SetCrumbs(crumbs []string) {
	h.crumbs = crumbs
}

func (h *Header) SetWidth(w int) {
	h.width = w
}

func (h Header) View() string {
	if h.width <= 0 {
		return ""
	}
	theme := h.styles.Theme()
	num := lipgloss.NewStyle().Foreground(theme.Muted)

	tabs := make([]string, len(h.sections))
	for i, name := range h.sections {
		style := lipgloss.NewStyle().Foreground(theme.Secondary)
		if i == h.active {
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Underline(true)
		}
		tabs[i] = num.Render(fmt.Sprintf("%d:", i+1)) + style.Render(name)
	}
	line := strings.Join(tabs, "  ")

	if len(h.crumbs) > 0 {
		sep := lipgloss.NewStyle().Foreground(theme.Border).Render(" > ")
		trail := lipgloss.NewStyle().Foreground(theme.Foreground).Bold(true).Render(strings.Join(h.crumbs, " > "))
		line += sep + trail
	}

	if lipgloss.Width(line) > h.width {
		line = ansi.Truncate(line, h.width, "…")
	}
	return lipgloss.NewStyle().Width(h.width).Render(line)
}
