package chrome

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plannerhq/planner/internal/tui"
)

// PaletteCommand is one entry of the command palette.
type PaletteCommand struct {
	Name        string
	Description string
	// Key is the direct binding shown next to the name, if any.
	Key string
	Run func() tea.Cmd
}

// Palette is the command palette overlay: a query line over a filtered
// list of commands supplied by the workspace.
type Palette struct {
	styles *tui.Styles

	input    textinput.Model
	commands []PaletteCommand
	filtered []PaletteCommand
	cursor   int

	width, height int
}

func NewPalette(styles *tui.Styles) Palette {
	ti := textinput.New()
	ti.Placeholder = "Type a command…"
	ti.CharLimit = 64
	ti.Prompt = ": "
	return Palette{styles: styles, input: ti}
}

// SetCommands replaces the command list.
func (p *Palette) SetCommands(commands []PaletteCommand) {
	p.commands = commands
	p.refilter()
}

// Open clears the query and focuses the input.
func (p *Palette) Open() tea.Cmd {
	p.input.SetValue("")
	p.cursor = 0
	p.refilter()
	return p.input.Focus()
}

func (p *Palette) SetSize(width, height int) {
	p.width, p.height = width, height
	p.input.Width = max(0, width-12)
}

// Update handles a key while the palette is open. It reports whether the
// palette closed and returns the command of the chosen entry.
func (p *Palette) Update(msg tea.KeyMsg) (closed bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+p":
		p.input.Blur()
		return true, nil
	case "enter":
		p.input.Blur()
		if p.cursor < len(p.filtered) && p.filtered[p.cursor].Run != nil {
			return true, p.filtered[p.cursor].Run()
		}
		return true, nil
	case "up", "ctrl+k":
		p.cursor = max(p.cursor-1, 0)
		return false, nil
	case "down", "ctrl+j":
		p.cursor = min(p.cursor+1, max(len(p.filtered)-1, 0))
		return false, nil
	}

	p.input, cmd = p.input.Update(msg)
	p.refilter()
	return false, cmd
}

// Selected returns the highlighted command name.
func (p *Palette) Selected() string {
	if p.cursor < len(p.filtered) {
		return p.filtered[p.cursor].Name
	}
	return ""
}

func (p *Palette) refilter() {
	q := strings.ToLower(strings.TrimSpace(p.input.Value()))
	p.filtered = p.filtered[:0]
	for _, c := range p.commands {
		if q == "" || strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Description), q) {
			p.filtered = append(p.filtered, c)
		}
	}
	p.cursor = min(max(p.cursor, 0), max(len(p.filtered)-1, 0))
}

// maxPaletteRows caps the visible command rows.
const maxPaletteRows = 10

func (p Palette) View() string {
	boxWidth := min(max(p.width-8, 30), 60)
	inner := boxWidth - 4

	sep := p.styles.Muted.Render(strings.Repeat("─", inner))
	lines := []string{p.input.View(), sep}

	start := 0
	if p.cursor >= maxPaletteRows {
		start = p.cursor - maxPaletteRows + 1
	}
	end := min(start+maxPaletteRows, len(p.filtered))
	for i := start; i < end; i++ {
		c := p.filtered[i]
		line := c.Name
		if c.Key != "" {
			line += " " + p.styles.Muted.Render("("+c.Key+")")
		}
		if c.Description != "" {
			line += "  " + p.styles.Muted.Render(c.Description)
		}
		if i == p.cursor {
			line = p.styles.Cursor.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if len(p.filtered) == 0 {
		lines = append(lines, p.styles.Muted.Render("No matching commands"))
	}
	lines = append(lines, sep, p.styles.Muted.Render(fmt.Sprintf("%d/%d", len(p.filtered), len(p.commands))))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.styles.Theme().Primary).
		Padding(0, 1).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return lipgloss.NewStyle().Width(p.width).Align(lipgloss.Center).Render(box)
}
