package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Styles are the lipgloss styles derived from a Theme.
type Styles struct {
	theme Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Bold     lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style

	Box      lipgloss.Style
	Focused  lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style

	// Planner grid
	DayHeader     lipgloss.Style
	WeekendHeader lipgloss.Style
	Cell          lipgloss.Style
	WeekendCell   lipgloss.Style
	ActiveCell    lipgloss.Style

	// Chat transcript
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
}

func NewStyles() *Styles {
	return NewStylesWithTheme(DefaultTheme())
}

func NewStylesWithTheme(theme Theme) *Styles {
	s := &Styles{theme: theme}
	base := lipgloss.NewStyle()

	s.Title = base.Bold(true).Foreground(theme.Primary)
	s.Subtitle = base.Foreground(theme.Secondary)
	s.Body = base.Foreground(theme.Foreground)
	s.Muted = base.Foreground(theme.Muted)
	s.Bold = base.Bold(true).Foreground(theme.Foreground)
	s.Success = base.Foreground(theme.Success)
	s.Warning = base.Foreground(theme.Warning)
	s.Error = base.Foreground(theme.Error)

	s.Box = base.
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)
	s.Focused = s.Box.BorderForeground(theme.Primary)
	s.Selected = base.
		Background(theme.Primary).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1)
	s.Cursor = base.Foreground(theme.Primary).Bold(true)

	s.DayHeader = base.Bold(true).Foreground(theme.Foreground).Padding(0, 1)
	s.WeekendHeader = s.DayHeader.Foreground(theme.Muted).Background(theme.Weekend)
	s.Cell = base.Padding(0, 1)
	s.WeekendCell = s.Cell.Background(theme.Weekend)
	s.ActiveCell = s.Cell.Reverse(true)

	s.UserBubble = base.
		Foreground(theme.Foreground).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(theme.Primary).
		PaddingLeft(1)
	s.BotBubble = base.
		Foreground(theme.Foreground).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(theme.Muted).
		PaddingLeft(1)

	return s
}

func (s *Styles) Theme() Theme {
	return s.theme
}

// RenderKeyValue renders "key: value" with a muted key.
func (s *Styles) RenderKeyValue(key, value string) string {
	return s.Muted.Render(key+": ") + s.Body.Render(value)
}

// RenderStatus prefixes message with a check or a cross.
func (s *Styles) RenderStatus(ok bool, message string) string {
	if ok {
		return s.Success.Bold(true).Render("✓ " + message)
	}
	return s.Error.Bold(true).Render("✗ " + message)
}

// Swatch renders a colored block for a project color. Invalid colors
// render as a muted placeholder.
func (s *Styles) Swatch(color string) string {
	if !IsHexColor(color) {
		return s.Muted.Render("□")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("■")
}

// ProjectLabel renders a project name on its own color.
func (s *Styles) ProjectLabel(name, color string) string {
	if !IsHexColor(color) {
		return s.Body.Render(name)
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(contrastText(color)).
		Render(name)
}

// contrastText picks black or white text for a background by its lightness.
func contrastText(hex string) lipgloss.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return lipgloss.Color("#ffffff")
	}
	if l, _, _ := c.Lab(); l > 0.6 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}
