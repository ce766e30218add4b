// Package chrome provides always-visible shell components for the workspace.
package chrome

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plannerhq/planner/internal/tui"
)

// StatusBar renders the bottom line: key hints on the left, then a busy
// spinner and the status text or user badge on the right.
type StatusBar struct {
	styles      *tui.Styles
	width       int
	user        string
	status      string
	isError     bool
	keyHints    []key.Binding
	globalHints []key.Binding

	busy    bool
	spinner spinner.Model
}

func NewStatusBar(styles *tui.Styles) StatusBar {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme().Primary)
	return StatusBar{styles: styles, spinner: sp}
}

// SetUser sets the signed-in user badge.
func (s *StatusBar) SetUser(name string) {
	s.user = name
}

// SetStatus sets a status message until the next ClearStatus.
func (s *StatusBar) SetStatus(text string, isError bool) {
	s.status = text
	s.isError = isError
}

func (s *StatusBar) ClearStatus() {
	s.status = ""
	s.isError = false
}

// SetKeyHints sets the view's key bindings shown as hints.
func (s *StatusBar) SetKeyHints(hints []key.Binding) {
	s.keyHints = hints
}

// SetGlobalHints sets the bindings appended after the view's hints.
func (s *StatusBar) SetGlobalHints(hints []key.Binding) {
	s.globalHints = hints
}

// SetBusy shows or hides the spinner. Starting it returns the first tick.
func (s *StatusBar) SetBusy(busy bool) tea.Cmd {
	if busy == s.busy {
		return nil
	}
	s.busy = busy
	if busy {
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) Busy() bool { return s.busy }

func (s *StatusBar) SetWidth(w int) {
	s.width = w
}

// Update advances the spinner while busy.
func (s StatusBar) Update(msg tea.Msg) (StatusBar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !s.busy {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(tick)
	return s, cmd
}

func (s StatusBar) View() string {
	if s.width <= 0 {
		return ""
	}

	theme := s.styles.Theme()
	keyStyle := lipgloss.NewStyle().Foreground(theme.Primary)
	descStyle := lipgloss.NewStyle().Foreground(theme.Muted)

	var hints []string
	for _, k := range append(append([]key.Binding{}, s.keyHints...), s.globalHints...) {
		if !k.Enabled() {
			continue
		}
		help := k.Help()
		hints = append(hints, keyStyle.Render(help.Key)+descStyle.Render(" "+help.Desc))
	}
	left := strings.Join(hints, "  ")

	var right string
	switch {
	case s.status != "" && s.isError:
		right = lipgloss.NewStyle().Foreground(theme.Error).Render(s.status)
	case s.status != "":
		right = lipgloss.NewStyle().Foreground(theme.Success).Render(s.status)
	case s.user != "":
		right = descStyle.Render("[" + s.user + "]")
	}
	if s.busy {
		right = s.spinner.View() + " " + right
	}

	// Drop hints from the end until both sides fit.
	for len(hints) > 0 && lipgloss.Width(left)+lipgloss.Width(right)+1 > s.width {
		hints = hints[:len(hints)-1]
		left = strings.Join(hints, "  ")
	}

	gap := max(1, s.width-lipgloss.Width(left)-lipgloss.Width(right))
	return lipgloss.NewStyle().
		Width(s.width).
		MaxWidth(s.width).
		Foreground(theme.Secondary).
		Render(left + strings.Repeat(" ", gap) + right)
}
