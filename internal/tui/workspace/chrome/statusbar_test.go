package chrome

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/plannerhq/planner/internal/tui"
)

func testStatusBar(width int) StatusBar {
	s := NewStatusBar(tui.NewStyles())
	s.SetWidth(width)
	return s
}

func binding(k, desc string) key.Binding {
	return key.NewBinding(key.WithKeys(k), key.WithHelp(k, desc))
}

func TestStatusBarHints(t *testing.T) {
	s := testStatusBar(80)
	s.SetKeyHints([]key.Binding{binding("n", "new")})
	s.SetGlobalHints([]key.Binding{binding("?", "help")})

	view := ansi.Strip(s.View())
	assert.Contains(t, view, "n new")
	assert.Contains(t, view, "? help")
}

func TestStatusBarDisabledHintsHidden(t *testing.T) {
	s := testStatusBar(80)
	hidden := binding("d", "remove")
	hidden.SetEnabled(false)
	s.SetKeyHints([]key.Binding{hidden})

	assert.NotContains(t, ansi.Strip(s.View()), "remove")
}

func TestStatusBarStatusReplacesUser(t *testing.T) {
	s := testStatusBar(80)
	s.SetUser("Ada Lovelace")
	assert.Contains(t, ansi.Strip(s.View()), "[Ada Lovelace]")

	s.SetStatus("Saved", false)
	view := ansi.Strip(s.View())
	assert.Contains(t, view, "Saved")
	assert.NotContains(t, view, "Ada Lovelace")

	s.ClearStatus()
	assert.Contains(t, ansi.Strip(s.View()), "[Ada Lovelace]")
}

func TestStatusBarFitsWidth(t *testing.T) {
	s := testStatusBar(30)
	s.SetKeyHints([]key.Binding{
		binding("n", "new"), binding("e", "edit"), binding("d", "remove"), binding("/", "filter"),
	})
	s.SetStatus("Employees loaded", false)

	view := s.View()
	assert.LessOrEqual(t, lipgloss.Width(view), 30)
	assert.Contains(t, ansi.Strip(view), "Employees loaded", "status wins over hints")
}

func TestStatusBarBusy(t *testing.T) {
	s := testStatusBar(80)
	assert.NotNil(t, s.SetBusy(true), "starting returns the first tick")
	assert.Nil(t, s.SetBusy(true), "already busy")
	assert.True(t, s.Busy())

	_, cmd := s.Update(spinner.TickMsg{})
	assert.NotNil(t, cmd)

	s.SetBusy(false)
	_, cmd = s.Update(spinner.TickMsg{})
	assert.Nil(t, cmd, "ticks stop once idle")
}

func TestStatusBarZeroWidth(t *testing.T) {
	assert.Empty(t, testStatusBar(0).View())
}
