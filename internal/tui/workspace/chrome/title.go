package chrome

import tea "github.com/charmbracelet/bubbletea"

// SetTerminalTitle names the terminal window after the current view.
func SetTerminalTitle(view string) tea.Cmd {
	if view == "" {
		return tea.SetWindowTitle("planner")
	}
	return tea.SetWindowTitle("planner - " + view)
}
