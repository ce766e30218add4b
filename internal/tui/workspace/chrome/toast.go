package chrome

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plannerhq/planner/internal/tui"
)

// ToastDuration is how long a toast remains visible.
const ToastDuration = 4 * time.Second

// toastExpiredMsg hides the toast it was scheduled for.
type toastExpiredMsg struct{ seq int }

// Toast shows one transient message above the status bar. A newer
// message replaces the current one and restarts the timer.
type Toast struct {
	styles  *tui.Styles
	width   int
	message string
	isError bool
	seq     int
}

func NewToast(styles *tui.Styles) Toast {
	return Toast{styles: styles}
}

// Show displays message and returns the command that hides it again.
func (t *Toast) Show(message string, isError bool) tea.Cmd {
	t.seq++
	t.message = message
	t.isError = isError
	seq := t.seq
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (t *Toast) SetWidth(w int) {
	t.width = w
}

func (t *Toast) Visible() bool {
	return t.message != ""
}

// Message returns the text currently shown.
func (t *Toast) Message() string {
	return t.message
}

// Update hides the toast when its own timer fires. It reports whether msg
// was a toast message.
func (t *Toast) Update(msg tea.Msg) bool {
	expired, ok := msg.(toastExpiredMsg)
	if !ok {
		return false
	}
	if expired.seq == t.seq {
		t.message = ""
		t.isError = false
	}
	return true
}

func (t Toast) View() string {
	if t.message == "" {
		return ""
	}

	theme := t.styles.Theme()
	fg := theme.Success
	prefix := "✓ "
	if t.isError {
		fg = theme.Error
		prefix = "✗ "
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Bold(t.isError).
		Align(lipgloss.Center).
		Width(t.width).
		Render(prefix + t.message)
}
