package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned when the user interrupts a spinner.
var ErrCanceled = errors.New("canceled")

type spinnerDoneMsg struct{ err error }

type spinnerModel struct {
	spinner  spinner.Model
	message  string
	styles   *Styles
	done     bool
	err      error
	canceled bool
}

func (m spinnerModel) Init() tea.Cmd { return m.spinner.Tick }

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			m.canceled = true
			return m, tea.Quit
		}
	case spinnerDoneMsg:
		m.done, m.err = true, msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return m.spinner.View() + " " + m.styles.Muted.Render(m.message) + "\n"
}

// Spin shows message with a spinner until fn returns. The spinner clears
// itself; callers print the outcome.
func Spin(message string, fn func() error) error {
	styles := NewStylesWithTheme(ResolveTheme())
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.Cursor

	p := tea.NewProgram(spinnerModel{spinner: sp, message: message, styles: styles})
	go func() {
		p.Send(spinnerDoneMsg{err: fn()})
	}()

	final, err := p.Run()
	if err != nil {
		return err
	}
	fm := final.(spinnerModel) //nolint:errcheck // always a spinnerModel
	if fm.canceled {
		return ErrCanceled
	}
	return fm.err
}
