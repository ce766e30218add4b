package workspace

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all workspace views must implement.
type View interface {
	tea.Model

	// Title returns the breadcrumb segment for this view.
	Title() string

	// ShortHelp returns key bindings shown in the status bar.
	ShortHelp() []key.Binding

	// FullHelp returns all key bindings for the help overlay.
	FullHelp() [][]key.Binding

	// SetSize updates the view's available dimensions.
	SetSize(width, height int)
}

// InputCapturer is implemented by views that take text input. While
// InputActive is true the workspace forwards every key to the view and
// skips its single-key bindings (q, r, 1-4, ?).
type InputCapturer interface {
	InputActive() bool
}

// ModalActive is implemented by views with a modal state of their own.
// While IsModal is true, Esc goes to the view instead of navigating back.
type ModalActive interface {
	IsModal() bool
}
