// Package workspace provides the full-screen planner application behind
// `planner tui`.
package workspace

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
)

// ViewTarget identifies which view to navigate to.
type ViewTarget int

const (
	ViewPlanner ViewTarget = iota
	ViewEmployees
	ViewProjects
	ViewChat
	ViewEmployeeForm
	ViewProjectForm
	ViewCellPicker
)

// Sections are the top-level views reachable with the number keys, in
// key order.
var Sections = []ViewTarget{ViewPlanner, ViewEmployees, ViewProjects, ViewChat}

// Scope carries the record a pushed view works on. Empty IDs on a form
// mean "create".
type Scope struct {
	EmployeeID string
	ProjectID  string
	Day        models.Date
}

// Navigation messages

// NavigateMsg pushes a view onto the stack.
type NavigateMsg struct {
	Target ViewTarget
	Scope  Scope
}

// NavigateBackMsg pops the current view.
type NavigateBackMsg struct{}

// SwitchSectionMsg replaces the whole stack with a top-level view.
type SwitchSectionMsg struct {
	Target ViewTarget
}

// Lifecycle messages

// FocusMsg is sent to a view when it becomes the current view again.
type FocusMsg struct{}

// BlurMsg is sent to a view when another view is pushed over it.
type BlurMsg struct{}

// RefreshMsg asks the current view to reload its data.
type RefreshMsg struct{}

// Store messages

// StoreChangedMsg delivers one reduced action and the snapshot it
// produced.
type StoreChangedMsg struct {
	Action state.Action
	State  *state.State
}

// NoticeMsg carries a localized failure notification.
type NoticeMsg struct {
	Text string
}

// StatusMsg sets the status bar text.
type StatusMsg struct {
	Text    string
	IsError bool
}

// Navigate returns a command that pushes target.
func Navigate(target ViewTarget, scope Scope) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Target: target, Scope: scope} }
}

// Back returns a command that pops the current view.
func Back() tea.Cmd {
	return func() tea.Msg { return NavigateBackMsg{} }
}

// SetStatus returns a command that sets the status bar text.
func SetStatus(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, IsError: isError} }
}
