package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
	"github.com/plannerhq/planner/internal/tui/workspace/widget"
)

// clearItemID marks the list entry that removes the cell's assignment.
const clearItemID = "\x00clear"

// CellPicker chooses the project of one planner cell.
type CellPicker struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    workspace.ListKeyMap
	list    *widget.List

	employeeID string
	day        models.Date
	heading    string
	current    *models.Assignment
	done       bool

	width, height int
}

// NewCellPicker opens the picker for the employee and day in scope.
func NewCellPicker(session *workspace.Session, scope workspace.Scope) *CellPicker {
	styles := session.Styles()
	list := widget.NewList(styles)
	list.SetEmptyText("No projects available.")

	v := &CellPicker{
		session:    session,
		styles:     styles,
		keys:       workspace.DefaultListKeyMap(),
		list:       list,
		employeeID: scope.EmployeeID,
		day:        scope.Day,
	}
	v.sync(session.State())
	if v.current != nil {
		v.list.SelectByID(v.current.ProjectID)
	}
	return v
}

func (v *CellPicker) Title() string { return "Assign" }

func (v *CellPicker) ShortHelp() []key.Binding {
	if v.list.Filtering() {
		return filterHints()
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "assign")),
		v.keys.Filter,
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (v *CellPicker) FullHelp() [][]key.Binding {
	return [][]key.Binding{{v.keys.Up, v.keys.Down, v.keys.Top, v.keys.Bottom}, v.ShortHelp()}
}

// InputActive implements workspace.InputCapturer.
func (v *CellPicker) InputActive() bool { return v.list.Filtering() }

func (v *CellPicker) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w, max(h-2, 1))
}

func (v *CellPicker) Init() tea.Cmd { return nil }

func (v *CellPicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.StoreChangedMsg:
		v.sync(msg.State)
	case tea.KeyMsg:
		if v.done {
			return v, nil
		}
		if !v.list.Filtering() && msg.String() == "enter" {
			return v, v.choose()
		}
		return v, v.list.Update(msg)
	}
	return v, nil
}

func (v *CellPicker) choose() tea.Cmd {
	item := v.list.Selected()
	if item == nil {
		return nil
	}
	v.done = true

	switch {
	case item.ID == clearItemID:
		if v.current == nil {
			return workspace.Back()
		}
		return tea.Batch(v.session.DispatchCmd(state.DeleteAssignment{ID: v.current.ID}), workspace.Back())
	case v.current != nil && v.current.ProjectID == item.ID:
		return workspace.Back()
	}
	return tea.Batch(
		v.session.DispatchCmd(state.CreateAssignment{Properties: models.AssignmentProperties{
			EmployeeID: v.employeeID,
			ProjectID:  item.ID,
			Date:       v.day,
		}}),
		workspace.Back(),
	)
}

func (v *CellPicker) sync(s *state.State) {
	name := v.employeeID
	for _, e := range s.Employees.Results {
		if e.ID == v.employeeID {
			name = e.FullName()
			break
		}
	}
	v.heading = name + " · " + v.session.Locale().FormatDate(v.day.Time)

	if a, ok := state.AssignmentFor(s, v.employeeID, v.day); ok {
		v.current = &a
	} else {
		v.current = nil
	}

	items := make([]widget.ListItem, 0, len(s.Projects.Results)+1)
	for _, p := range s.Projects.Results {
		var extra string
		if v.current != nil && v.current.ProjectID == p.ID {
			extra = "current"
		}
		items = append(items, widget.ListItem{ID: p.ID, Title: p.Name, Extra: extra, Color: p.Color})
	}
	if v.current != nil {
		items = append(items, widget.ListItem{ID: clearItemID, Title: "Clear", Description: "remove the assignment"})
	}
	v.list.SetItems(items)
}

func (v *CellPicker) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render(v.heading))
	b.WriteString("\n")
	b.WriteString(v.list.View())
	return b.String()
}
