package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

// Form edits one employee or project in an embedded huh form. Submitting
// dispatches a create, or an update when an existing record changed, and
// returns to the list.
type Form struct {
	session *workspace.Session
	styles  *tui.Styles
	title   string
	form    *huh.Form
	submit  func() (state.Action, bool)

	// The form edits exactly one of these in place.
	employee *models.EmployeeProperties
	project  *models.ProjectProperties

	err  string
	done bool

	width, height int
}

// NewEmployeeForm edits the employee with id, or creates one when id is
// empty or unknown.
func NewEmployeeForm(session *workspace.Session, id string) *Form {
	var (
		original models.EmployeeProperties
		existing bool
	)
	for _, e := range session.State().Employees.Results {
		if id != "" && e.ID == id {
			original, existing = e.Properties(), true
			break
		}
	}

	title := "New employee"
	if existing {
		title = "Edit " + models.Employee{Name: original.Name, Surname: original.Surname}.FullName()
	}

	values := original
	v := &Form{session: session, styles: session.Styles(), title: title, employee: &values}
	v.form = tui.EmployeeForm(title, v.employee)
	v.submit = func() (state.Action, bool) {
		p := tui.TrimEmployee(*v.employee)
		if err := tui.ValidateEmployee(p); err != nil {
			v.err = err.Error()
			return nil, false
		}
		switch {
		case !existing:
			return state.CreateEmployee{Properties: p}, true
		case p == original:
			return nil, true
		}
		return state.UpdateEmployee{ID: id, Properties: p}, true
	}
	return v
}

// NewProjectForm edits the project with id, or creates one when id is
// empty or unknown.
func NewProjectForm(session *workspace.Session, id string) *Form {
	var (
		original models.ProjectProperties
		existing bool
	)
	for _, p := range session.State().Projects.Results {
		if id != "" && p.ID == id {
			original, existing = p.Properties(), true
			break
		}
	}

	title := "New project"
	if existing {
		title = "Edit " + original.Name
	}

	values := original
	v := &Form{session: session, styles: session.Styles(), title: title, project: &values}
	v.form = tui.ProjectForm(title, v.project)
	v.submit = func() (state.Action, bool) {
		p := tui.TrimProject(*v.project)
		if err := tui.ValidateProject(p); err != nil {
			v.err = err.Error()
			return nil, false
		}
		switch {
		case !existing:
			return state.CreateProject{Properties: p}, true
		case p == original:
			return nil, true
		}
		return state.UpdateProject{ID: id, Properties: p}, true
	}
	return v
}

func (v *Form) Title() string { return v.title }

func (v *Form) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (v *Form) FullHelp() [][]key.Binding { return [][]key.Binding{v.ShortHelp()} }

// InputActive implements workspace.InputCapturer. Esc still cancels.
func (v *Form) InputActive() bool { return true }

func (v *Form) SetSize(w, h int) {
	v.width, v.height = w, h
	v.form = v.form.WithWidth(min(w, 72)).WithHeight(max(h-1, 1))
}

func (v *Form) Init() tea.Cmd {
	v.form = v.form.WithShowHelp(false)
	return v.form.Init()
}

func (v *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case workspace.StoreChangedMsg, workspace.FocusMsg, workspace.BlurMsg, workspace.RefreshMsg:
		return v, nil
	}
	if v.done {
		return v, nil
	}

	model, cmd := v.form.Update(msg)
	if f, ok := model.(*huh.Form); ok {
		v.form = f
	}

	switch v.form.State {
	case huh.StateCompleted:
		return v, v.complete()
	case huh.StateAborted:
		v.done = true
		return v, workspace.Back()
	}
	return v, cmd
}

func (v *Form) complete() tea.Cmd {
	v.done = true
	action, ok := v.submit()
	if !ok {
		return tea.Batch(workspace.SetStatus(v.err, true), workspace.Back())
	}
	if action == nil {
		return tea.Batch(workspace.SetStatus("No changes", false), workspace.Back())
	}
	return tea.Batch(v.session.DispatchCmd(action), workspace.SetStatus("Saving…", false), workspace.Back())
}

func (v *Form) View() string {
	out := v.form.View()
	if v.err != "" {
		out += "\n" + v.styles.Error.Render(v.err)
	}
	return out
}
