package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
	"github.com/plannerhq/planner/internal/tui/workspace/widget"
)

// Employees is the paged employee settings list.
type Employees struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    workspace.ListKeyMap
	list    *widget.List

	page     models.EmployeePage
	request  models.PagedRequest
	removing *models.Employee

	width, height int
}

// NewEmployees creates the employee settings view.
func NewEmployees(session *workspace.Session) *Employees {
	styles := session.Styles()
	list := widget.NewList(styles)
	list.SetEmptyText("No employees yet. Press n to add one.")

	v := &Employees{
		session: session,
		styles:  styles,
		keys:    workspace.DefaultListKeyMap(),
		list:    list,
		request: models.PagedRequest{Page: 0, PageSize: session.PageSize()},
	}
	v.sync(session.State())
	return v
}

func (v *Employees) Title() string { return "Employees" }

func (v *Employees) ShortHelp() []key.Binding {
	switch {
	case v.removing != nil:
		return confirmHints()
	case v.list.Filtering():
		return filterHints()
	}
	return []key.Binding{v.keys.Create, v.keys.Edit, v.keys.Remove, v.keys.NextPage, v.keys.Filter}
}

func (v *Employees) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{v.keys.Up, v.keys.Down, v.keys.Top, v.keys.Bottom},
		{v.keys.NextPage, v.keys.PrevPage, v.keys.Filter},
		{v.keys.Create, v.keys.Edit, v.keys.Remove},
	}
}

// InputActive implements workspace.InputCapturer.
func (v *Employees) InputActive() bool { return v.list.Filtering() || v.removing != nil }

// IsModal implements workspace.ModalActive.
func (v *Employees) IsModal() bool { return v.removing != nil }

func (v *Employees) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w, max(h-2, 1))
}

func (v *Employees) Init() tea.Cmd {
	return v.load(v.request.Page)
}

func (v *Employees) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.StoreChangedMsg:
		v.sync(msg.State)
	case workspace.FocusMsg:
		v.list.SetFocused(true)
		return v, v.load(v.request.Page)
	case workspace.BlurMsg:
		v.list.SetFocused(false)
	case workspace.RefreshMsg:
		return v, v.load(v.request.Page)
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *Employees) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.removing != nil {
		switch msg.String() {
		case "y", "Y":
			e := *v.removing
			v.removing = nil
			return tea.Batch(
				v.session.DispatchCmd(state.RemoveEmployee{ID: e.ID}),
				workspace.SetStatus(fmt.Sprintf("Removing %s…", e.FullName()), false),
			)
		case "n", "N", "esc":
			v.removing = nil
		}
		return nil
	}
	if v.list.Filtering() {
		return v.list.Update(msg)
	}
	if page, ok := pageTarget(v.keys, msg, v.request.Page, v.page.TotalPages); ok {
		return v.load(page)
	}

	switch {
	case key.Matches(msg, v.keys.Create):
		return workspace.Navigate(workspace.ViewEmployeeForm, workspace.Scope{})
	case key.Matches(msg, v.keys.Edit):
		if e, ok := v.selected(); ok {
			return workspace.Navigate(workspace.ViewEmployeeForm, workspace.Scope{EmployeeID: e.ID})
		}
		return nil
	case key.Matches(msg, v.keys.Remove):
		if e, ok := v.selected(); ok {
			v.removing = &e
		}
		return nil
	}
	return v.list.Update(msg)
}

func (v *Employees) load(page int) tea.Cmd {
	v.request = models.PagedRequest{Page: page, PageSize: v.session.PageSize()}
	v.list.SetLoading(true)
	return v.session.DispatchCmd(state.LoadEmployees{Request: v.request})
}

func (v *Employees) sync(s *state.State) {
	v.page = s.Employees
	v.list.SetLoading(s.IsLoadingEmployees)

	items := make([]widget.ListItem, len(s.Employees.Results))
	for i, e := range s.Employees.Results {
		var extra string
		if e.WorksRemotely {
			extra = "remote"
		}
		items[i] = widget.ListItem{ID: e.ID, Title: e.FullName(), Description: e.Email, Extra: extra}
	}
	v.list.SetItems(items)
}

func (v *Employees) selected() (models.Employee, bool) {
	item := v.list.Selected()
	if item == nil {
		return models.Employee{}, false
	}
	for _, e := range v.page.Results {
		if e.ID == item.ID {
			return e, true
		}
	}
	return models.Employee{}, false
}

func (v *Employees) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Employees"))
	b.WriteString("  ")
	b.WriteString(pageSummary(v.styles, v.page, "employees"))
	b.WriteString("\n")
	b.WriteString(v.list.View())
	if v.removing != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Remove %s? (y/n)", v.removing.FullName())))
	}
	return b.String()
}
