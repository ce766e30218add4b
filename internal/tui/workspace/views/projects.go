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

// Projects is the paged project settings list.
type Projects struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    workspace.ListKeyMap
	list    *widget.List

	page     models.ProjectPage
	request  models.PagedRequest
	removing *models.Project

	width, height int
}

// NewProjects creates the project settings view.
func NewProjects(session *workspace.Session) *Projects {
	styles := session.Styles()
	list := widget.NewList(styles)
	list.SetEmptyText("No projects yet. Press n to add one.")

	v := &Projects{
		session: session,
		styles:  styles,
		keys:    workspace.DefaultListKeyMap(),
		list:    list,
		request: models.PagedRequest{Page: 0, PageSize: session.PageSize()},
	}
	v.sync(session.State())
	return v
}

func (v *Projects) Title() string { return "Projects" }

func (v *Projects) ShortHelp() []key.Binding {
	switch {
	case v.removing != nil:
		return confirmHints()
	case v.list.Filtering():
		return filterHints()
	}
	return []key.Binding{v.keys.Create, v.keys.Edit, v.keys.Remove, v.keys.NextPage, v.keys.Filter}
}

func (v *Projects) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{v.keys.Up, v.keys.Down, v.keys.Top, v.keys.Bottom},
		{v.keys.NextPage, v.keys.PrevPage, v.keys.Filter},
		{v.keys.Create, v.keys.Edit, v.keys.Remove},
	}
}

// InputActive implements workspace.InputCapturer.
func (v *Projects) InputActive() bool { return v.list.Filtering() || v.removing != nil }

// IsModal implements workspace.ModalActive.
func (v *Projects) IsModal() bool { return v.removing != nil }

func (v *Projects) SetSize(w, h int) {
	v.width, v.height = w, h
	v.list.SetSize(w, max(h-2, 1))
}

func (v *Projects) Init() tea.Cmd {
	return v.load(v.request.Page)
}

func (v *Projects) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (v *Projects) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.removing != nil {
		switch msg.String() {
		case "y", "Y":
			p := *v.removing
			v.removing = nil
			return tea.Batch(
				v.session.DispatchCmd(state.RemoveProject{ID: p.ID}),
				workspace.SetStatus(fmt.Sprintf("Removing %s…", p.Name), false),
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
		return workspace.Navigate(workspace.ViewProjectForm, workspace.Scope{})
	case key.Matches(msg, v.keys.Edit):
		if p, ok := v.selected(); ok {
			return workspace.Navigate(workspace.ViewProjectForm, workspace.Scope{ProjectID: p.ID})
		}
		return nil
	case key.Matches(msg, v.keys.Remove):
		if p, ok := v.selected(); ok {
			v.removing = &p
		}
		return nil
	}
	return v.list.Update(msg)
}

func (v *Projects) load(page int) tea.Cmd {
	v.request = models.PagedRequest{Page: page, PageSize: v.session.PageSize()}
	v.list.SetLoading(true)
	return v.session.DispatchCmd(state.LoadProjects{Request: v.request})
}

func (v *Projects) sync(s *state.State) {
	v.page = s.Projects
	v.list.SetLoading(s.IsLoadingProjects)

	items := make([]widget.ListItem, len(s.Projects.Results))
	for i, p := range s.Projects.Results {
		var extra string
		if p.MustBeOnPremises {
			extra = "on premises"
		}
		items[i] = widget.ListItem{ID: p.ID, Title: p.Name, Description: p.Color, Extra: extra, Color: p.Color}
	}
	v.list.SetItems(items)
}

func (v *Projects) selected() (models.Project, bool) {
	item := v.list.Selected()
	if item == nil {
		return models.Project{}, false
	}
	for _, p := range v.page.Results {
		if p.ID == item.ID {
			return p, true
		}
	}
	return models.Project{}, false
}

func (v *Projects) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Projects"))
	b.WriteString("  ")
	b.WriteString(pageSummary(v.styles, v.page, "projects"))
	b.WriteString("\n")
	b.WriteString(v.list.View())
	if v.removing != nil {
		b.WriteString("\n")
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Remove %s? (y/n)", v.removing.Name)))
	}
	return b.String()
}
