package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/plannerhq/planner/internal/dateparse"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

// plannerProjectRequest loads every project the cell picker can offer.
var plannerProjectRequest = models.PagedRequest{Page: 0, PageSize: 100}

type plannerKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PrevWeek key.Binding
	NextWeek key.Binding
	Today    key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Assign   key.Binding
	Clear    key.Binding
}

func defaultPlannerKeyMap() plannerKeyMap {
	return plannerKeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		PrevWeek: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev week")),
		NextWeek: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next week")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		PrevPage: key.NewBinding(key.WithKeys("pgup", "<"), key.WithHelp("pgup", "prev page")),
		NextPage: key.NewBinding(key.WithKeys("pgdown", ">"), key.WithHelp("pgdn", "next page")),
		Assign:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "assign")),
		Clear:    key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "clear")),
	}
}

// Planner is the week grid: one row per employee, one column per day.
type Planner struct {
	session *workspace.Session
	styles  *tui.Styles
	keys    plannerKeyMap

	week     dateparse.Week
	request  models.PagedRequest
	snapshot *state.State

	// Memoized per snapshot.
	grid     state.Selector[map[state.Cell]models.Assignment]
	projects state.Selector[map[string]models.Project]

	row, col int

	width, height int
}

// NewPlanner opens the grid on the current week.
func NewPlanner(session *workspace.Session) *Planner {
	return &Planner{
		session:  session,
		styles:   session.Styles(),
		keys:     defaultPlannerKeyMap(),
		week:     dateparse.CurrentWeek(time.Now()),
		request:  models.PagedRequest{Page: 0, PageSize: session.PlannerPageSize()},
		snapshot: session.State(),
		grid:     state.Memo(state.SelectGrid),
		projects: state.Memo(state.SelectProjectIndex),
	}
}

func (v *Planner) Title() string { return "Planner" }

func (v *Planner) ShortHelp() []key.Binding {
	return []key.Binding{v.keys.Assign, v.keys.Clear, v.keys.PrevWeek, v.keys.NextWeek, v.keys.NextPage}
}

func (v *Planner) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{v.keys.Up, v.keys.Down, v.keys.Left, v.keys.Right},
		{v.keys.PrevWeek, v.keys.NextWeek, v.keys.Today},
		{v.keys.PrevPage, v.keys.NextPage},
		{v.keys.Assign, v.keys.Clear},
	}
}

func (v *Planner) SetSize(w, h int) {
	v.width, v.height = w, h
}

// Week returns the displayed week.
func (v *Planner) Week() dateparse.Week { return v.week }

func (v *Planner) Init() tea.Cmd {
	return v.reload()
}

func (v *Planner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.StoreChangedMsg:
		v.snapshot = msg.State
		v.clampCursor()
	case workspace.FocusMsg, workspace.RefreshMsg:
		return v, v.reload()
	case workspace.BlurMsg:
		v.session.StopPolling()
	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}
	return v, nil
}

func (v *Planner) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.row--
	case key.Matches(msg, v.keys.Down):
		v.row++
	case key.Matches(msg, v.keys.Left):
		v.col--
	case key.Matches(msg, v.keys.Right):
		v.col++
	case key.Matches(msg, v.keys.PrevWeek):
		return v.showWeek(v.week.Prev())
	case key.Matches(msg, v.keys.NextWeek):
		return v.showWeek(v.week.Next())
	case key.Matches(msg, v.keys.Today):
		return v.showWeek(dateparse.CurrentWeek(time.Now()))
	case key.Matches(msg, v.keys.PrevPage):
		return v.showPage(v.request.Page - 1)
	case key.Matches(msg, v.keys.NextPage):
		return v.showPage(v.request.Page + 1)
	case key.Matches(msg, v.keys.Assign):
		if e, ok := v.selectedEmployee(); ok {
			return workspace.Navigate(workspace.ViewCellPicker, workspace.Scope{EmployeeID: e.ID, Day: v.selectedDay()})
		}
	case key.Matches(msg, v.keys.Clear):
		if e, ok := v.selectedEmployee(); ok {
			if a, found := state.AssignmentFor(v.snapshot, e.ID, v.selectedDay()); found {
				return v.session.DispatchCmd(state.DeleteAssignment{ID: a.ID})
			}
		}
	}
	v.clampCursor()
	return nil
}

// reload fetches the employee page, all projects and the week's
// assignments, and restarts the assignment poller.
func (v *Planner) reload() tea.Cmd {
	v.startPolling()
	return v.session.DispatchCmd(
		state.LoadEmployees{Request: v.request},
		state.LoadProjects{Request: plannerProjectRequest},
		state.LoadAssignments{Request: v.week.Request()},
	)
}

func (v *Planner) showWeek(w dateparse.Week) tea.Cmd {
	if w.Start.Equal(v.week.Start) {
		return nil
	}
	v.week = w
	v.startPolling()
	return v.session.DispatchCmd(state.LoadAssignments{Request: w.Request()})
}

func (v *Planner) showPage(page int) tea.Cmd {
	if page < 0 || page >= max(v.snapshot.Employees.TotalPages, 1) {
		return nil
	}
	v.request.Page = page
	v.row = 0
	return v.session.DispatchCmd(state.LoadEmployees{Request: v.request})
}

// startPolling replaces the poller with one bound to the displayed week.
func (v *Planner) startPolling() {
	req := v.week.Request()
	session := v.session
	session.StartPolling(func() {
		session.Dispatch(state.LoadAssignments{Request: req})
	})
}

func (v *Planner) employees() []models.Employee {
	if v.snapshot == nil {
		return nil
	}
	return v.snapshot.Employees.Results
}

func (v *Planner) selectedEmployee() (models.Employee, bool) {
	list := v.employees()
	if v.row < 0 || v.row >= len(list) {
		return models.Employee{}, false
	}
	return list[v.row], true
}

func (v *Planner) selectedDay() models.Date {
	return v.week.Start.AddDays(v.col)
}

func (v *Planner) clampCursor() {
	v.col = min(max(v.col, 0), 6)
	v.row = min(max(v.row, 0), max(len(v.employees())-1, 0))
}

const (
	minNameWidth = 12
	maxNameWidth = 24
	minCellWidth = 6
)

func (v *Planner) View() string {
	if v.width <= 0 {
		return ""
	}

	var b strings.Builder
	year, number := v.week.Number()
	locale := v.session.Locale()
	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Week %d, %d", number, year)))
	b.WriteString("  ")
	b.WriteString(v.styles.Muted.Render(locale.FormatDate(v.week.Start.Time) + " - " + locale.FormatDate(v.week.End().Time)))
	b.WriteString("\n\n")

	nameW := min(max(v.width/4, minNameWidth), maxNameWidth)
	cellW := max((v.width-nameW)/7, minCellWidth)

	header := []string{lipgloss.NewStyle().Width(nameW).Render("")}
	for i, day := range v.week.Days() {
		style := v.styles.DayHeader
		if isWeekendColumn(i) {
			style = v.styles.WeekendHeader
		}
		header = append(header, style.Width(cellW).MaxWidth(cellW).Render(locale.FormatShortDate(day.Time)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header...))
	b.WriteString("\n")

	employees := v.employees()
	switch {
	case len(employees) == 0 && v.snapshot != nil && v.snapshot.IsLoadingEmployees:
		b.WriteString(v.styles.Muted.Render("Loading…"))
		b.WriteString("\n")
	case len(employees) == 0:
		b.WriteString(v.styles.Muted.Render("No employees yet. Add some in the Employees section."))
		b.WriteString("\n")
	}

	days := v.week.Days()
	for r, e := range employees {
		name := ansi.Truncate(e.FullName(), nameW-1, "…")
		nameStyle := v.styles.Body
		if r == v.row {
			nameStyle = v.styles.Cursor
		}
		row := []string{nameStyle.Width(nameW).Render(name)}
		for c, day := range days {
			row = append(row, v.renderCell(e.ID, day, c, r == v.row && c == v.col, cellW))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(pageSummary(v.styles, v.snapshot.Employees, "employees"))
	return b.String()
}

func (v *Planner) renderCell(employeeID string, day models.Date, col int, active bool, width int) string {
	style := v.styles.Cell
	if isWeekendColumn(col) {
		style = v.styles.WeekendCell
	}

	var label, color string
	if a, ok := v.grid(v.snapshot)[state.CellOf(employeeID, day)]; ok {
		label = a.ProjectID
		if p, found := v.projects(v.snapshot)[a.ProjectID]; found {
			label, color = p.Name, p.Color
		}
	}
	// Padding takes two columns of the cell.
	label = ansi.Truncate(label, max(width-2, 1), "…")

	switch {
	case active:
		if label == "" {
			label = "·"
		}
		return v.styles.ActiveCell.Width(width).Render(label)
	case label != "" && tui.IsHexColor(color):
		return style.Width(width).Render(v.styles.ProjectLabel(label, color))
	}
	return style.Width(width).Render(label)
}

// isWeekendColumn reports whether a Monday-based column index is Saturday
// or Sunday.
func isWeekendColumn(i int) bool { return i == 5 || i == 6 }
