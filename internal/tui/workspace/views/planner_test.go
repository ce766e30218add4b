package views

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

func testPlanner(t *testing.T, mutate func(s *state.State, v *Planner)) (*Planner, *harness) {
	t.Helper()
	s := fixtureState()
	h := newHarness(t, s)
	v := NewPlanner(h.session)
	if mutate != nil {
		mutate(s, v)
		v.Update(workspace.StoreChangedMsg{State: s})
	}
	v.SetSize(120, 20)
	return v, h
}

func TestPlannerInitLoadsWeek(t *testing.T) {
	v, h := testPlanner(t, nil)
	collect(v.Init())

	emp := h.rec.waitFor(t, state.KindLoadEmployees).(state.LoadEmployees)
	assert.Equal(t, models.PagedRequest{Page: 0, PageSize: 10}, emp.Request)
	proj := h.rec.waitFor(t, state.KindLoadProjects).(state.LoadProjects)
	assert.Equal(t, 100, proj.Request.PageSize)
	asg := h.rec.waitFor(t, state.KindLoadAssignments).(state.LoadAssignments)
	assert.Equal(t, v.Week().Request(), asg.Request)
	assert.True(t, asg.Request.EndDate.Equal(v.Week().Start.AddDays(6)))

	assert.True(t, h.session.Polling())
}

func TestPlannerPollsOnlyWhileFocused(t *testing.T) {
	v, h := testPlanner(t, nil)
	collect(v.Init())
	require.True(t, h.session.Polling())

	v.Update(workspace.BlurMsg{})
	assert.False(t, h.session.Polling())

	_, cmd := v.Update(workspace.FocusMsg{})
	collect(cmd)
	assert.True(t, h.session.Polling())
}

func TestPlannerRendersGrid(t *testing.T) {
	v, h := testPlanner(t, func(s *state.State, v *Planner) {
		s.Assignments = []models.Assignment{{ID: "a1", EmployeeID: "e1", ProjectID: "p1", Date: v.Week().Start}}
	})
	view := ansi.Strip(v.View())

	locale := h.session.Locale()
	assert.Contains(t, view, locale.FormatShortDate(v.Week().Start.Time))
	assert.Contains(t, view, locale.FormatShortDate(v.Week().End().Time))
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "Grace Hopper")
	assert.Contains(t, view, "Apollo")
	assert.Contains(t, view, "Page 1/2 · 7 employees")
}

func TestPlannerEmptyGrid(t *testing.T) {
	v, _ := testPlanner(t, func(s *state.State, _ *Planner) {
		s.Employees.Results = nil
		s.IsLoadingEmployees = true
	})
	assert.Contains(t, ansi.Strip(v.View()), "Loading…")

	v.Update(workspace.StoreChangedMsg{State: state.Initial(v.Week().Start.Time)})
	assert.Contains(t, ansi.Strip(v.View()), "No employees yet")
}

func TestPlannerCursorStaysInGrid(t *testing.T) {
	v, _ := testPlanner(t, nil)

	v.Update(press("left"))
	v.Update(press("up"))
	assert.Equal(t, 0, v.row)
	assert.Equal(t, 0, v.col)

	for range 10 {
		v.Update(press("right"))
		v.Update(press("down"))
	}
	assert.Equal(t, 1, v.row)
	assert.Equal(t, 6, v.col)
}

func TestPlannerEnterOpensCellPicker(t *testing.T) {
	v, _ := testPlanner(t, nil)

	v.Update(press("down"))
	v.Update(press("right"))
	v.Update(press("right"))
	_, cmd := v.Update(press("enter"))

	nav, ok := findMsg[workspace.NavigateMsg](collect(cmd))
	require.True(t, ok)
	assert.Equal(t, workspace.ViewCellPicker, nav.Target)
	assert.Equal(t, "e2", nav.Scope.EmployeeID)
	assert.True(t, nav.Scope.Day.Equal(v.Week().Start.AddDays(2)))
}

func TestPlannerClearCell(t *testing.T) {
	v, h := testPlanner(t, func(s *state.State, v *Planner) {
		s.Assignments = []models.Assignment{{ID: "a1", EmployeeID: "e1", ProjectID: "p1", Date: v.Week().Start}}
	})

	_, cmd := v.Update(press("x"))
	collect(cmd)
	a := h.rec.waitFor(t, state.KindDeleteAssignment).(state.DeleteAssignment)
	assert.Equal(t, "a1", a.ID)

	v.Update(press("right"))
	_, cmd = v.Update(press("x"))
	assert.Nil(t, cmd, "nothing to clear on an empty cell")
}

func TestPlannerWeekNavigation(t *testing.T) {
	v, h := testPlanner(t, nil)
	start := v.Week()

	_, cmd := v.Update(press("]"))
	collect(cmd)
	assert.True(t, v.Week().Start.Equal(start.Next().Start))
	a := h.rec.waitFor(t, state.KindLoadAssignments).(state.LoadAssignments)
	assert.True(t, a.Request.StartDate.Equal(start.Next().Start))
	assert.True(t, h.session.Polling())

	v.Update(press("["))
	v.Update(press("["))
	assert.True(t, v.Week().Start.Equal(start.Prev().Start))

	v.Update(press("t"))
	assert.True(t, v.Week().Start.Equal(start.Start))
	_, cmd = v.Update(press("t"))
	assert.Nil(t, cmd, "already on this week")
}

func TestPlannerEmployeePaging(t *testing.T) {
	v, h := testPlanner(t, nil)

	_, cmd := v.Update(press("<"))
	assert.Nil(t, cmd)

	_, cmd = v.Update(press(">"))
	collect(cmd)
	a := h.rec.waitFor(t, state.KindLoadEmployees).(state.LoadEmployees)
	assert.Equal(t, models.PagedRequest{Page: 1, PageSize: 10}, a.Request)

	_, cmd = v.Update(press(">"))
	assert.Nil(t, cmd, "already on the last page")
}

func TestIsWeekendColumn(t *testing.T) {
	for i := range 7 {
		assert.Equal(t, i >= 5, isWeekendColumn(i), "column %d", i)
	}
}
