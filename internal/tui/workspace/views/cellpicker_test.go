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

var pickerDay = models.NewDate(2024, 3, 5)

func assignedState() *state.State {
	s := fixtureState()
	s.Assignments = []models.Assignment{{ID: "a1", EmployeeID: "e1", ProjectID: "p1", Date: pickerDay}}
	return s
}

func TestCellPickerPreselectsCurrentProject(t *testing.T) {
	h := newHarness(t, assignedState())
	v := NewCellPicker(h.session, workspace.Scope{EmployeeID: "e1", Day: pickerDay})
	v.SetSize(60, 10)

	require.NotNil(t, v.list.Selected())
	assert.Equal(t, "p1", v.list.Selected().ID)

	view := ansi.Strip(v.View())
	assert.Contains(t, view, "Ada Lovelace")
	assert.Contains(t, view, "current")
	assert.Contains(t, view, "Clear")
}

func TestCellPickerCreatesAssignment(t *testing.T) {
	h := newHarness(t, assignedState())
	v := NewCellPicker(h.session, workspace.Scope{EmployeeID: "e1", Day: pickerDay})

	v.Update(press("down"))
	_, cmd := v.Update(press("enter"))
	msgs := collect(cmd)

	_, back := findMsg[workspace.NavigateBackMsg](msgs)
	assert.True(t, back)
	a := h.rec.waitFor(t, state.KindCreateAssignment).(state.CreateAssignment)
	assert.Equal(t, "e1", a.Properties.EmployeeID)
	assert.Equal(t, "p2", a.Properties.ProjectID)
	assert.True(t, a.Properties.Date.Equal(pickerDay))
}

func TestCellPickerClearDeletesAssignment(t *testing.T) {
	h := newHarness(t, assignedState())
	v := NewCellPicker(h.session, workspace.Scope{EmployeeID: "e1", Day: pickerDay})

	v.Update(press("G"))
	require.Equal(t, clearItemID, v.list.Selected().ID)
	_, cmd := v.Update(press("enter"))
	collect(cmd)

	a := h.rec.waitFor(t, state.KindDeleteAssignment).(state.DeleteAssignment)
	assert.Equal(t, "a1", a.ID)
}

func TestCellPickerSameProjectOnlyCloses(t *testing.T) {
	h := newHarness(t, assignedState())
	v := NewCellPicker(h.session, workspace.Scope{EmployeeID: "e1", Day: pickerDay})

	_, cmd := v.Update(press("enter"))
	msgs := collect(cmd)
	_, back := findMsg[workspace.NavigateBackMsg](msgs)
	assert.True(t, back)

	h.flush(t)
	assert.False(t, h.has(state.KindCreateAssignment))
	assert.False(t, h.has(state.KindDeleteAssignment))
}

func TestCellPickerEmptyCellHasNoClear(t *testing.T) {
	h := newHarness(t, fixtureState())
	v := NewCellPicker(h.session, workspace.Scope{EmployeeID: "e2", Day: pickerDay})

	assert.Equal(t, 2, v.list.Len())
	assert.Equal(t, "p1", v.list.Selected().ID)
}

func TestCellPickerFilterKeepsEnterForTheList(t *testing.T) {
	h := newHarness(t, fixtureState())
	v := NewCellPicker(h.session, workspace.Scope{EmployeeID: "e2", Day: pickerDay})

	v.Update(press("/"))
	require.True(t, v.InputActive())
	typeText(v, "gem")
	_, cmd := v.Update(press("enter"))
	assert.Nil(t, cmd)
	assert.False(t, v.InputActive())
	assert.Equal(t, "p2", v.list.Selected().ID)
}
