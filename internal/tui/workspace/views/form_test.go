package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

func TestEmployeeFormTitles(t *testing.T) {
	h := newHarness(t, fixtureState())

	assert.Equal(t, "Edit Ada Lovelace", NewEmployeeForm(h.session, "e1").Title())
	assert.Equal(t, "New employee", NewEmployeeForm(h.session, "").Title())
	assert.Equal(t, "New employee", NewEmployeeForm(h.session, "missing").Title())
	assert.Equal(t, "Edit Gemini", NewProjectForm(h.session, "p2").Title())
	assert.Equal(t, "New project", NewProjectForm(h.session, "").Title())
}

func TestEmployeeFormPrefillsValues(t *testing.T) {
	h := newHarness(t, fixtureState())
	v := NewEmployeeForm(h.session, "e2")

	assert.Equal(t, models.EmployeeProperties{
		Name: "Grace", Surname: "Hopper", Email: "grace@example.com", WorksRemotely: true,
	}, *v.employee)
	assert.True(t, v.InputActive())
}

func TestEmployeeFormSubmit(t *testing.T) {
	h := newHarness(t, fixtureState())

	t.Run("unchanged edit", func(t *testing.T) {
		v := NewEmployeeForm(h.session, "e1")
		action, ok := v.submit()
		assert.True(t, ok)
		assert.Nil(t, action)
	})

	t.Run("changed edit", func(t *testing.T) {
		v := NewEmployeeForm(h.session, "e1")
		v.employee.Name = "  Augusta "
		action, ok := v.submit()
		require.True(t, ok)
		assert.Equal(t, state.UpdateEmployee{ID: "e1", Properties: models.EmployeeProperties{
			Name: "Augusta", Surname: "Lovelace", Email: "ada@example.com",
		}}, action)
	})

	t.Run("create", func(t *testing.T) {
		v := NewEmployeeForm(h.session, "")
		*v.employee = models.EmployeeProperties{Name: "Alan", Surname: "Turing", Email: "alan@example.com"}
		action, ok := v.submit()
		require.True(t, ok)
		assert.Equal(t, state.CreateEmployee{Properties: *v.employee}, action)
	})

	t.Run("invalid", func(t *testing.T) {
		v := NewEmployeeForm(h.session, "")
		*v.employee = models.EmployeeProperties{Name: "Al", Surname: "Turing", Email: "not-an-email"}
		action, ok := v.submit()
		assert.False(t, ok)
		assert.Nil(t, action)
		assert.Contains(t, v.err, "name")
		assert.Contains(t, v.err, "email")
	})
}

func TestProjectFormSubmitNormalizesColor(t *testing.T) {
	h := newHarness(t, fixtureState())
	v := NewProjectForm(h.session, "p1")
	v.project.Color = " #FF8800 "

	action, ok := v.submit()
	require.True(t, ok)
	assert.Equal(t, state.UpdateProject{ID: "p1", Properties: models.ProjectProperties{
		Name: "Apollo", Color: "#ff8800",
	}}, action)
}

func TestFormCompleteDispatchesAndGoesBack(t *testing.T) {
	h := newHarness(t, fixtureState())
	v := NewProjectForm(h.session, "")
	*v.project = models.ProjectProperties{Name: "Mercury", Color: "#00aa00", MustBeOnPremises: true}

	msgs := collect(v.complete())
	_, back := findMsg[workspace.NavigateBackMsg](msgs)
	assert.True(t, back)

	a := h.rec.waitFor(t, state.KindCreateProject).(state.CreateProject)
	assert.Equal(t, "Mercury", a.Properties.Name)

	// A finished form ignores further input.
	_, cmd := v.Update(press("x"))
	assert.Nil(t, cmd)
}

func TestFormCompleteWithoutChanges(t *testing.T) {
	h := newHarness(t, fixtureState())
	v := NewEmployeeForm(h.session, "e1")

	msgs := collect(v.complete())
	status, ok := findMsg[workspace.StatusMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "No changes", status.Text)

	h.flush(t)
	assert.False(t, h.has(state.KindUpdateEmployee))
}
