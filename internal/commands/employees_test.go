package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
)

func TestEmployeesList(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "employees", "list")
	list := dataAs[[]models.Employee](t, env)
	require.Len(t, list, 2)
	assert.Equal(t, "Ada", list[0].Name)
	assert.Equal(t, "2 employees", env.Summary)
	assert.Empty(t, env.Breadcrumbs)
}

func TestEmployeesListPaging(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "employees", "list", "--page-size", "1")
	assert.Equal(t, "2 employees (page 1 of 2)", env.Summary)
	assert.EqualValues(t, 1, env.Meta["page"])
	require.Len(t, env.Breadcrumbs, 1)
	assert.Equal(t, "planner employees list --page 2", env.Breadcrumbs[0].Cmd)

	env = e.runJSON(t, "employees", "list", "--page", "2", "--page-size", "1")
	list := dataAs[[]models.Employee](t, env)
	require.Len(t, list, 1)
	assert.Equal(t, "Grace", list[0].Name)
	assert.EqualValues(t, 2, env.Meta["page"])
}

func TestEmployeesListRejectsBadPage(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "employees", "list", "--page", "0", "--json")
	require.Error(t, err)
	assert.Equal(t, output.CodeUsage, output.AsError(err).Code)
}

func TestEmployeesCreate(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "employees", "create", "--name", "  Alan ", "--surname", "Turing", "--email", "alan@example.com", "--remote")
	assert.Equal(t, "Employee created: Alan Turing", env.Summary)

	require.Len(t, e.backend.employees, 3)
	created := e.backend.employees[2]
	assert.Equal(t, "Alan", created.Name)
	assert.True(t, created.WorksRemotely)
	// The list is reloaded after the create.
	assert.Equal(t, 1, e.backend.sent("GET /api/employees"))
}

func TestEmployeesCreateValidates(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "employees", "create", "--name", "Al", "--surname", "Turing", "--email", "not-an-email", "--json")
	require.Error(t, err)
	apiErr := output.AsError(err)
	assert.Equal(t, output.CodeValidation, apiErr.Code)
	assert.Equal(t, "invalid name", apiErr.Message)
	assert.Contains(t, apiErr.Hint, "email")
	assert.Zero(t, e.backend.sent("POST /api/employees"))
}

func TestEmployeesUpdateByName(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "employees", "update", "grace hopper", "--remote=false")
	updated := dataAs[models.Employee](t, env)
	assert.Equal(t, "e2", updated.ID)
	assert.False(t, updated.WorksRemotely)
	assert.Equal(t, "Grace", updated.Name)
	assert.Equal(t, "Employee updated: Grace Hopper", env.Summary)
}

func TestEmployeesUpdateWithoutChanges(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "employees", "update", "e1", "--name", "Ada")
	assert.Equal(t, "No changes", env.Summary)
	assert.Zero(t, e.backend.sent("PUT /api/employees/e1"))

	_, err := e.run(t, "employees", "update", "e1", "--json")
	require.Error(t, err)
	assert.Equal(t, "Nothing to update", output.AsError(err).Message)
}

func TestEmployeesRemove(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "employees", "remove", "ada@example.com")
	assert.Equal(t, "Employee removed: Ada Lovelace", env.Summary)
	require.Len(t, e.backend.employees, 1)
	assert.Equal(t, "e2", e.backend.employees[0].ID)
}

func TestEmployeesUnknown(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "employees", "remove", "Nobody Here", "--json")
	require.Error(t, err)
	assert.Equal(t, output.CodeNotFound, output.AsError(err).Code)
	assert.Zero(t, e.backend.sent("DELETE /api/employees/e1"))
}

func TestEmployeeArgumentRequiredWhenNotInteractive(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "employees", "remove", "--json")
	require.Error(t, err)
	assert.Equal(t, "Employee required", output.AsError(err).Message)
}
