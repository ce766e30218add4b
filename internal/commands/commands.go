// Package commands implements the CLI commands.
package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/names"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
)

// CommandInfo describes a CLI command.
type CommandInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Actions     []string `json:"actions,omitempty"`
}

// Catalog lists the planner commands for `planner commands`.
func Catalog() []CommandInfo {
	return []CommandInfo{
		{Name: "employees", Description: "Manage employees", Actions: []string{"list", "create", "update", "remove"}},
		{Name: "projects", Description: "Manage projects", Actions: []string{"list", "create", "update", "remove"}},
		{Name: "assignments", Description: "Plan who works on what, day by day", Actions: []string{"list", "set", "clear", "watch", "export"}},
		{Name: "chat", Description: "Ask the planning assistant"},
		{Name: "user", Description: "Show the signed-in user and their language", Actions: []string{"me", "language"}},
		{Name: "auth", Description: "Manage the API token", Actions: []string{"login", "logout", "status"}},
		{Name: "config", Description: "Manage configuration", Actions: []string{"show", "set", "unset"}},
		{Name: "me", Description: "Show the signed-in user"},
		{Name: "tui", Description: "Open the full-screen planner"},
		{Name: "doctor", Description: "Check configuration, credentials and backend connectivity"},
		{Name: "commands", Description: "List available commands"},
		{Name: "completion", Description: "Generate shell completion scripts", Actions: []string{"bash", "zsh", "fish", "powershell"}},
		{Name: "version", Description: "Show version information"},
	}
}

// NewCommandsCmd lists every command with its actions.
func NewCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List available commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return app.OK(Catalog(), output.WithSummary("Available commands"))
		},
	}
}

func appFrom(cmd *cobra.Command) (*appctx.App, error) {
	app := appctx.FromContext(cmd.Context())
	if app == nil {
		return nil, appctx.ErrNoApp
	}
	return app, nil
}

// lookupPageSize is the page size used when walking a whole collection.
const lookupPageSize = 100

// storeSource lists whole collections through the store so that every
// request shows up in the state and in the trace.
type storeSource struct{ app *appctx.App }

func (s storeSource) AllEmployees(ctx context.Context) ([]models.Employee, error) {
	return collectPages(func(page int) (models.EmployeePage, error) {
		c, err := s.app.Dispatch(ctx, state.LoadEmployees{Request: models.PagedRequest{Page: page, PageSize: lookupPageSize}}, state.KindLoadEmployeesDone)
		if err != nil {
			return models.EmployeePage{}, err
		}
		return c.State.Employees, nil
	})
}

func (s storeSource) AllProjects(ctx context.Context) ([]models.Project, error) {
	return collectPages(func(page int) (models.ProjectPage, error) {
		c, err := s.app.Dispatch(ctx, state.LoadProjects{Request: models.PagedRequest{Page: page, PageSize: lookupPageSize}}, state.KindLoadProjectsDone)
		if err != nil {
			return models.ProjectPage{}, err
		}
		return c.State.Projects, nil
	})
}

// maxLookupPages bounds collectPages against a backend that never reports
// the last page.
const maxLookupPages = 100

func collectPages[T any](fetch func(page int) (models.PagedResponse[T], error)) ([]T, error) {
	var all []T
	for page := 0; page < maxLookupPages; page++ {
		resp, err := fetch(page)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Results...)
		if len(resp.Results) == 0 || page+1 >= resp.TotalPages {
			break
		}
	}
	return all, nil
}

func newResolver(app *appctx.App) *names.Resolver {
	return names.NewResolver(storeSource{app: app})
}

// validationError converts a form validation failure into a structured
// error naming the first offending field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fe *tui.FieldError
	if errors.As(err, &fe) {
		e := output.ErrValidation(fe.Field, fe.Err)
		e.Hint = err.Error()
		return e
	}
	return output.ErrValidation("input", err)
}

// confirmRemoval asks before a destructive call unless force is set or the
// session is not interactive.
func confirmRemoval(app *appctx.App, force bool, message string) error {
	if force || !app.IsInteractive() {
		return nil
	}
	ok, err := tui.ConfirmDangerous(message)
	if err != nil {
		return err
	}
	if !ok {
		return output.ErrUsage("Canceled")
	}
	return nil
}
