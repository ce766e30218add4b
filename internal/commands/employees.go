package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
)

// NewEmployeesCmd creates the employees command and its subcommands.
func NewEmployeesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employees",
		Aliases: []string{"employee", "emp", "e"},
		Short:   "Manage employees",
		Long:    "List, create, update, or remove the employees you plan for.",
	}

	cmd.AddCommand(newEmployeesListCmd())
	cmd.AddCommand(newEmployeesCreateCmd())
	cmd.AddCommand(newEmployeesUpdateCmd())
	cmd.AddCommand(newEmployeesRemoveCmd())

	return cmd
}

func newEmployeesListCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List employees page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			req, err := pageRequest(app, page, pageSize, state.SelectEmployeeRequest)
			if err != nil {
				return err
			}

			c, err := app.Dispatch(cmd.Context(), state.LoadEmployees{Request: req}, state.KindLoadEmployeesDone)
			if err != nil {
				return err
			}
			result := state.SelectPagedEmployees(c.State)

			return app.OK(result.Results,
				output.WithSummary(pageSummary("employees", result.CurrentPage, result.TotalPages, result.TotalItems)),
				output.WithMeta("page", result.CurrentPage),
				output.WithMeta("totalPages", result.TotalPages),
				output.WithMeta("totalItems", result.TotalItems),
				output.WithBreadcrumbs(nextPageCrumb("employees", result.CurrentPage, result.TotalPages)...),
			)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Employees per page (default from config page_size)")

	return cmd
}

type employeeFlags struct {
	name, surname, email string
	remote               bool
}

func (f *employeeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "First name (at least 3 characters)")
	cmd.Flags().StringVar(&f.surname, "surname", "", "Surname (at least 3 characters)")
	cmd.Flags().StringVar(&f.email, "email", "", "Email address")
	cmd.Flags().BoolVar(&f.remote, "remote", false, "Works remotely")
}

// apply copies the flags the user actually passed onto p.
func (f *employeeFlags) apply(cmd *cobra.Command, p models.EmployeeProperties) models.EmployeeProperties {
	if cmd.Flags().Changed("name") {
		p.Name = f.name
	}
	if cmd.Flags().Changed("surname") {
		p.Surname = f.surname
	}
	if cmd.Flags().Changed("email") {
		p.Email = f.email
	}
	if cmd.Flags().Changed("remote") {
		p.WorksRemotely = f.remote
	}
	return p
}

func anyChanged(cmd *cobra.Command, flags ...string) bool {
	for _, f := range flags {
		if cmd.Flags().Changed(f) {
			return true
		}
	}
	return false
}

var employeeFlagNames = []string{"name", "surname", "email", "remote"}

func newEmployeesCreateCmd() *cobra.Command {
	var flags employeeFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an employee",
		Long: `Create an employee.

Without flags in an interactive terminal, a form asks for the details.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			props := flags.apply(cmd, models.EmployeeProperties{})
			if !anyChanged(cmd, employeeFlagNames...) && app.IsInteractive() {
				if props, err = tui.PromptEmployee("New employee", props); err != nil {
					return err
				}
			}
			props = tui.TrimEmployee(props)
			if err := tui.ValidateEmployee(props); err != nil {
				return validationError(err)
			}

			c, err := app.Dispatch(cmd.Context(), state.CreateEmployee{Properties: props}, state.KindLoadEmployeesDone)
			if err != nil {
				return err
			}

			// The backend's response is not kept; report the reloaded row
			// when it is on the current page.
			var data any = props
			for _, e := range state.SelectEmployees(c.State) {
				if e.Email == props.Email {
					data = e
					break
				}
			}
			return app.OK(data,
				output.WithSummary(fmt.Sprintf("Employee created: %s %s", props.Name, props.Surname)),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "list",
					Cmd:         "planner employees list",
					Description: "List employees",
				}),
			)
		},
	}

	flags.register(cmd)
	return cmd
}

func newEmployeesUpdateCmd() *cobra.Command {
	var flags employeeFlags

	cmd := &cobra.Command{
		Use:   "update [employee]",
		Short: "Update an employee",
		Long: `Update an employee by ID, email or name.

Only the fields passed as flags change. Without flags in an interactive
terminal, a form prefilled with the current values opens. Nothing is sent
when no field changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			current, err := resolveEmployeeArg(cmd, app, args, "Update which employee?")
			if err != nil {
				return err
			}

			props := flags.apply(cmd, current.Properties())
			if !anyChanged(cmd, employeeFlagNames...) {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Nothing to update", "Use --name, --surname, --email or --remote")
				}
				if props, err = tui.PromptEmployee("Edit employee", props); err != nil {
					return err
				}
			}
			props = tui.TrimEmployee(props)
			if props == current.Properties() {
				return app.OK(current, output.WithSummary("No changes"))
			}
			if err := tui.ValidateEmployee(props); err != nil {
				return validationError(err)
			}

			c, err := app.Dispatch(cmd.Context(), state.UpdateEmployee{ID: current.ID, Properties: props}, state.KindAddOrUpdateEmployee)
			if err != nil {
				return err
			}
			updated := c.Action.(state.AddOrUpdateEmployee).Employee

			return app.OK(updated, output.WithSummary(fmt.Sprintf("Employee updated: %s", updated.FullName())))
		},
	}

	flags.register(cmd)
	return cmd
}

func newEmployeesRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove [employee]",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove an employee",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			employee, err := resolveEmployeeArg(cmd, app, args, "Remove which employee?")
			if err != nil {
				return err
			}
			if err := confirmRemoval(app, force, fmt.Sprintf("Remove %s?", employee.FullName())); err != nil {
				return err
			}

			if _, err := app.Dispatch(cmd.Context(), state.RemoveEmployee{ID: employee.ID}, state.KindLoadEmployeesDone); err != nil {
				return err
			}

			return app.OK(map[string]any{"id": employee.ID, "removed": true},
				output.WithSummary(fmt.Sprintf("Employee removed: %s", employee.FullName())))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

// resolveEmployeeArg resolves the optional employee argument, or offers a
// picker when it is missing in an interactive terminal.
func resolveEmployeeArg(cmd *cobra.Command, app *appctx.App, args []string, title string) (models.Employee, error) {
	r := newResolver(app)
	if len(args) > 0 {
		return r.ResolveEmployee(cmd.Context(), args[0])
	}
	if !app.IsInteractive() {
		return models.Employee{}, output.ErrUsage("Employee required")
	}

	item, err := tui.PickLoading(title, func() ([]tui.PickerItem, error) {
		employees, err := r.Employees(cmd.Context())
		return tui.EmployeeItems(employees), err
	})
	if err != nil {
		return models.Employee{}, err
	}
	if item == nil {
		return models.Employee{}, output.ErrUsage("Canceled")
	}
	return r.ResolveEmployee(cmd.Context(), item.ID)
}

// pageRequest turns a 1-based --page flag into the zero-based request.
func pageRequest(app *appctx.App, page, pageSize int, current state.Selector[models.PagedRequest]) (models.PagedRequest, error) {
	if page < 1 {
		return models.PagedRequest{}, output.ErrUsage("--page must be 1 or greater")
	}
	if pageSize < 0 {
		return models.PagedRequest{}, output.ErrUsage("--page-size must be positive")
	}
	if pageSize == 0 {
		pageSize = current(app.Store.State()).PageSize
	}
	return models.PagedRequest{Page: page - 1, PageSize: pageSize}, nil
}

func pageSummary(noun string, page, totalPages, totalItems int) string {
	if totalPages <= 1 {
		return fmt.Sprintf("%d %s", totalItems, noun)
	}
	return fmt.Sprintf("%d %s (page %d of %d)", totalItems, noun, page, totalPages)
}

func nextPageCrumb(resource string, page, totalPages int) []output.Breadcrumb {
	if page >= totalPages {
		return nil
	}
	return []output.Breadcrumb{{
		Action:      "next",
		Cmd:         fmt.Sprintf("planner %s list --page %d", resource, page+1),
		Description: "Next page",
	}}
}
