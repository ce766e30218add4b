package commands

import (
	"context"
	"fmt"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/dateparse"
	"github.com/plannerhq/planner/internal/effects"
	"github.com/plannerhq/planner/internal/export"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/names"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/store"
)

// NewAssignmentsCmd creates the assignments command and its subcommands.
func NewAssignmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "assignments",
		Aliases: []string{"assignment", "plan", "a"},
		Short:   "Plan who works on which project, day by day",
		Long: `List, set, or clear assignments. An assignment places one employee on one
project for one day.

Dates accept YYYY-MM-DD and relative forms: today, tomorrow, monday,
next week, +3, in 2 weeks.`,
	}

	cmd.AddCommand(newAssignmentsListCmd())
	cmd.AddCommand(newAssignmentsSetCmd())
	cmd.AddCommand(newAssignmentsClearCmd())
	cmd.AddCommand(newAssignmentsWatchCmd())
	cmd.AddCommand(newAssignmentsExportCmd())

	return cmd
}

// assignmentRow is an assignment with display names resolved.
type assignmentRow struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	EmployeeID string `json:"employeeId"`
	Employee   string `json:"employee"`
	ProjectID  string `json:"projectId"`
	Project    string `json:"project"`
}

type weekFilter struct {
	week     string
	employee string
	project  string
}

func (f *weekFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.week, "week", "w", "today", "Any day of the week to show")
	cmd.Flags().StringVar(&f.employee, "employee", "", "Only this employee (ID, email or name)")
	cmd.Flags().StringVar(&f.project, "project", "", "Only this project (ID or name)")
}

// request resolves the filter into a week and its range query.
func (f *weekFilter) request(ctx context.Context, r *names.Resolver) (dateparse.Week, models.AssignmentRequest, error) {
	week, err := parseWeek(f.week)
	if err != nil {
		return week, models.AssignmentRequest{}, err
	}
	req := week.Request()
	if f.employee != "" {
		e, err := r.ResolveEmployee(ctx, f.employee)
		if err != nil {
			return week, req, err
		}
		req.EmployeeID = e.ID
	}
	if f.project != "" {
		p, err := r.ResolveProject(ctx, f.project)
		if err != nil {
			return week, req, err
		}
		req.ProjectID = p.ID
	}
	return week, req, nil
}

func newAssignmentsListCmd() *cobra.Command {
	var filter weekFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the assignments of a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			r := newResolver(app)

			week, req, err := filter.request(ctx, r)
			if err != nil {
				return err
			}
			c, err := app.Dispatch(ctx, state.LoadAssignments{Request: req}, state.KindLoadAssignmentsDone)
			if err != nil {
				return err
			}
			rows, err := assignmentRows(ctx, r, state.SelectAssignments(c.State))
			if err != nil {
				return err
			}

			return app.OK(rows,
				output.WithSummary(weekSummary(app, week, len(rows))),
				output.WithMeta("week", week.String()),
				output.WithBreadcrumbs(
					output.Breadcrumb{
						Action:      "next",
						Cmd:         "planner assignments list --week " + week.Next().Start.String(),
						Description: "Next week",
					},
					output.Breadcrumb{
						Action:      "export",
						Cmd:         "planner assignments export --week " + week.Start.String(),
						Description: "Export as xlsx",
					},
				),
			)
		},
	}

	filter.register(cmd)
	return cmd
}

func newAssignmentsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <employee> <project> <date>",
		Short: "Assign an employee to a project for a day",
		Long: `Assign an employee to a project for a day.

In an interactive terminal, missing arguments are picked from a list and
the date defaults to today.`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) < 3 && !app.IsInteractive() {
				return output.ErrUsageHint("Employee, project and date required", "Usage: planner assignments set <employee> <project> <date>")
			}

			employee, err := resolveEmployeeArg(cmd, app, args[:min(len(args), 1)], "Assign whom?")
			if err != nil {
				return err
			}
			var rest []string
			if len(args) > 1 {
				rest = args[1:2]
			}
			project, err := resolveProjectArg(cmd, app, rest, "Assign to which project?")
			if err != nil {
				return err
			}
			dayInput := "today"
			if len(args) > 2 {
				dayInput = args[2]
			}
			day, err := parseDay(dayInput)
			if err != nil {
				return err
			}

			c, err := app.Dispatch(ctx, state.CreateAssignment{Properties: models.AssignmentProperties{
				EmployeeID: employee.ID,
				ProjectID:  project.ID,
				Date:       day,
			}}, state.KindAddOrUpdateAssignment)
			if err != nil {
				return err
			}
			a := c.Action.(state.AddOrUpdateAssignment).Assignment

			return app.OK(assignmentRow{
				ID:         a.ID,
				Date:       a.Date.String(),
				EmployeeID: employee.ID,
				Employee:   employee.FullName(),
				ProjectID:  project.ID,
				Project:    project.Name,
			},
				output.WithSummary(fmt.Sprintf("%s works on %s on %s", employee.FullName(), project.Name, app.Locale.FormatDate(day.Time))),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "clear",
					Cmd:         fmt.Sprintf("planner assignments clear %s %s", employee.ID, day),
					Description: "Undo",
				}),
			)
		},
	}

	return cmd
}

func newAssignmentsClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clear <employee> <date>",
		Aliases: []string{"unset"},
		Short:   "Clear an employee's assignment for a day",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			employee, err := newResolver(app).ResolveEmployee(ctx, args[0])
			if err != nil {
				return err
			}
			day, err := parseDay(args[1])
			if err != nil {
				return err
			}

			c, err := app.Dispatch(ctx, state.LoadAssignments{Request: models.AssignmentRequest{
				StartDate:  day,
				EndDate:    day,
				EmployeeID: employee.ID,
			}}, state.KindLoadAssignmentsDone)
			if err != nil {
				return err
			}
			existing, ok := state.AssignmentFor(c.State, employee.ID, day)
			if !ok {
				return app.OK(map[string]any{"employeeId": employee.ID, "date": day.String(), "removed": false},
					output.WithSummary(fmt.Sprintf("%s has no assignment on %s", employee.FullName(), app.Locale.FormatDate(day.Time))))
			}

			if _, err := app.Dispatch(ctx, state.DeleteAssignment{ID: existing.ID}, state.KindRemoveAssignmentFromState); err != nil {
				return err
			}

			return app.OK(map[string]any{"id": existing.ID, "employeeId": employee.ID, "date": day.String(), "removed": true},
				output.WithSummary(fmt.Sprintf("Cleared %s on %s", employee.FullName(), app.Locale.FormatDate(day.Time))))
		},
	}

	return cmd
}

func newAssignmentsWatchCmd() *cobra.Command {
	var filter weekFilter
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload a week's assignments periodically",
		Long: `Reload a week's assignments every poll interval and print them on every
refresh until interrupted. Failed reloads are reported on stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			r := newResolver(app)
			week, req, err := filter.request(ctx, r)
			if err != nil {
				return err
			}
			// Names are resolved once; new employees show up by ID.
			if _, err := r.Employees(ctx); err != nil {
				return err
			}
			if _, err := r.Projects(ctx); err != nil {
				return err
			}
			if interval <= 0 {
				interval = app.Config.PollInterval
			}

			return watchAssignments(ctx, app, req, interval, func(list []models.Assignment) error {
				rows, err := assignmentRows(ctx, r, list)
				if err != nil {
					return err
				}
				return app.OK(rows, output.WithSummary(fmt.Sprintf("%s, refreshed %s", weekSummary(app, week, len(rows)), time.Now().Format(time.TimeOnly))))
			})
		},
	}

	filter.register(cmd)
	cmd.Flags().DurationVar(&interval, "interval", 0, "Reload interval (default from config poll_interval)")
	return cmd
}

// watchAssignments loads req now and on every tick, calling report with
// each reloaded list until ctx ends. Failed reloads go to stderr.
func watchAssignments(ctx context.Context, app *appctx.App, req models.AssignmentRequest, interval time.Duration, report func([]models.Assignment) error) error {
	updates := make(chan []models.Assignment, 1)
	unsubscribe := app.Store.Subscribe(func(c store.Change) {
		if _, ok := c.Action.(state.LoadAssignmentsDone); !ok {
			return
		}
		// Keep only the newest list; this is the only sender.
		select {
		case <-updates:
		default:
		}
		updates <- state.SelectAssignments(c.State)
	})
	defer unsubscribe()

	app.SetNotifier(func(message string) {
		fmt.Fprintln(app.Stderr, message)
	})
	defer app.SetNotifier(nil)

	load := func() { app.Store.Dispatch(state.LoadAssignments{Request: req}) }
	refresher := effects.NewRefresher(interval)
	load()
	refresher.Start(ctx, load)
	defer refresher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case list := <-updates:
			if err := report(list); err != nil {
				return err
			}
		}
	}
}

func newAssignmentsExportCmd() *cobra.Command {
	var week, path string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a week plan as an xlsx workbook",
		Long: `Export a week plan as an xlsx workbook with one row per employee and one
column per day. Cells carry the project name filled with the project color.

Use --output - to write the workbook to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			w, err := parseWeek(week)
			if err != nil {
				return err
			}
			r := newResolver(app)
			employees, err := r.Employees(ctx)
			if err != nil {
				return err
			}
			projects, err := r.Projects(ctx)
			if err != nil {
				return err
			}
			c, err := app.Dispatch(ctx, state.LoadAssignments{Request: w.Request()}, state.KindLoadAssignmentsDone)
			if err != nil {
				return err
			}

			plan := export.Plan{
				Week:        w,
				Employees:   sortedEmployees(employees),
				Projects:    projects,
				Assignments: state.SelectAssignments(c.State),
				Locale:      app.Locale,
			}
			if path == "-" {
				return export.Write(app.Output.Writer(), plan)
			}
			if path == "" {
				path = fmt.Sprintf("planner-%s.xlsx", w)
			}
			if err := export.Save(path, plan); err != nil {
				return err
			}

			return app.OK(map[string]any{
				"path":        path,
				"week":        w.String(),
				"employees":   len(plan.Employees),
				"assignments": len(plan.Assignments),
			}, output.WithSummary(fmt.Sprintf("Exported %s to %s", w, path)))
		},
	}

	cmd.Flags().StringVarP(&week, "week", "w", "today", "Any day of the week to export")
	cmd.Flags().StringVarP(&path, "output", "o", "", "Output file (default planner-<week>.xlsx)")
	return cmd
}

func parseDay(input string) (models.Date, error) {
	day, err := dateparse.Parse(input)
	if err != nil {
		return models.Date{}, output.ErrUsageHint(err.Error(), "Use YYYY-MM-DD, today, tomorrow, a weekday, +N or 'in N days'")
	}
	return day, nil
}

func parseWeek(input string) (dateparse.Week, error) {
	day, err := parseDay(input)
	if err != nil {
		return dateparse.Week{}, err
	}
	return dateparse.WeekOf(day), nil
}

func weekSummary(app *appctx.App, week dateparse.Week, n int) string {
	return fmt.Sprintf("%s (%s to %s): %d assignments",
		week, app.Locale.FormatDate(week.Start.Time), app.Locale.FormatDate(week.End().Time), n)
}

// assignmentRows resolves names and sorts by day, then employee.
func assignmentRows(ctx context.Context, r *names.Resolver, list []models.Assignment) ([]assignmentRow, error) {
	employees, err := r.Employees(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := r.Projects(ctx)
	if err != nil {
		return nil, err
	}
	employeeNames := make(map[string]string, len(employees))
	for _, e := range employees {
		employeeNames[e.ID] = e.FullName()
	}
	projectNames := make(map[string]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}

	rows := make([]assignmentRow, 0, len(list))
	for _, a := range list {
		rows = append(rows, assignmentRow{
			ID:         a.ID,
			Date:       a.Date.String(),
			EmployeeID: a.EmployeeID,
			Employee:   orDefault(employeeNames[a.EmployeeID], a.EmployeeID),
			ProjectID:  a.ProjectID,
			Project:    orDefault(projectNames[a.ProjectID], a.ProjectID),
		})
	}
	slices.SortStableFunc(rows, func(a, b assignmentRow) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Employee, b.Employee)
	})
	return rows, nil
}

func sortedEmployees(list []models.Employee) []models.Employee {
	out := slices.Clone(list)
	slices.SortStableFunc(out, func(a, b models.Employee) int {
		return strings.Compare(a.FullName(), b.FullName())
	})
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
