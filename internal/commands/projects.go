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

// NewProjectsCmd creates the projects command and its subcommands.
func NewProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "proj", "p"},
		Short:   "Manage projects",
		Long:    "List, create, update, or remove the projects employees are assigned to.",
	}

	cmd.AddCommand(newProjectsListCmd())
	cmd.AddCommand(newProjectsCreateCmd())
	cmd.AddCommand(newProjectsUpdateCmd())
	cmd.AddCommand(newProjectsRemoveCmd())

	return cmd
}

func newProjectsListCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			req, err := pageRequest(app, page, pageSize, state.SelectProjectRequest)
			if err != nil {
				return err
			}

			c, err := app.Dispatch(cmd.Context(), state.LoadProjects{Request: req}, state.KindLoadProjectsDone)
			if err != nil {
				return err
			}
			result := state.SelectPagedProjects(c.State)

			return app.OK(result.Results,
				output.WithSummary(pageSummary("projects", result.CurrentPage, result.TotalPages, result.TotalItems)),
				output.WithMeta("page", result.CurrentPage),
				output.WithMeta("totalPages", result.TotalPages),
				output.WithMeta("totalItems", result.TotalItems),
				output.WithBreadcrumbs(nextPageCrumb("projects", result.CurrentPage, result.TotalPages)...),
			)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Projects per page (default from config page_size)")

	return cmd
}

type projectFlags struct {
	name, color string
	onPremises  bool
}

var projectFlagNames = []string{"name", "color", "on-premises"}

func (f *projectFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Project name (at least 3 characters)")
	cmd.Flags().StringVar(&f.color, "color", "", "Color as #rrggbb")
	cmd.Flags().BoolVar(&f.onPremises, "on-premises", false, "Must be worked on premises")
}

func (f *projectFlags) apply(cmd *cobra.Command, p models.ProjectProperties) models.ProjectProperties {
	if cmd.Flags().Changed("name") {
		p.Name = f.name
	}
	if cmd.Flags().Changed("color") {
		p.Color = f.color
	}
	if cmd.Flags().Changed("on-premises") {
		p.MustBeOnPremises = f.onPremises
	}
	return p
}

func newProjectsCreateCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Long: `Create a project.

Without flags in an interactive terminal, a form asks for the details.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			props := flags.apply(cmd, models.ProjectProperties{})
			if !anyChanged(cmd, projectFlagNames...) && app.IsInteractive() {
				if props, err = tui.PromptProject("New project", props); err != nil {
					return err
				}
			}
			props = tui.TrimProject(props)
			if err := tui.ValidateProject(props); err != nil {
				return validationError(err)
			}

			c, err := app.Dispatch(cmd.Context(), state.CreateProject{Properties: props}, state.KindLoadProjectsDone)
			if err != nil {
				return err
			}

			var data any = props
			for _, p := range state.SelectProjects(c.State) {
				if p.Name == props.Name {
					data = p
					break
				}
			}
			return app.OK(data,
				output.WithSummary(fmt.Sprintf("Project created: %s", props.Name)),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "assign",
					Cmd:         fmt.Sprintf("planner assignments set <employee> %q <date>", props.Name),
					Description: "Assign someone",
				}),
			)
		},
	}

	flags.register(cmd)
	return cmd
}

func newProjectsUpdateCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "update [project]",
		Short: "Update a project",
		Long: `Update a project by ID or name.

Only the fields passed as flags change. Without flags in an interactive
terminal, a form prefilled with the current values opens. Nothing is sent
when no field changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			current, err := resolveProjectArg(cmd, app, args, "Update which project?")
			if err != nil {
				return err
			}

			props := flags.apply(cmd, current.Properties())
			if !anyChanged(cmd, projectFlagNames...) {
				if !app.IsInteractive() {
					return output.ErrUsageHint("Nothing to update", "Use --name, --color or --on-premises")
				}
				if props, err = tui.PromptProject("Edit project", props); err != nil {
					return err
				}
			}
			props = tui.TrimProject(props)
			if props == current.Properties() {
				return app.OK(current, output.WithSummary("No changes"))
			}
			if err := tui.ValidateProject(props); err != nil {
				return validationError(err)
			}

			c, err := app.Dispatch(cmd.Context(), state.UpdateProject{ID: current.ID, Properties: props}, state.KindAddOrUpdateProject)
			if err != nil {
				return err
			}
			updated := c.Action.(state.AddOrUpdateProject).Project

			return app.OK(updated, output.WithSummary(fmt.Sprintf("Project updated: %s", updated.Name)))
		},
	}

	flags.register(cmd)
	return cmd
}

func newProjectsRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove [project]",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove a project",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			project, err := resolveProjectArg(cmd, app, args, "Remove which project?")
			if err != nil {
				return err
			}
			if err := confirmRemoval(app, force, fmt.Sprintf("Remove project %s?", project.Name)); err != nil {
				return err
			}

			if _, err := app.Dispatch(cmd.Context(), state.RemoveProject{ID: project.ID}, state.KindLoadProjectsDone); err != nil {
				return err
			}

			return app.OK(map[string]any{"id": project.ID, "removed": true},
				output.WithSummary(fmt.Sprintf("Project removed: %s", project.Name)))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation")
	return cmd
}

func resolveProjectArg(cmd *cobra.Command, app *appctx.App, args []string, title string) (models.Project, error) {
	r := newResolver(app)
	if len(args) > 0 {
		return r.ResolveProject(cmd.Context(), args[0])
	}
	if !app.IsInteractive() {
		return models.Project{}, output.ErrUsage("Project required")
	}

	item, err := tui.PickLoading(title, func() ([]tui.PickerItem, error) {
		projects, err := r.Projects(cmd.Context())
		return tui.ProjectItems(projects), err
	})
	if err != nil {
		return models.Project{}, err
	}
	if item == nil {
		return models.Project{}, output.ErrUsage("Canceled")
	}
	return r.ResolveProject(cmd.Context(), item.ID)
}
