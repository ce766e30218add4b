package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui/workspace"
	"github.com/plannerhq/planner/internal/tui/workspace/views"
)

// userLookupTimeout bounds the background current-user request.
const userLookupTimeout = 10 * time.Second

// NewTUICmd creates the tui command for the full-screen planner.
func NewTUICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen planner",
		Long: `Open the full-screen planner: the weekly grid, the employee and
project lists, and the chat assistant.

Keybindings can be remapped in keybindings.json in the config directory,
e.g. {"assistant": "ctrl+o"}.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if !app.IsInteractive() {
				return output.ErrUsage("The planner needs an interactive terminal")
			}
			return app.Auth.AssertLoggedIn(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			session := workspace.NewSession(app)
			defer session.Shutdown()

			model := workspace.New(session, views.Factory)
			model.SetKeyMap(loadKeyMap(app))

			go loadCurrentUser(cmd.Context(), app, session)

			_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}

	return cmd
}

// loadKeyMap applies the user's keybinding overrides to the defaults. A
// broken override file is logged and ignored.
func loadKeyMap(app *appctx.App) workspace.GlobalKeyMap {
	km := workspace.DefaultGlobalKeyMap()
	path := workspace.KeyBindingsPath()
	overrides, err := workspace.LoadKeyOverrides(path)
	if err != nil {
		app.Logger.Warn("ignoring keybindings", "path", path, "error", err)
		return km
	}
	workspace.ApplyOverrides(&km, overrides)
	return km
}

// loadCurrentUser fetches the signed-in user so the workspace can switch to
// their language once it is known.
func loadCurrentUser(ctx context.Context, app *appctx.App, session *workspace.Session) {
	ctx, cancel := context.WithTimeout(ctx, userLookupTimeout)
	defer cancel()

	user, err := app.Gateway.GetCurrentUser(ctx)
	if err != nil {
		app.Logger.Error("current user", "error", err)
		return
	}
	session.Dispatch(state.SetUser{User: &user})
}
