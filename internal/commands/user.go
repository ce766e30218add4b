package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/state"
)

// userView is the signed-in user with the front end location that results
// from their language.
type userView struct {
	models.User
	Location   string `json:"location"`
	Redirected bool   `json:"redirected"`
}

// NewUserCmd creates the user command group.
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Show the signed-in user and their language",
	}

	cmd.AddCommand(newUserMeCmd())
	cmd.AddCommand(newUserLanguageCmd())

	return cmd
}

// NewMeCmd is a shortcut for `user me`.
func NewMeCmd() *cobra.Command {
	cmd := newUserMeCmd()
	cmd.Short = "Show the signed-in user (shortcut for 'user me')"
	return cmd
}

func newUserMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in user",
		Long: `Show the signed-in user.

When the user's language differs from the active locale, the front end
location switches to the user's language, e.g. /de/planner becomes
/fr/planner.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			user, err := app.Gateway.GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			view, err := setUser(cmd, app, user)
			if err != nil {
				return err
			}

			name := user.Name
			if name == "" {
				name = user.Email
			}
			return app.OK(view, output.WithSummary(fmt.Sprintf("Signed in as %s (%s)", name, orDefault(string(user.Language), string(models.LanguageDE)))))
		},
	}
}

func newUserLanguageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "language <de|en|fr|it>",
		Short: "Change the signed-in user's language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			lang, ok := models.ParseLanguage(args[0])
			if !ok {
				supported := make([]string, len(models.Languages))
				for i, l := range models.Languages {
					supported[i] = l.Locale()
				}
				return output.ErrUsageHint(fmt.Sprintf("Unsupported language %q", args[0]), "Use one of: "+strings.Join(supported, ", "))
			}

			if err := app.Gateway.PutLanguage(cmd.Context(), lang); err != nil {
				return err
			}
			user, err := app.Gateway.GetCurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			// The PUT is authoritative for the language.
			user.Language = lang
			view, err := setUser(cmd, app, user)
			if err != nil {
				return err
			}

			return app.OK(view, output.WithSummary(fmt.Sprintf("Language set to %s", lang)))
		},
	}
}

// setUser stores user and waits for locale reconciliation to finish.
func setUser(cmd *cobra.Command, app *appctx.App, user models.User) (userView, error) {
	before := app.Location.Href()
	if _, err := app.Dispatch(cmd.Context(), state.SetUser{User: &user}, state.KindSetUserRedirectDone); err != nil {
		return userView{}, err
	}
	after := app.Location.Href()
	return userView{User: user, Location: after, Redirected: after != before}, nil
}
