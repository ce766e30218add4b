package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/auth"
	"github.com/plannerhq/planner/internal/output"
)

// NewAuthCmd creates the auth command group.
func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long: fmt.Sprintf(`Manage the bearer token sent to the planner backend.

Tokens are stored per backend origin. The %s environment variable
overrides any stored token.`, auth.TokenEnv),
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthStatusCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var token string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Long:  "Store an access token for the configured backend. Without --token the token is prompted for, or read from stdin with --stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			switch {
			case token != "":
			case fromStdin:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(string(data))
			case app.IsInteractive():
				if err := huh.NewInput().
					Title("Access token").
					EchoMode(huh.EchoModePassword).
					Value(&token).
					Run(); err != nil {
					return err
				}
			default:
				return output.ErrUsageHint("Token required", "Pass --token, --stdin, or set "+auth.TokenEnv)
			}

			claims, err := app.Auth.Login(token)
			if err != nil {
				return err
			}

			data := map[string]any{
				"status": "logged_in",
				"origin": app.Config.BaseURL,
			}
			summary := "Logged in to " + app.Config.BaseURL
			if claims.Email != "" {
				data["email"] = claims.Email
				summary = fmt.Sprintf("Logged in as %s", claims.Email)
			}
			if !claims.ExpiresAt.IsZero() {
				data["expiresAt"] = claims.ExpiresAt
			}

			return app.OK(data,
				output.WithSummary(summary),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "me",
					Cmd:         "planner user me",
					Description: "Show the signed-in user",
				}),
			)
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Access token (JWT)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the token from stdin")
	cmd.MarkFlagsMutuallyExclusive("token", "stdin")

	return cmd
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if err := app.Auth.Logout(); err != nil {
				return err
			}

			summary := "Logged out"
			if os.Getenv(auth.TokenEnv) != "" {
				summary += fmt.Sprintf(" (%s is still set)", auth.TokenEnv)
			}
			return app.OK(map[string]string{"status": "logged_out"}, output.WithSummary(summary))
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			st := app.Auth.Status(cmd.Context())

			var summary string
			switch {
			case st.Expired:
				summary = "Session expired"
			case !st.Authenticated:
				summary = "Not authenticated"
			case st.Email != "":
				summary = fmt.Sprintf("Authenticated as %s (%s)", st.Email, st.Source)
			default:
				summary = fmt.Sprintf("Authenticated (%s)", st.Source)
			}

			var crumbs []output.Breadcrumb
			if !st.Authenticated {
				crumbs = append(crumbs, output.Breadcrumb{
					Action:      "login",
					Cmd:         "planner auth login",
					Description: "Store a token",
				})
			}

			return app.OK(st, output.WithSummary(summary), output.WithBreadcrumbs(crumbs...))
		},
	}
}
