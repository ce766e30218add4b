package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/version"
)

// Check is a single diagnostic result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "fail", "skip", "warn"
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// DoctorResult holds every check with per-status counts.
type DoctorResult struct {
	Checks  []Check `json:"checks"`
	Passed  int     `json:"passed"`
	Failed  int     `json:"failed"`
	Warned  int     `json:"warned"`
	Skipped int     `json:"skipped"`
}

// Summary returns a human-readable summary of the results.
func (r *DoctorResult) Summary() string {
	if r.Failed == 0 && r.Warned == 0 && r.Passed > 0 {
		if r.Skipped > 0 {
			return fmt.Sprintf("All %d checks passed, %d skipped", r.Passed, r.Skipped)
		}
		return fmt.Sprintf("All %d checks passed", r.Passed)
	}
	var parts []string
	if r.Passed > 0 {
		parts = append(parts, fmt.Sprintf("%d passed", r.Passed))
	}
	if r.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", r.Failed))
	}
	if r.Warned > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", r.Warned, pluralize(r.Warned, "warning", "warnings")))
	}
	if r.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", r.Skipped))
	}
	return strings.Join(parts, ", ")
}

// doctorTimeout bounds the backend round trip.
const doctorTimeout = 10 * time.Second

// NewDoctorCmd creates the doctor command.
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials and backend connectivity",
		Long: `Run diagnostic checks:
  - CLI version
  - Configuration (values and where they come from)
  - Stored credentials and token expiry
  - Backend connectivity
  - Locale against the signed-in user's language`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			result := summarizeChecks(runDoctorChecks(cmd.Context(), app))

			if app.Output.Format() == output.FormatStyled {
				renderDoctorStyled(cmd.OutOrStdout(), result)
				return nil
			}

			opts := []output.ResponseOption{output.WithSummary(result.Summary())}
			if crumbs := doctorBreadcrumbs(result.Checks); len(crumbs) > 0 {
				opts = append(opts, output.WithBreadcrumbs(crumbs...))
			}
			return app.OK(result, opts...)
		},
	}
}

func runDoctorChecks(ctx context.Context, app *appctx.App) []Check {
	checks := []Check{checkVersion(), checkConfig(app.Config)}

	creds := checkCredentials(ctx, app)
	checks = append(checks, creds)

	if creds.Status != "pass" {
		return append(checks,
			Check{Name: "Backend", Status: "skip", Message: "Skipped until logged in"},
			Check{Name: "Locale", Status: "pass", Message: localeMessage(app)},
		)
	}

	backend, user := checkBackend(ctx, app)
	return append(checks, backend, checkLocale(app, user))
}

func checkVersion() Check {
	msg := version.Full()
	if version.IsDev() {
		return Check{Name: "Version", Status: "warn", Message: msg, Hint: "Development build"}
	}
	return Check{Name: "Version", Status: "pass", Message: msg}
}

func checkConfig(cfg *config.Config) Check {
	if err := cfg.Validate(); err != nil {
		return Check{Name: "Config", Status: "fail", Message: err.Error(), Hint: "Run: planner config show"}
	}

	var files []string
	for _, dir := range []string{config.GlobalConfigDir(), config.LocalConfigDir} {
		if path := config.FindFile(dir); fileExists(path) {
			files = append(files, path)
		}
	}
	msg := fmt.Sprintf("base_url %s (%s)", cfg.BaseURL, cfg.Source("base_url"))
	if len(files) == 0 {
		return Check{Name: "Config", Status: "pass", Message: msg + ", no config files"}
	}
	return Check{Name: "Config", Status: "pass", Message: msg + ", " + strings.Join(files, ", ")}
}

func checkCredentials(ctx context.Context, app *appctx.App) Check {
	st := app.Auth.Status(ctx)
	switch {
	case st.Expired:
		return Check{Name: "Credentials", Status: "fail", Message: "Token expired", Hint: "Run: planner auth login"}
	case !st.Authenticated:
		return Check{Name: "Credentials", Status: "fail", Message: "Not logged in", Hint: "Run: planner auth login"}
	}

	msg := "Token from " + st.Source
	if st.ExpiresAt != nil {
		msg += ", expires " + st.ExpiresAt.Local().Format(time.RFC3339)
	}
	return Check{Name: "Credentials", Status: "pass", Message: msg}
}

func checkBackend(ctx context.Context, app *appctx.App) (Check, *models.User) {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	user, err := app.Gateway.GetCurrentUser(ctx)
	if err != nil {
		e := output.AsError(err)
		return Check{Name: "Backend", Status: "fail", Message: e.Message, Hint: orDefault(e.Hint, "Check base_url with: planner config show")}, nil
	}
	return Check{Name: "Backend", Status: "pass", Message: fmt.Sprintf("Reached %s as %s", app.Config.BaseURL, orDefault(user.Name, user.ID))}, &user
}

// checkLocale warns when the signed-in user's language would switch the
// front end away from the configured locale.
func checkLocale(app *appctx.App, user *models.User) Check {
	msg := localeMessage(app)
	if user == nil || user.Language == "" || app.Locale.Contains(string(user.Language)) {
		return Check{Name: "Locale", Status: "pass", Message: msg}
	}
	return Check{
		Name:    "Locale",
		Status:  "warn",
		Message: fmt.Sprintf("%s, but the user's language is %s", msg, user.Language),
		Hint:    "Set it with: planner config set locale " + strings.ToLower(string(user.Language)),
	}
}

func localeMessage(app *appctx.App) string {
	return fmt.Sprintf("%s (%s)", app.Locale, app.Config.Source("locale"))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func summarizeChecks(checks []Check) *DoctorResult {
	result := &DoctorResult{Checks: checks}
	for _, c := range checks {
		switch c.Status {
		case "pass":
			result.Passed++
		case "fail":
			result.Failed++
		case "warn":
			result.Warned++
		case "skip":
			result.Skipped++
		}
	}
	return result
}

// doctorBreadcrumbs suggests next steps for failed checks.
func doctorBreadcrumbs(checks []Check) []output.Breadcrumb {
	var crumbs []output.Breadcrumb
	for _, c := range checks {
		if c.Status != "fail" {
			continue
		}
		switch c.Name {
		case "Credentials":
			crumbs = append(crumbs, output.Breadcrumb{Action: "login", Cmd: "planner auth login", Description: "Store an access token"})
		case "Backend", "Config":
			crumbs = append(crumbs, output.Breadcrumb{Action: "config", Cmd: "planner config show", Description: "Review configuration"})
		}
	}
	return crumbs
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

func renderDoctorStyled(w io.Writer, result *DoctorResult) {
	r := output.NewRenderer(w, false)
	nameStyle := lipgloss.NewStyle().Bold(true)

	icons := map[string]string{"pass": "✓", "fail": "✗", "warn": "!", "skip": "○"}
	styles := map[string]lipgloss.Style{"pass": r.Summary, "fail": r.Error, "warn": r.Hint, "skip": r.Muted}

	fmt.Fprintln(w)
	fmt.Fprintln(w, r.Summary.Render("Planner Doctor"))
	fmt.Fprintln(w)

	for _, c := range result.Checks {
		style := styles[c.Status]
		fmt.Fprintf(w, "  %s %s %s\n", style.Render(icons[c.Status]), nameStyle.Render(c.Name), r.Data.Render(c.Message))
		if c.Hint != "" && (c.Status == "fail" || c.Status == "warn") {
			fmt.Fprintf(w, "      %s\n", r.Hint.Render("↳ "+c.Hint))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n\n", r.Summary.Render(result.Summary()))
}
