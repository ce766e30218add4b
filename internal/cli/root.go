// Package cli assembles the planner command tree.
package cli

import (
	"os"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/commands"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/version"
)

// NewRootCmd creates the root cobra command.
func NewRootCmd() *cobra.Command {
	var flags appctx.GlobalFlags

	cmd := &cobra.Command{
		Use:           "planner",
		Short:         "Command-line client for the workforce planner",
		Long:          "planner manages employees, projects and weekly assignments, and talks to the planning assistant.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipSetup(cmd) {
				return nil
			}

			cfg, err := config.Load(config.FlagOverrides{
				BaseURL: flags.BaseURL,
				Locale:  flags.Locale,
				LogFile: flags.LogFile,
			})
			if err != nil {
				return output.ErrUsageHint(err.Error(), "Check your config files and PLANNER_* environment variables")
			}

			app := appctx.NewApp(cfg, appctx.Options{Writer: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
			app.Flags = flags
			if err := app.ApplyFlags(); err != nil {
				app.Close()
				return err
			}

			ctx := appctx.WithApp(cmd.Context(), app)
			ctx = appctx.WithLogger(ctx, app.Logger)
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app := appctx.FromContext(cmd.Context()); app != nil {
				app.Close()
			}
		},
	}

	// Allow flags anywhere in the command line
	cmd.Flags().SetInterspersed(true)
	cmd.PersistentFlags().SetInterspersed(true)

	addGlobalFlags(cmd.PersistentFlags(), &flags)

	return cmd
}

// addGlobalFlags registers the flags shared by every command.
func addGlobalFlags(fs *pflag.FlagSet, flags *appctx.GlobalFlags) {
	// Output format flags
	fs.BoolVarP(&flags.JSON, "json", "j", false, "Output as JSON")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "Output data only, no envelope")
	fs.BoolVarP(&flags.MD, "md", "m", false, "Output as Markdown (portable)")
	fs.BoolVar(&flags.MD, "markdown", false, "Output as Markdown (portable)")
	fs.BoolVar(&flags.Styled, "styled", false, "Force styled output (ANSI colors)")
	fs.BoolVar(&flags.IDsOnly, "ids-only", false, "Output only IDs")
	fs.BoolVar(&flags.Count, "count", false, "Output only count")
	fs.StringVar(&flags.JQ, "jq", "", "Filter the JSON envelope with a jq expression")

	// Context flags
	fs.StringVar(&flags.BaseURL, "base-url", "", "Planner backend URL (e.g., localhost:8080, planner.example.com)")
	fs.StringVar(&flags.Locale, "locale", "", "UI locale for messages (e.g., de-CH, fr-CH)")

	// Behavior flags
	fs.CountVarP(&flags.Verbose, "verbose", "v", "Verbose output (-v for operations, -vv for requests)")
	fs.BoolVar(&flags.Stats, "stats", false, "Show session statistics")
	fs.StringVar(&flags.LogFile, "log-file", "", "Append logs to this file")

	fs.SortFlags = false
}

// skipSetup reports commands that must run without config or credentials.
func skipSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "completion" {
			return true
		}
	}
	return false
}

// AddCommands registers every planner subcommand on root.
func AddCommands(root *cobra.Command) {
	root.AddCommand(commands.NewEmployeesCmd())
	root.AddCommand(commands.NewProjectsCmd())
	root.AddCommand(commands.NewAssignmentsCmd())
	root.AddCommand(commands.NewChatCmd())
	root.AddCommand(commands.NewUserCmd())
	root.AddCommand(commands.NewAuthCmd())
	root.AddCommand(commands.NewConfigCmd())
	root.AddCommand(commands.NewMeCmd())
	root.AddCommand(commands.NewTUICmd())
	root.AddCommand(commands.NewDoctorCmd())
	root.AddCommand(commands.NewCommandsCmd())
	root.AddCommand(commands.NewCompletionCmd())
	root.AddCommand(commands.NewVersionCmd())
}

// Execute runs the root command and exits with the error's exit code.
func Execute() {
	cmd := NewRootCmd()
	AddCommands(cmd)

	// Use ExecuteC to get the executed command (for correct context access)
	executedCmd, err := cmd.ExecuteC()
	if err == nil {
		return
	}
	err = transformCobraError(err)
	apiErr := output.AsError(err)

	if app := appctx.FromContext(executedCmd.Context()); app != nil {
		_ = app.Err(err)
		app.Close()
		os.Exit(apiErr.ExitCode())
	}

	// Setup failed before the app existed.
	writer := output.New(output.Options{
		Format: fallbackFormat(cmd),
		Writer: os.Stdout,
	})
	_ = writer.Err(err)
	os.Exit(apiErr.ExitCode())
}

// fallbackFormat derives the output format from the raw flags when no app
// is available.
func fallbackFormat(cmd *cobra.Command) output.Format {
	pf := cmd.PersistentFlags()
	quiet, _ := pf.GetBool("quiet")
	idsOnly, _ := pf.GetBool("ids-only")
	count, _ := pf.GetBool("count")
	styled, _ := pf.GetBool("styled")
	md, _ := pf.GetBool("md")
	jsonFlag, _ := pf.GetBool("json")
	jq, _ := pf.GetString("jq")

	switch {
	case idsOnly:
		return output.FormatIDs
	case count:
		return output.FormatCount
	case quiet:
		return output.FormatQuiet
	case jsonFlag, jq != "":
		return output.FormatJSON
	case styled:
		return output.FormatStyled
	case md:
		return output.FormatMarkdown
	}
	return output.FormatAuto
}

var (
	shorthandPattern = regexp.MustCompile(`unknown shorthand flag: '.' in (-\w)`)
	requiredPattern  = regexp.MustCompile(`required flag\(s\) "([\w-]+)" not set`)
)

// transformCobraError turns cobra's parse errors into usage errors with
// consistent wording.
func transformCobraError(err error) error {
	msg := err.Error()

	if flag, ok := strings.CutPrefix(msg, "flag needs an argument: "); ok {
		return output.ErrUsage(flag + " requires a value")
	}
	if flag, ok := strings.CutPrefix(msg, "unknown flag: "); ok {
		return output.ErrUsage("Unknown option: " + flag)
	}
	if m := shorthandPattern.FindStringSubmatch(msg); len(m) > 1 {
		return output.ErrUsage("Unknown option: " + m[1])
	}
	if strings.HasPrefix(msg, "unknown command ") {
		return output.ErrUsageHint(msg, "Run 'planner --help' for a list of commands")
	}
	if strings.Contains(msg, "invalid argument") {
		return output.ErrUsage(msg)
	}
	if strings.Contains(msg, "arg(s), received 0") || strings.Contains(msg, "requires at least") {
		return output.ErrUsage("ID required")
	}
	if strings.Contains(msg, "arg(s), received") {
		return output.ErrUsage(msg)
	}
	if m := requiredPattern.FindStringSubmatch(msg); len(m) > 1 {
		return output.ErrUsage("--" + m[1] + " required")
	}
	return err
}
