package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// NewCompletionCmd creates the completion command.
func NewCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for planner.

Bash:
  $ source <(planner completion bash)

Zsh:
  # Enable completion once if it is not already on:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc
  $ planner completion zsh > "${fpath[1]}/_planner"

Fish:
  $ planner completion fish > ~/.config/fish/completions/planner.fish

PowerShell:
  PS> planner completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd.Root(), cmd.OutOrStdout(), args[0])
		},
	}

	for _, shell := range completionShells {
		cmd.AddCommand(&cobra.Command{
			Use:   shell,
			Short: "Generate the " + shell + " completion script",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return writeCompletion(cmd.Root(), cmd.OutOrStdout(), shell)
			},
		})
	}

	return cmd
}

func writeCompletion(root *cobra.Command, w io.Writer, shell string) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell: %s", shell)
}
