package commands

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionRoot() *cobra.Command {
	root := &cobra.Command{Use: "planner"}
	root.AddCommand(NewCompletionCmd())
	root.AddCommand(&cobra.Command{Use: "employees", Run: func(*cobra.Command, []string) {}})
	return root
}

func TestCompletionHasShellSubcommands(t *testing.T) {
	cmd := NewCompletionCmd()
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		sub, _, err := cmd.Find([]string{shell})
		require.NoError(t, err, shell)
		assert.Equal(t, shell, sub.Name())
	}
}

func TestCompletionScripts(t *testing.T) {
	tests := map[string]string{
		"bash":       "bash completion V2 for planner",
		"zsh":        "#compdef planner",
		"fish":       "fish completion for planner",
		"powershell": "powershell completion for planner",
	}
	for shell, marker := range tests {
		t.Run(shell, func(t *testing.T) {
			root := completionRoot()
			var out bytes.Buffer
			root.SetOut(&out)
			root.SetArgs([]string{"completion", shell})
			require.NoError(t, root.Execute())
			assert.Contains(t, out.String(), marker)
		})
	}
}

func TestCompletionRejectsUnknownShell(t *testing.T) {
	root := completionRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"completion", "tcsh"})
	assert.Error(t, root.Execute())
}
