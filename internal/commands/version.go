package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/version"
)

// versionInfo is the --json form of `planner version`.
type versionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// NewVersionCmd creates the version command. It runs without an app, so
// it writes to the command's output directly.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(versionInfo{Version: version.Version, Commit: version.Commit, Date: version.Date})
			}
			_, err := fmt.Fprintln(w, version.Full())
			return err
		},
	}
}
