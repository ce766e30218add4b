package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/output"
)

// NewConfigCmd creates the config command for managing configuration.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage planner configuration.

Configuration is loaded from multiple sources with the following precedence:
  flags > env > local > repo > global > system > defaults

Config locations:
  - System: /etc/planner/config.json
  - Global: ~/.config/planner/config.json
  - Repo:   <git-root>/.planner/config.json
  - Local:  .planner/config.json

YAML files (config.yaml) are read as well.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  "Display the current effective configuration with source information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd)
		},
	}
}

type configEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func runConfigShow(cmd *cobra.Command) error {
	app, err := appFrom(cmd)
	if err != nil {
		return err
	}

	entries := configEntries(app.Config)
	return app.OK(entries,
		output.WithSummary("Effective configuration"),
		output.WithBreadcrumbs(output.Breadcrumb{
			Action:      "set",
			Cmd:         "planner config set <key> <value>",
			Description: "Set config value",
		}),
	)
}

func configEntries(cfg *config.Config) []configEntry {
	entries := make([]configEntry, 0, len(config.Keys))
	for _, key := range config.Keys {
		value, ok := configValue(cfg, key)
		if !ok {
			continue
		}
		entries = append(entries, configEntry{Key: key, Value: value, Source: cfg.Source(key)})
	}
	return entries
}

// configValue renders key for display. Unset optional keys report false.
func configValue(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "base_url":
		return cfg.BaseURL, true
	case "format":
		return cfg.Format, true
	case "locale":
		return cfg.Locale, true
	case "log_file":
		return cfg.LogFile, cfg.LogFile != ""
	case "page_size":
		return strconv.Itoa(cfg.PageSize), true
	case "planner_page_size":
		return strconv.Itoa(cfg.PlannerPageSize), true
	case "poll_interval":
		return cfg.PollInterval.String(), true
	case "stats":
		if cfg.Stats == nil {
			return "", false
		}
		return strconv.FormatBool(*cfg.Stats), true
	case "verbose":
		if cfg.Verbose == nil {
			return "", false
		}
		return strconv.Itoa(*cfg.Verbose), true
	}
	return "", false
}

// configPath returns the file `set` and `unset` edit, preferring an
// existing YAML file over the JSON default.
func configPath(global bool) (path, scope string) {
	if global {
		return config.FindFile(config.GlobalConfigDir()), "global"
	}
	return config.FindFile(config.LocalConfigDir), "local"
}

func newConfigSetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: fmt.Sprintf(`Set a configuration value in the local or global config file.

Valid keys: %s`, strings.Join(config.Keys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			key, value := args[0], args[1]
			path, scope := configPath(global)

			if _, err := config.ParseValue(key, value); err != nil {
				return configError(err)
			}
			stored, err := config.SetValue(path, key, value)
			if err != nil {
				return err
			}

			return app.OK(map[string]any{
				"key":    key,
				"value":  stored,
				"scope":  scope,
				"path":   path,
				"status": "set",
			},
				output.WithSummary(fmt.Sprintf("Set %s = %v (%s)", key, stored, scope)),
				output.WithBreadcrumbs(output.Breadcrumb{
					Action:      "show",
					Cmd:         "planner config show",
					Description: "View config",
				}),
			)
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Set in global config (~/.config/planner/)")

	return cmd
}

func newConfigUnsetCmd() *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the local or global config file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			key := args[0]
			if _, err := config.ParseValue(key, ""); errors.As(err, new(config.ErrUnknownKey)) {
				return configError(err)
			}

			path, scope := configPath(global)
			removed, err := config.UnsetValue(path, key)
			if err != nil {
				return err
			}

			status, summary := "unset", fmt.Sprintf("Unset %s (%s)", key, scope)
			if !removed {
				status, summary = "not_set", fmt.Sprintf("%s was not set (%s)", key, scope)
			}

			return app.OK(map[string]any{
				"key":    key,
				"scope":  scope,
				"path":   path,
				"status": status,
			}, output.WithSummary(summary))
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Unset in global config (~/.config/planner/)")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show config file locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := appFrom(cmd)
			if err != nil {
				return err
			}

			global, _ := configPath(true)
			local, _ := configPath(false)
			abs, err := filepath.Abs(local)
			if err == nil {
				local = abs
			}

			return app.OK(map[string]string{
				"global": global,
				"local":  local,
			}, output.WithSummary("Config file locations"))
		},
	}
}

func configError(err error) error {
	var unknown config.ErrUnknownKey
	if errors.As(err, &unknown) {
		return output.ErrUsageHint(fmt.Sprintf("Invalid config key %q", string(unknown)), "Valid keys: "+strings.Join(config.Keys, ", "))
	}
	return output.ErrUsage(err.Error())
}
