// Package config provides layered configuration loading.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults mirrored by the web front end.
const (
	DefaultBaseURL         = "http://localhost:8080"
	DefaultLocale          = "de-CH"
	DefaultPageSize        = 5
	DefaultPlannerPageSize = 10
	DefaultPollInterval    = 10 * time.Second
)

// Config holds the resolved configuration.
type Config struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Locale  string `json:"locale" yaml:"locale"`

	// PageSize is the settings list page size; PlannerPageSize the number
	// of employee rows on the week grid.
	PageSize        int           `json:"page_size" yaml:"page_size"`
	PlannerPageSize int           `json:"planner_page_size" yaml:"planner_page_size"`
	PollInterval    time.Duration `json:"poll_interval" yaml:"poll_interval"`

	Format  string `json:"format" yaml:"format"`
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	Stats   *bool `json:"stats,omitempty" yaml:"stats,omitempty"`
	Verbose *int  `json:"verbose,omitempty" yaml:"verbose,omitempty"`

	// Sources tracks where each value came from.
	Sources map[string]string `json:"-" yaml:"-"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceSystem  Source = "system"
	SourceGlobal  Source = "global"
	SourceRepo    Source = "repo"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// FlagOverrides holds command-line flag values.
type FlagOverrides struct {
	BaseURL string
	Locale  string
	Format  string
	LogFile string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseURL:         DefaultBaseURL,
		Locale:          DefaultLocale,
		PageSize:        DefaultPageSize,
		PlannerPageSize: DefaultPlannerPageSize,
		PollInterval:    DefaultPollInterval,
		Format:          "auto",
		Sources:         make(map[string]string),
	}
}

// Load loads configuration from all sources.
// Precedence: flags > env > local > repo > global > system > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadDir(cfg, systemConfigDir(), SourceSystem)
	loadDir(cfg, GlobalConfigDir(), SourceGlobal)

	repoDir := repoConfigDir()
	if repoDir != "" {
		loadDir(cfg, repoDir, SourceRepo)
	}
	for _, dir := range localConfigDirs(repoDir) {
		loadDir(cfg, dir, SourceLocal)
	}

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FileNames are tried in order inside every config directory.
var FileNames = []string{"config.json", "config.yaml", "config.yml"}

func loadDir(cfg *Config, dir string, source Source) {
	for _, name := range FileNames {
		loadFromFile(cfg, filepath.Join(dir, name), source)
	}
}

// ReadFile decodes a JSON or YAML config file into a generic map.
func ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path from trusted config locations
	if err != nil {
		return nil, err
	}

	values := make(map[string]any)
	if isYAML(path) {
		err = yaml.Unmarshal(data, &values)
	} else {
		err = json.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return values, nil
}

func isYAML(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}

func loadFromFile(cfg *Config, path string, source Source) {
	values, err := ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		}
		return
	}

	// base_url decides where the bearer token is sent, so a config file
	// checked into a repository must not redirect it.
	untrusted := source == SourceLocal || source == SourceRepo

	if v, ok := values["base_url"].(string); ok && v != "" {
		if untrusted {
			fmt.Fprintf(os.Stderr, "warning: ignoring base_url %q from %s config at %s\n", v, source, path)
		} else {
			cfg.set("base_url", source, func() { cfg.BaseURL = NormalizeBaseURL(v) })
		}
	}
	if v, ok := values["locale"].(string); ok && v != "" {
		cfg.set("locale", source, func() { cfg.Locale = v })
	}
	if n, ok := intValue(values["page_size"]); ok && n > 0 {
		cfg.set("page_size", source, func() { cfg.PageSize = n })
	}
	if n, ok := intValue(values["planner_page_size"]); ok && n > 0 {
		cfg.set("planner_page_size", source, func() { cfg.PlannerPageSize = n })
	}
	if d, ok := durationValue(values["poll_interval"]); ok {
		cfg.set("poll_interval", source, func() { cfg.PollInterval = d })
	}
	if v, ok := values["format"].(string); ok && v != "" {
		cfg.set("format", source, func() { cfg.Format = v })
	}
	if v, ok := values["log_file"].(string); ok && v != "" {
		cfg.set("log_file", source, func() { cfg.LogFile = v })
	}
	if v, ok := values["stats"].(bool); ok {
		cfg.set("stats", source, func() { cfg.Stats = &v })
	}
	if n, ok := intValue(values["verbose"]); ok && n >= 0 && n <= 2 {
		cfg.set("verbose", source, func() { cfg.Verbose = &n })
	}
}

func (cfg *Config) set(key string, source Source, apply func()) {
	apply()
	cfg.Sources[key] = string(source)
}

// Source reports where key was resolved from.
func (cfg *Config) Source(key string) string {
	if s := cfg.Sources[key]; s != "" {
		return s
	}
	return string(SourceDefault)
}

// LoadFromEnv applies PLANNER_* environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("PLANNER_BASE_URL"); v != "" {
		cfg.set("base_url", SourceEnv, func() { cfg.BaseURL = NormalizeBaseURL(v) })
	}
	if v := os.Getenv("PLANNER_LOCALE"); v != "" {
		cfg.set("locale", SourceEnv, func() { cfg.Locale = v })
	}
	if n, err := strconv.Atoi(os.Getenv("PLANNER_PAGE_SIZE")); err == nil && n > 0 {
		cfg.set("page_size", SourceEnv, func() { cfg.PageSize = n })
	}
	if n, err := strconv.Atoi(os.Getenv("PLANNER_PLANNER_PAGE_SIZE")); err == nil && n > 0 {
		cfg.set("planner_page_size", SourceEnv, func() { cfg.PlannerPageSize = n })
	}
	if d, ok := durationValue(os.Getenv("PLANNER_POLL_INTERVAL")); ok {
		cfg.set("poll_interval", SourceEnv, func() { cfg.PollInterval = d })
	}
	if v := os.Getenv("PLANNER_FORMAT"); v != "" {
		cfg.set("format", SourceEnv, func() { cfg.Format = v })
	}
	if v := os.Getenv("PLANNER_LOG_FILE"); v != "" {
		cfg.set("log_file", SourceEnv, func() { cfg.LogFile = v })
	}
	if b, ok := parseBool(os.Getenv("PLANNER_STATS")); ok {
		cfg.set("stats", SourceEnv, func() { cfg.Stats = &b })
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.set("base_url", SourceFlag, func() { cfg.BaseURL = NormalizeBaseURL(o.BaseURL) })
	}
	if o.Locale != "" {
		cfg.set("locale", SourceFlag, func() { cfg.Locale = o.Locale })
	}
	if o.Format != "" {
		cfg.set("format", SourceFlag, func() { cfg.Format = o.Format })
	}
	if o.LogFile != "" {
		cfg.set("log_file", SourceFlag, func() { cfg.LogFile = o.LogFile })
	}
}

// Validate rejects settings that would break polling or paging.
func (cfg *Config) Validate() error {
	if cfg.PollInterval < time.Second {
		return fmt.Errorf("poll_interval %s is below 1s", cfg.PollInterval)
	}
	if cfg.PageSize < 1 || cfg.PlannerPageSize < 1 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

// durationValue accepts "15s" style strings or a number of seconds.
func durationValue(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case string:
		if d == "" {
			return 0, false
		}
		if parsed, err := time.ParseDuration(d); err == nil {
			return parsed, true
		}
		if secs, err := strconv.Atoi(d); err == nil {
			return time.Duration(secs) * time.Second, true
		}
	case int, float64:
		secs, ok := intValue(d)
		return time.Duration(secs) * time.Second, ok
	}
	return 0, false
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true, true
	case "false", "0", "no", "off":
		return false, true
	}
	return false, false
}

// NormalizeBaseURL adds a scheme to bare hosts and drops trailing slashes.
// Loopback hosts default to http, everything else to https.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	host := raw
	if i := strings.IndexAny(host, ":/"); i >= 0 {
		host = host[:i]
	}
	if host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".localhost") {
		return "http://" + raw
	}
	return "https://" + raw
}

// Path helpers

func systemConfigDir() string {
	return "/etc/planner"
}

// GlobalConfigDir returns $XDG_CONFIG_HOME/planner.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "planner")
}

// LocalConfigDir is the per-directory config location.
const LocalConfigDir = ".planner"

// repoConfigDir walks up from the working directory to the enclosing git
// root and returns its .planner directory if present. The walk stays
// inside $HOME.
func repoConfigDir() string {
	dir, err := resolvedWd()
	if err != nil {
		return ""
	}
	home := resolvedHome()
	if home != "" && !isInsideDir(dir, home) {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			candidate := filepath.Join(dir, LocalConfigDir)
			if fi, err := os.Stat(candidate); err == nil && fi.IsDir() {
				return candidate
			}
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir || dir == home {
			return ""
		}
		dir = parent
	}
}

// localConfigDirs returns .planner directories between the trust boundary
// and the working directory, furthest first. The boundary is the repo root
// inside a repository and the working directory otherwise.
func localConfigDirs(repoDir string) []string {
	dir, err := resolvedWd()
	if err != nil {
		return nil
	}

	boundary := dir
	if repoDir != "" {
		boundary = filepath.Dir(repoDir)
	}

	var dirs []string
	for {
		candidate := filepath.Join(dir, LocalConfigDir)
		if fi, err := os.Stat(candidate); err == nil && fi.IsDir() && candidate != repoDir {
			dirs = append([]string{candidate}, dirs...)
		}
		parent := filepath.Dir(dir)
		if parent == dir || dir == boundary {
			break
		}
		dir = parent
	}
	return dirs
}

func resolvedWd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(dir)
}

func resolvedHome() string {
	home, _ := os.UserHomeDir()
	if resolved, err := filepath.EvalSymlinks(home); err == nil {
		return resolved
	}
	return home
}

// isInsideDir reports whether child is parent or below it.
func isInsideDir(child, parent string) bool {
	if child == parent {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(child, prefix)
}
