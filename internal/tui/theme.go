// Package tui holds the terminal presentation layer shared by the CLI and
// the workspace: theme, styles, prompts and form validation.
package tui

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnv names a colors.toml file that overrides the user theme.
const ThemeEnv = "PLANNER_THEME"

// Theme is the color palette.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	Warning    lipgloss.AdaptiveColor
	Error      lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Background lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	// Weekend shades Saturday and Sunday columns of the planner grid.
	Weekend lipgloss.AdaptiveColor
}

func DefaultTheme() Theme {
	return Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#0b6e4f", Dark: "#5fd7a7"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#5f6368", Dark: "#9aa0a6"},
		Success:    lipgloss.AdaptiveColor{Light: "#1e8e3e", Dark: "#81c995"},
		Warning:    lipgloss.AdaptiveColor{Light: "#f9ab00", Dark: "#fdd663"},
		Error:      lipgloss.AdaptiveColor{Light: "#d93025", Dark: "#f28b82"},
		Muted:      lipgloss.AdaptiveColor{Light: "#80868b", Dark: "#6e7681"},
		Background: lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1f1f1f"},
		Foreground: lipgloss.AdaptiveColor{Light: "#202124", Dark: "#e8eaed"},
		Border:     lipgloss.AdaptiveColor{Light: "#dadce0", Dark: "#3c4043"},
		Weekend:    lipgloss.AdaptiveColor{Light: "#f1f3f4", Dark: "#2a2d31"},
	}
}

// NoColorTheme has empty colors everywhere, which lipgloss renders as plain text.
func NoColorTheme() Theme {
	var empty lipgloss.AdaptiveColor
	return Theme{
		Primary: empty, Secondary: empty, Success: empty, Warning: empty, Error: empty,
		Muted: empty, Background: empty, Foreground: empty, Border: empty, Weekend: empty,
	}
}

// ResolveTheme picks the palette in this order:
//  1. NO_COLOR set: NoColorTheme
//  2. PLANNER_THEME pointing at a readable colors.toml
//  3. ~/.config/planner/theme/colors.toml
//  4. DefaultTheme
//
// The theme directory may be a symlink into another theme system.
func ResolveTheme() Theme {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return NoColorTheme()
	}
	if path := os.Getenv(ThemeEnv); path != "" {
		if theme, err := LoadThemeFromFile(path); err == nil {
			return theme
		}
	}
	if theme, err := LoadUserTheme(); err == nil {
		return theme
	}
	return DefaultTheme()
}

// UserThemePath is where LoadUserTheme looks.
func UserThemePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "planner", "theme", "colors.toml"), nil
}

func LoadUserTheme() (Theme, error) {
	path, err := UserThemePath()
	if err != nil {
		return Theme{}, err
	}
	return LoadThemeFromFile(path)
}

// LoadThemeFromFile reads a terminal colors.toml and maps it onto a Theme.
// Colors it does not name keep their default.
func LoadThemeFromFile(path string) (Theme, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-chosen theme file
	if err != nil {
		return Theme{}, err
	}
	return themeFromColors(parseColors(data)), nil
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// IsHexColor reports whether s is #rgb or #rrggbb.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// parseColors reads the flat `key = "#hex"` lines of a colors.toml.
// Tables, arrays and non-color values are skipped.
func parseColors(data []byte) map[string]string {
	colors := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '[' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if i := commentStart(value); i > 0 {
			value = strings.TrimSpace(value[:i])
		}
		value = strings.Trim(value, `"'`)
		if IsHexColor(value) {
			colors[strings.TrimSpace(key)] = value
		}
	}
	return colors
}

// commentStart returns the index of a # outside quotes, or -1.
func commentStart(s string) int {
	var quote rune
	for i, c := range s {
		switch {
		case quote == 0 && (c == '"' || c == '\''):
			quote = c
		case quote != 0 && c == quote:
			quote = 0
		case quote == 0 && c == '#':
			return i
		}
	}
	return -1
}

// themeFromColors maps terminal palette names onto theme roles:
//
//	accent, color4       Primary
//	color7               Secondary
//	color2               Success
//	color3               Warning
//	color1               Error
//	color8, color0       Muted, Border, Weekend
//	background           Background
//	foreground           Foreground
//
// Terminal themes are dark, so only the Dark variants are replaced.
func themeFromColors(colors map[string]string) Theme {
	t := DefaultTheme()
	pick := func(c *lipgloss.AdaptiveColor, keys ...string) {
		for _, k := range keys {
			if v, ok := colors[k]; ok {
				c.Dark = v
				return
			}
		}
	}
	pick(&t.Primary, "accent", "color4")
	pick(&t.Secondary, "color7")
	pick(&t.Success, "color2")
	pick(&t.Warning, "color3")
	pick(&t.Error, "color1")
	pick(&t.Muted, "color8", "color0")
	pick(&t.Border, "color8", "color0")
	pick(&t.Weekend, "color0", "color8")
	pick(&t.Background, "background")
	pick(&t.Foreground, "foreground")
	return t
}
