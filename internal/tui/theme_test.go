package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]string
	}{
		{
			name:  "plain",
			input: "accent = \"#89b4fa\"\nforeground = \"#cdd6f4\"",
			want:  map[string]string{"accent": "#89b4fa", "foreground": "#cdd6f4"},
		},
		{
			name:  "comments tables and blanks",
			input: "# palette\n[colors]\n\naccent = '#89b4fa' # blue\n",
			want:  map[string]string{"accent": "#89b4fa"},
		},
		{
			name:  "non colors skipped",
			input: "name = \"mocha\"\ncolor1 = \"#gggggg\"\ncolor2 = \"#a6e3a1\"\nbroken line",
			want:  map[string]string{"color2": "#a6e3a1"},
		},
		{
			name:  "short hex",
			input: `color8 = "#555"`,
			want:  map[string]string{"color8": "#555"},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseColors([]byte(tt.input)))
		})
	}
}

func TestIsHexColor(t *testing.T) {
	for _, s := range []string{"#fff", "#FFFFFF", "#0b6e4f"} {
		assert.True(t, IsHexColor(s), s)
	}
	for _, s := range []string{"", "fff", "#ffff", "#12345g", "#1234567"} {
		assert.False(t, IsHexColor(s), s)
	}
}

func TestThemeFromColors(t *testing.T) {
	defaults := DefaultTheme()

	theme := themeFromColors(map[string]string{"color4": "#111111", "color1": "#222222", "color0": "#333333"})

	assert.Equal(t, "#111111", theme.Primary.Dark)
	assert.Equal(t, defaults.Primary.Light, theme.Primary.Light)
	assert.Equal(t, "#222222", theme.Error.Dark)
	assert.Equal(t, "#333333", theme.Muted.Dark)
	assert.Equal(t, "#333333", theme.Weekend.Dark)
	assert.Equal(t, defaults.Success, theme.Success)

	theme = themeFromColors(map[string]string{"accent": "#aaaaaa", "color4": "#111111"})
	assert.Equal(t, "#aaaaaa", theme.Primary.Dark)
}

func writeTheme(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "colors.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestResolveTheme(t *testing.T) {
	t.Run("no color wins", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")
		t.Setenv(ThemeEnv, writeTheme(t, `accent = "#123456"`))
		assert.Equal(t, NoColorTheme(), ResolveTheme())
	})

	t.Run("theme env", func(t *testing.T) {
		unsetEnv(t, "NO_COLOR")
		t.Setenv(ThemeEnv, writeTheme(t, `accent = "#123456"`))
		assert.Equal(t, "#123456", ResolveTheme().Primary.Dark)
	})

	t.Run("unreadable theme falls back to user theme", func(t *testing.T) {
		unsetEnv(t, "NO_COLOR")
		t.Setenv("HOME", t.TempDir())
		t.Setenv(ThemeEnv, "/nonexistent/colors.toml")
		assert.Equal(t, DefaultTheme(), ResolveTheme())
	})

	t.Run("user theme", func(t *testing.T) {
		unsetEnv(t, "NO_COLOR")
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv(ThemeEnv, "")
		dir := filepath.Join(home, ".config", "planner", "theme")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "colors.toml"), []byte(`color2 = "#00ff00"`), 0o600))

		assert.Equal(t, "#00ff00", ResolveTheme().Success.Dark)
	})
}

func TestLoadThemeFromFileMissing(t *testing.T) {
	_, err := LoadThemeFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	prev, had := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
		}
	})
}
