package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		key, value string
		want       any
		wantErr    bool
	}{
		{"page_size", "12", 12, false},
		{"page_size", "0", nil, true},
		{"planner_page_size", "x", nil, true},
		{"verbose", "2", 2, false},
		{"verbose", "3", nil, true},
		{"stats", "on", true, false},
		{"stats", "maybe", nil, true},
		{"poll_interval", "15", "15s", false},
		{"poll_interval", "2m", "2m0s", false},
		{"poll_interval", "100ms", nil, true},
		{"base_url", "planner.example.com/", "https://planner.example.com", false},
		{"locale", "fr-CH", "fr-CH", false},
		{"account_id", "1", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			got, err := ParseValue(tt.key, tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnknownKeyListsValidKeys(t *testing.T) {
	_, err := ParseValue("nope", "1")
	var unknown ErrUnknownKey
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "planner_page_size")
}

func TestSetAndUnsetValueJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	stored, err := SetValue(path, "locale", "it-CH")
	require.NoError(t, err)
	assert.Equal(t, "it-CH", stored)

	_, err = SetValue(path, "page_size", "9")
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	cfg := Default()
	loadFromFile(cfg, path, SourceLocal)
	assert.Equal(t, "it-CH", cfg.Locale)
	assert.Equal(t, 9, cfg.PageSize)

	removed, err := UnsetValue(path, "locale")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = UnsetValue(path, "locale")
	require.NoError(t, err)
	assert.False(t, removed)

	values, err := ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, values, "locale")
	assert.Contains(t, values, "page_size")
}

func TestSetValueYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := SetValue(path, "poll_interval", "20s")
	require.NoError(t, err)

	cfg := Default()
	loadFromFile(cfg, path, SourceGlobal)
	assert.Equal(t, "20s", cfg.PollInterval.String())
}

func TestUnsetValueMissingFile(t *testing.T) {
	removed, err := UnsetValue(filepath.Join(t.TempDir(), "config.json"), "locale")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "config.json"), FindFile(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("locale: en\n"), 0o600))
	assert.Equal(t, filepath.Join(dir, "config.yaml"), FindFile(dir))
}

func TestSortedSources(t *testing.T) {
	cfg := Default()
	cfg.Sources["locale"] = "env"
	cfg.Sources["base_url"] = "flag"
	assert.Equal(t, []string{"base_url", "locale"}, cfg.SortedSources())
}
