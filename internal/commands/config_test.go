package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type configEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func entry(entries []configEntry, key string) (configEntry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return configEntry{}, false
}

func TestConfigShowSources(t *testing.T) {
	e := newTestEnv(t)

	entries := dataAs[[]configEntry](t, e.runJSON(t, "config", "show"))

	base, ok := entry(entries, "base_url")
	require.True(t, ok)
	assert.Equal(t, e.url, base.Value)
	assert.Equal(t, "flag", base.Source)

	locale, ok := entry(entries, "locale")
	require.True(t, ok)
	assert.Equal(t, "en-US", locale.Value)
	assert.Equal(t, "env", locale.Source)

	size, ok := entry(entries, "page_size")
	require.True(t, ok)
	assert.Equal(t, "5", size.Value)
	assert.Equal(t, "default", size.Source)

	_, ok = entry(entries, "log_file")
	assert.False(t, ok)
}

func TestConfigSetAndUnsetGlobal(t *testing.T) {
	e := newTestEnv(t)

	env := e.runJSON(t, "config", "set", "page_size", "7", "--global")
	assert.Equal(t, "Set page_size = 7 (global)", env.Summary)

	size, _ := entry(dataAs[[]configEntry](t, e.runJSON(t, "config", "show")), "page_size")
	assert.Equal(t, "7", size.Value)
	assert.Equal(t, "global", size.Source)

	env = e.runJSON(t, "config", "unset", "page_size", "--global")
	assert.Equal(t, "Unset page_size (global)", env.Summary)

	env = e.runJSON(t, "config", "unset", "page_size", "--global")
	assert.Equal(t, "page_size was not set (global)", env.Summary)
}

func TestConfigSetRejectsBadValues(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.run(t, "config", "set", "poll_interval", "soon", "--global", "--json")
	assert.Error(t, err)

	_, err = e.run(t, "config", "set", "colour", "red", "--global", "--json")
	assert.Error(t, err)
}
