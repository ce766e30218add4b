package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys lists the settable configuration keys.
var Keys = []string{
	"base_url", "format", "locale", "log_file", "page_size",
	"planner_page_size", "poll_interval", "stats", "verbose",
}

// ErrUnknownKey is returned for keys outside Keys.
type ErrUnknownKey string

func (e ErrUnknownKey) Error() string {
	return fmt.Sprintf("invalid config key %q; valid keys: %s", string(e), strings.Join(Keys, ", "))
}

// ParseValue validates value for key and converts it to the type stored
// in config files.
func ParseValue(key, value string) (any, error) {
	switch key {
	case "page_size", "planner_page_size":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return n, nil
	case "verbose":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 || n > 2 {
			return nil, fmt.Errorf("verbose must be 0, 1, or 2")
		}
		return n, nil
	case "stats":
		b, ok := parseBool(value)
		if !ok {
			return nil, fmt.Errorf("stats must be true/false (or 1/0)")
		}
		return b, nil
	case "poll_interval":
		d, ok := durationValue(value)
		if !ok || d.Seconds() < 1 {
			return nil, fmt.Errorf("poll_interval must be a duration of at least 1s, e.g. 15s")
		}
		return d.String(), nil
	case "base_url":
		return NormalizeBaseURL(value), nil
	case "format", "locale", "log_file":
		return value, nil
	}
	return nil, ErrUnknownKey(key)
}

// SetValue writes key into the config file at path, creating it if
// needed. It returns the stored value.
func SetValue(path, key, value string) (any, error) {
	parsed, err := ParseValue(key, value)
	if err != nil {
		return nil, err
	}

	values, err := ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if values == nil {
		values = make(map[string]any)
	}
	values[key] = parsed

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	return parsed, WriteFile(path, values)
}

// UnsetValue removes key from the config file at path. It reports whether
// the key was present.
func UnsetValue(path, key string) (bool, error) {
	values, err := ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, ok := values[key]; !ok {
		return false, nil
	}
	delete(values, key)
	return true, WriteFile(path, values)
}

// WriteFile encodes values as JSON or YAML depending on the extension and
// replaces path atomically with mode 0600.
func WriteFile(path string, values map[string]any) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(values)
	} else {
		data, err = json.MarshalIndent(values, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return atomicWrite(path, data)
}

// FindFile returns the first existing config file in dir, or the default
// JSON file name when none exists.
func FindFile(dir string) string {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, FileNames[0])
}

// SortedSources returns the tracked keys in stable order.
func (cfg *Config) SortedSources() []string {
	keys := make([]string, 0, len(cfg.Sources))
	for k := range cfg.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	// Windows refuses to rename over an existing file.
	if err := os.Rename(tmpPath, path); err != nil {
		if runtime.GOOS != "windows" {
			return err
		}
		_ = os.Remove(path)
		return os.Rename(tmpPath, path)
	}
	return nil
}
