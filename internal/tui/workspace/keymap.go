package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"

	"github.com/charmbracelet/bubbles/key"

	"github.com/plannerhq/planner/internal/config"
)

// GlobalKeyMap defines keybindings that work in every view.
type GlobalKeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Back      key.Binding
	Refresh   key.Binding
	Palette   key.Binding
	Planner   key.Binding
	Employees key.Binding
	Projects  key.Binding
	Chat      key.Binding
}

// DefaultGlobalKeyMap returns the default global keybindings.
func DefaultGlobalKeyMap() GlobalKeyMap {
	return GlobalKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Palette: key.NewBinding(
			key.WithKeys("ctrl+p", ":"),
			key.WithHelp("ctrl+p", "commands"),
		),
		Planner: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "planner"),
		),
		Employees: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "employees"),
		),
		Projects: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "projects"),
		),
		Chat: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "assistant"),
		),
	}
}

// ListKeyMap defines keybindings shared by the list views.
type ListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Create   key.Binding
	Edit     key.Binding
	Remove   key.Binding
	Filter   key.Binding
}

// DefaultListKeyMap returns the default list keybindings.
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("j/k", "navigate"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("j/k", "navigate"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "bottom"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l", "pgdown"),
			key.WithHelp("→", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h", "pgup"),
			key.WithHelp("←", "previous page"),
		),
		Create: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter", "edit"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "remove"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
	}
}

// ShortHelp returns the global key bindings for the status bar.
func (k GlobalKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns all global key bindings for the help overlay.
func (k GlobalKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Planner, k.Employees, k.Projects, k.Chat},
		{k.Back, k.Refresh, k.Palette, k.Help, k.Quit},
	}
}

// Section returns the binding that opens target.
func (k GlobalKeyMap) Section(target ViewTarget) key.Binding {
	switch target {
	case ViewEmployees:
		return k.Employees
	case ViewProjects:
		return k.Projects
	case ViewChat:
		return k.Chat
	default:
		return k.Planner
	}
}

// actionFieldMap maps action names (from keybindings.json) to GlobalKeyMap field names.
var actionFieldMap = map[string]string{
	"quit":      "Quit",
	"help":      "Help",
	"back":      "Back",
	"refresh":   "Refresh",
	"commands":  "Palette",
	"planner":   "Planner",
	"employees": "Employees",
	"projects":  "Projects",
	"assistant": "Chat",
}

// KeyBindingsPath is the user's override file.
func KeyBindingsPath() string {
	return filepath.Join(config.GlobalConfigDir(), "keybindings.json")
}

// LoadKeyOverrides reads keybinding overrides from a JSON file.
// Returns an empty map (not an error) if the file doesn't exist.
func LoadKeyOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var overrides map[string]string
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

// ApplyOverrides remaps keybindings in km according to the overrides map.
// Keys are action names (e.g. "assistant"), values are key strings
// (e.g. "ctrl+o"). Unknown actions are ignored.
func ApplyOverrides(km *GlobalKeyMap, overrides map[string]string) {
	v := reflect.ValueOf(km).Elem()
	for action, keyStr := range overrides {
		fieldName, ok := actionFieldMap[action]
		if !ok {
			continue
		}
		field := v.FieldByName(fieldName)
		if !field.IsValid() {
			continue
		}
		binding := field.Interface().(key.Binding)
		helpInfo := binding.Help()
		field.Set(reflect.ValueOf(key.NewBinding(
			key.WithKeys(keyStr),
			key.WithHelp(keyStr, helpInfo.Desc),
		)))
	}
}
