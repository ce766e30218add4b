package workspace

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace/chrome"
)

// chromeHeight is the vertical space reserved for header, divider, toast
// line and status bar.
const chromeHeight = 4

// Workspace is the root tea.Model for the persistent TUI application.
type Workspace struct {
	session *Session
	router  *Router
	styles  *tui.Styles
	keys    GlobalKeyMap

	// Chrome
	header    chrome.Header
	statusBar chrome.StatusBar
	toast     chrome.Toast
	help      chrome.Help
	palette   chrome.Palette

	showHelp    bool
	showPalette bool
	quitting    bool

	// viewFactory builds views from targets; set by the command that
	// creates the workspace.
	viewFactory ViewFactory

	width, height int
}

// ViewFactory creates views for navigation targets.
type ViewFactory func(target ViewTarget, session *Session, scope Scope) View

// New creates a new Workspace model.
func New(session *Session, factory ViewFactory) *Workspace {
	styles := session.Styles()
	names := make([]string, len(Sections))
	for i, target := range Sections {
		names[i] = target.String()
	}

	return &Workspace{
		session:     session,
		router:      NewRouter(),
		styles:      styles,
		keys:        DefaultGlobalKeyMap(),
		header:      chrome.NewHeader(styles, names),
		statusBar:   chrome.NewStatusBar(styles),
		toast:       chrome.NewToast(styles),
		help:        chrome.NewHelp(styles),
		palette:     chrome.NewPalette(styles),
		viewFactory: factory,
	}
}

// SetKeyMap replaces the global bindings, e.g. after ApplyOverrides.
func (w *Workspace) SetKeyMap(km GlobalKeyMap) {
	w.keys = km
}

func (t ViewTarget) String() string {
	switch t {
	case ViewPlanner:
		return "Planner"
	case ViewEmployees:
		return "Employees"
	case ViewProjects:
		return "Projects"
	case ViewChat:
		return "Assistant"
	case ViewEmployeeForm:
		return "Employee"
	case ViewProjectForm:
		return "Project"
	case ViewCellPicker:
		return "Assign"
	}
	return "View"
}

// Init implements tea.Model.
func (w *Workspace) Init() tea.Cmd {
	view := w.viewFactory(ViewPlanner, w.session, Scope{})
	w.router.Reset(view, ViewPlanner)
	w.syncChrome()
	return tea.Batch(view.Init(), w.session.Listen(), chrome.SetTerminalTitle(view.Title()))
}

// Update implements tea.Model.
func (w *Workspace) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		w.relayout()
		return w, nil

	case tea.KeyMsg:
		return w, w.handleKey(msg)

	case StoreChangedMsg:
		cmds := []tea.Cmd{w.session.Listen(), w.syncStore(msg.State)}
		cmds = append(cmds, w.forward(msg))
		return w, tea.Batch(cmds...)

	case NoticeMsg:
		return w, tea.Batch(w.session.Listen(), w.toast.Show(msg.Text, true))

	case NavigateMsg:
		return w, w.navigate(msg.Target, msg.Scope)

	case NavigateBackMsg:
		return w, w.goBack()

	case SwitchSectionMsg:
		return w, w.switchSection(msg.Target)

	case StatusMsg:
		w.statusBar.SetStatus(msg.Text, msg.IsError)
		return w, nil

	case spinner.TickMsg:
		var barCmd tea.Cmd
		w.statusBar, barCmd = w.statusBar.Update(msg)
		return w, tea.Batch(barCmd, w.forward(msg))
	}

	if w.toast.Update(msg) {
		return w, nil
	}
	return w, w.forward(msg)
}

// forward hands msg to the current view.
func (w *Workspace) forward(msg tea.Msg) tea.Cmd {
	view := w.router.Current()
	if view == nil {
		return nil
	}
	updated, cmd := view.Update(msg)
	w.replaceCurrentView(updated)
	return cmd
}

// syncStore mirrors snapshot-wide state into the chrome: the busy spinner
// and the signed-in user.
func (w *Workspace) syncStore(s *state.State) tea.Cmd {
	if s == nil {
		return nil
	}
	if u := s.User; u != nil {
		label := u.Name
		if label == "" {
			label = u.Email
		}
		if u.Language != "" {
			label += " (" + strings.ToUpper(string(u.Language)) + ")"
		}
		w.statusBar.SetUser(label)
	}
	busy := s.IsLoadingEmployees || s.IsLoadingProjects || s.IsWaitingForMessageResponse
	return w.statusBar.SetBusy(busy)
}

func (w *Workspace) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		w.quitting = true
		w.session.StopPolling()
		return tea.Quit
	}

	if w.showHelp {
		closed, cmd := w.help.Update(msg)
		if closed {
			w.showHelp = false
		}
		return cmd
	}

	if w.showPalette {
		closed, cmd := w.palette.Update(msg)
		if closed {
			w.showPalette = false
		}
		return cmd
	}

	view := w.router.Current()
	if ic, ok := view.(InputCapturer); ok && ic.InputActive() {
		if key.Matches(msg, w.keys.Back) {
			if m, ok := view.(ModalActive); !ok || !m.IsModal() {
				return w.goBack()
			}
		}
		return w.forward(msg)
	}

	switch {
	case key.Matches(msg, w.keys.Back):
		if m, ok := view.(ModalActive); ok && m.IsModal() {
			return w.forward(msg)
		}
		return w.goBack()

	case key.Matches(msg, w.keys.Quit):
		w.quitting = true
		w.session.StopPolling()
		return tea.Quit

	case key.Matches(msg, w.keys.Help):
		w.showHelp = true
		return nil

	case key.Matches(msg, w.keys.Palette):
		w.showPalette = true
		w.palette.SetCommands(w.paletteCommands())
		return w.palette.Open()

	case key.Matches(msg, w.keys.Refresh):
		w.statusBar.ClearStatus()
		return w.forward(RefreshMsg{})
	}

	for _, target := range Sections {
		if key.Matches(msg, w.keys.Section(target)) {
			return w.switchSection(target)
		}
	}

	return w.forward(msg)
}

// switchSection replaces the stack with the root view of target.
func (w *Workspace) switchSection(target ViewTarget) tea.Cmd {
	if w.router.Section() == target && w.router.Depth() == 1 {
		return nil
	}
	w.blurCurrent()

	view := w.viewFactory(target, w.session, Scope{})
	view.SetSize(w.width, w.viewHeight())
	w.router.Reset(view, target)
	w.statusBar.ClearStatus()
	w.syncChrome()
	return tea.Batch(view.Init(), chrome.SetTerminalTitle(view.Title()))
}

func (w *Workspace) navigate(target ViewTarget, scope Scope) tea.Cmd {
	w.blurCurrent()

	view := w.viewFactory(target, w.session, scope)
	view.SetSize(w.width, w.viewHeight())
	w.router.Push(view, target)
	w.syncChrome()
	return tea.Batch(view.Init(), chrome.SetTerminalTitle(view.Title()))
}

func (w *Workspace) goBack() tea.Cmd {
	if !w.router.CanGoBack() {
		return nil
	}
	w.blurCurrent()
	w.router.Pop()

	view := w.router.Current()
	view.SetSize(w.width, w.viewHeight())
	cmd := w.forward(FocusMsg{})
	w.syncChrome()
	return tea.Batch(cmd, chrome.SetTerminalTitle(w.router.Current().Title()))
}

// paletteCommands lists what the command palette offers.
func (w *Workspace) paletteCommands() []chrome.PaletteCommand {
	var cmds []chrome.PaletteCommand
	for _, target := range Sections {
		cmds = append(cmds, chrome.PaletteCommand{
			Name: "Go to " + target.String(),
			Key:  w.keys.Section(target).Help().Key,
			Run:  func() tea.Cmd { return w.switchSection(target) },
		})
	}
	return append(cmds,
		chrome.PaletteCommand{
			Name:        "New employee",
			Description: "Open the employee form",
			Run:         func() tea.Cmd { return w.navigate(ViewEmployeeForm, Scope{}) },
		},
		chrome.PaletteCommand{
			Name:        "New project",
			Description: "Open the project form",
			Run:         func() tea.Cmd { return w.navigate(ViewProjectForm, Scope{}) },
		},
		chrome.PaletteCommand{
			Name:        "Refresh",
			Description: "Reload the current view",
			Key:         w.keys.Refresh.Help().Key,
			Run:         func() tea.Cmd { return w.forward(RefreshMsg{}) },
		},
		chrome.PaletteCommand{
			Name: "Quit",
			Key:  w.keys.Quit.Help().Key,
			Run: func() tea.Cmd {
				w.quitting = true
				w.session.StopPolling()
				return tea.Quit
			},
		},
	)
}

func (w *Workspace) blurCurrent() {
	if view := w.router.Current(); view != nil {
		updated, _ := view.Update(BlurMsg{})
		w.replaceCurrentView(updated)
	}
}

func (w *Workspace) replaceCurrentView(updated tea.Model) {
	if v, ok := updated.(View); ok {
		w.router.Replace(v)
		// The view's mode may have changed its bindings.
		w.statusBar.SetKeyHints(v.ShortHelp())
	}
}

func (w *Workspace) syncChrome() {
	for i, target := range Sections {
		if target == w.router.Section() {
			w.header.SetActive(i)
		}
	}
	crumbs := w.router.Breadcrumbs()
	if len(crumbs) > 0 {
		crumbs = crumbs[1:]
	}
	w.header.SetCrumbs(crumbs)

	w.help.SetGlobalKeys(w.keys.FullHelp())
	w.statusBar.SetGlobalHints(w.keys.ShortHelp())
	if view := w.router.Current(); view != nil {
		w.statusBar.SetKeyHints(view.ShortHelp())
		w.help.SetView(view.Title(), view.FullHelp())
	}
}

func (w *Workspace) relayout() {
	w.header.SetWidth(w.width)
	w.statusBar.SetWidth(w.width)
	w.toast.SetWidth(w.width)
	w.help.SetSize(w.width, w.viewHeight())
	w.palette.SetSize(w.width, w.viewHeight())
	if view := w.router.Current(); view != nil {
		view.SetSize(w.width, w.viewHeight())
	}
}

func (w *Workspace) viewHeight() int {
	return max(1, w.height-chromeHeight)
}

// View implements tea.Model.
func (w *Workspace) View() string {
	if w.quitting {
		return ""
	}

	divider := lipgloss.NewStyle().
		Foreground(w.styles.Theme().Border).
		Render(strings.Repeat("─", max(0, w.width)))

	var main string
	if w.showPalette {
		main = w.palette.View()
	} else if w.showHelp {
		main = w.help.View()
	} else if view := w.router.Current(); view != nil {
		main = view.View()
	}
	main = lipgloss.NewStyle().Height(w.viewHeight()).MaxHeight(w.viewHeight()).Render(main)

	return lipgloss.JoinVertical(lipgloss.Left,
		w.header.View(),
		divider,
		main,
		w.toast.View(),
		w.statusBar.View(),
	)
}
