package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/richtext"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/tui"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

// Chat is the assistant transcript with a compose line.
//
// While the compose line is focused every key goes to it; esc releases it
// so the global keys work again, and i or enter takes it back.
type Chat struct {
	session  *workspace.Session
	styles   *tui.Styles
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	messages []models.ChatMessage
	waiting  bool

	width, height int
}

// NewChat creates the assistant view with the compose line focused.
func NewChat(session *workspace.Session) *Chat {
	styles := session.Styles()

	in := textinput.New()
	in.Placeholder = "Ask the assistant…"
	in.Prompt = "> "
	in.CharLimit = 2000
	in.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Theme().Primary)

	v := &Chat{
		session:  session,
		styles:   styles,
		input:    in,
		viewport: viewport.New(0, 0),
		spinner:  s,
	}
	snap := session.State()
	v.messages = snap.Messages
	v.waiting = snap.IsWaitingForMessageResponse
	return v
}

func (v *Chat) Title() string { return "Assistant" }

func (v *Chat) ShortHelp() []key.Binding {
	if v.input.Focused() {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
			key.NewBinding(key.WithKeys("pgup", "pgdown"), key.WithHelp("pgup/pgdn", "scroll")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "leave input")),
		}
	}
	return []key.Binding{
		key.NewBinding(key.WithKeys("i", "enter"), key.WithHelp("i", "write")),
		key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
	}
}

func (v *Chat) FullHelp() [][]key.Binding { return [][]key.Binding{v.ShortHelp()} }

// InputActive implements workspace.InputCapturer.
func (v *Chat) InputActive() bool { return v.input.Focused() }

// IsModal implements workspace.ModalActive.
func (v *Chat) IsModal() bool { return v.input.Focused() }

func (v *Chat) SetSize(w, h int) {
	v.width, v.height = w, h
	v.input.Width = max(w-4, 1)
	v.viewport.Width = w
	v.viewport.Height = max(h-2, 1)
	v.refresh()
}

func (v *Chat) Init() tea.Cmd {
	v.refresh()
	cmds := []tea.Cmd{textinput.Blink}
	if v.waiting {
		cmds = append(cmds, v.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (v *Chat) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workspace.StoreChangedMsg:
		wasWaiting := v.waiting
		v.messages = msg.State.Messages
		v.waiting = msg.State.IsWaitingForMessageResponse
		v.refresh()
		if v.waiting && !wasWaiting {
			return v, v.spinner.Tick
		}
		return v, nil

	case spinner.TickMsg:
		if !v.waiting {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case workspace.FocusMsg:
		return v, v.input.Focus()

	case workspace.BlurMsg:
		v.input.Blur()
		return v, nil

	case tea.KeyMsg:
		return v, v.handleKey(msg)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *Chat) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "pgup", "pgdown":
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return cmd
	}

	if !v.input.Focused() {
		switch msg.String() {
		case "i", "enter":
			return v.input.Focus()
		}
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return cmd
	}

	switch msg.String() {
	case "esc":
		v.input.Blur()
		return nil
	case "enter":
		return v.send()
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *Chat) send() tea.Cmd {
	text := strings.TrimSpace(v.input.Value())
	if text == "" {
		return nil
	}
	if v.waiting {
		return workspace.SetStatus("The assistant is still answering", true)
	}
	v.input.Reset()
	return v.session.DispatchCmd(state.SendBotMessage{Message: models.ChatMessage{
		Message:   text,
		Sender:    models.SenderUser,
		Timestamp: time.Now(),
	}})
}

// refresh re-renders the transcript and scrolls to the newest message.
func (v *Chat) refresh() {
	if v.width <= 0 {
		return
	}
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *Chat) renderTranscript() string {
	bubbleW := max(v.width-4, 10)
	parts := make([]string, 0, len(v.messages))
	for _, m := range v.messages {
		stamp := v.styles.Muted.Render(m.Timestamp.Local().Format("15:04"))
		if m.Sender == models.SenderUser {
			head := v.styles.Bold.Render("You") + " " + stamp
			body := v.styles.UserBubble.Width(bubbleW).Render(m.Message)
			parts = append(parts, head+"\n"+body)
			continue
		}
		head := v.styles.Subtitle.Render("Assistant") + " " + stamp
		var body string
		if richtext.IsMarkdown(m.Message) {
			body = v.styles.BotBubble.Render(richtext.RenderOrPlain(m.Message, bubbleW-2))
		} else {
			body = v.styles.BotBubble.Width(bubbleW).Render(m.Message)
		}
		parts = append(parts, head+"\n"+body)
	}
	return strings.Join(parts, "\n\n")
}

func (v *Chat) View() string {
	var compose string
	switch {
	case v.waiting:
		compose = v.spinner.View() + " " + v.styles.Muted.Render("The assistant is typing…")
	default:
		compose = v.input.View()
	}
	divider := v.styles.Muted.Render(strings.Repeat("─", max(v.width, 0)))
	return v.viewport.View() + "\n" + divider + "\n" + compose
}
