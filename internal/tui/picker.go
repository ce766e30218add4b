package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/models"
)

// PickerItem is one choice of a Picker.
type PickerItem struct {
	ID          string
	Title       string
	Description string
	// Color renders a swatch in front of the title when set.
	Color string
}

func (i PickerItem) filterValue() string {
	return strings.ToLower(i.Title + " " + i.Description)
}

// EmployeeItems converts employees to picker items.
func EmployeeItems(employees []models.Employee) []PickerItem {
	items := make([]PickerItem, len(employees))
	for i, e := range employees {
		items[i] = PickerItem{ID: e.ID, Title: e.FullName(), Description: e.Email}
	}
	return items
}

// ProjectItems converts projects to picker items.
func ProjectItems(projects []models.Project) []PickerItem {
	items := make([]PickerItem, len(projects))
	for i, p := range projects {
		desc := ""
		if p.MustBeOnPremises {
			desc = "on premises"
		}
		items[i] = PickerItem{ID: p.ID, Title: p.Name, Description: desc, Color: p.Color}
	}
	return items
}

type pickerKeys struct {
	Up, Down, Choose, Cancel key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n")),
	Choose: key.NewBinding(key.WithKeys("enter", "tab")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c")),
}

// ItemsLoadedMsg delivers asynchronously loaded picker items.
type ItemsLoadedMsg struct {
	Items []PickerItem
	Err   error
}

type pickerModel struct {
	title      string
	items      []PickerItem
	filtered   []PickerItem
	input      textinput.Model
	spinner    spinner.Model
	styles     *Styles
	keys       pickerKeys
	cursor     int
	offset     int
	maxVisible int

	loading  bool
	err      error
	selected *PickerItem
	canceled bool
}

func newPickerModel(title string, items []PickerItem, styles *Styles) pickerModel {
	in := textinput.New()
	in.Placeholder = "Type to filter..."
	in.Width = 40
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Cursor

	return pickerModel{
		title:      title,
		items:      items,
		filtered:   items,
		input:      in,
		spinner:    sp,
		styles:     styles,
		keys:       defaultPickerKeys,
		maxVisible: 10,
	}
}

func (m pickerModel) Init() tea.Cmd {
	if m.loading {
		return m.spinner.Tick
	}
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, tea.Quit
		}
		m.items = msg.Items
		m.applyFilter()
		return m, textinput.Blink

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.canceled = true
			return m, tea.Quit
		case m.loading:
			return m, nil
		case key.Matches(msg, m.keys.Choose):
			if m.cursor < len(m.filtered) {
				item := m.filtered[m.cursor]
				m.selected = &item
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.move(-1)
			return m, nil
		case key.Matches(msg, m.keys.Down):
			m.move(1)
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.applyFilter()
		return m, cmd
	}
	return m, nil
}

func (m *pickerModel) move(delta int) {
	m.cursor = max(0, min(len(m.filtered)-1, m.cursor+delta))
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible {
		m.offset = m.cursor - m.maxVisible + 1
	}
}

func (m *pickerModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.cursor, m.offset = 0, 0
	if q == "" {
		m.filtered = m.items
		return
	}
	m.filtered = nil
	for _, it := range m.items {
		if strings.Contains(it.filterValue(), q) {
			m.filtered = append(m.filtered, it)
		}
	}
}

func (m pickerModel) View() string {
	if m.canceled || m.selected != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title) + "\n\n")
	if m.loading {
		b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render("Loading...") + "\n")
		return b.String()
	}
	b.WriteString(m.input.View() + "\n\n")
	if len(m.filtered) == 0 {
		b.WriteString(m.styles.Muted.Render("No matches") + "\n")
		return b.String()
	}

	end := min(m.offset+m.maxVisible, len(m.filtered))
	for i := m.offset; i < end; i++ {
		it := m.filtered[i]
		prefix, style := "  ", m.styles.Body
		if i == m.cursor {
			prefix, style = m.styles.Cursor.Render("> "), m.styles.Selected
		}
		title := style.Render(it.Title)
		if it.Color != "" {
			title = m.styles.Swatch(it.Color) + " " + title
		}
		line := prefix + title
		if it.Description != "" {
			line += m.styles.Muted.Render("  " + it.Description)
		}
		b.WriteString(line + "\n")
	}
	if len(m.filtered) > m.maxVisible {
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("\n%d-%d of %d", m.offset+1, end, len(m.filtered))) + "\n")
	}
	b.WriteString("\n" + m.styles.Muted.Render("↑↓ move • enter select • esc cancel"))
	return b.String()
}

// PickLoading shows a spinner while load runs, then the picker. It returns
// the chosen item, or nil when canceled.
func PickLoading(title string, load func() ([]PickerItem, error)) (*PickerItem, error) {
	m := newPickerModel(title, nil, NewStylesWithTheme(ResolveTheme()))
	m.loading = true
	p := tea.NewProgram(m)
	go func() {
		items, err := load()
		p.Send(ItemsLoadedMsg{Items: items, Err: err})
	}()
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	fm := final.(pickerModel) //nolint:errcheck // always a pickerModel
	if fm.err != nil {
		return nil, fm.err
	}
	return fm.selected, nil
}
