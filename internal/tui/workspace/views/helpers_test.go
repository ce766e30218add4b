package views

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/store"
	"github.com/plannerhq/planner/internal/tui/workspace"
)

// recorder is a store effect that remembers every reduced action.
type recorder struct {
	mu      sync.Mutex
	actions []state.Action
}

func (r *recorder) Handle(_ context.Context, a state.Action, _ *state.State, _ func(state.Action)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
}

func (r *recorder) all() []state.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.actions)
}

func (r *recorder) find(kind state.Kind) (state.Action, bool) {
	for _, a := range r.all() {
		if a.Kind() == kind {
			return a, true
		}
	}
	return nil, false
}

// waitFor blocks until an action of kind was reduced and returns it.
func (r *recorder) waitFor(t *testing.T, kind state.Kind) state.Action {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := r.find(kind)
		return ok
	}, time.Second, 5*time.Millisecond, "no %s dispatched", kind)
	a, _ := r.find(kind)
	return a
}

type harness struct {
	session *workspace.Session
	store   *store.Store
	rec     *recorder
}

// flush dispatches a marker and waits until the store reduced it, so every
// earlier dispatch has been recorded.
func (h *harness) flush(t *testing.T) {
	t.Helper()
	before := len(h.rec.all())
	h.store.Dispatch(state.SetUserRedirectDone{})
	require.Eventually(t, func() bool {
		for _, a := range h.rec.all()[before:] {
			if a.Kind() == state.KindSetUserRedirectDone {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

func (h *harness) has(kind state.Kind) bool {
	_, ok := h.rec.find(kind)
	return ok
}

func newHarness(t *testing.T, initial *state.State) *harness {
	t.Helper()
	rec := &recorder{}
	st := store.New(store.Options{Initial: initial, Effects: []store.Effect{rec}})
	session := workspace.NewTestSession(st)
	t.Cleanup(func() {
		session.Shutdown()
		st.Close()
	})
	return &harness{session: session, store: st, rec: rec}
}

func fixtureState() *state.State {
	s := state.Initial(time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC))
	s.Employees = models.EmployeePage{
		Results: []models.Employee{
			{ID: "e1", Name: "Ada", Surname: "Lovelace", Email: "ada@example.com"},
			{ID: "e2", Name: "Grace", Surname: "Hopper", Email: "grace@example.com", WorksRemotely: true},
		},
		TotalItems:  7,
		TotalPages:  2,
		PageSize:    5,
		CurrentPage: 1,
	}
	s.Projects = models.ProjectPage{
		Results: []models.Project{
			{ID: "p1", Name: "Apollo", Color: "#1a73e8"},
			{ID: "p2", Name: "Gemini", Color: "#ff8800", MustBeOnPremises: true},
		},
		TotalItems:  2,
		TotalPages:  1,
		PageSize:    5,
		CurrentPage: 1,
	}
	return s
}

// collect runs cmd and returns the messages it produced, unpacking batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func press(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m tea.Model, text string) tea.Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}
