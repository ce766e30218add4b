package workspace

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plannerhq/planner/internal/appctx"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/effects"
	"github.com/plannerhq/planner/internal/i18n"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/store"
	"github.com/plannerhq/planner/internal/tui"
)

// Session connects the workspace to the store: it forwards every change
// and notification as a tea.Msg and owns the assignment poller.
type Session struct {
	store  *store.Store
	locale i18n.Locale
	styles *tui.Styles

	pageSize        int
	plannerPageSize int
	poller          *effects.Refresher

	detach []func()

	mu    sync.Mutex
	inbox []tea.Msg
	ready chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSession creates a session from the fully-initialized App. Network
// failures are shown as toasts for as long as the session lives.
func NewSession(app *appctx.App) *Session {
	s := newSession(app.Store, app.Locale, tui.NewStylesWithTheme(tui.ResolveTheme()), app.Config)
	app.SetNotifier(s.notify)
	s.detach = append(s.detach, func() { app.SetNotifier(nil) })
	return s
}

// NewTestSession returns a session over st with default config and the
// plain theme.
func NewTestSession(st *store.Store) *Session {
	return newSession(st, i18n.NewLocale("en-US"), tui.NewStylesWithTheme(tui.NoColorTheme()), config.Default())
}

func newSession(st *store.Store, locale i18n.Locale, styles *tui.Styles, cfg *config.Config) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		store:           st,
		locale:          locale,
		styles:          styles,
		pageSize:        cfg.PageSize,
		plannerPageSize: cfg.PlannerPageSize,
		poller:          effects.NewRefresher(cfg.PollInterval),
		ready:           make(chan struct{}, 1),
		ctx:             ctx,
		cancel:          cancel,
	}
	s.detach = append(s.detach, st.Subscribe(func(c store.Change) {
		s.push(StoreChangedMsg{Action: c.Action, State: c.State})
	}))
	return s
}

func (s *Session) Styles() *tui.Styles { return s.styles }

func (s *Session) Locale() i18n.Locale { return s.locale }

// PageSize is the page size of the settings lists.
func (s *Session) PageSize() int { return s.pageSize }

// PlannerPageSize is the number of employee rows on the week grid.
func (s *Session) PlannerPageSize() int { return s.plannerPageSize }

// State returns the current snapshot.
func (s *Session) State() *state.State { return s.store.State() }

// Dispatch sends a to the store. Safe from any goroutine.
func (s *Session) Dispatch(a state.Action) { s.store.Dispatch(a) }

// DispatchCmd wraps Dispatch as a command.
func (s *Session) DispatchCmd(actions ...state.Action) tea.Cmd {
	return func() tea.Msg {
		for _, a := range actions {
			s.store.Dispatch(a)
		}
		return nil
	}
}

// Listen returns a command that delivers the next queued message. The
// workspace re-issues it after every delivery.
func (s *Session) Listen() tea.Cmd {
	return func() tea.Msg {
		for {
			if msg, ok := s.pop(); ok {
				return msg
			}
			select {
			case <-s.ready:
			case <-s.ctx.Done():
				return nil
			}
		}
	}
}

// StartPolling calls fn every poll interval until StopPolling or
// Shutdown. A running poller is replaced.
func (s *Session) StartPolling(fn func()) {
	s.poller.Start(s.ctx, fn)
}

func (s *Session) StopPolling() { s.poller.Stop() }

// Polling reports whether the poller is running.
func (s *Session) Polling() bool { return s.poller.Active() }

// PollInterval is the assignment refresh period.
func (s *Session) PollInterval() time.Duration { return s.poller.Interval() }

// Shutdown stops polling and detaches from the store and notifier.
func (s *Session) Shutdown() {
	s.poller.Stop()
	for _, fn := range s.detach {
		fn()
	}
	s.cancel()
}

func (s *Session) notify(message string) {
	s.push(NoticeMsg{Text: message})
}

func (s *Session) push(msg tea.Msg) {
	s.mu.Lock()
	s.inbox = append(s.inbox, msg)
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Session) pop() (tea.Msg, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.inbox) == 0 {
		return nil, false
	}
	msg := s.inbox[0]
	s.inbox[0] = nil
	s.inbox = s.inbox[1:]
	return msg, true
}
