// Package store runs the planner's state container: a FIFO action queue
// drained by a single goroutine that reduces, publishes and fans out to
// effects.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/plannerhq/planner/internal/state"
)

// ErrClosed is returned by WaitFor once the store has been closed.
var ErrClosed = errors.New("store closed")

// Change is published to subscribers after every reduced action.
type Change struct {
	Action state.Action
	State  *state.State
}

// Effect reacts to reduced actions. Handle is called on the store's run
// goroutine and must not block; long work belongs in a goroutine that
// reports back through dispatch.
type Effect interface {
	Handle(ctx context.Context, a state.Action, s *state.State, dispatch func(state.Action))
}

// EffectFunc adapts a function to Effect.
type EffectFunc func(ctx context.Context, a state.Action, s *state.State, dispatch func(state.Action))

func (f EffectFunc) Handle(ctx context.Context, a state.Action, s *state.State, dispatch func(state.Action)) {
	f(ctx, a, s, dispatch)
}

// Options configures a Store.
type Options struct {
	// Initial is the first snapshot. Defaults to state.Initial(time.Now()).
	Initial *state.State
	Effects []Effect
	Logger  *slog.Logger
}

// Store owns the current snapshot. All reductions happen on one goroutine
// in dispatch order, so no two transitions ever interleave.
type Store struct {
	log     *slog.Logger
	effects []Effect

	current atomic.Pointer[state.State]

	mu     sync.Mutex
	queue  []state.Action
	closed bool
	wake   chan struct{}

	subMu  sync.Mutex
	subs   map[uint64]func(Change)
	nextID uint64

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a store and starts its run goroutine. Call Close to stop it.
func New(opts Options) *Store {
	initial := opts.Initial
	if initial == nil {
		initial = state.Initial(time.Now())
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		log:     log,
		effects: opts.Effects,
		wake:    make(chan struct{}, 1),
		subs:    make(map[uint64]func(Change)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.current.Store(initial)
	go s.run()
	return s
}

// Dispatch enqueues a for reduction and returns immediately.
// Actions dispatched after Close are dropped.
func (s *Store) Dispatch(a state.Action) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.log.Debug("dropping action after close", "action", a.Kind())
		return
	}
	s.queue = append(s.queue, a)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// State returns the current snapshot.
func (s *Store) State() *state.State {
	return s.current.Load()
}

// Select applies sel to the current snapshot.
func Select[T any](s *Store, sel state.Selector[T]) T {
	return sel(s.State())
}

// Subscribe registers fn for every future change. fn runs on the store's
// goroutine and must return quickly. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

// WaitFor blocks until an action satisfying match has been reduced. The
// optional actions are dispatched after the watch is in place, so their
// outcome cannot slip past.
func (s *Store) WaitFor(ctx context.Context, match func(state.Action) bool, then ...state.Action) (Change, error) {
	found := make(chan Change, 1)
	unsubscribe := s.Subscribe(func(c Change) {
		if match(c.Action) {
			select {
			case found <- c:
			default:
			}
		}
	})
	defer unsubscribe()

	for _, a := range then {
		s.Dispatch(a)
	}

	select {
	case c := <-found:
		return c, nil
	case <-ctx.Done():
		return Change{}, ctx.Err()
	case <-s.done:
		return Change{}, ErrClosed
	}
}

// Close stops the run goroutine and cancels the context handed to effects.
// Queued actions that have not been reduced yet are discarded.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		s.cancel()
		<-s.done
	})
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.wake:
		}
		for {
			a, ok := s.pop()
			if !ok {
				break
			}
			s.apply(a)
			if s.ctx.Err() != nil {
				return
			}
		}
	}
}

func (s *Store) pop() (state.Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	a := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return a, true
}

func (s *Store) apply(a state.Action) {
	prev := s.current.Load()
	next := state.Reduce(prev, a)
	s.current.Store(next)
	s.log.Debug("action", "kind", a.Kind(), "changed", next != prev)

	s.subMu.Lock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()

	c := Change{Action: a, State: next}
	for _, fn := range subs {
		fn(c)
	}
	for _, e := range s.effects {
		e.Handle(s.ctx, a, next, s.Dispatch)
	}
}
