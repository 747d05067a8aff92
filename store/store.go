// Package store provides the centralized state container: named slices with
// pure reducers, immutable snapshots, synchronous dispatch and subscriptions.
package store

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

var (
	// ErrUnknownSlice is returned when a selector names a slice the store does not hold.
	ErrUnknownSlice = errors.New("store: unknown slice")
	// ErrSliceType is returned when a selector expects a different slice type.
	ErrSliceType = errors.New("store: slice type mismatch")
	// ErrDuplicateSlice is returned by New when two slices share a name.
	ErrDuplicateSlice = errors.New("store: duplicate slice")
	// ErrEmptySliceName is returned by New for a slice without a name.
	ErrEmptySliceName = errors.New("store: empty slice name")
	// ErrReducerDispatch is the panic value when a reducer dispatches.
	ErrReducerDispatch = errors.New("store: reducers may not dispatch actions")
)

// DispatchFunc applies an action and returns the resulting snapshot.
type DispatchFunc func(Action) State

// Middleware wraps the reduction of one action. The first middleware passed
// to WithMiddleware sees the action first and the resulting state last.
// Listeners run after the whole chain has returned.
type Middleware func(next DispatchFunc) DispatchFunc

// Option configures a Store.
type Option func(*Store)

// WithMiddleware appends middleware to the dispatch chain.
func WithMiddleware(mw ...Middleware) Option {
	return func(s *Store) {
		s.middleware = append(s.middleware, mw...)
	}
}

type listener struct {
	id uint64
	fn func()
}

// Store owns the state tree. Dispatch must be called from a single goroutine
// (see the game package); State, Subscribe and unsubscribe are safe from any goroutine.
type Store struct {
	slices     []Slice
	middleware []Middleware
	dispatch   DispatchFunc

	state    atomic.Pointer[State]
	reducing bool

	mu        sync.Mutex
	listeners []listener
	nextID    uint64
}

// New builds a store holding the given slices, each at its initial state.
func New(sl []Slice, opts ...Option) (*Store, error) {
	initial := make(map[string]any, len(sl))
	for _, slice := range sl {
		name := slice.Name()
		if name == "" {
			return nil, ErrEmptySliceName
		}
		if _, dup := initial[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSlice, name)
		}
		initial[name] = slice.Initial()
	}

	s := &Store{slices: slices.Clone(sl)}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(&State{slices: initial})

	d := DispatchFunc(s.reduce)
	for i := len(s.middleware) - 1; i >= 0; i-- {
		d = s.middleware[i](d)
	}
	s.dispatch = d
	return s, nil
}

// State returns the current snapshot.
func (s *Store) State() State {
	return *s.state.Load()
}

// Dispatch runs the action through the middleware chain and every slice
// reducer, publishes the new snapshot, then notifies listeners. Middleware
// returns before listeners run, so it sees the snapshot its own action
// produced even when a listener dispatches again. Dispatch returns the
// latest snapshot after notification.
func (s *Store) Dispatch(a Action) State {
	s.dispatch(a)
	s.notify()
	return s.State()
}

// Subscribe registers fn to run after every dispatch. The returned function
// removes it; calling that more than once is harmless.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		panic("store: nil listener")
	}

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
			s.mu.Unlock()
		})
	}
}

// Subscribers returns the number of registered listeners.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// notify runs every listener registered when the pass starts. Listeners
// registered or removed while notifying only affect later dispatches.
func (s *Store) notify() {
	s.mu.Lock()
	pass := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range pass {
		l.fn()
	}
}

func (s *Store) reduce(a Action) State {
	if s.reducing {
		panic(ErrReducerDispatch)
	}
	s.reducing = true
	defer func() { s.reducing = false }()

	prev := s.state.Load()
	var changed map[string]any
	for _, slice := range s.slices {
		name := slice.Name()
		next, diff := slice.Reduce(prev.slices[name], a)
		if !diff {
			continue
		}
		if changed == nil {
			changed = maps.Clone(prev.slices)
		}
		changed[name] = next
	}

	if changed == nil {
		return *prev
	}
	st := &State{slices: changed, version: prev.version + 1}
	s.state.Store(st)
	return *st
}
