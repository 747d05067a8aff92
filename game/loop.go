// Package game owns the store at runtime. Every dispatch runs on one
// goroutine: the Run loop in web mode, or the frame loop calling Update in
// window mode.
package game

import (
	"context"
	"errors"
	"sync"

	"github.com/pthm-cable/cavern/store"
)

// ErrStopped is returned by Dispatch once the game has stopped.
var ErrStopped = errors.New("game: stopped")

// Options configures a Game.
type Options struct {
	QueueSize int // Commands buffered before Dispatch blocks (0 = 64)
}

type command struct {
	action store.Action
	reply  chan store.State
}

// Game serializes dispatches from any goroutine onto its owner goroutine.
type Game struct {
	store    *store.Store
	commands chan command

	done     chan struct{}
	stopOnce sync.Once
}

// New creates a game around s. s must not be dispatched to by anything else.
func New(s *store.Store, opts Options) *Game {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	return &Game{
		store:    s,
		commands: make(chan command, opts.QueueSize),
		done:     make(chan struct{}),
	}
}

// State returns the current snapshot. Safe from any goroutine.
func (g *Game) State() store.State {
	return g.store.State()
}

// Subscribe registers fn with the store. fn runs on the owner goroutine.
func (g *Game) Subscribe(fn func()) (unsubscribe func()) {
	return g.store.Subscribe(fn)
}

// Dispatch queues a for the owner goroutine and waits for the snapshot it
// produced. If ctx ends after the command was queued, the action may still
// be applied.
func (g *Game) Dispatch(ctx context.Context, a store.Action) (store.State, error) {
	reply := make(chan store.State, 1)

	select {
	case g.commands <- command{action: a, reply: reply}:
	case <-g.done:
		return store.State{}, ErrStopped
	case <-ctx.Done():
		return store.State{}, ctx.Err()
	}

	select {
	case st := <-reply:
		return st, nil
	case <-g.done:
		return store.State{}, ErrStopped
	case <-ctx.Done():
		return store.State{}, ctx.Err()
	}
}

// DispatchLocal applies a immediately. Only the owner goroutine may call it.
func (g *Game) DispatchLocal(a store.Action) store.State {
	return g.store.Dispatch(a)
}

// Run applies queued commands until ctx ends, then stops the game.
func (g *Game) Run(ctx context.Context) error {
	defer g.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-g.done:
			return nil
		case cmd := <-g.commands:
			g.apply(cmd)
		}
	}
}

// Update applies every queued command without blocking and returns how many
// ran. Frame loops call it once per frame.
func (g *Game) Update() int {
	n := 0
	for {
		select {
		case cmd := <-g.commands:
			g.apply(cmd)
			n++
		default:
			return n
		}
	}
}

// Stop ends the game; pending and future Dispatch calls return ErrStopped.
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.done) })
}

// Done is closed when the game stops.
func (g *Game) Done() <-chan struct{} {
	return g.done
}

func (g *Game) apply(cmd command) {
	cmd.reply <- g.store.Dispatch(cmd.action)
}
