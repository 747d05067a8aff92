package store

import "fmt"

// Slice is a named, independently reducible portion of the state tree.
type Slice interface {
	// Name is the key the slice is addressed by in State.
	Name() string
	// Initial returns the slice state at store creation.
	Initial() any
	// Reduce applies an action to the current slice state.
	// It returns the next state and whether it differs from current.
	Reduce(current any, a Action) (next any, changed bool)
}

// Reducer maps the current slice state and an action to the next slice state.
// Reducers must be pure and return current unchanged for actions they do not handle.
type Reducer[S comparable] func(current S, a Action) S

type typedSlice[S comparable] struct {
	name    string
	initial S
	reduce  Reducer[S]
}

// NewSlice builds a Slice from a typed initial value and reducer.
// Change detection uses ==, so S must be a value type whose equality means "unchanged".
func NewSlice[S comparable](name string, initial S, reduce Reducer[S]) Slice {
	return typedSlice[S]{name: name, initial: initial, reduce: reduce}
}

func (s typedSlice[S]) Name() string { return s.name }

func (s typedSlice[S]) Initial() any { return s.initial }

func (s typedSlice[S]) Reduce(current any, a Action) (any, bool) {
	cur, ok := current.(S)
	if !ok {
		// The store only ever hands a slice the value it produced.
		panic(fmt.Sprintf("store: slice %q holds %T, want %T", s.name, current, s.initial))
	}
	next := s.reduce(cur, a)
	return next, next != cur
}
