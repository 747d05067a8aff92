package store

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// State is an immutable snapshot of the state tree.
// Version increases by one for every dispatch that changed at least one slice,
// so two snapshots with the same Version are the same tree.
type State struct {
	slices  map[string]any
	version uint64
}

// Slice returns the raw state of the named slice.
func (s State) Slice(name string) (any, bool) {
	v, ok := s.slices[name]
	return v, ok
}

// Names returns the registered slice names in sorted order.
func (s State) Names() []string {
	return slices.Sorted(maps.Keys(s.slices))
}

// Version returns the snapshot's change counter.
func (s State) Version() uint64 {
	return s.version
}

// MarshalJSON encodes the tree as an object keyed by slice name.
func (s State) MarshalJSON() ([]byte, error) {
	if s.slices == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.slices)
}

// Select projects the named slice out of a snapshot as T.
// It fails with ErrUnknownSlice when no such slice is registered and
// ErrSliceType when the slice holds a different type.
func Select[T any](s State, name string) (T, error) {
	var zero T
	v, ok := s.slices[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrUnknownSlice, name)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: slice %q holds %T, want %T", ErrSliceType, name, v, zero)
	}
	return t, nil
}
