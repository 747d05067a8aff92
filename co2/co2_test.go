package co2

import (
	"reflect"
	"testing"

	"github.com/pthm-cable/cavern/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New([]store.Slice{Slice()})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func mustLevel(t *testing.T, st store.State) int {
	t.Helper()
	c, err := Select(st)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	return c.Level
}

func TestIncrementDoesNotMutateInput(t *testing.T) {
	s := State{Level: 4}
	next := Increment(s)
	if s.Level != 4 {
		t.Errorf("input Level = %d after Increment, want 4", s.Level)
	}
	if next.Level != 5 {
		t.Errorf("Increment().Level = %d, want 5", next.Level)
	}
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name   string
		action store.Action
		want   int
	}{
		{"add", AddCo2(), 3},
		{"unknown", store.Action{Type: "unknown/action"}, 2},
		{"malformed", store.Action{}, 2},
		{"other slice prefix", store.Action{Type: "co2/removeCo2"}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(State{Level: 2}, tt.action)
			if got.Level != tt.want {
				t.Errorf("Reduce(%q).Level = %d, want %d", tt.action.Type, got.Level, tt.want)
			}
		})
	}
}

func TestInitialLoad(t *testing.T) {
	s := newStore(t)
	if got := mustLevel(t, s.State()); got != 0 {
		t.Errorf("initial level = %d, want 0", got)
	}
}

func TestClicksAreCounted(t *testing.T) {
	for _, clicks := range []int{1, 3, 100} {
		s := newStore(t)
		for i := 0; i < clicks; i++ {
			s.Dispatch(AddCo2())
		}
		if got := mustLevel(t, s.State()); got != clicks {
			t.Errorf("after %d clicks level = %d, want %d", clicks, got, clicks)
		}
	}
}

func TestUnknownActionIsNoOp(t *testing.T) {
	s := newStore(t)
	s.Dispatch(AddCo2())
	before := s.State()

	after := s.Dispatch(store.Action{Type: "unknown/action"})
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state changed on unknown action: %+v -> %+v", before, after)
	}
}

func TestLevelIsMonotonic(t *testing.T) {
	s := newStore(t)
	actions := []store.Action{AddCo2(), {Type: "x"}, AddCo2(), {}, AddCo2(), {Type: "co2/reset"}}
	prev := 0
	for _, a := range actions {
		got := mustLevel(t, s.Dispatch(a))
		if got < prev {
			t.Fatalf("level decreased from %d to %d on %q", prev, got, a.Type)
		}
		prev = got
	}
	if prev != 3 {
		t.Errorf("final level = %d, want 3", prev)
	}
}
