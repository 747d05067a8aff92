// Package co2 defines the co2 slice of the state tree.
package co2

import "github.com/pthm-cable/cavern/store"

// Name is the key of the co2 slice in the state tree.
const Name = "co2"

// ActionAdd increments the CO2 level by one unit.
const ActionAdd = Name + "/addCo2"

// State holds the carbon dioxide level. Level starts at 0 and only grows.
type State struct {
	Level int `json:"level"`
}

// Initial returns the slice state at store creation.
func Initial() State {
	return State{Level: 0}
}

// Increment returns s with one more unit of CO2.
func Increment(s State) State {
	s.Level++
	return s
}

// AddCo2 is the action creator for ActionAdd.
func AddCo2() store.Action {
	return store.Action{Type: ActionAdd}
}

// Reduce applies a to s. Actions other than ActionAdd return s unchanged.
func Reduce(s State, a store.Action) State {
	switch a.Type {
	case ActionAdd:
		return Increment(s)
	default:
		return s
	}
}

// Slice registers Reduce under Name.
func Slice() store.Slice {
	return store.NewSlice(Name, Initial(), Reduce)
}

// Select projects the co2 slice out of a snapshot.
func Select(st store.State) (State, error) {
	return store.Select[State](st, Name)
}
