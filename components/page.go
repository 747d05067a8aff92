// Package components defines ECS components for the page's presentational components.
package components

import "github.com/pthm-cable/cavern/store"

// Element kinds.
const (
	KindContainer Kind = iota // Groups child regions
	KindValue                 // Label followed by a value span
	KindButton                // Clickable control
)

// Kind tells renderers which markup an entity produces.
type Kind uint8

// Region places a presentational component in the page tree.
// Every page entity has one.
type Region struct {
	ID     string // Element id; may be empty for anonymous elements
	Parent string // Parent element id ("" for the root)
	Order  int    // Position among siblings
	Kind   Kind
}

// Label is the text rendered before a value, e.g. "Water: ".
type Label struct {
	Text string
}

// Static holds a literal value for components not yet wired to the store.
type Static struct {
	Text string
}

// Selector derives a component's value from the state tree.
type Selector struct {
	Slice  string // Slice the projection reads, for error reports
	Select func(store.State) (any, error)
}

// Rendered caches the value a selector produced at the last render.
type Rendered struct {
	Value any
	Valid bool // False until the first render
}

// Dispatcher sends an action when its component is activated.
type Dispatcher struct {
	Text   string // Button caption
	Action func() store.Action
}
