package ui

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/cavern/components"
	"github.com/pthm-cable/cavern/store"
)

var (
	// ErrNoRoot is returned when a page has no region without a parent.
	ErrNoRoot = errors.New("ui: page has no root region")
	// ErrOrphan is returned when a region names a parent that does not exist.
	ErrOrphan = errors.New("ui: region parent not found")
	// ErrNoButton is returned by Page.Action for an id that is not a button.
	ErrNoButton = errors.New("ui: no such button")
)

// RenderError reports a component whose selector could not derive its value.
type RenderError struct {
	Region string
	Slice  string
	Err    error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("ui: render %s (slice %q): %v", e.Region, e.Slice, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Page holds the presentational components of one page as ECS entities.
// Each entity carries a Region plus the capabilities it needs:
// Label+Static, Label+Selector+Rendered, or Dispatcher.
// A Page is not safe for concurrent use; View serializes access.
type Page struct {
	world *ecs.World

	containerMapper *ecs.Map1[components.Region]
	staticMapper    *ecs.Map3[components.Region, components.Label, components.Static]
	selectorMapper  *ecs.Map4[components.Region, components.Label, components.Selector, components.Rendered]
	buttonMapper    *ecs.Map2[components.Region, components.Dispatcher]

	regionFilter   *ecs.Filter1[components.Region]
	selectorFilter *ecs.Filter3[components.Region, components.Selector, components.Rendered]

	labelMap  *ecs.Map[components.Label]
	staticMap *ecs.Map[components.Static]
	selMap    *ecs.Map[components.Selector]
	dispMap   *ecs.Map[components.Dispatcher]

	nextOrder map[string]int
}

// NewPage creates an empty page.
func NewPage() *Page {
	world := ecs.NewWorld()
	return &Page{
		world:           world,
		containerMapper: ecs.NewMap1[components.Region](world),
		staticMapper:    ecs.NewMap3[components.Region, components.Label, components.Static](world),
		selectorMapper:  ecs.NewMap4[components.Region, components.Label, components.Selector, components.Rendered](world),
		buttonMapper:    ecs.NewMap2[components.Region, components.Dispatcher](world),
		regionFilter:    ecs.NewFilter1[components.Region](world),
		selectorFilter:  ecs.NewFilter3[components.Region, components.Selector, components.Rendered](world),
		labelMap:        ecs.NewMap[components.Label](world),
		staticMap:       ecs.NewMap[components.Static](world),
		selMap:          ecs.NewMap[components.Selector](world),
		dispMap:         ecs.NewMap[components.Dispatcher](world),
		nextOrder:       make(map[string]int),
	}
}

func (p *Page) region(id, parent string, kind components.Kind) *components.Region {
	order := p.nextOrder[parent]
	p.nextOrder[parent] = order + 1
	return &components.Region{ID: id, Parent: parent, Order: order, Kind: kind}
}

// Container adds a grouping region.
func (p *Page) Container(id, parent string) {
	p.containerMapper.NewEntity(p.region(id, parent, components.KindContainer))
}

// StaticValue adds a labelled value that always shows text.
func (p *Page) StaticValue(id, parent, label, text string) {
	p.staticMapper.NewEntity(
		p.region(id, parent, components.KindValue),
		&components.Label{Text: label},
		&components.Static{Text: text},
	)
}

// SelectorValue adds a labelled value derived from the state tree by sel.
// slice names the slice sel reads and is used in render errors.
func (p *Page) SelectorValue(id, parent, label, slice string, sel func(store.State) (any, error)) {
	p.selectorMapper.NewEntity(
		p.region(id, parent, components.KindValue),
		&components.Label{Text: label},
		&components.Selector{Slice: slice, Select: sel},
		&components.Rendered{},
	)
}

// Button adds a control that dispatches action() once per activation.
func (p *Page) Button(id, parent, caption string, action func() store.Action) {
	p.buttonMapper.NewEntity(
		p.region(id, parent, components.KindButton),
		&components.Dispatcher{Text: caption, Action: action},
	)
}

// Node is one resolved element of the page tree.
type Node struct {
	ID       string
	Kind     components.Kind
	Label    string
	Value    string
	Caption  string
	Children []*Node

	order  int
	parent string
}

// IsContainer reports whether n groups other nodes.
func (n *Node) IsContainer() bool { return n.Kind == components.KindContainer }

// IsButton reports whether n is a dispatching control.
func (n *Node) IsButton() bool { return n.Kind == components.KindButton }

// Walk calls fn for n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Tree resolves the page against st. Selector-driven values are derived
// from st; a failing selector aborts the render with a *RenderError.
func (p *Page) Tree(st store.State) (*Node, error) {
	var nodes []*Node
	var renderErr error

	query := p.regionFilter.Query()
	for query.Next() {
		entity := query.Entity()
		region := query.Get()
		if renderErr != nil {
			continue
		}

		n := &Node{ID: region.ID, Kind: region.Kind, order: region.Order, parent: region.Parent}
		if p.labelMap.Has(entity) {
			n.Label = p.labelMap.Get(entity).Text
		}
		switch {
		case p.staticMap.Has(entity):
			n.Value = p.staticMap.Get(entity).Text
		case p.selMap.Has(entity):
			sel := p.selMap.Get(entity)
			v, err := sel.Select(st)
			if err != nil {
				renderErr = &RenderError{Region: region.ID, Slice: sel.Slice, Err: err}
				continue
			}
			n.Value = fmt.Sprint(v)
		case p.dispMap.Has(entity):
			n.Caption = p.dispMap.Get(entity).Text
		}
		nodes = append(nodes, n)
	}
	if renderErr != nil {
		return nil, renderErr
	}
	return link(nodes)
}

// link assembles resolved nodes into a tree ordered by Region.Order.
func link(nodes []*Node) (*Node, error) {
	byID := make(map[string]*Node, len(nodes))
	var root *Node
	for _, n := range nodes {
		if n.parent == "" {
			root = n
		}
		if n.ID != "" {
			byID[n.ID] = n
		}
	}
	if root == nil {
		return nil, ErrNoRoot
	}

	for _, n := range nodes {
		if n == root {
			continue
		}
		parent, ok := byID[n.parent]
		if !ok {
			return nil, fmt.Errorf("%w: %q wants %q", ErrOrphan, n.ID, n.parent)
		}
		parent.Children = append(parent.Children, n)
	}
	for _, n := range nodes {
		slices.SortFunc(n.Children, func(a, b *Node) int { return cmp.Compare(a.order, b.order) })
	}
	return root, nil
}

// Action returns the action of the button with the given id.
func (p *Page) Action(id string) (store.Action, error) {
	var action func() store.Action

	query := p.regionFilter.Query()
	for query.Next() {
		entity := query.Entity()
		region := query.Get()
		if action == nil && region.ID == id && p.dispMap.Has(entity) {
			action = p.dispMap.Get(entity).Action
		}
	}
	if action == nil {
		return store.Action{}, fmt.Errorf("%w: %q", ErrNoButton, id)
	}
	return action(), nil
}

// Change is a selector-driven region whose derived value differs from the
// previous refresh.
type Change struct {
	ID    string
	Label string
	Value string
}

// refresh evaluates every selector against st. Unless all is set, the
// results are recorded and only regions whose value changed (or were never
// rendered) are returned; with all set every region is returned and the
// record is left alone.
func (p *Page) refresh(st store.State, all bool) ([]Change, error) {
	var changes []Change
	var renderErr error

	query := p.selectorFilter.Query()
	for query.Next() {
		entity := query.Entity()
		region, sel, rendered := query.Get()
		if renderErr != nil {
			continue
		}

		v, err := sel.Select(st)
		if err != nil {
			renderErr = &RenderError{Region: region.ID, Slice: sel.Slice, Err: err}
			continue
		}
		if !all {
			if rendered.Valid && equal(rendered.Value, v) {
				continue
			}
			rendered.Value, rendered.Valid = v, true
		}

		var label string
		if p.labelMap.Has(entity) {
			label = p.labelMap.Get(entity).Text
		}
		changes = append(changes, Change{ID: region.ID, Label: label, Value: fmt.Sprint(v)})
	}
	if renderErr != nil {
		return nil, renderErr
	}
	slices.SortFunc(changes, func(a, b Change) int { return cmp.Compare(a.ID, b.ID) })
	return changes, nil
}

// equal is shallow equality: == for comparable values, never equal otherwise.
func equal(a, b any) (eq bool) {
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}
