package ui

import (
	"io"
	"sync"

	"github.com/pthm-cable/cavern/store"
)

// View serializes access to a Page so front ends on different goroutines
// can render it and the store listener can refresh it.
type View struct {
	mu    sync.Mutex
	page  *Page
	title string
}

// NewView wraps p. title is used as the document title.
func NewView(p *Page, title string) *View {
	return &View{page: p, title: title}
}

// Tree resolves the page against st.
func (v *View) Tree(st store.State) (*Node, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.Tree(st)
}

// Action returns the action of the button with the given id.
func (v *View) Action(id string) (store.Action, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.Action(id)
}

// Refresh re-derives every selector-driven region from st and returns those
// whose value differs from the previous Refresh.
func (v *View) Refresh(st store.State) ([]Change, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.refresh(st, false)
}

// Snapshot returns every selector-driven region derived from st without
// affecting what Refresh compares against.
func (v *View) Snapshot(st store.State) ([]Change, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page.refresh(st, true)
}

// Render writes the full HTML document for st. Nothing is written when the
// render fails.
func (v *View) Render(w io.Writer, st store.State) error {
	root, err := v.Tree(st)
	if err != nil {
		return err
	}
	return RenderDocument(w, v.title, root)
}
