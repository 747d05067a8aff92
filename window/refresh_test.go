package window

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/store"
	"github.com/pthm-cable/cavern/ui"
)

func newCo2Store(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New([]store.Slice{co2.Slice()})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func TestRefresherMarksStaleOnChange(t *testing.T) {
	s := newCo2Store(t)
	r := newRefresher(ui.NewView(ui.Layout(), "t"), s.State, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Subscribe(r.onChange)

	if !r.stale {
		t.Fatal("refresher must start stale")
	}
	r.stale = false

	tests := []struct {
		name      string
		action    store.Action
		wantStale bool
	}{
		{"first add", co2.AddCo2(), true},
		{"no-op", store.Action{Type: "water/add"}, false},
		{"second add", co2.AddCo2(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r.stale = false
			s.Dispatch(tt.action)
			if r.stale != tt.wantStale {
				t.Errorf("stale = %v, want %v", r.stale, tt.wantStale)
			}
			if r.err != nil {
				t.Errorf("err = %v", r.err)
			}
		})
	}
}

func TestRefresherKeepsRenderFailure(t *testing.T) {
	page := ui.NewPage()
	page.Container("root", "")
	page.SelectorValue("broken", "root", "Resources: ", "resources", func(st store.State) (any, error) {
		return store.Select[int](st, "resources")
	})

	s := newCo2Store(t)
	r := newRefresher(ui.NewView(page, "t"), s.State, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Subscribe(r.onChange)

	s.Dispatch(co2.AddCo2())

	var renderErr *ui.RenderError
	if !errors.As(r.err, &renderErr) {
		t.Fatalf("err = %v, want *ui.RenderError", r.err)
	}
	if renderErr.Region != "broken" || !errors.Is(r.err, store.ErrUnknownSlice) {
		t.Errorf("err = %v, want region broken and ErrUnknownSlice", r.err)
	}
}
