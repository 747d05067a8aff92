package window

import (
	"log/slog"

	"github.com/pthm-cable/cavern/store"
	"github.com/pthm-cable/cavern/ui"
)

// refresher is the window's store listener. It marks the layout stale when a
// selector-driven region changes and keeps the first render failure.
// It runs on the frame loop goroutine, like every dispatch in window mode.
type refresher struct {
	view   *ui.View
	state  func() store.State
	logger *slog.Logger

	stale bool
	err   error
}

func newRefresher(v *ui.View, state func() store.State, logger *slog.Logger) *refresher {
	// Stale until the first layout.
	return &refresher{view: v, state: state, logger: logger, stale: true}
}

func (r *refresher) onChange() {
	changes, err := r.view.Refresh(r.state())
	if err != nil {
		r.logger.Error("refresh failed", "error", err)
		if r.err == nil {
			r.err = err
		}
		return
	}
	for _, c := range changes {
		r.logger.Debug("region changed", "id", c.ID, "value", c.Value)
	}
	if len(changes) > 0 {
		r.stale = true
	}
}
