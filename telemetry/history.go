package telemetry

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/store"
)

// Record is one dispatch as seen by the history.
type Record struct {
	Seq     uint64    `csv:"seq"`
	At      time.Time `csv:"-"`
	UnixMS  int64     `csv:"unix_ms"`
	Action  string    `csv:"action"`
	Level   int       `csv:"co2_level"`
	Version uint64    `csv:"version"`
}

// History records every dispatch into a bounded ring, feeds the window
// collector and writes both to the output manager.
type History struct {
	mu      sync.Mutex
	ring    []Record
	next    int
	full    bool
	seq     uint64
	windows []WindowStats

	now       func() time.Time
	collector *Collector
	out       *OutputManager
	logger    *slog.Logger
}

// HistoryOptions configures a History.
type HistoryOptions struct {
	Size      int              // Records kept in memory
	Collector *Collector       // Optional window stats
	Output    *OutputManager   // Optional CSV output; nil disables
	Logger    *slog.Logger     // Defaults to slog.Default()
	Now       func() time.Time // Defaults to time.Now
}

// NewHistory creates a history.
func NewHistory(opts HistoryOptions) *History {
	if opts.Size < 1 {
		opts.Size = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &History{
		ring:      make([]Record, opts.Size),
		now:       opts.Now,
		collector: opts.Collector,
		out:       opts.Output,
		logger:    opts.Logger,
	}
}

// Middleware returns store middleware that records each dispatch after it
// has been applied.
func (h *History) Middleware() store.Middleware {
	return func(next store.DispatchFunc) store.DispatchFunc {
		return func(a store.Action) store.State {
			st := next(a)
			h.record(a, st)
			return st
		}
	}
}

func (h *History) record(a store.Action, st store.State) {
	at := h.now()
	var level int
	if c, err := co2.Select(st); err == nil {
		level = c.Level
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	r := Record{
		Seq:     h.seq,
		At:      at,
		UnixMS:  at.UnixMilli(),
		Action:  a.Type,
		Level:   level,
		Version: st.Version(),
	}
	h.ring[h.next] = r
	h.next = (h.next + 1) % len(h.ring)
	if h.next == 0 {
		h.full = true
	}

	if err := h.out.WriteHistory(r); err != nil {
		h.logger.Error("failed to write history", "error", err)
	}

	if h.collector == nil {
		return
	}
	if h.collector.ShouldFlush(at) {
		h.flushLocked(h.collector.WindowEnd())
	}
	h.collector.Record(r)
}

func (h *History) flushLocked(end time.Time) {
	stats, ok := h.collector.Flush(end)
	if !ok {
		return
	}
	h.windows = append(h.windows, stats)
	h.logger.Info("stats", "window", stats)
	if err := h.out.WriteWindow(stats); err != nil {
		h.logger.Error("failed to write window stats", "error", err)
	}
}

// Records returns the retained records, oldest first.
func (h *History) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		return append([]Record(nil), h.ring[:h.next]...)
	}
	out := make([]Record, 0, len(h.ring))
	out = append(out, h.ring[h.next:]...)
	return append(out, h.ring[:h.next]...)
}

// Windows returns the window stats flushed so far.
func (h *History) Windows() []WindowStats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]WindowStats(nil), h.windows...)
}

// Close flushes the open window. The output manager is closed by its owner.
func (h *History) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.collector != nil {
		h.flushLocked(h.now())
	}
}
