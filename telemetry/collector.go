package telemetry

import "time"

// Collector accumulates dispatch records within fixed wall-clock windows and
// produces WindowStats. Windows without dispatches produce nothing.
type Collector struct {
	window time.Duration

	// Current window tracking
	windowStart time.Time
	started     bool

	// Counters for current window
	dispatches int
	changed    int
	malformed  int
	level      int
	gaps       []float64

	// Carried across windows
	lastAt      time.Time
	lastVersion uint64
}

// NewCollector creates a collector with the given window length.
func NewCollector(window time.Duration) *Collector {
	if window <= 0 {
		window = 10 * time.Second
	}
	return &Collector{window: window}
}

// ShouldFlush reports whether the current window has ended by now.
func (c *Collector) ShouldFlush(now time.Time) bool {
	return c.started && now.Sub(c.windowStart) >= c.window
}

// WindowEnd returns when the current window closes.
func (c *Collector) WindowEnd() time.Time {
	return c.windowStart.Add(c.window)
}

// Record adds one dispatch to the current window, opening it if needed.
func (c *Collector) Record(r Record) {
	if !c.started {
		c.started = true
		c.windowStart = r.At
	}

	c.dispatches++
	if r.Version != c.lastVersion {
		c.changed++
		c.lastVersion = r.Version
	}
	if r.Action == "" {
		c.malformed++
	}
	c.level = r.Level

	if !c.lastAt.IsZero() {
		c.gaps = append(c.gaps, float64(r.At.Sub(c.lastAt))/float64(time.Millisecond))
	}
	c.lastAt = r.At
}

// Flush produces a WindowStats ending at now and resets the window.
// ok is false when no dispatch was recorded since the last flush.
func (c *Collector) Flush(now time.Time) (stats WindowStats, ok bool) {
	if !c.started {
		return WindowStats{}, false
	}

	mean, std, p50, p90 := ComputeGapStats(c.gaps)
	stats = WindowStats{
		WindowStartMS: c.windowStart.UnixMilli(),
		WindowEndMS:   now.UnixMilli(),
		Dispatches:    c.dispatches,
		Changed:       c.changed,
		Malformed:     c.malformed,
		Co2Level:      c.level,
		GapMeanMS:     mean,
		GapStdMS:      std,
		GapP50MS:      p50,
		GapP90MS:      p90,
	}

	c.started = false
	c.dispatches, c.changed, c.malformed = 0, 0, 0
	c.gaps = c.gaps[:0]
	return stats, true
}
