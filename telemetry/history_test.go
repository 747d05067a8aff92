package telemetry

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/config"
	"github.com/pthm-cable/cavern/store"
)

// fakeClock advances by step on every call.
type fakeClock struct {
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRecordedStore(t *testing.T, h *History) *store.Store {
	t.Helper()
	s, err := store.New([]store.Slice{co2.Slice()}, store.WithMiddleware(h.Middleware()))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func TestHistoryRecordsDispatches(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	h := NewHistory(HistoryOptions{Size: 10, Logger: quietLogger(), Now: clock.now})
	s := newRecordedStore(t, h)

	s.Dispatch(co2.AddCo2())
	s.Dispatch(store.Action{Type: "unknown/action"})
	s.Dispatch(co2.AddCo2())

	records := h.Records()
	if len(records) != 3 {
		t.Fatalf("len(Records()) = %d, want 3", len(records))
	}
	want := []struct {
		action  string
		level   int
		version uint64
	}{
		{co2.ActionAdd, 1, 1},
		{"unknown/action", 1, 1},
		{co2.ActionAdd, 2, 2},
	}
	for i, w := range want {
		r := records[i]
		if r.Seq != uint64(i+1) || r.Action != w.action || r.Level != w.level || r.Version != w.version {
			t.Errorf("record %d = %+v, want %+v", i, r, w)
		}
	}
}

func TestHistoryRingKeepsNewest(t *testing.T) {
	h := NewHistory(HistoryOptions{Size: 3, Logger: quietLogger()})
	s := newRecordedStore(t, h)
	for i := 0; i < 5; i++ {
		s.Dispatch(co2.AddCo2())
	}

	records := h.Records()
	if len(records) != 3 {
		t.Fatalf("len(Records()) = %d, want 3", len(records))
	}
	for i, r := range records {
		if r.Seq != uint64(i+3) || r.Level != i+3 {
			t.Errorf("record %d = %+v, want seq and level %d", i, r, i+3)
		}
	}
}

func TestCollectorWindows(t *testing.T) {
	clock := &fakeClock{t: time.Unix(100, 0), step: 4 * time.Second}
	h := NewHistory(HistoryOptions{
		Size:      16,
		Collector: NewCollector(10 * time.Second),
		Logger:    quietLogger(),
		Now:       clock.now,
	})
	s := newRecordedStore(t, h)

	// Dispatches at 104, 108, 112, 116: the fourth closes the window opened at 104.
	for i := 0; i < 4; i++ {
		s.Dispatch(co2.AddCo2())
	}
	windows := h.Windows()
	if len(windows) != 1 {
		t.Fatalf("len(Windows()) = %d, want 1", len(windows))
	}
	w := windows[0]
	if w.Dispatches != 3 || w.Changed != 3 || w.Co2Level != 3 {
		t.Errorf("window = %+v, want 3 dispatches ending at level 3", w)
	}
	if w.WindowEndMS-w.WindowStartMS != 10_000 {
		t.Errorf("window length = %dms, want 10000", w.WindowEndMS-w.WindowStartMS)
	}
	if w.GapMeanMS != 4000 {
		t.Errorf("GapMeanMS = %v, want 4000", w.GapMeanMS)
	}

	s.Dispatch(store.Action{})
	h.Close()
	windows = h.Windows()
	if len(windows) != 2 {
		t.Fatalf("len(Windows()) after Close = %d, want 2", len(windows))
	}
	last := windows[1]
	if last.Dispatches != 2 || last.Changed != 1 || last.Malformed != 1 || last.Co2Level != 4 {
		t.Errorf("last window = %+v", last)
	}
}

func TestCollectorFlushEmpty(t *testing.T) {
	c := NewCollector(time.Second)
	if _, ok := c.Flush(time.Now()); ok {
		t.Error("Flush on empty collector returned ok")
	}
	if c.ShouldFlush(time.Now()) {
		t.Error("ShouldFlush true before any record")
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteHistory(Record{}); err != nil {
		t.Errorf("nil WriteHistory: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	clock := &fakeClock{t: time.Unix(0, 0), step: time.Second}
	h := NewHistory(HistoryOptions{
		Size:      8,
		Collector: NewCollector(time.Hour),
		Output:    om,
		Logger:    quietLogger(),
		Now:       clock.now,
	})
	s := newRecordedStore(t, h)
	for i := 0; i < 3; i++ {
		s.Dispatch(co2.AddCo2())
	}
	h.Close()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "history.csv"))
	if err != nil {
		t.Fatalf("reading history.csv: %v", err)
	}
	if n := strings.Count(string(data), "seq,"); n != 1 {
		t.Errorf("history.csv has %d header lines, want 1:\n%s", n, data)
	}

	records, err := ReadHistory(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if len(records) != 3 || records[2].Level != 3 || records[2].Action != co2.ActionAdd {
		t.Errorf("records = %+v", records)
	}
	if !records[0].At.Equal(time.Unix(1, 0)) {
		t.Errorf("records[0].At = %v, want %v", records[0].At, time.Unix(1, 0))
	}

	windows, err := os.ReadFile(filepath.Join(dir, "windows.csv"))
	if err != nil {
		t.Fatalf("reading windows.csv: %v", err)
	}
	if !strings.HasPrefix(string(windows), "window_start_ms,") || strings.Count(string(windows), "\n") != 2 {
		t.Errorf("windows.csv = %q, want header and one row", windows)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml missing: %v", err)
	}
}
