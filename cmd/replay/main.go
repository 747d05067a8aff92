// Package main replays a recorded dispatch history into a fresh store and
// checks that every step reproduces the recorded CO2 level.
//
// Usage: go run ./cmd/replay -history output/history.csv [-config config.yaml]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/config"
	"github.com/pthm-cable/cavern/store"
	"github.com/pthm-cable/cavern/telemetry"
)

// Mismatch reports the first record whose level the replay did not reproduce.
type Mismatch struct {
	Seq    uint64
	Action string
	Want   int
	Got    int
}

func (m *Mismatch) Error() string {
	return fmt.Sprintf("seq %d (%s): recorded co2 level %d, replay produced %d", m.Seq, m.Action, m.Want, m.Got)
}

// replay dispatches every record in order and returns the final level.
func replay(records []telemetry.Record) (int, error) {
	s, err := store.New([]store.Slice{co2.Slice()})
	if err != nil {
		return 0, err
	}

	level := 0
	for _, r := range records {
		st := s.Dispatch(store.Action{Type: r.Action})
		c, err := co2.Select(st)
		if err != nil {
			return 0, err
		}
		level = c.Level
		if level != r.Level {
			return level, &Mismatch{Seq: r.Seq, Action: r.Action, Want: r.Level, Got: level}
		}
	}
	return level, nil
}

func main() {
	path := flag.String("history", "history.csv", "History CSV written by the console")
	configPath := flag.String("config", "", "Path to config.yaml for log settings (empty = use defaults)")
	flag.Parse()

	config.MustInit(*configPath)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: config.Cfg().Derived.LogLevel}))
	slog.SetDefault(logger)

	f, err := os.Open(*path)
	if err != nil {
		logger.Error("opening history", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	records, err := telemetry.ReadHistory(f)
	if err != nil {
		logger.Error("reading history", "error", err)
		os.Exit(1)
	}

	level, err := replay(records)
	var mismatch *Mismatch
	switch {
	case errors.As(err, &mismatch):
		logger.Error("replay diverged", "seq", mismatch.Seq, "action", mismatch.Action,
			"want", mismatch.Want, "got", mismatch.Got)
		os.Exit(2)
	case err != nil:
		logger.Error("replay failed", "error", err)
		os.Exit(1)
	}
	logger.Info("replay matched", "records", len(records), "co2_level", level)
}
