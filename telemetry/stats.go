package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated dispatch statistics for a time window.
type WindowStats struct {
	WindowStartMS int64 `csv:"window_start_ms"`
	WindowEndMS   int64 `csv:"window_end_ms"`

	// Dispatches during window
	Dispatches int `csv:"dispatches"`
	Changed    int `csv:"changed"`   // Dispatches that produced a new snapshot
	Malformed  int `csv:"malformed"` // Actions without a type

	// Level at window end
	Co2Level int `csv:"co2_level"`

	// Gaps between consecutive dispatches, in milliseconds
	GapMeanMS float64 `csv:"gap_mean_ms"`
	GapStdMS  float64 `csv:"gap_std_ms"`
	GapP50MS  float64 `csv:"gap_p50_ms"`
	GapP90MS  float64 `csv:"gap_p90_ms"`
}

// Rate returns dispatches per second over the window.
func (s WindowStats) Rate() float64 {
	dur := float64(s.WindowEndMS-s.WindowStartMS) / 1000
	if dur <= 0 {
		return 0
	}
	return float64(s.Dispatches) / dur
}

// ComputeGapStats calculates mean, standard deviation and percentiles of gaps.
// Returns zeros for an empty slice.
func ComputeGapStats(gaps []float64) (mean, std, p50, p90 float64) {
	if len(gaps) == 0 {
		return 0, 0, 0, 0
	}

	sorted := slices.Clone(gaps)
	slices.Sort(sorted)

	if len(sorted) == 1 {
		mean = sorted[0]
	} else {
		mean, std = stat.MeanStdDev(sorted, nil)
	}
	p50 = stat.Quantile(0.5, stat.LinInterp, sorted, nil)
	p90 = stat.Quantile(0.9, stat.LinInterp, sorted, nil)
	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start_ms", s.WindowStartMS),
		slog.Int64("window_end_ms", s.WindowEndMS),
		slog.Int("dispatches", s.Dispatches),
		slog.Int("changed", s.Changed),
		slog.Int("malformed", s.Malformed),
		slog.Int("co2_level", s.Co2Level),
		slog.Float64("rate", s.Rate()),
		slog.Float64("gap_mean_ms", s.GapMeanMS),
		slog.Float64("gap_std_ms", s.GapStdMS),
		slog.Float64("gap_p50_ms", s.GapP50MS),
		slog.Float64("gap_p90_ms", s.GapP90MS),
	)
}
