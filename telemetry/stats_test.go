package telemetry

import (
	"log/slog"
	"math"
	"testing"
)

func TestComputeGapStats(t *testing.T) {
	tests := []struct {
		name                 string
		gaps                 []float64
		mean, std, p50, p90 float64
	}{
		{"empty", nil, 0, 0, 0, 0},
		{"single", []float64{40}, 40, 0, 40, 40},
		{"uniform", []float64{100, 100, 100}, 100, 0, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std, p50, p90 := ComputeGapStats(tt.gaps)
			got := []float64{mean, std, p50, p90}
			want := []float64{tt.mean, tt.std, tt.p50, tt.p90}
			for i := range got {
				if math.Abs(got[i]-want[i]) > 0.001 {
					t.Errorf("ComputeGapStats(%v) = %v, want %v", tt.gaps, got, want)
					break
				}
			}
		})
	}
}

func TestComputeGapStatsUnsorted(t *testing.T) {
	mean, std, p50, p90 := ComputeGapStats([]float64{30, 10, 20})

	if math.Abs(mean-20) > 0.001 {
		t.Errorf("mean = %v, want 20", mean)
	}
	// Sample standard deviation
	if math.Abs(std-10) > 0.001 {
		t.Errorf("std = %v, want 10", std)
	}
	if p50 < 10 || p50 > 30 || p90 < p50 || p90 > 30 {
		t.Errorf("p50 = %v p90 = %v, want 10 <= p50 <= p90 <= 30", p50, p90)
	}
}

func TestComputeGapStatsDoesNotSortInput(t *testing.T) {
	gaps := []float64{3, 1, 2}
	ComputeGapStats(gaps)
	if gaps[0] != 3 || gaps[1] != 1 || gaps[2] != 2 {
		t.Errorf("input reordered: %v", gaps)
	}
}

func TestWindowStatsRate(t *testing.T) {
	s := WindowStats{WindowStartMS: 1000, WindowEndMS: 3000, Dispatches: 10}
	if got := s.Rate(); got != 5 {
		t.Errorf("Rate() = %v, want 5", got)
	}
	if got := (WindowStats{}).Rate(); got != 0 {
		t.Errorf("empty Rate() = %v, want 0", got)
	}
}

func TestWindowStatsLogValue(t *testing.T) {
	v := WindowStats{Dispatches: 3, Co2Level: 3}.LogValue()
	if v.Kind() != slog.KindGroup {
		t.Fatalf("LogValue kind = %v, want group", v.Kind())
	}
	found := false
	for _, a := range v.Group() {
		if a.Key == "co2_level" && a.Value.Int64() == 3 {
			found = true
		}
	}
	if !found {
		t.Error("co2_level attribute missing")
	}
}
