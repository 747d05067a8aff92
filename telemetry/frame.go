package telemetry

import (
	"log/slog"
	"time"
)

// Phases of one window frame.
const (
	PhaseUpdate   = "update"
	PhaseLayout   = "layout"
	PhaseDraw     = "draw"
	PhaseDispatch = "dispatch"
)

// framePhases lists phases in log order.
var framePhases = []string{PhaseUpdate, PhaseLayout, PhaseDraw, PhaseDispatch}

type frameSample struct {
	total  time.Duration
	phases map[string]time.Duration
}

// FrameProfiler times window frames over a rolling window of samples.
type FrameProfiler struct {
	samples []frameSample
	next    int
	count   int

	current    map[string]time.Duration
	frameStart time.Time
	phaseStart time.Time
	phase      string

	now func() time.Time
}

// NewFrameProfiler keeps the last size frames (60 when size < 1).
// now defaults to time.Now.
func NewFrameProfiler(size int, now func() time.Time) *FrameProfiler {
	if size < 1 {
		size = 60
	}
	if now == nil {
		now = time.Now
	}
	return &FrameProfiler{samples: make([]frameSample, size), now: now}
}

// StartFrame begins timing a frame.
func (p *FrameProfiler) StartFrame() {
	p.frameStart = p.now()
	p.current = make(map[string]time.Duration, len(framePhases))
	p.phase = ""
}

// StartPhase ends the running phase, if any, and starts phase.
func (p *FrameProfiler) StartPhase(phase string) {
	now := p.now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.phaseStart, p.phase = now, phase
}

// EndFrame records the frame. It returns true every time the window of
// samples has been refilled.
func (p *FrameProfiler) EndFrame() bool {
	now := p.now()
	if p.phase != "" {
		p.current[p.phase] += now.Sub(p.phaseStart)
	}
	p.samples[p.next] = frameSample{total: now.Sub(p.frameStart), phases: p.current}
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
	return p.next == 0
}

// FrameStats summarizes the sampled frames.
type FrameStats struct {
	Frames   int
	AvgFrame time.Duration
	MaxFrame time.Duration
	PhaseAvg map[string]time.Duration
}

// Stats aggregates the current window.
func (p *FrameProfiler) Stats() FrameStats {
	s := FrameStats{Frames: p.count, PhaseAvg: make(map[string]time.Duration)}
	if p.count == 0 {
		return s
	}

	var total time.Duration
	sums := make(map[string]time.Duration)
	for _, f := range p.samples[:p.count] {
		total += f.total
		s.MaxFrame = max(s.MaxFrame, f.total)
		for phase, d := range f.phases {
			sums[phase] += d
		}
	}
	s.AvgFrame = total / time.Duration(p.count)
	for phase, sum := range sums {
		s.PhaseAvg[phase] = sum / time.Duration(p.count)
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("frames", s.Frames),
		slog.Int64("avg_frame_us", s.AvgFrame.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrame.Microseconds()),
	}
	for _, phase := range framePhases {
		if d, ok := s.PhaseAvg[phase]; ok {
			attrs = append(attrs, slog.Int64(phase+"_us", d.Microseconds()))
		}
	}
	return slog.GroupValue(attrs...)
}
