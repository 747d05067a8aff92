// Package window draws the console page in a native raylib window.
package window

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/cavern/config"
	"github.com/pthm-cable/cavern/game"
	"github.com/pthm-cable/cavern/telemetry"
	"github.com/pthm-cable/cavern/ui"
)

const (
	// errorHold is how long the error banner stays up before Run returns.
	errorHold = 3 * time.Second
	// statsSeconds of frames are profiled between perf log lines.
	statsSeconds = 10
)

// Run opens the window and drives g from the frame loop until the window
// closes or ctx ends. v must not be shared with another front end, since
// refreshing it consumes changes. A render failure is shown in a banner and
// returned.
func Run(ctx context.Context, g *game.Game, v *ui.View, cfg config.WindowConfig, logger *slog.Logger) error {
	rl.InitWindow(int32(cfg.Width), int32(cfg.Height), cfg.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.TargetFPS))
	defer g.Stop()

	refresh := newRefresher(v, g.State, logger)
	defer g.Subscribe(refresh.onChange)()

	r := NewRenderer()
	width := int32(cfg.Width)
	perf := telemetry.NewFrameProfiler(cfg.TargetFPS*statsSeconds, nil)

	var items []Item
	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		perf.StartFrame()
		perf.StartPhase(telemetry.PhaseUpdate)
		g.Update()

		perf.StartPhase(telemetry.PhaseLayout)
		if refresh.err != nil {
			showError(r, width, refresh.err)
			return fmt.Errorf("window: %w", refresh.err)
		}
		if refresh.stale {
			root, err := v.Tree(g.State())
			if err != nil {
				logger.Error("render failed", "error", err)
				showError(r, width, err)
				return fmt.Errorf("window: %w", err)
			}
			items, refresh.stale = Layout(root, r.Theme, width), false
		}

		perf.StartPhase(telemetry.PhaseDraw)
		rl.BeginDrawing()
		rl.ClearBackground(r.Theme.Background)
		pressed := r.Draw(items)
		rl.EndDrawing()

		perf.StartPhase(telemetry.PhaseDispatch)
		for _, id := range pressed {
			a, err := v.Action(id)
			if err != nil {
				logger.Warn("button without action", "id", id, "error", err)
				continue
			}
			g.DispatchLocal(a)
		}
		if perf.EndFrame() {
			logger.Debug("frames", "perf", perf.Stats())
		}
	}
	return nil
}

func showError(r *Renderer, width int32, err error) {
	deadline := time.Now().Add(errorHold)
	for time.Now().Before(deadline) && !rl.WindowShouldClose() {
		rl.BeginDrawing()
		rl.ClearBackground(r.Theme.Background)
		r.DrawError(width, err.Error())
		rl.EndDrawing()
	}
}
