package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pthm-cable/cavern/co2"
	"github.com/pthm-cable/cavern/config"
	"github.com/pthm-cable/cavern/game"
	"github.com/pthm-cable/cavern/metrics"
	"github.com/pthm-cable/cavern/store"
	"github.com/pthm-cable/cavern/telemetry"
	"github.com/pthm-cable/cavern/ui"
	"github.com/pthm-cable/cavern/web"
	"github.com/pthm-cable/cavern/window"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	mode := flag.String("mode", "", "Front end: web or window (empty = use config)")
	addr := flag.String("addr", "", "HTTP listen address (empty = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (empty = use config)")

	flag.Parse()

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if err := cfg.Override(*mode, *addr, *logLevel); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Derived.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, *outputDir, logger); err != nil {
		logger.Error("exiting", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, outputDir string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	history := telemetry.NewHistory(telemetry.HistoryOptions{
		Size:      cfg.Telemetry.HistorySize,
		Collector: telemetry.NewCollector(cfg.Derived.StatsWindow),
		Output:    out,
		Logger:    logger,
	})
	defer history.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg, co2.ActionAdd)
	if err != nil {
		return err
	}

	s, err := store.New([]store.Slice{co2.Slice()}, store.WithMiddleware(
		store.Logger(logger),
		m.Middleware(),
		history.Middleware(),
	))
	if err != nil {
		return err
	}
	if err := m.TrackSubscribers(s); err != nil {
		return err
	}

	g := game.New(s, game.Options{})
	webOpts := web.Options{Config: cfg.Server, Logger: logger, Gatherer: reg}

	logger.Info("starting",
		"mode", cfg.Mode,
		"addr", cfg.Server.Addr,
		"output_dir", out.Dir(),
	)

	switch cfg.Mode {
	case config.ModeWindow:
		return runWindow(ctx, g, cfg, webOpts, logger)
	default:
		go g.Run(ctx)
		srv := web.New(g, ui.NewView(ui.Layout(), cfg.Window.Title), webOpts)
		defer srv.Close()
		err := srv.ListenAndServe(ctx)
		stop()
		<-g.Done()
		return err
	}
}

// runWindow drives g from the window's frame loop. When server.addr is set the
// page is also served over HTTP; its dispatches are queued on g and applied by
// the frame loop. Each front end refreshes its own view.
func runWindow(ctx context.Context, g *game.Game, cfg *config.Config, webOpts web.Options, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var served chan error
	if cfg.Server.Addr != "" {
		srv := web.New(g, ui.NewView(ui.Layout(), cfg.Window.Title), webOpts)
		defer srv.Close()
		served = make(chan error, 1)
		go func() {
			err := srv.ListenAndServe(ctx)
			if err != nil {
				logger.Error("web server stopped", "error", err)
			}
			served <- err
		}()
	}

	err := window.Run(ctx, g, ui.NewView(ui.Layout(), cfg.Window.Title), cfg.Window, logger)
	cancel()
	if served != nil {
		if serr := <-served; err == nil {
			err = serr
		}
	}
	return err
}
