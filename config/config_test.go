package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != ModeWeb {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeWeb)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 5s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Derived.LogLevel != slog.LevelInfo {
		t.Errorf("Derived.LogLevel = %v, want INFO", cfg.Derived.LogLevel)
	}
	if cfg.Derived.StatsWindow != 10*time.Second {
		t.Errorf("Derived.StatsWindow = %v, want 10s", cfg.Derived.StatsWindow)
	}
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	path := writeFile(t, "window:\n  title: Test\nlog:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Window.Title != "Test" {
		t.Errorf("Window.Title = %q, want Test", cfg.Window.Title)
	}
	if cfg.Window.Width != 640 {
		t.Errorf("Window.Width = %d, want default 640", cfg.Window.Width)
	}
	if cfg.Derived.LogLevel != slog.LevelDebug {
		t.Errorf("Derived.LogLevel = %v, want DEBUG", cfg.Derived.LogLevel)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", "mode: terminal\n"},
		{"web without addr", "server:\n  addr: \"\"\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"bad yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeFile(t, tt.body)); err == nil {
				t.Error("Load() succeeded, want error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) succeeded, want error")
	}
}

func TestWindowModeAllowsNoServer(t *testing.T) {
	cfg, err := Load(writeFile(t, "mode: window\nserver:\n  addr: \"\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeWindow || cfg.Server.Addr != "" {
		t.Errorf("got mode %q addr %q", cfg.Mode, cfg.Server.Addr)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Window.Title = "Snapshot"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load(written): %v", err)
	}
	if back.Window.Title != "Snapshot" || back.Server.WriteWait != cfg.Server.WriteWait {
		t.Errorf("round trip = %+v, want %+v", back.Window, cfg.Window)
	}
}

func TestCfgAfterInit(t *testing.T) {
	MustInit("")
	if Cfg().Mode != ModeWeb {
		t.Errorf("Cfg().Mode = %q, want %q", Cfg().Mode, ModeWeb)
	}
}

func TestOverride(t *testing.T) {
	tests := []struct {
		name               string
		mode, addr, level  string
		wantMode, wantAddr string
		wantLevel          slog.Level
		wantErr            bool
	}{
		{name: "none", wantMode: ModeWeb, wantAddr: ":8080", wantLevel: slog.LevelInfo},
		{name: "all", mode: ModeWindow, addr: ":9090", level: "debug", wantMode: ModeWindow, wantAddr: ":9090", wantLevel: slog.LevelDebug},
		{name: "bad mode", mode: "terminal", wantErr: true},
		{name: "bad level", level: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			err = cfg.Override(tt.mode, tt.addr, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Override succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Override: %v", err)
			}
			if cfg.Mode != tt.wantMode || cfg.Server.Addr != tt.wantAddr || cfg.Derived.LogLevel != tt.wantLevel {
				t.Errorf("got mode=%q addr=%q level=%v", cfg.Mode, cfg.Server.Addr, cfg.Derived.LogLevel)
			}
		})
	}
}
