// Package config provides configuration loading and access for the console.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Front-end modes.
const (
	ModeWeb    = "web"
	ModeWindow = "window"
)

// Config holds all console configuration parameters.
type Config struct {
	Mode      string          `yaml:"mode"`
	Server    ServerConfig    `yaml:"server"`
	Window    WindowConfig    `yaml:"window"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Log       LogConfig       `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ServerConfig holds HTTP front-end settings.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`                // Listen address (empty = no HTTP server)
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	WriteWait         time.Duration `yaml:"write_wait"` // Websocket write deadline
}

// WindowConfig holds native window settings.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
}

// TelemetryConfig holds dispatch telemetry parameters.
type TelemetryConfig struct {
	WindowSeconds float64 `yaml:"window_seconds"` // Stats window length
	HistorySize   int     `yaml:"history_size"`   // Dispatch records kept in memory
}

// LogConfig holds logging parameters.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LogLevel    slog.Level    // Log.Level parsed
	StatsWindow time.Duration // Telemetry.WindowSeconds as a duration
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file overwrite defaults
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded config and fills Derived.
func (c *Config) computeDerived() error {
	switch c.Mode {
	case ModeWeb, ModeWindow:
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if c.Mode == ModeWeb && c.Server.Addr == "" {
		return fmt.Errorf("config: web mode needs server.addr")
	}

	if err := c.Derived.LogLevel.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}

	if c.Telemetry.WindowSeconds <= 0 {
		c.Telemetry.WindowSeconds = 10
	}
	c.Derived.StatsWindow = time.Duration(c.Telemetry.WindowSeconds * float64(time.Second))

	if c.Telemetry.HistorySize < 1 {
		c.Telemetry.HistorySize = 1
	}
	if c.Window.TargetFPS <= 0 {
		c.Window.TargetFPS = 60
	}
	return nil
}

// Override applies non-empty command-line values and recomputes derived values.
func (c *Config) Override(mode, addr, logLevel string) error {
	if mode != "" {
		c.Mode = mode
	}
	if addr != "" {
		c.Server.Addr = addr
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	return c.computeDerived()
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
