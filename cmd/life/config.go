package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/life"
	"github.com/Carmen-Shannon/oxy-life/engine/profiler"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config represents the command-line parameters for the executable.
type Config struct {
	GridWidth       int
	GridHeight      int
	Workgroup       uint
	Period          time.Duration
	Seed            int64
	Density         float64
	ComputeShader   string
	WindowWidth     int
	WindowHeight    int
	VSync           bool
	MSAA            int
	Software        bool
	Background      string
	LogLevel        string
	LogDev          bool
	Profile         bool
	ProfileInterval time.Duration
	MetricsAddr     string
	VerifyEvery     uint64
}

// NewConfig returns a Config populated with the default 32x32 setup.
func NewConfig() *Config {
	return &Config{
		GridWidth:       life.DefaultGridSize,
		GridHeight:      life.DefaultGridSize,
		Workgroup:       life.DefaultWorkgroupSize,
		Period:          time.Second,
		Density:         life.DefaultDensity,
		WindowWidth:     512,
		WindowHeight:    512,
		VSync:           true,
		MSAA:            int(renderer.MSAA4x),
		Background:      "#1a1a1a",
		LogLevel:        "info",
		ProfileInterval: time.Second,
	}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.GridWidth, "grid-width", c.GridWidth, "cells per row")
	fs.IntVar(&c.GridHeight, "grid-height", c.GridHeight, "cells per column")
	fs.UintVar(&c.Workgroup, "workgroup", c.Workgroup, "compute workgroup size per axis")
	fs.DurationVar(&c.Period, "period", c.Period, "time between generations")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed for buffer A, 0 uses the clock")
	fs.Float64Var(&c.Density, "density", c.Density, "fraction of live cells in the random seed")
	fs.StringVar(&c.ComputeShader, "compute-shader", c.ComputeShader, "WGSL file replacing the embedded compute kernel")
	fs.IntVar(&c.WindowWidth, "window-width", c.WindowWidth, "initial window width in pixels")
	fs.IntVar(&c.WindowHeight, "window-height", c.WindowHeight, "initial window height in pixels")
	fs.BoolVar(&c.VSync, "vsync", c.VSync, "synchronize presentation with the display")
	fs.IntVar(&c.MSAA, "msaa", c.MSAA, "multisample count, 1 or 4")
	fs.BoolVar(&c.Software, "software", c.Software, "force the fallback (software) adapter")
	fs.StringVar(&c.Background, "background", c.Background, "clear color as #rrggbb")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "zap level name: debug, info, warn or error")
	fs.BoolVar(&c.LogDev, "log-dev", c.LogDev, "human readable console logging")
	fs.BoolVar(&c.Profile, "profile", c.Profile, "log generation rate and memory periodically")
	fs.DurationVar(&c.ProfileInterval, "profile-interval", c.ProfileInterval, "time between profile log entries")
	fs.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "serve Prometheus metrics on this address, e.g. :9090")
	fs.Uint64Var(&c.VerifyEvery, "verify-every", c.VerifyEvery, "compare against the CPU reference every n generations, 0 disables")
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	g := grid.Grid{Width: c.GridWidth, Height: c.GridHeight}
	if err := g.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("grid must be positive, got %s", g))
	} else if g.Exceeds(life.MaxCells) {
		errs = append(errs, fmt.Errorf("grid %s exceeds %d cells", g, life.MaxCells))
	}
	if c.Workgroup == 0 || c.Workgroup > life.MaxWorkgroupSize {
		errs = append(errs, fmt.Errorf("workgroup must be in 1..%d, got %d", life.MaxWorkgroupSize, c.Workgroup))
	}
	if c.Period <= 0 {
		errs = append(errs, fmt.Errorf("period must be positive, got %s", c.Period))
	}
	if c.Density < 0 || c.Density > 1 {
		errs = append(errs, fmt.Errorf("density must be in [0,1], got %g", c.Density))
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("window must be positive, got %dx%d", c.WindowWidth, c.WindowHeight))
	}
	if _, err := parseColor(c.Background); err != nil {
		errs = append(errs, err)
	}
	if c.ProfileInterval <= 0 {
		errs = append(errs, fmt.Errorf("profile interval must be positive, got %s", c.ProfileInterval))
	}
	if !renderer.MSAASampleCount(c.MSAA).Valid() {
		errs = append(errs, fmt.Errorf("msaa must be 1 or 4, got %d", c.MSAA))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	return errors.Join(errs...)
}

// LoggerConfig converts the logging flags.
func (c *Config) LoggerConfig() common.LoggerConfig {
	return common.LoggerConfig{Level: c.LogLevel, Development: c.LogDev, Name: "life"}
}

// SeedA returns the seeder for buffer A, drawing a clock seed when none was given.
func (c *Config) SeedA() (life.Seeder, int64) {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return life.SeedRandom(seed, c.Density), seed
}

// RendererOptions converts the presentation flags.
func (c *Config) RendererOptions(logger *zap.Logger) []renderer.RendererBuilderOption {
	mode := renderer.PresentModeUncapped
	if c.VSync {
		mode = renderer.PresentModeVSync
	}
	// Validate has already rejected a malformed color.
	background, _ := parseColor(c.Background)
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(c.MSAA)),
		renderer.WithForceSoftwareRenderer(c.Software),
		renderer.WithClearColor(background),
		renderer.WithLogger(logger),
	}
}

// WindowOptions converts the window flags. Each cell gets at least one pixel.
func (c *Config) WindowOptions(logger *zap.Logger) []window.WindowBuilderOption {
	return []window.WindowBuilderOption{
		window.WithTitle(fmt.Sprintf("oxy-life %dx%d", c.GridWidth, c.GridHeight)),
		window.WithSize(c.WindowWidth, c.WindowHeight),
		window.WithMinSize(c.GridWidth, c.GridHeight),
		window.WithLogger(logger),
	}
}

// ProfilerOptions converts the profiling flags.
func (c *Config) ProfilerOptions(logger *zap.Logger) []profiler.ProfilerBuilderOption {
	return []profiler.ProfilerBuilderOption{
		profiler.WithLogger(logger),
		profiler.WithUpdateInterval(c.ProfileInterval),
	}
}

// SimulationOptions converts the grid and shader flags. Seeding, logging and observers are added
// by the caller.
//
// Returns:
//   - []life.SimulationBuilderOption: the options
//   - error: an error if the compute shader file could not be read
func (c *Config) SimulationOptions() ([]life.SimulationBuilderOption, error) {
	opts := []life.SimulationBuilderOption{
		life.WithGrid(c.GridWidth, c.GridHeight),
		life.WithWorkgroupSize(uint32(c.Workgroup)),
	}
	if c.ComputeShader != "" {
		src, err := os.ReadFile(c.ComputeShader)
		if err != nil {
			return nil, fmt.Errorf("compute shader: %w", err)
		}
		opts = append(opts, life.WithShaderSources(string(src), "", ""))
	}
	return opts, nil
}

// parseColor reads a #rrggbb string into an opaque wgpu color.
func parseColor(s string) (wgpu.Color, error) {
	var r, g, b uint8
	if len(s) != 7 {
		return wgpu.Color{}, fmt.Errorf("background must be #rrggbb, got %q", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return wgpu.Color{}, fmt.Errorf("background must be #rrggbb, got %q", s)
	}
	return wgpu.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255, A: 1}, nil
}
