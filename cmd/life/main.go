package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine"
	"github.com/Carmen-Shannon/oxy-life/engine/life"
	"github.com/Carmen-Shannon/oxy-life/engine/profiler"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	exitOK    = 0
	exitSetup = 1
	exitFlags = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg := NewConfig()
	fs := flag.NewFlagSet("life", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFlags
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags:\n%v\n", err)
		return exitFlags
	}

	logger, err := common.NewLogger(cfg.LoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return exitSetup
	}
	defer func() { _ = logger.Sync() }()

	if err := start(cfg, logger); err != nil {
		logger.Error("setup failed", zap.Error(err))
		return exitSetup
	}
	return exitOK
}

// start builds the window, renderer, simulation and pacing loop, then blocks until the window closes.
func start(cfg *Config, logger *zap.Logger) error {
	win, err := window.NewWindow(cfg.WindowOptions(logger.Named("window"))...)
	if err != nil {
		return err
	}
	defer func() { _ = win.Close() }()

	rend, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win, cfg.RendererOptions(logger.Named("renderer"))...)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer rend.Release()

	reg := prometheus.NewRegistry()
	prof := profiler.NewProfiler(cfg.ProfilerOptions(logger.Named("profiler"))...)
	if err := prof.Register(reg); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.MetricsAddr != "" {
		srv := profiler.NewMetricsServer(cfg.MetricsAddr, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
		logger.Info("serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	opts, err := cfg.SimulationOptions()
	if err != nil {
		return err
	}
	seedA, seed := cfg.SeedA()
	opts = append(opts,
		life.WithSeeders(seedA, life.SeedStripes()),
		life.WithLogger(logger.Named("simulation")),
		life.WithFrameObserver(func(_ uint64, elapsed time.Duration, err error) {
			prof.ObserveFrame(elapsed, err)
		}),
	)
	sim, err := life.NewSimulation(rend, opts...)
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	defer sim.Release()
	logger.Info("seeded", zap.Int64("seed", seed), zap.Float64("density", cfg.Density))

	var verifier *life.Verifier
	if cfg.VerifyEvery > 0 {
		ref := life.NewReferenceStepper(sim.Grid(), 0)
		verifier, err = life.NewVerifier(context.Background(), sim, ref, cfg.VerifyEvery, logger.Named("verifier"))
		if err != nil {
			return fmt.Errorf("verifier: %w", err)
		}
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithResizer(rend),
		engine.WithLogger(logger.Named("engine")),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.Profile),
		engine.WithTickPeriod(cfg.Period),
		engine.WithTickCallback(func(float32) {
			sim.Frame()
			if verifier == nil || !verifier.Due(sim.Generation()) {
				return
			}
			// mismatches are logged by the verifier
			if _, err := verifier.Check(context.Background()); err != nil && !errors.Is(err, life.ErrMismatch) {
				logger.Warn("verification skipped", zap.Error(err))
			}
		}),
	)

	ctl := newControls(logger.Named("controls"), eng, sim, cfg.Density)
	if verifier != nil {
		ctl.onReseed = verifier.Rebase
	}
	win.SetKeyDownCallback(ctl.handleKey)

	eng.Run()
	logger.Info("window closed", zap.Uint64("generation", sim.Generation()))
	return nil
}
