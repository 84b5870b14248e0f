package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-life/engine/profiler"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables periodic profiler output.
//
// Parameters:
//   - enabled: if true, enables profiler output
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler sets the profiler ticked by the pacing loop.
//
// Parameters:
//   - p: the profiler instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickPeriod sets the pacing period.
// Values <= 0 will be treated as the default (one second).
//
// Parameters:
//   - d: the period between ticks
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickPeriod(d time.Duration) EngineBuilderOption {
	return func(e *engine) {
		if d <= 0 {
			d = DefaultTickPeriod
		}
		e.tickPeriod.Store(int64(d))
	}
}

// WithTickCallback registers the function called each tick.
//
// Parameters:
//   - callback: function receiving the seconds elapsed since the previous tick
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickCallback(callback func(deltaTime float32)) EngineBuilderOption {
	return func(e *engine) {
		e.tickCallback = callback
	}
}

// WithWindow attaches a window whose message loop Run drives.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithResizer sets the surface reconfigured when the attached window is resized.
//
// Parameters:
//   - r: the resizer, usually the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResizer(r Resizer) EngineBuilderOption {
	return func(e *engine) {
		e.resizer = r
	}
}

// WithLogger sets the engine logger. A nil logger is ignored.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}
