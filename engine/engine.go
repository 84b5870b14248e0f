package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-life/engine/profiler"
	"github.com/Carmen-Shannon/oxy-life/engine/window"
	"go.uber.org/zap"
)

// DefaultTickPeriod is the pacing period used when none is configured.
const DefaultTickPeriod = time.Second

// Resizer reconfigures a presentation surface after the window changes size.
type Resizer interface {
	Resize(width, height int) error
}

// engine implements the Engine interface.
// Coordinates the pacing goroutine with the window message loop.
type engine struct {
	tickPeriodChannel chan time.Duration // Channel for dynamic period updates

	running atomic.Bool
	paused  atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window  window.Window
	resizer Resizer
	logger  *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	tickPeriod   atomic.Int64
	tickCallback func(deltaTime float32)
}

// Engine is the main entry point for the engine.
// It owns the fixed-period pacing loop and, when a window is attached, the window message loop.
type Engine interface {
	// Window returns the attached window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Profiler returns the profiler ticked by the pacing loop.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler instance
	Profiler() *profiler.Profiler

	// EnableProfiler enables periodic profiler output.
	EnableProfiler()

	// DisableProfiler disables periodic profiler output.
	DisableProfiler()

	// SetTickPeriod changes the pacing period. Takes effect immediately when running.
	//
	// Parameters:
	//   - d: the new period (defaults to DefaultTickPeriod if <= 0)
	SetTickPeriod(d time.Duration)

	// TickPeriod returns the most recently requested pacing period.
	//
	// Returns:
	//   - time.Duration: the period
	TickPeriod() time.Duration

	// SetTickCallback registers the function called each tick.
	// Set it before Start or Run.
	//
	// Parameters:
	//   - callback: function receiving the seconds elapsed since the previous tick
	SetTickCallback(callback func(deltaTime float32))

	// Pause stops invoking the tick callback until Resume is called.
	Pause()

	// Resume restarts tick callbacks after Pause.
	Resume()

	// Paused reports whether the pacing loop is paused.
	//
	// Returns:
	//   - bool: true while paused
	Paused() bool

	// Start launches the pacing goroutine and returns immediately.
	// Calling Start on a running engine is a no-op.
	Start()

	// Run starts the engine and blocks. With a window it runs the message loop until the
	// window closes; without one it blocks until Quit is called.
	Run()

	// Quit signals all engine goroutines to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Wait blocks until every engine goroutine has exited.
	Wait()
}

// NewEngine creates a new Engine instance with the provided options.
// The pacing period defaults to one second and logging to a no-op logger.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickPeriodChannel: make(chan time.Duration, 1),
		quitChannel:       make(chan struct{}),
		logger:            zap.NewNop(),
	}
	e.tickPeriod.Store(int64(DefaultTickPeriod))

	for _, opt := range options {
		opt(e)
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.resizer == nil {
				return
			}
			if err := e.resizer.Resize(width, height); err != nil {
				e.logger.Error("surface resize failed",
					zap.Int("width", width),
					zap.Int("height", height),
					zap.Error(err),
				)
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Start() {
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	e.logger.Info("engine started", zap.Duration("period", e.TickPeriod()))
	e.handle()
}

func (e *engine) Run() {
	e.Start()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	} else {
		<-e.quitChannel
	}
	e.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Wait() {
	e.wg.Wait()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
		e.logger.Info("engine stopping")
	})
}

// handle launches the pacing goroutine, tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(1)
	go e.handleEngine()
}

// handleEngine runs the fixed-period tick loop in its own goroutine.
// Fires the tick callback each period unless paused and listens for period changes
// via tickPeriodChannel. Exits when the quit channel is closed.
// Recovers from panics in the callback and signals quit on recovery.
func (e *engine) handleEngine() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pacing goroutine recovered from panic", zap.Any("panic", r))
			e.signalQuit()
		}
	}()

	ticker := time.NewTicker(e.TickPeriod())
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.paused.Load() {
				continue
			}

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}

			if e.profilingEnabled.Load() {
				e.profiler.Tick()
			}
		case newPeriod := <-e.tickPeriodChannel:
			ticker.Reset(newPeriod)
			e.logger.Debug("tick period changed", zap.Duration("period", newPeriod))
		}
	}
}

// EnableProfiler enables periodic profiler output.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables periodic profiler output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) Pause() {
	if e.paused.CompareAndSwap(false, true) {
		e.logger.Info("paused")
	}
}

func (e *engine) Resume() {
	if e.paused.CompareAndSwap(true, false) {
		e.logger.Info("resumed")
	}
}

func (e *engine) Paused() bool {
	return e.paused.Load()
}

// SetTickPeriod sets the pacing period.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickPeriod(d time.Duration) {
	if d <= 0 {
		d = DefaultTickPeriod
	}

	// Non-blocking send; a pending update is replaced by the newer one.
	for {
		select {
		case e.tickPeriodChannel <- d:
			e.tickPeriod.Store(int64(d))
			return
		default:
			select {
			case <-e.tickPeriodChannel:
			default:
			}
		}
	}
}

func (e *engine) TickPeriod() time.Duration {
	return time.Duration(e.tickPeriod.Load())
}

// SetTickCallback registers the function called each tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}
