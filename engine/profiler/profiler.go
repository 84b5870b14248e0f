package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Profiler tracks generation rate, frame failures and memory statistics.
// Logs a summary at a configurable interval and exports counters to Prometheus.
type Profiler struct {
	mu sync.Mutex

	logger          *zap.Logger
	frameCount      int
	generationCount int
	lastTime        time.Time
	updateInterval  time.Duration
	memStats        runtime.MemStats
	lastGCCount     uint32
	lastTotalAlloc  uint64

	generations prometheus.Counter
	frameErrors prometheus.Counter
	frameRecord prometheus.Histogram
}

// NewProfiler creates a new Profiler with the provided options.
// Update interval defaults to 1 second and the logger to a no-op logger.
//
// Parameters:
//   - options: functional options for profiler configuration
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         zap.NewNop(),
		lastTime:       time.Now(),
		updateInterval: time.Second,
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxy_life_generations_total",
			Help: "Generations recorded and submitted to the GPU",
		}),
		frameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "oxy_life_frame_errors_total",
			Help: "Frames that failed to record, submit or present",
		}),
		frameRecord: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxy_life_frame_record_seconds",
			Help:    "Time spent recording and submitting one frame",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Register adds the profiler's collectors to the given registerer.
//
// Parameters:
//   - reg: the Prometheus registerer, usually a dedicated registry
//
// Returns:
//   - error: the first registration error, if any
func (p *Profiler) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{p.generations, p.frameErrors, p.frameRecord} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveFrame records the outcome of one frame.
// Successful frames count as a generation, failed ones as a frame error.
//
// Parameters:
//   - elapsed: time spent recording and submitting the frame
//   - err: the frame error, or nil on success
func (p *Profiler) ObserveFrame(elapsed time.Duration, err error) {
	p.frameRecord.Observe(elapsed.Seconds())
	if err != nil {
		p.frameErrors.Inc()
		return
	}
	p.generations.Inc()

	p.mu.Lock()
	p.generationCount++
	p.mu.Unlock()
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: ticks and completed generations per second, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	tickRate := float64(p.frameCount) / elapsed.Seconds()
	generationRate := float64(p.generationCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Info("profile",
		zap.Float64("ticks_per_second", tickRate),
		zap.Float64("generations_per_second", generationRate),
		zap.Float64("heap_mb", allocMB),
		zap.Float64("alloc_rate_mb_s", allocRateMB),
		zap.Uint32("gc_count", gcCount),
		zap.Uint64("gc_last_pause_us", lastPauseUs),
		zap.Uint64("gc_max_pause_us", maxPauseUs),
		zap.Float64("sys_mb", sysMB),
	)

	p.frameCount = 0
	p.generationCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
