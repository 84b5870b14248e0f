package life

import (
	"time"

	"github.com/Carmen-Shannon/oxy-life/common"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"go.uber.org/zap"
)

// SimulationBuilderOption is a functional option applied to a simulation during construction via NewSimulation.
type SimulationBuilderOption func(*simulation)

// WithGrid sets the grid dimensions. Defaults to 32x32.
//
// Parameters:
//   - width: cells per row
//   - height: rows
//
// Returns:
//   - SimulationBuilderOption: a function that sets the grid
func WithGrid(width, height int) SimulationBuilderOption {
	return func(s *simulation) {
		s.grid = grid.Grid{Width: width, Height: height}
	}
}

// WithWorkgroupSize sets the compute workgroup edge length used for both x and y. Defaults to 8.
//
// Parameters:
//   - size: invocations per axis
//
// Returns:
//   - SimulationBuilderOption: a function that sets the workgroup size
func WithWorkgroupSize(size uint32) SimulationBuilderOption {
	return func(s *simulation) {
		s.workgroupSize = size
	}
}

// WithSeeders sets the initial patterns of buffer A and buffer B. Defaults to a random fill
// at DefaultDensity for A and SeedStripes for B.
//
// Parameters:
//   - a: the seeder for buffer A, the first generation displayed
//   - b: the seeder for buffer B
//
// Returns:
//   - SimulationBuilderOption: a function that sets both seeders
func WithSeeders(a, b Seeder) SimulationBuilderOption {
	return func(s *simulation) {
		if a != nil {
			s.seedA = a
		}
		if b != nil {
			s.seedB = b
		}
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) SimulationBuilderOption {
	return func(s *simulation) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithErrorHandler sets the function Frame hands errors to. Defaults to logging at error level.
//
// Parameters:
//   - handler: receives every frame error
//
// Returns:
//   - SimulationBuilderOption: a function that sets the handler
func WithErrorHandler(handler func(err error)) SimulationBuilderOption {
	return func(s *simulation) {
		s.errorHandler = handler
	}
}

// WithFrameObserver sets a callback run after every frame with the resulting generation, the
// time spent recording, and the frame error if any. It runs while the simulation is locked and
// must not call back into it.
//
// Parameters:
//   - observer: the callback
//
// Returns:
//   - SimulationBuilderOption: a function that sets the observer
func WithFrameObserver(observer func(step uint64, elapsed time.Duration, err error)) SimulationBuilderOption {
	return func(s *simulation) {
		s.frameObserver = observer
	}
}

// WithShaderSources replaces the embedded WGSL programs. Empty strings keep the embedded source.
//
// Parameters:
//   - compute: the compute kernel
//   - vertex: the vertex program
//   - fragment: the fragment program
//
// Returns:
//   - SimulationBuilderOption: a function that sets the sources
func WithShaderSources(compute, vertex, fragment string) SimulationBuilderOption {
	return func(s *simulation) {
		s.computeSource = common.Coalesce(compute, s.computeSource)
		s.vertexSource = common.Coalesce(vertex, s.vertexSource)
		s.fragmentSource = common.Coalesce(fragment, s.fragmentSource)
	}
}
