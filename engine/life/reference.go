package life

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-life/engine/grid"
)

// ReferenceStepper advances a host-side copy of the grid with the same rule as the kernel.
// Rows are stepped in parallel on a worker pool; it exists to check GPU output, not to replace it.
type ReferenceStepper struct {
	grid grid.Grid
	pool worker.DynamicWorkerPool
}

// NewReferenceStepper creates a stepper for g backed by a pool of up to workers goroutines.
//
// Parameters:
//   - g: the grid
//   - workers: the pool size, zero or less uses one fewer than the CPU count
//
// Returns:
//   - *ReferenceStepper: the stepper
func NewReferenceStepper(g grid.Grid, workers int) *ReferenceStepper {
	if workers <= 0 {
		workers = max(runtime.NumCPU()-1, 1)
	}
	return &ReferenceStepper{
		grid: g,
		pool: worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

// Step writes the next generation of src into dst, one pool task per row.
//
// Parameters:
//   - src: the current generation
//   - dst: receives the next generation, must not alias src
func (r *ReferenceStepper) Step(src, dst []uint32) {
	var wg sync.WaitGroup
	for y := 0; y < r.grid.Height; y++ {
		wg.Add(1)
		row := y
		r.pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				StepRows(r.grid, src, dst, row, row+1)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// Advance steps cells forward n generations and returns the result. cells is not modified.
//
// Parameters:
//   - cells: the starting generation
//   - n: the number of generations
//
// Returns:
//   - []uint32: the generation n steps after cells
func (r *ReferenceStepper) Advance(cells []uint32, n uint64) []uint32 {
	cur := append([]uint32(nil), cells...)
	next := make([]uint32, len(cells))
	for range n {
		r.Step(cur, next)
		cur, next = next, cur
	}
	return cur
}
