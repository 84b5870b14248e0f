package life

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
)

// DefaultDensity is the fraction of live cells produced by the default random seeder.
const DefaultDensity = 0.4

// Seeder produces the initial flags for a grid, one uint32 per cell in row-major order.
type Seeder func(g grid.Grid) []uint32

// SeedRandom returns a Seeder that marks each cell live with probability density.
// The same seed always yields the same pattern for a given grid.
//
// Parameters:
//   - seed: the random source seed
//   - density: the probability, clamped to [0, 1], that a cell starts live
//
// Returns:
//   - Seeder: the random seeder
func SeedRandom(seed int64, density float64) Seeder {
	density = min(max(density, 0), 1)
	return func(g grid.Grid) []uint32 {
		rng := rand.New(rand.NewSource(seed))
		cells := make([]uint32, g.CellCount())
		for i := range cells {
			if rng.Float64() < density {
				cells[i] = 1
			}
		}
		return cells
	}
}

// SeedStripes returns a Seeder that sets every other cell, i % 2, in row-major order.
func SeedStripes() Seeder {
	return func(g grid.Grid) []uint32 {
		cells := make([]uint32, g.CellCount())
		for i := range cells {
			cells[i] = uint32(i % 2)
		}
		return cells
	}
}

// SeedPattern returns a Seeder that sets exactly the given (x, y) cells. Coordinates are
// wrapped onto the grid.
//
// Parameters:
//   - live: the coordinates of the live cells
//
// Returns:
//   - Seeder: the pattern seeder
func SeedPattern(live ...[2]int) Seeder {
	return func(g grid.Grid) []uint32 {
		cells := make([]uint32, g.CellCount())
		for _, c := range live {
			cells[g.WrappedIndex(c[0], c[1])] = 1
		}
		return cells
	}
}
