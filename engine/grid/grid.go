package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned when a grid is created with a non-positive width or height.
var ErrInvalidDimensions = errors.New("grid: width and height must be positive")

// Grid describes the fixed dimensions of a toroidal cell grid.
// Cells are addressed in row-major order, index = y*Width + x.
type Grid struct {
	Width  int
	Height int
}

// New creates a Grid with the given dimensions.
//
// Parameters:
//   - width: number of cells per row
//   - height: number of rows
//
// Returns:
//   - Grid: the grid
//   - error: ErrInvalidDimensions if either dimension is not positive
func New(width, height int) (Grid, error) {
	g := Grid{Width: width, Height: height}
	if err := g.Validate(); err != nil {
		return Grid{}, err
	}
	return g, nil
}

// Validate reports whether both dimensions are positive.
func (g Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, g.Width, g.Height)
	}
	return nil
}

// Exceeds reports whether the grid holds more than limit cells. It divides instead of
// multiplying so dimensions whose product overflows int still compare correctly.
// Dimensions are expected positive.
func (g Grid) Exceeds(limit int) bool {
	return g.Width > limit/g.Height
}

// CellCount returns Width*Height.
func (g Grid) CellCount() int {
	return g.Width * g.Height
}

// Index returns the row-major index of the cell at (x, y). Coordinates are expected in range.
func (g Grid) Index(x, y int) int {
	return y*g.Width + x
}

// Coords is the inverse of Index.
func (g Grid) Coords(index int) (x, y int) {
	return index % g.Width, index / g.Width
}

// Wrap reduces arbitrary coordinates onto the torus, so that x = -1 maps to Width-1
// and x = Width maps to 0.
//
// Parameters:
//   - x: the column, may be negative or past the right edge
//   - y: the row, may be negative or past the bottom edge
//
// Returns:
//   - int: the wrapped column in [0, Width)
//   - int: the wrapped row in [0, Height)
func (g Grid) Wrap(x, y int) (int, int) {
	x %= g.Width
	if x < 0 {
		x += g.Width
	}
	y %= g.Height
	if y < 0 {
		y += g.Height
	}
	return x, y
}

// WrappedIndex is Index applied to Wrap(x, y).
func (g Grid) WrappedIndex(x, y int) int {
	return g.Index(g.Wrap(x, y))
}

// Uniform returns the GPU representation of the grid dimensions.
func (g Grid) Uniform() GPUGridUniform {
	return GPUGridUniform{Dimensions: [2]float32{float32(g.Width), float32(g.Height)}}
}

func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}
