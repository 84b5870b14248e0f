package life

import "github.com/Carmen-Shannon/oxy-life/engine/grid"

// NextState applies Conway's rule to a single cell. Two live neighbors keep the current
// state, three bring the cell to life, and any other count kills it.
//
// Parameters:
//   - current: the cell's flag, 0 or 1
//   - neighbors: the number of live cells among the eight surrounding ones
//
// Returns:
//   - uint32: the cell's flag in the next generation
func NextState(current uint32, neighbors int) uint32 {
	switch neighbors {
	case 2:
		return current
	case 3:
		return 1
	default:
		return 0
	}
}

// CountNeighbors counts the live cells around (x, y), wrapping across the grid edges.
//
// Parameters:
//   - cells: row-major flags for g
//   - g: the grid the cells belong to
//   - x: the column
//   - y: the row
//
// Returns:
//   - int: the number of live neighbors, 0 to 8
func CountNeighbors(cells []uint32, g grid.Grid, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if cells[g.WrappedIndex(x+dx, y+dy)] != 0 {
				n++
			}
		}
	}
	return n
}

// NextCell is the Go mirror of the compute kernel for one cell.
//
// Parameters:
//   - cells: row-major flags for g
//   - g: the grid the cells belong to
//   - x: the column, in range
//   - y: the row, in range
//
// Returns:
//   - uint32: the cell's flag in the next generation
func NextCell(cells []uint32, g grid.Grid, x, y int) uint32 {
	return NextState(cells[g.Index(x, y)], CountNeighbors(cells, g, x, y))
}

// StepRows writes the next generation of rows [y0, y1) of src into dst.
func StepRows(g grid.Grid, src, dst []uint32, y0, y1 int) {
	for y := y0; y < y1; y++ {
		for x := 0; x < g.Width; x++ {
			dst[g.Index(x, y)] = NextCell(src, g, x, y)
		}
	}
}

// StepCells writes the next generation of src into dst. Both slices hold g.CellCount() flags
// and must not alias.
//
// Parameters:
//   - g: the grid
//   - src: the current generation
//   - dst: receives the next generation
func StepCells(g grid.Grid, src, dst []uint32) {
	StepRows(g, src, dst, 0, g.Height)
}
