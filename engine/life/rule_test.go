package life

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/stretchr/testify/assert"
)

func TestNextStateTable(t *testing.T) {
	for n := 0; n <= 8; n++ {
		for _, current := range []uint32{0, 1} {
			var want uint32
			switch {
			case n == 2:
				want = current
			case n == 3:
				want = 1
			}
			assert.Equal(t, want, NextState(current, n), "current=%d neighbors=%d", current, n)
		}
	}
}

func TestCornerWrapsToAllCorners(t *testing.T) {
	g := grid.Grid{Width: 5, Height: 4}
	cells := make([]uint32, g.CellCount())
	cells[g.Index(0, 0)] = 1

	for _, c := range [][2]int{{4, 0}, {0, 3}, {4, 3}, {1, 1}} {
		assert.Equal(t, 1, CountNeighbors(cells, g, c[0], c[1]), "cell %v sees the corner", c)
	}
	assert.Equal(t, 0, CountNeighbors(cells, g, 2, 2))
	assert.Equal(t, 0, CountNeighbors(cells, g, 0, 0), "a cell is not its own neighbor")
}

func TestNextCellWrapsLeftEdge(t *testing.T) {
	g := grid.Grid{Width: 4, Height: 4}
	cells := make([]uint32, g.CellCount())
	// three live cells on the right edge bring (0, 1) to life through the wrap
	cells[g.Index(3, 0)] = 1
	cells[g.Index(3, 1)] = 1
	cells[g.Index(3, 2)] = 1

	assert.Equal(t, uint32(1), NextCell(cells, g, 0, 1))
	assert.Equal(t, uint32(0), NextCell(cells, g, 1, 1))
}

func TestStepCellsSingleColumnGrid(t *testing.T) {
	g := grid.Grid{Width: 1, Height: 3}
	src := []uint32{1, 1, 1}
	dst := make([]uint32, 3)

	// every neighbor wraps onto the same column, so each cell counts the whole grid
	StepCells(g, src, dst)
	assert.Equal(t, []uint32{0, 0, 0}, dst)
}
