package life

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/stretchr/testify/assert"
)

func TestSeedRandomDeterministic(t *testing.T) {
	g := grid.Grid{Width: 16, Height: 16}

	assert.Equal(t, SeedRandom(42, 0.4)(g), SeedRandom(42, 0.4)(g))
	assert.NotEqual(t, SeedRandom(42, 0.4)(g), SeedRandom(43, 0.4)(g))
}

func TestSeedRandomDensity(t *testing.T) {
	g := grid.Grid{Width: 64, Height: 64}

	assert.Equal(t, make([]uint32, g.CellCount()), SeedRandom(1, 0)(g))
	assert.Equal(t, make([]uint32, g.CellCount()), SeedRandom(1, -3)(g))

	full := SeedRandom(1, 2)(g)
	for _, c := range full {
		assert.Equal(t, uint32(1), c)
	}

	liveCount := 0
	for _, c := range SeedRandom(9, DefaultDensity)(g) {
		liveCount += int(c)
	}
	ratio := float64(liveCount) / float64(g.CellCount())
	assert.InDelta(t, DefaultDensity, ratio, 0.05)
}

func TestSeedStripes(t *testing.T) {
	assert.Equal(t, []uint32{0, 1, 0, 1, 0, 1}, SeedStripes()(grid.Grid{Width: 3, Height: 2}))
}

func TestSeedPatternWraps(t *testing.T) {
	g := grid.Grid{Width: 3, Height: 3}
	cells := SeedPattern([2]int{-1, 0}, [2]int{1, 4})(g)

	assert.Equal(t, uint32(1), cells[g.Index(2, 0)])
	assert.Equal(t, uint32(1), cells[g.Index(1, 1)])
	assert.Equal(t, 2, len(live(g, cells)))
}
