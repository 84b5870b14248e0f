package grid

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g, err := New(32, 16)
	require.NoError(t, err)
	assert.Equal(t, 512, g.CellCount())
	assert.Equal(t, "32x16", g.String())

	_, err = New(0, 4)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = New(4, -1)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestExceeds(t *testing.T) {
	assert.False(t, Grid{Width: 4096, Height: 4096}.Exceeds(1<<24))
	assert.True(t, Grid{Width: 4097, Height: 4096}.Exceeds(1<<24))
	assert.True(t, Grid{Width: 1, Height: 1<<24 + 1}.Exceeds(1<<24))

	huge := Grid{Width: 1 << 32, Height: 1 << 32}
	assert.Zero(t, huge.CellCount(), "the product wraps")
	assert.True(t, huge.Exceeds(1<<24))
}

func TestIndexCoords(t *testing.T) {
	g := Grid{Width: 5, Height: 3}
	assert.Equal(t, 0, g.Index(0, 0))
	assert.Equal(t, 7, g.Index(2, 1))
	assert.Equal(t, 14, g.Index(4, 2))

	for i := range g.CellCount() {
		x, y := g.Coords(i)
		assert.Equal(t, i, g.Index(x, y))
	}
}

func TestWrap(t *testing.T) {
	g := Grid{Width: 4, Height: 3}
	cases := []struct {
		x, y, wantX, wantY int
	}{
		{-1, -1, 3, 2},
		{4, 3, 0, 0},
		{-5, 7, 3, 1},
		{2, 1, 2, 1},
	}
	for _, c := range cases {
		x, y := g.Wrap(c.x, c.y)
		assert.Equal(t, c.wantX, x, "x for (%d,%d)", c.x, c.y)
		assert.Equal(t, c.wantY, y, "y for (%d,%d)", c.x, c.y)
	}
	assert.Equal(t, g.Index(3, 2), g.WrappedIndex(-1, -1))
}

func TestUniformMarshal(t *testing.T) {
	u := Grid{Width: 32, Height: 24}.Uniform()
	buf := u.Marshal()
	require.Len(t, buf, 8)
	assert.Equal(t, float32(32), math.Float32frombits(binary.LittleEndian.Uint32(buf[0:])))
	assert.Equal(t, float32(24), math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])))
	assert.Contains(t, GPUGridUniformSource, "struct GridUniform")
}
