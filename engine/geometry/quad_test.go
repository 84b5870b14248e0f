package geometry

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellQuad(t *testing.T) {
	m := CellQuad()
	require.Equal(t, 6, m.VertexCount())

	for _, v := range m.Vertices {
		assert.InDelta(t, 1, math.Abs(float64(v.Position[0])), 1e-6)
		assert.InDelta(t, 1, math.Abs(float64(v.Position[1])), 1e-6)
		assert.Equal(t, (v.Position[0]+1)/2, v.UV[0])
		assert.Equal(t, (1-v.Position[1])/2, v.UV[1])
	}

	// both triangles wind counter-clockwise
	for tri := range 2 {
		a, b, c := m.Vertices[tri*3].Position, m.Vertices[tri*3+1].Position, m.Vertices[tri*3+2].Position
		cross := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		assert.Greater(t, cross, float32(0), "triangle %d", tri)
	}
}

func TestMeshMarshal(t *testing.T) {
	m := CellQuad()
	buf := m.Marshal()
	require.Len(t, buf, 6*32)

	// third vertex is the top-right corner
	v := buf[2*32:]
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(v[0:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(v[4:])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(v[24:])))
	assert.Equal(t, float32(0), math.Float32frombits(binary.LittleEndian.Uint32(v[28:])))

	assert.Nil(t, Mesh{}.Marshal())
	assert.Contains(t, GPUVertexSource, "@location(2) uv: vec2f")
}
