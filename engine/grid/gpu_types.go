package grid

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUGridUniformSource is the canonical WGSL definition of the GridUniform struct.
// Matches GPUGridUniform layout exactly (8 bytes).
//
//go:embed assets/grid_uniform.wgsl
var GPUGridUniformSource string

// GPUGridUniform is the GPU-aligned representation of the grid uniform buffer.
// Size: 8 bytes (vec2<f32>).
type GPUGridUniform struct {
	Dimensions [2]float32 // offset 0: grid width and height in cells (vec2<f32>)
}

// Size returns the size of the GPUGridUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (8)
func (g *GPUGridUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUGridUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUGridUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(g.Dimensions[0]))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(g.Dimensions[1]))
	return buf
}
