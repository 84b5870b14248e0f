package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for cell quads.
// Matches GPUVertex layout exactly (32 bytes, tightly packed).
//
//go:embed assets/cell_vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU representation of a single cell quad vertex.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
// Size: 32 bytes.
type GPUVertex struct {
	Position [2]float32 // offset  0: quad-local position in [-1, 1] (8 bytes)
	Color    [4]float32 // offset  8: per-vertex RGBA tint (16 bytes)
	UV       [2]float32 // offset 24: texture coordinate in [0, 1] (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[8+i*4:], math.Float32bits(g.Color[i]))
	}
	binary.LittleEndian.PutUint32(buf[24:28], math.Float32bits(g.UV[0]))
	binary.LittleEndian.PutUint32(buf[28:32], math.Float32bits(g.UV[1]))
	return buf
}
