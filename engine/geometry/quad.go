package geometry

// Mesh is a non-indexed triangle list shared by every instance of a draw call.
type Mesh struct {
	Vertices []GPUVertex
}

// VertexCount returns the number of vertices in the mesh.
func (m Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Marshal packs every vertex back to back for upload to a vertex buffer.
//
// Returns:
//   - []byte: the vertex buffer contents
func (m Mesh) Marshal() []byte {
	if len(m.Vertices) == 0 {
		return nil
	}
	stride := m.Vertices[0].Size()
	buf := make([]byte, 0, stride*len(m.Vertices))
	for i := range m.Vertices {
		buf = append(buf, m.Vertices[i].Marshal()...)
	}
	return buf
}

// CellQuad returns the two-triangle quad drawn once per grid cell. Positions span
// [-1, 1] and are scaled into a cell by the vertex stage; UVs span [0, 1] with v
// pointing down. The tint fades slightly from top to bottom.
//
// Returns:
//   - Mesh: six vertices, counter-clockwise winding
func CellQuad() Mesh {
	top := [4]float32{1, 1, 1, 1}
	bottom := [4]float32{0.85, 0.85, 0.85, 1}

	bl := GPUVertex{Position: [2]float32{-1, -1}, Color: bottom, UV: [2]float32{0, 1}}
	br := GPUVertex{Position: [2]float32{1, -1}, Color: bottom, UV: [2]float32{1, 1}}
	tr := GPUVertex{Position: [2]float32{1, 1}, Color: top, UV: [2]float32{1, 0}}
	tl := GPUVertex{Position: [2]float32{-1, 1}, Color: top, UV: [2]float32{0, 0}}

	return Mesh{Vertices: []GPUVertex{bl, br, tr, bl, tr, tl}}
}
