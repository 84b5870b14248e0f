package life

import (
	"encoding/binary"
	"fmt"
)

// EncodeCells packs flags as little-endian u32 values, the layout of a state buffer.
func EncodeCells(cells []uint32) []byte {
	buf := make([]byte, 4*len(cells))
	for i, c := range cells {
		binary.LittleEndian.PutUint32(buf[i*4:], c)
	}
	return buf
}

// DecodeCells is the inverse of EncodeCells.
//
// Parameters:
//   - data: state buffer bytes
//
// Returns:
//   - []uint32: the decoded flags
//   - error: an error if len(data) is not a multiple of 4
func DecodeCells(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("state buffer length %d is not a multiple of 4", len(data))
	}
	cells := make([]uint32, len(data)/4)
	for i := range cells {
		cells[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return cells, nil
}
