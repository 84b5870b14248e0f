package life

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCellsLittleEndian(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0, 0x04, 0x03, 0x02, 0x01}, EncodeCells([]uint32{1, 0, 0x01020304}))
}

func TestDecodeCells(t *testing.T) {
	cells, err := DecodeCells([]byte{1, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 0}, cells)

	_, err = DecodeCells([]byte{1, 0, 0})
	assert.Error(t, err)
}
