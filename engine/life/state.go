package life

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Binding indices shared by the compute, vertex, and fragment programs in group 0.
const (
	UniformBinding = 0
	ReadBinding    = 1
	WriteBinding   = 2
)

// newProvider is swapped in tests, where the fake device's placeholder handles cannot be released.
var newProvider = bind_group_provider.NewBindGroupProvider

// bindingSets holds the two orientations of {uniform, state-in, state-out}.
// sets[0] reads buffer A and writes buffer B; sets[1] is the mirror image.
type bindingSets [2]bind_group_provider.BindGroupProvider

// newBindingSets allocates the uniform and both state buffers through set 0, then builds set 1
// over the same layout with the state buffers swapped.
//
// Parameters:
//   - device: the device that creates buffers and bind groups
//   - g: the grid, which sizes the state buffers
//   - descriptor: the merged layout of group 0 across all three programs
//
// Returns:
//   - bindingSets: both orientations
//   - error: an error if a buffer or bind group could not be created
func newBindingSets(device Device, g grid.Grid, descriptor wgpu.BindGroupLayoutDescriptor) (bindingSets, error) {
	stateSize := uint64(g.CellCount()) * 4

	a := newProvider("Cell State A")
	err := device.InitBindGroup(a, descriptor,
		map[int]wgpu.BufferUsage{
			ReadBinding:  wgpu.BufferUsageCopySrc,
			WriteBinding: wgpu.BufferUsageCopySrc,
		},
		map[int]uint64{
			ReadBinding:  stateSize,
			WriteBinding: stateSize,
		},
	)
	if err != nil {
		// InitBindGroup may have created buffers before failing.
		a.Release()
		return bindingSets{}, fmt.Errorf("binding set A: %w", err)
	}

	b := newProvider("Cell State B",
		bind_group_provider.WithSharedBindGroupLayout(a.BindGroupLayout()),
		bind_group_provider.WithSharedBuffer(UniformBinding, a.Buffer(UniformBinding)),
		bind_group_provider.WithSharedBuffer(ReadBinding, a.Buffer(WriteBinding)),
		bind_group_provider.WithSharedBuffer(WriteBinding, a.Buffer(ReadBinding)),
	)
	if err := device.InitBindGroup(b, descriptor, nil, nil); err != nil {
		b.Release()
		a.Release()
		return bindingSets{}, fmt.Errorf("binding set B: %w", err)
	}

	return bindingSets{a, b}, nil
}

// stateBuffer returns the provider and binding that hold buffer i (0 for A, 1 for B).
func (s bindingSets) stateBuffer(i int) (bind_group_provider.BindGroupProvider, int) {
	return s[i], ReadBinding
}

// seedWrites uploads a to buffer A and b to buffer B.
func (s bindingSets) seedWrites(a, b []uint32) []bind_group_provider.BufferWrite {
	pa, ba := s.stateBuffer(0)
	pb, bb := s.stateBuffer(1)
	return []bind_group_provider.BufferWrite{
		{Provider: pa, Binding: ba, Data: EncodeCells(a)},
		{Provider: pb, Binding: bb, Data: EncodeCells(b)},
	}
}

func (s bindingSets) release() {
	// set 1 borrows from set 0
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != nil {
			s[i].Release()
		}
	}
}
