package life

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/grid"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// releaseRecorder records Release instead of freeing the fake device's placeholder handles.
type releaseRecorder struct {
	bind_group_provider.BindGroupProvider
	released bool
}

func (r *releaseRecorder) Release() { r.released = true }

func recordProviders(t *testing.T) *[]*releaseRecorder {
	t.Helper()
	var created []*releaseRecorder
	orig := newProvider
	newProvider = func(label string, options ...bind_group_provider.BindGroupProviderOption) bind_group_provider.BindGroupProvider {
		r := &releaseRecorder{BindGroupProvider: orig(label, options...)}
		created = append(created, r)
		return r
	}
	t.Cleanup(func() { newProvider = orig })
	return &created
}

func stateLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: UniformBinding, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 8}},
			{Binding: ReadBinding, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: WriteBinding, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
		},
	}
}

func TestNewBindingSetsSharesBuffers(t *testing.T) {
	created := recordProviders(t)
	dev := newFakeDevice()

	sets, err := newBindingSets(dev, grid.Grid{Width: 4, Height: 4}, stateLayout())
	require.NoError(t, err)
	require.Len(t, *created, 2)

	assert.Len(t, dev.buffers, 3)
	assert.Same(t, sets[0].Buffer(ReadBinding), sets[1].Buffer(WriteBinding))
	assert.Same(t, sets[0].Buffer(WriteBinding), sets[1].Buffer(ReadBinding))
	assert.Len(t, dev.buffers[sets[0].Buffer(ReadBinding)], 64)

	sets.release()
	assert.True(t, (*created)[0].released)
	assert.True(t, (*created)[1].released)
}

func TestNewBindingSetsReleasesOnFailure(t *testing.T) {
	failure := errors.New("bind group rejected")

	for _, tc := range []struct {
		name   string
		failAt int
	}{
		{"binding set A", 1},
		{"binding set B", 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			created := recordProviders(t)
			dev := newFakeDevice()
			dev.failInit, dev.failInitAt = failure, tc.failAt

			_, err := newBindingSets(dev, grid.Grid{Width: 4, Height: 4}, stateLayout())
			require.ErrorIs(t, err, failure)
			assert.Contains(t, err.Error(), tc.name)

			require.Len(t, *created, tc.failAt)
			for _, p := range *created {
				assert.True(t, p.released, "%s left allocated", p.Label())
			}
		})
	}
}
