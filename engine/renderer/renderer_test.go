package renderer

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSurface struct {
	desc *wgpu.SurfaceDescriptor
}

func (s stubSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return s.desc }
func (s stubSurface) Width() int                                 { return 64 }
func (s stubSurface) Height() int                                { return 64 }

func TestMSAASampleCountValid(t *testing.T) {
	assert.True(t, MSAAOff.Valid())
	assert.True(t, MSAA4x.Valid())
	assert.False(t, MSAASampleCount(2).Valid())
	assert.False(t, MSAASampleCount(8).Valid())
}

func TestNewRendererRejectsSampleCount(t *testing.T) {
	r, err := NewRenderer(BackendTypeWGPU, stubSurface{}, WithMSAA(MSAASampleCount(3)))
	require.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "msaa")
}

func TestNewRendererWithoutSurface(t *testing.T) {
	r, err := NewRenderer(BackendTypeWGPU, stubSurface{}, WithMSAA(MSAAOff))
	require.Error(t, err)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrNoAdapter)
}

func TestBuilderOptions(t *testing.T) {
	r := &renderer{}
	color := wgpu.Color{R: 1, A: 1}
	mode := PresentModeVSync

	WithClearColor(color)(r)
	WithPresentMode(mode)(r)
	WithMSAA(MSAAOff)(r)
	WithForceSoftwareRenderer(true)(r)
	WithLogger(nil)(r)

	require.NotNil(t, r.pendingClearColor)
	assert.Equal(t, color, *r.pendingClearColor)
	require.NotNil(t, r.pendingPresentMode)
	assert.Equal(t, mode, *r.pendingPresentMode)
	require.NotNil(t, r.pendingMSAA)
	assert.Equal(t, MSAAOff, *r.pendingMSAA)
	assert.True(t, r.forceFallbackAdapter)
	assert.Nil(t, r.logger)
}
