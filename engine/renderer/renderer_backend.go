package renderer

import (
	"errors"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrNoAdapter is returned when no GPU adapter compatible with the window surface is available.
	ErrNoAdapter = errors.New("renderer: no compatible adapter")

	// ErrNoDevice is returned when the adapter refuses to create a logical device.
	ErrNoDevice = errors.New("renderer: device request failed")

	// ErrNoActiveFrame is returned by frame recording calls made outside BeginFrame/EndFrame,
	// or by DrawCall before BeginRenderPass.
	ErrNoActiveFrame = errors.New("renderer: no active frame")

	// ErrFrameInProgress is returned when a frame or render pass is opened twice, or when a
	// compute dispatch is recorded after the render pass began.
	ErrFrameInProgress = errors.New("renderer: frame already in progress")
)

// maxBindGroups is the WebGPU default limit on bind groups per pipeline layout.
const maxBindGroups = 4

// defaultClearColor is the background the main render pass clears to unless WithClearColor is used.
var defaultClearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4; other counts are rejected.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// Valid reports whether c is a sample count every WebGPU adapter supports.
func (c MSAASampleCount) Valid() bool {
	return c == MSAAOff || c == MSAA4x
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
