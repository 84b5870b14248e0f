package renderer

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-life/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-life/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// SurfaceSource is anything that can hand the renderer a native surface and its pixel size.
// window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *zap.Logger

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	pendingClearColor    *wgpu.Color
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify GPU work into a streamlined and idiomatic flow.
// The Renderer manages a cache of pipelines and records each frame into a single command encoder:
// BeginFrame, any number of DispatchCompute calls, BeginRenderPass, any number of DrawCall calls,
// EndFrame (one submission), then Present. CancelFrame abandons a frame before EndFrame.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: a map of pipeline keys to their corresponding Pipeline objects
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines validates and registers one or more pipelines by creating the corresponding GPU
	// pipeline objects (render or compute) via the backend, then caching them by PipelineKey.
	// Pipelines whose keys are already registered are skipped to avoid duplicate GPU resource creation.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if validation or pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and its attachments for a new window size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the attachments could not be recreated
	Resize(width, height int) error

	// SurfaceFormat returns the texture format render pipelines target.
	//
	// Returns:
	//   - wgpu.TextureFormat: the configured surface format
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode changes the present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor changes the background color of the main render pass.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color wgpu.Color)

	// InitMeshBuffers uploads vertex and optional index data and stores the buffers on provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider that owns the mesh buffers
	//   - vertexData: raw vertex bytes
	//   - indexData: raw uint32 index bytes, may be empty for non-indexed meshes
	//   - count: index count, or vertex count when indexData is empty
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, count int) error

	// InitBindGroup creates missing buffers and the bind group for provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to populate
	//   - descriptor: the layout descriptor for the bind group
	//   - bufferUsageOverrides: extra usage flags keyed by binding
	//   - bufferSizeOverrides: buffer sizes keyed by binding
	//
	// Returns:
	//   - error: an error if creation fails
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues each write onto the device queue.
	//
	// Parameters:
	//   - writes: the buffer writes to apply
	//
	// Returns:
	//   - error: an error if a write targets a missing buffer
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// ReadBuffer copies a buffer back to host memory and blocks until the copy completes.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//   - provider: the BindGroupProvider holding the buffer
	//   - binding: the binding index of the buffer
	//
	// Returns:
	//   - []byte: the buffer contents
	//   - error: an error if the readback fails
	ReadBuffer(ctx context.Context, provider bind_group_provider.BindGroupProvider, binding int) ([]byte, error)

	// BeginFrame opens a frame: acquires the surface texture and creates the command encoder.
	//
	// Returns:
	//   - error: ErrFrameInProgress or an acquisition error
	BeginFrame() error

	// CancelFrame abandons the open frame without submitting anything.
	CancelFrame()

	// DispatchCompute records a compute pass using the cached pipeline under pipelineKey.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered compute pipeline
	//   - computeProvider: the BindGroupProvider bound at group 0
	//   - workGroupCount: workgroups per axis
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or no frame is open
	DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error

	// BeginRenderPass opens the main render pass of the current frame.
	//
	// Returns:
	//   - error: ErrNoActiveFrame or ErrFrameInProgress
	BeginRenderPass() error

	// DrawCall records an instanced draw in the current render pass.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered render pipeline
	//   - meshProvider: the BindGroupProvider holding the vertex buffer
	//   - instanceCount: number of instances
	//   - bindGroups: providers bound at groups 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline is unknown or no render pass is open
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndFrame finishes the frame and submits it as one command buffer.
	//
	// Returns:
	//   - error: ErrNoActiveFrame or an encoder error
	EndFrame() error

	// Present displays the submitted frame and releases the surface texture.
	Present()

	// Release frees every cached pipeline and the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type on the surface of source.
// Adapter and device acquisition failures are returned rather than panicking.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - source: provides the platform-specific surface descriptor and initial size, typically a window.Window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: ErrNoAdapter, ErrNoDevice, or a surface configuration error
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		logger:        zap.NewNop(),
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}
	if !msaa.Valid() {
		return nil, fmt.Errorf("renderer: unsupported msaa sample count %d", msaa)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.logger)
	}
	if err != nil {
		return nil, err
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if r.pendingClearColor != nil {
		r.backend.SetClearColor(*r.pendingClearColor)
	}

	if err := r.backend.ConfigureSurface(source.Width(), source.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(color wgpu.Color) {
	r.backend.SetClearColor(color)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := p.Validate(); err != nil {
			return err
		}
		switch p.Type() {
		case pipeline.PipelineTypeCompute:
			if err := r.backend.RegisterComputePipeline(p); err != nil {
				return err
			}
		case pipeline.PipelineTypeRender:
			if err := r.backend.RegisterRenderPipeline(p); err != nil {
				return err
			}
		}
		r.pipelineCache[key] = p
		r.logger.Debug("pipeline registered", zap.String("key", key))
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, count int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, count)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	return r.backend.WriteBuffers(writes)
}

func (r *renderer) ReadBuffer(ctx context.Context, provider bind_group_provider.BindGroupProvider, binding int) ([]byte, error) {
	return r.backend.ReadBuffer(ctx, provider, binding)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) CancelFrame() {
	r.backend.CancelFrame()
}

func (r *renderer) DispatchCompute(pipelineKey string, computeProvider bind_group_provider.BindGroupProvider, workGroupCount [3]uint32) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("compute pipeline %q not found in cache", pipelineKey)
	}

	return r.backend.DispatchCompute(p, computeProvider, workGroupCount)
}

func (r *renderer) BeginRenderPass() error {
	return r.backend.BeginRenderPass()
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, instanceCount uint32, bindGroups []bind_group_provider.BindGroupProvider) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[pipelineKey]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}

	return r.backend.DrawCall(p, meshProvider, instanceCount, bindGroups)
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()

	if r.backend != nil {
		r.backend.Release()
	}
}
