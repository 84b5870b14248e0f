package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithSharedBindGroupLayout borrows a bind group layout owned by another provider. InitBindGroup
// uses it instead of creating a new one and Release does not free it.
//
// Parameters:
//   - bgl: the borrowed bind group layout
//
// Returns:
//   - BindGroupProviderOption: a function that sets the borrowed layout
func WithSharedBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
		p.sharedLayout = true
	}
}

// WithSharedBuffer borrows a buffer owned by another provider for a specific binding index.
// InitBindGroup binds it as-is and Release does not free it.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the borrowed buffer
//
// Returns:
//   - BindGroupProviderOption: a function that sets the borrowed buffer
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.buffers[binding] = buf
		p.shared[binding] = true
	}
}
