package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testComputeSource = `//@oxy:include grid
//@oxy:group 0 0 storage_uniform grid grid
//@oxy:group 0 1 storage_read cellStateIn array<cell>
//@oxy:group 0 2 storage_read_write cellStateOut array<cell>

/* block comment with @compute fn decoy() */
@compute @workgroup_size({{WORKGROUP_SIZE}}, {{WORKGROUP_SIZE}})
fn computeMain(@builtin(global_invocation_id) cell: vec3u) {
    cellStateOut[0] = cellStateIn[0];
}
`

const testVertexSource = `//@oxy:include grid
//@oxy:include cell_vertex
//@oxy:include grid
//@oxy:group 0 0 storage_uniform grid grid
//@oxy:group 0 1 storage_read cellState array<cell>

struct VertexOutput {
    @builtin(position) position: vec4f,
    @location(0) uv: vec2f,
}

@vertex
fn vertexMain(input: VertexInput, @builtin(instance_index) instance: u32) -> VertexOutput {
    var output: VertexOutput;
    output.position = vec4f(input.position, 0.0, 1.0);
    output.uv = input.uv;
    return output;
}
`

const testFragmentSource = `//@oxy:include grid
//@oxy:group 0 0 storage_uniform grid grid

@fragment
fn fragmentMain(@location(0) uv: vec2f) -> @location(0) vec4f {
    return vec4f(uv / grid.size, 0.0, 1.0);
}
`

func TestNewShaderCompute(t *testing.T) {
	s, err := NewShader("life_compute", ShaderTypeCompute, testComputeSource, WithDefine("WORKGROUP_SIZE", "8"))
	require.NoError(t, err)

	assert.Equal(t, "computeMain", s.EntryPoint())
	assert.Equal(t, [3]uint32{8, 8, 1}, s.WorkgroupSize())
	assert.Empty(t, s.VertexLayouts())
	assert.Contains(t, s.Source(), "struct GridUniform")
	assert.Contains(t, s.Source(), "@group(0) @binding(1) var<storage, read> cellStateIn: array<u32>;")
	assert.Contains(t, s.Source(), "@group(0) @binding(2) var<storage, read_write> cellStateOut: array<u32>;")
	assert.Equal(t, s.Source(), s.Module().WGSLDescriptor.Code)

	desc := s.BindGroupLayoutDescriptor(0)
	require.Len(t, desc.Entries, 3)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, desc.Entries[0].Buffer.Type)
	assert.Equal(t, uint64(8), desc.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeReadOnlyStorage, desc.Entries[1].Buffer.Type)
	assert.Equal(t, uint64(4), desc.Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, desc.Entries[2].Buffer.Type)
	for _, e := range desc.Entries {
		assert.Equal(t, wgpu.ShaderStageCompute, e.Visibility)
	}

	binding, ok := s.BindGroupFromVarName(0, "cellStateOut")
	assert.True(t, ok)
	assert.Equal(t, 2, binding)
	assert.Equal(t, "cellStateIn", s.BindGroupVarName(0, 1))
	assert.Len(t, s.Declarations(), 3)
}

func TestNewShaderMissingDefine(t *testing.T) {
	_, err := NewShader("life_compute", ShaderTypeCompute, testComputeSource)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKGROUP_SIZE")
}

func TestNewShaderMissingEntryPoint(t *testing.T) {
	_, err := NewShader("not_a_vertex_shader", ShaderTypeVertex, testFragmentSource)
	assert.ErrorIs(t, err, ErrMissingEntryPoint)
}

func TestNewShaderVertexLayouts(t *testing.T) {
	s, err := NewShader("life_vert", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)

	assert.Equal(t, "vertexMain", s.EntryPoint())
	assert.Equal(t, [3]uint32{0, 0, 0}, s.WorkgroupSize())

	layouts := s.VertexLayouts()
	require.Len(t, layouts, 1)
	layout := layouts[0][0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[0].Format)
	assert.Equal(t, wgpu.VertexFormatFloat32x4, layout.Attributes[1].Format)
	assert.Equal(t, uint64(8), layout.Attributes[1].Offset)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, layout.Attributes[2].Format)
	assert.Equal(t, uint64(24), layout.Attributes[2].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)

	// repeated includes are injected once
	assert.Equal(t, 1, countOccurrences(s.Source(), "struct GridUniform"))
}

func TestMergeBindGroupLayouts(t *testing.T) {
	cs, err := NewShader("c", ShaderTypeCompute, testComputeSource, WithDefine("WORKGROUP_SIZE", "4"))
	require.NoError(t, err)
	vs, err := NewShader("v", ShaderTypeVertex, testVertexSource)
	require.NoError(t, err)
	fs, err := NewShader("f", ShaderTypeFragment, testFragmentSource)
	require.NoError(t, err)

	merged := MergeBindGroupLayouts(cs.BindGroupLayoutDescriptors(), vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors())
	require.Len(t, merged, 1)
	entries := merged[0].Entries
	require.Len(t, entries, 3)

	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment|wgpu.ShaderStageCompute, entries[0].Visibility)
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageCompute, entries[1].Visibility)
	assert.Equal(t, wgpu.ShaderStageCompute, entries[2].Visibility)
	for i, e := range entries {
		assert.Equal(t, uint32(i), e.Binding)
	}
}

func TestParseAnnotationErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "//@oxy:",
		"unknown type":   "//@oxy:texture 0 0",
		"include arity":  "//@oxy:include",
		"include struct": "//@oxy:include camera",
		"group arity":    "//@oxy:group 0 0 storage_uniform grid",
		"group number":   "//@oxy:group a 0 storage_uniform grid grid",
		"address space":  "//@oxy:group 0 0 private grid grid",
		"group type":     "//@oxy:group 0 0 storage_read cells array<light>",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			a, err := parseAnnotation(line, 1)
			assert.Nil(t, a)
			assert.Error(t, err)
		})
	}

	a, err := parseAnnotation("let x = 1; // not an @oxy: annotation", 3)
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestStripComments(t *testing.T) {
	src := "a /* outer /* inner */ still */ b // tail\nc"
	assert.Equal(t, "a  b \nc\n", stripComments(src))
}

func countOccurrences(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
