package life

import (
	"strconv"
	"testing"

	"github.com/Carmen-Shannon/oxy-life/engine/renderer/shader"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShadersCompile runs the processed WGSL through naga so a kernel that no
// longer parses or type-checks fails here rather than at pipeline creation.
func TestShadersCompile(t *testing.T) {
	for _, size := range []int{1, DefaultWorkgroupSize, MaxWorkgroupSize} {
		define := shader.WithDefine("WORKGROUP_SIZE", strconv.Itoa(size))
		sources := []struct {
			name       string
			shaderType shader.ShaderType
			source     string
			options    []shader.ShaderBuilderOption
		}{
			{"compute", shader.ShaderTypeCompute, ComputeShaderSource, []shader.ShaderBuilderOption{define}},
			{"vertex", shader.ShaderTypeVertex, VertexShaderSource, nil},
			{"fragment", shader.ShaderTypeFragment, FragmentShaderSource, nil},
		}
		for _, src := range sources {
			t.Run(src.name+"/"+strconv.Itoa(size), func(t *testing.T) {
				s, err := shader.NewShader(src.name, src.shaderType, src.source, src.options...)
				require.NoError(t, err)

				spirv, err := naga.Compile(s.Source())
				require.NoError(t, err)
				assert.NotEmpty(t, spirv)
			})
		}
	}
}
