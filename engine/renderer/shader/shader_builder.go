package shader

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shader)

// WithDefine sets the replacement for {{name}} tokens in the shader source.
//
// Parameters:
//   - name: the token name without braces
//   - value: the WGSL text substituted for the token
//
// Returns:
//   - ShaderBuilderOption: a function that registers the define
func WithDefine(name, value string) ShaderBuilderOption {
	return func(s *shader) {
		s.defines[name] = value
	}
}
