package shader

import "github.com/cogentcore/webgpu/wgpu"

// ShaderBuilderOption is a functional option used to configure a Shader during construction.
type ShaderBuilderOption func(*shaderImpl)

// WithSource sets the WGSL source code for this shader.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - ShaderBuilderOption: a function that sets the source for this shader
func WithSource(source string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.source = source
	}
}

// WithVertexEntry sets the vertex stage entry point name for this shader.
//
// Parameters:
//   - entry: the vertex entry point name
//
// Returns:
//   - ShaderBuilderOption: a function that sets the vertex entry point for this shader
func WithVertexEntry(entry string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.vertexEntry = entry
	}
}

// WithFragmentEntry sets the fragment stage entry point name for this shader.
//
// Parameters:
//   - entry: the fragment entry point name
//
// Returns:
//   - ShaderBuilderOption: a function that sets the fragment entry point for this shader
func WithFragmentEntry(entry string) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.fragmentEntry = entry
	}
}

// WithVertexLocations sets the vertex input locations the vertex stage consumes.
//
// Parameters:
//   - locations: the expected vertex input locations
//
// Returns:
//   - ShaderBuilderOption: a function that sets the vertex locations for this shader
func WithVertexLocations(locations ...uint32) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.vertexLocations = locations
	}
}

// WithBindGroupLayout sets the bind group layout descriptor for a specific group index.
//
// Parameters:
//   - group: the bind group index
//   - layout: the layout descriptor for the group
//
// Returns:
//   - ShaderBuilderOption: a function that sets the layout descriptor for this shader
func WithBindGroupLayout(group int, layout wgpu.BindGroupLayoutDescriptor) ShaderBuilderOption {
	return func(s *shaderImpl) {
		s.layouts[group] = layout
	}
}
