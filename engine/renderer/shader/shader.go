package shader

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// shaderImpl is the implementation of the Shader interface.
type shaderImpl struct {
	key             string
	source          string
	vertexEntry     string
	fragmentEntry   string
	vertexLocations []uint32
	layouts         map[int]wgpu.BindGroupLayoutDescriptor
}

// Shader defines the interface for a WGSL shader descriptor: its source, entry points,
// the vertex input locations its vertex stage expects, and the bind group layouts its
// resources require. Effects declare these explicitly at construction; the renderer uses
// the key for pipeline caching and the layouts for bind group creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntry retrieves the vertex stage entry point name.
	//
	// Returns:
	//   - string: the vertex entry point, or an empty string if the shader has no vertex stage
	VertexEntry() string

	// FragmentEntry retrieves the fragment stage entry point name.
	//
	// Returns:
	//   - string: the fragment entry point, or an empty string if the shader has no fragment stage
	FragmentEntry() string

	// VertexLocations retrieves the vertex input locations the vertex stage consumes.
	// An input layout built against this shader must cover every listed location.
	//
	// Returns:
	//   - []uint32: the expected vertex input locations
	VertexLocations() []uint32

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a specific group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor for the group, or an empty descriptor if not set
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all declared bind group layout descriptors keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor
}

var _ Shader = &shaderImpl{}

// NewShader creates a new Shader descriptor configured with the provided options.
//
// Parameters:
//   - key: the unique identifier for this shader
//   - options: a variadic list of ShaderBuilderOption functions to configure the shader
//
// Returns:
//   - Shader: a new Shader instance
func NewShader(key string, options ...ShaderBuilderOption) Shader {
	s := &shaderImpl{
		key:     key,
		layouts: make(map[int]wgpu.BindGroupLayoutDescriptor),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *shaderImpl) Key() string {
	return s.key
}

func (s *shaderImpl) Source() string {
	return s.source
}

func (s *shaderImpl) VertexEntry() string {
	return s.vertexEntry
}

func (s *shaderImpl) FragmentEntry() string {
	return s.fragmentEntry
}

func (s *shaderImpl) VertexLocations() []uint32 {
	return s.vertexLocations
}

func (s *shaderImpl) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.layouts[group]
}

func (s *shaderImpl) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.layouts
}
