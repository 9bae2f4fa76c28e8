// package device defines the capability surface the drawing core consumes from a GPU
// backend: resource creation on a Device and state binding + draw submission on a Context.
// The WebGPU implementation of both lives in the renderer package; tests substitute
// recording fakes.
package device

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// Device defines the resource-creation capability of a GPU backend.
// All methods are synchronous; created objects are owned by the caller and must be
// released through their own handles.
type Device interface {
	// CreateVertexBuffer creates a GPU vertex buffer initialized with the provided data.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - data: the raw vertex data bytes to upload
	//
	// Returns:
	//   - *wgpu.Buffer: the created vertex buffer
	//   - error: an error if buffer creation fails
	CreateVertexBuffer(label string, data []byte) (*wgpu.Buffer, error)

	// CreateIndexBuffer creates a GPU index buffer initialized with the provided data.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - data: the raw index data bytes to upload
	//
	// Returns:
	//   - *wgpu.Buffer: the created index buffer
	//   - error: an error if buffer creation fails
	CreateIndexBuffer(label string, data []byte) (*wgpu.Buffer, error)

	// CreateUniformBuffer creates a zero-initialized GPU uniform buffer of the given size.
	//
	// Parameters:
	//   - label: a debug label for the buffer
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - *wgpu.Buffer: the created uniform buffer
	//   - error: an error if buffer creation fails
	CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error)

	// CreateInputLayout derives an input layout from a vertex declaration and the vertex
	// signature of the provided shader. The declaration must be non-empty, must not exceed
	// MaxInputElements, and must cover every vertex input location the shader declares.
	//
	// Parameters:
	//   - elements: the ordered vertex declaration
	//   - sh: the shader whose vertex signature the layout is matched against
	//
	// Returns:
	//   - InputLayout: the derived input layout
	//   - error: an error if the declaration is invalid or does not satisfy the shader signature
	CreateInputLayout(elements []VertexElement, sh shader.Shader) (InputLayout, error)

	// CreateSampler creates a GPU sampler from the provided staging configuration.
	//
	// Parameters:
	//   - data: the sampler configuration
	//
	// Returns:
	//   - *wgpu.Sampler: the created sampler
	//   - error: an error if sampler creation fails
	CreateSampler(data common.SamplerStagingData) (*wgpu.Sampler, error)
}

// Context defines the bind-and-submit capability of a GPU backend. Bindings are sticky
// until replaced; a DrawIndexed or DrawIndexedInstanced call submits with whatever is
// currently bound. All calls are synchronous on the caller's thread.
type Context interface {
	// SetInputLayout binds the input layout describing how vertex buffer bytes map to
	// shader inputs for subsequent draws.
	//
	// Parameters:
	//   - layout: the input layout to bind
	SetInputLayout(layout InputLayout)

	// SetVertexBuffer binds a vertex buffer with the given per-vertex stride.
	//
	// Parameters:
	//   - buf: the vertex buffer to bind
	//   - stride: the size of one vertex in bytes
	SetVertexBuffer(buf *wgpu.Buffer, stride uint32)

	// SetIndexBuffer binds an index buffer with the given element format.
	//
	// Parameters:
	//   - buf: the index buffer to bind
	//   - format: the index element format (16- or 32-bit)
	SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat)

	// SetPrimitiveTopology binds the primitive topology for subsequent draws.
	//
	// Parameters:
	//   - topology: the primitive topology
	SetPrimitiveTopology(topology wgpu.PrimitiveTopology)

	// SetBlendState binds the blend state for subsequent draws.
	//
	// Parameters:
	//   - state: the blend state to bind
	SetBlendState(state *wgpu.BlendState)

	// SetDepthStencilState binds the depth/stencil state for subsequent draws.
	//
	// Parameters:
	//   - state: the depth/stencil state to bind
	SetDepthStencilState(state DepthStencilState)

	// SetRasterizerState binds the rasterizer state for subsequent draws.
	//
	// Parameters:
	//   - state: the rasterizer state to bind
	SetRasterizerState(state RasterizerState)

	// SetSamplers binds the provided samplers, in order, for subsequent draws.
	//
	// Parameters:
	//   - samplers: the samplers to bind
	SetSamplers(samplers ...*wgpu.Sampler)

	// SetBindGroups binds the bind groups of the provided providers, in order, for
	// subsequent draws.
	//
	// Parameters:
	//   - providers: the providers whose bind groups will be set
	SetBindGroups(providers ...bind_group_provider.BindGroupProvider)

	// WriteBuffers stages the provided buffer writes to the GPU queue. Each BufferWrite
	// targets a specific buffer on a BindGroupProvider at a given binding and offset.
	//
	// Parameters:
	//   - writes: the buffer writes to stage
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// DrawIndexed submits an indexed draw using the currently bound state.
	//
	// Parameters:
	//   - indexCount: the number of indices to draw
	//   - startIndex: the first index to read from the index buffer
	//   - baseVertex: the value added to each index before reading the vertex buffer
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32)

	// DrawIndexedInstanced submits an indexed, instanced draw using the currently bound state.
	//
	// Parameters:
	//   - indexCount: the number of indices to draw per instance
	//   - instanceCount: the number of instances to draw
	//   - startIndex: the first index to read from the index buffer
	//   - baseVertex: the value added to each index before reading the vertex buffer
	//   - startInstance: the first instance to draw
	DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32)
}
