package device

import "github.com/cogentcore/webgpu/wgpu"

// MaxInputElements is the maximum number of elements a vertex declaration may hold.
// WebGPU guarantees at least 16 vertex attributes; declarations beyond that are a
// configuration error regardless of adapter.
const MaxInputElements = 16

// VertexElement describes a single element of a vertex declaration: which shader input
// location it feeds, how the bytes are formatted, and where they start within a vertex.
type VertexElement struct {
	// ShaderLocation is the vertex input location in the effect's vertex shader.
	ShaderLocation uint32

	// Format is the data format of this element.
	Format wgpu.VertexFormat

	// Offset is the byte offset of this element from the start of a vertex.
	Offset uint64
}

// InputLayout is an opaque, device-derived binding describing how vertex buffer bytes
// map to a shader's vertex inputs. Created by Device.CreateInputLayout and released by
// the owner when no longer needed.
type InputLayout interface {
	// Release releases any GPU resources held by this layout.
	Release()
}

// DepthStencilState describes depth buffer behavior for a draw.
type DepthStencilState struct {
	// DepthWriteEnabled controls whether draws update the depth buffer.
	DepthWriteEnabled bool

	// DepthCompare is the comparison used against the existing depth value.
	DepthCompare wgpu.CompareFunction
}

// RasterizerState describes triangle facing, culling, and fill behavior for a draw.
type RasterizerState struct {
	// FrontFace selects which winding order is considered front-facing.
	FrontFace wgpu.FrontFace

	// CullMode selects which faces are culled.
	CullMode wgpu.CullMode

	// Wireframe requests non-solid rasterization. WebGPU has no fill-mode control, so
	// backends approximate this by drawing with line-list topology.
	Wireframe bool
}
