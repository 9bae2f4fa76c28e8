package model

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
)

// MeshPartBuilderOption is a functional option for configuring a new MeshPart.
type MeshPartBuilderOption func(*meshPart)

// NewMeshPart creates a new MeshPart with the provided options applied.
//
// Parameters:
//   - options: zero or more MeshPartBuilderOption to configure the part.
//
// Returns:
//   - MeshPart: the constructed mesh part.
func NewMeshPart(options ...MeshPartBuilderOption) MeshPart {
	p := &meshPart{
		primitiveTopology: wgpu.PrimitiveTopologyTriangleList,
		indexFormat:       wgpu.IndexFormatUint16,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// WithPartName sets the part's debug name.
//
// Parameters:
//   - name: the name used in error messages and resource labels.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithPartName(name string) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.name = name
	}
}

// WithIndexCount sets the number of indices the part draws.
//
// Parameters:
//   - count: the index count.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithIndexCount(count uint32) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.indexCount = count
	}
}

// WithStartIndex sets the offset into the index buffer where the part begins.
//
// Parameters:
//   - start: the first index.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithStartIndex(start uint32) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.startIndex = start
	}
}

// WithVertexOffset sets the base vertex added to each index value.
//
// Parameters:
//   - offset: the base vertex offset.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithVertexOffset(offset int32) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.vertexOffset = offset
	}
}

// WithVertexStride sets the size in bytes of one vertex.
//
// Parameters:
//   - stride: the vertex stride in bytes.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithVertexStride(stride uint32) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.vertexStride = stride
	}
}

// WithPrimitiveTopology sets the primitive topology used to interpret indices.
//
// Parameters:
//   - topology: the wgpu primitive topology.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithPrimitiveTopology(topology wgpu.PrimitiveTopology) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.primitiveTopology = topology
	}
}

// WithIndexFormat sets the index element format.
//
// Parameters:
//   - format: the wgpu index format.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithIndexFormat(format wgpu.IndexFormat) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.indexFormat = format
	}
}

// WithVertexBuffer sets the part's vertex buffer.
//
// Parameters:
//   - buffer: the GPU vertex buffer.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithVertexBuffer(buffer *wgpu.Buffer) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.vertexBuffer = buffer
	}
}

// WithIndexBuffer sets the part's index buffer.
//
// Parameters:
//   - buffer: the GPU index buffer.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithIndexBuffer(buffer *wgpu.Buffer) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.indexBuffer = buffer
	}
}

// WithVertexDeclaration sets the part's vertex input elements.
//
// Parameters:
//   - declaration: the input elements in shader-location order.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithVertexDeclaration(declaration []device.VertexElement) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.vertexDeclaration = declaration
	}
}

// WithInputLayout sets a pre-built input layout for the part.
//
// Parameters:
//   - layout: the input layout.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithInputLayout(layout device.InputLayout) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.inputLayout = layout
	}
}

// WithPartEffect sets the effect the part is drawn with.
//
// Parameters:
//   - fx: the effect.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithPartEffect(fx effect.Effect) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.effect = fx
	}
}

// WithAlpha marks the part as requiring alpha blending.
//
// Parameters:
//   - alpha: true if the part is drawn in the alpha pass.
//
// Returns:
//   - MeshPartBuilderOption: the option to apply.
func WithAlpha(alpha bool) MeshPartBuilderOption {
	return func(p *meshPart) {
		p.isAlpha = alpha
	}
}
