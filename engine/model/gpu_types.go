package model

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
)

// GPUVertex is the GPU-aligned representation of a single mesh vertex for static
// (non-skinned) models. Matches the basic effect's VSIn layout exactly.
// Size: 32 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Declaration returns the vertex declaration describing this vertex layout.
//
// Returns:
//   - []device.VertexElement: the ordered input elements for this layout
func (g *GPUVertex) Declaration() []device.VertexElement {
	return []device.VertexElement{
		{ShaderLocation: 0, Format: wgpu.VertexFormatFloat32x3, Offset: 0},
		{ShaderLocation: 1, Format: wgpu.VertexFormatFloat32x3, Offset: 12},
		{ShaderLocation: 2, Format: wgpu.VertexFormatFloat32x2, Offset: 24},
	}
}

// GPUSkinnedVertex is the GPU-aligned representation of a single mesh vertex for
// skinned (bone-animated) models. It extends GPUVertex with per-vertex bone data
// matching the skinned effect's VSIn layout.
// Size: 64 bytes.
type GPUSkinnedVertex struct {
	GPUVertex              // offset  0: base vertex data (position, normal, uv) (32 bytes)
	BoneIndices [4]uint32  // offset 32: indices of up to 4 influencing bones (16 bytes)
	BoneWeights [4]float32 // offset 48: blend weights for each bone (must sum to 1.0) (16 bytes)
}

// Size returns the size of the GPUSkinnedVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUSkinnedVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Declaration returns the vertex declaration describing this skinned vertex layout.
//
// Returns:
//   - []device.VertexElement: the ordered input elements for this layout
func (g *GPUSkinnedVertex) Declaration() []device.VertexElement {
	return []device.VertexElement{
		{ShaderLocation: 0, Format: wgpu.VertexFormatFloat32x3, Offset: 0},
		{ShaderLocation: 1, Format: wgpu.VertexFormatFloat32x3, Offset: 12},
		{ShaderLocation: 2, Format: wgpu.VertexFormatFloat32x2, Offset: 24},
		{ShaderLocation: 3, Format: wgpu.VertexFormatUint32x4, Offset: 32},
		{ShaderLocation: 4, Format: wgpu.VertexFormatFloat32x4, Offset: 48},
	}
}
