package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// pipeline is the implementation of the Pipeline interface.
// It holds one fully-resolved render state combination and, once registered with the
// backend, the WebGPU pipeline object created for it.
type pipeline struct {
	// pipelineKey is the unique identifier for this state combination, used for caching and lookups
	pipelineKey string

	// sh is the shader this pipeline renders with; required before registration
	sh shader.Shader

	// vertexLayouts describe the vertex buffer(s) feeding the shader's vertex inputs
	vertexLayouts []wgpu.VertexBufferLayout

	// renderPipeline is the created pipeline object, nil until registered
	renderPipeline *wgpu.RenderPipeline

	// The following properties configure the pipeline during creation and are set with
	// the builder options. Together they identify the variant.

	depthWriteEnabled bool
	depthCompare      wgpu.CompareFunction
	blendState        *wgpu.BlendState
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
}

// Pipeline defines the interface for one render pipeline variant: a shader plus the
// full fixed-function state (blend, depth, cull, topology) it is drawn with. The
// backend creates one GPU pipeline per distinct variant and caches it by Key.
type Pipeline interface {
	// Key returns the unique key identifying this state combination, used for caching
	// and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline variant
	Key() string

	// Shader retrieves the shader this pipeline renders with.
	//
	// Returns:
	//   - shader.Shader: the shader, or nil if not set
	Shader() shader.Shader

	// VertexLayouts retrieves the vertex buffer layouts feeding the shader's inputs.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []wgpu.VertexBufferLayout

	// RenderPipeline returns the created WebGPU pipeline object, or nil if this variant
	// has not been registered with the backend yet.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline object
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the created WebGPU pipeline object on this variant.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// DepthWriteEnabled returns whether depth writing is enabled for this variant.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthCompare returns the depth comparison function for this variant.
	//
	// Returns:
	//   - wgpu.CompareFunction: the depth comparison function
	DepthCompare() wgpu.CompareFunction

	// BlendState returns the blend state for this variant.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, or nil to disable blending
	BlendState() *wgpu.BlendState

	// CullMode returns the cull mode for this variant.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology for this variant.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order for this variant.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask for this variant.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask
	WriteMask() wgpu.ColorWriteMask
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline variant descriptor.
//
// Parameters:
//   - pipelineKey: the unique key for this state combination
//   - opts: a variadic list of PipelineBuilderOption functions to configure the variant
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthWriteEnabled: true,
		depthCompare:      wgpu.CompareFunctionLessEqual,
		cullMode:          wgpu.CullModeBack,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// VariantKey derives a cache key from a shader key and the fixed-function state that
// distinguishes pipeline variants. Two draws producing the same key can share one GPU
// pipeline object.
//
// Parameters:
//   - shaderKey: the shader's cache key
//   - stride: the vertex buffer stride in bytes
//   - topology: the primitive topology
//   - blend: the blend state (nil disables blending)
//   - depthWrite: whether depth writing is enabled
//   - depthCompare: the depth comparison function
//   - frontFace: the front face winding order
//   - cullMode: the cull mode
//
// Returns:
//   - string: the derived cache key
func VariantKey(shaderKey string, stride uint32, topology wgpu.PrimitiveTopology, blend *wgpu.BlendState, depthWrite bool, depthCompare wgpu.CompareFunction, frontFace wgpu.FrontFace, cullMode wgpu.CullMode) string {
	blendPart := "off"
	if blend != nil {
		blendPart = fmt.Sprintf("%d.%d.%d-%d.%d.%d",
			blend.Color.Operation, blend.Color.SrcFactor, blend.Color.DstFactor,
			blend.Alpha.Operation, blend.Alpha.SrcFactor, blend.Alpha.DstFactor)
	}
	return fmt.Sprintf("%s|s%d|t%d|b%s|dw%t|dc%d|f%d|c%d",
		shaderKey, stride, topology, blendPart, depthWrite, depthCompare, frontFace, cullMode)
}

func (p *pipeline) Key() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() shader.Shader {
	return p.sh
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexLayouts
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthCompare() wgpu.CompareFunction {
	return p.depthCompare
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}
