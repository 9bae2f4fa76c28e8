package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
)

// MeshPart is a contiguous run of indexed geometry drawn with a single effect.
// A Mesh owns one or more parts; each part carries its own vertex and index
// buffers, vertex declaration, input layout, and alpha classification.
type MeshPart interface {
	// Draw records a single indexed draw for this part on the given context.
	//
	// The part binds its own input layout, vertex buffer, and index buffer,
	// applies the given effect, invokes the optional customState hook, sets
	// the primitive topology, and issues the indexed draw.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - fx: the effect to apply for this draw
	//   - layout: the input layout matching fx and this part's declaration
	//   - customState: optional hook invoked after the effect is applied and
	//     before the draw is issued, for caller-controlled state overrides
	//
	// Returns:
	//   - error: an error if ctx, fx, or layout is nil
	Draw(ctx device.Context, fx effect.Effect, layout device.InputLayout, customState func()) error

	// DrawInstanced records an instanced indexed draw for this part.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - fx: the effect to apply for this draw
	//   - layout: the input layout matching fx and this part's declaration
	//   - instanceCount: number of instances to draw
	//   - startInstance: first instance index
	//   - customState: optional hook invoked before the draw is issued
	//
	// Returns:
	//   - error: an error if ctx, fx, or layout is nil
	DrawInstanced(ctx device.Context, fx effect.Effect, layout device.InputLayout, instanceCount, startInstance uint32, customState func()) error

	// BuildInputLayout creates an input layout binding this part's vertex
	// declaration to the given effect's shader.
	//
	// Parameters:
	//   - dev: the device used to create the layout
	//   - fx: the effect whose shader the layout binds to
	//
	// Returns:
	//   - device.InputLayout: the created layout
	//   - error: ErrMissingVertexDeclaration if the declaration is empty,
	//     ErrVertexDeclarationTooLarge if it exceeds device.MaxInputElements,
	//     or a device error
	BuildInputLayout(dev device.Device, fx effect.Effect) (device.InputLayout, error)

	// RebindEffect replaces this part's effect and rebuilds its input layout.
	//
	// The new layout is created before any state is mutated; if creation
	// fails the part keeps its previous effect and layout untouched.
	//
	// Parameters:
	//   - dev: the device used to rebuild the input layout
	//   - fx: the replacement effect
	//   - isAlpha: whether draws with the new effect need alpha blending
	//
	// Returns:
	//   - error: an error if fx is nil or the layout rebuild fails
	RebindEffect(dev device.Device, fx effect.Effect, isAlpha bool) error

	// Effect returns the effect currently bound to this part.
	//
	// Returns:
	//   - effect.Effect: the bound effect, or nil if none is set
	Effect() effect.Effect

	// InputLayout returns the input layout currently bound to this part.
	//
	// Returns:
	//   - device.InputLayout: the bound layout, or nil if none is set
	InputLayout() device.InputLayout

	// IsAlpha reports whether this part requires alpha blending.
	//
	// Returns:
	//   - bool: true if the part is drawn in the alpha pass
	IsAlpha() bool

	// IndexCount returns the number of indices this part draws.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexDeclaration returns the part's vertex input elements.
	//
	// Returns:
	//   - []device.VertexElement: the declaration, in shader-location order
	VertexDeclaration() []device.VertexElement

	// Release frees the GPU resources owned by this part.
	Release()
}

type meshPart struct {
	name              string
	indexCount        uint32
	startIndex        uint32
	vertexOffset      int32
	vertexStride      uint32
	primitiveTopology wgpu.PrimitiveTopology
	indexFormat       wgpu.IndexFormat
	vertexBuffer      *wgpu.Buffer
	indexBuffer       *wgpu.Buffer
	vertexDeclaration []device.VertexElement
	inputLayout       device.InputLayout
	effect            effect.Effect
	isAlpha           bool
}

var _ MeshPart = &meshPart{}

func (p *meshPart) Draw(ctx device.Context, fx effect.Effect, layout device.InputLayout, customState func()) error {
	if err := p.bind(ctx, fx, layout, customState); err != nil {
		return err
	}
	ctx.DrawIndexed(p.indexCount, p.startIndex, p.vertexOffset)
	return nil
}

func (p *meshPart) DrawInstanced(ctx device.Context, fx effect.Effect, layout device.InputLayout, instanceCount, startInstance uint32, customState func()) error {
	if err := p.bind(ctx, fx, layout, customState); err != nil {
		return err
	}
	ctx.DrawIndexedInstanced(p.indexCount, instanceCount, p.startIndex, p.vertexOffset, startInstance)
	return nil
}

// bind records the shared draw preamble: layout, buffers, effect, custom
// state hook, and topology, in that order.
func (p *meshPart) bind(ctx device.Context, fx effect.Effect, layout device.InputLayout, customState func()) error {
	if ctx == nil {
		return fmt.Errorf("mesh part %q: nil render context", p.name)
	}
	if fx == nil {
		return fmt.Errorf("mesh part %q: nil effect", p.name)
	}
	if layout == nil {
		return fmt.Errorf("mesh part %q: nil input layout", p.name)
	}

	ctx.SetInputLayout(layout)
	ctx.SetVertexBuffer(p.vertexBuffer, p.vertexStride)
	ctx.SetIndexBuffer(p.indexBuffer, p.indexFormat)

	fx.Apply(ctx)

	if customState != nil {
		customState()
	}

	ctx.SetPrimitiveTopology(p.primitiveTopology)
	return nil
}

func (p *meshPart) BuildInputLayout(dev device.Device, fx effect.Effect) (device.InputLayout, error) {
	if fx == nil {
		return nil, fmt.Errorf("mesh part %q: nil effect", p.name)
	}
	if len(p.vertexDeclaration) == 0 {
		return nil, fmt.Errorf("mesh part %q: %w", p.name, ErrMissingVertexDeclaration)
	}
	if len(p.vertexDeclaration) > device.MaxInputElements {
		return nil, fmt.Errorf("mesh part %q: %w", p.name, ErrVertexDeclarationTooLarge)
	}
	return dev.CreateInputLayout(p.vertexDeclaration, fx.Shader())
}

func (p *meshPart) RebindEffect(dev device.Device, fx effect.Effect, isAlpha bool) error {
	if fx == nil {
		return fmt.Errorf("mesh part %q: nil effect", p.name)
	}

	layout, err := p.BuildInputLayout(dev, fx)
	if err != nil {
		return err
	}

	if p.inputLayout != nil {
		p.inputLayout.Release()
	}
	p.inputLayout = layout
	p.effect = fx
	p.isAlpha = isAlpha
	return nil
}

func (p *meshPart) Effect() effect.Effect {
	return p.effect
}

func (p *meshPart) InputLayout() device.InputLayout {
	return p.inputLayout
}

func (p *meshPart) IsAlpha() bool {
	return p.isAlpha
}

func (p *meshPart) IndexCount() uint32 {
	return p.indexCount
}

func (p *meshPart) VertexDeclaration() []device.VertexElement {
	return p.vertexDeclaration
}

func (p *meshPart) Release() {
	if p.inputLayout != nil {
		p.inputLayout.Release()
		p.inputLayout = nil
	}
	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
}
