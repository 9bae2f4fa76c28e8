package model

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/states"
)

// Mesh is a named collection of mesh parts sharing render state. Each mesh
// may reference a bone in the model's skeleton and, for skinned rendering,
// carries the subset of bones that influence its vertices.
type Mesh interface {
	// Name returns the mesh's name.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// BoneIndex returns the index of the skeleton bone this mesh is attached
	// to, or InvalidBoneIndex if the mesh is not attached to a bone.
	//
	// Returns:
	//   - int32: the bone index
	BoneIndex() int32

	// SetBoneIndex attaches the mesh to the given skeleton bone.
	//
	// Parameters:
	//   - index: the bone index, or InvalidBoneIndex to detach
	SetBoneIndex(index int32)

	// BoneInfluences returns the skeleton bone indices that influence this
	// mesh's vertices, in palette order. Empty for non-skinned meshes.
	//
	// Returns:
	//   - []uint32: the influencing bone indices
	BoneInfluences() []uint32

	// Parts returns the mesh's parts.
	//
	// Returns:
	//   - []MeshPart: the parts, in draw order
	Parts() []MeshPart

	// PrepareRenderState records the blend, depth, rasterizer, and sampler
	// state for one pass over this mesh. It is called once per mesh per pass,
	// whether or not any part matches the pass.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - rs: the shared render state objects for the target device
	//   - alpha: true for the alpha pass, false for the opaque pass
	//   - wireframe: true to draw in wireframe regardless of winding
	//
	// Returns:
	//   - error: an error if ctx or rs is nil
	PrepareRenderState(ctx device.Context, rs states.RenderStates, alpha bool, wireframe bool) error

	// Draw draws the parts of this mesh whose alpha classification matches
	// the given pass, setting world, view, and projection on each part's
	// effect when the effect accepts matrices.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - world: the world transform for this mesh
	//   - view: the view transform
	//   - projection: the projection transform
	//   - alpha: true to draw alpha parts, false to draw opaque parts
	//   - customState: optional hook forwarded to each part draw
	//
	// Returns:
	//   - error: the first part draw error encountered
	Draw(ctx device.Context, world, view, projection *math32.Matrix4, alpha bool, customState func()) error

	// DrawSkinned draws the parts of this mesh whose alpha classification
	// matches the given pass, feeding the bone transform array to each
	// part's effect.
	//
	// Parts whose effect accepts a bone palette receive the transforms
	// remapped through this mesh's bone influences; a mesh with no recorded
	// influences cannot drive such an effect and the draw fails. Parts whose
	// effect only accepts matrices receive the transform of this mesh's
	// bone as their world matrix, falling back to the first transform when
	// the mesh's bone index is unset or out of range.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - boneTransforms: absolute bone transforms, indexed by skeleton bone
	//   - view: the view transform
	//   - projection: the projection transform
	//   - alpha: true to draw alpha parts, false to draw opaque parts
	//   - customState: optional hook forwarded to each part draw
	//
	// Returns:
	//   - error: ErrBoneTransformsRequired if boneTransforms is empty,
	//     ErrMissingBoneInfluences if a skinning effect has no influence
	//     data, or the first part draw error encountered
	DrawSkinned(ctx device.Context, boneTransforms []math32.Matrix4, view, projection *math32.Matrix4, alpha bool, customState func()) error

	// Release frees the GPU resources owned by this mesh's parts.
	Release()
}

type mesh struct {
	name           string
	boneIndex      int32
	boneInfluences []uint32
	parts          []MeshPart
	ccw            bool
	pmAlpha        bool
}

var _ Mesh = &mesh{}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) BoneIndex() int32 {
	return m.boneIndex
}

func (m *mesh) SetBoneIndex(index int32) {
	m.boneIndex = index
}

func (m *mesh) BoneInfluences() []uint32 {
	return m.boneInfluences
}

func (m *mesh) Parts() []MeshPart {
	return m.parts
}

func (m *mesh) PrepareRenderState(ctx device.Context, rs states.RenderStates, alpha bool, wireframe bool) error {
	if ctx == nil {
		return fmt.Errorf("mesh %q: nil render context", m.name)
	}
	if rs == nil {
		return fmt.Errorf("mesh %q: nil render states", m.name)
	}

	if alpha {
		if m.pmAlpha {
			ctx.SetBlendState(rs.AlphaBlend())
		} else {
			ctx.SetBlendState(rs.NonPremultiplied())
		}
		ctx.SetDepthStencilState(rs.DepthRead())
	} else {
		ctx.SetBlendState(rs.Opaque())
		ctx.SetDepthStencilState(rs.DepthDefault())
	}

	if wireframe {
		ctx.SetRasterizerState(rs.Wireframe())
	} else if m.ccw {
		ctx.SetRasterizerState(rs.CullCounterClockwise())
	} else {
		ctx.SetRasterizerState(rs.CullClockwise())
	}

	ctx.SetSamplers(rs.LinearWrap(), rs.LinearWrap())
	return nil
}

func (m *mesh) Draw(ctx device.Context, world, view, projection *math32.Matrix4, alpha bool, customState func()) error {
	for _, part := range m.parts {
		if part.IsAlpha() != alpha {
			continue
		}

		fx := part.Effect()
		if fx == nil {
			return fmt.Errorf("mesh %q: part has no effect bound", m.name)
		}
		if mfx, ok := fx.(effect.MatrixEffect); ok {
			mfx.SetMatrices(world, view, projection)
		}

		if err := part.Draw(ctx, fx, part.InputLayout(), customState); err != nil {
			return fmt.Errorf("mesh %q: %w", m.name, err)
		}
	}
	return nil
}

func (m *mesh) DrawSkinned(ctx device.Context, boneTransforms []math32.Matrix4, view, projection *math32.Matrix4, alpha bool, customState func()) error {
	if len(boneTransforms) == 0 {
		return fmt.Errorf("mesh %q: %w", m.name, ErrBoneTransformsRequired)
	}

	for _, part := range m.parts {
		if part.IsAlpha() != alpha {
			continue
		}

		fx := part.Effect()
		if fx == nil {
			return fmt.Errorf("mesh %q: part has no effect bound", m.name)
		}
		if mfx, ok := fx.(effect.MatrixEffect); ok {
			mfx.SetView(view)
			mfx.SetProjection(projection)
		}

		if sfx, ok := fx.(effect.SkinningEffect); ok {
			if len(m.boneInfluences) == 0 {
				return fmt.Errorf("mesh %q: %w", m.name, ErrMissingBoneInfluences)
			}
			palette := make([]math32.Matrix4, len(m.boneInfluences))
			for i, b := range m.boneInfluences {
				if int(b) < len(boneTransforms) {
					palette[i] = boneTransforms[b]
				} else {
					palette[i] = boneTransforms[0]
				}
			}
			if err := sfx.SetBoneTransforms(palette); err != nil {
				return fmt.Errorf("mesh %q: %w", m.name, err)
			}
		} else if mfx, ok := fx.(effect.MatrixEffect); ok {
			mfx.SetWorld(resolveBoneWorld(boneTransforms, m.boneIndex))
		}

		if err := part.Draw(ctx, fx, part.InputLayout(), customState); err != nil {
			return fmt.Errorf("mesh %q: %w", m.name, err)
		}
	}
	return nil
}

func (m *mesh) Release() {
	for _, part := range m.parts {
		part.Release()
	}
}

// resolveBoneWorld picks the transform for the given bone index, falling
// back to the first transform when the index is unset or out of range.
func resolveBoneWorld(transforms []math32.Matrix4, boneIndex int32) *math32.Matrix4 {
	if boneIndex != InvalidBoneIndex && int(boneIndex) < len(transforms) {
		return &transforms[boneIndex]
	}
	return &transforms[0]
}
