// package effect defines the material/effect capability model consumed by the drawing
// core. An Effect configures all shader and constant state for a draw when applied;
// optional capabilities (transform setting, skinning) are expressed as separate
// interfaces and resolved with a single interface assertion per draw, never reflection.
package effect

import (
	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// MaxBones is the maximum number of bone matrices a skinning-capable effect accepts
// in one palette.
const MaxBones = 96

// Effect defines the interface for a render effect (material). Applying an effect
// stages its constant data and binds its GPU resources so a subsequent draw uses them.
// Effects may be shared by many mesh parts; Apply is read-only with respect to shared
// state and safe to call repeatedly within a frame.
type Effect interface {
	// Name retrieves the effect identifier.
	//
	// Returns:
	//   - string: the effect name
	Name() string

	// Shader retrieves the shader descriptor backing this effect. The drawing core uses
	// its vertex signature to derive input layouts and the renderer uses its key for
	// pipeline caching.
	//
	// Returns:
	//   - shader.Shader: the shader descriptor
	Shader() shader.Shader

	// Provider retrieves the bind group provider holding GPU-side resources for this effect.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider
	Provider() bind_group_provider.BindGroupProvider

	// Apply stages this effect's constant data and binds its resources on the given
	// context, immediately before a draw call.
	//
	// Parameters:
	//   - ctx: the context to apply the effect on
	Apply(ctx device.Context)
}

// MatrixEffect is the optional transform-setting capability. Effects that implement it
// accept world/view/projection transforms, combined or individually.
type MatrixEffect interface {
	// SetMatrices sets the world, view, and projection transforms in one call.
	//
	// Parameters:
	//   - world: the world transform
	//   - view: the view transform
	//   - projection: the projection transform
	SetMatrices(world, view, projection *math32.Matrix4)

	// SetWorld sets the world transform.
	//
	// Parameters:
	//   - world: the world transform
	SetWorld(world *math32.Matrix4)

	// SetView sets the view transform.
	//
	// Parameters:
	//   - view: the view transform
	SetView(view *math32.Matrix4)

	// SetProjection sets the projection transform.
	//
	// Parameters:
	//   - projection: the projection transform
	SetProjection(projection *math32.Matrix4)
}

// SkinningEffect is the optional skinning capability. Effects that implement it accept
// a palette of bone transforms resolved per vertex by the shader.
type SkinningEffect interface {
	// SetBoneTransforms replaces the effect's bone transform palette.
	//
	// Parameters:
	//   - transforms: the bone transforms, at most MaxBones entries
	//
	// Returns:
	//   - error: an error if the palette is empty or exceeds MaxBones
	SetBoneTransforms(transforms []math32.Matrix4) error
}
