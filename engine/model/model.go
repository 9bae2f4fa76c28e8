package model

import (
	"fmt"

	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/states"
)

// Model is a collection of meshes with an optional skeleton. Drawing a model
// runs two passes over its meshes: all opaque parts first, then all alpha
// parts, in mesh order, with no depth sorting within a pass.
type Model interface {
	// Name returns the model's name.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes returns the model's meshes in draw order.
	//
	// Returns:
	//   - []Mesh: the meshes
	Meshes() []Mesh

	// FindMesh returns the first mesh with the given name.
	//
	// Parameters:
	//   - name: the mesh name to look up
	//
	// Returns:
	//   - Mesh: the mesh, or nil if no mesh has that name
	FindMesh(name string) Mesh

	// Skeleton returns the model's skeleton, or nil if the model has none.
	//
	// Returns:
	//   - *Skeleton: the skeleton
	Skeleton() *Skeleton

	// CacheBoneTransforms computes and stores the absolute bone transforms
	// for the given local transforms, one per skeleton bone. The cached
	// transforms are used by DrawWithBones when the caller passes none.
	//
	// Parameters:
	//   - local: local bone transforms, indexed by skeleton bone
	//
	// Returns:
	//   - error: ErrNoBones if the model has no skeleton, or a transform
	//     count mismatch error
	CacheBoneTransforms(local []math32.Matrix4) error

	// BoneTransforms returns the cached absolute bone transforms, or nil if
	// CacheBoneTransforms has not been called.
	//
	// Returns:
	//   - []math32.Matrix4: the cached transforms
	BoneTransforms() []math32.Matrix4

	// Draw draws the model with a single world transform applied to every
	// mesh. Opaque parts are drawn first, then alpha parts, in mesh order.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - rs: the shared render state objects for the target device
	//   - world: the world transform
	//   - view: the view transform
	//   - projection: the projection transform
	//   - options: optional draw configuration
	//
	// Returns:
	//   - error: the first mesh error encountered
	Draw(ctx device.Context, rs states.RenderStates, world, view, projection *math32.Matrix4, options ...DrawOption) error

	// DrawWithBones draws the model with per-mesh world transforms taken
	// from an array of absolute bone transforms. Each mesh's world matrix
	// is its bone's transform composed with the given world transform;
	// meshes whose bone index is unset or out of range use the first
	// transform in the array.
	//
	// When boneTransforms is nil or empty the model's own cached transforms
	// are used instead. On that path a mesh bone index outside the cached
	// array is an error rather than a fallback.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - rs: the shared render state objects for the target device
	//   - boneTransforms: absolute bone transforms, or nil to use the cache
	//   - world: the world transform composed onto each bone transform
	//   - view: the view transform
	//   - projection: the projection transform
	//   - options: optional draw configuration
	//
	// Returns:
	//   - error: ErrNoBones if no transforms were given and none are cached,
	//     ErrBoneIndexOutOfRange on the cached path, or the first mesh
	//     error encountered
	DrawWithBones(ctx device.Context, rs states.RenderStates, boneTransforms []math32.Matrix4, world, view, projection *math32.Matrix4, options ...DrawOption) error

	// DrawSkinned draws the model feeding bone transforms to each part's
	// effect, remapped through each mesh's bone influences.
	//
	// Parameters:
	//   - ctx: the render context to record into
	//   - rs: the shared render state objects for the target device
	//   - boneTransforms: absolute bone transforms, indexed by skeleton bone
	//   - view: the view transform
	//   - projection: the projection transform
	//   - options: optional draw configuration
	//
	// Returns:
	//   - error: ErrBoneTransformsRequired if boneTransforms is empty,
	//     before anything is recorded, or the first mesh error encountered
	DrawSkinned(ctx device.Context, rs states.RenderStates, boneTransforms []math32.Matrix4, view, projection *math32.Matrix4, options ...DrawOption) error

	// UpdateEffects invokes the visitor once for each distinct effect bound
	// to the model's parts. Distinctness is by identity; a part sharing an
	// effect with another part does not produce a second visit.
	//
	// The distinct-effect set is built on first use and reused for the
	// model's lifetime. Rebinding a part's effect afterwards does not
	// refresh the set; callers that rebind should do so before the first
	// UpdateEffects call.
	//
	// Parameters:
	//   - visitor: called once per distinct effect
	UpdateEffects(visitor func(effect.Effect))

	// Release frees the GPU resources owned by the model's meshes.
	Release()
}

// DrawOption is a functional option for configuring a single model draw.
type DrawOption func(*drawConfig)

type drawConfig struct {
	wireframe   bool
	customState func()
}

// WithWireframe draws the model in wireframe regardless of mesh winding.
//
// Returns:
//   - DrawOption: the option to apply.
func WithWireframe() DrawOption {
	return func(c *drawConfig) {
		c.wireframe = true
	}
}

// WithCustomState supplies a hook invoked after each part's effect is
// applied and before its draw is issued, for caller-controlled state
// overrides.
//
// Parameters:
//   - hook: the state override hook.
//
// Returns:
//   - DrawOption: the option to apply.
func WithCustomState(hook func()) DrawOption {
	return func(c *drawConfig) {
		c.customState = hook
	}
}

type model struct {
	name           string
	meshes         []Mesh
	skeleton       *Skeleton
	boneTransforms []math32.Matrix4
	effectCache    []effect.Effect
	cacheBuilt     bool
}

var _ Model = &model{}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []Mesh {
	return m.meshes
}

func (m *model) FindMesh(name string) Mesh {
	for _, mesh := range m.meshes {
		if mesh.Name() == name {
			return mesh
		}
	}
	return nil
}

func (m *model) Skeleton() *Skeleton {
	return m.skeleton
}

func (m *model) CacheBoneTransforms(local []math32.Matrix4) error {
	if m.skeleton.Len() == 0 {
		return fmt.Errorf("model %q: %w", m.name, ErrNoBones)
	}
	abs, err := m.skeleton.AbsoluteTransforms(local)
	if err != nil {
		return fmt.Errorf("model %q: %w", m.name, err)
	}
	m.boneTransforms = abs
	return nil
}

func (m *model) BoneTransforms() []math32.Matrix4 {
	return m.boneTransforms
}

func (m *model) Draw(ctx device.Context, rs states.RenderStates, world, view, projection *math32.Matrix4, options ...DrawOption) error {
	cfg := applyDrawOptions(options)
	for _, alpha := range []bool{false, true} {
		for _, mesh := range m.meshes {
			if err := mesh.PrepareRenderState(ctx, rs, alpha, cfg.wireframe); err != nil {
				return err
			}
			if err := mesh.Draw(ctx, world, view, projection, alpha, cfg.customState); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *model) DrawWithBones(ctx device.Context, rs states.RenderStates, boneTransforms []math32.Matrix4, world, view, projection *math32.Matrix4, options ...DrawOption) error {
	cfg := applyDrawOptions(options)

	cached := false
	if len(boneTransforms) == 0 {
		if len(m.boneTransforms) == 0 {
			return fmt.Errorf("model %q: %w", m.name, ErrNoBones)
		}
		boneTransforms = m.boneTransforms
		cached = true
	}

	if cached {
		for _, mesh := range m.meshes {
			if bi := mesh.BoneIndex(); bi != InvalidBoneIndex && int(bi) >= len(boneTransforms) {
				return fmt.Errorf("model %q: mesh %q bone %d: %w", m.name, mesh.Name(), bi, ErrBoneIndexOutOfRange)
			}
		}
	}

	for _, alpha := range []bool{false, true} {
		for _, mesh := range m.meshes {
			if err := mesh.PrepareRenderState(ctx, rs, alpha, cfg.wireframe); err != nil {
				return err
			}

			var meshWorld math32.Matrix4
			meshWorld.MulMatrices(world, resolveBoneWorld(boneTransforms, mesh.BoneIndex()))
			if err := mesh.Draw(ctx, &meshWorld, view, projection, alpha, cfg.customState); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *model) DrawSkinned(ctx device.Context, rs states.RenderStates, boneTransforms []math32.Matrix4, view, projection *math32.Matrix4, options ...DrawOption) error {
	if len(boneTransforms) == 0 {
		return fmt.Errorf("model %q: %w", m.name, ErrBoneTransformsRequired)
	}

	cfg := applyDrawOptions(options)
	for _, alpha := range []bool{false, true} {
		for _, mesh := range m.meshes {
			if err := mesh.PrepareRenderState(ctx, rs, alpha, cfg.wireframe); err != nil {
				return err
			}
			if err := mesh.DrawSkinned(ctx, boneTransforms, view, projection, alpha, cfg.customState); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *model) UpdateEffects(visitor func(effect.Effect)) {
	if !m.cacheBuilt {
		seen := make(map[effect.Effect]struct{})
		for _, mesh := range m.meshes {
			for _, part := range mesh.Parts() {
				fx := part.Effect()
				if fx == nil {
					continue
				}
				if _, ok := seen[fx]; ok {
					continue
				}
				seen[fx] = struct{}{}
				m.effectCache = append(m.effectCache, fx)
			}
		}
		m.cacheBuilt = true
	}

	if visitor == nil {
		return
	}
	for _, fx := range m.effectCache {
		visitor(fx)
	}
}

func (m *model) Release() {
	for _, mesh := range m.meshes {
		mesh.Release()
	}
}

func applyDrawOptions(options []DrawOption) drawConfig {
	var cfg drawConfig
	for _, opt := range options {
		opt(&cfg)
	}
	return cfg
}
