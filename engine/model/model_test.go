package model

import (
	"errors"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/states"
)

type recordedDraw struct {
	indexCount uint32
	startIndex uint32
	baseVertex int32
}

// recordingContext captures every call made against it, in order, so tests can
// assert on exact draw sequencing.
type recordingContext struct {
	calls   []string
	draws   []recordedDraw
	blends  []*wgpu.BlendState
	depths  []device.DepthStencilState
	rasters []device.RasterizerState
}

var _ device.Context = &recordingContext{}

func (c *recordingContext) SetInputLayout(layout device.InputLayout) {
	c.calls = append(c.calls, "input-layout")
}

func (c *recordingContext) SetVertexBuffer(buf *wgpu.Buffer, stride uint32) {
	c.calls = append(c.calls, "vertex-buffer")
}

func (c *recordingContext) SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat) {
	c.calls = append(c.calls, "index-buffer")
}

func (c *recordingContext) SetPrimitiveTopology(topology wgpu.PrimitiveTopology) {
	c.calls = append(c.calls, "topology")
}

func (c *recordingContext) SetBlendState(state *wgpu.BlendState) {
	c.calls = append(c.calls, "blend")
	c.blends = append(c.blends, state)
}

func (c *recordingContext) SetDepthStencilState(state device.DepthStencilState) {
	c.calls = append(c.calls, "depth")
	c.depths = append(c.depths, state)
}

func (c *recordingContext) SetRasterizerState(state device.RasterizerState) {
	c.calls = append(c.calls, "raster")
	c.rasters = append(c.rasters, state)
}

func (c *recordingContext) SetSamplers(samplers ...*wgpu.Sampler) {
	c.calls = append(c.calls, "samplers")
}

func (c *recordingContext) SetBindGroups(providers ...bind_group_provider.BindGroupProvider) {
	c.calls = append(c.calls, "bind-groups")
}

func (c *recordingContext) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	c.calls = append(c.calls, "write-buffers")
}

func (c *recordingContext) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	c.calls = append(c.calls, "draw")
	c.draws = append(c.draws, recordedDraw{indexCount, startIndex, baseVertex})
}

func (c *recordingContext) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	c.calls = append(c.calls, "draw-instanced")
	c.draws = append(c.draws, recordedDraw{indexCount, startIndex, baseVertex})
}

// countCalls returns how many entries in calls equal name.
func (c *recordingContext) countCalls(name string) int {
	n := 0
	for _, call := range c.calls {
		if call == name {
			n++
		}
	}
	return n
}

type fakeLayout struct {
	released bool
}

func (l *fakeLayout) Release() {
	l.released = true
}

// fakeDevice satisfies device.Device for tests; CreateInputLayout hands out
// fresh fakeLayouts unless layoutErr is set.
type fakeDevice struct {
	layoutErr   error
	layoutCount int
}

var _ device.Device = &fakeDevice{}

func (d *fakeDevice) CreateVertexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	return nil, nil
}

func (d *fakeDevice) CreateIndexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	return nil, nil
}

func (d *fakeDevice) CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	return nil, nil
}

func (d *fakeDevice) CreateInputLayout(elements []device.VertexElement, sh shader.Shader) (device.InputLayout, error) {
	if d.layoutErr != nil {
		return nil, d.layoutErr
	}
	d.layoutCount++
	return &fakeLayout{}, nil
}

func (d *fakeDevice) CreateSampler(data common.SamplerStagingData) (*wgpu.Sampler, error) {
	return nil, nil
}

// fakeStates satisfies states.RenderStates with distinct blend state pointers
// so tests can tell which state a mesh selected.
type fakeStates struct {
	opaque           *wgpu.BlendState
	alphaBlend       *wgpu.BlendState
	nonPremultiplied *wgpu.BlendState
}

var _ states.RenderStates = &fakeStates{}

func newFakeStates() *fakeStates {
	return &fakeStates{
		opaque:           &wgpu.BlendState{},
		alphaBlend:       &wgpu.BlendState{},
		nonPremultiplied: &wgpu.BlendState{},
	}
}

func (s *fakeStates) Opaque() *wgpu.BlendState           { return s.opaque }
func (s *fakeStates) AlphaBlend() *wgpu.BlendState       { return s.alphaBlend }
func (s *fakeStates) NonPremultiplied() *wgpu.BlendState { return s.nonPremultiplied }

func (s *fakeStates) DepthDefault() device.DepthStencilState {
	return device.DepthStencilState{DepthWriteEnabled: true, DepthCompare: wgpu.CompareFunctionLessEqual}
}

func (s *fakeStates) DepthRead() device.DepthStencilState {
	return device.DepthStencilState{DepthWriteEnabled: false, DepthCompare: wgpu.CompareFunctionLessEqual}
}

func (s *fakeStates) CullClockwise() device.RasterizerState {
	return device.RasterizerState{FrontFace: wgpu.FrontFaceCCW, CullMode: wgpu.CullModeBack}
}

func (s *fakeStates) CullCounterClockwise() device.RasterizerState {
	return device.RasterizerState{FrontFace: wgpu.FrontFaceCW, CullMode: wgpu.CullModeBack}
}

func (s *fakeStates) Wireframe() device.RasterizerState {
	return device.RasterizerState{FrontFace: wgpu.FrontFaceCCW, CullMode: wgpu.CullModeNone, Wireframe: true}
}

func (s *fakeStates) LinearWrap() *wgpu.Sampler  { return nil }
func (s *fakeStates) LinearClamp() *wgpu.Sampler { return nil }

// fakeEffect satisfies effect.Effect without any transform capability.
type fakeEffect struct {
	name    string
	applies int
}

var _ effect.Effect = &fakeEffect{}

func (f *fakeEffect) Name() string {
	return f.name
}

func (f *fakeEffect) Shader() shader.Shader {
	return nil
}

func (f *fakeEffect) Provider() bind_group_provider.BindGroupProvider {
	return nil
}

func (f *fakeEffect) Apply(ctx device.Context) {
	f.applies++
	if rc, ok := ctx.(*recordingContext); ok {
		rc.calls = append(rc.calls, "apply")
	}
}

// fakeMatrixEffect adds the transform capability and records what it was given.
type fakeMatrixEffect struct {
	fakeEffect
	world      math32.Matrix4
	view       math32.Matrix4
	projection math32.Matrix4
	worldSet   bool
}

var _ effect.MatrixEffect = &fakeMatrixEffect{}

func (f *fakeMatrixEffect) SetMatrices(world, view, projection *math32.Matrix4) {
	f.world = *world
	f.view = *view
	f.projection = *projection
	f.worldSet = true
}

func (f *fakeMatrixEffect) SetWorld(world *math32.Matrix4) {
	f.world = *world
	f.worldSet = true
}

func (f *fakeMatrixEffect) SetView(view *math32.Matrix4) {
	f.view = *view
}

func (f *fakeMatrixEffect) SetProjection(projection *math32.Matrix4) {
	f.projection = *projection
}

// fakeSkinnedEffect adds the skinning capability and records the palette it
// was given.
type fakeSkinnedEffect struct {
	fakeMatrixEffect
	palette    []math32.Matrix4
	paletteErr error
}

var _ effect.SkinningEffect = &fakeSkinnedEffect{}

func (f *fakeSkinnedEffect) SetBoneTransforms(transforms []math32.Matrix4) error {
	if f.paletteErr != nil {
		return f.paletteErr
	}
	f.palette = append([]math32.Matrix4{}, transforms...)
	return nil
}

// testPart builds a part with a bound effect and layout so draws succeed.
func testPart(indexCount uint32, fx effect.Effect, alpha bool) MeshPart {
	return NewMeshPart(
		WithIndexCount(indexCount),
		WithVertexStride(32),
		WithPartEffect(fx),
		WithInputLayout(&fakeLayout{}),
		WithAlpha(alpha),
	)
}

// rotationY returns a Y-axis rotation matrix, handy as a distinct transform.
func rotationY(angle float32) math32.Matrix4 {
	var m math32.Matrix4
	m.SetRotationY(angle)
	return m
}

func TestModelDrawOpaqueThenAlpha(t *testing.T) {
	fx1 := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "opaque-1"}}
	fx2 := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "alpha-1"}}
	fx3 := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "opaque-2"}}

	m := NewModel(WithMeshes(
		NewMesh(
			WithMeshName("first"),
			WithParts(testPart(10, fx1, false), testPart(20, fx2, true)),
		),
		NewMesh(
			WithMeshName("second"),
			WithParts(testPart(30, fx3, false)),
		),
	))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.Draw(ctx, newFakeStates(), world, world, world)
	require.NoError(t, err)

	// All opaque parts draw before any alpha part, in mesh order.
	require.Len(t, ctx.draws, 3)
	assert.Equal(t, uint32(10), ctx.draws[0].indexCount)
	assert.Equal(t, uint32(30), ctx.draws[1].indexCount)
	assert.Equal(t, uint32(20), ctx.draws[2].indexCount)
}

func TestModelDrawPreparesEveryMeshEachPass(t *testing.T) {
	fx1 := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "a"}}
	fx2 := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "b"}}

	// Neither mesh has alpha parts, but state is still prepared for both
	// meshes on both passes.
	m := NewModel(WithMeshes(
		NewMesh(WithMeshName("first"), WithParts(testPart(6, fx1, false))),
		NewMesh(WithMeshName("second"), WithParts(testPart(9, fx2, false))),
	))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.Draw(ctx, newFakeStates(), world, world, world)
	require.NoError(t, err)

	assert.Equal(t, 4, ctx.countCalls("blend"))
	assert.Equal(t, 4, ctx.countCalls("depth"))
	assert.Equal(t, 4, ctx.countCalls("raster"))
	assert.Equal(t, 4, ctx.countCalls("samplers"))
	assert.Equal(t, 2, ctx.countCalls("draw"))
}

func TestModelDrawBlendStateSelection(t *testing.T) {
	fx := &fakeMatrixEffect{}
	rs := newFakeStates()
	world := math32.Identity4()

	// Premultiplied mesh selects the premultiplied alpha blend state.
	ctx := &recordingContext{}
	m := NewModel(WithMeshes(NewMesh(WithParts(testPart(3, fx, true)))))
	require.NoError(t, m.Draw(ctx, rs, world, world, world))
	require.Len(t, ctx.blends, 2)
	assert.Same(t, rs.opaque, ctx.blends[0])
	assert.Same(t, rs.alphaBlend, ctx.blends[1])
	assert.True(t, ctx.depths[0].DepthWriteEnabled)
	assert.False(t, ctx.depths[1].DepthWriteEnabled)

	// Straight-alpha mesh selects the non-premultiplied blend state.
	ctx = &recordingContext{}
	m = NewModel(WithMeshes(NewMesh(
		WithPremultipliedAlpha(false),
		WithParts(testPart(3, fx, true)),
	)))
	require.NoError(t, m.Draw(ctx, rs, world, world, world))
	require.Len(t, ctx.blends, 2)
	assert.Same(t, rs.nonPremultiplied, ctx.blends[1])
}

func TestModelDrawWireframeOverridesCulling(t *testing.T) {
	fx := &fakeMatrixEffect{}
	m := NewModel(WithMeshes(NewMesh(WithParts(testPart(3, fx, false)))))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.Draw(ctx, newFakeStates(), world, world, world, WithWireframe())
	require.NoError(t, err)

	require.NotEmpty(t, ctx.rasters)
	for _, rst := range ctx.rasters {
		assert.True(t, rst.Wireframe)
		assert.Equal(t, wgpu.CullModeNone, rst.CullMode)
	}
}

func TestModelDrawCustomStateRunsBeforeDraw(t *testing.T) {
	fx := &fakeMatrixEffect{}
	m := NewModel(WithMeshes(NewMesh(WithParts(testPart(3, fx, false)))))

	ctx := &recordingContext{}
	hooked := false
	hook := func() {
		hooked = true
		ctx.calls = append(ctx.calls, "custom")
	}

	world := math32.Identity4()
	err := m.Draw(ctx, newFakeStates(), world, world, world, WithCustomState(hook))
	require.NoError(t, err)
	assert.True(t, hooked)

	// The hook lands after the effect is applied and before the draw.
	applyAt, customAt, drawAt := -1, -1, -1
	for i, call := range ctx.calls {
		switch call {
		case "apply":
			applyAt = i
		case "custom":
			customAt = i
		case "draw":
			drawAt = i
		}
	}
	assert.Greater(t, customAt, applyAt)
	assert.Greater(t, drawAt, customAt)
}

func TestModelDrawWithBonesResolvesMeshWorld(t *testing.T) {
	fxAttached := &fakeMatrixEffect{}
	fxDetached := &fakeMatrixEffect{}
	fxOutOfRange := &fakeMatrixEffect{}

	m := NewModel(WithMeshes(
		NewMesh(WithMeshBoneIndex(1), WithParts(testPart(3, fxAttached, false))),
		NewMesh(WithParts(testPart(3, fxDetached, false))),
		NewMesh(WithMeshBoneIndex(7), WithParts(testPart(3, fxOutOfRange, false))),
	))

	transforms := []math32.Matrix4{rotationY(0.3), rotationY(0.7)}
	world := rotationY(1.1)
	view := math32.Identity4()

	ctx := &recordingContext{}
	err := m.DrawWithBones(ctx, newFakeStates(), transforms, &world, view, view)
	require.NoError(t, err)

	var want math32.Matrix4
	want.MulMatrices(&world, &transforms[1])
	assert.Equal(t, want, fxAttached.world)

	// Detached and out-of-range meshes both fall back to the first transform.
	want.MulMatrices(&world, &transforms[0])
	assert.Equal(t, want, fxDetached.world)
	assert.Equal(t, want, fxOutOfRange.world)
}

func TestModelDrawWithBonesUsesCachedTransforms(t *testing.T) {
	fx := &fakeMatrixEffect{}
	skeleton, err := NewSkeleton([]Bone{
		{Name: "root", ParentIndex: InvalidBoneIndex},
		{Name: "arm", ParentIndex: 0},
	})
	require.NoError(t, err)

	m := NewModel(
		WithSkeleton(skeleton),
		WithMeshes(NewMesh(WithMeshBoneIndex(1), WithParts(testPart(3, fx, false)))),
	)

	local := []math32.Matrix4{rotationY(0.2), rotationY(0.4)}
	require.NoError(t, m.CacheBoneTransforms(local))

	ctx := &recordingContext{}
	world := math32.Identity4()
	require.NoError(t, m.DrawWithBones(ctx, newFakeStates(), nil, world, world, world))

	var wantBone math32.Matrix4
	wantBone.MulMatrices(&local[0], &local[1])
	var want math32.Matrix4
	want.MulMatrices(world, &wantBone)
	assert.Equal(t, want, fx.world)
}

func TestModelDrawWithBonesNoBones(t *testing.T) {
	fx := &fakeMatrixEffect{}
	m := NewModel(WithMeshes(NewMesh(WithParts(testPart(3, fx, false)))))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.DrawWithBones(ctx, newFakeStates(), nil, world, world, world)
	assert.ErrorIs(t, err, ErrNoBones)
	assert.Empty(t, ctx.calls)
}

func TestModelDrawWithBonesCachedOutOfRange(t *testing.T) {
	fx := &fakeMatrixEffect{}
	skeleton, err := NewSkeleton([]Bone{{Name: "root", ParentIndex: InvalidBoneIndex}})
	require.NoError(t, err)

	m := NewModel(
		WithSkeleton(skeleton),
		WithMeshes(NewMesh(WithMeshBoneIndex(3), WithParts(testPart(3, fx, false)))),
	)
	require.NoError(t, m.CacheBoneTransforms([]math32.Matrix4{rotationY(0.5)}))

	// The model's own transforms do not cover bone 3; this is asset damage,
	// not a caller mistake, so there is no fallback.
	ctx := &recordingContext{}
	world := math32.Identity4()
	err = m.DrawWithBones(ctx, newFakeStates(), nil, world, world, world)
	assert.ErrorIs(t, err, ErrBoneIndexOutOfRange)
	assert.Empty(t, ctx.draws)
}

func TestModelDrawSkinnedRequiresTransforms(t *testing.T) {
	fx := &fakeSkinnedEffect{}
	m := NewModel(WithMeshes(NewMesh(
		WithBoneInfluences([]uint32{0}),
		WithParts(testPart(3, fx, false)),
	)))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.DrawSkinned(ctx, newFakeStates(), nil, world, world)
	assert.ErrorIs(t, err, ErrBoneTransformsRequired)
	assert.Empty(t, ctx.calls)

	err = m.DrawSkinned(ctx, newFakeStates(), []math32.Matrix4{}, world, world)
	assert.ErrorIs(t, err, ErrBoneTransformsRequired)
	assert.Empty(t, ctx.calls)
}

func TestModelDrawSkinnedRemapsInfluences(t *testing.T) {
	fx := &fakeSkinnedEffect{}
	m := NewModel(WithMeshes(NewMesh(
		WithBoneInfluences([]uint32{2, 0, 9}),
		WithParts(testPart(3, fx, false)),
	)))

	transforms := []math32.Matrix4{rotationY(0.1), rotationY(0.2), rotationY(0.3)}
	ctx := &recordingContext{}
	world := math32.Identity4()
	require.NoError(t, m.DrawSkinned(ctx, newFakeStates(), transforms, world, world))

	// Influence 9 is outside the transform array and falls back to bone 0.
	require.Len(t, fx.palette, 3)
	assert.Equal(t, transforms[2], fx.palette[0])
	assert.Equal(t, transforms[0], fx.palette[1])
	assert.Equal(t, transforms[0], fx.palette[2])
}

func TestModelDrawSkinnedMissingInfluences(t *testing.T) {
	fx := &fakeSkinnedEffect{}
	m := NewModel(WithMeshes(NewMesh(
		WithMeshName("damaged"),
		WithParts(testPart(3, fx, false)),
	)))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.DrawSkinned(ctx, newFakeStates(), []math32.Matrix4{rotationY(0.1)}, world, world)
	assert.ErrorIs(t, err, ErrMissingBoneInfluences)
	assert.Empty(t, ctx.draws)
}

func TestModelDrawSkinnedNonSkinningPartGetsBoneWorld(t *testing.T) {
	fx := &fakeMatrixEffect{}
	m := NewModel(WithMeshes(NewMesh(
		WithMeshBoneIndex(1),
		WithParts(testPart(3, fx, false)),
	)))

	transforms := []math32.Matrix4{rotationY(0.4), rotationY(0.8)}
	ctx := &recordingContext{}
	view := math32.Identity4()
	require.NoError(t, m.DrawSkinned(ctx, newFakeStates(), transforms, view, view))

	assert.Equal(t, transforms[1], fx.world)
}

func TestModelUpdateEffectsDeduplicates(t *testing.T) {
	shared := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "shared"}}
	solo := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "solo"}}

	m := NewModel(WithMeshes(
		NewMesh(WithParts(testPart(3, shared, false), testPart(3, shared, true))),
		NewMesh(WithParts(testPart(3, solo, false), testPart(3, shared, false))),
	))

	var visited []string
	m.UpdateEffects(func(fx effect.Effect) {
		visited = append(visited, fx.Name())
	})
	assert.Equal(t, []string{"shared", "solo"}, visited)
}

func TestModelUpdateEffectsCacheIsBuildOnce(t *testing.T) {
	original := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "original"}}
	replacement := &fakeMatrixEffect{fakeEffect: fakeEffect{name: "replacement"}}

	part := NewMeshPart(
		WithIndexCount(3),
		WithVertexDeclaration((&GPUVertex{}).Declaration()),
		WithPartEffect(original),
		WithInputLayout(&fakeLayout{}),
	)
	m := NewModel(WithMeshes(NewMesh(WithParts(part))))

	m.UpdateEffects(nil)

	require.NoError(t, part.RebindEffect(&fakeDevice{}, replacement, false))

	// The distinct-effect set was built on the first call and still visits
	// the original effect.
	var visited []string
	m.UpdateEffects(func(fx effect.Effect) {
		visited = append(visited, fx.Name())
	})
	assert.Equal(t, []string{"original"}, visited)
}

func TestModelFindMesh(t *testing.T) {
	m := NewModel(WithMeshes(
		NewMesh(WithMeshName("hull")),
		NewMesh(WithMeshName("turret")),
	))

	require.NotNil(t, m.FindMesh("turret"))
	assert.Equal(t, "turret", m.FindMesh("turret").Name())
	assert.Nil(t, m.FindMesh("tracks"))
}

func TestModelCacheBoneTransformsNoSkeleton(t *testing.T) {
	m := NewModel()
	err := m.CacheBoneTransforms([]math32.Matrix4{rotationY(0.1)})
	assert.ErrorIs(t, err, ErrNoBones)
}

func TestModelDrawSkinnedPaletteErrorPropagates(t *testing.T) {
	wantErr := errors.New("palette rejected")
	fx := &fakeSkinnedEffect{paletteErr: wantErr}
	m := NewModel(WithMeshes(NewMesh(
		WithBoneInfluences([]uint32{0}),
		WithParts(testPart(3, fx, false)),
	)))

	ctx := &recordingContext{}
	world := math32.Identity4()
	err := m.DrawSkinned(ctx, newFakeStates(), []math32.Matrix4{rotationY(0.1)}, world, world)
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, ctx.draws)
}
