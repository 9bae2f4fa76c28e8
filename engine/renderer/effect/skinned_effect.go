package effect

import (
	"fmt"

	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// skinnedWGSL is the shader for the skinned effect. Vertex inputs add bone indices (3)
// and weights (4) on top of the basic layout; positions are blended against the bone
// palette before the view-projection transform.
const skinnedWGSL = `
struct SkinnedUniform {
    view_proj: mat4x4<f32>,
    base_color: vec4<f32>,
};

struct BonePalette {
    bones: array<mat4x4<f32>, 96>,
};

@group(0) @binding(0) var<uniform> u: SkinnedUniform;
@group(0) @binding(1) var<uniform> palette: BonePalette;

struct VSIn {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(3) joints: vec4<u32>,
    @location(4) weights: vec4<f32>,
};

struct VSOut {
    @builtin(position) position: vec4<f32>,
    @location(0) normal: vec3<f32>,
};

@vertex
fn vs_main(in: VSIn) -> VSOut {
    let skin =
        palette.bones[in.joints.x] * in.weights.x +
        palette.bones[in.joints.y] * in.weights.y +
        palette.bones[in.joints.z] * in.weights.z +
        palette.bones[in.joints.w] * in.weights.w;
    var out: VSOut;
    out.position = u.view_proj * skin * vec4<f32>(in.position, 1.0);
    out.normal = (skin * vec4<f32>(in.normal, 0.0)).xyz;
    return out;
}

@fragment
fn fs_main(in: VSOut) -> @location(0) vec4<f32> {
    let n = normalize(in.normal);
    let light = clamp(dot(n, normalize(vec3<f32>(0.3, 0.8, 0.5))), 0.2, 1.0);
    return vec4<f32>(u.base_color.rgb * light, u.base_color.a);
}
`

// skinnedUniform is the GPU-side constant block for the skinned effect. Layout must
// match the SkinnedUniform struct in skinnedWGSL.
type skinnedUniform struct {
	ViewProj  math32.Matrix4
	BaseColor [4]float32
}

// skinnedEffect is the implementation of the SkinnedEffect.
type skinnedEffect struct {
	name      string
	baseColor [4]float32

	world      math32.Matrix4
	view       math32.Matrix4
	projection math32.Matrix4
	palette    [MaxBones]math32.Matrix4

	sh       shader.Shader
	provider bind_group_provider.BindGroupProvider
}

var (
	_ Effect         = &skinnedEffect{}
	_ MatrixEffect   = &skinnedEffect{}
	_ SkinningEffect = &skinnedEffect{}
)

// NewSkinnedEffect creates an effect with both the transform-setting and the skinning
// capabilities. The bone palette defaults to identity for every slot; GPU resources are
// initialized by the Renderer, not here.
//
// Parameters:
//   - options: a variadic list of SkinnedEffectOption functions to configure the effect
//
// Returns:
//   - Effect: a new SkinnedEffect instance
func NewSkinnedEffect(options ...SkinnedEffectOption) Effect {
	e := &skinnedEffect{
		name:      "skinned",
		baseColor: [4]float32{1, 1, 1, 1},
	}
	e.world.SetIdentity()
	e.view.SetIdentity()
	e.projection.SetIdentity()
	for i := range e.palette {
		e.palette[i].SetIdentity()
	}
	for _, opt := range options {
		opt(e)
	}
	e.sh = shader.NewShader("effect/skinned",
		shader.WithSource(skinnedWGSL),
		shader.WithVertexEntry("vs_main"),
		shader.WithFragmentEntry("fs_main"),
		shader.WithVertexLocations(0, 1, 2, 3, 4),
		shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutDescriptor{
			Label: "SkinnedEffect Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeUniform,
						MinBindingSize: uint64(len(common.StructToBytes(&skinnedUniform{}))),
					},
				},
				{
					Binding:    1,
					Visibility: wgpu.ShaderStageVertex,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeUniform,
						MinBindingSize: uint64(MaxBones * 64),
					},
				},
			},
		}),
	)
	if e.provider == nil {
		e.provider = bind_group_provider.NewBindGroupProvider(e.name)
	}
	return e
}

func (e *skinnedEffect) Name() string {
	return e.name
}

func (e *skinnedEffect) Shader() shader.Shader {
	return e.sh
}

func (e *skinnedEffect) Provider() bind_group_provider.BindGroupProvider {
	return e.provider
}

func (e *skinnedEffect) Apply(ctx device.Context) {
	var vp math32.Matrix4
	vp.MulMatrices(&e.projection, &e.view)

	u := skinnedUniform{ViewProj: vp, BaseColor: e.baseColor}
	uData := make([]byte, len(common.StructToBytes(&u)))
	copy(uData, common.StructToBytes(&u))

	// The palette is blended per vertex in the shader; world is folded into each
	// bone transform by the caller, so it is not uploaded separately.
	pData := make([]byte, len(common.SliceToBytes(e.palette[:])))
	copy(pData, common.SliceToBytes(e.palette[:]))

	ctx.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.provider, Binding: 0, Offset: 0, Data: uData},
		{Provider: e.provider, Binding: 1, Offset: 0, Data: pData},
	})
	ctx.SetBindGroups(e.provider)
}

func (e *skinnedEffect) SetMatrices(world, view, projection *math32.Matrix4) {
	e.world = *world
	e.view = *view
	e.projection = *projection
}

func (e *skinnedEffect) SetWorld(world *math32.Matrix4) {
	e.world = *world
}

func (e *skinnedEffect) SetView(view *math32.Matrix4) {
	e.view = *view
}

func (e *skinnedEffect) SetProjection(projection *math32.Matrix4) {
	e.projection = *projection
}

func (e *skinnedEffect) SetBoneTransforms(transforms []math32.Matrix4) error {
	if len(transforms) == 0 {
		return fmt.Errorf("effect %q: bone transform palette is empty", e.name)
	}
	if len(transforms) > MaxBones {
		return fmt.Errorf("effect %q: %d bone transforms exceeds the palette limit of %d", e.name, len(transforms), MaxBones)
	}
	copy(e.palette[:], transforms)
	return nil
}

// SkinnedEffectOption is a functional option for configuring a SkinnedEffect via NewSkinnedEffect.
type SkinnedEffectOption func(*skinnedEffect)

// WithSkinnedName is an option builder that sets the name of the effect.
//
// Parameters:
//   - name: the effect identifier
//
// Returns:
//   - SkinnedEffectOption: a function that applies the name option to the effect
func WithSkinnedName(name string) SkinnedEffectOption {
	return func(e *skinnedEffect) {
		e.name = name
	}
}

// WithSkinnedBaseColor is an option builder that sets the RGBA base color of the effect.
//
// Parameters:
//   - color: the base color as RGBA values
//
// Returns:
//   - SkinnedEffectOption: a function that applies the base color option to the effect
func WithSkinnedBaseColor(color [4]float32) SkinnedEffectOption {
	return func(e *skinnedEffect) {
		e.baseColor = color
	}
}

// WithSkinnedProvider is an option builder that sets a pre-configured bind group provider.
//
// Parameters:
//   - provider: the bind group provider to use
//
// Returns:
//   - SkinnedEffectOption: a function that applies the provider option to the effect
func WithSkinnedProvider(provider bind_group_provider.BindGroupProvider) SkinnedEffectOption {
	return func(e *skinnedEffect) {
		e.provider = provider
	}
}
