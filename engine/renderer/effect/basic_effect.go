package effect

import (
	"cogentcore.org/core/math32"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// basicWGSL is the shader for the unlit, untextured basic effect. Vertex inputs are
// position (0), normal (1), and uv (2); the single uniform holds the combined
// world-view-projection transform and a base color.
const basicWGSL = `
struct BasicUniform {
    wvp: mat4x4<f32>,
    base_color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> u: BasicUniform;

struct VSIn {
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
};

struct VSOut {
    @builtin(position) position: vec4<f32>,
    @location(0) normal: vec3<f32>,
};

@vertex
fn vs_main(in: VSIn) -> VSOut {
    var out: VSOut;
    out.position = u.wvp * vec4<f32>(in.position, 1.0);
    out.normal = in.normal;
    return out;
}

@fragment
fn fs_main(in: VSOut) -> @location(0) vec4<f32> {
    let n = normalize(in.normal);
    let light = clamp(dot(n, normalize(vec3<f32>(0.3, 0.8, 0.5))), 0.2, 1.0);
    return vec4<f32>(u.base_color.rgb * light, u.base_color.a);
}
`

// basicUniform is the GPU-side constant block for the basic effect. Layout must match
// the BasicUniform struct in basicWGSL.
type basicUniform struct {
	WVP       math32.Matrix4
	BaseColor [4]float32
}

// basicEffect is the implementation of the unlit BasicEffect.
type basicEffect struct {
	name      string
	baseColor [4]float32

	world      math32.Matrix4
	view       math32.Matrix4
	projection math32.Matrix4

	sh       shader.Shader
	provider bind_group_provider.BindGroupProvider
}

var (
	_ Effect       = &basicEffect{}
	_ MatrixEffect = &basicEffect{}
)

// NewBasicEffect creates an unlit, untextured effect with the transform-setting
// capability. The effect's bind group provider describes a single uniform buffer; GPU
// resources are initialized by the Renderer, not here.
//
// Parameters:
//   - options: a variadic list of BasicEffectOption functions to configure the effect
//
// Returns:
//   - Effect: a new BasicEffect instance
func NewBasicEffect(options ...BasicEffectOption) Effect {
	e := &basicEffect{
		name:      "basic",
		baseColor: [4]float32{1, 1, 1, 1},
	}
	e.world.SetIdentity()
	e.view.SetIdentity()
	e.projection.SetIdentity()
	for _, opt := range options {
		opt(e)
	}
	e.sh = shader.NewShader("effect/basic",
		shader.WithSource(basicWGSL),
		shader.WithVertexEntry("vs_main"),
		shader.WithFragmentEntry("fs_main"),
		shader.WithVertexLocations(0, 1, 2),
		shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutDescriptor{
			Label: "BasicEffect Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeUniform,
						MinBindingSize: uint64(len(common.StructToBytes(&basicUniform{}))),
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

func (e *basicEffect) Name() string {
	return e.name
}

func (e *basicEffect) Shader() shader.Shader {
	return e.sh
}

func (e *basicEffect) Provider() bind_group_provider.BindGroupProvider {
	return e.provider
}

func (e *basicEffect) Apply(ctx device.Context) {
	var vp, wvp math32.Matrix4
	vp.MulMatrices(&e.projection, &e.view)
	wvp.MulMatrices(&vp, &e.world)

	u := basicUniform{WVP: wvp, BaseColor: e.baseColor}
	data := make([]byte, len(common.StructToBytes(&u)))
	copy(data, common.StructToBytes(&u))

	ctx.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: e.provider, Binding: 0, Offset: 0, Data: data},
	})
	ctx.SetBindGroups(e.provider)
}

func (e *basicEffect) SetMatrices(world, view, projection *math32.Matrix4) {
	e.world = *world
	e.view = *view
	e.projection = *projection
}

func (e *basicEffect) SetWorld(world *math32.Matrix4) {
	e.world = *world
}

func (e *basicEffect) SetView(view *math32.Matrix4) {
	e.view = *view
}

func (e *basicEffect) SetProjection(projection *math32.Matrix4) {
	e.projection = *projection
}

// BasicEffectOption is a functional option for configuring a BasicEffect via NewBasicEffect.
type BasicEffectOption func(*basicEffect)

// WithName is an option builder that sets the name of the effect.
//
// Parameters:
//   - name: the effect identifier
//
// Returns:
//   - BasicEffectOption: a function that applies the name option to the effect
func WithName(name string) BasicEffectOption {
	return func(e *basicEffect) {
		e.name = name
	}
}

// WithBaseColor is an option builder that sets the RGBA base color of the effect.
//
// Parameters:
//   - color: the base color as RGBA values
//
// Returns:
//   - BasicEffectOption: a function that applies the base color option to the effect
func WithBaseColor(color [4]float32) BasicEffectOption {
	return func(e *basicEffect) {
		e.baseColor = color
	}
}

// WithProvider is an option builder that sets a pre-configured bind group provider.
//
// Parameters:
//   - provider: the bind group provider to use
//
// Returns:
//   - BasicEffectOption: a function that applies the provider option to the effect
func WithProvider(provider bind_group_provider.BindGroupProvider) BasicEffectOption {
	return func(e *basicEffect) {
		e.provider = provider
	}
}
