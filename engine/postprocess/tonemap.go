package postprocess

import (
	"fmt"
	"math"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// ToneMapOperator selects the tone-mapping curve applied to HDR color values.
type ToneMapOperator int

const (
	// OperatorNone passes color values through unchanged.
	OperatorNone ToneMapOperator = iota

	// OperatorSaturate clamps color values to [0, 1].
	OperatorSaturate

	// OperatorReinhard applies the Reinhard operator x / (1 + x).
	OperatorReinhard

	// OperatorACESFilmic applies the ACES filmic approximation curve.
	OperatorACESFilmic

	operatorCount
)

// TransferFunction selects the electro-optical transfer function applied after
// tone mapping.
type TransferFunction int

const (
	// TransferLinear leaves color values in linear space.
	TransferLinear TransferFunction = iota

	// TransferSRGB applies the sRGB gamma approximation.
	TransferSRGB

	// TransferST2084 applies the ST.2084 (PQ) curve for HDR10 signals, scaled by the
	// configured paper-white level.
	TransferST2084

	transferCount
)

// permutationIndex maps an operator and transfer function pair to its slot in the
// shader permutation table.
func permutationIndex(op ToneMapOperator, tf TransferFunction) int {
	return int(tf)*int(operatorCount) + int(op)
}

const toneMapBaseWGSL = `
struct ToneMapUniform {
    linear_exposure: f32,
    paper_white_nits: f32,
    _pad0: f32,
    _pad1: f32,
};

@group(0) @binding(0) var<uniform> u: ToneMapUniform;
@group(0) @binding(1) var hdr_texture: texture_2d<f32>;
@group(0) @binding(2) var hdr_sampler: sampler;

struct VSIn {
    @location(0) position: vec2<f32>,
    @location(1) uv: vec2<f32>,
};

struct VSOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VSIn) -> VSOut {
    var out: VSOut;
    out.position = vec4<f32>(in.position, 0.0, 1.0);
    out.uv = in.uv;
    return out;
}
`

var operatorWGSL = [operatorCount]string{
	OperatorNone: `
fn tonemap(color: vec3<f32>) -> vec3<f32> {
    return color;
}
`,
	OperatorSaturate: `
fn tonemap(color: vec3<f32>) -> vec3<f32> {
    return clamp(color, vec3<f32>(0.0), vec3<f32>(1.0));
}
`,
	OperatorReinhard: `
fn tonemap(color: vec3<f32>) -> vec3<f32> {
    return color / (vec3<f32>(1.0) + color);
}
`,
	OperatorACESFilmic: `
fn tonemap(color: vec3<f32>) -> vec3<f32> {
    let a = color * (2.51 * color + vec3<f32>(0.03));
    let b = color * (2.43 * color + vec3<f32>(0.59)) + vec3<f32>(0.14);
    return clamp(a / b, vec3<f32>(0.0), vec3<f32>(1.0));
}
`,
}

var transferWGSL = [transferCount]string{
	TransferLinear: `
fn transfer(color: vec3<f32>) -> vec3<f32> {
    return color;
}
`,
	TransferSRGB: `
fn transfer(color: vec3<f32>) -> vec3<f32> {
    return pow(abs(color), vec3<f32>(1.0 / 2.2));
}
`,
	// ST.2084 perceptual quantizer. Input is linear color where 1.0 maps to the
	// configured paper-white level in nits; the curve encodes against a 10000 nit peak.
	TransferST2084: `
fn transfer(color: vec3<f32>) -> vec3<f32> {
    let m1 = 0.1593017578125;
    let m2 = 78.84375;
    let c1 = 0.8359375;
    let c2 = 18.8515625;
    let c3 = 18.6875;
    let normalized = color * (u.paper_white_nits / 10000.0);
    let lp = pow(max(normalized, vec3<f32>(0.0)), vec3<f32>(m1));
    return pow((vec3<f32>(c1) + c2 * lp) / (vec3<f32>(1.0) + c3 * lp), vec3<f32>(m2));
}
`,
}

const toneMapFragmentWGSL = `
@fragment
fn fs_main(in: VSOut) -> @location(0) vec4<f32> {
    var color = textureSample(hdr_texture, hdr_sampler, in.uv).rgb;
    color = color * u.linear_exposure;
    color = tonemap(color);
    color = transfer(color);
    return vec4<f32>(color, 1.0);
}
`

// toneMapUniform is the GPU-side constant block. Layout must match the ToneMapUniform
// struct in toneMapBaseWGSL.
type toneMapUniform struct {
	LinearExposure float32
	PaperWhiteNits float32
	Pad0           float32
	Pad1           float32
}

// fullscreenVertex is one vertex of the fullscreen triangle: clip-space position and uv.
type fullscreenVertex struct {
	Position [2]float32
	UV       [2]float32
}

// A single triangle that covers the whole viewport after clipping, avoiding the
// diagonal seam of a two-triangle quad.
var fullscreenTriangle = []fullscreenVertex{
	{Position: [2]float32{-1, -1}, UV: [2]float32{0, 1}},
	{Position: [2]float32{3, -1}, UV: [2]float32{2, 1}},
	{Position: [2]float32{-1, 3}, UV: [2]float32{0, -1}},
}

var fullscreenIndices = []uint16{0, 1, 2}

// fullscreenResources are the per-device pooled GPU objects shared by every tone map
// instance on a device: the fullscreen triangle geometry, the HDR source sampler, and
// one input layout per shader permutation.
type fullscreenResources struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	sampler      *wgpu.Sampler
	layouts      map[int]device.InputLayout
}

var pool = struct {
	sync.Mutex
	resources map[device.Device]*fullscreenResources
}{
	resources: make(map[device.Device]*fullscreenResources),
}

func forDevice(dev device.Device) (*fullscreenResources, error) {
	pool.Lock()
	defer pool.Unlock()

	if r, ok := pool.resources[dev]; ok {
		return r, nil
	}

	vb, err := dev.CreateVertexBuffer("ToneMap Fullscreen", common.SliceToBytes(fullscreenTriangle))
	if err != nil {
		return nil, err
	}
	ib, err := dev.CreateIndexBuffer("ToneMap Fullscreen", common.SliceToBytes(fullscreenIndices))
	if err != nil {
		return nil, err
	}
	s, err := dev.CreateSampler(common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	})
	if err != nil {
		return nil, err
	}

	r := &fullscreenResources{
		vertexBuffer: vb,
		indexBuffer:  ib,
		sampler:      s,
		layouts:      make(map[int]device.InputLayout),
	}
	pool.resources[dev] = r
	return r, nil
}

// ReleaseDevice releases the pooled fullscreen-pass resources for a device.
//
// Parameters:
//   - dev: the device whose pooled resources are released
func ReleaseDevice(dev device.Device) {
	pool.Lock()
	defer pool.Unlock()

	r, ok := pool.resources[dev]
	if !ok {
		return
	}
	if r.vertexBuffer != nil {
		r.vertexBuffer.Release()
	}
	if r.indexBuffer != nil {
		r.indexBuffer.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	for _, l := range r.layouts {
		l.Release()
	}
	delete(pool.resources, dev)
}

// toneMap is the implementation of ToneMapPostProcess.
type toneMap struct {
	name           string
	op             ToneMapOperator
	tf             TransferFunction
	exposure       float32
	paperWhiteNits float32

	shaders  [int(operatorCount) * int(transferCount)]shader.Shader
	provider bind_group_provider.BindGroupProvider
	dev      device.Device
	prepared *fullscreenResources
}

// fullscreenDeclaration is the vertex declaration of fullscreenVertex.
var fullscreenDeclaration = []device.VertexElement{
	{ShaderLocation: 0, Format: wgpu.VertexFormatFloat32x2, Offset: 0},
	{ShaderLocation: 1, Format: wgpu.VertexFormatFloat32x2, Offset: 8},
}

// ToneMapPostProcess converts an HDR source texture to a displayable image with a
// selectable tone-map operator and transfer function. Each operator and transfer
// function pair is a distinct shader permutation; permutations are created lazily and
// switching either selector between frames is cheap.
//
// It implements effect.Effect so the Renderer can initialize its bind group resources,
// with the HDR source texture at binding 1 and the pooled sampler at binding 2.
type ToneMapPostProcess interface {
	effect.Effect

	// Operator returns the active tone-map operator.
	Operator() ToneMapOperator

	// SetOperator switches the tone-map operator. Takes effect on the next Process call.
	//
	// Parameters:
	//   - op: the operator to use
	SetOperator(op ToneMapOperator)

	// TransferFunction returns the active transfer function.
	TransferFunction() TransferFunction

	// SetTransferFunction switches the transfer function. Takes effect on the next
	// Process call.
	//
	// Parameters:
	//   - tf: the transfer function to use
	SetTransferFunction(tf TransferFunction)

	// SetExposure sets the exposure adjustment in stops. The linear scale applied to
	// HDR values is 2^exposure; the default of 0 leaves values unchanged.
	//
	// Parameters:
	//   - exposure: the exposure in stops
	SetExposure(exposure float32)

	// SetPaperWhiteNits sets the paper-white level used by the ST.2084 transfer
	// function. Ignored by the other transfer functions. Defaults to 200.
	//
	// Parameters:
	//   - nits: the paper-white level in nits
	SetPaperWhiteNits(nits float32)

	// SetHDRSourceTexture sets the HDR texture view the pass reads from. Must be set
	// before the provider's bind group is initialized.
	//
	// Parameters:
	//   - view: the HDR source texture view
	SetHDRSourceTexture(view *wgpu.TextureView)

	// Prepare ensures the pooled fullscreen-pass resources exist for the device and
	// attaches the pooled sampler to the provider. Must be called before the provider's
	// bind group is initialized and before Process.
	//
	// Parameters:
	//   - dev: the device to prepare against
	//
	// Returns:
	//   - error: an error if a pooled resource could not be created
	Prepare(dev device.Device) error

	// Process draws the fullscreen tone-map pass with the currently bound frame target.
	// Depth testing and blending are disabled for the pass.
	//
	// Parameters:
	//   - ctx: the context to record the pass on
	//
	// Returns:
	//   - error: an error if Prepare has not been called or a permutation layout could
	//     not be created
	Process(ctx device.Context) error
}

var (
	_ ToneMapPostProcess = &toneMap{}
	_ effect.Effect      = &toneMap{}
)

// NewToneMapPostProcess creates a tone-map post process with the provided options.
// Defaults: OperatorNone, TransferSRGB, exposure 0, paper white 200 nits.
//
// Parameters:
//   - options: a variadic list of ToneMapOption functions to configure the pass
//
// Returns:
//   - ToneMapPostProcess: a new tone map instance
func NewToneMapPostProcess(options ...ToneMapOption) ToneMapPostProcess {
	t := &toneMap{
		name:           "tonemap",
		op:             OperatorNone,
		tf:             TransferSRGB,
		exposure:       0,
		paperWhiteNits: 200,
	}
	for _, opt := range options {
		opt(t)
	}
	if t.provider == nil {
		t.provider = bind_group_provider.NewBindGroupProvider(t.name)
	}
	return t
}

func (t *toneMap) Name() string {
	return t.name
}

// Shader returns the shader for the active permutation, building it on first use.
func (t *toneMap) Shader() shader.Shader {
	idx := permutationIndex(t.op, t.tf)
	if t.shaders[idx] == nil {
		source := toneMapBaseWGSL + operatorWGSL[t.op] + transferWGSL[t.tf] + toneMapFragmentWGSL
		t.shaders[idx] = shader.NewShader(
			fmt.Sprintf("postprocess/tonemap/%d", idx),
			shader.WithSource(source),
			shader.WithVertexEntry("vs_main"),
			shader.WithFragmentEntry("fs_main"),
			shader.WithVertexLocations(0, 1),
			shader.WithBindGroupLayout(0, wgpu.BindGroupLayoutDescriptor{
				Label: "ToneMap Layout",
				Entries: []wgpu.BindGroupLayoutEntry{
					{
						Binding:    0,
						Visibility: wgpu.ShaderStageFragment,
						Buffer: wgpu.BufferBindingLayout{
							Type:           wgpu.BufferBindingTypeUniform,
							MinBindingSize: uint64(len(common.StructToBytes(&toneMapUniform{}))),
						},
					},
					{
						Binding:    1,
						Visibility: wgpu.ShaderStageFragment,
						Texture: wgpu.TextureBindingLayout{
							SampleType:    wgpu.TextureSampleTypeFloat,
							ViewDimension: wgpu.TextureViewDimension2D,
						},
					},
					{
						Binding:    2,
						Visibility: wgpu.ShaderStageFragment,
						Sampler: wgpu.SamplerBindingLayout{
							Type: wgpu.SamplerBindingTypeFiltering,
						},
					},
				},
			}),
		)
	}
	return t.shaders[idx]
}

func (t *toneMap) Provider() bind_group_provider.BindGroupProvider {
	return t.provider
}

func (t *toneMap) Apply(ctx device.Context) {
	u := toneMapUniform{
		LinearExposure: float32(math.Exp2(float64(t.exposure))),
		PaperWhiteNits: t.paperWhiteNits,
	}
	data := make([]byte, len(common.StructToBytes(&u)))
	copy(data, common.StructToBytes(&u))

	ctx.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: t.provider, Binding: 0, Offset: 0, Data: data},
	})
	ctx.SetBindGroups(t.provider)
}

func (t *toneMap) Operator() ToneMapOperator {
	return t.op
}

func (t *toneMap) SetOperator(op ToneMapOperator) {
	t.op = op
}

func (t *toneMap) TransferFunction() TransferFunction {
	return t.tf
}

func (t *toneMap) SetTransferFunction(tf TransferFunction) {
	t.tf = tf
}

func (t *toneMap) SetExposure(exposure float32) {
	t.exposure = exposure
}

func (t *toneMap) SetPaperWhiteNits(nits float32) {
	t.paperWhiteNits = nits
}

func (t *toneMap) SetHDRSourceTexture(view *wgpu.TextureView) {
	t.provider.SetTextureView(1, view)
}

func (t *toneMap) Prepare(dev device.Device) error {
	r, err := forDevice(dev)
	if err != nil {
		return err
	}
	t.dev = dev
	t.prepared = r
	t.provider.SetSampler(2, r.sampler)
	return nil
}

func (t *toneMap) Process(ctx device.Context) error {
	if t.prepared == nil {
		return fmt.Errorf("tonemap: Prepare must be called before Process")
	}

	sh := t.Shader()
	idx := permutationIndex(t.op, t.tf)

	pool.Lock()
	layout, ok := t.prepared.layouts[idx]
	pool.Unlock()
	if !ok {
		created, err := t.dev.CreateInputLayout(fullscreenDeclaration, sh)
		if err != nil {
			return fmt.Errorf("tonemap: failed to create input layout for permutation %d: %w", idx, err)
		}
		pool.Lock()
		t.prepared.layouts[idx] = created
		pool.Unlock()
		layout = created
	}

	var v fullscreenVertex
	stride := uint32(len(common.StructToBytes(&v)))

	ctx.SetBlendState(nil)
	ctx.SetDepthStencilState(device.DepthStencilState{
		DepthWriteEnabled: false,
		DepthCompare:      wgpu.CompareFunctionAlways,
	})
	ctx.SetRasterizerState(device.RasterizerState{
		FrontFace: wgpu.FrontFaceCCW,
		CullMode:  wgpu.CullModeNone,
	})
	ctx.SetInputLayout(layout)
	ctx.SetVertexBuffer(t.prepared.vertexBuffer, stride)
	ctx.SetIndexBuffer(t.prepared.indexBuffer, wgpu.IndexFormatUint16)
	t.Apply(ctx)
	ctx.SetPrimitiveTopology(wgpu.PrimitiveTopologyTriangleList)
	ctx.DrawIndexed(uint32(len(fullscreenIndices)), 0, 0)
	return nil
}
