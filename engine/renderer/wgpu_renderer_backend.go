package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

// boundState is the sticky binding state of the context between draws. A draw submits
// with whatever is currently bound; bindings persist until replaced.
type boundState struct {
	inputLayout  *inputLayout
	vertexBuffer *wgpu.Buffer
	vertexStride uint32
	indexBuffer  *wgpu.Buffer
	indexFormat  wgpu.IndexFormat
	topology     wgpu.PrimitiveTopology
	blend        *wgpu.BlendState
	depth        device.DepthStencilState
	raster       device.RasterizerState
	samplers     []*wgpu.Sampler
	bindGroups   []bind_group_provider.BindGroupProvider
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass

	// Pipeline variants created on demand, keyed by shader + vertex layout +
	// fixed-function state. Shader modules are compiled once per shader key.
	pipelineCache map[string]pipeline.Pipeline
	shaderModules map[string]*wgpu.ShaderModule

	// Current sticky binding state consumed by DrawIndexed/DrawIndexedInstanced.
	bound boundState

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	backendLifecycle

	// InitBindGroup creates the GPU bind group for a provider from a bind group layout
	// descriptor. Uniform buffer entries the provider does not already hold are created
	// at the entry's MinBindingSize; texture and sampler entries must already be set on
	// the provider.
	//
	// Parameters:
	//   - provider: the provider to initialize
	//   - desc: the layout descriptor describing the group's bindings
	//
	// Returns:
	//   - error: an error if any GPU resource could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, desc wgpu.BindGroupLayoutDescriptor) error

	Device() *wgpu.Device
	Queue() *wgpu.Queue
	Instance() *wgpu.Instance
	Adapter() *wgpu.Adapter
	Surface() *wgpu.Surface
	SetDevice(device *wgpu.Device)
	SetQueue(queue *wgpu.Queue)
	SetInstance(instance *wgpu.Instance)
	SetAdapter(adapter *wgpu.Adapter)
	SetSurface(surface *wgpu.Surface)
}

var _ RendererBackend = &wgpuRendererBackendImpl{}
var _ device.Device = &wgpuRendererBackendImpl{}
var _ device.Context = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) wgpuRendererBackend {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:            &sync.Mutex{},
		instance:      wgpu.CreateInstance(nil),
		presentMode:   wgpu.PresentModeImmediate,
		sampleCount:   sampleCount,
		pipelineCache: make(map[string]pipeline.Pipeline),
		shaderModules: make(map[string]*wgpu.ShaderModule),
		bound: boundState{
			indexFormat: wgpu.IndexFormatUint16,
			topology:    wgpu.PrimitiveTopologyTriangleList,
		},
	}
	w.SetSurface(w.instance.CreateSurface(surfaceDescriptor))

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		panic(err)
	}
	w.SetAdapter(a)

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		panic(err)
	}
	w.SetDevice(d)
	w.SetQueue(d.GetQueue())

	return w
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		// Create the MSAA texture that the render pass draws into; the resolved
		// result is written to the swapchain view as the ResolveTarget.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	} else {
		// No MSAA; the render pass draws directly to the swapchain view.
		b.msaaTextureView = nil
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// Build the cached render pass descriptor for the main render target.
	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is
	// set per-frame to the swapchain view. When disabled, View is set
	// per-frame to the swapchain view and ResolveTarget remains nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard // Don't store MSAA data, just resolve
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:          b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				ResolveTarget: nil,               // set per-frame when MSAA is on
				LoadOp:        wgpu.LoadOpClear,
				StoreOp:       storeOp,
				ClearValue: wgpu.Color{
					R: 0.1, G: 0.1, B: 0.1, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView, // Persistent until resize
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}

	// Surface format changes invalidate every cached pipeline variant.
	b.pipelineCache = make(map[string]pipeline.Pipeline)
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) CreateVertexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return nil, errors.New("vertex buffer data must not be empty")
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Vertex Buffer",
		Size:             uint64(len(data)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) CreateIndexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(data) == 0 {
		return nil, errors.New("index buffer data must not be empty")
	}

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label + " Index Buffer",
		Size:             uint64(len(data)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label + " Uniform Buffer",
		Size:  size,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
}

func (b *wgpuRendererBackendImpl) CreateInputLayout(elements []device.VertexElement, sh shader.Shader) (device.InputLayout, error) {
	if sh == nil {
		return nil, errors.New("input layout requires a shader")
	}
	if len(elements) == 0 {
		return nil, errors.New("input layout requires at least one vertex element")
	}
	if len(elements) > device.MaxInputElements {
		return nil, fmt.Errorf("input layout exceeds %d vertex elements", device.MaxInputElements)
	}

	// Every vertex input location the shader declares must be fed by the declaration.
	byLocation := make(map[uint32]bool, len(elements))
	for _, e := range elements {
		byLocation[e.ShaderLocation] = true
	}
	for _, loc := range sh.VertexLocations() {
		if !byLocation[loc] {
			return nil, fmt.Errorf("shader %q reads vertex location %d which the declaration does not provide", sh.Key(), loc)
		}
	}

	attributes := make([]wgpu.VertexAttribute, len(elements))
	for i, e := range elements {
		attributes[i] = wgpu.VertexAttribute{
			Format:         e.Format,
			Offset:         e.Offset,
			ShaderLocation: e.ShaderLocation,
		}
	}
	return &inputLayout{sh: sh, attributes: attributes}, nil
}

func (b *wgpuRendererBackendImpl) CreateSampler(data common.SamplerStagingData) (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  common.Coalesce(data.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(data.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(data.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(data.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(data.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(data.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(data.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(data.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(data.MaxAnisotropy, 1),
		Compare:       data.Compare,
	})
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, desc wgpu.BindGroupLayoutDescriptor) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, layoutEntry := range desc.Entries {
		binding := int(layoutEntry.Binding)

		switch {
		case layoutEntry.Buffer.Type != wgpu.BufferBindingTypeUndefined:
			buf := provider.Buffer(binding)
			if buf == nil {
				created, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Binding %d Uniform Buffer", provider.Label(), binding),
					Size:  layoutEntry.Buffer.MinBindingSize,
					Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, created)
				buf = created
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: layoutEntry.Binding,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			})
		case layoutEntry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("provider %q has no texture view for binding %d", provider.Label(), binding)
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding:     layoutEntry.Binding,
				TextureView: tv,
			})
		case layoutEntry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			s := provider.Sampler(binding)
			if s == nil {
				return fmt.Errorf("provider %q has no sampler for binding %d", provider.Label(), binding)
			}
			entries = append(entries, wgpu.BindGroupEntry{
				Binding: layoutEntry.Binding,
				Sampler: s,
			})
		default:
			return fmt.Errorf("provider %q binding %d has an unsupported layout entry", provider.Label(), binding)
		}
	}

	layout, err := b.device.CreateBindGroupLayout(&desc)
	if err != nil {
		return err
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		layout.Release()
		return err
	}

	provider.SetBindGroupLayout(layout)
	provider.SetBindGroup(bg)
	return nil
}

func (b *wgpuRendererBackendImpl) SetInputLayout(layout device.InputLayout) {
	b.mu.Lock()
	defer b.mu.Unlock()

	il, _ := layout.(*inputLayout)
	b.bound.inputLayout = il
}

func (b *wgpuRendererBackendImpl) SetVertexBuffer(buf *wgpu.Buffer, stride uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.vertexBuffer = buf
	b.bound.vertexStride = stride
}

func (b *wgpuRendererBackendImpl) SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.indexBuffer = buf
	b.bound.indexFormat = format
}

func (b *wgpuRendererBackendImpl) SetPrimitiveTopology(topology wgpu.PrimitiveTopology) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.topology = topology
}

func (b *wgpuRendererBackendImpl) SetBlendState(state *wgpu.BlendState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.blend = state
}

func (b *wgpuRendererBackendImpl) SetDepthStencilState(state device.DepthStencilState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.depth = state
}

func (b *wgpuRendererBackendImpl) SetRasterizerState(state device.RasterizerState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.raster = state
}

func (b *wgpuRendererBackendImpl) SetSamplers(samplers ...*wgpu.Sampler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.samplers = samplers
}

func (b *wgpuRendererBackendImpl) SetBindGroups(providers ...bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bound.bindGroups = providers
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.bindForDraw() {
		return
	}
	b.framePass.DrawIndexed(indexCount, 1, startIndex, baseVertex, 0)
}

func (b *wgpuRendererBackendImpl) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.bindForDraw() {
		return
	}
	b.framePass.DrawIndexed(indexCount, instanceCount, startIndex, baseVertex, startInstance)
}

// bindForDraw resolves the pipeline variant for the current sticky state and encodes
// the pipeline, bind group, and buffer bindings on the frame pass. Caller must hold
// b.mu. Returns false when no frame pass is active or the state is incomplete.
func (b *wgpuRendererBackendImpl) bindForDraw() bool {
	if b.framePass == nil || b.bound.inputLayout == nil || b.bound.vertexBuffer == nil || b.bound.indexBuffer == nil {
		return false
	}

	p, err := b.resolveVariant()
	if err != nil {
		return false
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range b.bound.bindGroups {
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	b.framePass.SetVertexBuffer(0, b.bound.vertexBuffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(b.bound.indexBuffer, b.bound.indexFormat, 0, wgpu.WholeSize)
	return true
}

// resolveVariant returns the pipeline variant matching the current sticky state,
// creating and caching it on first use. Caller must hold b.mu.
func (b *wgpuRendererBackendImpl) resolveVariant() (pipeline.Pipeline, error) {
	sh := b.bound.inputLayout.sh

	// WebGPU has no rasterizer fill mode; wireframe draws use line-list topology.
	topology := b.bound.topology
	cullMode := b.bound.raster.CullMode
	if b.bound.raster.Wireframe {
		topology = wgpu.PrimitiveTopologyLineList
		cullMode = wgpu.CullModeNone
	}

	key := pipeline.VariantKey(sh.Key(), b.bound.vertexStride, topology, b.bound.blend,
		b.bound.depth.DepthWriteEnabled, b.bound.depth.DepthCompare, b.bound.raster.FrontFace, cullMode)
	if p, ok := b.pipelineCache[key]; ok {
		return p, nil
	}

	p := pipeline.NewPipeline(key,
		pipeline.WithShader(sh),
		pipeline.WithVertexLayouts(wgpu.VertexBufferLayout{
			ArrayStride: uint64(b.bound.vertexStride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  b.bound.inputLayout.attributes,
		}),
		pipeline.WithBlendState(b.bound.blend),
		pipeline.WithDepthWriteEnabled(b.bound.depth.DepthWriteEnabled),
		pipeline.WithDepthCompare(b.bound.depth.DepthCompare),
		pipeline.WithTopology(topology),
		pipeline.WithFrontFace(b.bound.raster.FrontFace),
		pipeline.WithCullMode(cullMode),
	)
	if err := b.registerRenderPipeline(p); err != nil {
		return nil, err
	}
	b.pipelineCache[key] = p
	return p, nil
}

// registerRenderPipeline creates the GPU pipeline object for a variant descriptor.
// Shader modules are compiled once per shader key and shared across variants.
// Caller must hold b.mu.
func (b *wgpuRendererBackendImpl) registerRenderPipeline(p pipeline.Pipeline) error {
	sh := p.Shader()
	if sh == nil {
		return errors.New("a shader must be set to create a render pipeline")
	}

	module, ok := b.shaderModules[sh.Key()]
	if !ok {
		var err error
		module, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: sh.Key(),
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: sh.Source(),
			},
		})
		if err != nil {
			return err
		}
		b.shaderModules[sh.Key()] = module
	}

	descriptors := sh.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range descriptors {
		if g > maxGroup {
			maxGroup = g
		}
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g, desc := range descriptors {
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Key(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.Key() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: sh.VertexEntry(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: sh.FragmentEntry(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: p.WriteMask(),
					Blend:     p.BlendState(),
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      p.DepthCompare(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// only one surface texture may be held at a time
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// When MSAA is enabled, the MSAA texture is the color attachment View and
	// the swapchain view is the ResolveTarget. When MSAA is off, the swapchain
	// view is the color attachment View directly and ResolveTarget is nil.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}

	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	// If no frame surface is held, nothing to present.
	if b.frameSurface == nil {
		return
	}

	// Present the acquired surface image and release local references.
	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) Instance() *wgpu.Instance {
	return b.instance
}

func (b *wgpuRendererBackendImpl) Adapter() *wgpu.Adapter {
	return b.adapter
}

func (b *wgpuRendererBackendImpl) Surface() *wgpu.Surface {
	return b.surface
}

func (b *wgpuRendererBackendImpl) SetDevice(device *wgpu.Device) {
	b.device = device
}

func (b *wgpuRendererBackendImpl) SetQueue(queue *wgpu.Queue) {
	b.queue = queue
}

func (b *wgpuRendererBackendImpl) SetInstance(instance *wgpu.Instance) {
	b.instance = instance
}

func (b *wgpuRendererBackendImpl) SetAdapter(adapter *wgpu.Adapter) {
	b.adapter = adapter
}

func (b *wgpuRendererBackendImpl) SetSurface(surface *wgpu.Surface) {
	b.surface = surface
}
