package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/states"
	"github.com/Carmen-Shannon/mdl-go/engine/window"
)

type renderer struct {
	backend RendererBackend
	states  states.RenderStates
}

// Renderer owns a GPU backend and exposes the capability surfaces the drawing core
// consumes: a device.Device for resource creation, a device.Context for binding and
// draw submission, and the shared states.RenderStates for the backend's device.
//
// A Renderer is created against a window and drives one frame at a time:
// BeginFrame, any number of draw submissions through Context, EndFrame, Present.
type Renderer interface {
	// Device returns the resource-creation surface of the backend.
	//
	// Returns:
	//   - device.Device: the backend's device capability
	Device() device.Device

	// Context returns the bind-and-submit surface of the backend.
	//
	// Returns:
	//   - device.Context: the backend's context capability
	Context() device.Context

	// States returns the common render state objects for the backend's device.
	//
	// Returns:
	//   - states.RenderStates: the shared state factory
	States() states.RenderStates

	// InitEffect creates the GPU bind group resources for an effect's provider from the
	// effect shader's group 0 layout descriptor. Must be called once per effect before
	// the effect is applied in a draw.
	//
	// Parameters:
	//   - fx: the effect to initialize
	//
	// Returns:
	//   - error: an error if any GPU resource could not be created
	InitEffect(fx effect.Effect) error

	// Resize reconfigures the surface and its size-dependent attachments. Must be called
	// whenever the window's framebuffer size changes. Invalidates cached pipeline
	// variants when the surface format changes.
	//
	// Parameters:
	//   - width: the new surface width in pixels
	//   - height: the new surface height in pixels
	Resize(width, height int)

	// SetPresentMode switches the surface present mode. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the next surface texture and opens the frame's render pass.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the surface texture could not be acquired
	BeginFrame() error

	// EndFrame closes the frame's render pass and submits its commands to the GPU.
	EndFrame()

	// Present displays the submitted frame and releases the surface texture.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer of the given backend type bound to the provided window.
// The surface is configured to the window's current framebuffer size before returning.
//
// Parameters:
//   - backendType: the RendererBackendType selecting the GPU API
//   - win: the window providing the rendering surface
//   - options: optional RendererBuilderOption values to customize the renderer
//
// Returns:
//   - Renderer: the initialized renderer
func NewRenderer(backendType RendererBackendType, win window.Window, options ...RendererBuilderOption) Renderer {
	opts := &rendererBuilderOptions{
		presentMode: PresentModeUncapped,
		msaa:        MSAA4x,
	}
	for _, opt := range options {
		opt(opts)
	}

	var backend RendererBackend
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend = newWGPURendererBackend(win.SurfaceDescriptor(), opts.forceSoftwareRenderer, opts.msaa)
	}

	backend.SetPresentMode(opts.presentMode)
	backend.ConfigureSurface(win.Width(), win.Height())

	st, err := states.ForDevice(backend)
	if err != nil {
		panic(fmt.Errorf("renderer: failed to create shared render states: %w", err))
	}

	return &renderer{
		backend: backend,
		states:  st,
	}
}

func (r *renderer) Device() device.Device {
	return r.backend
}

func (r *renderer) Context() device.Context {
	return r.backend
}

func (r *renderer) States() states.RenderStates {
	return r.states
}

func (r *renderer) InitEffect(fx effect.Effect) error {
	return r.backend.InitBindGroup(fx.Provider(), fx.Shader().BindGroupLayoutDescriptor(0))
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}
