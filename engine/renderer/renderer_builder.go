package renderer

type rendererBuilderOptions struct {
	presentMode           PresentMode
	msaa                  MSAASampleCount
	forceSoftwareRenderer bool
}

// RendererBuilderOption is a functional option for configuring a Renderer at creation.
type RendererBuilderOption func(*rendererBuilderOptions)

// WithPresentMode sets the initial surface present mode.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: the option to apply
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(o *rendererBuilderOptions) {
		o.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the main render pass.
// Defaults to MSAA4x. Sample counts above 4 are adapter-dependent.
//
// Parameters:
//   - samples: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: the option to apply
func WithMSAA(samples MSAASampleCount) RendererBuilderOption {
	return func(o *rendererBuilderOptions) {
		o.msaa = samples
	}
}

// WithForceSoftwareRenderer forces adapter selection to a software fallback adapter.
// Useful for headless environments and driver triage.
//
// Parameters:
//   - force: whether to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: the option to apply
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(o *rendererBuilderOptions) {
		o.forceSoftwareRenderer = force
	}
}
