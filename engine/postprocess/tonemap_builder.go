package postprocess

import "github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"

// ToneMapOption is a functional option for configuring a ToneMapPostProcess via
// NewToneMapPostProcess.
type ToneMapOption func(*toneMap)

// WithName is an option builder that sets the debug name of the pass.
//
// Parameters:
//   - name: the pass identifier
//
// Returns:
//   - ToneMapOption: a function that applies the name option to the pass
func WithName(name string) ToneMapOption {
	return func(t *toneMap) {
		t.name = name
	}
}

// WithOperator is an option builder that sets the initial tone-map operator.
//
// Parameters:
//   - op: the operator to use
//
// Returns:
//   - ToneMapOption: a function that applies the operator option to the pass
func WithOperator(op ToneMapOperator) ToneMapOption {
	return func(t *toneMap) {
		t.op = op
	}
}

// WithTransferFunction is an option builder that sets the initial transfer function.
//
// Parameters:
//   - tf: the transfer function to use
//
// Returns:
//   - ToneMapOption: a function that applies the transfer function option to the pass
func WithTransferFunction(tf TransferFunction) ToneMapOption {
	return func(t *toneMap) {
		t.tf = tf
	}
}

// WithExposure is an option builder that sets the initial exposure in stops.
//
// Parameters:
//   - exposure: the exposure in stops
//
// Returns:
//   - ToneMapOption: a function that applies the exposure option to the pass
func WithExposure(exposure float32) ToneMapOption {
	return func(t *toneMap) {
		t.exposure = exposure
	}
}

// WithPaperWhiteNits is an option builder that sets the ST.2084 paper-white level.
//
// Parameters:
//   - nits: the paper-white level in nits
//
// Returns:
//   - ToneMapOption: a function that applies the paper-white option to the pass
func WithPaperWhiteNits(nits float32) ToneMapOption {
	return func(t *toneMap) {
		t.paperWhiteNits = nits
	}
}

// WithProvider is an option builder that sets a pre-configured bind group provider.
//
// Parameters:
//   - provider: the bind group provider to use
//
// Returns:
//   - ToneMapOption: a function that applies the provider option to the pass
func WithProvider(provider bind_group_provider.BindGroupProvider) ToneMapOption {
	return func(t *toneMap) {
		t.provider = provider
	}
}
