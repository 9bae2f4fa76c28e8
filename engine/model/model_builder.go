package model

// ModelBuilderOption is a functional option for configuring a new Model.
type ModelBuilderOption func(*model)

// NewModel creates a new Model with the provided options applied.
//
// Parameters:
//   - options: zero or more ModelBuilderOption to configure the model.
//
// Returns:
//   - Model: the constructed model.
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// WithModelName sets the model's name.
//
// Parameters:
//   - name: the name used in error messages and lookups.
//
// Returns:
//   - ModelBuilderOption: the option to apply.
func WithModelName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshes sets the model's meshes in draw order.
//
// Parameters:
//   - meshes: the meshes.
//
// Returns:
//   - ModelBuilderOption: the option to apply.
func WithMeshes(meshes ...Mesh) ModelBuilderOption {
	return func(m *model) {
		m.meshes = meshes
	}
}

// WithSkeleton sets the model's skeleton.
//
// Parameters:
//   - skeleton: the bone hierarchy.
//
// Returns:
//   - ModelBuilderOption: the option to apply.
func WithSkeleton(skeleton *Skeleton) ModelBuilderOption {
	return func(m *model) {
		m.skeleton = skeleton
	}
}
