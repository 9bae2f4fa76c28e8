package model

// MeshBuilderOption is a functional option for configuring a new Mesh.
type MeshBuilderOption func(*mesh)

// NewMesh creates a new Mesh with the provided options applied.
//
// By default the mesh is detached from any bone, uses counter-clockwise
// winding, and treats alpha parts as premultiplied.
//
// Parameters:
//   - options: zero or more MeshBuilderOption to configure the mesh.
//
// Returns:
//   - Mesh: the constructed mesh.
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{
		boneIndex: InvalidBoneIndex,
		ccw:       true,
		pmAlpha:   true,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// WithMeshName sets the mesh's name.
//
// Parameters:
//   - name: the name used in error messages and lookups.
//
// Returns:
//   - MeshBuilderOption: the option to apply.
func WithMeshName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithMeshBoneIndex attaches the mesh to a skeleton bone.
//
// Parameters:
//   - index: the bone index, or InvalidBoneIndex to detach.
//
// Returns:
//   - MeshBuilderOption: the option to apply.
func WithMeshBoneIndex(index int32) MeshBuilderOption {
	return func(m *mesh) {
		m.boneIndex = index
	}
}

// WithBoneInfluences records the skeleton bones that influence this mesh's
// vertices, in palette order.
//
// Parameters:
//   - influences: the influencing bone indices.
//
// Returns:
//   - MeshBuilderOption: the option to apply.
func WithBoneInfluences(influences []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.boneInfluences = influences
	}
}

// WithParts sets the mesh's parts in draw order.
//
// Parameters:
//   - parts: the mesh parts.
//
// Returns:
//   - MeshBuilderOption: the option to apply.
func WithParts(parts ...MeshPart) MeshBuilderOption {
	return func(m *mesh) {
		m.parts = parts
	}
}

// WithCCW sets the mesh's triangle winding order.
//
// Parameters:
//   - ccw: true for counter-clockwise winding (the default).
//
// Returns:
//   - MeshBuilderOption: the option to apply.
func WithCCW(ccw bool) MeshBuilderOption {
	return func(m *mesh) {
		m.ccw = ccw
	}
}

// WithPremultipliedAlpha sets how the mesh's alpha parts are blended.
//
// Parameters:
//   - pmAlpha: true for premultiplied alpha blending (the default).
//
// Returns:
//   - MeshBuilderOption: the option to apply.
func WithPremultipliedAlpha(pmAlpha bool) MeshBuilderOption {
	return func(m *mesh) {
		m.pmAlpha = pmAlpha
	}
}
