package model

import "errors"

// Configuration errors indicate malformed or missing per-part data in a loaded asset.
// They are surfaced immediately and never retried.
var (
	// ErrMissingVertexDeclaration is returned when an input layout is requested for a
	// part with an empty vertex declaration.
	ErrMissingVertexDeclaration = errors.New("model: mesh part is missing vertex declaration elements")

	// ErrVertexDeclarationTooLarge is returned when a part's vertex declaration exceeds
	// the maximum number of input elements the device supports.
	ErrVertexDeclarationTooLarge = errors.New("model: mesh part vertex declaration is too large for the device")

	// ErrMissingBoneInfluences is returned when a skinned draw reaches a part whose
	// effect supports skinning but the owning mesh carries no bone influence map.
	ErrMissingBoneInfluences = errors.New("model: skinning requires bone influences")

	// ErrBoneIndexOutOfRange is returned when a mesh's attachment bone index exceeds the
	// model's own bone hierarchy.
	ErrBoneIndexOutOfRange = errors.New("model: mesh bone index exceeds the bone hierarchy")
)

// Invalid-argument errors indicate the caller supplied unusable arguments to a draw
// entry point.
var (
	// ErrNoBones is returned when a bone-driven draw is requested against a model with
	// no bone hierarchy and no transforms were supplied.
	ErrNoBones = errors.New("model: model contains no bones")

	// ErrBoneTransformsRequired is returned when a skinned draw is requested with a nil
	// or empty bone transform array.
	ErrBoneTransformsRequired = errors.New("model: bone transforms array required")
)
