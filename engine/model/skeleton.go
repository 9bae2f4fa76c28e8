package model

import (
	"fmt"

	"cogentcore.org/core/math32"
)

// InvalidBoneIndex is the reserved sentinel meaning "no bone attachment". A mesh with
// this bone index uses the first transform in whatever array the caller supplies.
const InvalidBoneIndex int32 = -1

// Bone represents a single bone in a skeleton hierarchy. The hierarchy is expressed
// through parent back-references by index into the flat bone table, never pointers, so
// a Skeleton is trivially copyable.
type Bone struct {
	// Name is the bone's identifier (for debugging and animation targeting).
	Name string

	// ParentIndex is the index of the parent bone (InvalidBoneIndex for root bones).
	// Parents always precede their children in the bone table.
	ParentIndex int32
}

// Skeleton represents a flat, insertion-ordered bone hierarchy. It is built once at
// load time and read-only during rendering.
type Skeleton struct {
	// Bones is the array of all bones in the skeleton, indexed densely from 0.
	Bones []Bone

	// BoneNameToIndex maps bone names to their indices for quick lookup.
	BoneNameToIndex map[string]int32
}

// NewSkeleton builds a Skeleton from the provided bone table and validates the
// hierarchy: every parent index must be InvalidBoneIndex or refer to an earlier bone.
//
// Parameters:
//   - bones: the insertion-ordered bone table
//
// Returns:
//   - *Skeleton: the validated skeleton
//   - error: an error if a parent reference is out of range or not an earlier bone
func NewSkeleton(bones []Bone) (*Skeleton, error) {
	nameToIndex := make(map[string]int32, len(bones))
	for i, b := range bones {
		if b.ParentIndex != InvalidBoneIndex && (b.ParentIndex < 0 || int(b.ParentIndex) >= i) {
			return nil, fmt.Errorf("model: bone %d (%q) has invalid parent index %d", i, b.Name, b.ParentIndex)
		}
		if b.Name != "" {
			nameToIndex[b.Name] = int32(i)
		}
	}
	return &Skeleton{Bones: bones, BoneNameToIndex: nameToIndex}, nil
}

// Len returns the number of bones in the skeleton. Safe on a nil skeleton.
//
// Returns:
//   - int: the bone count, or 0 for a nil skeleton
func (s *Skeleton) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bones)
}

// AbsoluteTransforms chains the provided per-bone local transforms through the parent
// hierarchy, producing one absolute (model-space) transform per bone. The local array
// must have exactly one entry per bone.
//
// Parameters:
//   - local: per-bone local transforms, parallel to Bones
//
// Returns:
//   - []math32.Matrix4: per-bone absolute transforms
//   - error: an error if the local array length does not match the bone count
func (s *Skeleton) AbsoluteTransforms(local []math32.Matrix4) ([]math32.Matrix4, error) {
	if s.Len() == 0 {
		return nil, ErrNoBones
	}
	if len(local) != len(s.Bones) {
		return nil, fmt.Errorf("model: %d local transforms for %d bones", len(local), len(s.Bones))
	}

	abs := make([]math32.Matrix4, len(s.Bones))
	for i, b := range s.Bones {
		if b.ParentIndex == InvalidBoneIndex {
			abs[i] = local[i]
			continue
		}
		// Parents precede children, so abs[parent] is already final.
		abs[i].MulMatrices(&abs[b.ParentIndex], &local[i])
	}
	return abs, nil
}
