package model

import (
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSkeletonValidation(t *testing.T) {
	_, err := NewSkeleton([]Bone{
		{Name: "root", ParentIndex: InvalidBoneIndex},
		{Name: "child", ParentIndex: 0},
	})
	assert.NoError(t, err)

	// A bone may not appear before its parent.
	_, err = NewSkeleton([]Bone{
		{Name: "child", ParentIndex: 1},
		{Name: "root", ParentIndex: InvalidBoneIndex},
	})
	assert.Error(t, err)

	_, err = NewSkeleton([]Bone{{Name: "self", ParentIndex: 0}})
	assert.Error(t, err)
}

func TestSkeletonLookup(t *testing.T) {
	s, err := NewSkeleton([]Bone{
		{Name: "root", ParentIndex: InvalidBoneIndex},
		{Name: "spine", ParentIndex: 0},
		{Name: "head", ParentIndex: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, int32(1), s.BoneNameToIndex["spine"])

	var nilSkeleton *Skeleton
	assert.Equal(t, 0, nilSkeleton.Len())
}

func TestSkeletonAbsoluteTransforms(t *testing.T) {
	s, err := NewSkeleton([]Bone{
		{Name: "root", ParentIndex: InvalidBoneIndex},
		{Name: "spine", ParentIndex: 0},
		{Name: "head", ParentIndex: 1},
		{Name: "arm", ParentIndex: 1},
	})
	require.NoError(t, err)

	local := []math32.Matrix4{
		rotationY(0.1),
		rotationY(0.2),
		rotationY(0.3),
		rotationY(0.4),
	}

	abs, err := s.AbsoluteTransforms(local)
	require.NoError(t, err)
	require.Len(t, abs, 4)

	assert.Equal(t, local[0], abs[0])

	var spine math32.Matrix4
	spine.MulMatrices(&local[0], &local[1])
	assert.Equal(t, spine, abs[1])

	var head math32.Matrix4
	head.MulMatrices(&spine, &local[2])
	assert.Equal(t, head, abs[2])

	// Siblings chain through the same parent independently.
	var arm math32.Matrix4
	arm.MulMatrices(&spine, &local[3])
	assert.Equal(t, arm, abs[3])
}

func TestSkeletonAbsoluteTransformsCountMismatch(t *testing.T) {
	s, err := NewSkeleton([]Bone{
		{Name: "root", ParentIndex: InvalidBoneIndex},
		{Name: "child", ParentIndex: 0},
	})
	require.NoError(t, err)

	_, err = s.AbsoluteTransforms([]math32.Matrix4{rotationY(0.1)})
	assert.Error(t, err)
}
