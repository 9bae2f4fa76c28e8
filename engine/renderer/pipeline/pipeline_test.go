package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("key")

	assert.Equal(t, "key", p.Key())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CompareFunctionLessEqual, p.DepthCompare())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, p.Topology())
	assert.Equal(t, wgpu.FrontFaceCCW, p.FrontFace())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
	assert.Nil(t, p.BlendState())
	assert.Nil(t, p.RenderPipeline())
}

func TestNewPipelineOptions(t *testing.T) {
	blend := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
	p := NewPipeline("key",
		WithBlendState(blend),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeNone),
		WithTopology(wgpu.PrimitiveTopologyLineList),
	)

	assert.Same(t, blend, p.BlendState())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeNone, p.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
}

func TestVariantKeyDistinguishesState(t *testing.T) {
	alpha := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}
	straight := &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
		Alpha: wgpu.BlendComponent{
			Operation: wgpu.BlendOperationAdd,
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		},
	}

	base := VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, nil, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack)

	variants := []string{
		VariantKey("skinned", 32, wgpu.PrimitiveTopologyTriangleList, nil, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack),
		VariantKey("basic", 48, wgpu.PrimitiveTopologyTriangleList, nil, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack),
		VariantKey("basic", 32, wgpu.PrimitiveTopologyLineList, nil, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack),
		VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, alpha, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack),
		VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, nil, false, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack),
		VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, nil, true, wgpu.CompareFunctionAlways, wgpu.FrontFaceCCW, wgpu.CullModeBack),
		VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, nil, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCW, wgpu.CullModeBack),
		VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, nil, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeNone),
	}

	seen := map[string]bool{base: true}
	for _, v := range variants {
		assert.NotEqual(t, base, v)
		assert.False(t, seen[v], "variant keys must be unique: %s", v)
		seen[v] = true
	}

	// Different blend descriptors with different factors map to different keys;
	// structurally equal descriptors map to the same key.
	keyAlpha := VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, alpha, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack)
	keyStraight := VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, straight, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack)
	assert.NotEqual(t, keyAlpha, keyStraight)

	alphaCopy := *alpha
	keyCopy := VariantKey("basic", 32, wgpu.PrimitiveTopologyTriangleList, &alphaCopy, true, wgpu.CompareFunctionLessEqual, wgpu.FrontFaceCCW, wgpu.CullModeBack)
	assert.Equal(t, keyAlpha, keyCopy)
}
