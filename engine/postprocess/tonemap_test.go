package postprocess

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/mdl-go/common"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/shader"
)

type fakeLayout struct{}

func (f *fakeLayout) Release() {}

type fakeDevice struct {
	vertexBuffers int
	indexBuffers  int
	samplers      int
	layouts       int
}

var _ device.Device = &fakeDevice{}

func (d *fakeDevice) CreateVertexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	d.vertexBuffers++
	return &wgpu.Buffer{}, nil
}

func (d *fakeDevice) CreateIndexBuffer(label string, data []byte) (*wgpu.Buffer, error) {
	d.indexBuffers++
	return &wgpu.Buffer{}, nil
}

func (d *fakeDevice) CreateUniformBuffer(label string, size uint64) (*wgpu.Buffer, error) {
	return &wgpu.Buffer{}, nil
}

func (d *fakeDevice) CreateInputLayout(elements []device.VertexElement, sh shader.Shader) (device.InputLayout, error) {
	d.layouts++
	return &fakeLayout{}, nil
}

func (d *fakeDevice) CreateSampler(data common.SamplerStagingData) (*wgpu.Sampler, error) {
	d.samplers++
	return &wgpu.Sampler{}, nil
}

type recordedDraw struct {
	indexCount uint32
	startIndex uint32
	baseVertex int32
}

type recordingContext struct {
	calls   []string
	writes  [][]byte
	depths  []device.DepthStencilState
	rasters []device.RasterizerState
	draws   []recordedDraw
}

var _ device.Context = &recordingContext{}

func (c *recordingContext) SetInputLayout(layout device.InputLayout) {
	c.calls = append(c.calls, "input-layout")
}

func (c *recordingContext) SetVertexBuffer(buf *wgpu.Buffer, stride uint32) {
	c.calls = append(c.calls, "vertex-buffer")
}

func (c *recordingContext) SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat) {
	c.calls = append(c.calls, "index-buffer")
}

func (c *recordingContext) SetPrimitiveTopology(topology wgpu.PrimitiveTopology) {
	c.calls = append(c.calls, "topology")
}

func (c *recordingContext) SetBlendState(state *wgpu.BlendState) {
	c.calls = append(c.calls, "blend")
}

func (c *recordingContext) SetDepthStencilState(state device.DepthStencilState) {
	c.calls = append(c.calls, "depth")
	c.depths = append(c.depths, state)
}

func (c *recordingContext) SetRasterizerState(state device.RasterizerState) {
	c.calls = append(c.calls, "raster")
	c.rasters = append(c.rasters, state)
}

func (c *recordingContext) SetSamplers(samplers ...*wgpu.Sampler) {
	c.calls = append(c.calls, "samplers")
}

func (c *recordingContext) SetBindGroups(providers ...bind_group_provider.BindGroupProvider) {
	c.calls = append(c.calls, "bind-groups")
}

func (c *recordingContext) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	c.calls = append(c.calls, "write-buffers")
	for _, w := range writes {
		c.writes = append(c.writes, w.Data)
	}
}

func (c *recordingContext) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	c.calls = append(c.calls, "draw")
	c.draws = append(c.draws, recordedDraw{indexCount, startIndex, baseVertex})
}

func (c *recordingContext) DrawIndexedInstanced(indexCount, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	c.calls = append(c.calls, "draw-instanced")
}

func float32At(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

// cleanupPool forgets a fake device's pool entry without releasing, since the fakes
// hold no real GPU handles.
func cleanupPool(dev device.Device) {
	pool.Lock()
	delete(pool.resources, dev)
	pool.Unlock()
}

func TestToneMapPermutationIndex(t *testing.T) {
	seen := make(map[int]bool)
	for tf := TransferLinear; tf < transferCount; tf++ {
		for op := OperatorNone; op < operatorCount; op++ {
			idx := permutationIndex(op, tf)
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, int(operatorCount)*int(transferCount))
			assert.False(t, seen[idx], "permutation index %d assigned twice", idx)
			seen[idx] = true
		}
	}
	assert.Len(t, seen, int(operatorCount)*int(transferCount))
}

func TestToneMapShaderPermutations(t *testing.T) {
	tm := NewToneMapPostProcess(
		WithOperator(OperatorReinhard),
		WithTransferFunction(TransferLinear),
	)

	sh := tm.Shader()
	assert.Contains(t, sh.Source(), "color / (vec3<f32>(1.0) + color)")
	assert.Same(t, sh, tm.Shader(), "permutation shaders should be cached")

	tm.SetTransferFunction(TransferST2084)
	st2084 := tm.Shader()
	assert.NotEqual(t, sh.Key(), st2084.Key())
	assert.Contains(t, st2084.Source(), "paper_white_nits / 10000.0")

	tm.SetOperator(OperatorACESFilmic)
	aces := tm.Shader()
	assert.NotEqual(t, st2084.Key(), aces.Key())
	assert.Contains(t, aces.Source(), "2.51")

	// Every permutation must produce a complete module with both entry points.
	for tf := TransferLinear; tf < transferCount; tf++ {
		for op := OperatorNone; op < operatorCount; op++ {
			tm.SetOperator(op)
			tm.SetTransferFunction(tf)
			src := tm.Shader().Source()
			assert.True(t, strings.Contains(src, "fn vs_main"), "permutation %d missing vertex entry", permutationIndex(op, tf))
			assert.True(t, strings.Contains(src, "fn fs_main"), "permutation %d missing fragment entry", permutationIndex(op, tf))
			assert.True(t, strings.Contains(src, "fn tonemap"), "permutation %d missing operator", permutationIndex(op, tf))
			assert.True(t, strings.Contains(src, "fn transfer"), "permutation %d missing transfer", permutationIndex(op, tf))
		}
	}
}

func TestToneMapApplyWritesUniform(t *testing.T) {
	tm := NewToneMapPostProcess()
	ctx := &recordingContext{}

	tm.Apply(ctx)

	require.Len(t, ctx.writes, 1)
	data := ctx.writes[0]
	assert.InDelta(t, 1.0, float32At(data, 0), 1e-6, "exposure 0 should scale by 1")
	assert.InDelta(t, 200.0, float32At(data, 4), 1e-6, "default paper white is 200 nits")

	tm.SetExposure(1)
	tm.SetPaperWhiteNits(80)
	tm.Apply(ctx)

	require.Len(t, ctx.writes, 2)
	data = ctx.writes[1]
	assert.InDelta(t, 2.0, float32At(data, 0), 1e-6, "exposure 1 should scale by 2")
	assert.InDelta(t, 80.0, float32At(data, 4), 1e-6)
}

func TestToneMapProcessRequiresPrepare(t *testing.T) {
	tm := NewToneMapPostProcess()
	ctx := &recordingContext{}

	err := tm.Process(ctx)
	require.Error(t, err)
	assert.Empty(t, ctx.calls)
}

func TestToneMapProcessDrawSequence(t *testing.T) {
	dev := &fakeDevice{}
	ctx := &recordingContext{}
	tm := NewToneMapPostProcess()
	require.NoError(t, tm.Prepare(dev))
	defer cleanupPool(dev)

	require.NoError(t, tm.Process(ctx))

	want := []string{
		"blend", "depth", "raster",
		"input-layout", "vertex-buffer", "index-buffer",
		"write-buffers", "bind-groups",
		"topology", "draw",
	}
	assert.Equal(t, want, ctx.calls)

	require.Len(t, ctx.draws, 1)
	assert.Equal(t, recordedDraw{indexCount: 3, startIndex: 0, baseVertex: 0}, ctx.draws[0])

	require.Len(t, ctx.depths, 1)
	assert.False(t, ctx.depths[0].DepthWriteEnabled)
	assert.Equal(t, wgpu.CompareFunctionAlways, ctx.depths[0].DepthCompare)

	require.Len(t, ctx.rasters, 1)
	assert.Equal(t, wgpu.CullModeNone, ctx.rasters[0].CullMode)
	assert.False(t, ctx.rasters[0].Wireframe)
}

func TestToneMapProcessCachesLayoutsPerPermutation(t *testing.T) {
	dev := &fakeDevice{}
	ctx := &recordingContext{}
	tm := NewToneMapPostProcess()
	require.NoError(t, tm.Prepare(dev))
	defer cleanupPool(dev)

	require.NoError(t, tm.Process(ctx))
	require.NoError(t, tm.Process(ctx))
	assert.Equal(t, 1, dev.layouts, "repeated draws of one permutation share a layout")

	tm.SetOperator(OperatorReinhard)
	require.NoError(t, tm.Process(ctx))
	assert.Equal(t, 2, dev.layouts, "a new permutation needs its own layout")
}

func TestToneMapPoolSharedPerDevice(t *testing.T) {
	dev := &fakeDevice{}
	defer cleanupPool(dev)

	a := NewToneMapPostProcess()
	b := NewToneMapPostProcess()
	require.NoError(t, a.Prepare(dev))
	require.NoError(t, b.Prepare(dev))

	assert.Equal(t, 1, dev.vertexBuffers, "fullscreen geometry is pooled per device")
	assert.Equal(t, 1, dev.indexBuffers)
	assert.Equal(t, 1, dev.samplers)

	other := &fakeDevice{}
	defer cleanupPool(other)
	require.NoError(t, a.Prepare(other))
	assert.Equal(t, 1, other.vertexBuffers, "a second device gets its own pool entry")
}
