package scene

import (
	"sync"
	"testing"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/mdl-go/engine/model"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/states"
)

// drawRecord captures one draw call observed by a fake model.
type drawRecord struct {
	name  string
	boned bool
	world math32.Matrix4
	bones []math32.Matrix4
}

// drawLog is shared across fake models so tests can assert cross-model draw order.
type drawLog struct {
	mu      sync.Mutex
	records []drawRecord
}

func (l *drawLog) add(r drawRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
}

type fakeModel struct {
	name    string
	log     *drawLog
	drawErr error
	effects []effect.Effect
}

var _ model.Model = &fakeModel{}

func (m *fakeModel) Name() string                                      { return m.name }
func (m *fakeModel) Meshes() []model.Mesh                              { return nil }
func (m *fakeModel) FindMesh(name string) model.Mesh                   { return nil }
func (m *fakeModel) Skeleton() *model.Skeleton                         { return nil }
func (m *fakeModel) CacheBoneTransforms(local []math32.Matrix4) error  { return nil }
func (m *fakeModel) BoneTransforms() []math32.Matrix4                  { return nil }
func (m *fakeModel) Release()                                          {}

func (m *fakeModel) Draw(ctx device.Context, rs states.RenderStates, world, view, projection *math32.Matrix4, options ...model.DrawOption) error {
	if m.drawErr != nil {
		return m.drawErr
	}
	m.log.add(drawRecord{name: m.name, world: *world})
	return nil
}

func (m *fakeModel) DrawWithBones(ctx device.Context, rs states.RenderStates, boneTransforms []math32.Matrix4, world, view, projection *math32.Matrix4, options ...model.DrawOption) error {
	if m.drawErr != nil {
		return m.drawErr
	}
	m.log.add(drawRecord{name: m.name, boned: true, world: *world, bones: boneTransforms})
	return nil
}

func (m *fakeModel) DrawSkinned(ctx device.Context, rs states.RenderStates, boneTransforms []math32.Matrix4, view, projection *math32.Matrix4, options ...model.DrawOption) error {
	m.log.add(drawRecord{name: m.name, boned: true, bones: boneTransforms})
	return nil
}

func (m *fakeModel) UpdateEffects(visitor func(effect.Effect)) {
	for _, fx := range m.effects {
		visitor(fx)
	}
}

func rotationY(angle float32) math32.Matrix4 {
	var m math32.Matrix4
	m.SetRotationY(angle)
	return m
}

func TestSceneAddAssignsOrderedIDs(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")

	a := s.Add(&fakeModel{name: "a", log: log})
	b := s.Add(&fakeModel{name: "b", log: log})

	assert.Equal(t, uint64(1), a.ID())
	assert.Equal(t, uint64(2), b.ID())
	assert.Equal(t, 2, s.Count())
	assert.Same(t, a, s.Get(a.ID()))
	assert.Nil(t, s.Get(99))
}

func TestSceneAddNilModelPanics(t *testing.T) {
	s := NewScene("test")
	assert.Panics(t, func() {
		s.Add(nil)
	})
}

func TestSceneDrawPreservesInsertionOrder(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")
	view := math32.Identity4()
	projection := math32.Identity4()

	s.Add(&fakeModel{name: "first", log: log})
	s.Add(&fakeModel{name: "second", log: log})
	s.Add(&fakeModel{name: "third", log: log})

	require.NoError(t, s.Draw(nil, nil, view, projection))

	require.Len(t, log.records, 3)
	assert.Equal(t, "first", log.records[0].name)
	assert.Equal(t, "second", log.records[1].name)
	assert.Equal(t, "third", log.records[2].name)
}

func TestSceneDrawRoutesBonedInstances(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")
	view := math32.Identity4()
	projection := math32.Identity4()
	bones := []math32.Matrix4{rotationY(0.5)}

	s.Add(&fakeModel{name: "plain", log: log})
	s.Add(&fakeModel{name: "rigged", log: log}, WithBoneTransforms(bones))

	require.NoError(t, s.Draw(nil, nil, view, projection))

	require.Len(t, log.records, 2)
	assert.False(t, log.records[0].boned)
	assert.True(t, log.records[1].boned)
	assert.Len(t, log.records[1].bones, 1)
}

func TestSceneDrawUsesInstanceWorld(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")
	view := math32.Identity4()
	projection := math32.Identity4()
	world := rotationY(1.2)

	inst := s.Add(&fakeModel{name: "a", log: log}, WithWorld(&world))
	assert.Equal(t, world, inst.World())

	require.NoError(t, s.Draw(nil, nil, view, projection))
	require.Len(t, log.records, 1)
	assert.Equal(t, world, log.records[0].world)

	moved := rotationY(2.4)
	inst.SetWorld(&moved)
	require.NoError(t, s.Draw(nil, nil, view, projection))
	require.Len(t, log.records, 2)
	assert.Equal(t, moved, log.records[1].world)
}

func TestSceneDrawStopsAtFirstError(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")
	view := math32.Identity4()
	projection := math32.Identity4()

	s.Add(&fakeModel{name: "ok", log: log})
	s.Add(&fakeModel{name: "bad", log: log, drawErr: assert.AnError})
	s.Add(&fakeModel{name: "after", log: log})

	err := s.Draw(nil, nil, view, projection)
	require.ErrorIs(t, err, assert.AnError)
	require.Len(t, log.records, 1, "draws after the failing instance must not run")
}

func TestSceneRemoveKeepsRelativeOrder(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")
	view := math32.Identity4()
	projection := math32.Identity4()

	s.Add(&fakeModel{name: "a", log: log})
	middle := s.Add(&fakeModel{name: "b", log: log})
	s.Add(&fakeModel{name: "c", log: log})

	s.Remove(middle.ID())
	assert.Equal(t, 2, s.Count())
	assert.Nil(t, s.Get(middle.ID()))

	require.NoError(t, s.Draw(nil, nil, view, projection))
	require.Len(t, log.records, 2)
	assert.Equal(t, "a", log.records[0].name)
	assert.Equal(t, "c", log.records[1].name)
}

func TestSceneUpdateRunsEveryCallback(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test", WithUpdateWorkers(4))

	var mu sync.Mutex
	updated := make(map[uint64]float32)
	record := func(deltaTime float32, inst Instance) {
		mu.Lock()
		defer mu.Unlock()
		updated[inst.ID()] = deltaTime
	}

	for range 8 {
		s.Add(&fakeModel{name: "m", log: log}, WithUpdateFunc(record))
	}
	// An instance without a callback is skipped, not an error.
	s.Add(&fakeModel{name: "static", log: log})

	s.Update(0.016)

	assert.Len(t, updated, 8)
	for _, dt := range updated {
		assert.InDelta(t, 0.016, dt, 1e-6)
	}
}

func TestSceneUpdateMutatesInstanceState(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")
	view := math32.Identity4()
	projection := math32.Identity4()

	spin := func(deltaTime float32, inst Instance) {
		m := rotationY(deltaTime)
		inst.SetWorld(&m)
	}
	s.Add(&fakeModel{name: "spinner", log: log}, WithUpdateFunc(spin))

	s.Update(0.5)
	require.NoError(t, s.Draw(nil, nil, view, projection))

	require.Len(t, log.records, 1)
	assert.Equal(t, rotationY(0.5), log.records[0].world)
}

func TestSceneClear(t *testing.T) {
	log := &drawLog{}
	s := NewScene("test")

	s.Add(&fakeModel{name: "a", log: log})
	s.Add(&fakeModel{name: "b", log: log})
	s.Clear()

	assert.Equal(t, 0, s.Count())
	require.NoError(t, s.Draw(nil, nil, math32.Identity4(), math32.Identity4()))
	assert.Empty(t, log.records)
}

func TestSceneActiveFlag(t *testing.T) {
	s := NewScene("test", WithActive(true))
	assert.True(t, s.Active())
	s.SetActive(false)
	assert.False(t, s.Active())

	s.SetName("renamed")
	assert.Equal(t, "renamed", s.Name())
}

func TestSceneUpdateEffectsVisitsEveryModel(t *testing.T) {
	log := &drawLog{}
	fxA := effect.NewBasicEffect(effect.WithName("a"))
	fxB := effect.NewBasicEffect(effect.WithName("b"))
	s := NewScene("test")

	s.Add(&fakeModel{name: "one", log: log, effects: []effect.Effect{fxA}})
	s.Add(&fakeModel{name: "two", log: log, effects: []effect.Effect{fxB}})

	var visited []string
	s.UpdateEffects(func(fx effect.Effect) {
		visited = append(visited, fx.Name())
	})
	assert.Equal(t, []string{"a", "b"}, visited)
}
