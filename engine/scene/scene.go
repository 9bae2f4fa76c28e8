package scene

import (
	"runtime"
	"sync"
	"time"

	"cogentcore.org/core/math32"
	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/mdl-go/engine/model"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/device"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/effect"
	"github.com/Carmen-Shannon/mdl-go/engine/renderer/states"
)

// UpdateFunc is a per-instance update callback run during the scene's update phase.
// It receives the elapsed frame time and the instance it is attached to, and typically
// mutates the instance's world transform or bone transforms.
type UpdateFunc func(deltaTime float32, inst Instance)

// Instance is one placement of a Model in a Scene: the model, a world transform, and
// optionally a set of bone transforms for rigged models. Instances are updated
// concurrently during Update and drawn in insertion order during Draw.
type Instance interface {
	// ID returns the instance's scene-assigned identifier.
	ID() uint64

	// Model returns the model this instance places.
	Model() model.Model

	// World returns a copy of the instance's world transform.
	World() math32.Matrix4

	// SetWorld replaces the instance's world transform.
	//
	// Parameters:
	//   - world: the new world transform
	SetWorld(world *math32.Matrix4)

	// BoneTransforms returns the instance's bone transform set, or nil for unrigged
	// instances.
	BoneTransforms() []math32.Matrix4

	// SetBoneTransforms replaces the instance's bone transform set. A non-nil set
	// switches the instance to the bone-relative draw path.
	//
	// Parameters:
	//   - transforms: the bone transforms, parent-relative resolution already applied
	SetBoneTransforms(transforms []math32.Matrix4)

	// SetUpdateFunc attaches the callback run for this instance each Update.
	//
	// Parameters:
	//   - fn: the update callback, or nil to detach
	SetUpdateFunc(fn UpdateFunc)
}

// sceneInstance is the implementation of Instance.
type sceneInstance struct {
	mu sync.Mutex

	id             uint64
	mdl            model.Model
	world          math32.Matrix4
	boneTransforms []math32.Matrix4
	update         UpdateFunc
}

var _ Instance = &sceneInstance{}

func (i *sceneInstance) ID() uint64 {
	return i.id
}

func (i *sceneInstance) Model() model.Model {
	return i.mdl
}

func (i *sceneInstance) World() math32.Matrix4 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.world
}

func (i *sceneInstance) SetWorld(world *math32.Matrix4) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.world = *world
}

func (i *sceneInstance) BoneTransforms() []math32.Matrix4 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.boneTransforms
}

func (i *sceneInstance) SetBoneTransforms(transforms []math32.Matrix4) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.boneTransforms = transforms
}

func (i *sceneInstance) SetUpdateFunc(fn UpdateFunc) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.update = fn
}

// Scene manages an ordered collection of model Instances. Updates run concurrently
// over a bounded worker pool; draws run single-threaded in insertion order so the
// opaque-then-alpha submission order of each model is preserved frame to frame.
// Scenes can be hot-swapped via the Active flag to switch between different views
// or levels. Thread-safe for concurrent access, but Update and Draw must not be
// called concurrently with each other.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Count returns the number of instances in the scene.
	//
	// Returns:
	//   - int: the instance count
	Count() int

	// Add places a model in the scene and returns its instance. Instances draw in the
	// order they were added.
	//
	// Panics if the model is nil.
	//
	// Parameters:
	//   - mdl: the model to place
	//   - options: optional InstanceOption values configuring the placement
	//
	// Returns:
	//   - Instance: the created instance
	Add(mdl model.Model, options ...InstanceOption) Instance

	// Get retrieves an instance by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the instance's unique ID
	//
	// Returns:
	//   - Instance: the instance or nil
	Get(id uint64) Instance

	// Remove removes an instance from the scene by ID. Later instances keep their
	// relative draw order.
	//
	// Parameters:
	//   - id: the instance's unique ID
	Remove(id uint64)

	// Clear removes all instances from the scene.
	// Does not release GPU resources.
	Clear()

	// Update runs every instance's update callback concurrently over the scene's
	// worker pool and blocks until all callbacks complete.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	Update(deltaTime float32)

	// Draw draws every instance in insertion order on the caller's thread. Instances
	// with bone transforms use the bone-relative draw path; the rest draw with their
	// world transform alone. Must be called within a BeginFrame/EndFrame block on the
	// renderer. Stops at the first draw error.
	//
	// Parameters:
	//   - ctx: the context to record draws on
	//   - rs: the shared render states for the target device
	//   - view: the view transform
	//   - projection: the projection transform
	//   - options: optional model.DrawOption values applied to every instance
	//
	// Returns:
	//   - error: the first draw error, or nil
	Draw(ctx device.Context, rs states.RenderStates, view, projection *math32.Matrix4, options ...model.DrawOption) error

	// UpdateEffects calls the visitor once per distinct effect within each instance's
	// model. Deduplication is per model, not across models.
	//
	// Parameters:
	//   - visitor: the callback invoked per distinct effect
	UpdateEffects(visitor func(fx effect.Effect))
}

// scene is the implementation of Scene.
type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	// instances holds draw order; registry is the ID index into the same objects.
	instances []*sceneInstance
	registry  map[uint64]*sceneInstance
	nextID    uint64

	// updatePool manages a bounded set of reusable goroutines for the concurrent
	// update phase. Workers persist across frames, avoiding per-frame goroutine
	// spawn/teardown overhead.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the provided options. The update worker count
// defaults to NumCPU-1 with a floor of 1.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		registry:      make(map[uint64]*sceneInstance),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(s)
	}

	// Initialize the pool after options so WithUpdateWorkers can override the default.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instances)
}

func (s *scene) Add(mdl model.Model, options ...InstanceOption) Instance {
	if mdl == nil {
		panic("scene: Add requires a non-nil Model")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inst := &sceneInstance{
		id:  s.nextID,
		mdl: mdl,
	}
	inst.world.SetIdentity()
	s.nextID++
	for _, option := range options {
		option(inst)
	}

	s.instances = append(s.instances, inst)
	s.registry[inst.id] = inst
	return inst
}

func (s *scene) Get(id uint64) Instance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.registry[id]
	if !ok {
		return nil
	}
	return inst
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.registry[id]
	if !ok {
		return
	}
	delete(s.registry, id)
	for i, candidate := range s.instances {
		if candidate == inst {
			s.instances = append(s.instances[:i], s.instances[i+1:]...)
			break
		}
	}
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.instances = nil
	s.registry = make(map[uint64]*sceneInstance)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	snapshot := make([]*sceneInstance, len(s.instances))
	copy(snapshot, s.instances)
	s.mu.RUnlock()

	// A WaitGroup provides per-frame barrier sync since the pool's own Wait blocks
	// until workers idle-exit, which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for taskID, inst := range snapshot {
		inst.mu.Lock()
		fn := inst.update
		inst.mu.Unlock()
		if fn == nil {
			continue
		}

		wg.Add(1)
		instCap := inst
		fnCap := fn
		s.updatePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				fnCap(deltaTime, instCap)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) Draw(ctx device.Context, rs states.RenderStates, view, projection *math32.Matrix4, options ...model.DrawOption) error {
	s.mu.RLock()
	snapshot := make([]*sceneInstance, len(s.instances))
	copy(snapshot, s.instances)
	s.mu.RUnlock()

	for _, inst := range snapshot {
		inst.mu.Lock()
		world := inst.world
		bones := inst.boneTransforms
		inst.mu.Unlock()

		var err error
		if bones != nil {
			err = inst.mdl.DrawWithBones(ctx, rs, bones, &world, view, projection, options...)
		} else {
			err = inst.mdl.Draw(ctx, rs, &world, view, projection, options...)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) UpdateEffects(visitor func(fx effect.Effect)) {
	s.mu.RLock()
	snapshot := make([]*sceneInstance, len(s.instances))
	copy(snapshot, s.instances)
	s.mu.RUnlock()

	for _, inst := range snapshot {
		inst.mdl.UpdateEffects(visitor)
	}
}
