package scene

import "cogentcore.org/core/math32"

// SceneBuilderOption is a functional option used to configure a Scene during construction.
type SceneBuilderOption func(*scene)

// WithActive sets the scene's initial active flag.
//
// Parameters:
//   - active: whether the scene starts active
//
// Returns:
//   - SceneBuilderOption: a function that applies the active option to the scene
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithUpdateWorkers sets the worker count for the concurrent update phase. Values
// below 1 are clamped to 1.
//
// Parameters:
//   - workers: the number of update workers
//
// Returns:
//   - SceneBuilderOption: a function that applies the worker count option to the scene
func WithUpdateWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		s.updateWorkers = max(workers, 1)
	}
}

// InstanceOption is a functional option used to configure an Instance when it is added
// to a Scene.
type InstanceOption func(*sceneInstance)

// WithWorld sets the instance's initial world transform.
//
// Parameters:
//   - world: the world transform
//
// Returns:
//   - InstanceOption: a function that applies the world option to the instance
func WithWorld(world *math32.Matrix4) InstanceOption {
	return func(i *sceneInstance) {
		i.world = *world
	}
}

// WithBoneTransforms sets the instance's initial bone transform set, switching it to
// the bone-relative draw path.
//
// Parameters:
//   - transforms: the bone transforms
//
// Returns:
//   - InstanceOption: a function that applies the bone transform option to the instance
func WithBoneTransforms(transforms []math32.Matrix4) InstanceOption {
	return func(i *sceneInstance) {
		i.boneTransforms = transforms
	}
}

// WithUpdateFunc attaches the instance's update callback.
//
// Parameters:
//   - fn: the update callback
//
// Returns:
//   - InstanceOption: a function that applies the update callback to the instance
func WithUpdateFunc(fn UpdateFunc) InstanceOption {
	return func(i *sceneInstance) {
		i.update = fn
	}
}
