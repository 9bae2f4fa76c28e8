package camera

import (
	"sync"

	"cogentcore.org/core/math32"
)

type cameraImpl struct {
	mu *sync.Mutex

	position math32.Vector3
	target   math32.Vector3
	up       math32.Vector3

	fov    float32
	aspect float32
	near   float32
	far    float32

	view       math32.Matrix4
	projection math32.Matrix4

	controller CameraController
}

// Camera holds perspective settings and computes the view and projection transforms
// consumed by model draws. With a CameraController attached, Update pulls the
// controller's position and target each frame; without one, the camera stays wherever
// LookAt put it.
type Camera interface {
	// Position returns the camera's world position.
	//
	// Returns:
	//   - math32.Vector3: the position
	Position() math32.Vector3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - math32.Vector3: the target
	Target() math32.Vector3

	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// View returns a copy of the current view transform.
	//
	// Returns:
	//   - math32.Matrix4: the view transform
	View() math32.Matrix4

	// Projection returns a copy of the current projection transform.
	//
	// Returns:
	//   - math32.Matrix4: the projection transform
	Projection() math32.Matrix4

	// Controller returns the attached CameraController, or nil if none is attached.
	//
	// Returns:
	//   - CameraController: the attached controller or nil
	Controller() CameraController

	// Update reads position and target from the attached controller and recomputes
	// the view transform. Does nothing when no controller is attached.
	Update()

	// LookAt places the camera and recomputes the view transform.
	//
	// Parameters:
	//   - position: the camera's world position
	//   - target: the point to look at
	LookAt(position, target math32.Vector3)

	// SetFov sets the vertical field of view in degrees and recomputes the projection.
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetFov(fov float32)

	// SetAspect sets the aspect ratio and recomputes the projection. Drive this from
	// the window's resize callback.
	//
	// Parameters:
	//   - aspect: the aspect ratio (width / height)
	SetAspect(aspect float32)

	// SetNear sets the near clipping plane distance and recomputes the projection.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance and recomputes the projection.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// SetController attaches a CameraController to the camera.
	//
	// Parameters:
	//   - ctrl: the controller to attach
	SetController(ctrl CameraController)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with default perspective settings, positioned on the
// positive Z axis looking at the origin.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: math32.Vec3(0, 0, 5),
		target:   math32.Vec3(0, 0, 0),
		up:       math32.Vec3(0, 1, 0),
		fov:      45,
		aspect:   16.0 / 9.0,
		near:     0.01,
		far:      100,
	}
	for _, opt := range options {
		opt(c)
	}
	c.updateView()
	c.updateProjection()
	return c
}

// updateView recomputes the view transform from position, target, and up.
// Caller must hold c.mu or be in construction.
func (c *cameraImpl) updateView() {
	var lookq math32.Quat
	lookq.SetFromRotationMatrix(math32.NewLookAt(c.position, c.target, c.up))

	var pose math32.Matrix4
	pose.SetTransform(c.position, lookq, math32.Vec3(1, 1, 1))
	view, err := pose.Inverse()
	if err != nil {
		c.view.SetIdentity()
		return
	}
	c.view.CopyFrom(view)
}

// updateProjection recomputes the projection transform from the perspective settings.
// Caller must hold c.mu or be in construction.
func (c *cameraImpl) updateProjection() {
	c.projection.SetPerspective(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) Position() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) View() math32.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() math32.Matrix4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.controller == nil {
		return
	}
	c.position = c.controller.Position()
	c.target = c.controller.Target()
	c.updateView()
}

func (c *cameraImpl) LookAt(position, target math32.Vector3) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.position = position
	c.target = target
	c.updateView()
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.updateProjection()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateProjection()
}

func (c *cameraImpl) SetNear(near float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.updateProjection()
}

func (c *cameraImpl) SetFar(far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.far = far
	c.updateProjection()
}

func (c *cameraImpl) SetController(ctrl CameraController) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controller = ctrl
}
