package camera

import (
	"sync"

	"cogentcore.org/core/math32"
)

// CameraController supplies a camera's position and target each frame. Controllers own
// movement state; the camera only reads the resulting pose during Update.
type CameraController interface {
	// Position returns the controller's current camera position.
	//
	// Returns:
	//   - math32.Vector3: the position
	Position() math32.Vector3

	// Target returns the controller's current look-at target.
	//
	// Returns:
	//   - math32.Vector3: the target
	Target() math32.Vector3

	// Orbit rotates the camera around the target.
	//
	// Parameters:
	//   - deltaYaw: rotation around the vertical axis in radians
	//   - deltaPitch: rotation toward or away from the vertical axis in radians
	Orbit(deltaYaw, deltaPitch float32)

	// Zoom moves the camera toward (positive delta) or away from the target.
	//
	// Parameters:
	//   - delta: the distance change
	Zoom(delta float32)
}

// orbitController circles a fixed target at a spherical offset. Pitch is clamped short
// of the poles so the up vector never degenerates.
type orbitController struct {
	mu *sync.Mutex

	target   math32.Vector3
	distance float32
	yaw      float32
	pitch    float32

	minDistance float32
	maxPitch    float32
}

var _ CameraController = &orbitController{}

// NewOrbitController creates a controller that orbits the origin at distance 5 until
// reconfigured through options.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewOrbitController(options ...OrbitControllerOption) CameraController {
	c := &orbitController{
		mu:          &sync.Mutex{},
		target:      math32.Vec3(0, 0, 0),
		distance:    5,
		minDistance: 0.1,
		maxPitch:    math32.Pi/2 - 0.01,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *orbitController) Position() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cosPitch := math32.Cos(c.pitch)
	offset := math32.Vec3(
		c.distance*cosPitch*math32.Sin(c.yaw),
		c.distance*math32.Sin(c.pitch),
		c.distance*cosPitch*math32.Cos(c.yaw),
	)
	return c.target.Add(offset)
}

func (c *orbitController) Target() math32.Vector3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *orbitController) Orbit(deltaYaw, deltaPitch float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.yaw += deltaYaw
	c.pitch = math32.Clamp(c.pitch+deltaPitch, -c.maxPitch, c.maxPitch)
}

func (c *orbitController) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.distance = max(c.distance-delta, c.minDistance)
}

// OrbitControllerOption is a functional option for configuring an orbit controller.
type OrbitControllerOption func(*orbitController)

// WithOrbitTarget sets the point the controller orbits.
//
// Parameters:
//   - target: the orbit center
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithOrbitTarget(target math32.Vector3) OrbitControllerOption {
	return func(c *orbitController) {
		c.target = target
	}
}

// WithDistance sets the initial orbit distance.
//
// Parameters:
//   - distance: the distance from the target
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithDistance(distance float32) OrbitControllerOption {
	return func(c *orbitController) {
		c.distance = distance
	}
}

// WithYawPitch sets the initial orbit angles in radians.
//
// Parameters:
//   - yaw: rotation around the vertical axis
//   - pitch: elevation from the horizontal plane
//
// Returns:
//   - OrbitControllerOption: option function to apply
func WithYawPitch(yaw, pitch float32) OrbitControllerOption {
	return func(c *orbitController) {
		c.yaw = yaw
		c.pitch = pitch
	}
}
