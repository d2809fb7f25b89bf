package camera

import "github.com/Kuowrk/fragma/common"

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the initial eye position.
//
// Parameters:
//   - position: the eye position in world space
//
// Returns:
//   - CameraBuilderOption: a function that applies the position option
func WithPosition(position common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithPivot sets the initial point the camera looks at and orbits around.
//
// Parameters:
//   - pivot: the pivot in world space
//
// Returns:
//   - CameraBuilderOption: a function that applies the pivot option
func WithPivot(pivot common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.pivot = pivot
	}
}

// WithFOV sets the vertical field of view.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: a function that applies the fov option
func WithFOV(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.fov = fov
	}
}

// WithClipPlanes sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance (> 0)
//   - far: far plane distance (> near)
//
// Returns:
//   - CameraBuilderOption: a function that applies the clip plane option
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithWorldUp sets the world up direction the camera basis is built against.
//
// Parameters:
//   - up: the world up vector
//
// Returns:
//   - CameraBuilderOption: a function that applies the world up option
func WithWorldUp(up common.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.worldUp = up.Normalize()
	}
}
