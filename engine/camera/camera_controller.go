package camera

// CameraController drives a Camera from mouse input with exponential smoothing.
// Input methods only accumulate; Update converts the accumulated input into a desired orbit
// direction and distance around the camera pivot and moves the camera a step towards them.
type CameraController interface {
	// BeginRotate starts a rotation drag.
	BeginRotate()

	// Rotate accumulates a cursor movement while a drag is active. Movements outside a drag are ignored.
	//
	// Parameters:
	//   - dx: horizontal cursor delta in pixels
	//   - dy: vertical cursor delta in pixels
	Rotate(dx, dy float32)

	// EndRotate ends the rotation drag.
	EndRotate()

	// Rotating reports whether a rotation drag is active.
	//
	// Returns:
	//   - bool: true between BeginRotate and EndRotate
	Rotating() bool

	// Zoom accumulates scroll input. Positive delta moves towards the pivot.
	//
	// Parameters:
	//   - delta: scroll amount in wheel steps
	Zoom(delta float32)

	// Pan translates the camera and its pivot along the camera right and up vectors.
	//
	// Parameters:
	//   - right: distance along the right vector
	//   - up: distance along the up vector
	Pan(right, up float32)

	// Update applies the accumulated input and advances the smoothing by dt.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//   - viewportWidth: viewport width in pixels
	//   - viewportHeight: viewport height in pixels
	Update(dt float32, viewportWidth, viewportHeight float32)

	// Sync resets the desired state to the camera's current state, discarding pending input.
	Sync()

	// Settled reports whether the camera has reached the desired state and no input is pending.
	//
	// Returns:
	//   - bool: true if further Update calls would not move the camera
	Settled() bool
}
