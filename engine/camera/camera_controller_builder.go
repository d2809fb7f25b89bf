package camera

import "github.com/Kuowrk/fragma/common"

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithRotationSensitivity sets how far a pixel of drag turns the camera.
//
// Parameters:
//   - sensitivity: multiplier applied to drag angles
//
// Returns:
//   - CameraControllerOption: functional option to set the rotation sensitivity
func WithRotationSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotationSensitivity = sensitivity
	}
}

// WithRotationSmoothing sets the exponential rate at which the direction approaches its target.
//
// Parameters:
//   - rate: smoothing rate per second, higher is snappier
//
// Returns:
//   - CameraControllerOption: functional option to set the rotation smoothing
func WithRotationSmoothing(rate float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.rotationSmoothing = rate
	}
}

// WithMaxPitch sets the largest elevation the orbit direction may reach.
//
// Parameters:
//   - degrees: the pitch limit in degrees
//
// Returns:
//   - CameraControllerOption: functional option to set the pitch limit
func WithMaxPitch(degrees float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.maxPitch = common.DegToRad(degrees)
	}
}

// WithZoomSensitivity sets how much one scroll step changes the orbit distance.
//
// Parameters:
//   - sensitivity: multiplier applied to scroll input
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom sensitivity
func WithZoomSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSensitivity = sensitivity
	}
}

// WithZoomSmoothing sets the exponential rate at which the distance approaches its target.
//
// Parameters:
//   - rate: smoothing rate per second, higher is snappier
//
// Returns:
//   - CameraControllerOption: functional option to set the zoom smoothing
func WithZoomSmoothing(rate float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.zoomSmoothing = rate
	}
}
