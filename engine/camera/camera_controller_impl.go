package camera

import (
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/chewxy/math32"
)

const (
	snapDistance  = 1e-4
	snapDirection = 1e-5
)

// cameraControllerImpl implements the CameraController interface.
type cameraControllerImpl struct {
	mu     *sync.Mutex
	camera Camera

	rotationSensitivity float32
	rotationSmoothing   float32
	maxPitch            float32
	zoomSensitivity     float32
	zoomSmoothing       float32

	rotating    bool
	pendingRot  [2]float32
	pendingZoom float32
	desiredDir  common.Vec3
	desiredDist float32
	currentDir  common.Vec3
	currentDist float32
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a smoothed orbit controller for camera, initialized from its current position and pivot.
//
// Parameters:
//   - camera: the camera to drive
//   - options: functional options to configure sensitivity and smoothing
//
// Returns:
//   - CameraController: the controller
func NewCameraController(camera Camera, options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:                  &sync.Mutex{},
		camera:              camera,
		rotationSensitivity: 2,
		rotationSmoothing:   10,
		maxPitch:            common.DegToRad(80),
		zoomSensitivity:     2,
		zoomSmoothing:       4,
	}
	for _, option := range options {
		option(cc)
	}
	cc.sync()
	return cc
}

func (cc *cameraControllerImpl) BeginRotate() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotating = true
}

func (cc *cameraControllerImpl) Rotate(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if !cc.rotating {
		return
	}
	cc.pendingRot[0] += dx
	cc.pendingRot[1] += dy
}

func (cc *cameraControllerImpl) EndRotate() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.rotating = false
}

func (cc *cameraControllerImpl) Rotating() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.rotating
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingZoom += delta
}

func (cc *cameraControllerImpl) Pan(right, up float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	offset := cc.camera.Right().Scale(right).Add(cc.camera.Up().Scale(up))
	pivot := cc.camera.Pivot().Add(offset)
	position := cc.camera.Position().Add(offset)
	cc.camera.SetPosition(position)
	cc.camera.LookAt(pivot)
}

func (cc *cameraControllerImpl) Sync() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.sync()
}

func (cc *cameraControllerImpl) Settled() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.pendingRot == [2]float32{} && cc.pendingZoom == 0 &&
		cc.currentDist == cc.desiredDist && cc.currentDir == cc.desiredDir
}

func (cc *cameraControllerImpl) sync() {
	offset := cc.camera.Position().Sub(cc.camera.Pivot())
	cc.currentDist = offset.Length()
	cc.currentDir = offset.Normalize()
	cc.desiredDist = cc.currentDist
	cc.desiredDir = cc.currentDir
	cc.pendingRot = [2]float32{}
	cc.pendingZoom = 0
}

func (cc *cameraControllerImpl) Update(dt float32, viewportWidth, viewportHeight float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.pendingRot != [2]float32{} && viewportWidth > 0 && viewportHeight > 0 {
		angleX := -cc.pendingRot[0] * 2 * math32.Pi / viewportWidth * cc.rotationSensitivity
		angleY := -cc.pendingRot[1] * math32.Pi / viewportHeight * cc.rotationSensitivity

		dir := cc.desiredDir.RotateAroundAxis(cc.camera.Up(), angleX)
		dir = dir.RotateAroundAxis(cc.camera.Right(), angleY).Normalize()
		if pitch := dir.Pitch(); math32.Abs(pitch) > cc.maxPitch {
			limit := cc.maxPitch
			if pitch < 0 {
				limit = -limit
			}
			dir = common.DirectionFromAngles(limit, dir.Yaw())
		}
		cc.desiredDir = dir
	}
	cc.pendingRot = [2]float32{}

	if cc.pendingZoom != 0 {
		near, far := cc.camera.Near(), cc.camera.Far()
		dist := cc.desiredDist - cc.pendingZoom*cc.zoomSensitivity*cc.desiredDist*0.1
		cc.desiredDist = common.Clamp(dist, near+0.1, far-0.1)
		cc.pendingZoom = 0
	}

	zoomT := 1 - math32.Exp(-cc.zoomSmoothing*dt)
	rotT := 1 - math32.Exp(-cc.rotationSmoothing*dt)

	if math32.Abs(cc.desiredDist-cc.currentDist) < snapDistance {
		cc.currentDist = cc.desiredDist
	} else {
		cc.currentDist = common.Lerp(cc.currentDist, cc.desiredDist, zoomT)
	}
	if cc.currentDir.ApproxEqual(cc.desiredDir, snapDirection) {
		cc.currentDir = cc.desiredDir
	} else {
		cc.currentDir = cc.currentDir.Slerp(cc.desiredDir, rotT)
	}

	position := cc.camera.Pivot().Add(cc.currentDir.Scale(cc.currentDist))
	if position != cc.camera.Position() {
		cc.camera.SetPosition(position)
	}
}
