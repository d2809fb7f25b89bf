package camera_test

import (
	"testing"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/camera"
	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
)

func settle(cc camera.CameraController, frames int) {
	for range frames {
		cc.Update(1.0/60.0, 800, 600)
	}
}

func TestControllerZoomConverges(t *testing.T) {
	c := newCamera(t, gputest.NewDevice())
	cc := camera.NewCameraController(c)

	assert.True(t, cc.Settled())
	cc.Zoom(1)
	assert.False(t, cc.Settled())
	cc.Update(1.0/60.0, 800, 600)
	assert.False(t, cc.Settled())
	first := c.Position().Distance(c.Pivot())
	assert.Less(t, first, float32(5))
	assert.Greater(t, first, float32(4))

	settle(cc, 600)
	assert.InDelta(t, 4, c.Position().Distance(c.Pivot()), 1e-3)
	assert.True(t, cc.Settled())
}

func TestControllerZoomClampedToClipPlanes(t *testing.T) {
	c := newCamera(t, gputest.NewDevice(), camera.WithClipPlanes(1, 10))
	cc := camera.NewCameraController(c)

	cc.Zoom(100)
	settle(cc, 1200)
	assert.InDelta(t, 1.1, c.Position().Distance(c.Pivot()), 1e-3)

	cc.Zoom(-1000)
	settle(cc, 1200)
	assert.InDelta(t, 9.9, c.Position().Distance(c.Pivot()), 1e-3)
}

func TestControllerRotateRequiresDrag(t *testing.T) {
	c := newCamera(t, gputest.NewDevice())
	cc := camera.NewCameraController(c)

	cc.Rotate(100, 0)
	settle(cc, 10)
	assert.Equal(t, common.Vec3{0, 0, 5}, c.Position())

	cc.BeginRotate()
	assert.True(t, cc.Rotating())
	cc.Rotate(100, 0)
	cc.EndRotate()
	assert.False(t, cc.Rotating())
	settle(cc, 600)

	assert.NotEqual(t, common.Vec3{0, 0, 5}, c.Position())
	assert.InDelta(t, 5, c.Position().Distance(c.Pivot()), 1e-3)
	assert.InDelta(t, 0, c.Position()[1], 1e-3)
}

func TestControllerPitchClamped(t *testing.T) {
	c := newCamera(t, gputest.NewDevice())
	cc := camera.NewCameraController(c, camera.WithMaxPitch(45))

	cc.BeginRotate()
	cc.Rotate(0, 1000)
	cc.EndRotate()
	settle(cc, 600)

	dir := c.Position().Sub(c.Pivot()).Normalize()
	assert.InDelta(t, common.DegToRad(45), absf(dir.Pitch()), 1e-3)
}

func TestControllerSyncDiscardsInput(t *testing.T) {
	c := newCamera(t, gputest.NewDevice())
	cc := camera.NewCameraController(c)

	cc.Zoom(3)
	c.SetPosition(common.Vec3{0, 0, 8})
	cc.Sync()
	settle(cc, 60)
	assert.InDelta(t, 8, c.Position().Distance(c.Pivot()), 1e-4)
}

func TestControllerPanMovesPivot(t *testing.T) {
	c := newCamera(t, gputest.NewDevice())
	cc := camera.NewCameraController(c)

	cc.Pan(1, 2)
	assertVecNear(t, common.Vec3{1, 2, 0}, c.Pivot())
	assertVecNear(t, common.Vec3{1, 2, 5}, c.Position())
	assertVecNear(t, common.Vec3{0, 0, -1}, c.Forward())
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
