package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	for i := range m {
		m[i] = float32(i + 1)
	}

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestPerspectiveMapsClipPlanesToWebGPUDepth(t *testing.T) {
	var proj [16]float32
	Perspective(proj[:], DegToRad(60), 1.5, 0.1, 100)

	near, _ := TransformPoint(proj[:], Vec3{0, 0, -0.1})
	far, _ := TransformPoint(proj[:], Vec3{0, 0, -100})

	assert.InDelta(t, 0, near[2], 1e-5)
	assert.InDelta(t, 1, far[2], 1e-4)
}

func TestLookAtPlacesTargetOnNegativeZ(t *testing.T) {
	var view [16]float32
	LookAt(view[:], Vec3{0, 0, 5}, Vec3{}, UnitY)

	p, _ := TransformPoint(view[:], Vec3{})
	assert.True(t, p.ApproxEqual(Vec3{0, 0, -5}, 1e-5), "got %v", p)
}

func TestVec3Basics(t *testing.T) {
	assert.Equal(t, UnitZ, UnitX.Cross(UnitY))
	assert.Equal(t, float32(5), Vec3{3, 4, 0}.Length())
	assert.True(t, Vec3{3, 4, 0}.Normalize().ApproxEqual(Vec3{0.6, 0.8, 0}, 1e-6))
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}

func TestRotateAroundAxis(t *testing.T) {
	r := UnitX.RotateAroundAxis(UnitY, math32.Pi/2)
	assert.True(t, r.ApproxEqual(Vec3{0, 0, -1}, 1e-6), "got %v", r)
}

func TestSlerpStaysOnUnitSphere(t *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 0, 3}
	for _, step := range []float32{0, 0.25, 0.5, 0.75, 1} {
		s := a.Slerp(b, step)
		assert.InDelta(t, 1, s.Length(), 1e-5)
	}
	assert.True(t, a.Slerp(b, 1).ApproxEqual(UnitZ, 1e-5))
}

func TestPitchYawRoundTrip(t *testing.T) {
	dir := Vec3{1, 1, 1}.Normalize()
	back := DirectionFromAngles(dir.Pitch(), dir.Yaw())
	assert.True(t, dir.ApproxEqual(back, 1e-5), "got %v want %v", back, dir)
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("create render object: %w", NewNotFound("Material", "basic"))

	require.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Material not found: basic", nf.Error())
	assert.False(t, IsFatal(err))
	assert.True(t, IsFatal(fmt.Errorf("frame: %w", ErrOutOfMemory)))
}

func TestSamplerConfigDefaults(t *testing.T) {
	desc := SamplerConfig{}.Descriptor("nearest")
	assert.Equal(t, "nearest", desc.Label)
	assert.Equal(t, float32(32), desc.LodMaxClamp)
	assert.Equal(t, uint16(1), desc.MaxAnisotropy)
}

func TestPutFloat32s(t *testing.T) {
	buf := make([]byte, 8)
	off := PutFloat32s(buf, 0, 1, 2)
	assert.Equal(t, 8, off)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f, 0, 0, 0, 0x40}, buf)
}
