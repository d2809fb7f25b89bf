package common

import (
	"github.com/chewxy/math32"
)

// Vec3 is a three component float32 vector used for positions and directions in world space.
type Vec3 [3]float32

// Common axis vectors.
var (
	UnitX = Vec3{1, 0, 0}
	UnitY = Vec3{0, 1, 0}
	UnitZ = Vec3{0, 0, 1}
)

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

func (v Vec3) Negate() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

func (v Vec3) Dot(o Vec3) float32 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// Cross returns the right-handed cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

func (v Vec3) Length() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Normalize returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

func (v Vec3) Distance(o Vec3) float32 {
	return v.Sub(o).Length()
}

// Lerp linearly interpolates from v towards o by t.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{Lerp(v[0], o[0], t), Lerp(v[1], o[1], t), Lerp(v[2], o[2], t)}
}

// ApproxEqual reports whether every component of v is within eps of o.
func (v Vec3) ApproxEqual(o Vec3, eps float32) bool {
	for i := range v {
		if math32.Abs(v[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// RotateAroundAxis rotates v by angle radians around the given axis using Rodrigues' formula.
// The axis does not need to be normalized.
//
// Parameters:
//   - axis: the rotation axis
//   - angle: the rotation angle in radians, counter-clockwise looking down the axis
//
// Returns:
//   - Vec3: the rotated vector
func (v Vec3) RotateAroundAxis(axis Vec3, angle float32) Vec3 {
	k := axis.Normalize()
	s, c := math32.Sin(angle), math32.Cos(angle)
	return v.Scale(c).
		Add(k.Cross(v).Scale(s)).
		Add(k.Scale(k.Dot(v) * (1 - c)))
}

// Slerp spherically interpolates between the directions of v and o by t.
// Both inputs are normalized first, so the result is a unit vector.
func (v Vec3) Slerp(o Vec3, t float32) Vec3 {
	a := v.Normalize()
	b := o.Normalize()

	theta := math32.Acos(Clamp(a.Dot(b), -1, 1))
	if math32.Abs(theta) < 1e-6 {
		return a.Lerp(b, t).Normalize()
	}

	sinTheta := math32.Sin(theta)
	return a.Scale(math32.Sin((1-t)*theta) / sinTheta).
		Add(b.Scale(math32.Sin(t*theta) / sinTheta))
}

// Pitch returns the elevation angle of the normalized direction v in radians.
func (v Vec3) Pitch() float32 {
	return math32.Asin(Clamp(v[1], -1, 1))
}

// Yaw returns the heading angle of the direction v in the XZ plane in radians.
func (v Vec3) Yaw() float32 {
	return math32.Atan2(v[2], v[0])
}

// DirectionFromAngles builds a unit direction from pitch and yaw, the inverse of Pitch and Yaw.
func DirectionFromAngles(pitch, yaw float32) Vec3 {
	cp := math32.Cos(pitch)
	return Vec3{math32.Cos(yaw) * cp, math32.Sin(pitch), math32.Sin(yaw) * cp}
}
