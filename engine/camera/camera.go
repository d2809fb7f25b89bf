package camera

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/renderer/bind_group_provider"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

// cameraCount is an atomic counter used to generate unique bind group provider names for each camera instance.
var cameraCount atomic.Uint64

type cameraImpl struct {
	mu *sync.Mutex

	position common.Vec3
	pivot    common.Vec3
	forward  common.Vec3
	up       common.Vec3
	right    common.Vec3
	worldUp  common.Vec3

	fov  float32
	near float32
	far  float32

	// dirty is set by every mutation and cleared only by a successful BindGroup upload
	dirty          bool
	uploadedAspect float32

	device            gpu.Device
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Camera defines the interface for a perspective orbit camera.
// The camera keeps an orthonormal basis looking at its pivot and caches its uniform on the GPU:
// mutations mark it dirty, and BindGroup re-uploads only when dirty or when the aspect ratio changed.
type Camera interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - common.Vec3: the position in world space
	Position() common.Vec3

	// Pivot returns the point the camera looks at and orbits around.
	//
	// Returns:
	//   - common.Vec3: the pivot in world space
	Pivot() common.Vec3

	// Forward returns the unit view direction.
	//
	// Returns:
	//   - common.Vec3: the forward vector
	Forward() common.Vec3

	// Up returns the unit up vector of the camera basis.
	//
	// Returns:
	//   - common.Vec3: the up vector
	Up() common.Vec3

	// Right returns the unit right vector of the camera basis.
	//
	// Returns:
	//   - common.Vec3: the right vector
	Right() common.Vec3

	// FOV returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	FOV() float32

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

	// Dirty reports whether the GPU uniform is stale.
	//
	// Returns:
	//   - bool: true if the next BindGroup call uploads
	Dirty() bool

	// LookAt points the camera at target, which becomes the new pivot. Looking at the current
	// position is a no-op.
	//
	// Parameters:
	//   - target: the point to look at
	LookAt(target common.Vec3)

	// SetPosition moves the eye and re-aims it at the pivot.
	//
	// Parameters:
	//   - position: the new eye position
	SetPosition(position common.Vec3)

	// SetFOV sets the vertical field of view.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFOV(fov float32)

	// SetClipPlanes sets the near and far plane distances.
	//
	// Parameters:
	//   - near: near plane distance (> 0)
	//   - far: far plane distance (> near)
	SetClipPlanes(near, far float32)

	// MouseZoom moves the eye along the view direction. The move is rejected if it would bring the
	// eye within the near plane distance of the pivot.
	//
	// Parameters:
	//   - delta: distance to move, positive towards the pivot
	MouseZoom(delta float32)

	// MouseRotate orbits the eye around the pivot from a mouse drag: a full viewport width turns a
	// full circle around the up vector and a full viewport height turns half a circle around the right vector.
	//
	// Parameters:
	//   - prev: previous cursor position in pixels
	//   - curr: current cursor position in pixels
	//   - viewportWidth: viewport width in pixels
	//   - viewportHeight: viewport height in pixels
	MouseRotate(prev, curr [2]float32, viewportWidth, viewportHeight float32)

	// ViewProjection computes Perspective(fov, aspect, near, far) * LookAt(position, pivot, up).
	//
	// Parameters:
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - [16]float32: the column-major view-projection matrix
	ViewProjection(aspect float32) [16]float32

	// Uniform builds the uniform struct for an aspect ratio without uploading it.
	//
	// Parameters:
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - GPUCameraUniform: the uniform contents
	Uniform(aspect float32) GPUCameraUniform

	// BindGroup returns the camera bind group, uploading the uniform first if the camera is dirty or
	// the aspect ratio differs from the last upload. A failed upload leaves the camera dirty.
	//
	// Parameters:
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group for group 1 of render materials
	//   - error: error if the upload fails
	BindGroup(aspect float32) (*wgpu.BindGroup, error)

	// Release releases the uniform buffer and bind group.
	Release()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 5) looking at the origin with a 60 degree field of view,
// and allocates its uniform buffer and bind group against layout.
//
// Parameters:
//   - device: the device to allocate on
//   - layout: the camera bind group layout, created from LayoutEntries
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera, initially dirty
//   - error: error if the GPU resources cannot be created
func NewCamera(device gpu.Device, layout *wgpu.BindGroupLayout, options ...CameraBuilderOption) (Camera, error) {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: common.Vec3{0, 0, 5},
		pivot:    common.Vec3{},
		forward:  common.UnitZ.Negate(),
		up:       common.UnitY,
		right:    common.UnitX,
		worldUp:  common.UnitY,
		fov:      common.DegToRad(60),
		near:     0.1,
		far:      100,
		dirty:    true,
		device:   device,
	}
	for _, option := range options {
		option(c)
	}
	c.lookAt(c.pivot)
	c.dirty = true

	c.bindGroupProvider = bind_group_provider.NewBindGroupProvider(device,
		"Camera "+strconv.FormatUint(cameraCount.Add(1), 10),
		bind_group_provider.WithBindGroupLayout(layout),
		bind_group_provider.WithBufferSize(0, UniformSize),
	)
	if err := c.bindGroupProvider.Init(LayoutEntries()); err != nil {
		c.bindGroupProvider.Release()
		return nil, fmt.Errorf("failed to create camera resources: %w", err)
	}
	return c, nil
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Pivot() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pivot
}

func (c *cameraImpl) Forward() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.forward
}

func (c *cameraImpl) Up() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Right() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.right
}

func (c *cameraImpl) FOV() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
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

func (c *cameraImpl) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *cameraImpl) LookAt(target common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookAt(target)
}

func (c *cameraImpl) SetPosition(position common.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPosition(position)
}

func (c *cameraImpl) SetFOV(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
	c.dirty = true
}

func (c *cameraImpl) SetClipPlanes(near, far float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.near = near
	c.far = far
	c.dirty = true
}

func (c *cameraImpl) MouseZoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.position.Add(c.forward.Scale(delta))
	if next.Distance(c.pivot) > c.near {
		c.setPosition(next)
	}
}

func (c *cameraImpl) MouseRotate(prev, curr [2]float32, viewportWidth, viewportHeight float32) {
	if viewportWidth <= 0 || viewportHeight <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	angleX := (prev[0] - curr[0]) * 2 * math32.Pi / viewportWidth
	angleY := (prev[1] - curr[1]) * math32.Pi / viewportHeight

	offset := c.position.Sub(c.pivot)
	offset = offset.RotateAroundAxis(c.up, angleX)
	offset = offset.RotateAroundAxis(c.right, angleY)
	c.setPosition(c.pivot.Add(offset))
}

func (c *cameraImpl) ViewProjection(aspect float32) [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection(aspect)
}

func (c *cameraImpl) Uniform(aspect float32) GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.uniform(aspect)
}

func (c *cameraImpl) BindGroup(aspect float32) (*wgpu.BindGroup, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty && aspect == c.uploadedAspect {
		return c.bindGroupProvider.BindGroup(), nil
	}

	u := c.uniform(aspect)
	write := bind_group_provider.BufferWrite{
		Provider: c.bindGroupProvider,
		Binding:  0,
		Offset:   0,
		Data:     u.Marshal(),
	}
	if err := write.Stage(c.device); err != nil {
		return nil, fmt.Errorf("failed to upload camera uniform: %w", err)
	}
	c.dirty = false
	c.uploadedAspect = aspect
	return c.bindGroupProvider.BindGroup(), nil
}

func (c *cameraImpl) Release() {
	if c.bindGroupProvider != nil {
		c.bindGroupProvider.Release()
	}
}

// lookAt rebuilds the basis towards target. Caller holds the lock.
func (c *cameraImpl) lookAt(target common.Vec3) {
	if target == c.position {
		return
	}
	c.pivot = target
	c.forward = target.Sub(c.position).Normalize()
	// keep the previous right vector when looking straight along worldUp
	if right := c.forward.Cross(c.worldUp); right.Length() > 1e-6 {
		c.right = right.Normalize()
	}
	c.up = c.right.Cross(c.forward).Normalize()
	c.dirty = true
}

// setPosition moves the eye and re-aims at the pivot. Caller holds the lock.
func (c *cameraImpl) setPosition(position common.Vec3) {
	c.position = position
	c.lookAt(c.pivot)
	c.dirty = true
}

func (c *cameraImpl) viewProjection(aspect float32) [16]float32 {
	var proj, view, out [16]float32
	common.Perspective(proj[:], c.fov, aspect, c.near, c.far)
	common.LookAt(view[:], c.position, c.position.Add(c.forward), c.up)
	common.Mul4(out[:], proj[:], view[:])
	return out
}

func (c *cameraImpl) uniform(aspect float32) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj: c.viewProjection(aspect),
		Near:     c.near,
		Far:      c.far,
	}
}
