package camera

import (
	"github.com/Kuowrk/fragma/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// UniformSize is the size of GPUCameraUniform in bytes.
const UniformSize = 80

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct in basic.wgsl. Size: 80 bytes (WGSL uniform aligned).
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset  0: combined view-projection matrix (mat4x4<f32>)
	Near     float32     // offset 64: near clip plane distance
	Far      float32     // offset 68: far clip plane distance
	_        [2]float32  // offset 72: padding to 80 bytes
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (80)
func (g *GPUCameraUniform) Size() int {
	return UniformSize
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, UniformSize)
	off := common.PutFloat32s(buf, 0, g.ViewProj[:]...)
	common.PutFloat32s(buf, off, g.Near, g.Far)
	return buf
}

// LayoutEntries returns the layout entries of the camera group: the uniform buffer at binding 0,
// visible to vertex and fragment shaders.
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the layout entries
func LayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: UniformSize,
		},
	}}
}
