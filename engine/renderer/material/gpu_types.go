package material

import (
	"encoding/binary"

	"github.com/cogentcore/webgpu/wgpu"
)

// GPUDrawConstants is the per-draw uniform bound at group 2 of render materials.
// Matches the WGSL DrawConstants struct in basic.wgsl. Size: 16 bytes (two u32 flags plus padding).
type GPUDrawConstants struct {
	FlipV        uint32 // offset 0: non-zero flips the V texture coordinate
	GammaCorrect uint32 // offset 4: non-zero converts linear output to sRGB in the shader
	_            [2]uint32
}

// Size returns the size of the GPUDrawConstants struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUDrawConstants) Size() int {
	return 16
}

// Marshal serializes the GPUDrawConstants struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUDrawConstants) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], g.FlipV)
	binary.LittleEndian.PutUint32(buf[4:8], g.GammaCorrect)
	return buf
}

// DrawConstantsLayoutEntries returns the layout entries of the draw-constants group: a 16-byte
// uniform buffer at binding 0, visible to fragment shaders.
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the layout entries
func DrawConstantsLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageFragment,
		Buffer: wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: 16,
		},
	}}
}
