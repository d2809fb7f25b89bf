package model

import (
	"github.com/Kuowrk/fragma/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// VertexSize is the packed size of a Vertex in bytes.
const VertexSize = 44

// Vertex is the GPU representation of a single mesh vertex.
// Layout: position (offset 0), normal (12), color (24), texcoord (36). Size: 44 bytes, tightly packed.
type Vertex struct {
	Position [3]float32 // location 0
	Normal   [3]float32 // location 1
	Color    [3]float32 // location 2
	TexCoord [2]float32 // location 3
}

// Size returns the size of the Vertex in bytes.
//
// Returns:
//   - int: the packed size in bytes
func (v *Vertex) Size() int {
	return VertexSize
}

// Marshal serializes the Vertex into a little-endian byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 44-byte buffer ready for GPU upload
func (v *Vertex) Marshal() []byte {
	buf := make([]byte, VertexSize)
	v.put(buf)
	return buf
}

func (v *Vertex) put(dst []byte) {
	off := common.PutFloat32s(dst, 0, v.Position[:]...)
	off = common.PutFloat32s(dst, off, v.Normal[:]...)
	off = common.PutFloat32s(dst, off, v.Color[:]...)
	common.PutFloat32s(dst, off, v.TexCoord[:]...)
}

// MarshalVertices packs a vertex list back to back.
//
// Parameters:
//   - vertices: the vertices to pack
//
// Returns:
//   - []byte: len(vertices)*44 bytes
func MarshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i := range vertices {
		vertices[i].put(buf[i*VertexSize:])
	}
	return buf
}

// VertexBufferLayout describes the Vertex layout for render pipeline creation.
//
// Returns:
//   - wgpu.VertexBufferLayout: stride 44, per-vertex step, attributes at locations 0..3
func VertexBufferLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: VertexSize,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x3, Offset: 24, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 36, ShaderLocation: 3},
		},
	}
}
