package model

import (
	"fmt"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// model is the implementation of the Model interface.
type model struct {
	device       gpu.Device
	label        string
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	vertexCount  uint32
	indexCount   uint32
	indexed      bool
}

// Model defines the interface for GPU-resident geometry.
// A Model owns one vertex buffer holding every mesh back to back and, when its meshes are indexed,
// one Uint32 index buffer. Models are immutable once created.
type Model interface {
	// Label retrieves the debug label of the model.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Indexed reports whether the model draws through an index buffer.
	//
	// Returns:
	//   - bool: true if every mesh carried indices
	Indexed() bool

	// VertexCount returns the total number of vertices across all meshes.
	//
	// Returns:
	//   - uint32: the vertex count
	VertexCount() uint32

	// IndexCount returns the total number of indices across all meshes, zero when unindexed.
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexBuffer retrieves the GPU vertex buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer (VERTEX | COPY_DST)
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer retrieves the GPU index buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer, nil when unindexed
	IndexBuffer() *wgpu.Buffer

	// Draw binds the model buffers on the pass and issues its draw call.
	//
	// Parameters:
	//   - pass: the render pass being recorded
	Draw(pass gpu.RenderPass)

	// Release releases the GPU buffers.
	Release()
}

var _ Model = &model{}

// NewModel uploads meshes into a single vertex buffer and, if they are indexed, a single index buffer.
// Index values are concatenated as given and are not offset per mesh.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label prefix for the buffers
//   - meshes: the meshes to upload; either all indexed or all unindexed
//
// Returns:
//   - Model: the created model
//   - error: common.ErrMalformed for zero meshes or mixed indexing, or an allocation error
func NewModel(device gpu.Device, label string, meshes []Mesh) (Model, error) {
	if len(meshes) == 0 {
		return nil, fmt.Errorf("%w: model %q has no meshes", common.ErrMalformed, label)
	}
	indexed := meshes[0].Indexed()
	var vertices []Vertex
	var indices []uint32
	for i, m := range meshes {
		if m.Indexed() != indexed {
			return nil, fmt.Errorf("%w: model %q mesh %d: mixed indexing", common.ErrMalformed, label, i)
		}
		vertices = append(vertices, m.Vertices...)
		indices = append(indices, m.Indices...)
	}
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: model %q has no vertices", common.ErrMalformed, label)
	}
	if indexed && len(meshes) > 1 {
		logger.Warnf("model %q: %d indexed meshes share one index buffer without rebasing", label, len(meshes))
	}

	m := &model{
		device:      device,
		label:       label,
		vertexCount: uint32(len(vertices)),
		indexed:     indexed,
	}

	vb, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " Vertex Buffer",
		Contents: MarshalVertices(vertices),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex buffer for model %q: %w", label, err)
	}
	m.vertexBuffer = vb

	if indexed {
		ib, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
			Label:    label + " Index Buffer",
			Contents: common.Uint32sToBytes(indices),
			Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("failed to create index buffer for model %q: %w", label, err)
		}
		m.indexBuffer = ib
		m.indexCount = uint32(len(indices))
	}

	return m, nil
}

func (m *model) Label() string {
	return m.label
}

func (m *model) Indexed() bool {
	return m.indexed
}

func (m *model) VertexCount() uint32 {
	return m.vertexCount
}

func (m *model) IndexCount() uint32 {
	return m.indexCount
}

func (m *model) VertexBuffer() *wgpu.Buffer {
	return m.vertexBuffer
}

func (m *model) IndexBuffer() *wgpu.Buffer {
	return m.indexBuffer
}

func (m *model) Draw(pass gpu.RenderPass) {
	pass.SetVertexBuffer(0, m.vertexBuffer)
	if m.indexed {
		pass.SetIndexBuffer(m.indexBuffer, wgpu.IndexFormatUint32)
		pass.DrawIndexed(m.indexCount, 1, 0, 0, 0)
		return
	}
	pass.Draw(m.vertexCount, 1, 0, 0)
}

func (m *model) Release() {
	if m.indexBuffer != nil {
		m.device.Release(m.indexBuffer)
		m.indexBuffer = nil
	}
	if m.vertexBuffer != nil {
		m.device.Release(m.vertexBuffer)
		m.vertexBuffer = nil
	}
}
