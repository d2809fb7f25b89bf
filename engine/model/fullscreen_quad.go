package model

import (
	"fmt"
	"sync"

	"github.com/Kuowrk/fragma/engine/gpu"
)

// fullscreenQuad is the implementation of the FullscreenQuad interface.
type fullscreenQuad struct {
	mu            *sync.Mutex
	device        gpu.Device
	label         string
	model         Model
	source        []Vertex
	current       []Vertex
	contentWidth  uint32
	contentHeight uint32
	scale         [2]float32
}

// FullscreenQuad is an unindexed quad model whose X/Y extent is rescaled so content of a given aspect
// ratio fits the viewport without stretching.
type FullscreenQuad interface {
	// Model retrieves the drawable model backing the quad.
	//
	// Returns:
	//   - Model: the unindexed quad model
	Model() Model

	// SetContentSize sets the size of the content shown on the quad. Applied on the next ResizeToViewport.
	//
	// Parameters:
	//   - width: content width in pixels
	//   - height: content height in pixels
	SetContentSize(width, height uint32)

	// ContentSize retrieves the content size.
	//
	// Returns:
	//   - uint32: content width
	//   - uint32: content height
	ContentSize() (uint32, uint32)

	// ResizeToViewport rescales the source vertices for the viewport and rewrites the existing vertex
	// buffer. A zero viewport dimension is ignored.
	//
	// Parameters:
	//   - viewportWidth: viewport width in pixels
	//   - viewportHeight: viewport height in pixels
	//
	// Returns:
	//   - error: error if the upload fails
	ResizeToViewport(viewportWidth, viewportHeight uint32) error

	// Scale returns the X/Y scale applied by the last resize.
	//
	// Returns:
	//   - [2]float32: the scale, {1, 1} before the first resize
	Scale() [2]float32

	// Vertices returns a copy of the vertices last uploaded.
	//
	// Returns:
	//   - []Vertex: the uploaded vertices
	Vertices() []Vertex

	// Release releases the backing model.
	Release()
}

var _ FullscreenQuad = &fullscreenQuad{}

// NewFullscreenQuad creates the quad model from the unit quad with content size 1x1.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label prefix
//   - options: builder options
//
// Returns:
//   - FullscreenQuad: the created quad
//   - error: error if the model cannot be created
func NewFullscreenQuad(device gpu.Device, label string, options ...FullscreenQuadBuilderOption) (FullscreenQuad, error) {
	q := &fullscreenQuad{
		mu:            &sync.Mutex{},
		device:        device,
		label:         label,
		source:        QuadMeshes()[0].Vertices,
		contentWidth:  1,
		contentHeight: 1,
		scale:         [2]float32{1, 1},
	}
	for _, opt := range options {
		opt(q)
	}

	mesh, err := NewMesh(q.source, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid fullscreen quad source: %w", err)
	}
	q.source = mesh.Vertices
	q.current = append([]Vertex(nil), mesh.Vertices...)

	m, err := NewModel(device, label, []Mesh{mesh})
	if err != nil {
		return nil, err
	}
	q.model = m
	return q, nil
}

// ScaleFor computes the X/Y scale that letterboxes content of size cw x ch inside a vw x vh viewport.
// The axis along which the viewport is relatively wider is shrunk; the other stays at 1, so no component
// ever exceeds 1. Zero sizes yield {1, 1}.
//
// Parameters:
//   - cw, ch: content size
//   - vw, vh: viewport size
//
// Returns:
//   - float32: X scale
//   - float32: Y scale
func ScaleFor(cw, ch, vw, vh uint32) (float32, float32) {
	if cw == 0 || ch == 0 || vw == 0 || vh == 0 {
		return 1, 1
	}
	contentAspect := float32(cw) / float32(ch)
	viewportAspect := float32(vw) / float32(vh)
	if viewportAspect >= contentAspect {
		return contentAspect / viewportAspect, 1
	}
	return 1, viewportAspect / contentAspect
}

func (q *fullscreenQuad) Model() Model {
	return q.model
}

func (q *fullscreenQuad) SetContentSize(width, height uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.contentWidth = width
	q.contentHeight = height
}

func (q *fullscreenQuad) ContentSize() (uint32, uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.contentWidth, q.contentHeight
}

func (q *fullscreenQuad) ResizeToViewport(viewportWidth, viewportHeight uint32) error {
	if viewportWidth == 0 || viewportHeight == 0 {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	sx, sy := ScaleFor(q.contentWidth, q.contentHeight, viewportWidth, viewportHeight)
	scaled := make([]Vertex, len(q.source))
	for i, v := range q.source {
		v.Position[0] *= sx
		v.Position[1] *= sy
		scaled[i] = v
	}

	if err := gpu.UploadStaged(q.device, q.model.VertexBuffer(), 0, MarshalVertices(scaled), q.label); err != nil {
		return fmt.Errorf("failed to resize %q: %w", q.label, err)
	}
	q.current = scaled
	q.scale = [2]float32{sx, sy}
	return nil
}

func (q *fullscreenQuad) Scale() [2]float32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.scale
}

func (q *fullscreenQuad) Vertices() []Vertex {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Vertex(nil), q.current...)
}

func (q *fullscreenQuad) Release() {
	if q.model != nil {
		q.model.Release()
	}
}
