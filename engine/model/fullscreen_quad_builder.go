package model

// FullscreenQuadBuilderOption is a functional option for configuring a FullscreenQuad via NewFullscreenQuad.
type FullscreenQuadBuilderOption func(*fullscreenQuad)

// WithContentSize is an option builder that sets the initial content size of the quad.
//
// Parameters:
//   - width: content width in pixels
//   - height: content height in pixels
//
// Returns:
//   - FullscreenQuadBuilderOption: a function that applies the content size option to a quad
func WithContentSize(width, height uint32) FullscreenQuadBuilderOption {
	return func(q *fullscreenQuad) {
		q.contentWidth = width
		q.contentHeight = height
	}
}

// WithSourceVertices is an option builder that replaces the unit quad with custom source vertices.
// The vertices are drawn unindexed and scaled on X/Y by ResizeToViewport.
//
// Parameters:
//   - vertices: the source vertices
//
// Returns:
//   - FullscreenQuadBuilderOption: a function that applies the source option to a quad
func WithSourceVertices(vertices []Vertex) FullscreenQuadBuilderOption {
	return func(q *fullscreenQuad) {
		q.source = vertices
	}
}
