package model

import (
	"fmt"

	"github.com/Kuowrk/fragma/common"
)

// Mesh is an immutable vertex list with an optional index list.
type Mesh struct {
	// Vertices are the mesh vertices. Never empty.
	Vertices []Vertex
	// Indices index into Vertices. Nil for unindexed meshes.
	Indices []uint32
}

// NewMesh validates and copies vertex and index data into a Mesh.
//
// Parameters:
//   - vertices: the vertex list (must not be empty)
//   - indices: the index list, or nil for an unindexed mesh
//
// Returns:
//   - Mesh: the mesh holding copies of the inputs
//   - error: common.ErrMalformed if the vertex list is empty or an index is out of range
func NewMesh(vertices []Vertex, indices []uint32) (Mesh, error) {
	if len(vertices) == 0 {
		return Mesh{}, fmt.Errorf("%w: mesh has no vertices", common.ErrMalformed)
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return Mesh{}, fmt.Errorf("%w: index %d at position %d exceeds vertex count %d", common.ErrMalformed, idx, i, len(vertices))
		}
	}

	m := Mesh{Vertices: make([]Vertex, len(vertices))}
	copy(m.Vertices, vertices)
	if indices != nil {
		m.Indices = make([]uint32, len(indices))
		copy(m.Indices, indices)
	}
	return m, nil
}

// Indexed reports whether the mesh carries an index list.
func (m Mesh) Indexed() bool {
	return m.Indices != nil
}

// TriangleMeshes returns the single indexed mesh of the default RGB triangle.
//
// Returns:
//   - []Mesh: one mesh with three vertices and indices 0, 1, 2
func TriangleMeshes() []Mesh {
	n := [3]float32{0, 0, 1}
	return []Mesh{{
		Vertices: []Vertex{
			{Position: [3]float32{-0.5, -0.5, 0}, Normal: n, Color: [3]float32{1, 0, 0}, TexCoord: [2]float32{0, 0}},
			{Position: [3]float32{0.5, -0.5, 0}, Normal: n, Color: [3]float32{0, 1, 0}, TexCoord: [2]float32{0.5, 1}},
			{Position: [3]float32{0, 0.5, 0}, Normal: n, Color: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}},
		},
		Indices: []uint32{0, 1, 2},
	}}
}

// QuadMeshes returns the single unindexed mesh of the unit quad spanning [-1, 1] on X and Y.
//
// Returns:
//   - []Mesh: one mesh with two triangles (six vertices)
func QuadMeshes() []Mesh {
	n := [3]float32{0, 1, 0}
	return []Mesh{{
		Vertices: []Vertex{
			{Position: [3]float32{1, 1, 0}, Normal: n, Color: [3]float32{1, 0, 0}, TexCoord: [2]float32{0, 0}},
			{Position: [3]float32{-1, -1, 0}, Normal: n, Color: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{-1, 1, 0}, Normal: n, Color: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
			{Position: [3]float32{-1, -1, 0}, Normal: n, Color: [3]float32{0, 1, 0}, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{1, 1, 0}, Normal: n, Color: [3]float32{1, 0, 1}, TexCoord: [2]float32{1, 1}},
			{Position: [3]float32{1, -1, 0}, Normal: n, Color: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
		},
	}}
}
