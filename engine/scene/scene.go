// Package scene holds the ordered render and compute objects drawn each frame.
// Objects reference registry resources by name, and every name is validated at insertion time,
// so a Scene never holds a dangling reference.
package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/Kuowrk/fragma/engine/renderer/texture"
	"github.com/google/uuid"
)

// Scene is an ordered collection of render objects and compute objects.
// Draw and dispatch order is insertion order. Every add validates before it inserts, so a failed add
// leaves the scene unchanged. Thread-safe for concurrent access.
type Scene interface {
	// AddRenderObject validates the three names against the resolver and appends a render object.
	// Names are checked material first, then texture, then model.
	//
	// Parameters:
	//   - material: render material name
	//   - texture: texture name
	//   - model: model name
	//   - options: functional options for the object
	//
	// Returns:
	//   - string: the generated object ID
	//   - error: a common.NotFoundError for the first missing name
	AddRenderObject(material, texture, model string, options ...RenderObjectOption) (string, error)

	// AddComputeObject appends a compute object that writes the shared "compute storage" texture.
	//
	// Parameters:
	//   - material: compute material name
	//
	// Returns:
	//   - string: the generated object ID
	//   - error: a common.NotFoundError if the material or the shared texture is missing
	AddComputeObject(material string) (string, error)

	// AddComputeObjectWithOutputTexture appends a compute object that owns a new storage texture of the given size.
	// The output is copied into the frame unless WithoutSurfaceCopy is given.
	//
	// Parameters:
	//   - material: compute material name
	//   - width: output width in pixels
	//   - height: output height in pixels
	//   - options: functional options for the object
	//
	// Returns:
	//   - string: the generated object ID
	//   - error: a common.NotFoundError if the material is missing, or a texture creation error
	AddComputeObjectWithOutputTexture(material string, width, height uint32, options ...ComputeObjectOption) (string, error)

	// RemoveRenderObject removes the render object with the given ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - error: a common.NotFoundError if no render object has this ID
	RemoveRenderObject(id string) error

	// RemoveComputeObject removes the compute object with the given ID and releases its owned output.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - error: a common.NotFoundError if no compute object has this ID
	RemoveComputeObject(id string) error

	// Clear removes every object and releases owned outputs.
	Clear()

	// RenderObjects returns a copy of the render objects in insertion order.
	//
	// Returns:
	//   - []RenderObject: the render objects
	RenderObjects() []RenderObject

	// ComputeObjects returns a copy of the compute objects in insertion order.
	//
	// Returns:
	//   - []ComputeObject: the compute objects
	ComputeObjects() []ComputeObject

	// Len returns the total number of render and compute objects.
	//
	// Returns:
	//   - int: object count
	Len() int

	// ResizeComputeOutputTextures recreates every owned output texture at the new size.
	// All replacements are created before any is swapped in, so a failure leaves every object untouched.
	// A zero dimension is ignored.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//
	// Returns:
	//   - error: error if any replacement texture cannot be created
	ResizeComputeOutputTextures(width, height uint32) error

	// Release releases every owned output texture and empties the scene.
	Release()
}

type scene struct {
	mu       *sync.RWMutex
	resolver Resolver

	renderObjects  []RenderObject
	computeObjects []ComputeObject
}

var _ Scene = &scene{}

// NewScene creates an empty Scene that validates names against resolver.
//
// Parameters:
//   - resolver: the resource lookup, normally the registry
//
// Returns:
//   - Scene: the new scene
func NewScene(resolver Resolver) Scene {
	return &scene{
		mu:       &sync.RWMutex{},
		resolver: resolver,
	}
}

func (s *scene) AddRenderObject(material, texture, model string, options ...RenderObjectOption) (string, error) {
	if !s.resolver.HasRenderMaterial(material) {
		return "", common.NewNotFound("Material", material)
	}
	if !s.resolver.HasTexture(texture) {
		return "", common.NewNotFound("Texture", texture)
	}
	if !s.resolver.HasModel(model) {
		return "", common.NewNotFound("Model", model)
	}

	obj := RenderObject{
		ID:       uuid.NewString(),
		Material: material,
		Texture:  texture,
		Model:    model,
	}
	for _, option := range options {
		option(&obj)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderObjects = append(s.renderObjects, obj)
	return obj.ID, nil
}

func (s *scene) AddComputeObject(material string) (string, error) {
	if !s.resolver.HasComputeMaterial(material) {
		return "", common.NewNotFound("Compute material", material)
	}
	if !s.resolver.HasTexture(ComputeStorageTexture) {
		return "", common.NewNotFound("Texture", ComputeStorageTexture)
	}

	obj := ComputeObject{
		ID:       uuid.NewString(),
		Material: material,
		Texture:  ComputeStorageTexture,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.computeObjects = append(s.computeObjects, obj)
	return obj.ID, nil
}

func (s *scene) AddComputeObjectWithOutputTexture(material string, width, height uint32, options ...ComputeObjectOption) (string, error) {
	if !s.resolver.HasComputeMaterial(material) {
		return "", common.NewNotFound("Compute material", material)
	}

	out, err := s.resolver.CreateStorageTexture(width, height)
	if err != nil {
		return "", fmt.Errorf("failed to create output texture for %q: %w", material, err)
	}

	obj := ComputeObject{
		ID:            uuid.NewString(),
		Material:      material,
		Texture:       out.Label(),
		Output:        out,
		CopyToSurface: true,
	}
	for _, option := range options {
		option(&obj)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.computeObjects = append(s.computeObjects, obj)
	return obj.ID, nil
}

func (s *scene) RemoveRenderObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.renderObjects, func(o RenderObject) bool { return o.ID == id })
	if i < 0 {
		return common.NewNotFound("Render object", id)
	}
	s.renderObjects = slices.Delete(s.renderObjects, i, i+1)
	return nil
}

func (s *scene) RemoveComputeObject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.computeObjects, func(o ComputeObject) bool { return o.ID == id })
	if i < 0 {
		return common.NewNotFound("Compute object", id)
	}
	if out := s.computeObjects[i].Output; out != nil {
		out.Release()
	}
	s.computeObjects = slices.Delete(s.computeObjects, i, i+1)
	return nil
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}

func (s *scene) clear() {
	for _, obj := range s.computeObjects {
		if obj.Output != nil {
			obj.Output.Release()
		}
	}
	s.renderObjects = nil
	s.computeObjects = nil
}

func (s *scene) RenderObjects() []RenderObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.renderObjects)
}

func (s *scene) ComputeObjects() []ComputeObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.computeObjects)
}

func (s *scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.renderObjects) + len(s.computeObjects)
}

func (s *scene) ResizeComputeOutputTextures(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replacements := make(map[int]texture.Texture)
	for i, obj := range s.computeObjects {
		if obj.Output == nil {
			continue
		}
		if w, h := obj.OutputSize(); w == width && h == height {
			continue
		}
		out, err := s.resolver.CreateStorageTexture(width, height)
		if err != nil {
			for _, created := range replacements {
				created.Release()
			}
			return fmt.Errorf("failed to resize output of compute object %s: %w", obj.ID, err)
		}
		replacements[i] = out
	}

	for i, out := range replacements {
		s.computeObjects[i].Output.Release()
		s.computeObjects[i].Output = out
		s.computeObjects[i].Texture = out.Label()
	}
	if len(replacements) > 0 {
		logger.Debugf("resized %d compute outputs to %dx%d", len(replacements), width, height)
	}
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear()
}
