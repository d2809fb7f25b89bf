package scene

import (
	"github.com/Kuowrk/fragma/engine/renderer/texture"
)

// ComputeStorageTexture is the registry name of the shared storage texture bound by compute objects without an owned output.
const ComputeStorageTexture = "compute storage"

// RenderObject draws one model with one render material and one texture.
// All three names are validated against the Resolver when the object is added.
type RenderObject struct {
	ID       string
	Material string
	Texture  string
	Model    string
	// FlipV flips the V texture coordinate in the fragment stage.
	FlipV bool
}

// ComputeObject dispatches one compute material over its output texture.
type ComputeObject struct {
	ID       string
	Material string
	// Texture is the registry texture bound when Output is nil.
	Texture string
	// Output is an optional storage texture owned by the scene and released with the object.
	Output texture.Texture
	// CopyToSurface copies Output into the frame before the render pass.
	CopyToSurface bool
}

// OutputSize returns the dimensions of the owned output texture, or zeros when the object has none.
//
// Returns:
//   - uint32: width in pixels
//   - uint32: height in pixels
func (c ComputeObject) OutputSize() (uint32, uint32) {
	if c.Output == nil {
		return 0, 0
	}
	return c.Output.Width(), c.Output.Height()
}

// Resolver answers the existence checks a Scene performs before inserting objects, and creates the
// storage textures owned by compute objects.
type Resolver interface {
	// HasRenderMaterial reports whether a render material is registered under name.
	HasRenderMaterial(name string) bool

	// HasComputeMaterial reports whether a compute material is registered under name.
	HasComputeMaterial(name string) bool

	// HasTexture reports whether a texture is registered under name.
	HasTexture(name string) bool

	// HasModel reports whether a model is registered under name.
	HasModel(name string) bool

	// CreateStorageTexture creates an unregistered storage texture owned by the caller.
	//
	// Parameters:
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//
	// Returns:
	//   - texture.Texture: the new texture
	//   - error: error if creation fails
	CreateStorageTexture(width, height uint32) (texture.Texture, error)
}
