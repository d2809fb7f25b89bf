package scene

// RenderObjectOption configures a RenderObject added through Scene.AddRenderObject.
type RenderObjectOption func(*RenderObject)

// WithFlipV flips the V texture coordinate when the object is drawn.
//
// Parameters:
//   - flip: true to flip V
//
// Returns:
//   - RenderObjectOption: option function to apply
func WithFlipV(flip bool) RenderObjectOption {
	return func(o *RenderObject) {
		o.FlipV = flip
	}
}

// ComputeObjectOption configures a ComputeObject added through Scene.AddComputeObjectWithOutputTexture.
type ComputeObjectOption func(*ComputeObject)

// WithoutSurfaceCopy keeps the output texture out of the frame; the compute result is only available to other passes.
//
// Returns:
//   - ComputeObjectOption: option function to apply
func WithoutSurfaceCopy() ComputeObjectOption {
	return func(o *ComputeObject) {
		o.CopyToSurface = false
	}
}
