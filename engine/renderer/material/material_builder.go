package material

import "github.com/Kuowrk/fragma/engine/renderer/pipeline"

// RenderBuilderOption is a functional option for configuring a Render material via NewRender.
type RenderBuilderOption func(*renderMaterial)

// WithVertexEntry sets the vertex entry point name.
//
// Parameters:
//   - entry: the WGSL function name, "vs_main" by default
//
// Returns:
//   - RenderBuilderOption: a function that sets the vertex entry point
func WithVertexEntry(entry string) RenderBuilderOption {
	return func(m *renderMaterial) {
		m.vertexEntry = entry
	}
}

// WithFragmentEntry sets the fragment entry point name.
//
// Parameters:
//   - entry: the WGSL function name, "fs_main" by default
//
// Returns:
//   - RenderBuilderOption: a function that sets the fragment entry point
func WithFragmentEntry(entry string) RenderBuilderOption {
	return func(m *renderMaterial) {
		m.fragmentEntry = entry
	}
}

// WithPipelineState applies pipeline state options (topology, culling, blending, depth).
//
// Parameters:
//   - options: the pipeline state options
//
// Returns:
//   - RenderBuilderOption: a function that records the state options
func WithPipelineState(options ...pipeline.StateBuilderOption) RenderBuilderOption {
	return func(m *renderMaterial) {
		m.stateOptions = append(m.stateOptions, options...)
	}
}

// ComputeBuilderOption is a functional option for configuring a Compute material via NewCompute.
type ComputeBuilderOption func(*computeMaterial)

// WithEntryPoint sets the compute entry point name.
//
// Parameters:
//   - entry: the function name, "main" by default
//
// Returns:
//   - ComputeBuilderOption: a function that sets the entry point
func WithEntryPoint(entry string) ComputeBuilderOption {
	return func(m *computeMaterial) {
		m.entryPoint = entry
	}
}

// WithWorkgroupSize overrides the workgroup size, required for SPIR-V sources.
//
// Parameters:
//   - size: the workgroup size as [x, y, z]
//
// Returns:
//   - ComputeBuilderOption: a function that sets the workgroup size
func WithWorkgroupSize(size [3]uint32) ComputeBuilderOption {
	return func(m *computeMaterial) {
		m.workgroupSize = size
		m.sizeOverride = true
	}
}
