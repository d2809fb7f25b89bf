package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// StateBuilderOption is a functional option for configuring a State via NewState.
type StateBuilderOption func(*state)

// WithTopology sets the primitive topology.
//
// Parameters:
//   - topology: the primitive topology (e.g., wgpu.PrimitiveTopologyTriangleStrip)
//
// Returns:
//   - StateBuilderOption: a function that sets the topology
func WithTopology(topology wgpu.PrimitiveTopology) StateBuilderOption {
	return func(s *state) {
		s.topology = topology
	}
}

// WithCullMode sets the face culling mode.
//
// Parameters:
//   - mode: the cull mode (e.g., wgpu.CullModeBack)
//
// Returns:
//   - StateBuilderOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) StateBuilderOption {
	return func(s *state) {
		s.cullMode = mode
	}
}

// WithFrontFace sets the winding order of front-facing triangles.
//
// Parameters:
//   - frontFace: the winding order (e.g., wgpu.FrontFaceCW)
//
// Returns:
//   - StateBuilderOption: a function that sets the front face
func WithFrontFace(frontFace wgpu.FrontFace) StateBuilderOption {
	return func(s *state) {
		s.frontFace = frontFace
	}
}

// WithBlend sets the color target blend state.
//
// Parameters:
//   - blend: the blend state (e.g., AlphaBlend)
//
// Returns:
//   - StateBuilderOption: a function that sets the blend state
func WithBlend(blend wgpu.BlendState) StateBuilderOption {
	return func(s *state) {
		s.blend = blend
	}
}

// WithWriteMask sets the color write mask.
//
// Parameters:
//   - writeMask: the channels written (e.g., wgpu.ColorWriteMaskAll)
//
// Returns:
//   - StateBuilderOption: a function that sets the write mask
func WithWriteMask(writeMask wgpu.ColorWriteMask) StateBuilderOption {
	return func(s *state) {
		s.writeMask = writeMask
	}
}

// WithDepthFormat enables a depth attachment of the given format with less-than testing.
//
// Parameters:
//   - format: the depth format (e.g., wgpu.TextureFormatDepth24Plus)
//
// Returns:
//   - StateBuilderOption: a function that sets the depth format
func WithDepthFormat(format wgpu.TextureFormat) StateBuilderOption {
	return func(s *state) {
		s.depthFormat = format
	}
}
