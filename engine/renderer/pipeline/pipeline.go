package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ReplaceBlend writes source color and alpha over the destination unchanged.
var ReplaceBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

// AlphaBlend is conventional non-premultiplied alpha blending.
var AlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// state is the implementation of the State interface.
type state struct {
	topology    wgpu.PrimitiveTopology
	frontFace   wgpu.FrontFace
	cullMode    wgpu.CullMode
	blend       wgpu.BlendState
	writeMask   wgpu.ColorWriteMask
	depthFormat wgpu.TextureFormat
}

// State holds the fixed-function configuration of a render pipeline: primitive assembly, color target
// blending and the optional depth attachment. A State is immutable once built.
type State interface {
	// Topology returns the primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the topology, TriangleList by default
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order of front-facing triangles.
	//
	// Returns:
	//   - wgpu.FrontFace: the winding, CCW by default
	FrontFace() wgpu.FrontFace

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode, none by default
	CullMode() wgpu.CullMode

	// Blend returns the color target blend state.
	//
	// Returns:
	//   - wgpu.BlendState: the blend state, ReplaceBlend by default
	Blend() wgpu.BlendState

	// WriteMask returns the color write mask.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the write mask, all channels by default
	WriteMask() wgpu.ColorWriteMask

	// DepthFormat returns the depth attachment format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the format, or wgpu.TextureFormatUndefined for no depth attachment
	DepthFormat() wgpu.TextureFormat

	// Primitive builds the primitive state of a render pipeline descriptor.
	//
	// Returns:
	//   - wgpu.PrimitiveState: topology, winding and culling
	Primitive() wgpu.PrimitiveState

	// ColorTarget builds the single color target for a render pipeline descriptor.
	//
	// Parameters:
	//   - format: the color attachment format, usually the surface format
	//
	// Returns:
	//   - wgpu.ColorTargetState: the target with this state's blend and write mask
	ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState

	// DepthStencil builds the depth-stencil state.
	//
	// Returns:
	//   - *wgpu.DepthStencilState: nil when no depth format is set
	DepthStencil() *wgpu.DepthStencilState
}

var _ State = &state{}

// NewState creates a State with the given options applied over the defaults.
//
// Parameters:
//   - options: builder options overriding the defaults
//
// Returns:
//   - State: the pipeline state
func NewState(options ...StateBuilderOption) State {
	s := &state{
		topology:    wgpu.PrimitiveTopologyTriangleList,
		frontFace:   wgpu.FrontFaceCCW,
		cullMode:    wgpu.CullModeNone,
		blend:       ReplaceBlend,
		writeMask:   wgpu.ColorWriteMaskAll,
		depthFormat: wgpu.TextureFormatUndefined,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *state) Topology() wgpu.PrimitiveTopology {
	return s.topology
}

func (s *state) FrontFace() wgpu.FrontFace {
	return s.frontFace
}

func (s *state) CullMode() wgpu.CullMode {
	return s.cullMode
}

func (s *state) Blend() wgpu.BlendState {
	return s.blend
}

func (s *state) WriteMask() wgpu.ColorWriteMask {
	return s.writeMask
}

func (s *state) DepthFormat() wgpu.TextureFormat {
	return s.depthFormat
}

func (s *state) Primitive() wgpu.PrimitiveState {
	return wgpu.PrimitiveState{
		Topology:  s.topology,
		FrontFace: s.frontFace,
		CullMode:  s.cullMode,
	}
}

func (s *state) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	blend := s.blend
	return wgpu.ColorTargetState{
		Format:    format,
		Blend:     &blend,
		WriteMask: s.writeMask,
	}
}

func (s *state) DepthStencil() *wgpu.DepthStencilState {
	if s.depthFormat == wgpu.TextureFormatUndefined {
		return nil
	}
	return &wgpu.DepthStencilState{
		Format:            s.depthFormat,
		DepthWriteEnabled: true,
		DepthCompare:      wgpu.CompareFunctionLess,
		StencilFront: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
		StencilBack: wgpu.StencilFaceState{
			Compare: wgpu.CompareFunctionAlways,
		},
	}
}
