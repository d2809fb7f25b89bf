package pipeline_test

import (
	"testing"

	"github.com/Kuowrk/fragma/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateDefaults(t *testing.T) {
	s := pipeline.NewState()

	prim := s.Primitive()
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, prim.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, prim.FrontFace)
	assert.Equal(t, wgpu.CullModeNone, prim.CullMode)

	target := s.ColorTarget(wgpu.TextureFormatBGRA8UnormSrgb)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, target.Format)
	require.NotNil(t, target.Blend)
	assert.Equal(t, pipeline.ReplaceBlend, *target.Blend)
	assert.Equal(t, wgpu.ColorWriteMaskAll, target.WriteMask)

	assert.Nil(t, s.DepthStencil())
}

func TestStateOptions(t *testing.T) {
	s := pipeline.NewState(
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
		pipeline.WithCullMode(wgpu.CullModeBack),
		pipeline.WithFrontFace(wgpu.FrontFaceCW),
		pipeline.WithBlend(pipeline.AlphaBlend),
		pipeline.WithWriteMask(wgpu.ColorWriteMaskRed),
		pipeline.WithDepthFormat(wgpu.TextureFormatDepth24Plus),
	)

	assert.Equal(t, wgpu.PrimitiveTopologyTriangleStrip, s.Topology())
	assert.Equal(t, wgpu.CullModeBack, s.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, s.FrontFace())
	assert.Equal(t, pipeline.AlphaBlend, s.Blend())
	assert.Equal(t, wgpu.ColorWriteMaskRed, s.WriteMask())

	ds := s.DepthStencil()
	require.NotNil(t, ds)
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, ds.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, ds.DepthCompare)
}
