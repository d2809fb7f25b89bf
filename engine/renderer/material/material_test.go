package material_test

import (
	"testing"

	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/model"
	"github.com/Kuowrk/fragma/engine/renderer/material"
	"github.com/Kuowrk/fragma/engine/renderer/pipeline"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRenderBuildsPipeline(t *testing.T) {
	dev := gputest.NewDevice()
	src, err := shader.Embedded("basic.wgsl")
	require.NoError(t, err)
	layouts := []*wgpu.BindGroupLayout{new(wgpu.BindGroupLayout), new(wgpu.BindGroupLayout), new(wgpu.BindGroupLayout)}

	m, err := material.NewRender(dev, "basic", src, layouts, wgpu.TextureFormatBGRA8UnormSrgb,
		[]wgpu.VertexBufferLayout{model.VertexBufferLayout()},
		material.WithPipelineState(pipeline.WithCullMode(wgpu.CullModeBack)),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		gputest.OpCreateShaderModule,
		gputest.OpCreatePipelineLayout,
		gputest.OpCreateRenderPipeline,
		gputest.OpRelease,
	}, dev.Ops())

	desc := dev.CallsOf(gputest.OpCreateRenderPipeline)[0].Args[0].(wgpu.RenderPipelineDescriptor)
	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	require.NotNil(t, desc.Fragment)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, desc.Fragment.Targets[0].Format)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, layouts, m.BindGroupLayouts())

	p, l := m.Pipeline(), m.Layout()
	m.Release()
	assert.Equal(t, 1, dev.Released(p))
	assert.Equal(t, 1, dev.Released(l))
}

func TestNewRenderReleasesOnPipelineFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailNext(gputest.OpCreateRenderPipeline, assert.AnError)

	_, err := material.NewRender(dev, "broken", shader.FromWGSL("broken", ""), nil, wgpu.TextureFormatBGRA8Unorm, nil)
	require.ErrorIs(t, err, assert.AnError)

	module := dev.CallsOf(gputest.OpCreateShaderModule)[0].Target
	layout := dev.CallsOf(gputest.OpCreatePipelineLayout)[0].Target
	assert.Equal(t, 1, dev.Released(module))
	assert.Equal(t, 1, dev.Released(layout))
}

func TestComputeWorkgroupSize(t *testing.T) {
	dev := gputest.NewDevice()

	fromSource, err := material.NewCompute(dev, "sized", shader.FromWGSL("sized", "@compute @workgroup_size(8, 4) fn main() {}"), nil)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{8, 4, 1}, fromSource.WorkgroupSize())

	unsized, err := material.NewCompute(dev, "unsized", shader.FromWGSL("unsized", "fn helper() {}"), nil)
	require.NoError(t, err)
	assert.Equal(t, material.DefaultWorkgroupSize, unsized.WorkgroupSize())

	spirv, err := shader.FromSPIRV("spirv", []byte{0x03, 0x02, 0x23, 0x07})
	require.NoError(t, err)
	overridden, err := material.NewCompute(dev, "spirv", spirv, nil,
		material.WithWorkgroupSize([3]uint32{32, 1, 1}),
		material.WithEntryPoint("cs_main"),
	)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{32, 1, 1}, overridden.WorkgroupSize())

	desc := dev.CallsOf(gputest.OpCreateComputePipeline)[2].Args[0].(wgpu.ComputePipelineDescriptor)
	assert.Equal(t, "cs_main", desc.Compute.EntryPoint)
}

func TestDispatchSize(t *testing.T) {
	dev := gputest.NewDevice()
	src, err := shader.Embedded("basic_compute.wgsl")
	require.NoError(t, err)
	m, err := material.NewCompute(dev, "basic compute", src, nil)
	require.NoError(t, err)

	assert.Equal(t, [3]uint32{120, 68, 1}, m.DispatchSize(1920, 1080))
	assert.Equal(t, [3]uint32{1, 1, 1}, m.DispatchSize(1, 1))
	assert.Equal(t, [3]uint32{0, 0, 1}, m.DispatchSize(0, 0))
}

func TestDrawConstantsMarshal(t *testing.T) {
	c := material.GPUDrawConstants{FlipV: 1, GammaCorrect: 1}
	b := c.Marshal()
	require.Len(t, b, c.Size())
	assert.Equal(t, []byte{1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, b)
}
