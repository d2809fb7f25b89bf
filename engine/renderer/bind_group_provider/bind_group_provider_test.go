package bind_group_provider_test

import (
	"testing"

	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uniformEntries = []wgpu.BindGroupLayoutEntry{{
	Binding:    0,
	Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
	Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform, MinBindingSize: 16},
}}

func TestInitCreatesOwnedUniformBuffer(t *testing.T) {
	dev := gputest.NewDevice()
	p := bind_group_provider.NewBindGroupProvider(dev, "Camera",
		bind_group_provider.WithBindGroupLayout(new(wgpu.BindGroupLayout)),
		bind_group_provider.WithBufferSize(0, 80),
	)
	require.NoError(t, p.Init(uniformEntries))

	buf := p.Buffer(0)
	require.NotNil(t, buf)
	state := dev.Buffer(buf)
	assert.Equal(t, uint64(80), state.Size)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, state.Usage)
	assert.NotNil(t, p.BindGroup())

	data := make([]byte, 16)
	data[0] = 7
	require.NoError(t, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Offset: 16, Data: data}.Stage(dev))
	assert.Equal(t, byte(7), dev.BufferData(buf)[16])

	bg := p.BindGroup()
	p.Release()
	assert.Equal(t, 1, dev.Released(buf))
	assert.Equal(t, 1, dev.Released(bg))
	assert.Nil(t, p.Buffer(0))
}

func TestInitBorrowsTextureAndSampler(t *testing.T) {
	dev := gputest.NewDevice()
	view := new(wgpu.TextureView)
	sampler := new(wgpu.Sampler)
	p := bind_group_provider.NewBindGroupProvider(dev, "Texture",
		bind_group_provider.WithBindGroupLayout(new(wgpu.BindGroupLayout)),
		bind_group_provider.WithSampler(1, sampler),
		bind_group_provider.WithTextureView(0, view),
	)
	entries := []wgpu.BindGroupLayoutEntry{
		{Binding: 1, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}},
		{Binding: 0, Visibility: wgpu.ShaderStageFragment, Texture: wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}},
	}
	require.NoError(t, p.Init(entries))

	desc := dev.CallsOf(gputest.OpCreateBindGroup)[0].Args[0].(wgpu.BindGroupDescriptor)
	require.Len(t, desc.Entries, 2)
	assert.Equal(t, view, desc.Entries[0].TextureView)
	assert.Equal(t, sampler, desc.Entries[1].Sampler)

	p.Release()
	assert.Equal(t, 0, dev.Released(view))
	assert.Equal(t, 0, dev.Released(sampler))
}

func TestInitRequiresResources(t *testing.T) {
	dev := gputest.NewDevice()
	p := bind_group_provider.NewBindGroupProvider(dev, "Missing")
	assert.Error(t, p.Init(uniformEntries))

	p = bind_group_provider.NewBindGroupProvider(dev, "Missing",
		bind_group_provider.WithBindGroupLayout(new(wgpu.BindGroupLayout)))
	err := p.Init([]wgpu.BindGroupLayoutEntry{{Binding: 0, Sampler: wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}}})
	assert.ErrorContains(t, err, "has no sampler")
	assert.Equal(t, 0, dev.Count(gputest.OpCreateBindGroup))
}
