package texture_test

import (
	"testing"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSampledUploadsPixels(t *testing.T) {
	dev := gputest.NewDevice()
	img := common.ImageData{Pixels: make([]byte, 2*3*4), Width: 2, Height: 3}

	tex, err := texture.NewSampled(dev, "Checker", img, wgpu.TextureFormatRGBA8UnormSrgb, new(wgpu.BindGroupLayout), new(wgpu.Sampler))
	require.NoError(t, err)

	state := dev.Texture(tex.Texture())
	require.NotNil(t, state)
	assert.Equal(t, uint32(2), state.Width)
	assert.Equal(t, uint32(3), state.Height)
	assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, state.Usage)
	assert.Equal(t, texture.KindSampled, tex.Kind())

	write := dev.CallsOf(gputest.OpWriteTexture)
	require.Len(t, write, 1)
	layout := write[0].Args[1].(wgpu.TextureDataLayout)
	assert.Equal(t, uint32(8), layout.BytesPerRow)
	assert.Equal(t, uint32(3), layout.RowsPerImage)

	assert.Equal(t, []string{
		gputest.OpCreateTexture,
		gputest.OpCreateTextureView,
		gputest.OpWriteTexture,
		gputest.OpCreateBindGroup,
	}, dev.Ops())
	assert.NotNil(t, tex.BindGroup())
}

func TestNewSampledRejectsBadPixels(t *testing.T) {
	dev := gputest.NewDevice()
	_, err := texture.NewSampled(dev, "Short", common.ImageData{Pixels: []byte{1, 2, 3}, Width: 1, Height: 1},
		wgpu.TextureFormatRGBA8UnormSrgb, new(wgpu.BindGroupLayout), new(wgpu.Sampler))
	assert.ErrorIs(t, err, common.ErrMalformed)
	assert.Empty(t, dev.Ops())
}

func TestNewStorage(t *testing.T) {
	dev := gputest.NewDevice()
	tex, err := texture.NewStorage(dev, "Compute Output", 64, 32, new(wgpu.BindGroupLayout))
	require.NoError(t, err)

	state := dev.Texture(tex.Texture())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, state.Format)
	assert.Equal(t, wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopySrc, state.Usage)
	assert.Equal(t, texture.KindStorage, tex.Kind())

	desc := dev.CallsOf(gputest.OpCreateBindGroup)[0].Args[0].(wgpu.BindGroupDescriptor)
	require.Len(t, desc.Entries, 1)
	assert.Equal(t, tex.View(), desc.Entries[0].TextureView)

	_, err = texture.NewStorage(dev, "Empty", 0, 32, new(wgpu.BindGroupLayout))
	assert.ErrorIs(t, err, common.ErrMalformed)
}

func TestTextureReleaseOnBindFailure(t *testing.T) {
	dev := gputest.NewDevice()
	dev.FailNext(gputest.OpCreateBindGroup, assert.AnError)

	_, err := texture.NewStorage(dev, "Broken", 4, 4, new(wgpu.BindGroupLayout))
	require.ErrorIs(t, err, assert.AnError)

	tex := dev.CallsOf(gputest.OpCreateTexture)[0].Target
	view := dev.CallsOf(gputest.OpCreateTextureView)[0].Target
	assert.Equal(t, 1, dev.Released(tex))
	assert.Equal(t, 1, dev.Released(view))
}
