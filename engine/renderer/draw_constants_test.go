package renderer

import (
	"testing"

	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawConstantsCacheEvictionReleases(t *testing.T) {
	dev := gputest.NewDevice()
	cache, err := newDrawConstantsCache(dev, 1)
	require.NoError(t, err)
	layout := new(wgpu.BindGroupLayout)

	first, err := cache.BindGroup(material.GPUDrawConstants{}, layout)
	require.NoError(t, err)
	again, err := cache.BindGroup(material.GPUDrawConstants{}, layout)
	require.NoError(t, err)
	assert.Same(t, first, again)

	_, err = cache.BindGroup(material.GPUDrawConstants{FlipV: 1}, layout)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, 1, dev.Released(first))

	cache.Purge()
	assert.Zero(t, cache.Len())
}

func TestDrawConstantsCacheFailureLeavesNoEntry(t *testing.T) {
	dev := gputest.NewDevice()
	cache, err := newDrawConstantsCache(dev, 4)
	require.NoError(t, err)

	dev.FailNext(gputest.OpCreateBufferInit, assert.AnError)
	_, err = cache.BindGroup(material.GPUDrawConstants{GammaCorrect: 1}, new(wgpu.BindGroupLayout))
	require.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, cache.Len())

	buf := dev.CallsOf(gputest.OpCreateBuffer)[0].Target
	assert.Equal(t, 1, dev.Released(buf))
}

func TestNewDrawConstantsCacheRejectsZeroSize(t *testing.T) {
	_, err := newDrawConstantsCache(gputest.NewDevice(), 0)
	assert.Error(t, err)
}
