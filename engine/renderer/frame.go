package renderer

import (
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Frame is an acquired surface texture. Exactly one of Present or Release must be called.
type Frame interface {
	// Texture returns the surface texture, usable as a copy destination.
	//
	// Returns:
	//   - *wgpu.Texture: the surface texture
	Texture() *wgpu.Texture

	// View returns the view the render pass draws into.
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	View() *wgpu.TextureView

	// Present queues the frame for display and releases it.
	Present()

	// Release drops the frame without presenting it.
	Release()
}

type frame struct {
	device  gpu.Device
	surface gpu.Surface
	texture *wgpu.Texture
	view    *wgpu.TextureView
	done    bool
}

var _ Frame = &frame{}

func (f *frame) Texture() *wgpu.Texture {
	return f.texture
}

func (f *frame) View() *wgpu.TextureView {
	return f.view
}

func (f *frame) Present() {
	if f.done {
		return
	}
	f.surface.Present()
	f.Release()
}

func (f *frame) Release() {
	if f.done {
		return
	}
	f.done = true
	f.device.Release(f.view)
	f.device.Release(f.texture)
}
