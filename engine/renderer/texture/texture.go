// Package texture creates GPU textures together with the bind group that exposes them to shaders.
package texture

import (
	"fmt"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Kind distinguishes sampled textures from compute storage textures.
type Kind int

const (
	// KindSampled is a texture sampled in fragment shaders.
	KindSampled Kind = iota
	// KindStorage is a write-only storage texture written by compute shaders.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindSampled:
		return "sampled"
	case KindStorage:
		return "storage"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// StorageFormat is the format of every storage texture.
const StorageFormat = wgpu.TextureFormatRGBA8Unorm

// texture is the implementation of the Texture interface.
type texture struct {
	device   gpu.Device
	label    string
	kind     Kind
	width    uint32
	height   uint32
	format   wgpu.TextureFormat
	texture  *wgpu.Texture
	view     *wgpu.TextureView
	provider bind_group_provider.BindGroupProvider
}

// Texture is a GPU texture, its default view and the bind group exposing it.
type Texture interface {
	// Label retrieves the debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Texture retrieves the GPU texture.
	//
	// Returns:
	//   - *wgpu.Texture: the texture
	Texture() *wgpu.Texture

	// View retrieves the default texture view.
	//
	// Returns:
	//   - *wgpu.TextureView: the view
	View() *wgpu.TextureView

	// BindGroup retrieves the bind group exposing the texture.
	// Sampled textures bind the view at 0 and the sampler at 1; storage textures bind the view at 0.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group
	BindGroup() *wgpu.BindGroup

	Width() uint32
	Height() uint32
	Format() wgpu.TextureFormat
	Kind() Kind

	// Release releases the bind group, the view and the texture.
	Release()
}

var _ Texture = &texture{}

// SampledLayoutEntries returns the bind group layout entries of a sampled texture: a filterable 2D
// float texture at binding 0 and a filtering sampler at binding 1, both visible to fragment shaders.
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the layout entries
func SampledLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		},
		{
			Binding:    1,
			Visibility: wgpu.ShaderStageFragment,
			Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
		},
	}
}

// StorageLayoutEntries returns the bind group layout entries of a storage texture: a write-only
// Rgba8Unorm 2D storage texture at binding 0, visible to compute shaders.
//
// Returns:
//   - []wgpu.BindGroupLayoutEntry: the layout entries
func StorageLayoutEntries() []wgpu.BindGroupLayoutEntry {
	return []wgpu.BindGroupLayoutEntry{{
		Binding:    0,
		Visibility: wgpu.ShaderStageCompute,
		StorageTexture: wgpu.StorageTextureBindingLayout{
			Access:        wgpu.StorageTextureAccessWriteOnly,
			Format:        StorageFormat,
			ViewDimension: wgpu.TextureViewDimension2D,
		},
	}}
}

// NewSampled creates a 2D texture from RGBA8 pixels, uploads them and binds the texture with a sampler.
//
// Parameters:
//   - device: the device to create on
//   - label: debug label
//   - img: the pixels, 4 bytes per texel
//   - format: the texture format, e.g. wgpu.TextureFormatRGBA8UnormSrgb
//   - layout: a layout created from SampledLayoutEntries
//   - sampler: the sampler bound at binding 1
//
// Returns:
//   - Texture: the created texture
//   - error: common.ErrMalformed for empty or mis-sized pixel data, or a creation error
func NewSampled(device gpu.Device, label string, img common.ImageData, format wgpu.TextureFormat, layout *wgpu.BindGroupLayout, sampler *wgpu.Sampler) (Texture, error) {
	if img.Width == 0 || img.Height == 0 {
		return nil, fmt.Errorf("%w: texture %q has zero size %dx%d", common.ErrMalformed, label, img.Width, img.Height)
	}
	if want := int(img.Width) * int(img.Height) * 4; len(img.Pixels) != want {
		return nil, fmt.Errorf("%w: texture %q has %d bytes of pixels, expected %d", common.ErrMalformed, label, len(img.Pixels), want)
	}

	t, err := create(device, label, KindSampled, img.Width, img.Height, format,
		wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}

	err = device.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		img.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  img.Width * 4,
			RowsPerImage: img.Height,
		},
		&wgpu.Extent3D{
			Width:              img.Width,
			Height:             img.Height,
			DepthOrArrayLayers: 1,
		},
	)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to upload texture %q: %w", label, err)
	}

	if err := t.bind(layout, SampledLayoutEntries(), bind_group_provider.WithSampler(1, sampler)); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

// NewSolid creates a 1x1 sRGB texture of a single color.
//
// Parameters:
//   - device: the device to create on
//   - label: debug label
//   - rgba: the texel color
//   - layout: a layout created from SampledLayoutEntries
//   - sampler: the sampler bound at binding 1
//
// Returns:
//   - Texture: the created texture
//   - error: error if creation fails
func NewSolid(device gpu.Device, label string, rgba [4]byte, layout *wgpu.BindGroupLayout, sampler *wgpu.Sampler) (Texture, error) {
	return NewSampled(device, label, common.SolidImage(rgba), wgpu.TextureFormatRGBA8UnormSrgb, layout, sampler)
}

// NewStorage creates an Rgba8Unorm storage texture a compute shader can write and a copy can read.
//
// Parameters:
//   - device: the device to create on
//   - label: debug label
//   - width: texture width, non-zero
//   - height: texture height, non-zero
//   - layout: a layout created from StorageLayoutEntries
//
// Returns:
//   - Texture: the created texture
//   - error: common.ErrMalformed for a zero dimension, or a creation error
func NewStorage(device gpu.Device, label string, width, height uint32, layout *wgpu.BindGroupLayout) (Texture, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: storage texture %q has zero size %dx%d", common.ErrMalformed, label, width, height)
	}

	t, err := create(device, label, KindStorage, width, height, StorageFormat,
		wgpu.TextureUsageStorageBinding|wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	if err := t.bind(layout, StorageLayoutEntries()); err != nil {
		t.Release()
		return nil, err
	}
	return t, nil
}

func create(device gpu.Device, label string, kind Kind, width, height uint32, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*texture, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label + " Texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", label, err)
	}

	t := &texture{
		device:  device,
		label:   label,
		kind:    kind,
		width:   width,
		height:  height,
		format:  format,
		texture: tex,
	}
	view, err := device.CreateTextureView(tex)
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("failed to create view for texture %q: %w", label, err)
	}
	t.view = view
	return t, nil
}

func (t *texture) bind(layout *wgpu.BindGroupLayout, entries []wgpu.BindGroupLayoutEntry, options ...bind_group_provider.BindGroupProviderOption) error {
	options = append(options,
		bind_group_provider.WithBindGroupLayout(layout),
		bind_group_provider.WithTextureView(0, t.view),
	)
	t.provider = bind_group_provider.NewBindGroupProvider(t.device, t.label, options...)
	return t.provider.Init(entries)
}

func (t *texture) Label() string {
	return t.label
}

func (t *texture) Texture() *wgpu.Texture {
	return t.texture
}

func (t *texture) View() *wgpu.TextureView {
	return t.view
}

func (t *texture) BindGroup() *wgpu.BindGroup {
	if t.provider == nil {
		return nil
	}
	return t.provider.BindGroup()
}

func (t *texture) Width() uint32 {
	return t.width
}

func (t *texture) Height() uint32 {
	return t.height
}

func (t *texture) Format() wgpu.TextureFormat {
	return t.format
}

func (t *texture) Kind() Kind {
	return t.kind
}

func (t *texture) Release() {
	if t.provider != nil {
		t.provider.Release()
		t.provider = nil
	}
	if t.view != nil {
		t.device.Release(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.Release(t.texture)
		t.texture = nil
	}
}
