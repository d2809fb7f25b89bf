// package common contains common types and helpers that are used throughout this engine. They are not interface-wrapped structs,
// just plain structs and functions that express commonly used data-types.
package common

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageData holds decoded RGBA8 pixel data ready for a texture upload.
type ImageData struct {
	// Pixels is the pixel data in RGBA format, 4 bytes per pixel, row-major.
	Pixels []byte
	// Width is the width of the image in pixels.
	Width uint32
	// Height is the height of the image in pixels.
	Height uint32
}

// SolidImage creates a 1x1 image filled with the given RGBA color.
//
// Parameters:
//   - rgba: the color of the single pixel
//
// Returns:
//   - ImageData: the 1x1 image
func SolidImage(rgba [4]byte) ImageData {
	return ImageData{Pixels: rgba[:], Width: 1, Height: 1}
}

// SamplerConfig holds the configuration for a sampler pending GPU creation.
// Zero values are replaced with clamp-to-edge addressing, nearest filtering and a [0, 32] LOD range.
type SamplerConfig struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// Descriptor converts the config into a wgpu.SamplerDescriptor, filling in defaults for zero fields.
//
// Parameters:
//   - label: debug label of the sampler
//
// Returns:
//   - *wgpu.SamplerDescriptor: the descriptor ready for device.CreateSampler
func (c SamplerConfig) Descriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  Coalesce(c.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  Coalesce(c.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  Coalesce(c.AddressModeW, wgpu.AddressModeClampToEdge),
		MagFilter:     Coalesce(c.MagFilter, wgpu.FilterModeNearest),
		MinFilter:     Coalesce(c.MinFilter, wgpu.FilterModeNearest),
		MipmapFilter:  Coalesce(c.MipmapFilter, wgpu.MipmapFilterModeNearest),
		LodMinClamp:   c.LodMinClamp,
		LodMaxClamp:   Coalesce(c.LodMaxClamp, 32),
		MaxAnisotropy: Coalesce(c.MaxAnisotropy, 1),
	}
}

// DecodeImage decodes an image stream into RGBA8 pixels.
// PNG, JPEG, GIF, BMP, TIFF and WebP are supported.
//
// Parameters:
//   - r: the encoded image stream
//
// Returns:
//   - ImageData: the decoded pixels
//   - error: ErrMalformed if the stream cannot be decoded
func DecodeImage(r io.Reader) (ImageData, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to decode image: %w: %w", ErrMalformed, err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return ImageData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}, nil
}

// DecodeImageFile opens and decodes the image at path into RGBA8 pixels.
//
// Parameters:
//   - path: the image file path
//
// Returns:
//   - ImageData: the decoded pixels
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string) (ImageData, error) {
	file, err := os.Open(path)
	if err != nil {
		return ImageData{}, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, err := DecodeImage(file)
	if err != nil {
		return ImageData{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
