package renderer

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency. This is the default.
	PresentModeUncapped PresentMode = iota

	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate.
	PresentModeVSync
)

func (m PresentMode) surfaceMode() wgpu.PresentMode {
	if m == PresentModeVSync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// DefaultBackground is the clear color of a new viewport.
var DefaultBackground = wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}

// srgbFormats lists the sRGB surface formats paired with their linear counterparts.
var srgbFormats = map[wgpu.TextureFormat]wgpu.TextureFormat{
	wgpu.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8Unorm,
	wgpu.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8Unorm,
}

// linearFormat strips the sRGB suffix from a format.
func linearFormat(f wgpu.TextureFormat) wgpu.TextureFormat {
	if linear, ok := srgbFormats[f]; ok {
		return linear
	}
	return f
}

// CopyCompatible reports whether a texture of format src can be copied into one of format dst:
// the formats must be identical ignoring the sRGB suffix.
//
// Parameters:
//   - src: the source texture format
//   - dst: the destination texture format
//
// Returns:
//   - bool: true if CopyTextureToTexture between the two is valid
func CopyCompatible(src, dst wgpu.TextureFormat) bool {
	return linearFormat(src) == linearFormat(dst)
}

type viewport struct {
	mu      *sync.Mutex
	device  gpu.Device
	surface gpu.Surface

	width, height uint32
	format        wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   PresentMode
	background    wgpu.Color
}

// Viewport owns the presentable surface and its configuration.
type Viewport interface {
	// Size returns the current surface size.
	//
	// Returns:
	//   - uint32: width in pixels
	//   - uint32: height in pixels
	Size() (uint32, uint32)

	// Aspect returns width / height of the current surface size.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Format returns the configured surface format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	Format() wgpu.TextureFormat

	// IsSRGB reports whether the surface format encodes to sRGB on write.
	//
	// Returns:
	//   - bool: true for *Srgb formats
	IsSRGB() bool

	Background() wgpu.Color
	SetBackground(c wgpu.Color)

	PresentMode() PresentMode

	// Resize stores a new size and reconfigures the surface. A zero dimension is ignored.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//
	// Returns:
	//   - bool: true if the surface was reconfigured
	Resize(width, height uint32) bool

	// SetVSync switches between PresentModeVSync and PresentModeUncapped and reconfigures the surface.
	//
	// Parameters:
	//   - enabled: true for vsync
	SetVSync(enabled bool)

	// Reconfigure applies the current configuration to the surface again, e.g. after it was lost.
	Reconfigure()

	// AcquireFrame acquires the next surface texture and creates a view of it.
	//
	// Returns:
	//   - Frame: the acquired frame, which must be presented or released
	//   - error: wraps common.ErrResourceLost, common.ErrOutOfMemory or common.ErrUnexpected
	AcquireFrame() (Frame, error)
}

var _ Viewport = &viewport{}

// NewViewport picks the surface format and configures the surface. The first sRGB format the surface
// supports is chosen, falling back to the first reported format.
//
// Parameters:
//   - device: the device the surface is configured against
//   - surface: the presentable surface
//   - width: initial width in pixels
//   - height: initial height in pixels
//   - options: functional options to configure the viewport
//
// Returns:
//   - Viewport: the configured viewport
//   - error: common.ErrUnsupportedFormat if the surface reports no formats
func NewViewport(device gpu.Device, surface gpu.Surface, width, height uint32, options ...ViewportBuilderOption) (Viewport, error) {
	caps := surface.Capabilities()
	if len(caps.Formats) == 0 {
		return nil, fmt.Errorf("%w: surface reports no formats", common.ErrUnsupportedFormat)
	}

	v := &viewport{
		mu:          &sync.Mutex{},
		device:      device,
		surface:     surface,
		width:       width,
		height:      height,
		format:      caps.Formats[0],
		alphaMode:   wgpu.CompositeAlphaModeAuto,
		presentMode: PresentModeUncapped,
		background:  DefaultBackground,
	}
	if i := slices.IndexFunc(caps.Formats, isSRGB); i >= 0 {
		v.format = caps.Formats[i]
	}
	if len(caps.AlphaModes) > 0 {
		v.alphaMode = caps.AlphaModes[0]
	}
	for _, option := range options {
		option(v)
	}

	v.configure()
	logger.Infof("viewport: %dx%d format=%v srgb=%t", v.width, v.height, v.format, isSRGB(v.format))
	return v, nil
}

func isSRGB(f wgpu.TextureFormat) bool {
	_, ok := srgbFormats[f]
	return ok
}

func (v *viewport) Size() (uint32, uint32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width, v.height
}

func (v *viewport) Aspect() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.height == 0 {
		return 1
	}
	return float32(v.width) / float32(v.height)
}

func (v *viewport) Format() wgpu.TextureFormat {
	return v.format
}

func (v *viewport) IsSRGB() bool {
	return isSRGB(v.format)
}

func (v *viewport) Background() wgpu.Color {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.background
}

func (v *viewport) SetBackground(c wgpu.Color) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.background = c
}

func (v *viewport) PresentMode() PresentMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.presentMode
}

func (v *viewport) Resize(width, height uint32) bool {
	if width == 0 || height == 0 {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height
	v.configure()
	return true
}

func (v *viewport) SetVSync(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.presentMode = PresentModeUncapped
	if enabled {
		v.presentMode = PresentModeVSync
	}
	v.configure()
}

func (v *viewport) Reconfigure() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.configure()
}

// configure applies the configuration. Caller holds the lock.
func (v *viewport) configure() {
	v.surface.Configure(&wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
		Format:      v.format,
		Width:       v.width,
		Height:      v.height,
		PresentMode: v.presentMode.surfaceMode(),
		AlphaMode:   v.alphaMode,
	})
}

func (v *viewport) AcquireFrame() (Frame, error) {
	tex, err := v.surface.GetCurrentTexture()
	if err != nil {
		if !errors.Is(err, common.ErrResourceLost) && !errors.Is(err, common.ErrOutOfMemory) && !errors.Is(err, common.ErrUnexpected) {
			err = fmt.Errorf("%w: %w", common.ErrUnexpected, err)
		}
		return nil, err
	}

	view, err := v.device.CreateTextureView(tex)
	if err != nil {
		v.device.Release(tex)
		return nil, fmt.Errorf("failed to create surface view: %w: %w", common.ErrUnexpected, err)
	}
	return &frame{device: v.device, surface: v.surface, texture: tex, view: view}, nil
}
