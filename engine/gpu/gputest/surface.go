package gputest

import (
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Surface is a recording gpu.Surface whose acquisitions and presents are logged on the owning Device.
type Surface struct {
	dev *Device

	// Formats and AlphaModes are reported by Capabilities.
	Formats    []wgpu.TextureFormat
	AlphaModes []wgpu.CompositeAlphaMode

	// AcquireErrors are returned by successive GetCurrentTexture calls before acquisitions succeed.
	AcquireErrors []error

	// Configs holds every configuration applied, in order.
	Configs []wgpu.SurfaceConfiguration

	// Acquired is the texture handed out by the last successful acquisition.
	Acquired *wgpu.Texture

	Presented int
	Released  bool
}

var _ gpu.Surface = &Surface{}

// NewSurface creates a surface reporting the given formats, preferred first.
func NewSurface(dev *Device, formats ...wgpu.TextureFormat) *Surface {
	if len(formats) == 0 {
		formats = []wgpu.TextureFormat{wgpu.TextureFormatBGRA8UnormSrgb, wgpu.TextureFormatBGRA8Unorm}
	}
	return &Surface{
		dev:     dev,
		Formats: formats,
	}
}

// LastConfig returns the most recent configuration, or the zero value.
func (s *Surface) LastConfig() wgpu.SurfaceConfiguration {
	if len(s.Configs) == 0 {
		return wgpu.SurfaceConfiguration{}
	}
	return s.Configs[len(s.Configs)-1]
}

func (s *Surface) Capabilities() gpu.SurfaceCapabilities {
	return gpu.SurfaceCapabilities{Formats: s.Formats, AlphaModes: s.AlphaModes}
}

func (s *Surface) Configure(cfg *wgpu.SurfaceConfiguration) {
	_ = s.dev.record(Call{Op: OpConfigureSurface, Args: []any{*cfg}})
	s.Configs = append(s.Configs, *cfg)
}

func (s *Surface) GetCurrentTexture() (*wgpu.Texture, error) {
	if len(s.AcquireErrors) > 0 {
		err := s.AcquireErrors[0]
		s.AcquireErrors = s.AcquireErrors[1:]
		_ = s.dev.record(Call{Op: OpAcquireSurface, Args: []any{err}})
		return nil, err
	}

	cfg := s.LastConfig()
	tex := new(wgpu.Texture)
	_ = s.dev.record(Call{Op: OpAcquireSurface, Target: tex})
	s.dev.TrackTexture(tex, Texture{
		Label:  "Surface Texture",
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: cfg.Format,
		Usage:  cfg.Usage,
	})
	s.Acquired = tex
	return tex, nil
}

func (s *Surface) Present() {
	_ = s.dev.record(Call{Op: OpPresent, Target: s.Acquired})
	s.Presented++
}

func (s *Surface) Release() {
	s.Released = true
}
