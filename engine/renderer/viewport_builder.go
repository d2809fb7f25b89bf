package renderer

import "github.com/cogentcore/webgpu/wgpu"

// ViewportBuilderOption is a functional option for configuring a Viewport.
type ViewportBuilderOption func(*viewport)

// WithVSync selects PresentModeVSync when enabled.
//
// Parameters:
//   - enabled: true for vsync
//
// Returns:
//   - ViewportBuilderOption: a function that applies the present mode
func WithVSync(enabled bool) ViewportBuilderOption {
	return func(v *viewport) {
		if enabled {
			v.presentMode = PresentModeVSync
		}
	}
}

// WithBackground sets the clear color.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - ViewportBuilderOption: a function that applies the color
func WithBackground(c wgpu.Color) ViewportBuilderOption {
	return func(v *viewport) {
		v.background = c
	}
}
