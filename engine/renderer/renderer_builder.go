package renderer

import (
	"github.com/Kuowrk/fragma/engine/renderer/registry"
)

// RendererBuilderOption is a functional option for configuring a Renderer.
type RendererBuilderOption func(*renderer)

// WithViewportOptions passes options through to the renderer's Viewport.
//
// Parameters:
//   - options: the viewport options
//
// Returns:
//   - RendererBuilderOption: a function that records the options
func WithViewportOptions(options ...ViewportBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.viewportOptions = append(r.viewportOptions, options...)
	}
}

// WithRegistryOptions passes options through to the renderer's resource registry.
//
// Parameters:
//   - options: the registry options
//
// Returns:
//   - RendererBuilderOption: a function that records the options
func WithRegistryOptions(options ...registry.RegistryBuilderOption) RendererBuilderOption {
	return func(r *renderer) {
		r.registryOptions = append(r.registryOptions, options...)
	}
}

// WithDrawConstantsCacheSize sets how many distinct draw-constant values keep their uniform buffer alive.
//
// Parameters:
//   - size: the cache capacity, at least 1
//
// Returns:
//   - RendererBuilderOption: a function that applies the size
func WithDrawConstantsCacheSize(size int) RendererBuilderOption {
	return func(r *renderer) {
		r.drawConstantsCache = size
	}
}
