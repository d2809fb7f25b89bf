// Package renderer drives one frame at a time: compute dispatches into storage textures, copies of
// their outputs onto the surface, then a single render pass over the scene's render objects.
package renderer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/camera"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/Kuowrk/fragma/engine/renderer/registry"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/Kuowrk/fragma/engine/scene"
)

type renderer struct {
	mu *sync.Mutex

	device   gpu.Device
	viewport Viewport
	guard    registry.Guard
	registry registry.Registry

	drawConstants *drawConstantsCache
	watcher       shader.Watcher

	// warnedCopies holds compute object IDs whose incompatible surface copy was already reported
	warnedCopies map[string]struct{}

	viewportOptions    []ViewportBuilderOption
	registryOptions    []registry.RegistryBuilderOption
	drawConstantsCache int
}

// Renderer owns the viewport and the resource registry and renders a scene through a camera.
type Renderer interface {
	// Viewport returns the surface viewport.
	//
	// Returns:
	//   - Viewport: the viewport
	Viewport() Viewport

	// Registry returns the guard through which the resource registry is borrowed.
	//
	// Returns:
	//   - registry.Guard: the registry guard
	Registry() registry.Guard

	// CreateCamera creates a camera whose bind group targets the registry's camera layout.
	//
	// Parameters:
	//   - options: functional options to configure the camera
	//
	// Returns:
	//   - camera.Camera: the new camera
	//   - error: error if the camera resources cannot be created
	CreateCamera(options ...camera.CameraBuilderOption) (camera.Camera, error)

	// CreateScene creates an empty scene that validates names against the registry.
	//
	// Returns:
	//   - scene.Scene: the new scene
	CreateScene() scene.Scene

	// Resize reconfigures the surface and rewrites the fullscreen quad. A zero dimension is ignored.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//
	// Returns:
	//   - error: error if the registry is borrowed or the quad upload fails
	Resize(width, height uint32) error

	// SetVSync switches the present mode.
	//
	// Parameters:
	//   - enabled: true for vsync
	SetVSync(enabled bool)

	// WatchShaders rebuilds materials whenever a shader file in dir changes.
	// A later call replaces the previous watcher.
	//
	// Parameters:
	//   - dir: the directory holding .wgsl and .spv files
	//
	// Returns:
	//   - error: error if the directory cannot be watched
	WatchShaders(dir string) error

	// Render records and presents one frame of scn as seen through cam.
	// A lost surface is reconfigured and retried once. Errors matching common.IsFatal mean the caller
	// should stop rendering; other acquisition failures skip the frame and return nil.
	//
	// Parameters:
	//   - cam: the camera
	//   - scn: the scene
	//
	// Returns:
	//   - error: a fatal acquisition error, a NotFoundError for an unresolvable object, or an encoding error
	Render(cam camera.Camera, scn scene.Scene) error

	// Release stops the shader watcher and releases every resource the renderer owns.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer configures the surface and builds the resource registry.
//
// Parameters:
//   - device: the device to render with
//   - surface: the presentable surface
//   - width: initial width in pixels
//   - height: initial height in pixels
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the ready renderer
//   - error: error if the viewport or registry cannot be created
func NewRenderer(device gpu.Device, surface gpu.Surface, width, height uint32, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:                 &sync.Mutex{},
		device:             device,
		warnedCopies:       make(map[string]struct{}),
		drawConstantsCache: 8,
	}
	for _, option := range options {
		option(r)
	}

	vp, err := NewViewport(device, surface, width, height, r.viewportOptions...)
	if err != nil {
		return nil, err
	}
	r.viewport = vp

	reg, err := registry.New(device, width, height, vp.Format(), r.registryOptions...)
	if err != nil {
		return nil, err
	}
	r.registry = reg
	r.guard = registry.NewGuard(reg)

	cache, err := newDrawConstantsCache(device, r.drawConstantsCache)
	if err != nil {
		reg.Release()
		return nil, err
	}
	r.drawConstants = cache
	return r, nil
}

func (r *renderer) Viewport() Viewport {
	return r.viewport
}

func (r *renderer) Registry() registry.Guard {
	return r.guard
}

func (r *renderer) CreateCamera(options ...camera.CameraBuilderOption) (camera.Camera, error) {
	var cam camera.Camera
	err := r.guard.Read(func(reg registry.Reader) error {
		layout, err := reg.Layout(registry.LayoutCamera)
		if err != nil {
			return err
		}
		cam, err = camera.NewCamera(r.device, layout, options...)
		return err
	})
	return cam, err
}

func (r *renderer) CreateScene() scene.Scene {
	return scene.NewScene(r.guard.Resolver())
}

func (r *renderer) Resize(width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.viewport.Resize(width, height) {
		return nil
	}
	return r.guard.Write(func(reg registry.Registry) error {
		return reg.ResizeFullscreenQuad(width, height)
	})
}

func (r *renderer) SetVSync(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.viewport.SetVSync(enabled)
}

func (r *renderer) WatchShaders(dir string) error {
	w, err := shader.NewWatcher(dir, r.reloadShader)
	if err != nil {
		return err
	}

	r.mu.Lock()
	old := r.watcher
	r.watcher = w
	r.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	logger.Infof("watching shaders in %s", dir)
	return nil
}

// reloadShader runs on the watcher goroutine. Holding mu keeps it between frames.
func (r *renderer) reloadShader(name string, src shader.Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.guard.Write(func(reg registry.Registry) error {
		n, err := reg.ReloadShader(name, src)
		if n > 0 {
			logger.Infof("reloaded shader %q into %d materials", name, n)
		}
		return err
	})
	switch {
	case errors.Is(err, common.ErrNotFound):
		logger.Debugf("shader %q is not used by any material", name)
	case err != nil:
		logger.Errorf("failed to reload shader %q: %v", name, err)
	}
}

func (r *renderer) Render(cam camera.Camera, scn scene.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	frame, err := r.acquire()
	if err != nil {
		if common.IsFatal(err) {
			return err
		}
		logger.Warnf("skipping frame: %v", err)
		return nil
	}

	var plan *framePlan
	err = r.guard.Read(func(reg registry.Reader) error {
		var err error
		plan, err = r.plan(reg, cam, scn)
		return err
	})
	if err != nil {
		frame.Release()
		return fmt.Errorf("failed to prepare frame: %w", err)
	}

	if err := r.record(frame, plan); err != nil {
		frame.Release()
		return err
	}
	frame.Present()
	return nil
}

// acquire acquires the next frame, reconfiguring and retrying once if the surface was lost.
func (r *renderer) acquire() (Frame, error) {
	frame, err := r.viewport.AcquireFrame()
	if errors.Is(err, common.ErrResourceLost) {
		logger.Warnf("surface lost, reconfiguring: %v", err)
		r.viewport.Reconfigure()
		frame, err = r.viewport.AcquireFrame()
	}
	return frame, err
}

func (r *renderer) Release() {
	r.mu.Lock()
	w := r.watcher
	r.watcher = nil
	r.mu.Unlock()

	// Close waits for an in-flight reloadShader, which needs mu.
	if w != nil {
		if err := w.Close(); err != nil {
			logger.Warnf("failed to close shader watcher: %v", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drawConstants != nil {
		r.drawConstants.Purge()
	}
	if r.registry != nil {
		r.registry.Release()
	}
}
