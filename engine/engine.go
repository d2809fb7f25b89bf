// Package engine wires a window, a GPU context, the renderer and an orbit camera into an interactive loop.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/camera"
	"github.com/Kuowrk/fragma/engine/config"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/Kuowrk/fragma/engine/profiler"
	"github.com/Kuowrk/fragma/engine/renderer"
	"github.com/Kuowrk/fragma/engine/renderer/registry"
	"github.com/Kuowrk/fragma/engine/scene"
	"github.com/Kuowrk/fragma/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window     window.Window
	context    *gpu.Context
	renderer   renderer.Renderer
	camera     camera.Camera
	controller camera.CameraController
	scene      scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate   time.Duration
	tickCallback     func(deltaTime float32)
	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	// redraw renders every loop iteration; when false frames are rendered only after input or a resize
	redraw        bool
	needsFrame    bool
	pendingResize *[2]uint32
	cursor        [2]float32
	lastUpdate    time.Time
	fatal         error
}

// Engine is the interactive application: it owns the window loop and renders the scene every update.
type Engine interface {
	Window() window.Window
	Renderer() renderer.Renderer
	Camera() camera.Camera
	Controller() camera.CameraController
	Scene() scene.Scene

	// EnableProfiler starts logging frame statistics each profiler interval.
	EnableProfiler()

	// DisableProfiler stops logging frame statistics.
	DisableProfiler()

	// SetTickRate sets the fixed rate of the tick callback.
	//
	// Parameters:
	//   - fps: ticks per second; non-positive values select 60
	SetTickRate(fps float64)

	// SetTickCallback sets the function called at the fixed tick rate on its own goroutine.
	//
	// Parameters:
	//   - callback: function receiving the elapsed time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback sets the function called after every update on the window goroutine.
	//
	// Parameters:
	//   - callback: function receiving the elapsed time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit caps the update rate.
	//
	// Parameters:
	//   - fps: maximum updates per second; non-positive values remove the cap
	SetRenderFrameLimit(fps float64)

	// SetRedraw selects between rendering every iteration and rendering only on input or resize.
	//
	// Parameters:
	//   - enabled: true to render continuously
	SetRedraw(enabled bool)

	Redraw() bool

	// Run runs the window loop until the window closes or a fatal render error occurs.
	//
	// Returns:
	//   - error: the fatal render error, if any
	Run() error

	// Quit stops the loop after the current iteration.
	Quit()

	// Release releases the scene, camera, renderer, GPU context and window.
	Release()
}

var _ Engine = &engine{}

// NewEngine opens the window, acquires the GPU and builds the renderer, camera, controller and demo scene
// from cfg.
//
// Parameters:
//   - cfg: a validated configuration
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the ready engine
//   - error: error if any platform or GPU resource cannot be created
func NewEngine(cfg config.Config, options ...EngineBuilderOption) (Engine, error) {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return nil, err
	}

	ctx, err := gpu.NewContext(win.SurfaceDescriptor(),
		gpu.WithForceFallbackAdapter(cfg.Renderer.ForceFallbackAdapter),
		gpu.WithPowerPreference(gpu.PowerPreference(cfg.Renderer.PowerPreference)),
	)
	if err != nil {
		_ = win.Close()
		return nil, err
	}

	bg := cfg.Renderer.Background
	r, err := renderer.NewRenderer(ctx.Device(), ctx.Surface(), uint32(win.Width()), uint32(win.Height()),
		renderer.WithViewportOptions(
			renderer.WithVSync(cfg.Renderer.VSync),
			renderer.WithBackground(wgpu.Color{R: bg[0], G: bg[1], B: bg[2], A: bg[3]}),
		),
		renderer.WithRegistryOptions(registry.WithTextureFiles(cfg.Assets.Textures)),
	)
	if err != nil {
		ctx.Release()
		_ = win.Close()
		return nil, err
	}

	e, err := newEngine(cfg, win, r, options...)
	if err != nil {
		r.Release()
		ctx.Release()
		_ = win.Close()
		return nil, err
	}
	e.context = ctx

	if cfg.Assets.ShaderDir != "" {
		if err := r.WatchShaders(cfg.Assets.ShaderDir); err != nil {
			logger.Warnf("shader hot reload disabled: %v", err)
		}
	}
	return e, nil
}

// newEngine builds the camera, controller and scene on an existing window and renderer and installs
// the window callbacks.
func newEngine(cfg config.Config, win window.Window, r renderer.Renderer, options ...EngineBuilderOption) (*engine, error) {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		window:          win,
		renderer:        r,
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
		redraw:          true,
		lastUpdate:      time.Now(),
	}
	for _, opt := range options {
		opt(e)
	}

	cam, err := r.CreateCamera(
		camera.WithPosition(common.Vec3(cfg.Camera.Position)),
		camera.WithFOV(common.DegToRad(cfg.Camera.FOVDegrees)),
		camera.WithClipPlanes(cfg.Camera.Near, cfg.Camera.Far),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}
	e.camera = cam
	e.controller = camera.NewCameraController(cam,
		camera.WithRotationSmoothing(cfg.Controller.RotateSpeed),
		camera.WithRotationSensitivity(cfg.Controller.RotateSensitivity),
		camera.WithZoomSmoothing(cfg.Controller.ZoomSpeed),
		camera.WithZoomSensitivity(cfg.Controller.ZoomSensitivity),
		camera.WithMaxPitch(cfg.Controller.MaxPitchDegrees),
	)

	e.scene = r.CreateScene()
	if err := e.populateScene(uint32(win.Width()), uint32(win.Height())); err != nil {
		e.scene.Release()
		cam.Release()
		return nil, err
	}

	e.installCallbacks()
	win.SetContinuous(e.redraw)
	return e, nil
}

// populateScene adds the default content: a textured quad and a compute pass writing a window-sized texture.
func (e *engine) populateScene(width, height uint32) error {
	if _, err := e.scene.AddRenderObject(registry.MaterialBasic, registry.TextureWhite, registry.ModelQuad); err != nil {
		return fmt.Errorf("failed to add render object: %w", err)
	}
	if _, err := e.scene.AddComputeObjectWithOutputTexture(registry.MaterialBasicCompute, width, height); err != nil {
		return fmt.Errorf("failed to add compute object: %w", err)
	}
	return nil
}

func (e *engine) installCallbacks() {
	e.window.SetResizeCallback(func(width, height int) {
		e.mu.Lock()
		defer e.mu.Unlock()
		if width <= 0 || height <= 0 {
			return
		}
		e.pendingResize = &[2]uint32{uint32(width), uint32(height)}
		e.needsFrame = true
	})
	e.window.SetScrollCallback(func(delta float32) {
		e.controller.Zoom(delta)
		e.requestFrame()
	})
	e.window.SetRightMouseDownCallback(func(x, y float32) {
		e.mu.Lock()
		e.cursor = [2]float32{x, y}
		e.mu.Unlock()
		e.controller.BeginRotate()
	})
	e.window.SetRightMouseUpCallback(func(_, _ float32) {
		e.controller.EndRotate()
	})
	e.window.SetMouseMoveCallback(func(x, y float32) {
		e.mu.Lock()
		prev := e.cursor
		e.cursor = [2]float32{x, y}
		e.mu.Unlock()
		if e.controller.Rotating() {
			e.controller.Rotate(x-prev[0], y-prev[1])
			e.requestFrame()
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyEsc:
			e.Quit()
		case common.KeyR:
			e.SetRedraw(!e.Redraw())
			logger.Infof("continuous redraw: %t", e.Redraw())
		case common.KeyV:
			vsync := e.renderer.Viewport().PresentMode() != renderer.PresentModeVSync
			e.renderer.SetVSync(vsync)
			logger.Infof("vsync: %t", vsync)
			e.requestFrame()
		}
	})
	e.window.SetUpdateCallback(e.update)
}

func (e *engine) requestFrame() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.needsFrame = true
}

// update runs once per window loop iteration on the window goroutine.
func (e *engine) update() {
	now := time.Now()
	e.mu.Lock()
	dt := float32(now.Sub(e.lastUpdate).Seconds())
	e.lastUpdate = now
	resize := e.pendingResize
	e.pendingResize = nil
	e.mu.Unlock()

	if resize != nil {
		e.applyResize(resize[0], resize[1])
	}

	width, height := e.renderer.Viewport().Size()
	e.controller.Update(dt, float32(width), float32(height))
	settled := e.controller.Settled()

	e.mu.Lock()
	draw := e.redraw || e.needsFrame || !settled || e.camera.Dirty()
	e.needsFrame = false
	continuous := e.redraw || !settled
	e.mu.Unlock()
	e.window.SetContinuous(continuous)

	if draw {
		if err := e.renderer.Render(e.camera, e.scene); err != nil {
			if common.IsFatal(err) {
				logger.Errorf("fatal render error, closing: %v", err)
				e.mu.Lock()
				e.fatal = err
				e.mu.Unlock()
				e.Quit()
				return
			}
			logger.Errorf("render failed: %v", err)
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(dt)
	}
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

func (e *engine) applyResize(width, height uint32) {
	if err := e.renderer.Resize(width, height); err != nil {
		logger.Errorf("failed to resize renderer to %dx%d: %v", width, height, err)
		return
	}
	if err := e.scene.ResizeComputeOutputTextures(width, height); err != nil {
		logger.Errorf("failed to resize compute outputs to %dx%d: %v", width, height, err)
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) Controller() camera.CameraController {
	return e.controller
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Run() error {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()

	if e.tickCallback != nil {
		e.wg.Add(1)
		go e.handleTick()
	}
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	return e.fatal
}

func (e *engine) Quit() {
	e.signalQuit()
	e.window.RequestClose()
}

func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) handleTick() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()
	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.tickCallback(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
		}
	}
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickRate(fps float64) {
	newRate := tickInterval(fps)

	e.mu.Lock()
	running := e.running
	e.engineTickRate = newRate
	e.mu.Unlock()
	if !running {
		return
	}
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func tickInterval(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) SetRedraw(enabled bool) {
	e.mu.Lock()
	e.redraw = enabled
	e.needsFrame = true
	e.mu.Unlock()
	e.window.SetContinuous(enabled)
}

func (e *engine) Redraw() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redraw
}

func (e *engine) Release() {
	if e.scene != nil {
		e.scene.Release()
	}
	if e.camera != nil {
		e.camera.Release()
	}
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.context != nil {
		e.context.Release()
	}
	if e.window != nil {
		if err := e.window.Close(); err != nil {
			logger.Debugf("window close: %v", err)
		}
	}
}
