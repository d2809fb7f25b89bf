// Package window opens the native window the renderer presents into and forwards its input events.
package window

import (
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is a native window with an event loop and input callbacks.
type Window interface {
	// SetUpdateCallback sets the function called once per event loop iteration.
	//
	// Parameters:
	//   - callback: function to call (or nil to disable)
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = away from the user)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code, comparable with the common.Key* constants
	SetKeyDownCallback(callback func(keyCode uint32))

	SetKeyUpCallback(callback func(keyCode uint32))

	// SetRightMouseDownCallback sets the callback for right mouse button presses.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in pixels
	SetRightMouseDownCallback(callback func(x, y float32))

	SetRightMouseUpCallback(callback func(x, y float32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position in pixels
	SetMouseMoveCallback(callback func(x, y float32))

	// SurfaceDescriptor returns the descriptor a WebGPU surface is created from.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// SetContinuous selects whether the event loop polls (continuous redraw) or blocks until the next event.
	//
	// Parameters:
	//   - continuous: true to poll
	SetContinuous(continuous bool)

	// Continuous reports whether the event loop polls.
	//
	// Returns:
	//   - bool: true when polling
	Continuous() bool

	IsRunning() bool

	// RequestClose makes ProcessMessages return after the current iteration.
	RequestClose()

	// Close destroys the native window.
	//
	// Returns:
	//   - error: error if the window was never created
	Close() error

	// ProcessMessages runs the event loop until the window closes, calling the update callback after
	// each batch of events.
	ProcessMessages()

	Width() int
	Height() int
}

type engineWindow struct {
	title string

	width  int
	height int

	continuous bool

	internalWindow any

	onUpdate         func()
	onResize         func(width, height int)
	onScroll         func(delta float32)
	onKeyDown        func(keyCode uint32)
	onKeyUp          func(keyCode uint32)
	onRightMouseDown func(x, y float32)
	onRightMouseUp   func(x, y float32)
	onMouseMove      func(x, y float32)
}

var _ Window = &engineWindow{}

// NewWindow creates the native window. The window starts in continuous mode.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:      "fragma",
		width:      1280,
		height:     720,
		continuous: true,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func()) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetRightMouseDownCallback(callback func(x, y float32)) {
	w.onRightMouseDown = callback
}

func (w *engineWindow) SetRightMouseUpCallback(callback func(x, y float32)) {
	w.onRightMouseUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y float32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) SetContinuous(continuous bool) {
	w.continuous = continuous
}

func (w *engineWindow) Continuous() bool {
	return w.continuous
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if succ := platformProcessMessages(w, w.continuous); !succ {
			break
		}

		if w.onUpdate != nil {
			w.onUpdate()
		}

		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
