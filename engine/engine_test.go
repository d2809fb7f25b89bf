package engine

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/config"
	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/renderer"
	"github.com/Kuowrk/fragma/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWindow drives the engine callbacks without a native window.
type fakeWindow struct {
	mu         sync.Mutex
	width      int
	height     int
	continuous bool
	closing    atomic.Bool
	closed     bool

	onUpdate    func()
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onRightDown func(x, y float32)
	onRightUp   func(x, y float32)
	onMove      func(x, y float32)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func())                     { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int))    { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(delta float32))        { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32))      { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(func(keyCode uint32))           {}
func (w *fakeWindow) SetRightMouseDownCallback(cb func(x, y float32)) { w.onRightDown = cb }
func (w *fakeWindow) SetRightMouseUpCallback(cb func(x, y float32))   { w.onRightUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y float32))      { w.onMove = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor      { return nil }
func (w *fakeWindow) IsRunning() bool                                 { return !w.closing.Load() }
func (w *fakeWindow) RequestClose()                                   { w.closing.Store(true) }
func (w *fakeWindow) Width() int                                      { return w.width }
func (w *fakeWindow) Height() int                                     { return w.height }

func (w *fakeWindow) SetContinuous(continuous bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.continuous = continuous
}

func (w *fakeWindow) Continuous() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.continuous
}

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

// ProcessMessages updates until close is requested, giving up after a few seconds.
func (w *fakeWindow) ProcessMessages() {
	deadline := time.Now().Add(5 * time.Second)
	for !w.closing.Load() && time.Now().Before(deadline) {
		if w.onUpdate != nil {
			w.onUpdate()
		}
		time.Sleep(time.Millisecond)
	}
}

type engineFixture struct {
	dev     *gputest.Device
	surface *gputest.Surface
	win     *fakeWindow
	e       *engine
}

func newEngineFixture(t *testing.T, options ...EngineBuilderOption) *engineFixture {
	t.Helper()
	dev := gputest.NewDevice()
	surface := gputest.NewSurface(dev, wgpu.TextureFormatRGBA8UnormSrgb)
	win := &fakeWindow{width: 800, height: 600}

	r, err := renderer.NewRenderer(dev, surface, 800, 600)
	require.NoError(t, err)

	e, err := newEngine(config.Default(), win, r, options...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return &engineFixture{dev: dev, surface: surface, win: win, e: e}
}

func TestNewEngineBuildsDefaultScene(t *testing.T) {
	f := newEngineFixture(t)

	assert.Len(t, f.e.Scene().RenderObjects(), 1)
	computes := f.e.Scene().ComputeObjects()
	require.Len(t, computes, 1)
	require.NotNil(t, computes[0].Output)
	assert.Equal(t, uint32(800), computes[0].Output.Width())

	assert.Equal(t, common.Vec3{0, 0, 5}, f.e.Camera().Position())
	assert.True(t, f.e.Redraw())
	assert.True(t, f.win.Continuous())
}

func TestUpdateRendersEveryIterationWhenRedrawing(t *testing.T) {
	f := newEngineFixture(t)

	f.e.update()
	f.e.update()
	assert.Equal(t, 2, f.surface.Presented)
}

func TestUpdateRendersOnDemand(t *testing.T) {
	f := newEngineFixture(t, WithRedraw(false))

	// the first frame is always drawn because the camera starts dirty
	f.e.update()
	assert.Equal(t, 1, f.surface.Presented)
	assert.False(t, f.win.Continuous())

	f.e.update()
	assert.Equal(t, 1, f.surface.Presented)

	f.win.onScroll(1)
	f.e.update()
	assert.Equal(t, 2, f.surface.Presented)
	assert.True(t, f.win.Continuous(), "an unsettled controller keeps the loop polling")
}

func TestResizeIsAppliedOnNextUpdate(t *testing.T) {
	f := newEngineFixture(t)

	f.win.onResize(0, 300)
	f.win.onResize(1024, 512)
	w, h := f.e.Renderer().Viewport().Size()
	assert.Equal(t, [2]uint32{800, 600}, [2]uint32{w, h})

	f.e.update()
	w, h = f.e.Renderer().Viewport().Size()
	assert.Equal(t, [2]uint32{1024, 512}, [2]uint32{w, h})
	assert.Equal(t, uint32(1024), f.surface.LastConfig().Width)

	out := f.e.Scene().ComputeObjects()[0].Output
	assert.Equal(t, uint32(1024), out.Width())
	assert.Equal(t, uint32(512), out.Height())
}

func TestRightDragRotatesCamera(t *testing.T) {
	f := newEngineFixture(t)
	before := f.e.Camera().Position()

	f.win.onMove(10, 10)
	f.e.update()
	assert.Equal(t, before, f.e.Camera().Position(), "moves without the button held are ignored")

	f.win.onRightDown(10, 10)
	f.win.onMove(110, 10)
	f.win.onRightUp(110, 10)
	assert.False(t, f.e.Controller().Rotating())

	f.e.lastUpdate = time.Now().Add(-50 * time.Millisecond)
	f.e.update()
	assert.NotEqual(t, before, f.e.Camera().Position())
}

func TestKeyBindings(t *testing.T) {
	f := newEngineFixture(t)

	f.win.onKeyDown(common.KeyR)
	assert.False(t, f.e.Redraw())
	assert.False(t, f.win.Continuous())
	f.win.onKeyDown(common.KeyR)
	assert.True(t, f.e.Redraw())

	f.win.onKeyDown(common.KeyV)
	assert.Equal(t, wgpu.PresentModeFifo, f.surface.LastConfig().PresentMode)
	f.win.onKeyDown(common.KeyV)
	assert.Equal(t, wgpu.PresentModeImmediate, f.surface.LastConfig().PresentMode)

	f.win.onKeyDown(common.KeyEsc)
	assert.True(t, f.win.closing.Load())
	assert.NoError(t, f.e.Run())
}

func TestRunReturnsFatalRenderError(t *testing.T) {
	f := newEngineFixture(t)
	f.surface.AcquireErrors = []error{common.ErrOutOfMemory}

	err := f.e.Run()
	assert.ErrorIs(t, err, common.ErrOutOfMemory)
	assert.True(t, f.win.closing.Load())
	assert.Equal(t, 0, f.surface.Presented)
}

func TestRunSkipsRecoverableFrames(t *testing.T) {
	f := newEngineFixture(t)
	f.surface.AcquireErrors = []error{common.ErrUnexpected}

	f.e.update()
	assert.Equal(t, 0, f.surface.Presented)
	f.e.update()
	assert.Equal(t, 1, f.surface.Presented)
}

func TestTickCallbackRunsUntilQuit(t *testing.T) {
	f := newEngineFixture(t, WithTickRate(500))

	var ticks atomic.Int32
	f.e.SetTickCallback(func(dt float32) {
		if ticks.Add(1) == 3 {
			f.e.Quit()
		}
	})
	var renders atomic.Int32
	f.e.SetRenderCallback(func(float32) {
		renders.Add(1)
	})

	require.NoError(t, f.e.Run())
	assert.GreaterOrEqual(t, ticks.Load(), int32(3))
	assert.Positive(t, renders.Load())
}

func TestTickInterval(t *testing.T) {
	assert.Equal(t, time.Second/60, tickInterval(0))
	assert.Equal(t, 10*time.Millisecond, tickInterval(100))
}
