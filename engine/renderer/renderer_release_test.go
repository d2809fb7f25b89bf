package renderer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockCheckingWatcher records whether the renderer lock was free when Close ran.
type lockCheckingWatcher struct {
	r        *renderer
	closed   int
	lockFree bool
}

func (w *lockCheckingWatcher) Close() error {
	w.closed++
	if w.r.mu.TryLock() {
		w.lockFree = true
		w.r.mu.Unlock()
	}
	return nil
}

func newTestRenderer(t *testing.T) *renderer {
	t.Helper()
	dev := gputest.NewDevice()
	r, err := NewRenderer(dev, gputest.NewSurface(dev), 64, 64)
	require.NoError(t, err)
	return r.(*renderer)
}

func TestReleaseClosesWatcherWithoutHoldingLock(t *testing.T) {
	r := newTestRenderer(t)
	w := &lockCheckingWatcher{r: r}
	r.watcher = w

	r.Release()
	assert.Equal(t, 1, w.closed)
	assert.True(t, w.lockFree, "a pending reload needs the lock to finish")
	assert.Nil(t, r.watcher)
}

func TestReleaseDuringPendingShaderReload(t *testing.T) {
	r := newTestRenderer(t)
	dir := t.TempDir()
	require.NoError(t, r.WatchShaders(dir))

	src, err := shader.Embedded("basic.wgsl")
	require.NoError(t, err)

	// a frame in progress holds the lock while the shader is saved
	r.mu.Lock()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.wgsl"), []byte(src.WGSL), 0o644))
	time.Sleep(100 * time.Millisecond)

	released := make(chan struct{})
	go func() {
		r.Release()
		close(released)
	}()
	time.Sleep(50 * time.Millisecond)
	r.mu.Unlock()

	select {
	case <-released:
	case <-time.After(5 * time.Second):
		t.Fatal("Release did not return while a shader reload was pending")
	}
	assert.Nil(t, r.watcher)
}
