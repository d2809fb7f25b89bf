package shader

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives a reloaded shader together with the material name it maps to.
type ChangeFunc func(name string, src Source)

// watcher is the implementation of the Watcher interface.
type watcher struct {
	fs       *fsnotify.Watcher
	onChange ChangeFunc
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// Watcher reloads shader files from a directory as they are created or written.
type Watcher interface {
	// Close stops watching and waits for the event goroutine to exit.
	//
	// Returns:
	//   - error: error from closing the underlying notifier
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher starts watching dir for .wgsl and .spv files. Every successfully loaded file is passed
// to onChange from the watcher goroutine; load failures are logged and skipped.
//
// Parameters:
//   - dir: the directory to watch (not recursive)
//   - onChange: the callback for reloaded sources
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the directory cannot be watched
func NewWatcher(dir string, onChange ChangeFunc) (Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create shader watcher: %w", err)
	}
	if err := fsWatch.Add(dir); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("failed to watch shader directory %s: %w", dir, err)
	}

	w := &watcher{
		fs:       fsWatch,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isShaderFile(e.Name) {
				continue
			}
			src, err := LoadFile(e.Name)
			if err != nil {
				logger.Warnf("shader reload skipped: %v", err)
				continue
			}
			logger.Debugf("shader %s changed", e.Name)
			w.onChange(Name(e.Name), src)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warnf("shader watcher: %v", err)

		case <-w.done:
			return
		}
	}
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
	})
	return err
}

func isShaderFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wgsl", ".spv":
		return true
	default:
		return false
	}
}
