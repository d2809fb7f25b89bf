package engine

import (
	"time"

	"github.com/Kuowrk/fragma/engine/profiler"
)

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables the profiler from the start.
//
// Parameters:
//   - enabled: true to log frame statistics
//
// Returns:
//   - EngineBuilderOption: a function that applies the setting
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfilerInterval sets how often frame statistics are logged.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - EngineBuilderOption: a function that applies the interval
func WithProfilerInterval(interval time.Duration) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = profiler.NewProfiler(profiler.WithInterval(interval))
	}
}

// WithTickRate sets the fixed rate of the tick callback.
//
// Parameters:
//   - fps: ticks per second; non-positive values select 60
//
// Returns:
//   - EngineBuilderOption: a function that applies the rate
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithRenderFrameLimit caps the update rate.
//
// Parameters:
//   - fps: maximum updates per second; non-positive values remove the cap
//
// Returns:
//   - EngineBuilderOption: a function that applies the cap
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithRedraw sets whether frames render continuously or only on input and resize.
//
// Parameters:
//   - enabled: true to render continuously
//
// Returns:
//   - EngineBuilderOption: a function that applies the mode
func WithRedraw(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.redraw = enabled
	}
}
