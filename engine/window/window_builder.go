package window

// WindowBuilderOption is a functional option for configuring a Window.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title.
//
// Parameters:
//   - title: the title bar text
//
// Returns:
//   - WindowBuilderOption: a function that applies the title
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested window size. The framebuffer may differ on high-DPI displays.
//
// Parameters:
//   - width: requested width in screen coordinates
//   - height: requested height in screen coordinates
//
// Returns:
//   - WindowBuilderOption: a function that applies the size
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.width = width
		w.height = height
	}
}

// WithContinuous sets the initial event loop mode.
//
// Parameters:
//   - continuous: true to poll, false to block until the next event
//
// Returns:
//   - WindowBuilderOption: a function that applies the mode
func WithContinuous(continuous bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.continuous = continuous
	}
}
