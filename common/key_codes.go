package common

// Virtual key codes for input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR   = 82  // R key (ASCII), toggles continuous redraw
	KeyV   = 86  // V key (ASCII), toggles vsync
	KeyEsc = 256 // Escape key (GLFW)
)

// Mouse buttons reported by the window layer.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
