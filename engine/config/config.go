// Package config loads the application configuration from TOML.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Window     WindowConfig     `toml:"window"`
	Renderer   RendererConfig   `toml:"renderer"`
	Assets     AssetsConfig     `toml:"assets"`
	Camera     CameraConfig     `toml:"camera"`
	Controller ControllerConfig `toml:"controller"`
	Log        LogConfig        `toml:"log"`
	Profile    ProfileConfig    `toml:"profile"`
}

// WindowConfig configures the application window.
type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

// RendererConfig configures surface presentation and adapter selection.
type RendererConfig struct {
	VSync bool `toml:"vsync"`
	// ForceFallbackAdapter requests a software adapter. WGPU_FORCE_FALLBACK_ADAPTER=1 sets it as well.
	ForceFallbackAdapter bool `toml:"force_fallback_adapter"`
	// PowerPreference is "high", "low" or empty for the driver default.
	PowerPreference string     `toml:"power_preference"`
	Background      [4]float64 `toml:"background"`
}

// AssetsConfig names on-disk assets loaded in addition to the embedded defaults.
type AssetsConfig struct {
	// ShaderDir, when set, is watched for .wgsl/.spv changes that rebuild the material of the same name.
	ShaderDir string `toml:"shader_dir"`
	// Textures maps registry names to image files decoded at startup.
	Textures map[string]string `toml:"textures"`
}

// CameraConfig configures the initial camera.
type CameraConfig struct {
	FOVDegrees float32    `toml:"fov_degrees"`
	Near       float32    `toml:"near"`
	Far        float32    `toml:"far"`
	Position   [3]float32 `toml:"position"`
}

// ControllerConfig configures the smoothed orbit controller.
type ControllerConfig struct {
	RotateSpeed       float32 `toml:"rotate_speed"`
	RotateSensitivity float32 `toml:"rotate_sensitivity"`
	ZoomSpeed         float32 `toml:"zoom_speed"`
	ZoomSensitivity   float32 `toml:"zoom_sensitivity"`
	MaxPitchDegrees   float32 `toml:"max_pitch_degrees"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// ProfileConfig toggles profiling.
type ProfileConfig struct {
	// CPU enables a pprof CPU profile for the lifetime of the process.
	CPU bool `toml:"cpu"`
	// Stats enables periodic frame statistics in the log.
	Stats bool `toml:"stats"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the default configuration
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:  "fragma",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererConfig{
			VSync:      false,
			Background: [4]float64{0.1, 0.2, 0.3, 1.0},
		},
		Camera: CameraConfig{
			FOVDegrees: 60,
			Near:       0.1,
			Far:        100,
			Position:   [3]float32{0, 0, 5},
		},
		Controller: ControllerConfig{
			RotateSpeed:       10,
			RotateSensitivity: 2,
			ZoomSpeed:         4,
			ZoomSensitivity:   2,
			MaxPitchDegrees:   80,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a TOML file on top of Default, applies environment overrides and validates the result.
//
// Parameters:
//   - path: path of the TOML file
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the file cannot be read, parsed or fails validation
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML bytes on top of Default, applies environment overrides and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged configuration
//   - error: error if the document cannot be parsed or fails validation
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return Config{}, fmt.Errorf("failed to parse config at %d:%d: %w", row, col, err)
		}
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides following the wgpu conventions.
func (c *Config) ApplyEnv() {
	if os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1" {
		c.Renderer.ForceFallbackAdapter = true
	}
}

// Validate checks the configuration for values the renderer cannot work with.
//
// Returns:
//   - error: a description of the first invalid value, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Near >= c.Camera.Far {
		return fmt.Errorf("camera clip planes must satisfy 0 < near < far, got near=%g far=%g", c.Camera.Near, c.Camera.Far)
	}
	if c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180 {
		return fmt.Errorf("camera fov must be in (0, 180) degrees, got %g", c.Camera.FOVDegrees)
	}
	switch c.Renderer.PowerPreference {
	case "", "high", "low":
	default:
		return fmt.Errorf("unknown power preference %q", c.Renderer.PowerPreference)
	}
	return nil
}
