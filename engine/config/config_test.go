package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1.0}, cfg.Renderer.Background)
	assert.False(t, cfg.Renderer.VSync)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fragma.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[window]
title = "demo"

[renderer]
vsync = true

[assets]
shader_dir = "shaders"
textures = { tree = "assets/tree.png" }

[log]
level = "debug"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.True(t, cfg.Renderer.VSync)
	assert.Equal(t, "shaders", cfg.Assets.ShaderDir)
	assert.Equal(t, map[string]string{"tree": "assets/tree.png"}, cfg.Assets.Textures)
	assert.Equal(t, float32(60), cfg.Camera.FOVDegrees)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero width", "[window]\nwidth = 0"},
		{"near beyond far", "[camera]\nnear = 10.0\nfar = 1.0"},
		{"fov out of range", "[camera]\nfov_degrees = 190.0"},
		{"power preference", "[renderer]\npower_preference = \"turbo\""},
		{"syntax", "[window\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnvForcesFallback(t *testing.T) {
	t.Setenv("WGPU_FORCE_FALLBACK_ADAPTER", "1")
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, cfg.Renderer.ForceFallbackAdapter)
}
