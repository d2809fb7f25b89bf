package shader_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkgroupSize(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want [3]uint32
	}{
		{"full", "@compute @workgroup_size(16, 16, 1)\nfn main() {}", [3]uint32{16, 16, 1}},
		{"one dimension", "@compute @workgroup_size(64) fn main() {}", [3]uint32{64, 1, 1}},
		{"attribute first", "@workgroup_size(8, 4)\n@compute\nfn main() {}", [3]uint32{8, 4, 1}},
		{"commented out", "// @compute @workgroup_size(32)\n@compute @workgroup_size(2, 2) fn main() {}", [3]uint32{2, 2, 1}},
		{"no compute entry", "@vertex fn vs_main() {}", [3]uint32{1, 1, 1}},
		{
			"first compute entry wins",
			"@compute @workgroup_size(4) fn a() {}\n@compute @workgroup_size(9, 9) fn b() {}",
			[3]uint32{4, 1, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shader.WorkgroupSize(tt.src))
		})
	}
}

func TestEmbeddedShaders(t *testing.T) {
	basic, err := shader.Embedded("basic.wgsl")
	require.NoError(t, err)
	assert.Equal(t, "basic", basic.Label)
	assert.Contains(t, basic.WGSL, "fn vs_main")
	assert.Contains(t, basic.WGSL, "fn fs_main")

	compute, err := shader.Embedded("basic_compute.wgsl")
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{16, 16, 1}, shader.WorkgroupSize(compute.WGSL))

	_, err = shader.Embedded("missing.wgsl")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoadFileDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	wgslPath := filepath.Join(dir, "glow.wgsl")
	spvPath := filepath.Join(dir, "glow.spv")
	badSpvPath := filepath.Join(dir, "short.spv")
	glslPath := filepath.Join(dir, "glow.glsl")
	require.NoError(t, os.WriteFile(wgslPath, []byte("@fragment fn fs_main() {}"), 0o644))
	require.NoError(t, os.WriteFile(spvPath, []byte{0x03, 0x02, 0x23, 0x07}, 0o644))
	require.NoError(t, os.WriteFile(badSpvPath, []byte{0x03, 0x02, 0x23}, 0o644))
	require.NoError(t, os.WriteFile(glslPath, []byte("void main() {}"), 0o644))

	src, err := shader.LoadFile(wgslPath)
	require.NoError(t, err)
	assert.Equal(t, shader.KindWGSL, src.Kind)
	assert.Equal(t, "glow", src.Label)
	assert.NotNil(t, src.Descriptor().WGSLDescriptor)

	src, err = shader.LoadFile(spvPath)
	require.NoError(t, err)
	assert.Equal(t, shader.KindSPIRV, src.Kind)
	assert.Nil(t, src.Descriptor().WGSLDescriptor)

	_, err = shader.LoadFile(badSpvPath)
	assert.ErrorIs(t, err, common.ErrMalformed)

	_, err = shader.LoadFile(glslPath)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestWatcherReportsWrittenShaders(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan string, 16)
	w, err := shader.NewWatcher(dir, func(name string, src shader.Source) {
		changes <- name + ":" + src.WGSL
	})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.wgsl"), []byte("// v2"), 0o644))

	// a create event may be seen before the content lands
	timeout := time.After(5 * time.Second)
	for got := ""; got != "basic:// v2"; {
		select {
		case got = <-changes:
			assert.NotContains(t, got, "notes")
		case <-timeout:
			t.Fatal("no shader change reported")
		}
	}

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
