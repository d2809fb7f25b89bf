package registry_test

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/gpu/gputest"
	"github.com/Kuowrk/fragma/engine/model"
	"github.com/Kuowrk/fragma/engine/renderer/registry"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T, options ...registry.RegistryBuilderOption) (*gputest.Device, registry.Registry) {
	t.Helper()
	dev := gputest.NewDevice()
	reg, err := registry.New(dev, 1600, 900, wgpu.TextureFormatBGRA8UnormSrgb, options...)
	require.NoError(t, err)
	return dev, reg
}

// firstIndex returns the position of the first op call carrying label.
func firstIndex(t *testing.T, dev *gputest.Device, op, label string) int {
	t.Helper()
	for i, c := range dev.Calls() {
		if c.Op == op && c.Label == label {
			return i
		}
	}
	t.Fatalf("no %s call labelled %q", op, label)
	return -1
}

func TestNewBuildsDefaultsInDependencyOrder(t *testing.T) {
	dev, reg := newRegistry(t)

	layout := firstIndex(t, dev, gputest.OpCreateBindGroupLayout, "draw constants Bind Group Layout")
	sampler := firstIndex(t, dev, gputest.OpCreateSampler, "nearest Sampler")
	material := dev.Index(gputest.OpCreateRenderPipeline, 0)
	compute := dev.Index(gputest.OpCreateComputePipeline, 0)
	triangle := firstIndex(t, dev, gputest.OpCreateBufferInit, "triangle Vertex Buffer")
	black := firstIndex(t, dev, gputest.OpCreateTexture, "black Texture")
	quad := firstIndex(t, dev, gputest.OpCreateBufferInit, "fullscreen quad Vertex Buffer")

	assert.Less(t, layout, sampler)
	assert.Less(t, sampler, material)
	assert.Less(t, material, compute)
	assert.Less(t, compute, triangle)
	assert.Less(t, triangle, black)
	assert.Less(t, black, quad)

	for _, name := range []string{registry.TextureBlack, registry.TextureWhite, registry.TextureComputeStorage} {
		assert.True(t, reg.HasTexture(name), name)
	}
	assert.True(t, reg.HasModel(registry.ModelTriangle))
	assert.True(t, reg.HasModel(registry.ModelQuad))
	assert.True(t, reg.HasRenderMaterial(registry.MaterialBasic))
	assert.True(t, reg.HasComputeMaterial(registry.MaterialBasicCompute))

	scale := reg.FullscreenQuad().Scale()
	assert.InDelta(t, 0.5625, scale[0], 1e-6)
	assert.InDelta(t, 1, scale[1], 1e-6)
}

func TestAccessorsReturnNotFound(t *testing.T) {
	_, reg := newRegistry(t)

	_, err := reg.Layout("missing")
	assert.EqualError(t, err, "Layout not found: missing")
	_, err = reg.Sampler("missing")
	assert.EqualError(t, err, "Sampler not found: missing")
	_, err = reg.RenderMaterial("missing")
	assert.EqualError(t, err, "Material not found: missing")
	_, err = reg.ComputeMaterial("missing")
	assert.EqualError(t, err, "Compute material not found: missing")
	_, err = reg.Model("missing")
	assert.EqualError(t, err, "Model not found: missing")
	_, err = reg.Texture("missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateRenderObjectValidationOrder(t *testing.T) {
	_, reg := newRegistry(t)

	_, err := reg.CreateRenderObject("missing", "missing", "missing")
	assert.EqualError(t, err, "Material not found: missing")
	_, err = reg.CreateRenderObject("basic", "missing", "missing")
	assert.EqualError(t, err, "Texture not found: missing")
	_, err = reg.CreateRenderObject("basic", "white", "missing")
	assert.EqualError(t, err, "Model not found: missing")

	obj, err := reg.CreateRenderObject("basic", "white", "quad")
	require.NoError(t, err)
	assert.NotEmpty(t, obj.ID)
	assert.Equal(t, "quad", obj.Model)

	cobj, err := reg.CreateComputeObject("basic compute")
	require.NoError(t, err)
	assert.Equal(t, registry.TextureComputeStorage, cobj.Texture)
}

func TestAddModelValidatesBeforeInsert(t *testing.T) {
	_, reg := newRegistry(t)

	indexed := model.TriangleMeshes()[0]
	unindexed := model.QuadMeshes()[0]
	err := reg.AddModel("mixed", []model.Mesh{indexed, unindexed})
	require.ErrorIs(t, err, common.ErrMalformed)
	assert.False(t, reg.HasModel("mixed"))

	require.NoError(t, reg.AddModel("pair", []model.Mesh{unindexed, unindexed}))
	m, err := reg.Model("pair")
	require.NoError(t, err)
	assert.Equal(t, uint32(12), m.VertexCount())
}

func TestAddReplacesAndReleasesOld(t *testing.T) {
	dev, reg := newRegistry(t)

	old, err := reg.Model(registry.ModelQuad)
	require.NoError(t, err)
	oldVertices := old.VertexBuffer()
	require.NotNil(t, oldVertices)
	require.NoError(t, reg.AddModel(registry.ModelQuad, model.QuadMeshes()))
	assert.Equal(t, 1, dev.Released(oldVertices))

	oldMat, err := reg.RenderMaterial(registry.MaterialBasic)
	require.NoError(t, err)
	oldPipeline := oldMat.Pipeline()
	require.NotNil(t, oldPipeline)
	src, err := shader.Embedded("basic.wgsl")
	require.NoError(t, err)
	require.NoError(t, reg.AddRenderMaterial(registry.MaterialBasic, src))
	assert.Equal(t, 1, dev.Released(oldPipeline))
}

func TestAddTextureFromImage(t *testing.T) {
	_, reg := newRegistry(t)

	img := common.ImageData{Pixels: make([]byte, 16), Width: 2, Height: 2}
	err := reg.AddTextureFromImage("checker", img, "missing")
	assert.EqualError(t, err, "Sampler not found: missing")
	assert.False(t, reg.HasTexture("checker"))

	require.NoError(t, reg.AddTextureFromImage("checker", img, registry.SamplerLinear))
	tex, err := reg.Texture("checker")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), tex.Width())
}

func TestTextureFilesDecodedAtInit(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c"} {
		path := filepath.Join(dir, name+".png")
		writePNG(t, path, 3, 2)
		files[name] = path
	}

	_, reg := newRegistry(t, registry.WithTextureFiles(files), registry.WithDecodeWorkers(2))
	for name := range files {
		tex, err := reg.Texture(name)
		require.NoError(t, err)
		assert.Equal(t, uint32(3), tex.Width())
		assert.Equal(t, uint32(2), tex.Height())
	}
}

func TestBadTextureFileFailsAndReleases(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))

	dev := gputest.NewDevice()
	_, err := registry.New(dev, 800, 600, wgpu.TextureFormatBGRA8UnormSrgb,
		registry.WithTextureFiles(map[string]string{"bad": bad}))
	require.ErrorIs(t, err, common.ErrMalformed)

	white := dev.CallsOf(gputest.OpCreateTexture)[1].Target
	assert.Equal(t, 1, dev.Released(white))
}

func TestReloadShader(t *testing.T) {
	dev, reg := newRegistry(t)

	_, err := reg.ReloadShader("unknown", shader.FromWGSL("unknown", ""))
	assert.ErrorIs(t, err, common.ErrNotFound)

	before := dev.Count(gputest.OpCreateComputePipeline)
	n, err := reg.ReloadShader("basic_compute", shader.FromWGSL("basic_compute", "@compute @workgroup_size(8, 8) fn main() {}"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, before+1, dev.Count(gputest.OpCreateComputePipeline))

	m, err := reg.ComputeMaterial(registry.MaterialBasicCompute)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{8, 8, 1}, m.WorkgroupSize())

	dev.FailNext(gputest.OpCreateRenderPipeline, assert.AnError)
	old, err := reg.RenderMaterial(registry.MaterialBasic)
	require.NoError(t, err)
	_, err = reg.ReloadShader("basic", shader.FromWGSL("basic", "broken"))
	require.ErrorIs(t, err, assert.AnError)
	kept, err := reg.RenderMaterial(registry.MaterialBasic)
	require.NoError(t, err)
	assert.Same(t, old, kept)
}

func TestReloadShaderKeepsRenderAndComputeSourcesApart(t *testing.T) {
	dev, reg := newRegistry(t)

	renderSrc, err := shader.Embedded("basic.wgsl")
	require.NoError(t, err)
	computeSrc := shader.FromWGSL("twin_cs", "@compute @workgroup_size(4, 4) fn main() {}")
	require.NoError(t, reg.AddRenderMaterial("twin", renderSrc))
	require.NoError(t, reg.AddComputeMaterial("twin", computeSrc))

	renders := dev.Count(gputest.OpCreateRenderPipeline)
	computes := dev.Count(gputest.OpCreateComputePipeline)
	n, err := reg.ReloadShader("twin_cs", computeSrc)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, renders, dev.Count(gputest.OpCreateRenderPipeline))
	assert.Equal(t, computes+1, dev.Count(gputest.OpCreateComputePipeline))

	n, err = reg.ReloadShader("basic", renderSrc)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "basic and twin render materials")
	assert.Equal(t, renders+2, dev.Count(gputest.OpCreateRenderPipeline))
}

func TestResizeFullscreenQuadIsStable(t *testing.T) {
	dev, reg := newRegistry(t)
	quad := reg.FullscreenQuad()

	require.NoError(t, reg.ResizeFullscreenQuad(1280, 720))
	first := dev.BufferData(quad.Model().VertexBuffer())
	require.NoError(t, reg.ResizeFullscreenQuad(1280, 720))
	assert.Equal(t, first, dev.BufferData(quad.Model().VertexBuffer()))

	require.NoError(t, reg.ResizeFullscreenQuad(0, 720))
	assert.Equal(t, first, dev.BufferData(quad.Model().VertexBuffer()))
}

func TestCreateStorageTextureIsUnregistered(t *testing.T) {
	_, reg := newRegistry(t)
	tex, err := reg.CreateStorageTexture(32, 16)
	require.NoError(t, err)
	assert.False(t, reg.HasTexture(tex.Label()))
	assert.Equal(t, uint32(32), tex.Width())
}

func TestReleaseReverseOrder(t *testing.T) {
	dev, reg := newRegistry(t)
	quad := reg.FullscreenQuad().Model().VertexBuffer()
	white, err := reg.Texture(registry.TextureWhite)
	require.NoError(t, err)
	whiteTex := white.Texture()
	layout, err := reg.Layout(registry.LayoutCamera)
	require.NoError(t, err)

	dev.Reset()
	reg.Release()

	quadAt := dev.Index(gputest.OpRelease, 0)
	require.GreaterOrEqual(t, quadAt, 0)
	assert.Equal(t, quad, dev.Calls()[quadAt].Target)

	var texAt, layoutAt int
	for i, c := range dev.Calls() {
		switch c.Target {
		case whiteTex:
			texAt = i
		case layout:
			layoutAt = i
		}
	}
	assert.Less(t, quadAt, texAt)
	assert.Less(t, texAt, layoutAt)
	assert.False(t, reg.HasTexture(registry.TextureWhite))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 80), G: uint8(y * 120), B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}
