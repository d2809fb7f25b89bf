// Package registry owns every GPU-resident resource of the renderer by name.
// It is the only place resources are created. Default resources are built once, in dependency order,
// when the registry is constructed.
package registry

import (
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/Kuowrk/fragma/engine/camera"
	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/Kuowrk/fragma/engine/model"
	"github.com/Kuowrk/fragma/engine/renderer/material"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/Kuowrk/fragma/engine/renderer/texture"
	"github.com/Kuowrk/fragma/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/google/uuid"
)

// Names of the resources every registry is constructed with.
const (
	LayoutSingleTexture  = "single texture"
	LayoutCamera         = "camera"
	LayoutComputeStorage = "compute storage"
	LayoutDrawConstants  = "draw constants"

	SamplerNearest = "nearest"
	SamplerLinear  = "linear"

	MaterialBasic        = "basic"
	MaterialBasicCompute = "basic compute"

	ModelTriangle = "triangle"
	ModelQuad     = "quad"

	TextureBlack          = "black"
	TextureWhite          = "white"
	TextureComputeStorage = scene.ComputeStorageTexture
)

// Reader is the read-only view of a Registry handed out by Guard.Read.
type Reader interface {
	scene.Resolver

	// Layout retrieves a bind group layout by name.
	//
	// Parameters:
	//   - name: the layout name
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	//   - error: a common.NotFoundError of kind "Layout" if absent
	Layout(name string) (*wgpu.BindGroupLayout, error)

	// Sampler retrieves a sampler by name.
	//
	// Parameters:
	//   - name: the sampler name
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler
	//   - error: a common.NotFoundError of kind "Sampler" if absent
	Sampler(name string) (*wgpu.Sampler, error)

	// RenderMaterial retrieves a render material by name.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Render: the material
	//   - error: a common.NotFoundError of kind "Material" if absent
	RenderMaterial(name string) (material.Render, error)

	// ComputeMaterial retrieves a compute material by name.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Compute: the material
	//   - error: a common.NotFoundError of kind "Compute material" if absent
	ComputeMaterial(name string) (material.Compute, error)

	// Model retrieves a model by name.
	//
	// Parameters:
	//   - name: the model name
	//
	// Returns:
	//   - model.Model: the model
	//   - error: a common.NotFoundError of kind "Model" if absent
	Model(name string) (model.Model, error)

	// Texture retrieves a texture by name.
	//
	// Parameters:
	//   - name: the texture name
	//
	// Returns:
	//   - texture.Texture: the texture
	//   - error: a common.NotFoundError of kind "Texture" if absent
	Texture(name string) (texture.Texture, error)

	// FullscreenQuad retrieves the aspect-corrected fullscreen quad.
	//
	// Returns:
	//   - model.FullscreenQuad: the quad
	FullscreenQuad() model.FullscreenQuad

	// SurfaceFormat returns the color format render materials target.
	//
	// Returns:
	//   - wgpu.TextureFormat: the surface format
	SurfaceFormat() wgpu.TextureFormat

	// CreateRenderObject validates the names and returns an unattached render object.
	// Names are checked material first, then texture, then model.
	//
	// Parameters:
	//   - material: render material name
	//   - texture: texture name
	//   - model: model name
	//
	// Returns:
	//   - scene.RenderObject: the object with a fresh ID
	//   - error: a common.NotFoundError for the first missing name
	CreateRenderObject(material, texture, model string) (scene.RenderObject, error)

	// CreateComputeObject validates the material and returns an unattached compute object bound to the
	// shared "compute storage" texture.
	//
	// Parameters:
	//   - material: compute material name
	//
	// Returns:
	//   - scene.ComputeObject: the object with a fresh ID
	//   - error: a common.NotFoundError if the material is absent
	CreateComputeObject(material string) (scene.ComputeObject, error)
}

// Registry owns all GPU objects by name. Mutating methods validate before they insert, so a failed call
// leaves the registry unchanged. Access from multiple goroutines goes through a Guard.
type Registry interface {
	Reader

	// AddModel builds a model from meshes and registers it, replacing and releasing any model of the same name.
	//
	// Parameters:
	//   - name: the model name
	//   - meshes: the meshes, uniformly indexed or uniformly unindexed
	//
	// Returns:
	//   - error: common.ErrMalformed for invalid meshes, or a creation error
	AddModel(name string, meshes []model.Mesh) error

	// AddTextureFromImage uploads img as a sampled sRGB texture bound with the named sampler.
	//
	// Parameters:
	//   - name: the texture name
	//   - img: RGBA8 pixels
	//   - sampler: name of a registered sampler
	//
	// Returns:
	//   - error: a common.NotFoundError for an unknown sampler, or a creation error
	AddTextureFromImage(name string, img common.ImageData, sampler string) error

	// AddRenderMaterial builds a render material with the standard layouts
	// [single texture, camera, draw constants] targeting the surface format.
	//
	// Parameters:
	//   - name: the material name
	//   - src: the shader source
	//   - options: functional options for entry points and pipeline state
	//
	// Returns:
	//   - error: error if the pipeline cannot be built
	AddRenderMaterial(name string, src shader.Source, options ...material.RenderBuilderOption) error

	// AddComputeMaterial builds a compute material with the layout [compute storage].
	//
	// Parameters:
	//   - name: the material name
	//   - src: the shader source
	//   - options: functional options for entry point and workgroup size
	//
	// Returns:
	//   - error: error if the pipeline cannot be built
	AddComputeMaterial(name string, src shader.Source, options ...material.ComputeBuilderOption) error

	// ReloadShader rebuilds every material that was built from the shader named name, keeping each
	// material's options. A material whose rebuild fails keeps its previous pipeline.
	//
	// Parameters:
	//   - name: the shader name, i.e. its file name without extension
	//   - src: the new source
	//
	// Returns:
	//   - int: the number of materials rebuilt
	//   - error: a common.NotFoundError if no material uses the shader, or the first rebuild error
	ReloadShader(name string, src shader.Source) (int, error)

	// ResizeFullscreenQuad rewrites the fullscreen quad's vertex buffer for a viewport size.
	//
	// Parameters:
	//   - width: viewport width in pixels
	//   - height: viewport height in pixels
	//
	// Returns:
	//   - error: error if the upload fails
	ResizeFullscreenQuad(width, height uint32) error

	// Release releases every resource in reverse construction order.
	Release()
}

type registry struct {
	mu     *sync.RWMutex
	device gpu.Device

	surfaceFormat wgpu.TextureFormat
	width, height uint32

	layouts          map[string]*wgpu.BindGroupLayout
	samplers         map[string]*wgpu.Sampler
	renderMaterials  map[string]material.Render
	computeMaterials map[string]material.Compute
	models           map[string]model.Model
	textures         map[string]texture.Texture
	fullscreenQuad   model.FullscreenQuad

	// renderSources and computeSources map material names to the shader they were built from, for hot reload
	renderSources  map[string]string
	computeSources map[string]string
	renderOptions  map[string][]material.RenderBuilderOption
	computeOptions map[string][]material.ComputeBuilderOption

	textureFiles  map[string]string
	decodeWorkers int
}

var _ Registry = &registry{}

// New creates a registry and builds every default resource in dependency order:
// bind group layouts, samplers, materials, models, default textures and configured texture files,
// then the fullscreen quad sized to the viewport. On failure everything built so far is released.
//
// Parameters:
//   - device: the device to create resources on
//   - width: viewport width in pixels
//   - height: viewport height in pixels
//   - surfaceFormat: the color format render materials target
//   - options: functional options to configure the registry
//
// Returns:
//   - Registry: the populated registry
//   - error: the first construction error
func New(device gpu.Device, width, height uint32, surfaceFormat wgpu.TextureFormat, options ...RegistryBuilderOption) (Registry, error) {
	r := &registry{
		mu:               &sync.RWMutex{},
		device:           device,
		surfaceFormat:    surfaceFormat,
		width:            width,
		height:           height,
		layouts:          make(map[string]*wgpu.BindGroupLayout),
		samplers:         make(map[string]*wgpu.Sampler),
		renderMaterials:  make(map[string]material.Render),
		computeMaterials: make(map[string]material.Compute),
		models:           make(map[string]model.Model),
		textures:         make(map[string]texture.Texture),
		renderSources:    make(map[string]string),
		computeSources:   make(map[string]string),
		renderOptions:    make(map[string][]material.RenderBuilderOption),
		computeOptions:   make(map[string][]material.ComputeBuilderOption),
		textureFiles:     make(map[string]string),
		decodeWorkers:    max(runtime.NumCPU()-1, 1),
	}
	for _, option := range options {
		option(r)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"bind group layouts", r.initLayouts},
		{"samplers", r.initSamplers},
		{"materials", r.initMaterials},
		{"models", r.initModels},
		{"textures", r.initTextures},
		{"fullscreen quad", r.initFullscreenQuad},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			r.Release()
			return nil, fmt.Errorf("failed to create registry %s: %w", step.name, err)
		}
		logger.Debugf("registry: created %s", step.name)
	}
	return r, nil
}

func (r *registry) initLayouts() error {
	layouts := []struct {
		name    string
		entries []wgpu.BindGroupLayoutEntry
	}{
		{LayoutSingleTexture, texture.SampledLayoutEntries()},
		{LayoutCamera, camera.LayoutEntries()},
		{LayoutComputeStorage, texture.StorageLayoutEntries()},
		{LayoutDrawConstants, material.DrawConstantsLayoutEntries()},
	}
	for _, l := range layouts {
		bgl, err := r.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   l.name + " Bind Group Layout",
			Entries: l.entries,
		})
		if err != nil {
			return fmt.Errorf("layout %q: %w", l.name, err)
		}
		r.layouts[l.name] = bgl
	}
	return nil
}

func (r *registry) initSamplers() error {
	samplers := []struct {
		name   string
		config common.SamplerConfig
	}{
		{SamplerNearest, common.SamplerConfig{}},
		{SamplerLinear, common.SamplerConfig{
			MagFilter:    wgpu.FilterModeLinear,
			MinFilter:    wgpu.FilterModeLinear,
			MipmapFilter: wgpu.MipmapFilterModeLinear,
		}},
	}
	for _, s := range samplers {
		sampler, err := r.device.CreateSampler(s.config.Descriptor(s.name + " Sampler"))
		if err != nil {
			return fmt.Errorf("sampler %q: %w", s.name, err)
		}
		r.samplers[s.name] = sampler
	}
	return nil
}

func (r *registry) initMaterials() error {
	src, err := shader.Embedded("basic.wgsl")
	if err != nil {
		return err
	}
	if err := r.addRenderMaterial(MaterialBasic, src); err != nil {
		return err
	}

	src, err = shader.Embedded("basic_compute.wgsl")
	if err != nil {
		return err
	}
	return r.addComputeMaterial(MaterialBasicCompute, src)
}

func (r *registry) initModels() error {
	if err := r.addModel(ModelTriangle, model.TriangleMeshes()); err != nil {
		return err
	}
	return r.addModel(ModelQuad, model.QuadMeshes())
}

func (r *registry) initTextures() error {
	single := r.layouts[LayoutSingleTexture]
	nearest := r.samplers[SamplerNearest]

	black, err := texture.NewSolid(r.device, TextureBlack, [4]byte{0, 0, 0, 255}, single, nearest)
	if err != nil {
		return err
	}
	r.textures[TextureBlack] = black

	white, err := texture.NewSolid(r.device, TextureWhite, [4]byte{255, 255, 255, 255}, single, nearest)
	if err != nil {
		return err
	}
	r.textures[TextureWhite] = white

	storage, err := texture.NewStorage(r.device, TextureComputeStorage, 1, 1, r.layouts[LayoutComputeStorage])
	if err != nil {
		return err
	}
	r.textures[TextureComputeStorage] = storage

	decoded, err := decodeTextureFiles(r.textureFiles, r.decodeWorkers)
	if err != nil {
		return err
	}
	for _, d := range decoded {
		if err := r.addTextureFromImage(d.name, d.img, SamplerLinear); err != nil {
			return err
		}
	}
	return nil
}

func (r *registry) initFullscreenQuad() error {
	quad, err := model.NewFullscreenQuad(r.device, "fullscreen quad")
	if err != nil {
		return err
	}
	r.fullscreenQuad = quad
	return quad.ResizeToViewport(r.width, r.height)
}

func (r *registry) Layout(name string) (*wgpu.BindGroupLayout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if l, ok := r.layouts[name]; ok {
		return l, nil
	}
	return nil, common.NewNotFound("Layout", name)
}

func (r *registry) Sampler(name string) (*wgpu.Sampler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.samplers[name]; ok {
		return s, nil
	}
	return nil, common.NewNotFound("Sampler", name)
}

func (r *registry) RenderMaterial(name string) (material.Render, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.renderMaterials[name]; ok {
		return m, nil
	}
	return nil, common.NewNotFound("Material", name)
}

func (r *registry) ComputeMaterial(name string) (material.Compute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.computeMaterials[name]; ok {
		return m, nil
	}
	return nil, common.NewNotFound("Compute material", name)
}

func (r *registry) Model(name string) (model.Model, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.models[name]; ok {
		return m, nil
	}
	return nil, common.NewNotFound("Model", name)
}

func (r *registry) Texture(name string) (texture.Texture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if t, ok := r.textures[name]; ok {
		return t, nil
	}
	return nil, common.NewNotFound("Texture", name)
}

func (r *registry) FullscreenQuad() model.FullscreenQuad {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fullscreenQuad
}

func (r *registry) SurfaceFormat() wgpu.TextureFormat {
	return r.surfaceFormat
}

func (r *registry) HasRenderMaterial(name string) bool {
	_, err := r.RenderMaterial(name)
	return err == nil
}

func (r *registry) HasComputeMaterial(name string) bool {
	_, err := r.ComputeMaterial(name)
	return err == nil
}

func (r *registry) HasTexture(name string) bool {
	_, err := r.Texture(name)
	return err == nil
}

func (r *registry) HasModel(name string) bool {
	_, err := r.Model(name)
	return err == nil
}

func (r *registry) CreateStorageTexture(width, height uint32) (texture.Texture, error) {
	layout, err := r.Layout(LayoutComputeStorage)
	if err != nil {
		return nil, err
	}
	return texture.NewStorage(r.device, "compute output "+uuid.NewString(), width, height, layout)
}

func (r *registry) CreateRenderObject(materialName, textureName, modelName string) (scene.RenderObject, error) {
	if _, err := r.RenderMaterial(materialName); err != nil {
		return scene.RenderObject{}, err
	}
	if _, err := r.Texture(textureName); err != nil {
		return scene.RenderObject{}, err
	}
	if _, err := r.Model(modelName); err != nil {
		return scene.RenderObject{}, err
	}
	return scene.RenderObject{
		ID:       uuid.NewString(),
		Material: materialName,
		Texture:  textureName,
		Model:    modelName,
	}, nil
}

func (r *registry) CreateComputeObject(materialName string) (scene.ComputeObject, error) {
	if _, err := r.ComputeMaterial(materialName); err != nil {
		return scene.ComputeObject{}, err
	}
	return scene.ComputeObject{
		ID:       uuid.NewString(),
		Material: materialName,
		Texture:  TextureComputeStorage,
	}, nil
}

func (r *registry) AddModel(name string, meshes []model.Mesh) error {
	return r.addModel(name, meshes)
}

func (r *registry) addModel(name string, meshes []model.Mesh) error {
	m, err := model.NewModel(r.device, name, meshes)
	if err != nil {
		return fmt.Errorf("model %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.models[name]; ok {
		old.Release()
	}
	r.models[name] = m
	return nil
}

func (r *registry) AddTextureFromImage(name string, img common.ImageData, sampler string) error {
	return r.addTextureFromImage(name, img, sampler)
}

func (r *registry) addTextureFromImage(name string, img common.ImageData, samplerName string) error {
	sampler, err := r.Sampler(samplerName)
	if err != nil {
		return err
	}
	layout, err := r.Layout(LayoutSingleTexture)
	if err != nil {
		return err
	}
	t, err := texture.NewSampled(r.device, name, img, wgpu.TextureFormatRGBA8UnormSrgb, layout, sampler)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.textures[name]; ok {
		old.Release()
	}
	r.textures[name] = t
	return nil
}

func (r *registry) AddRenderMaterial(name string, src shader.Source, options ...material.RenderBuilderOption) error {
	return r.addRenderMaterial(name, src, options...)
}

func (r *registry) addRenderMaterial(name string, src shader.Source, options ...material.RenderBuilderOption) error {
	layouts, err := r.layoutList(LayoutSingleTexture, LayoutCamera, LayoutDrawConstants)
	if err != nil {
		return err
	}
	m, err := material.NewRender(r.device, name, src, layouts, r.surfaceFormat,
		[]wgpu.VertexBufferLayout{model.VertexBufferLayout()}, options...)
	if err != nil {
		return fmt.Errorf("material %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.renderMaterials[name]; ok {
		old.Release()
	}
	r.renderMaterials[name] = m
	r.renderSources[name] = src.Label
	r.renderOptions[name] = options
	return nil
}

func (r *registry) AddComputeMaterial(name string, src shader.Source, options ...material.ComputeBuilderOption) error {
	return r.addComputeMaterial(name, src, options...)
}

func (r *registry) addComputeMaterial(name string, src shader.Source, options ...material.ComputeBuilderOption) error {
	layouts, err := r.layoutList(LayoutComputeStorage)
	if err != nil {
		return err
	}
	m, err := material.NewCompute(r.device, name, src, layouts, options...)
	if err != nil {
		return fmt.Errorf("compute material %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.computeMaterials[name]; ok {
		old.Release()
	}
	r.computeMaterials[name] = m
	r.computeSources[name] = src.Label
	r.computeOptions[name] = options
	return nil
}

func (r *registry) ReloadShader(name string, src shader.Source) (int, error) {
	r.mu.RLock()
	var renders, computes []string
	for materialName, source := range r.renderSources {
		if source == name {
			renders = append(renders, materialName)
		}
	}
	for materialName, source := range r.computeSources {
		if source == name {
			computes = append(computes, materialName)
		}
	}
	r.mu.RUnlock()

	if len(renders)+len(computes) == 0 {
		return 0, common.NewNotFound("Shader", name)
	}
	slices.Sort(renders)
	slices.Sort(computes)

	var firstErr error
	rebuilt := 0
	for _, materialName := range renders {
		r.mu.RLock()
		options := r.renderOptions[materialName]
		r.mu.RUnlock()
		if err := r.addRenderMaterial(materialName, src, options...); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rebuilt++
	}
	for _, materialName := range computes {
		r.mu.RLock()
		options := r.computeOptions[materialName]
		r.mu.RUnlock()
		if err := r.addComputeMaterial(materialName, src, options...); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		rebuilt++
	}
	return rebuilt, firstErr
}

func (r *registry) ResizeFullscreenQuad(width, height uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == 0 || height == 0 || r.fullscreenQuad == nil {
		return nil
	}
	r.width, r.height = width, height
	return r.fullscreenQuad.ResizeToViewport(width, height)
}

func (r *registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fullscreenQuad != nil {
		r.fullscreenQuad.Release()
		r.fullscreenQuad = nil
	}
	for _, name := range sortedKeys(r.textures) {
		r.textures[name].Release()
	}
	clear(r.textures)
	for _, name := range sortedKeys(r.models) {
		r.models[name].Release()
	}
	clear(r.models)
	for _, name := range sortedKeys(r.computeMaterials) {
		r.computeMaterials[name].Release()
	}
	clear(r.computeMaterials)
	for _, name := range sortedKeys(r.renderMaterials) {
		r.renderMaterials[name].Release()
	}
	clear(r.renderMaterials)
	for _, name := range sortedKeys(r.samplers) {
		r.device.Release(r.samplers[name])
	}
	clear(r.samplers)
	for _, name := range sortedKeys(r.layouts) {
		r.device.Release(r.layouts[name])
	}
	clear(r.layouts)
	clear(r.renderSources)
	clear(r.computeSources)
}

func (r *registry) layoutList(names ...string) ([]*wgpu.BindGroupLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, 0, len(names))
	for _, name := range names {
		l, err := r.Layout(name)
		if err != nil {
			return nil, err
		}
		layouts = append(layouts, l)
	}
	return layouts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
