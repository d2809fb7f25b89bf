// Package material builds render and compute pipelines from shader sources.
// Materials are immutable once created; a changed shader produces a new material.
package material

import (
	"fmt"

	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/renderer/pipeline"
	"github.com/Kuowrk/fragma/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultWorkgroupSize is used by compute materials whose shader declares no workgroup size.
var DefaultWorkgroupSize = [3]uint32{16, 16, 1}

// renderMaterial is the implementation of the Render interface.
type renderMaterial struct {
	device         gpu.Device
	label          string
	vertexEntry    string
	fragmentEntry  string
	state          pipeline.State
	stateOptions   []pipeline.StateBuilderOption
	layouts        []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.RenderPipeline
}

// Render is a render pipeline with the bind group layouts it was created against.
type Render interface {
	// Label retrieves the debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Pipeline retrieves the render pipeline.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline
	Pipeline() *wgpu.RenderPipeline

	// Layout retrieves the pipeline layout.
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the pipeline layout
	Layout() *wgpu.PipelineLayout

	// BindGroupLayouts retrieves the bind group layouts, indexed by group.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: the layouts
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// State retrieves the fixed-function state.
	//
	// Returns:
	//   - pipeline.State: the state
	State() pipeline.State

	// Release releases the pipeline and its layout. Bind group layouts are borrowed and not released.
	Release()
}

var _ Render = &renderMaterial{}

// NewRender creates a render pipeline from a shader containing both the vertex and fragment entries.
//
// Parameters:
//   - device: the device to create on
//   - label: debug label
//   - src: the shader source
//   - layouts: bind group layouts indexed by group
//   - targetFormat: the color attachment format
//   - vertexLayouts: vertex buffer layouts indexed by slot
//   - options: builder options
//
// Returns:
//   - Render: the created material
//   - error: error if module, layout or pipeline creation fails
func NewRender(device gpu.Device, label string, src shader.Source, layouts []*wgpu.BindGroupLayout, targetFormat wgpu.TextureFormat, vertexLayouts []wgpu.VertexBufferLayout, options ...RenderBuilderOption) (Render, error) {
	m := &renderMaterial{
		device:        device,
		label:         label,
		vertexEntry:   "vs_main",
		fragmentEntry: "fs_main",
		layouts:       layouts,
	}
	for _, opt := range options {
		opt(m)
	}
	m.state = pipeline.NewState(m.stateOptions...)

	module, err := device.CreateShaderModule(src.Descriptor())
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module for material %q: %w", label, err)
	}
	defer device.Release(module)

	m.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout for material %q: %w", label, err)
	}

	m.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label + " Render Pipeline",
		Layout: m.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: m.vertexEntry,
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: m.fragmentEntry,
			Targets:    []wgpu.ColorTargetState{m.state.ColorTarget(targetFormat)},
		},
		Primitive: m.state.Primitive(),
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: m.state.DepthStencil(),
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to create render pipeline for material %q: %w", label, err)
	}
	return m, nil
}

func (m *renderMaterial) Label() string {
	return m.label
}

func (m *renderMaterial) Pipeline() *wgpu.RenderPipeline {
	return m.pipeline
}

func (m *renderMaterial) Layout() *wgpu.PipelineLayout {
	return m.pipelineLayout
}

func (m *renderMaterial) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return m.layouts
}

func (m *renderMaterial) State() pipeline.State {
	return m.state
}

func (m *renderMaterial) Release() {
	if m.pipeline != nil {
		m.device.Release(m.pipeline)
		m.pipeline = nil
	}
	if m.pipelineLayout != nil {
		m.device.Release(m.pipelineLayout)
		m.pipelineLayout = nil
	}
}

// computeMaterial is the implementation of the Compute interface.
type computeMaterial struct {
	device         gpu.Device
	label          string
	entryPoint     string
	workgroupSize  [3]uint32
	sizeOverride   bool
	layouts        []*wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	pipeline       *wgpu.ComputePipeline
}

// Compute is a compute pipeline with its workgroup size.
type Compute interface {
	// Label retrieves the debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Pipeline retrieves the compute pipeline.
	//
	// Returns:
	//   - *wgpu.ComputePipeline: the pipeline
	Pipeline() *wgpu.ComputePipeline

	// Layout retrieves the pipeline layout.
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the pipeline layout
	Layout() *wgpu.PipelineLayout

	// BindGroupLayouts retrieves the bind group layouts, indexed by group.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: the layouts
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// WorkgroupSize returns the workgroup dimensions the shader runs with.
	//
	// Returns:
	//   - [3]uint32: the workgroup size as [x, y, z]
	WorkgroupSize() [3]uint32

	// DispatchSize computes the workgroup counts covering a width x height output.
	//
	// Parameters:
	//   - width: output width in texels
	//   - height: output height in texels
	//
	// Returns:
	//   - [3]uint32: ceil(width/x), ceil(height/y), 1
	DispatchSize(width, height uint32) [3]uint32

	// Release releases the pipeline and its layout. Bind group layouts are borrowed and not released.
	Release()
}

var _ Compute = &computeMaterial{}

// NewCompute creates a compute pipeline. The workgroup size comes from WithWorkgroupSize, otherwise from
// the WGSL @workgroup_size of the first compute entry, otherwise DefaultWorkgroupSize.
//
// Parameters:
//   - device: the device to create on
//   - label: debug label
//   - src: the shader source
//   - layouts: bind group layouts indexed by group
//   - options: builder options
//
// Returns:
//   - Compute: the created material
//   - error: error if module, layout or pipeline creation fails
func NewCompute(device gpu.Device, label string, src shader.Source, layouts []*wgpu.BindGroupLayout, options ...ComputeBuilderOption) (Compute, error) {
	m := &computeMaterial{
		device:        device,
		label:         label,
		entryPoint:    "main",
		workgroupSize: DefaultWorkgroupSize,
		layouts:       layouts,
	}
	for _, opt := range options {
		opt(m)
	}
	if !m.sizeOverride && src.Kind == shader.KindWGSL {
		if size, ok := shader.ParseWorkgroupSize(src.WGSL); ok {
			m.workgroupSize = size
		}
	}

	module, err := device.CreateShaderModule(src.Descriptor())
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module for compute material %q: %w", label, err)
	}
	defer device.Release(module)

	m.pipelineLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout for compute material %q: %w", label, err)
	}

	m.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label + " Compute Pipeline",
		Layout: m.pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     module,
			EntryPoint: m.entryPoint,
		},
	})
	if err != nil {
		m.Release()
		return nil, fmt.Errorf("failed to create compute pipeline for material %q: %w", label, err)
	}
	return m, nil
}

func (m *computeMaterial) Label() string {
	return m.label
}

func (m *computeMaterial) Pipeline() *wgpu.ComputePipeline {
	return m.pipeline
}

func (m *computeMaterial) Layout() *wgpu.PipelineLayout {
	return m.pipelineLayout
}

func (m *computeMaterial) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return m.layouts
}

func (m *computeMaterial) WorkgroupSize() [3]uint32 {
	return m.workgroupSize
}

func (m *computeMaterial) DispatchSize(width, height uint32) [3]uint32 {
	return [3]uint32{
		ceilDiv(width, m.workgroupSize[0]),
		ceilDiv(height, m.workgroupSize[1]),
		1,
	}
}

func (m *computeMaterial) Release() {
	if m.pipeline != nil {
		m.device.Release(m.pipeline)
		m.pipeline = nil
	}
	if m.pipelineLayout != nil {
		m.device.Release(m.pipelineLayout)
		m.pipelineLayout = nil
	}
}

func ceilDiv(n, d uint32) uint32 {
	if d == 0 {
		return n
	}
	return (n + d - 1) / d
}
