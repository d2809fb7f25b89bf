package gpu

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Kuowrk/fragma/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuDevice implements Device on top of a cogentcore/webgpu device and queue.
type wgpuDevice struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ Device = &wgpuDevice{}

// NewWGPUDevice wraps a wgpu device and its queue.
//
// Parameters:
//   - device: the logical device
//   - queue: the device queue
//
// Returns:
//   - Device: the wrapped device
func NewWGPUDevice(device *wgpu.Device, queue *wgpu.Queue) Device {
	return &wgpuDevice{
		mu:     &sync.Mutex{},
		device: device,
		queue:  queue,
	}
}

func (d *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	return d.device.CreateBuffer(desc)
}

func (d *wgpuDevice) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	return d.device.CreateBufferInit(desc)
}

func (d *wgpuDevice) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error) {
	return d.device.CreateTexture(desc)
}

func (d *wgpuDevice) CreateTextureView(tex *wgpu.Texture) (*wgpu.TextureView, error) {
	return tex.CreateView(nil)
}

func (d *wgpuDevice) CreateSampler(desc *wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	return d.device.CreateSampler(desc)
}

func (d *wgpuDevice) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return d.device.CreateBindGroupLayout(desc)
}

func (d *wgpuDevice) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return d.device.CreateBindGroup(desc)
}

func (d *wgpuDevice) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	return d.device.CreatePipelineLayout(desc)
}

func (d *wgpuDevice) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	return d.device.CreateShaderModule(desc)
}

func (d *wgpuDevice) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return d.device.CreateRenderPipeline(desc)
}

func (d *wgpuDevice) CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error) {
	return d.device.CreateComputePipeline(desc)
}

func (d *wgpuDevice) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.queue.WriteBuffer(buf, offset, data)
}

func (d *wgpuDevice) WriteTexture(dst *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queue.WriteTexture(dst, data, layout, size)
	return nil
}

func (d *wgpuDevice) CreateCommandEncoder(label string) (Encoder, error) {
	enc, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("failed to create command encoder %q: %w", label, err)
	}
	return &wgpuEncoder{encoder: enc}, nil
}

func (d *wgpuDevice) Submit(cmd *wgpu.CommandBuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.queue.Submit(cmd)
	cmd.Release()
}

func (d *wgpuDevice) Release(r Releaser) {
	r.Release()
}

// wgpuEncoder implements Encoder on a wgpu.CommandEncoder.
type wgpuEncoder struct {
	encoder *wgpu.CommandEncoder
}

var _ Encoder = &wgpuEncoder{}

func (e *wgpuEncoder) BeginComputePass(label string) ComputePass {
	return &wgpuComputePass{pass: e.encoder.BeginComputePass(&wgpu.ComputePassDescriptor{Label: label})}
}

func (e *wgpuEncoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) RenderPass {
	return &wgpuRenderPass{pass: e.encoder.BeginRenderPass(desc)}
}

func (e *wgpuEncoder) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64) {
	e.encoder.CopyBufferToBuffer(src, srcOffset, dst, dstOffset, size)
}

func (e *wgpuEncoder) CopyTextureToTexture(src, dst *wgpu.Texture, width, height uint32) {
	e.encoder.CopyTextureToTexture(
		&wgpu.ImageCopyTexture{
			Texture:  src,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.ImageCopyTexture{
			Texture:  dst,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)
}

func (e *wgpuEncoder) Finish() (*wgpu.CommandBuffer, error) {
	return e.encoder.Finish(nil)
}

func (e *wgpuEncoder) Release() {
	e.encoder.Release()
}

type wgpuComputePass struct {
	pass *wgpu.ComputePassEncoder
}

func (p *wgpuComputePass) SetPipeline(pl *wgpu.ComputePipeline) {
	p.pass.SetPipeline(pl)
}

func (p *wgpuComputePass) SetBindGroup(index uint32, bg *wgpu.BindGroup) {
	p.pass.SetBindGroup(index, bg, nil)
}

func (p *wgpuComputePass) DispatchWorkgroups(x, y, z uint32) {
	p.pass.DispatchWorkgroups(x, y, z)
}

func (p *wgpuComputePass) End() {
	p.pass.End()
}

type wgpuRenderPass struct {
	pass *wgpu.RenderPassEncoder
}

func (p *wgpuRenderPass) SetPipeline(pl *wgpu.RenderPipeline) {
	p.pass.SetPipeline(pl)
}

func (p *wgpuRenderPass) SetBindGroup(index uint32, bg *wgpu.BindGroup) {
	p.pass.SetBindGroup(index, bg, nil)
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, buf *wgpu.Buffer) {
	p.pass.SetVertexBuffer(slot, buf, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat) {
	p.pass.SetIndexBuffer(buf, format, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *wgpuRenderPass) End() {
	p.pass.End()
}

// wgpuSurface implements Surface on a wgpu.Surface bound to an adapter and device.
type wgpuSurface struct {
	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device
}

var _ Surface = &wgpuSurface{}

func (s *wgpuSurface) Capabilities() SurfaceCapabilities {
	caps := s.surface.GetCapabilities(s.adapter)
	return SurfaceCapabilities{
		Formats:    caps.Formats,
		AlphaModes: caps.AlphaModes,
	}
}

func (s *wgpuSurface) Configure(cfg *wgpu.SurfaceConfiguration) {
	s.surface.Configure(s.adapter, s.device, cfg)
}

func (s *wgpuSurface) GetCurrentTexture() (*wgpu.Texture, error) {
	tex, err := s.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifySurfaceError(err)
	}
	return tex, nil
}

func (s *wgpuSurface) Present() {
	s.surface.Present()
}

func (s *wgpuSurface) Release() {
	s.surface.Release()
}

// classifySurfaceError maps a surface acquisition failure onto the common error taxonomy.
// The binding reports the acquisition status only through the error text.
func classifySurfaceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "lost"), strings.Contains(msg, "outdated"):
		return fmt.Errorf("failed to acquire surface texture: %w: %w", common.ErrResourceLost, err)
	case strings.Contains(msg, "outofmemory"), strings.Contains(msg, "out of memory"):
		return fmt.Errorf("failed to acquire surface texture: %w: %w", common.ErrOutOfMemory, err)
	default:
		return fmt.Errorf("failed to acquire surface texture: %w: %w", common.ErrUnexpected, err)
	}
}
