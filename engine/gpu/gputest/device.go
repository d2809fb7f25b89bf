// Package gputest provides a recording, in-memory implementation of gpu.Device and gpu.Surface.
// Every call is appended to an ordered log, buffer contents are tracked through writes and submitted
// copies, and failures can be injected per operation.
package gputest

import (
	"fmt"
	"sync"

	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Operation names recorded in the call log.
const (
	OpCreateBuffer          = "CreateBuffer"
	OpCreateBufferInit      = "CreateBufferInit"
	OpCreateTexture         = "CreateTexture"
	OpCreateTextureView     = "CreateTextureView"
	OpCreateSampler         = "CreateSampler"
	OpCreateBindGroupLayout = "CreateBindGroupLayout"
	OpCreateBindGroup       = "CreateBindGroup"
	OpCreatePipelineLayout  = "CreatePipelineLayout"
	OpCreateShaderModule    = "CreateShaderModule"
	OpCreateRenderPipeline  = "CreateRenderPipeline"
	OpCreateComputePipeline = "CreateComputePipeline"
	OpWriteBuffer           = "WriteBuffer"
	OpWriteTexture          = "WriteTexture"
	OpCreateCommandEncoder  = "CreateCommandEncoder"
	OpBeginComputePass      = "BeginComputePass"
	OpSetComputePipeline    = "SetComputePipeline"
	OpSetComputeBindGroup   = "SetComputeBindGroup"
	OpDispatchWorkgroups    = "DispatchWorkgroups"
	OpEndComputePass        = "EndComputePass"
	OpCopyBufferToBuffer    = "CopyBufferToBuffer"
	OpCopyTextureToTexture  = "CopyTextureToTexture"
	OpBeginRenderPass       = "BeginRenderPass"
	OpSetRenderPipeline     = "SetRenderPipeline"
	OpSetBindGroup          = "SetBindGroup"
	OpSetVertexBuffer       = "SetVertexBuffer"
	OpSetIndexBuffer        = "SetIndexBuffer"
	OpDraw                  = "Draw"
	OpDrawIndexed           = "DrawIndexed"
	OpEndRenderPass         = "EndRenderPass"
	OpFinish                = "Finish"
	OpSubmit                = "Submit"
	OpReleaseEncoder        = "ReleaseEncoder"
	OpRelease               = "Release"
	OpConfigureSurface      = "ConfigureSurface"
	OpAcquireSurface        = "AcquireSurfaceTexture"
	OpPresent               = "Present"
)

// Call is one recorded operation.
type Call struct {
	// Op is the operation name, one of the Op* constants.
	Op string
	// Label is the debug label passed with the call, if any.
	Label string
	// Target is the primary GPU object created or acted upon.
	Target any
	// Args holds the remaining call arguments in order.
	Args []any
}

// Buffer is the tracked state of a created buffer.
type Buffer struct {
	Label string
	Size  uint64
	Usage wgpu.BufferUsage
	Data  []byte
	// Uploads counts queue writes and submitted copies that landed in this buffer.
	Uploads int
}

// Texture is the tracked state of a created or acquired texture.
type Texture struct {
	Label  string
	Width  uint32
	Height uint32
	Format wgpu.TextureFormat
	Usage  wgpu.TextureUsage
}

// Device is a recording gpu.Device. The zero value is not usable; create one with NewDevice.
type Device struct {
	mu       sync.Mutex
	calls    []Call
	buffers  map[*wgpu.Buffer]*Buffer
	textures map[*wgpu.Texture]*Texture
	views    map[*wgpu.TextureView]*wgpu.Texture
	released map[any]int
	pending  map[*wgpu.CommandBuffer][]func()
	failures map[string]error
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{
		buffers:  make(map[*wgpu.Buffer]*Buffer),
		textures: make(map[*wgpu.Texture]*Texture),
		views:    make(map[*wgpu.TextureView]*wgpu.Texture),
		released: make(map[any]int),
		pending:  make(map[*wgpu.CommandBuffer][]func()),
		failures: make(map[string]error),
	}
}

// FailNext makes the next call of op return err instead of succeeding.
func (d *Device) FailNext(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[op] = err
}

// Calls returns a copy of the call log.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Ops returns the operation names of the call log in order.
func (d *Device) Ops() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Op
	}
	return out
}

// CallsOf returns every recorded call of the given operation.
func (d *Device) CallsOf(op string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times op was recorded.
func (d *Device) Count(op string) int {
	return len(d.CallsOf(op))
}

// Index returns the position of the first recorded op at or after from, or -1.
func (d *Device) Index(op string, from int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := from; i < len(d.calls); i++ {
		if d.calls[i].Op == op {
			return i
		}
	}
	return -1
}

// Reset clears the call log but keeps tracked objects.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

// Buffer returns the tracked state of buf, or nil if it was not created by this device.
func (d *Device) Buffer(buf *wgpu.Buffer) *Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buffers[buf]
}

// BufferData returns a copy of the current contents of buf.
func (d *Device) BufferData(buf *wgpu.Buffer) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[buf]
	if !ok {
		return nil
	}
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// BufferByLabel returns the first tracked buffer handle with the given label.
func (d *Device) BufferByLabel(label string) *wgpu.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	for h, b := range d.buffers {
		if b.Label == label {
			return h
		}
	}
	return nil
}

// Texture returns the tracked state of tex, or nil.
func (d *Device) Texture(tex *wgpu.Texture) *Texture {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.textures[tex]
}

// Released reports how many times r was released.
func (d *Device) Released(r any) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.released[r]
}

// TrackTexture registers an externally created texture, e.g. one acquired from a Surface.
func (d *Device) TrackTexture(tex *wgpu.Texture, state Texture) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := state
	d.textures[tex] = &s
}

func (d *Device) record(c Call) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, c)
	if err, ok := d.failures[c.Op]; ok {
		delete(d.failures, c.Op)
		return err
	}
	return nil
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	buf := new(wgpu.Buffer)
	if err := d.record(Call{Op: OpCreateBuffer, Label: desc.Label, Target: buf}); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.buffers[buf] = &Buffer{Label: desc.Label, Size: desc.Size, Usage: desc.Usage, Data: make([]byte, desc.Size)}
	d.mu.Unlock()
	return buf, nil
}

func (d *Device) CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error) {
	buf := new(wgpu.Buffer)
	if err := d.record(Call{Op: OpCreateBufferInit, Label: desc.Label, Target: buf}); err != nil {
		return nil, err
	}
	data := make([]byte, len(desc.Contents))
	copy(data, desc.Contents)
	d.mu.Lock()
	d.buffers[buf] = &Buffer{Label: desc.Label, Size: uint64(len(data)), Usage: desc.Usage, Data: data}
	d.mu.Unlock()
	return buf, nil
}

func (d *Device) CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error) {
	tex := new(wgpu.Texture)
	if err := d.record(Call{Op: OpCreateTexture, Label: desc.Label, Target: tex, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	d.TrackTexture(tex, Texture{
		Label:  desc.Label,
		Width:  desc.Size.Width,
		Height: desc.Size.Height,
		Format: desc.Format,
		Usage:  desc.Usage,
	})
	return tex, nil
}

func (d *Device) CreateTextureView(tex *wgpu.Texture) (*wgpu.TextureView, error) {
	view := new(wgpu.TextureView)
	if err := d.record(Call{Op: OpCreateTextureView, Target: view, Args: []any{tex}}); err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.views[view] = tex
	d.mu.Unlock()
	return view, nil
}

func (d *Device) CreateSampler(desc *wgpu.SamplerDescriptor) (*wgpu.Sampler, error) {
	s := new(wgpu.Sampler)
	if err := d.record(Call{Op: OpCreateSampler, Label: desc.Label, Target: s, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Device) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	l := new(wgpu.BindGroupLayout)
	if err := d.record(Call{Op: OpCreateBindGroupLayout, Label: desc.Label, Target: l, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return l, nil
}

func (d *Device) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	bg := new(wgpu.BindGroup)
	if err := d.record(Call{Op: OpCreateBindGroup, Label: desc.Label, Target: bg, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return bg, nil
}

func (d *Device) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	l := new(wgpu.PipelineLayout)
	if err := d.record(Call{Op: OpCreatePipelineLayout, Label: desc.Label, Target: l, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return l, nil
}

func (d *Device) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	m := new(wgpu.ShaderModule)
	if err := d.record(Call{Op: OpCreateShaderModule, Label: desc.Label, Target: m, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *Device) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	p := new(wgpu.RenderPipeline)
	if err := d.record(Call{Op: OpCreateRenderPipeline, Label: desc.Label, Target: p, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Device) CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error) {
	p := new(wgpu.ComputePipeline)
	if err := d.record(Call{Op: OpCreateComputePipeline, Label: desc.Label, Target: p, Args: []any{*desc}}); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Device) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	if err := d.record(Call{Op: OpWriteBuffer, Target: buf, Args: []any{offset, len(data)}}); err != nil {
		return err
	}
	return d.apply(buf, offset, data)
}

func (d *Device) WriteTexture(dst *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error {
	return d.record(Call{Op: OpWriteTexture, Target: dst.Texture, Args: []any{len(data), *layout, *size}})
}

func (d *Device) CreateCommandEncoder(label string) (gpu.Encoder, error) {
	enc := &Encoder{dev: d, label: label}
	if err := d.record(Call{Op: OpCreateCommandEncoder, Label: label, Target: enc}); err != nil {
		return nil, err
	}
	return enc, nil
}

func (d *Device) Submit(cmd *wgpu.CommandBuffer) {
	_ = d.record(Call{Op: OpSubmit, Target: cmd})

	d.mu.Lock()
	ops := d.pending[cmd]
	delete(d.pending, cmd)
	d.mu.Unlock()

	for _, op := range ops {
		op()
	}
}

func (d *Device) Release(r gpu.Releaser) {
	_ = d.record(Call{Op: OpRelease, Target: r})
	d.mu.Lock()
	d.released[r]++
	d.mu.Unlock()
}

// apply writes data into the tracked buffer, failing on out-of-range writes like the real validation layer.
func (d *Device) apply(buf *wgpu.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.buffers[buf]
	if !ok {
		return fmt.Errorf("write to unknown buffer %p", buf)
	}
	if offset+uint64(len(data)) > b.Size {
		return fmt.Errorf("write of %d bytes at %d overflows buffer %q of size %d", len(data), offset, b.Label, b.Size)
	}
	copy(b.Data[offset:], data)
	b.Uploads++
	return nil
}

// Encoder is the recording gpu.Encoder created by Device.CreateCommandEncoder.
type Encoder struct {
	dev      *Device
	label    string
	pending  []func()
	finished bool
}

var _ gpu.Encoder = &Encoder{}

func (e *Encoder) BeginComputePass(label string) gpu.ComputePass {
	_ = e.dev.record(Call{Op: OpBeginComputePass, Label: label})
	return &ComputePass{dev: e.dev}
}

func (e *Encoder) BeginRenderPass(desc *wgpu.RenderPassDescriptor) gpu.RenderPass {
	_ = e.dev.record(Call{Op: OpBeginRenderPass, Label: desc.Label, Args: []any{*desc}})
	return &RenderPass{dev: e.dev}
}

func (e *Encoder) CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64) {
	_ = e.dev.record(Call{Op: OpCopyBufferToBuffer, Target: dst, Args: []any{src, srcOffset, dstOffset, size}})
	e.pending = append(e.pending, func() {
		e.dev.mu.Lock()
		s, ok := e.dev.buffers[src]
		var data []byte
		if ok && srcOffset+size <= uint64(len(s.Data)) {
			data = make([]byte, size)
			copy(data, s.Data[srcOffset:srcOffset+size])
		}
		e.dev.mu.Unlock()
		if data != nil {
			_ = e.dev.apply(dst, dstOffset, data)
		}
	})
}

func (e *Encoder) CopyTextureToTexture(src, dst *wgpu.Texture, width, height uint32) {
	_ = e.dev.record(Call{Op: OpCopyTextureToTexture, Target: dst, Args: []any{src, width, height}})
}

func (e *Encoder) Finish() (*wgpu.CommandBuffer, error) {
	cmd := new(wgpu.CommandBuffer)
	if err := e.dev.record(Call{Op: OpFinish, Label: e.label, Target: cmd}); err != nil {
		return nil, err
	}
	e.finished = true
	e.dev.mu.Lock()
	e.dev.pending[cmd] = e.pending
	e.dev.mu.Unlock()
	e.pending = nil
	return cmd, nil
}

func (e *Encoder) Release() {
	_ = e.dev.record(Call{Op: OpReleaseEncoder, Label: e.label, Target: e})
}

// Finished reports whether Finish succeeded on this encoder.
func (e *Encoder) Finished() bool {
	return e.finished
}

// ComputePass is the recording gpu.ComputePass.
type ComputePass struct {
	dev *Device
}

func (p *ComputePass) SetPipeline(pl *wgpu.ComputePipeline) {
	_ = p.dev.record(Call{Op: OpSetComputePipeline, Target: pl})
}

func (p *ComputePass) SetBindGroup(index uint32, bg *wgpu.BindGroup) {
	_ = p.dev.record(Call{Op: OpSetComputeBindGroup, Target: bg, Args: []any{index}})
}

func (p *ComputePass) DispatchWorkgroups(x, y, z uint32) {
	_ = p.dev.record(Call{Op: OpDispatchWorkgroups, Args: []any{x, y, z}})
}

func (p *ComputePass) End() {
	_ = p.dev.record(Call{Op: OpEndComputePass})
}

// RenderPass is the recording gpu.RenderPass.
type RenderPass struct {
	dev *Device
}

func (p *RenderPass) SetPipeline(pl *wgpu.RenderPipeline) {
	_ = p.dev.record(Call{Op: OpSetRenderPipeline, Target: pl})
}

func (p *RenderPass) SetBindGroup(index uint32, bg *wgpu.BindGroup) {
	_ = p.dev.record(Call{Op: OpSetBindGroup, Target: bg, Args: []any{index}})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buf *wgpu.Buffer) {
	_ = p.dev.record(Call{Op: OpSetVertexBuffer, Target: buf, Args: []any{slot}})
}

func (p *RenderPass) SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat) {
	_ = p.dev.record(Call{Op: OpSetIndexBuffer, Target: buf, Args: []any{format}})
}

func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	_ = p.dev.record(Call{Op: OpDraw, Args: []any{vertexCount, instanceCount, firstVertex, firstInstance}})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	_ = p.dev.record(Call{Op: OpDrawIndexed, Args: []any{indexCount, instanceCount, firstIndex, baseVertex, firstInstance}})
}

func (p *RenderPass) End() {
	_ = p.dev.record(Call{Op: OpEndRenderPass})
}
