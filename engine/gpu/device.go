// Package gpu is the thin seam between the renderer and the WebGPU device. All resource creation, queue
// writes and command recording go through the Device interface so the orchestration code can run against
// a recording fake (see gputest) as well as a real wgpu device.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Releaser is implemented by every wgpu object that owns native resources.
type Releaser interface {
	Release()
}

// Device creates GPU objects, writes to the queue and records command buffers.
type Device interface {
	// CreateBuffer allocates an uninitialized GPU buffer.
	//
	// Parameters:
	//   - desc: the buffer descriptor (label, size, usage)
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: error if allocation fails
	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)

	// CreateBufferInit allocates a GPU buffer initialized with the descriptor contents.
	//
	// Parameters:
	//   - desc: the buffer descriptor including the initial contents
	//
	// Returns:
	//   - *wgpu.Buffer: the created buffer
	//   - error: error if allocation fails
	CreateBufferInit(desc *wgpu.BufferInitDescriptor) (*wgpu.Buffer, error)

	// CreateTexture allocates a GPU texture.
	//
	// Parameters:
	//   - desc: the texture descriptor
	//
	// Returns:
	//   - *wgpu.Texture: the created texture
	//   - error: error if allocation fails
	CreateTexture(desc *wgpu.TextureDescriptor) (*wgpu.Texture, error)

	// CreateTextureView creates the default view of a texture.
	//
	// Parameters:
	//   - tex: the texture to view
	//
	// Returns:
	//   - *wgpu.TextureView: the created view
	//   - error: error if the view cannot be created
	CreateTextureView(tex *wgpu.Texture) (*wgpu.TextureView, error)

	CreateSampler(desc *wgpu.SamplerDescriptor) (*wgpu.Sampler, error)
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)
	CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)
	CreateComputePipeline(desc *wgpu.ComputePipelineDescriptor) (*wgpu.ComputePipeline, error)

	// WriteBuffer schedules a queue write of data into buf at offset.
	//
	// Parameters:
	//   - buf: destination buffer (must have COPY_DST usage)
	//   - offset: destination byte offset
	//   - data: bytes to write
	//
	// Returns:
	//   - error: error if the write cannot be scheduled
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error

	// WriteTexture schedules a queue write of pixel data into a texture region.
	//
	// Parameters:
	//   - dst: destination texture, mip level and origin
	//   - data: the pixel bytes
	//   - layout: layout of data (bytes per row, rows per image)
	//   - size: extent of the region to write
	//
	// Returns:
	//   - error: error if the write cannot be scheduled
	WriteTexture(dst *wgpu.ImageCopyTexture, data []byte, layout *wgpu.TextureDataLayout, size *wgpu.Extent3D) error

	// CreateCommandEncoder opens a command recording session.
	//
	// Parameters:
	//   - label: debug label of the encoder
	//
	// Returns:
	//   - Encoder: the encoder
	//   - error: error if the encoder cannot be created
	CreateCommandEncoder(label string) (Encoder, error)

	// Submit submits a finished command buffer to the queue and releases it.
	//
	// Parameters:
	//   - cmd: the command buffer returned from Encoder.Finish
	Submit(cmd *wgpu.CommandBuffer)

	// Release releases a GPU object created by this device. nil is ignored by callers, not here.
	//
	// Parameters:
	//   - r: the object to release
	Release(r Releaser)
}

// Encoder records passes and copies into a single command buffer.
type Encoder interface {
	// BeginComputePass opens a compute pass.
	//
	// Parameters:
	//   - label: debug label of the pass
	//
	// Returns:
	//   - ComputePass: the pass, which must be ended before the next pass begins
	BeginComputePass(label string) ComputePass

	// BeginRenderPass opens a render pass.
	//
	// Parameters:
	//   - desc: the render pass descriptor with its color attachments
	//
	// Returns:
	//   - RenderPass: the pass, which must be ended before Finish
	BeginRenderPass(desc *wgpu.RenderPassDescriptor) RenderPass

	// CopyBufferToBuffer records a GPU-side buffer copy.
	CopyBufferToBuffer(src *wgpu.Buffer, srcOffset uint64, dst *wgpu.Buffer, dstOffset uint64, size uint64)

	// CopyTextureToTexture records a GPU-side copy of the region (0,0)-(width,height) of mip 0.
	//
	// Parameters:
	//   - src: the source texture (must have COPY_SRC usage)
	//   - dst: the destination texture (must have COPY_DST usage)
	//   - width: width of the copied region in pixels
	//   - height: height of the copied region in pixels
	CopyTextureToTexture(src, dst *wgpu.Texture, width, height uint32)

	// Finish closes recording and returns the command buffer.
	//
	// Returns:
	//   - *wgpu.CommandBuffer: the recorded commands
	//   - error: error if the encoder is invalid
	Finish() (*wgpu.CommandBuffer, error)

	// Release releases the encoder. It is safe to call after Finish.
	Release()
}

// ComputePass records compute dispatches.
type ComputePass interface {
	SetPipeline(p *wgpu.ComputePipeline)
	SetBindGroup(index uint32, bg *wgpu.BindGroup)
	DispatchWorkgroups(x, y, z uint32)
	End()
}

// RenderPass records draw calls.
type RenderPass interface {
	SetPipeline(p *wgpu.RenderPipeline)
	SetBindGroup(index uint32, bg *wgpu.BindGroup)
	SetVertexBuffer(slot uint32, buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer, format wgpu.IndexFormat)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End()
}

// SurfaceCapabilities lists the formats and alpha modes a surface supports on the current adapter.
type SurfaceCapabilities struct {
	Formats    []wgpu.TextureFormat
	AlphaModes []wgpu.CompositeAlphaMode
}

// Surface is the presentable image chain of a window.
type Surface interface {
	// Capabilities queries the supported formats and alpha modes.
	//
	// Returns:
	//   - SurfaceCapabilities: the supported configuration values, preferred first
	Capabilities() SurfaceCapabilities

	// Configure (re)configures the surface size, format and present mode.
	//
	// Parameters:
	//   - cfg: the surface configuration
	Configure(cfg *wgpu.SurfaceConfiguration)

	// GetCurrentTexture acquires the next presentable texture.
	//
	// Returns:
	//   - *wgpu.Texture: the acquired texture
	//   - error: an error wrapping common.ErrResourceLost, common.ErrOutOfMemory or common.ErrUnexpected
	GetCurrentTexture() (*wgpu.Texture, error)

	// Present queues the acquired texture for display.
	Present()

	// Release releases the surface.
	Release()
}
