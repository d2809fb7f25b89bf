package bind_group_provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the implementation of the BindGroupProvider interface.
type bindGroupProvider struct {
	mu              *sync.Mutex
	device          gpu.Device
	label           string
	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	bufferSizes     map[int]uint64
	ownedBuffers    map[int]bool
	textureViews    map[int]*wgpu.TextureView
	samplers        map[int]*wgpu.Sampler
}

// BindGroupProvider pairs a bind group with the resources bound into it.
// Buffers created by Init are owned and released with the provider; texture views and samplers
// supplied through options are borrowed and stay with their owners.
type BindGroupProvider interface {
	// Label retrieves the debug label of the provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup retrieves the bind group created by Init.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group, nil before Init
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout retrieves the layout the bind group is created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer retrieves the buffer bound at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, nil if the binding holds none
	Buffer(binding int) *wgpu.Buffer

	// TextureView retrieves the texture view bound at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view, nil if the binding holds none
	TextureView(binding int) *wgpu.TextureView

	// Sampler retrieves the sampler bound at a binding index.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler, nil if the binding holds none
	Sampler(binding int) *wgpu.Sampler

	// Init creates the bind group from the layout entries. Buffer bindings without a buffer get a new
	// COPY_DST buffer sized by WithBufferSize or the entry's MinBindingSize. Texture and sampler bindings
	// must already be supplied.
	//
	// Parameters:
	//   - entries: the entries of the layout set with WithBindGroupLayout
	//
	// Returns:
	//   - error: error if a resource is missing or creation fails
	Init(entries []wgpu.BindGroupLayoutEntry) error

	// Release releases the bind group and every owned buffer.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the given label and options.
//
// Parameters:
//   - device: the device resources are created on
//   - label: the debug label of the provider
//   - options: functional options configuring layout and bound resources
//
// Returns:
//   - BindGroupProvider: the provider, ready for Init
func NewBindGroupProvider(device gpu.Device, label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		mu:           &sync.Mutex{},
		device:       device,
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		bufferSizes:  make(map[int]uint64),
		ownedBuffers: make(map[int]bool),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffers[binding]
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) Init(entries []wgpu.BindGroupLayoutEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bindGroupLayout == nil {
		return fmt.Errorf("bind group provider %q has no layout", p.label)
	}

	sorted := make([]wgpu.BindGroupLayoutEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Binding < sorted[j].Binding })

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(sorted))
	for i, entry := range sorted {
		binding := int(entry.Binding)

		isTexture := entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined ||
			entry.StorageTexture.Format != wgpu.TextureFormatUndefined
		isSampler := entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined

		switch {
		case isTexture:
			tv := p.textureViews[binding]
			if tv == nil {
				return fmt.Errorf("bind group provider %q: texture binding %d has no texture view", p.label, binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case isSampler:
			s := p.samplers[binding]
			if s == nil {
				return fmt.Errorf("bind group provider %q: sampler binding %d has no sampler", p.label, binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: s}
		default:
			buf := p.buffers[binding]
			if buf == nil {
				usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
				if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
					usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
				}
				size := entry.Buffer.MinBindingSize
				if override, ok := p.bufferSizes[binding]; ok {
					size = override
				}
				var err error
				buf, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: p.label + " Buffer",
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return fmt.Errorf("bind group provider %q: failed to create buffer for binding %d: %w", p.label, binding, err)
				}
				p.buffers[binding] = buf
				p.ownedBuffers[binding] = true
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		}
	}

	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label + " Bind Group",
		Layout:  p.bindGroupLayout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return fmt.Errorf("bind group provider %q: %w", p.label, err)
	}
	if p.bindGroup != nil {
		p.device.Release(p.bindGroup)
	}
	p.bindGroup = bindGroup
	return nil
}

func (p *bindGroupProvider) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bindGroup != nil {
		p.device.Release(p.bindGroup)
		p.bindGroup = nil
	}
	for binding, owned := range p.ownedBuffers {
		if buf := p.buffers[binding]; owned && buf != nil {
			p.device.Release(buf)
			delete(p.buffers, binding)
		}
	}
	p.ownedBuffers = make(map[int]bool)
}
