package renderer

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/Kuowrk/fragma/engine/gpu"
	"github.com/Kuowrk/fragma/engine/renderer/bind_group_provider"
	"github.com/Kuowrk/fragma/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	lru "github.com/hashicorp/golang-lru/v2"
)

var drawConstantsCount atomic.Uint64

// drawConstantsCache holds one uniform buffer and bind group per distinct GPUDrawConstants value.
// Evicted entries are released.
type drawConstantsCache struct {
	device gpu.Device
	cache  *lru.Cache[material.GPUDrawConstants, bind_group_provider.BindGroupProvider]
}

func newDrawConstantsCache(device gpu.Device, size int) (*drawConstantsCache, error) {
	cache, err := lru.NewWithEvict(size, func(_ material.GPUDrawConstants, p bind_group_provider.BindGroupProvider) {
		p.Release()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draw constants cache: %w", err)
	}
	return &drawConstantsCache{device: device, cache: cache}, nil
}

// BindGroup returns the bind group holding c, uploading it on first use.
func (d *drawConstantsCache) BindGroup(c material.GPUDrawConstants, layout *wgpu.BindGroupLayout) (*wgpu.BindGroup, error) {
	if p, ok := d.cache.Get(c); ok {
		return p.BindGroup(), nil
	}

	p := bind_group_provider.NewBindGroupProvider(d.device,
		"Draw Constants "+strconv.FormatUint(drawConstantsCount.Add(1), 10),
		bind_group_provider.WithBindGroupLayout(layout),
		bind_group_provider.WithBufferSize(0, uint64(c.Size())),
	)
	if err := p.Init(material.DrawConstantsLayoutEntries()); err != nil {
		p.Release()
		return nil, err
	}
	write := bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: c.Marshal()}
	if err := write.Stage(d.device); err != nil {
		p.Release()
		return nil, fmt.Errorf("failed to upload draw constants: %w", err)
	}
	d.cache.Add(c, p)
	return p.BindGroup(), nil
}

func (d *drawConstantsCache) Len() int {
	return d.cache.Len()
}

func (d *drawConstantsCache) Purge() {
	d.cache.Purge()
}
