package gpu

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Kuowrk/fragma/engine/logger"
	"github.com/cogentcore/webgpu/wgpu"
)

// PowerPreference selects the adapter class requested from the instance.
type PowerPreference string

const (
	// PowerPreferenceDefault lets the driver choose.
	PowerPreferenceDefault PowerPreference = ""
	// PowerPreferenceHigh requests a discrete, high performance adapter.
	PowerPreferenceHigh PowerPreference = "high"
	// PowerPreferenceLow requests an integrated, low power adapter.
	PowerPreferenceLow PowerPreference = "low"
)

// ContextOption is a functional option for configuring a Context.
type ContextOption func(c *contextOptions)

type contextOptions struct {
	forceFallbackAdapter bool
	powerPreference      PowerPreference
	label                string
}

// WithForceFallbackAdapter requests the software fallback adapter.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - ContextOption: option function to apply
func WithForceFallbackAdapter(force bool) ContextOption {
	return func(c *contextOptions) {
		c.forceFallbackAdapter = force
	}
}

// WithPowerPreference selects the adapter power class.
//
// Parameters:
//   - pref: the power preference
//
// Returns:
//   - ContextOption: option function to apply
func WithPowerPreference(pref PowerPreference) ContextOption {
	return func(c *contextOptions) {
		c.powerPreference = pref
	}
}

// Context owns the native instance, surface, adapter, device and queue of one window.
type Context struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	gpuDevice  Device
	gpuSurface Surface
}

// NewContext creates an instance and a surface for the given window descriptor, then requests an adapter
// compatible with that surface and a device with the default limits. On failure everything that was
// already created is released again.
//
// Parameters:
//   - surfaceDescriptor: platform surface descriptor of the window
//   - options: functional options for adapter selection
//
// Returns:
//   - *Context: the created context
//   - error: error if no adapter or device could be acquired
func NewContext(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...ContextOption) (*Context, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is nil")
	}

	opts := contextOptions{label: "Main Device"}
	for _, opt := range options {
		opt(&opts)
	}

	runtime.LockOSThread()

	c := &Context{instance: wgpu.CreateInstance(nil)}
	c.surface = c.instance.CreateSurface(surfaceDescriptor)

	adapter, err := c.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: opts.forceFallbackAdapter,
		CompatibleSurface:    c.surface,
		PowerPreference:      powerPreference(opts.powerPreference),
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	c.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: opts.label,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	c.device = device
	c.queue = device.GetQueue()

	c.gpuDevice = NewWGPUDevice(c.device, c.queue)
	c.gpuSurface = &wgpuSurface{surface: c.surface, adapter: c.adapter, device: c.device}

	logger.Infof("acquired GPU device (fallback=%t, power=%q)", opts.forceFallbackAdapter, opts.powerPreference)
	return c, nil
}

// Device returns the Device wrapper of the context's device and queue.
func (c *Context) Device() Device {
	return c.gpuDevice
}

// Surface returns the Surface wrapper of the window surface.
func (c *Context) Surface() Surface {
	return c.gpuSurface
}

// Release releases every native object held by the context in reverse creation order.
func (c *Context) Release() {
	if c.queue != nil {
		c.queue.Release()
		c.queue = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}

func powerPreference(p PowerPreference) wgpu.PowerPreference {
	switch p {
	case PowerPreferenceHigh:
		return wgpu.PowerPreferenceHighPerformance
	case PowerPreferenceLow:
		return wgpu.PowerPreferenceLowPower
	default:
		var undefined wgpu.PowerPreference
		return undefined
	}
}
