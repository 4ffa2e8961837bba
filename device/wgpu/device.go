// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/surf3d/device"
)

func init() {
	device.Register("wgpu", 100, func() (device.Device, error) {
		if dev, queue := Attached(); dev != nil {
			return New(dev, queue), nil
		}
		return Open()
	}, func() bool {
		if dev, _ := Attached(); dev != nil {
			return true
		}
		_, ok := hal.GetBackend(gputypes.BackendVulkan)
		return ok
	})
}

// WebGPU default limits; the HAL does not expose per-adapter texture
// limits, so devices report the guaranteed minimums.
const (
	defaultMaxDimension2D = 8192
	defaultMaxDimension3D = 2048
	defaultMaxArrayLayers = 256
)

var (
	attachMu      sync.RWMutex
	attachedDev   hal.Device
	attachedQueue hal.Queue
)

// Attach shares a host application's HAL device with the registry. After
// Attach, Open via the registry adopts the host device instead of creating
// one. Pass nil to detach.
func Attach(dev hal.Device, queue hal.Queue) {
	attachMu.Lock()
	defer attachMu.Unlock()
	attachedDev = dev
	attachedQueue = queue
}

// Attached returns the host-shared device and queue, or nil.
func Attached() (hal.Device, hal.Queue) {
	attachMu.RLock()
	defer attachMu.RUnlock()
	return attachedDev, attachedQueue
}

// AttachProvider adopts a host application's GPU device from a
// gpucontext-style provider. The provider must expose HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func AttachProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok || dev == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}
	Attach(dev, queue)
	return nil
}

// Device is a GPU storage backend over a HAL device.
type Device struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
	fill   *fillPipeline
	logger *slog.Logger

	// ownsDevice is set when Open created the device; adopted host
	// devices are never destroyed by Close.
	ownsDevice bool
	instance   hal.Instance
	closed     bool
}

// New wraps an existing HAL device and queue. The caller retains
// ownership; Close does not destroy the device.
func New(dev hal.Device, queue hal.Queue) *Device {
	d := &Device{
		device: dev,
		queue:  queue,
		logger: slog.New(discardHandler{}),
	}
	d.fill = newFillPipeline(dev, queue)
	return d
}

// Open creates a standalone device by enumerating GPU adapters, preferring
// discrete over integrated GPUs.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, ErrNoGPU
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no adapters found", ErrNoGPU)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	d := New(openDev.Device, openDev.Queue)
	d.ownsDevice = true
	d.instance = instance
	d.logger.Debug("wgpu: device opened", "adapter", selected.Info.Name)
	return d, nil
}

// Name implements device.Device.
func (d *Device) Name() string { return "wgpu" }

// SetLogger sets the logger used for device events.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l != nil {
		d.logger = l
	}
}

// Limits implements device.Device.
func (d *Device) Limits() device.Limits {
	return device.Limits{
		MaxDimension2D: defaultMaxDimension2D,
		MaxDimension3D: defaultMaxDimension3D,
		MaxArrayLayers: defaultMaxArrayLayers,
	}
}

// CreateTexture implements device.Device.
func (d *Device) CreateTexture(desc *device.TextureDescriptor) (device.Texture, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()

	if closed {
		return nil, device.ErrDeviceClosed
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	dim := gputypes.TextureDimension3D
	if desc.Dimension == device.Dimension2DArray {
		dim = gputypes.TextureDimension2D
	}
	usage := desc.Usage
	if usage == 0 {
		usage = device.DefaultUsage
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: desc.Depth,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     dim,
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture: %w", err)
	}

	d.mu.Lock()
	logger := d.logger
	d.mu.Unlock()
	logger.Debug("wgpu: texture allocated",
		"label", desc.Label,
		"bytes", desc.ByteSize(),
		"layout", desc.Dimension.String())

	return &texture{dev: d, tex: tex, desc: *desc}, nil
}

// handles returns the HAL device and queue, or ErrDeviceClosed.
func (d *Device) handles() (hal.Device, hal.Queue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, nil, device.ErrDeviceClosed
	}
	return d.device, d.queue, nil
}

// Close implements device.Device. Devices created by Open destroy their
// HAL device and instance; adopted host devices are left alive.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.fill != nil {
		d.fill.destroy()
		d.fill = nil
	}
	if d.ownsDevice {
		if d.device != nil {
			d.device.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	d.device = nil
	d.queue = nil
	return nil
}

// discardHandler drops all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h discardHandler) WithGroup(string) slog.Handler           { return h }
