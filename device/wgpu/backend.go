// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu implements a GPU device backed by gogpu/wgpu.
//
// Surfaces are HAL textures; uploads go through queue.WriteTexture and
// downloads through a staging-buffer copy. An application that already
// owns a HAL device shares it via Attach or AttachProvider; otherwise the
// registry opens a standalone device with Open. Adapter discovery and
// limit reporting are handled separately by Backend, which drives the
// wgpu core bootstrap.
package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"
)

// Backend errors.
var (
	// ErrNoGPU is returned when no GPU adapter is available.
	ErrNoGPU = errors.New("wgpu: no GPU adapter available")

	// ErrNotInitialized is returned when using a backend before Init.
	ErrNotInitialized = errors.New("wgpu: backend not initialized")
)

// AdapterInfo describes the GPU adapter selected at Init.
type AdapterInfo struct {
	// Name is the GPU name (e.g. "NVIDIA GeForce RTX 3080").
	Name string
	// Vendor is the GPU vendor.
	Vendor string
	// Backend is the graphics API in use (Vulkan, Metal, DX12).
	Backend string
	// Driver is the driver version string.
	Driver string
}

// String returns a human-readable description of the adapter.
func (a *AdapterInfo) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Backend)
}

// Backend manages the wgpu core bootstrap: instance, adapter, device and
// queue. It exists so tooling can discover GPU adapters and report their
// limits; surface allocation itself runs on the HAL device (see Device).
type Backend struct {
	mu sync.RWMutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	info *AdapterInfo

	initialized bool
}

// NewBackend creates a wgpu backend. Call Init before use.
func NewBackend() *Backend {
	return &Backend{}
}

// Init creates the GPU instance, requests a high-performance adapter,
// and creates a device with default limits.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	b.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	})

	adapterID, err := b.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	b.adapter = adapterID
	b.info = adapterInfo(adapterID)

	deviceID, err := createDevice(adapterID, "surf3d-wgpu-device")
	if err != nil {
		_ = releaseAdapter(adapterID)
		b.adapter = core.AdapterID{}
		return err
	}
	b.device = deviceID

	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		_ = releaseAdapter(adapterID)
		b.device = core.DeviceID{}
		b.adapter = core.AdapterID{}
		return fmt.Errorf("queue retrieval failed: %w", err)
	}
	b.queue = queueID

	b.initialized = true
	return nil
}

// Close releases the device and adapter. The backend may be re-initialized
// with Init afterwards.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	// Release in reverse order of creation. The queue is released when the
	// device is dropped.
	if !b.device.IsZero() {
		_ = releaseDevice(b.device)
		b.device = core.DeviceID{}
	}
	if !b.adapter.IsZero() {
		_ = releaseAdapter(b.adapter)
		b.adapter = core.AdapterID{}
	}

	b.instance = nil
	b.queue = core.QueueID{}
	b.info = nil
	b.initialized = false
}

// IsInitialized reports whether Init has succeeded.
func (b *Backend) IsInitialized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.initialized
}

// Info returns information about the selected adapter, or nil if the
// backend is not initialized.
func (b *Backend) Info() *AdapterInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

// DeviceID returns the core device ID, or a zero ID before Init.
func (b *Backend) DeviceID() core.DeviceID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.device
}

// QueueID returns the core queue ID, or a zero ID before Init.
func (b *Backend) QueueID() core.QueueID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.queue
}

// TextureLimits queries the device's texture limits.
func (b *Backend) TextureLimits() (max2D, max3D, maxLayers uint32, err error) {
	b.mu.RLock()
	deviceID := b.device
	initialized := b.initialized
	b.mu.RUnlock()

	if !initialized {
		return 0, 0, 0, ErrNotInitialized
	}
	limits, err := core.GetDeviceLimits(deviceID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get device limits: %w", err)
	}
	return limits.MaxTextureDimension2D, limits.MaxTextureDimension3D, limits.MaxTextureArrayLayers, nil
}

func adapterInfo(adapterID core.AdapterID) *AdapterInfo {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		return nil
	}
	return &AdapterInfo{
		Name:    info.Name,
		Vendor:  info.Vendor,
		Backend: info.Backend.String(),
		Driver:  info.Driver,
	}
}

func createDevice(adapterID core.AdapterID, label string) (core.DeviceID, error) {
	deviceID, err := core.RequestDevice(adapterID, &gputypes.DeviceDescriptor{
		Label:            label,
		RequiredFeatures: nil,
		RequiredLimits:   gputypes.DefaultLimits(),
	})
	if err != nil {
		return core.DeviceID{}, fmt.Errorf("failed to create device: %w", err)
	}
	return deviceID, nil
}

func releaseDevice(deviceID core.DeviceID) error {
	if deviceID.IsZero() {
		return nil
	}
	return core.DeviceDrop(deviceID)
}

func releaseAdapter(adapterID core.AdapterID) error {
	if adapterID.IsZero() {
		return nil
	}
	return core.AdapterDrop(adapterID)
}
