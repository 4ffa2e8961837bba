// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package device defines the backend contract for surf3d array storage.
//
// A Device allocates surface textures; a Texture carries the element
// storage for one array and exposes whole-array transfer plus per-element
// load/store. Backends register themselves with the package registry
// (see Register), allowing surf3d to remain independent of specific GPU
// libraries.
package device

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device errors.
var (
	// ErrNoDevice is returned by Open when no registered device is available.
	ErrNoDevice = errors.New("device: no device available")

	// ErrUnknownDevice is returned when a named device is not registered.
	ErrUnknownDevice = errors.New("device: unknown device")

	// ErrDeviceClosed is returned when allocating on a closed device.
	ErrDeviceClosed = errors.New("device: device is closed")

	// ErrTextureDestroyed is returned when operating on a destroyed texture.
	ErrTextureDestroyed = errors.New("device: texture has been destroyed")

	// ErrInvalidDescriptor is returned when a texture descriptor is malformed.
	ErrInvalidDescriptor = errors.New("device: invalid texture descriptor")

	// ErrSizeMismatch is returned when a transfer buffer does not match the
	// texture's byte size.
	ErrSizeMismatch = errors.New("device: transfer buffer size mismatch")

	// ErrReadbackUnsupported is returned when a backend cannot copy texture
	// contents back to the host.
	ErrReadbackUnsupported = errors.New("device: texture readback not supported")
)

// Dimension selects the native addressing layout of a texture.
type Dimension uint8

const (
	// Dimension3D is a true volumetric 3D texture.
	Dimension3D Dimension = iota

	// Dimension2DArray is a layered stack of 2D textures, addressed as
	// (x, y, layer).
	Dimension2DArray
)

// String returns a human-readable name for the dimension.
func (d Dimension) String() string {
	switch d {
	case Dimension3D:
		return "3D"
	case Dimension2DArray:
		return "2DArray"
	default:
		return "Unknown"
	}
}

// DefaultUsage is the usage for textures created without specific flags:
// transferable in both directions and bindable for storage access.
const DefaultUsage = gputypes.TextureUsageCopySrc |
	gputypes.TextureUsageCopyDst |
	gputypes.TextureUsageStorageBinding

// TextureDescriptor describes a surface texture to allocate.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width, Height, Depth are the extents in elements. For
	// Dimension2DArray, Depth is the layer count.
	Width, Height, Depth uint32

	// Dimension selects volumetric or layered addressing.
	Dimension Dimension

	// Format is the element format.
	Format gputypes.TextureFormat

	// TexelSize is the element size in bytes.
	TexelSize uint32

	// Usage specifies how the texture will be used.
	// Zero means DefaultUsage.
	Usage gputypes.TextureUsage
}

// ByteSize returns the total storage size of the described texture.
func (d *TextureDescriptor) ByteSize() uint64 {
	return uint64(d.Width) * uint64(d.Height) * uint64(d.Depth) * uint64(d.TexelSize)
}

// Validate reports whether the descriptor can be allocated.
func (d *TextureDescriptor) Validate() error {
	if d.Width == 0 || d.Height == 0 || d.Depth == 0 {
		return ErrInvalidDescriptor
	}
	if d.TexelSize == 0 {
		return ErrInvalidDescriptor
	}
	return nil
}

// Limits describes the maximum texture extents a device supports.
type Limits struct {
	// MaxDimension2D is the maximum width/height of a layered texture.
	MaxDimension2D uint32

	// MaxDimension3D is the maximum extent of a volumetric texture.
	MaxDimension3D uint32

	// MaxArrayLayers is the maximum layer count of a layered texture.
	MaxArrayLayers uint32
}

// Device is implemented by storage backends (software, wgpu).
//
// Devices are safe for concurrent texture creation. Closing a device
// while textures are alive leaves those textures in a destroyed state.
type Device interface {
	// Name returns the backend identifier (e.g. "software", "wgpu").
	Name() string

	// CreateTexture allocates a surface texture. Allocation failures are
	// returned as the backend reports them, without translation.
	CreateTexture(desc *TextureDescriptor) (Texture, error)

	// Limits returns the device's texture limits.
	Limits() Limits

	// Close releases the device and all associated resources.
	Close() error
}

// Texture is one device allocation backing a surf3d array.
//
// Upload, Download and Fill are whole-array operations. Load and Store
// access single elements; coordinates are pre-resolved by the caller and
// always lie inside the texture extents. Load and Store are safe for
// concurrent use; ordering between concurrent stores to the same
// coordinate is unspecified.
type Texture interface {
	// Upload copies len(src) bytes from host memory into the texture.
	// src must hold exactly ByteSize() bytes.
	Upload(src []byte) error

	// Download copies the texture contents into dst.
	// dst must hold exactly ByteSize() bytes.
	Download(dst []byte) error

	// Fill sets every element to the given texel value.
	Fill(texel []byte) error

	// Store writes one element. texel holds TexelSize bytes.
	Store(x, y, z int, texel []byte) error

	// Load reads one element into dst. dst holds TexelSize bytes.
	Load(x, y, z int, dst []byte) error

	// Destroy releases the texture's device memory. Destroy is idempotent;
	// operations after Destroy return ErrTextureDestroyed.
	Destroy()
}

// Provider is a host-application GPU device handle.
//
// surf3d follows the gpucontext integration model: when embedded in a
// larger application, the host owns the GPU device and shares it through
// a DeviceProvider rather than surf3d creating its own. Backends that can
// adopt a host device accept a Provider (see device/wgpu).
type Provider = gpucontext.DeviceProvider

// NullProvider is a Provider with nil implementations, used for CPU-only
// configurations where no GPU device exists.
type NullProvider struct{}

// Device returns nil for the null provider.
func (NullProvider) Device() gpucontext.Device { return nil }

// Queue returns nil for the null provider.
func (NullProvider) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null provider.
func (NullProvider) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns empty adapter metadata for the null provider.
func (NullProvider) AdapterInfo() gpucontext.AdapterInfo { return gpucontext.AdapterInfo{} }

// SurfaceFormat returns undefined format for the null provider.
func (NullProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullProvider implements Provider.
var _ Provider = NullProvider{}
