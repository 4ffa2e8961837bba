// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package soft implements a pure-Go software device.
//
// Textures are byte slabs in host memory with z-major addressing. The
// software device is always available and serves as the reference
// backend: every surf3d operation has exact, observable semantics here.
package soft

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/surf3d/device"
)

func init() {
	device.Register("software", 10, func() (device.Device, error) {
		return New(), nil
	}, func() bool { return true })
}

// softLimits are generous fixed limits; host memory is the real bound.
var softLimits = device.Limits{
	MaxDimension2D: 16384,
	MaxDimension3D: 4096,
	MaxArrayLayers: 2048,
}

// Device is a software storage backend. The zero value is not usable;
// call New.
type Device struct {
	mu     sync.Mutex
	closed bool
	logger *slog.Logger
}

// New returns a software device.
func New() *Device {
	return &Device{logger: slog.New(nopHandler{})}
}

// Name implements device.Device.
func (d *Device) Name() string { return "software" }

// SetLogger sets the logger used for allocation events.
func (d *Device) SetLogger(l *slog.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l != nil {
		d.logger = l
	}
}

// Limits implements device.Device.
func (d *Device) Limits() device.Limits { return softLimits }

// CreateTexture implements device.Device.
func (d *Device) CreateTexture(desc *device.TextureDescriptor) (device.Texture, error) {
	d.mu.Lock()
	closed := d.closed
	logger := d.logger
	d.mu.Unlock()

	if closed {
		return nil, device.ErrDeviceClosed
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	if err := checkLimits(desc); err != nil {
		return nil, err
	}

	t := &texture{
		width:     int(desc.Width),
		height:    int(desc.Height),
		depth:     int(desc.Depth),
		texelSize: int(desc.TexelSize),
		data:      make([]byte, desc.ByteSize()),
	}
	logger.Debug("soft: texture allocated",
		"label", desc.Label,
		"bytes", desc.ByteSize(),
		"layout", desc.Dimension.String())
	return t, nil
}

// Close implements device.Device.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func checkLimits(desc *device.TextureDescriptor) error {
	switch desc.Dimension {
	case device.Dimension3D:
		if desc.Width > softLimits.MaxDimension3D ||
			desc.Height > softLimits.MaxDimension3D ||
			desc.Depth > softLimits.MaxDimension3D {
			return fmt.Errorf("%w: extents exceed 3D limit %d",
				device.ErrInvalidDescriptor, softLimits.MaxDimension3D)
		}
	case device.Dimension2DArray:
		if desc.Width > softLimits.MaxDimension2D ||
			desc.Height > softLimits.MaxDimension2D {
			return fmt.Errorf("%w: extents exceed 2D limit %d",
				device.ErrInvalidDescriptor, softLimits.MaxDimension2D)
		}
		if desc.Depth > softLimits.MaxArrayLayers {
			return fmt.Errorf("%w: layer count exceeds limit %d",
				device.ErrInvalidDescriptor, softLimits.MaxArrayLayers)
		}
	}
	return nil
}

// texture is a z-major byte slab. destroyed flips at most once; reads of
// the flag are atomic so Load/Store stay lock-free.
type texture struct {
	width, height, depth int
	texelSize            int
	data                 []byte
	destroyed            atomic.Bool
}

func (t *texture) byteSize() int {
	return t.width * t.height * t.depth * t.texelSize
}

// offset returns the byte offset of element (x, y, z). Coordinates are
// pre-resolved by the caller and always in bounds.
func (t *texture) offset(x, y, z int) int {
	return ((z*t.height+y)*t.width + x) * t.texelSize
}

// Upload implements device.Texture.
func (t *texture) Upload(src []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	if len(src) != t.byteSize() {
		return fmt.Errorf("%w: have %d bytes, want %d",
			device.ErrSizeMismatch, len(src), t.byteSize())
	}
	copy(t.data, src)
	return nil
}

// Download implements device.Texture.
func (t *texture) Download(dst []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	if len(dst) != t.byteSize() {
		return fmt.Errorf("%w: have %d bytes, want %d",
			device.ErrSizeMismatch, len(dst), t.byteSize())
	}
	copy(dst, t.data)
	return nil
}

// Fill implements device.Texture.
func (t *texture) Fill(texel []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	if len(texel) != t.texelSize {
		return fmt.Errorf("%w: have %d bytes, want texel size %d",
			device.ErrSizeMismatch, len(texel), t.texelSize)
	}
	for off := 0; off < len(t.data); off += t.texelSize {
		copy(t.data[off:off+t.texelSize], texel)
	}
	return nil
}

// Store implements device.Texture.
func (t *texture) Store(x, y, z int, texel []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	off := t.offset(x, y, z)
	copy(t.data[off:off+t.texelSize], texel)
	return nil
}

// Load implements device.Texture.
func (t *texture) Load(x, y, z int, dst []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	off := t.offset(x, y, z)
	copy(dst, t.data[off:off+t.texelSize])
	return nil
}

// Destroy implements device.Texture.
func (t *texture) Destroy() {
	if t.destroyed.CompareAndSwap(false, true) {
		t.data = nil
	}
}

// nopHandler discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
