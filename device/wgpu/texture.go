// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/surf3d/device"
)

// copyPitchAlignment is the BytesPerRow alignment WebGPU (and DX12)
// require for texture/buffer copies.
const copyPitchAlignment = 256

// texture is one HAL texture allocation. Uploads go through
// queue.WriteTexture; downloads copy into a staging buffer which is
// mapped for host reads once the GPU is idle.
type texture struct {
	dev       *Device
	tex       hal.Texture
	desc      device.TextureDescriptor
	destroyed atomic.Bool
}

func (t *texture) extent() *hal.Extent3D {
	return &hal.Extent3D{
		Width:              t.desc.Width,
		Height:             t.desc.Height,
		DepthOrArrayLayers: t.desc.Depth,
	}
}

// Upload implements device.Texture.
func (t *texture) Upload(src []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	if uint64(len(src)) != t.desc.ByteSize() {
		return fmt.Errorf("%w: have %d bytes, want %d",
			device.ErrSizeMismatch, len(src), t.desc.ByteSize())
	}
	_, queue, err := t.dev.handles()
	if err != nil {
		return err
	}

	if err := queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   gputypes.TextureAspectAll,
		},
		src,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.desc.Width * t.desc.TexelSize,
			RowsPerImage: t.desc.Height,
		},
		t.extent(),
	); err != nil {
		return fmt.Errorf("wgpu: texture upload: %w", err)
	}
	return nil
}

// Download implements device.Texture. The texture is copied into a
// staging buffer with 256-byte row pitch, mapped back once the GPU is
// idle, and the row padding stripped.
func (t *texture) Download(dst []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	if uint64(len(dst)) != t.desc.ByteSize() {
		return fmt.Errorf("%w: have %d bytes, want %d",
			device.ErrSizeMismatch, len(dst), t.desc.ByteSize())
	}

	bytesPerRow := t.desc.Width * t.desc.TexelSize
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	rows := t.desc.Height * t.desc.Depth

	readback, err := t.readRegion(hal.Origin3D{}, t.extent(), aligned, t.desc.Height)
	if err != nil {
		return err
	}

	if aligned == bytesPerRow {
		copy(dst, readback[:len(dst)])
		return nil
	}
	for row := uint32(0); row < rows; row++ {
		srcOff := uint64(row) * uint64(aligned)
		dstOff := uint64(row) * uint64(bytesPerRow)
		copy(dst[dstOff:dstOff+uint64(bytesPerRow)], readback[srcOff:srcOff+uint64(bytesPerRow)])
	}
	return nil
}

// readRegion copies a texture region into a fresh staging buffer and
// returns its contents. bytesPerRow must be pitch-aligned.
func (t *texture) readRegion(origin hal.Origin3D, size *hal.Extent3D, bytesPerRow, rowsPerImage uint32) ([]byte, error) {
	dev, queue, err := t.dev.handles()
	if err != nil {
		return nil, err
	}
	stagingSize := uint64(bytesPerRow) * uint64(size.Height) * uint64(size.DepthOrArrayLayers)

	stagingBuf, err := dev.CreateBuffer(&hal.BufferDescriptor{
		Label: "surf3d_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}
	defer dev.DestroyBuffer(stagingBuf)

	encoder, err := dev.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "surf3d_readback"})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("surf3d_readback"); err != nil {
		return nil, fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	// The last texture write was a queue copy. CopyTextureToBuffer needs
	// the texture in copy-source state; this is a no-op on backends
	// without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	encoder.CopyTextureToBuffer(t.tex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: bytesPerRow, RowsPerImage: rowsPerImage},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0, Origin: origin},
		Size:         *size,
	}})

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer dev.FreeCommandBuffer(cmdBuf)

	if _, err := queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return nil, fmt.Errorf("wgpu: submit: %w", err)
	}
	if err := dev.WaitIdle(); err != nil {
		return nil, fmt.Errorf("wgpu: wait for GPU: %w", err)
	}

	mapping, err := dev.MapBuffer(stagingBuf, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrReadbackUnsupported, err)
	}
	readback := make([]byte, stagingSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), stagingSize))
	if err := dev.UnmapBuffer(stagingBuf); err != nil {
		return nil, fmt.Errorf("wgpu: unmap staging buffer: %w", err)
	}
	return readback, nil
}

// Fill implements device.Texture.
func (t *texture) Fill(texel []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	if uint32(len(texel)) != t.desc.TexelSize {
		return fmt.Errorf("%w: have %d bytes, want texel size %d",
			device.ErrSizeMismatch, len(texel), t.desc.TexelSize)
	}

	t.dev.mu.Lock()
	fp := t.dev.fill
	t.dev.mu.Unlock()
	if fp == nil {
		return device.ErrDeviceClosed
	}

	slab, err := fp.run(texel, t.desc.ByteSize())
	if err != nil {
		return err
	}
	return t.Upload(slab)
}

// Store implements device.Texture. Single-element stores are one-texel
// queue writes.
func (t *texture) Store(x, y, z int, texel []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}
	_, queue, err := t.dev.handles()
	if err != nil {
		return err
	}

	if err := queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(z)},
			Aspect:   gputypes.TextureAspectAll,
		},
		texel,
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  t.desc.TexelSize,
			RowsPerImage: 1,
		},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	); err != nil {
		return fmt.Errorf("wgpu: texture store: %w", err)
	}
	return nil
}

// Load implements device.Texture. Single-element loads round-trip through
// a one-texel staging copy; batch transfers should use Download.
func (t *texture) Load(x, y, z int, dst []byte) error {
	if t.destroyed.Load() {
		return device.ErrTextureDestroyed
	}

	readback, err := t.readRegion(
		hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(z)},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
		copyPitchAlignment, 1,
	)
	if err != nil {
		return err
	}
	copy(dst, readback[:t.desc.TexelSize])
	return nil
}

// Destroy implements device.Texture.
func (t *texture) Destroy() {
	if !t.destroyed.CompareAndSwap(false, true) {
		return
	}
	if dev, _, err := t.dev.handles(); err == nil {
		dev.DestroyTexture(t.tex)
	}
}
