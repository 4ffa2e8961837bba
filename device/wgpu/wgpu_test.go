// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/surf3d/device"
)

var _ device.Device = (*Device)(nil)
var _ device.Texture = (*texture)(nil)

// createNoopDevice creates a noop HAL device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func TestNewDevice(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := New(halDev, queue)
	defer dev.Close()

	if dev.Name() != "wgpu" {
		t.Errorf("Name() = %q, want wgpu", dev.Name())
	}
	l := dev.Limits()
	if l.MaxDimension3D == 0 || l.MaxDimension2D == 0 || l.MaxArrayLayers == 0 {
		t.Errorf("Limits() has zero fields: %+v", l)
	}
}

func TestCreateTexture(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := New(halDev, queue)
	defer dev.Close()

	tex, err := dev.CreateTexture(&device.TextureDescriptor{
		Label: "test_volume",
		Width: 4, Height: 4, Depth: 2,
		Dimension: device.Dimension3D,
		Format:    gputypes.TextureFormatR32Float,
		TexelSize: 4,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	tex.Destroy()
	tex.Destroy() // must not panic

	if err := tex.Upload(make([]byte, 4*4*2*4)); !errors.Is(err, device.ErrTextureDestroyed) {
		t.Errorf("Upload after Destroy: err = %v, want ErrTextureDestroyed", err)
	}
}

func TestCreateTextureValidates(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := New(halDev, queue)
	defer dev.Close()

	_, err := dev.CreateTexture(&device.TextureDescriptor{
		Width: 0, Height: 4, Depth: 4, TexelSize: 4,
	})
	if !errors.Is(err, device.ErrInvalidDescriptor) {
		t.Errorf("err = %v, want ErrInvalidDescriptor", err)
	}
}

func TestDeviceClose(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := New(halDev, queue)
	if err := dev.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Errorf("second Close: err = %v, want nil", err)
	}

	_, err := dev.CreateTexture(&device.TextureDescriptor{
		Width: 2, Height: 2, Depth: 2, TexelSize: 4,
	})
	if !errors.Is(err, device.ErrDeviceClosed) {
		t.Errorf("CreateTexture after Close: err = %v, want ErrDeviceClosed", err)
	}
}

// TestTransferPaths drives the upload, staged download, and single-element
// load paths end to end. The noop backend backs staging buffers with host
// memory, so the map-based readback completes and yields zeroed data.
func TestTransferPaths(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := New(halDev, queue)
	defer dev.Close()

	tex, err := dev.CreateTexture(&device.TextureDescriptor{
		Label: "transfer",
		Width: 4, Height: 4, Depth: 2,
		Dimension: device.Dimension3D,
		Format:    gputypes.TextureFormatR32Float,
		TexelSize: 4,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer tex.Destroy()

	data := make([]byte, 4*4*2*4)
	if err := tex.Upload(data); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	dst := make([]byte, len(data))
	if err := tex.Download(dst); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	for i, b := range dst {
		if b != 0 {
			t.Fatalf("dst[%d] = %d, want 0", i, b)
		}
	}

	var texel [4]byte
	if err := tex.Load(1, 2, 1, texel[:]); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := tex.Store(1, 2, 1, texel[:]); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
}

func TestUploadSizeMismatch(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	dev := New(halDev, queue)
	defer dev.Close()

	tex, err := dev.CreateTexture(&device.TextureDescriptor{
		Width: 2, Height: 2, Depth: 2, TexelSize: 4,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer tex.Destroy()

	if err := tex.Upload(make([]byte, 3)); !errors.Is(err, device.ErrSizeMismatch) {
		t.Errorf("short upload: err = %v, want ErrSizeMismatch", err)
	}
	if err := tex.Download(make([]byte, 7)); !errors.Is(err, device.ErrSizeMismatch) {
		t.Errorf("short download: err = %v, want ErrSizeMismatch", err)
	}
}

func TestAttach(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	Attach(halDev, queue)
	defer Attach(nil, nil)

	gotDev, gotQueue := Attached()
	if gotDev != halDev || gotQueue != queue {
		t.Error("Attached() did not return the attached handles")
	}

	dev, err := device.OpenByName("wgpu")
	if err != nil {
		t.Fatalf("OpenByName(wgpu) with attached device failed: %v", err)
	}
	defer dev.Close()
	if dev.Name() != "wgpu" {
		t.Errorf("Name() = %q, want wgpu", dev.Name())
	}
}

type fakeProvider struct {
	dev   hal.Device
	queue hal.Queue
}

func (p fakeProvider) HalDevice() any { return p.dev }
func (p fakeProvider) HalQueue() any  { return p.queue }

func TestAttachProvider(t *testing.T) {
	halDev, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if err := AttachProvider(fakeProvider{dev: halDev, queue: queue}); err != nil {
		t.Fatalf("AttachProvider failed: %v", err)
	}
	defer Attach(nil, nil)

	gotDev, gotQueue := Attached()
	if gotDev != halDev || gotQueue != queue {
		t.Error("Attached() did not return the provider's handles")
	}

	if err := AttachProvider(struct{}{}); err == nil {
		t.Error("AttachProvider accepted a provider without HAL accessors")
	}
	if err := AttachProvider(fakeProvider{}); err == nil {
		t.Error("AttachProvider accepted nil HAL handles")
	}
}

func TestWgpuRegistered(t *testing.T) {
	found := false
	for _, name := range device.List() {
		if name == "wgpu" {
			found = true
		}
	}
	if !found {
		t.Fatal("wgpu backend not registered")
	}
}

// TestFillShaderCompilation checks that the embedded WGSL compiles to
// SPIR-V via naga.
func TestFillShaderCompilation(t *testing.T) {
	if fillShaderWGSL == "" {
		t.Fatal("fill shader source is empty")
	}

	spirvBytes, err := naga.Compile(fillShaderWGSL)
	if err != nil {
		// Known naga limitations skip rather than fail.
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile fill shader: %v", err)
	}
	if len(spirvBytes) < 4 {
		t.Fatal("SPIR-V too short")
	}

	// SPIR-V magic number, little-endian.
	magic := uint32(spirvBytes[0]) |
		uint32(spirvBytes[1])<<8 |
		uint32(spirvBytes[2])<<16 |
		uint32(spirvBytes[3])<<24
	if magic != 0x07230203 {
		t.Errorf("SPIR-V magic = %#x, want 0x07230203", magic)
	}
}

func TestPatternWord(t *testing.T) {
	cases := []struct {
		texel []byte
		want  uint32
	}{
		{[]byte{0xAB}, 0xABABABAB},
		{[]byte{0x01, 0x02}, 0x02010201},
		{[]byte{0x01, 0x02, 0x03, 0x04}, 0x04030201},
	}
	for _, c := range cases {
		if got := patternWord(c.texel); got != c.want {
			t.Errorf("patternWord(%v) = %#x, want %#x", c.texel, got, c.want)
		}
	}
}

func TestCPUFill(t *testing.T) {
	slab := cpuFill(0x04030201, 10)
	if len(slab) != 10 {
		t.Fatalf("len = %d, want 10", len(slab))
	}
	want := []byte{1, 2, 3, 4, 1, 2, 3, 4, 1, 2}
	if !bytes.Equal(slab, want) {
		t.Errorf("slab = %v, want %v", slab, want)
	}
}

func TestBackendLifecycle(t *testing.T) {
	b := NewBackend()
	if b.IsInitialized() {
		t.Error("new backend reports initialized")
	}
	if b.Info() != nil {
		t.Error("uninitialized backend has adapter info")
	}
	if _, _, _, err := b.TextureLimits(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("TextureLimits: err = %v, want ErrNotInitialized", err)
	}
	// Close before Init is a no-op.
	b.Close()
}
