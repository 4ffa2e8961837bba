package surf3d

import (
	"testing"

	"github.com/gogpu/gputypes"
)

func TestTexelSize(t *testing.T) {
	if got := texelSize[int8](); got != 1 {
		t.Errorf("texelSize[int8] = %d, want 1", got)
	}
	if got := texelSize[uint16](); got != 2 {
		t.Errorf("texelSize[uint16] = %d, want 2", got)
	}
	if got := texelSize[float32](); got != 4 {
		t.Errorf("texelSize[float32] = %d, want 4", got)
	}
}

func TestFormatOf(t *testing.T) {
	if got := formatOf[int8](); got != gputypes.TextureFormatR8Sint {
		t.Errorf("formatOf[int8] = %v, want R8Sint", got)
	}
	if got := formatOf[uint8](); got != gputypes.TextureFormatR8Uint {
		t.Errorf("formatOf[uint8] = %v, want R8Uint", got)
	}
	if got := formatOf[int16](); got != gputypes.TextureFormatR16Sint {
		t.Errorf("formatOf[int16] = %v, want R16Sint", got)
	}
	if got := formatOf[uint32](); got != gputypes.TextureFormatR32Uint {
		t.Errorf("formatOf[uint32] = %v, want R32Uint", got)
	}
	if got := formatOf[float32](); got != gputypes.TextureFormatR32Float {
		t.Errorf("formatOf[float32] = %v, want R32Float", got)
	}
}

type density float32

func TestFormatOfNamedType(t *testing.T) {
	// Named types fall through to the width-based default; the byte
	// layout stays correct even though signedness is lost.
	if got := formatOf[density](); got != gputypes.TextureFormatR32Uint {
		t.Errorf("formatOf[density] = %v, want R32Uint", got)
	}
}

func TestSliceBytes(t *testing.T) {
	s := []uint16{0x0102, 0x0304}
	b := sliceBytes(s)
	if len(b) != 4 {
		t.Fatalf("len = %d, want 4", len(b))
	}
	// Little-endian layout on all supported platforms.
	if b[0] != 0x02 || b[1] != 0x01 {
		t.Errorf("bytes = %x, want little-endian 0x0102", b[:2])
	}

	// The slice aliases the source.
	b[0] = 0xFF
	if s[0] != 0x01FF {
		t.Errorf("write through sliceBytes not visible: %#x", s[0])
	}

	if sliceBytes[uint16](nil) != nil {
		t.Error("sliceBytes(nil) != nil")
	}
}

func TestTexelBytes(t *testing.T) {
	v := float32(1.0)
	b := texelBytes(&v)
	if len(b) != 4 {
		t.Fatalf("len = %d, want 4", len(b))
	}
	// 1.0f is 0x3F800000.
	if b[3] != 0x3F || b[2] != 0x80 {
		t.Errorf("bytes = %x, want float32(1.0) little-endian", b)
	}
}

func TestNamedTexelTypeEndToEnd(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[density](dev, 2, 2, 2)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	surf.Set(1, 1, 1, 2.5)
	if got := surf.Get(1, 1, 1); got != 2.5 {
		t.Errorf("Get = %v, want 2.5", got)
	}
}
