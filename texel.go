package surf3d

import (
	"unsafe"

	"github.com/gogpu/gputypes"
)

// Texel is the constraint on array element types. Surface memory stores
// fixed-width scalar elements; each Go type maps to the single-channel
// texture format of matching width and signedness.
type Texel interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~float32
}

// texelSize returns the element size in bytes.
func texelSize[T Texel]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

// formatOf maps the element type to its texture format. Named types
// defined on top of the base scalars fall through to the width-based
// default, which keeps the byte layout correct.
func formatOf[T Texel]() gputypes.TextureFormat {
	var v T
	switch any(v).(type) {
	case int8:
		return gputypes.TextureFormatR8Sint
	case uint8:
		return gputypes.TextureFormatR8Uint
	case int16:
		return gputypes.TextureFormatR16Sint
	case uint16:
		return gputypes.TextureFormatR16Uint
	case int32:
		return gputypes.TextureFormatR32Sint
	case uint32:
		return gputypes.TextureFormatR32Uint
	case float32:
		return gputypes.TextureFormatR32Float
	}

	switch unsafe.Sizeof(v) {
	case 1:
		return gputypes.TextureFormatR8Uint
	case 2:
		return gputypes.TextureFormatR16Uint
	default:
		return gputypes.TextureFormatR32Uint
	}
}

// texelBytes returns the raw bytes of a single texel value.
// The slice aliases v and is only valid while v is pinned by the caller.
func texelBytes[T Texel](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// sliceBytes returns the backing bytes of a texel slice without copying.
func sliceBytes[T Texel](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*texelSize[T]())
}
