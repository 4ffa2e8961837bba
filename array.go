package surf3d

import (
	"fmt"

	"github.com/gogpu/surf3d/device"
)

// array carries the state shared by both array layouts: the shared
// surface handle, the declared extents, the kernel launch shape, the
// execution stream, and the boundary mode.
//
// The handle, extents, launch shape and stream are copied by value on
// every array copy and all copies address the same device allocation.
// The boundary mode is also a plain value field, so each copy can change
// its mode without affecting the others.
type array[T Texel] struct {
	h   *handle
	dev device.Device

	ext      Extent
	blockDim Dim3
	gridDim  Dim3
	stream   *Stream
	boundary BoundaryMode
	label    string
}

// newArray allocates a device texture of the given extents and wraps it
// in the common array state. dim selects the native addressing layout.
func newArray[T Texel](dev device.Device, width, height, depth int, dim device.Dimension, opts []Option) (array[T], error) {
	if dev == nil {
		return array[T]{}, ErrNilDevice
	}

	ext := Extent{Width: width, Height: height, Depth: depth}
	if !ext.valid() {
		return array[T]{}, fmt.Errorf("%w: %s", ErrInvalidExtent, ext)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.stream == nil {
		o.stream = DefaultStream()
	}

	propagateLogger(dev)

	desc := &device.TextureDescriptor{
		Label:     o.label,
		Width:     uint32(width),
		Height:    uint32(height),
		Depth:     uint32(depth),
		Dimension: dim,
		Format:    formatOf[T](),
		TexelSize: uint32(texelSize[T]()),
		Usage:     device.DefaultUsage,
	}

	tex, err := dev.CreateTexture(desc)
	if err != nil {
		// Allocation failures surface as the device reports them.
		return array[T]{}, fmt.Errorf("surf3d: surface allocation failed: %w", err)
	}

	Logger().Info("surf3d: surface created",
		"label", o.label,
		"extent", ext.String(),
		"layout", dim.String(),
		"device", dev.Name())

	return array[T]{
		h:        newHandle(tex, o.label),
		dev:      dev,
		ext:      ext,
		blockDim: o.blockDim,
		gridDim:  gridDimFor(ext, o.blockDim),
		stream:   o.stream,
		boundary: o.boundary,
		label:    o.label,
	}, nil
}

// Width returns the number of elements in the first dimension.
func (a array[T]) Width() int { return a.ext.Width }

// Height returns the number of elements in the second dimension.
func (a array[T]) Height() int { return a.ext.Height }

// Depth returns the number of elements in the third dimension.
func (a array[T]) Depth() int { return a.ext.Depth }

// Extent returns the declared extents of the array.
func (a array[T]) Extent() Extent { return a.ext }

// Len returns the total number of elements, width*height*depth.
func (a array[T]) Len() int { return a.ext.Len() }

// SizeBytes returns the size of the device allocation in bytes.
func (a array[T]) SizeBytes() uint64 {
	return uint64(a.ext.Len()) * uint64(texelSize[T]())
}

// Label returns the debug label.
func (a array[T]) Label() string { return a.label }

// BlockDim returns the default kernel block shape.
func (a array[T]) BlockDim() Dim3 { return a.blockDim }

// GridDim returns the grid shape covering the extents with BlockDim.
func (a array[T]) GridDim() Dim3 { return a.gridDim }

// Stream returns the execution stream the array's operations run on.
func (a array[T]) Stream() *Stream { return a.stream }

// BoundaryMode returns the boundary mode for out-of-bounds accesses.
func (a array[T]) BoundaryMode() BoundaryMode { return a.boundary }

// SetBoundaryMode sets the boundary mode for this instance only. Copies
// sharing the surface keep their own mode.
func (a *array[T]) SetBoundaryMode(m BoundaryMode) { a.boundary = m }

// SetBlockDim sets the default kernel block shape for this instance and
// recomputes the grid shape. Invalid shapes are ignored.
func (a *array[T]) SetBlockDim(d Dim3) {
	if !d.valid() {
		return
	}
	a.blockDim = d
	a.gridDim = gridDimFor(a.ext, d)
}

// Retain adds an owning reference to the shared surface. Call Retain when
// a shallow copy must outlive the instance it was copied from, and pair
// it with Close.
func (a array[T]) Retain() error {
	return a.h.retain()
}

// Close drops one owning reference. The device allocation is destroyed
// when the last reference is closed. Closing an already-released surface
// is a no-op.
func (a array[T]) Close() error {
	a.h.release()
	return nil
}

// CopyFrom deep-copies host elements into the device surface. The host
// buffer must hold exactly Len() elements. The transfer is ordered on the
// array's stream and completes before CopyFrom returns.
func (a array[T]) CopyFrom(host []T) error {
	if !a.h.alive() {
		return ErrSurfaceReleased
	}
	if len(host) != a.ext.Len() {
		return fmt.Errorf("%w: have %d elements, want %d", ErrSizeMismatch, len(host), a.ext.Len())
	}

	return a.stream.do(func() error {
		Logger().Debug("surf3d: host to device transfer", "label", a.label, "bytes", a.SizeBytes())
		return a.h.tex.Upload(sliceBytes(host))
	})
}

// CopyTo deep-copies the device surface into host memory. The host buffer
// must hold exactly Len() elements. The transfer is ordered on the
// array's stream and completes before CopyTo returns.
func (a array[T]) CopyTo(host []T) error {
	if !a.h.alive() {
		return ErrSurfaceReleased
	}
	if len(host) != a.ext.Len() {
		return fmt.Errorf("%w: have %d elements, want %d", ErrSizeMismatch, len(host), a.ext.Len())
	}

	return a.stream.do(func() error {
		Logger().Debug("surf3d: device to host transfer", "label", a.label, "bytes", a.SizeBytes())
		return a.h.tex.Download(sliceBytes(host))
	})
}

// Fill sets every element of the surface to v. The operation is ordered
// on the array's stream.
func (a array[T]) Fill(v T) error {
	if !a.h.alive() {
		return ErrSurfaceReleased
	}
	return a.stream.do(func() error {
		return a.h.tex.Fill(texelBytes(&v))
	})
}

// Synchronize blocks until all operations previously submitted to the
// array's stream have completed.
func (a array[T]) Synchronize() error {
	return a.stream.Synchronize()
}

// resolve applies the boundary mode to a coordinate. ok is false when the
// access should be dropped (BoundaryZero outside the extents).
func (a array[T]) resolve(x, y, z int) (rx, ry, rz int, ok bool) {
	if a.ext.contains(x, y, z) {
		return x, y, z, true
	}
	switch a.boundary {
	case BoundaryClamp:
		return clamp(x, a.ext.Width), clamp(y, a.ext.Height), clamp(z, a.ext.Depth), true
	case BoundaryTrap:
		panic(fmt.Sprintf("surf3d: access (%d, %d, %d) outside extents %s", x, y, z, a.ext))
	default:
		return 0, 0, 0, false
	}
}

// load reads one element with boundary resolution. Out-of-bounds reads in
// BoundaryZero mode yield the zero value.
func (a array[T]) load(x, y, z int) T {
	var v T
	rx, ry, rz, ok := a.resolve(x, y, z)
	if !ok {
		return v
	}
	if err := a.h.tex.Load(rx, ry, rz, texelBytes(&v)); err != nil {
		Logger().Warn("surf3d: element load failed", "label", a.label, "error", err)
		var zero T
		return zero
	}
	return v
}

// store writes one element with boundary resolution. Out-of-bounds writes
// in BoundaryZero mode are dropped.
func (a array[T]) store(x, y, z int, v T) {
	rx, ry, rz, ok := a.resolve(x, y, z)
	if !ok {
		return
	}
	if err := a.h.tex.Store(rx, ry, rz, texelBytes(&v)); err != nil {
		Logger().Warn("surf3d: element store failed", "label", a.label, "error", err)
	}
}
