package surf3d

import (
	"fmt"

	"github.com/gogpu/surf3d/device"
)

// Layered2D is a stack of two-dimensional device arrays backed by a 2D
// array texture. It is addressed by (x, y, layer), where layer selects
// the slice.
//
// Like Surface3D, Layered2D values are shallow handles sharing one device
// allocation. The two types differ only in their native texture layout;
// a layered array addresses slices that are independent 2D images on the
// device, which matters for backends with per-layer residency.
type Layered2D[T Texel] struct {
	array[T]
}

// NewLayered2D allocates a width x height array with layers slices on dev.
func NewLayered2D[T Texel](dev device.Device, width, height, layers int, opts ...Option) (Layered2D[T], error) {
	a, err := newArray[T](dev, width, height, layers, device.Dimension2DArray, opts)
	if err != nil {
		return Layered2D[T]{}, err
	}
	return Layered2D[T]{array: a}, nil
}

// Layers returns the number of 2D slices.
func (l Layered2D[T]) Layers() int { return l.ext.Depth }

// Get reads the element at (x, y) in the given layer, applying the
// boundary mode when the coordinate lies outside the extents. The layer
// index participates in boundary resolution like any other coordinate.
func (l Layered2D[T]) Get(x, y, layer int) T {
	return l.load(x, y, layer)
}

// Set writes the element at (x, y) in the given layer.
func (l Layered2D[T]) Set(x, y, layer int, v T) {
	l.store(x, y, layer, v)
}

// Layer returns a view of a single slice. The view shares the device
// allocation; it is not a copy.
func (l Layered2D[T]) Layer(layer int) Layer2D[T] {
	return Layer2D[T]{arr: l.array, layer: layer}
}

// Launch runs k once per element coordinate, with z ranging over layers.
// It returns as soon as the kernel is enqueued; use Synchronize to wait.
func (l Layered2D[T]) Launch(k Kernel3D, opts ...Option) error {
	return launch(l.array, k, opts)
}

// Apply sets every element to f(x, y, layer) and waits for completion.
func (l Layered2D[T]) Apply(f func(x, y, layer int) T) error {
	if f == nil {
		return ErrNilKernel
	}
	if err := l.Launch(func(x, y, z int) {
		l.store(x, y, z, f(x, y, z))
	}); err != nil {
		return err
	}
	return l.Synchronize()
}

// EmptyCopy allocates a new, independent layered array with the same
// extents, boundary mode and launch shape. The contents are not copied.
func (l Layered2D[T]) EmptyCopy() (Layered2D[T], error) {
	return NewLayered2D[T](l.dev, l.ext.Width, l.ext.Height, l.ext.Depth,
		WithBlockDim(l.blockDim),
		WithStream(l.stream),
		WithBoundaryMode(l.boundary),
		WithLabel(l.label),
	)
}

// String implements fmt.Stringer.
func (l Layered2D[T]) String() string {
	return fmt.Sprintf("Layered2D(%dx%d, %d layers, %d bytes/texel)",
		l.ext.Width, l.ext.Height, l.ext.Depth, texelSize[T]())
}

// Layer2D is a view of one slice of a Layered2D. It shares the parent's
// device allocation and boundary mode.
type Layer2D[T Texel] struct {
	arr   array[T]
	layer int
}

// Width returns the number of elements in the first dimension.
func (s Layer2D[T]) Width() int { return s.arr.ext.Width }

// Height returns the number of elements in the second dimension.
func (s Layer2D[T]) Height() int { return s.arr.ext.Height }

// Index returns the layer index this view addresses.
func (s Layer2D[T]) Index() int { return s.layer }

// Get reads the element at (x, y) in this layer.
func (s Layer2D[T]) Get(x, y int) T {
	return s.arr.load(x, y, s.layer)
}

// Set writes the element at (x, y) in this layer.
func (s Layer2D[T]) Set(x, y int, v T) {
	s.arr.store(x, y, s.layer, v)
}
