package surf3d

import (
	"fmt"

	"github.com/gogpu/surf3d/device"
)

// Surface3D is a three-dimensional device array backed by a native 3D
// texture. It is addressed by (x, y, z) element coordinates.
//
// Surface3D values are shallow handles: copying one yields another view
// of the same device allocation. Use Retain and Close to manage the
// allocation's lifetime across copies, and EmptyCopy to allocate a fresh
// surface of the same shape.
//
// Get and Set are safe to call from kernel goroutines:
//
//	surf.Launch(func(x, y, z int) {
//	    v := surf.Get(x-1, y, z) + surf.Get(x+1, y, z)
//	    surf.Set(x, y, z, v/2)
//	})
type Surface3D[T Texel] struct {
	array[T]
}

// NewSurface3D allocates a width x height x depth surface on dev.
func NewSurface3D[T Texel](dev device.Device, width, height, depth int, opts ...Option) (Surface3D[T], error) {
	a, err := newArray[T](dev, width, height, depth, device.Dimension3D, opts)
	if err != nil {
		return Surface3D[T]{}, err
	}
	return Surface3D[T]{array: a}, nil
}

// Get reads the element at (x, y, z), applying the boundary mode when the
// coordinate lies outside the extents.
func (s Surface3D[T]) Get(x, y, z int) T {
	return s.load(x, y, z)
}

// Set writes the element at (x, y, z), applying the boundary mode when
// the coordinate lies outside the extents.
func (s Surface3D[T]) Set(x, y, z int, v T) {
	s.store(x, y, z, v)
}

// Launch runs k once per element coordinate on the array's stream. It
// returns as soon as the kernel is enqueued; use Synchronize to wait.
func (s Surface3D[T]) Launch(k Kernel3D, opts ...Option) error {
	return launch(s.array, k, opts)
}

// Apply sets every element to f(x, y, z) and waits for completion.
func (s Surface3D[T]) Apply(f func(x, y, z int) T) error {
	if f == nil {
		return ErrNilKernel
	}
	if err := s.Launch(func(x, y, z int) {
		s.store(x, y, z, f(x, y, z))
	}); err != nil {
		return err
	}
	return s.Synchronize()
}

// EmptyCopy allocates a new, independent surface with the same extents,
// boundary mode and launch shape. The contents are not copied.
func (s Surface3D[T]) EmptyCopy() (Surface3D[T], error) {
	return NewSurface3D[T](s.dev, s.ext.Width, s.ext.Height, s.ext.Depth,
		WithBlockDim(s.blockDim),
		WithStream(s.stream),
		WithBoundaryMode(s.boundary),
		WithLabel(s.label),
	)
}

// String implements fmt.Stringer.
func (s Surface3D[T]) String() string {
	return fmt.Sprintf("Surface3D(%s, %d bytes/texel)", s.ext, texelSize[T]())
}
