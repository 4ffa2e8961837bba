package surf3d

import "fmt"

// Dim3 is a three-component dimension, used for kernel block and grid
// shapes. All components are counts, never byte sizes.
type Dim3 struct {
	X, Y, Z int
}

// DefaultBlockDim is the default kernel block shape used when an array is
// constructed without WithBlockDim. The grid dimension is always computed
// from the array extents and the block shape.
var DefaultBlockDim = Dim3{X: 8, Y: 8, Z: 4}

// String returns the dimensions as "XxYxZ".
func (d Dim3) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// valid reports whether all components are positive.
func (d Dim3) valid() bool {
	return d.X > 0 && d.Y > 0 && d.Z > 0
}

// count returns the number of threads in a block of this shape.
func (d Dim3) count() int {
	return d.X * d.Y * d.Z
}

// Extent holds the declared size of an array in elements.
type Extent struct {
	Width, Height, Depth int
}

// String returns the extent as "WxHxD".
func (e Extent) String() string {
	return fmt.Sprintf("%dx%dx%d", e.Width, e.Height, e.Depth)
}

// Len returns the total number of elements, width*height*depth.
func (e Extent) Len() int {
	return e.Width * e.Height * e.Depth
}

// valid reports whether all extents are positive.
func (e Extent) valid() bool {
	return e.Width > 0 && e.Height > 0 && e.Depth > 0
}

// contains reports whether (x, y, z) lies inside the extent.
func (e Extent) contains(x, y, z int) bool {
	return x >= 0 && x < e.Width &&
		y >= 0 && y < e.Height &&
		z >= 0 && z < e.Depth
}

// index returns the linear host-order index of (x, y, z): z-major, then
// rows, then columns. Both array layouts share this host layout.
func (e Extent) index(x, y, z int) int {
	return (z*e.Height+y)*e.Width + x
}

// gridDimFor returns the grid shape covering the extent with the given
// block shape, rounding each dimension up.
func gridDimFor(e Extent, block Dim3) Dim3 {
	return Dim3{
		X: (e.Width + block.X - 1) / block.X,
		Y: (e.Height + block.Y - 1) / block.Y,
		Z: (e.Depth + block.Z - 1) / block.Z,
	}
}

// clamp returns v clamped to [0, n-1].
func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
