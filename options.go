package surf3d

// Option configures an array during construction.
// Use functional options to customize the launch shape, stream, boundary
// mode, and debug label.
//
// Example:
//
//	// Default configuration
//	arr, err := surf3d.NewSurface3D[float32](dev, 64, 64, 64)
//
//	// Custom block shape and stream
//	arr, err := surf3d.NewSurface3D[float32](dev, 64, 64, 64,
//	    surf3d.WithBlockDim(surf3d.Dim3{X: 16, Y: 16, Z: 1}),
//	    surf3d.WithStream(stream))
type Option func(*options)

// options holds optional configuration for array construction.
type options struct {
	blockDim Dim3
	stream   *Stream
	boundary BoundaryMode
	label    string
}

// defaultOptions returns the default array options.
func defaultOptions() options {
	return options{
		blockDim: DefaultBlockDim,
		stream:   nil, // resolved to the default stream in newArray
		boundary: BoundaryZero,
	}
}

// WithBlockDim sets the default kernel block shape for the array.
// The grid dimension is computed automatically from the array extents.
// Non-positive components fall back to DefaultBlockDim.
func WithBlockDim(d Dim3) Option {
	return func(o *options) {
		if d.valid() {
			o.blockDim = d
		}
	}
}

// WithStream sets the execution stream for the array. Host transfers and
// kernel launches are ordered through this stream. Passing nil selects
// the process-wide default stream.
func WithStream(s *Stream) Option {
	return func(o *options) {
		o.stream = s
	}
}

// WithBoundaryMode sets the boundary mode for element accesses outside
// the declared extents. The default is BoundaryZero.
func WithBoundaryMode(m BoundaryMode) Option {
	return func(o *options) {
		o.boundary = m
	}
}

// WithLabel sets an optional debug label, carried through to the backend
// texture and included in log output.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
