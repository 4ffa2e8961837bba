package surf3d

import "errors"

// Array errors.
var (
	// ErrNilDevice is returned when constructing an array without a device.
	ErrNilDevice = errors.New("surf3d: device is nil")

	// ErrInvalidExtent is returned when any array extent is not positive.
	ErrInvalidExtent = errors.New("surf3d: array extents must be positive")

	// ErrSizeMismatch is returned when a host buffer does not hold exactly
	// width*height*depth elements.
	ErrSizeMismatch = errors.New("surf3d: host buffer size does not match array extents")

	// ErrSurfaceReleased is returned when operating on an array whose last
	// reference has been closed.
	ErrSurfaceReleased = errors.New("surf3d: surface has been released")

	// ErrStreamClosed is returned when submitting work to a closed stream.
	ErrStreamClosed = errors.New("surf3d: stream is closed")

	// ErrNilKernel is returned when launching a nil kernel.
	ErrNilKernel = errors.New("surf3d: kernel is nil")
)
