package surf3d

import (
	"sync/atomic"

	"github.com/gogpu/surf3d/device"
)

// handle is the shared, reference-counted owner of one device texture.
//
// Every shallow copy of an array points at the same handle, so copying an
// array is O(1) and never duplicates device memory. The texture is
// destroyed exactly once, when the reference count reaches zero.
//
// Plain value copies of an array do not touch the count; ownership is
// managed explicitly through retain and release (Array.Retain/Close).
type handle struct {
	tex   device.Texture
	label string

	// refs is the number of owning references. Starts at 1 for the
	// constructing array; 0 means released.
	refs atomic.Int32
}

// newHandle wraps a freshly allocated texture with one owning reference.
func newHandle(tex device.Texture, label string) *handle {
	h := &handle{tex: tex, label: label}
	h.refs.Store(1)
	return h
}

// alive reports whether the handle still owns its texture.
func (h *handle) alive() bool {
	return h.refs.Load() > 0
}

// retain adds an owning reference. Fails if the handle has already been
// released; a released handle never comes back.
func (h *handle) retain() error {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return ErrSurfaceReleased
		}
		if h.refs.CompareAndSwap(n, n+1) {
			return nil
		}
	}
}

// release drops one owning reference and destroys the texture when the
// count reaches zero. Returns true if this call performed the destroy.
// Releasing an already-released handle is a no-op.
func (h *handle) release() bool {
	for {
		n := h.refs.Load()
		if n <= 0 {
			return false
		}
		if h.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				h.tex.Destroy()
				Logger().Debug("surf3d: surface released", "label", h.label)
				return true
			}
			return false
		}
	}
}
