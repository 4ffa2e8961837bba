package surf3d

import "fmt"

// BoundaryMode is the policy for element accesses outside the declared
// extents of an array. It is a plain value field: every array instance
// carries its own mode, independent even when the underlying surface
// handle is shared.
type BoundaryMode uint8

const (
	// BoundaryZero makes out-of-bounds reads return the zero value of the
	// element type and silently drops out-of-bounds writes.
	// This is the default mode.
	BoundaryZero BoundaryMode = iota

	// BoundaryClamp clamps out-of-bounds coordinates to the nearest edge
	// element, for both reads and writes.
	BoundaryClamp

	// BoundaryTrap panics on any out-of-bounds access. This mirrors the
	// trapping behavior of native surface intrinsics and is intended for
	// debugging kernels.
	BoundaryTrap
)

// String returns a human-readable name for the boundary mode.
func (m BoundaryMode) String() string {
	switch m {
	case BoundaryZero:
		return "Zero"
	case BoundaryClamp:
		return "Clamp"
	case BoundaryTrap:
		return "Trap"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(m))
	}
}
