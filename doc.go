// Package surf3d provides GPU surface-memory 3D arrays for Go.
//
// # Overview
//
// surf3d wraps GPU surface (texture) memory in value-type arrays with two
// layouts: true volumetric 3D arrays and layered stacks of 2D arrays.
// Surface memory offers better cache coherence than linear memory for
// accesses in a 3D neighborhood; it is read and written through dedicated
// load/store operations rather than raw pointers.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/surf3d"
//	    "github.com/gogpu/surf3d/device"
//	    _ "github.com/gogpu/surf3d/device/soft" // register the software device
//	)
//
//	dev, _ := device.Open()
//	defer dev.Close()
//
//	arr, err := surf3d.NewSurface3D[float32](dev, 128, 128, 64)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer arr.Close()
//
//	arr.CopyFrom(hostData)      // deep copy, host -> device
//	arr.Set(3, 4, 5, 1.5)       // element store
//	v := arr.Get(3, 4, 5)       // element load
//	arr.CopyTo(hostData)        // deep copy, device -> host
//
// # Copy Semantics
//
// Copying an array value is a shallow operation: all copies of one logical
// array share a single device allocation through a reference-counted
// handle. Kernels receive arrays by value for exactly this reason:
//
//	grid := arr // shares the same surface
//	grid.Launch(func(x, y, z int) {
//	    grid.Set(x, y, z, 0)
//	})
//
// Deep copies happen only through the explicit host transfer methods
// CopyFrom and CopyTo, or by allocating a fresh array with EmptyCopy.
//
// # Boundary Modes
//
// Reads and writes outside the declared extents are resolved by the
// per-instance boundary mode: BoundaryZero (reads yield the zero value,
// writes are dropped), BoundaryClamp (coordinates clamp to the nearest
// edge element), or BoundaryTrap (out-of-bounds access panics).
//
// # Devices
//
// Array storage is provided by a backend device (see the device
// sub-package). The software device is always available and executes
// kernels on the CPU; the wgpu device binds the gogpu/wgpu WebGPU stack.
package surf3d

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"
)
