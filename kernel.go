package surf3d

import (
	"runtime"
	"sync"
)

// Kernel3D is the body of a per-element kernel. It is invoked once for
// every (x, y, z) inside the launch extents, from multiple goroutines.
type Kernel3D func(x, y, z int)

// launch enqueues a grid execution of k on the array's stream. The grid
// is partitioned into blocks of the array's block shape (or the launch
// option override) and blocks are distributed over GOMAXPROCS workers.
func launch[T Texel](a array[T], k Kernel3D, opts []Option) error {
	if k == nil {
		return ErrNilKernel
	}
	if !a.h.alive() {
		return ErrSurfaceReleased
	}

	block := a.blockDim
	stream := a.stream
	for _, opt := range opts {
		var o options
		opt(&o)
		if o.blockDim.valid() {
			block = o.blockDim
		}
		if o.stream != nil {
			stream = o.stream
		}
	}
	grid := gridDimFor(a.ext, block)

	return stream.submit(func() error {
		runGrid(a.ext, grid, block, k)
		return nil
	})
}

// runGrid executes k over every element of ext, one block at a time.
// Blocks are fanned out to a worker pool; threads within a block run
// sequentially on the worker that picked the block up.
func runGrid(ext Extent, grid, block Dim3, k Kernel3D) {
	workers := runtime.GOMAXPROCS(0)
	if n := grid.count(); n < workers {
		workers = n
	}

	// Block indices are produced on demand; buffering the whole grid up
	// front would allocate proportionally to the extents.
	blocks := make(chan Dim3, workers)
	go func() {
		for bz := 0; bz < grid.Z; bz++ {
			for by := 0; by < grid.Y; by++ {
				for bx := 0; bx < grid.X; bx++ {
					blocks <- Dim3{X: bx, Y: by, Z: bz}
				}
			}
		}
		close(blocks)
	}()

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for b := range blocks {
				runBlock(ext, b, block, k)
			}
		}()
	}
	wg.Wait()
}

// runBlock executes the threads of one block, clipped to the extents.
func runBlock(ext Extent, b, block Dim3, k Kernel3D) {
	x0 := b.X * block.X
	y0 := b.Y * block.Y
	z0 := b.Z * block.Z
	for tz := 0; tz < block.Z; tz++ {
		z := z0 + tz
		if z >= ext.Depth {
			break
		}
		for ty := 0; ty < block.Y; ty++ {
			y := y0 + ty
			if y >= ext.Height {
				break
			}
			for tx := 0; tx < block.X; tx++ {
				x := x0 + tx
				if x >= ext.Width {
					break
				}
				k(x, y, z)
			}
		}
	}
}
