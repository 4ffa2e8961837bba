package surf3d

import (
	"errors"
	"testing"

	"github.com/gogpu/surf3d/device/soft"
)

func newTestDevice(t *testing.T) *soft.Device {
	t.Helper()
	dev := soft.New()
	t.Cleanup(func() { _ = dev.Close() })
	return dev
}

func TestNewSurface3D(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[float32](dev, 4, 3, 2)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	if surf.Width() != 4 || surf.Height() != 3 || surf.Depth() != 2 {
		t.Errorf("extents = %dx%dx%d, want 4x3x2", surf.Width(), surf.Height(), surf.Depth())
	}
	if surf.Len() != 24 {
		t.Errorf("Len() = %d, want 24", surf.Len())
	}
	if surf.SizeBytes() != 24*4 {
		t.Errorf("SizeBytes() = %d, want 96", surf.SizeBytes())
	}
	if surf.BoundaryMode() != BoundaryZero {
		t.Errorf("default boundary mode = %v, want %v", surf.BoundaryMode(), BoundaryZero)
	}
}

func TestNewSurface3DNilDevice(t *testing.T) {
	_, err := NewSurface3D[float32](nil, 4, 4, 4)
	if !errors.Is(err, ErrNilDevice) {
		t.Errorf("err = %v, want ErrNilDevice", err)
	}
}

func TestNewSurface3DInvalidExtent(t *testing.T) {
	dev := newTestDevice(t)

	cases := [][3]int{
		{0, 4, 4},
		{4, 0, 4},
		{4, 4, 0},
		{-1, 4, 4},
	}
	for _, c := range cases {
		_, err := NewSurface3D[float32](dev, c[0], c[1], c[2])
		if !errors.Is(err, ErrInvalidExtent) {
			t.Errorf("extents %v: err = %v, want ErrInvalidExtent", c, err)
		}
	}
}

func TestSurface3DGetSet(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[int32](dev, 4, 4, 4)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	surf.Set(1, 2, 3, 42)
	if got := surf.Get(1, 2, 3); got != 42 {
		t.Errorf("Get(1,2,3) = %d, want 42", got)
	}
	if got := surf.Get(0, 0, 0); got != 0 {
		t.Errorf("Get(0,0,0) = %d, want 0", got)
	}
}

func TestSurface3DCopyRoundTrip(t *testing.T) {
	dev := newTestDevice(t)

	const w, h, d = 5, 4, 3
	surf, err := NewSurface3D[float32](dev, w, h, d)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	host := make([]float32, w*h*d)
	for i := range host {
		host[i] = float32(i) * 0.5
	}
	if err := surf.CopyFrom(host); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}

	back := make([]float32, w*h*d)
	if err := surf.CopyTo(back); err != nil {
		t.Fatalf("CopyTo failed: %v", err)
	}
	for i := range host {
		if back[i] != host[i] {
			t.Fatalf("round-trip mismatch at %d: got %v, want %v", i, back[i], host[i])
		}
	}

	// Linear order is z-major: element (x, y, z) lives at (z*h+y)*w+x.
	if got := surf.Get(2, 1, 2); got != host[(2*h+1)*w+2] {
		t.Errorf("Get(2,1,2) = %v, want %v", got, host[(2*h+1)*w+2])
	}
}

func TestSurface3DCopySizeMismatch(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[float32](dev, 4, 4, 4)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	if err := surf.CopyFrom(make([]float32, 10)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("CopyFrom short buffer: err = %v, want ErrSizeMismatch", err)
	}
	if err := surf.CopyTo(make([]float32, 100)); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("CopyTo long buffer: err = %v, want ErrSizeMismatch", err)
	}
}

func TestSurface3DShallowCopySharesStorage(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[int32](dev, 4, 4, 4)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	view := surf // plain value copy
	view.Set(0, 0, 0, 7)
	if got := surf.Get(0, 0, 0); got != 7 {
		t.Errorf("original does not see write through copy: got %d, want 7", got)
	}
	surf.Set(1, 1, 1, 9)
	if got := view.Get(1, 1, 1); got != 9 {
		t.Errorf("copy does not see write through original: got %d, want 9", got)
	}
}

func TestSurface3DFill(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[float32](dev, 3, 3, 3)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	if err := surf.Fill(2.5); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if err := surf.Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	back := make([]float32, surf.Len())
	if err := surf.CopyTo(back); err != nil {
		t.Fatalf("CopyTo failed: %v", err)
	}
	for i, v := range back {
		if v != 2.5 {
			t.Fatalf("element %d = %v, want 2.5", i, v)
		}
	}
}

func TestSurface3DEmptyCopy(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[int32](dev, 4, 3, 2,
		WithBoundaryMode(BoundaryClamp),
		WithBlockDim(Dim3{X: 2, Y: 2, Z: 2}),
		WithLabel("original"),
	)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()
	surf.Set(0, 0, 0, 11)

	clone, err := surf.EmptyCopy()
	if err != nil {
		t.Fatalf("EmptyCopy failed: %v", err)
	}
	defer clone.Close()

	if clone.Extent() != surf.Extent() {
		t.Errorf("clone extent = %v, want %v", clone.Extent(), surf.Extent())
	}
	if clone.BoundaryMode() != BoundaryClamp {
		t.Errorf("clone boundary = %v, want BoundaryClamp", clone.BoundaryMode())
	}
	if clone.BlockDim() != surf.BlockDim() {
		t.Errorf("clone block dim = %v, want %v", clone.BlockDim(), surf.BlockDim())
	}

	// Contents are not copied and storage is independent.
	if got := clone.Get(0, 0, 0); got != 0 {
		t.Errorf("clone contents not empty: got %d", got)
	}
	clone.Set(1, 1, 1, 5)
	if got := surf.Get(1, 1, 1); got != 0 {
		t.Errorf("clone write visible in original: got %d", got)
	}
}

func TestSurface3DApply(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[int32](dev, 4, 4, 4)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	if err := surf.Apply(func(x, y, z int) int32 {
		return int32(x + 10*y + 100*z)
	}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if got := surf.Get(3, 2, 1); got != 123 {
		t.Errorf("Get(3,2,1) = %d, want 123", got)
	}

	if err := surf.Apply(nil); !errors.Is(err, ErrNilKernel) {
		t.Errorf("Apply(nil): err = %v, want ErrNilKernel", err)
	}
}

func TestSurface3DRetainClose(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[int32](dev, 2, 2, 2)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}

	view := surf
	if err := view.Retain(); err != nil {
		t.Fatalf("Retain failed: %v", err)
	}

	if err := surf.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// view still owns a reference; the storage must be alive.
	view.Set(0, 0, 0, 3)
	if got := view.Get(0, 0, 0); got != 3 {
		t.Errorf("Get after partner Close = %d, want 3", got)
	}

	if err := view.Close(); err != nil {
		t.Fatalf("final Close failed: %v", err)
	}

	// Operations on a fully released surface fail.
	if err := view.CopyFrom(make([]int32, 8)); !errors.Is(err, ErrSurfaceReleased) {
		t.Errorf("CopyFrom after release: err = %v, want ErrSurfaceReleased", err)
	}
	if err := view.Retain(); !errors.Is(err, ErrSurfaceReleased) {
		t.Errorf("Retain after release: err = %v, want ErrSurfaceReleased", err)
	}

	// Closing again is a no-op.
	if err := view.Close(); err != nil {
		t.Errorf("double Close: err = %v, want nil", err)
	}
}

func TestSurface3DSetBoundaryModePerInstance(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[int32](dev, 2, 2, 2)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	view := surf
	view.SetBoundaryMode(BoundaryClamp)

	if surf.BoundaryMode() != BoundaryZero {
		t.Errorf("original boundary changed to %v, want BoundaryZero", surf.BoundaryMode())
	}
	if view.BoundaryMode() != BoundaryClamp {
		t.Errorf("view boundary = %v, want BoundaryClamp", view.BoundaryMode())
	}
}

func TestSurface3DString(t *testing.T) {
	dev := newTestDevice(t)

	surf, err := NewSurface3D[float32](dev, 4, 3, 2)
	if err != nil {
		t.Fatalf("NewSurface3D failed: %v", err)
	}
	defer surf.Close()

	want := "Surface3D(4x3x2, 4 bytes/texel)"
	if got := surf.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
