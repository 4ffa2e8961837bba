package surf3d

import (
	"sync"
)

// streamQueueDepth is the number of pending operations a stream buffers
// before submitters block.
const streamQueueDepth = 64

// task is a unit of work queued on a stream. errc is nil for asynchronous
// submissions; synchronous submitters receive the work's error on it.
type task struct {
	run  func() error
	errc chan error
}

// Stream is a FIFO execution queue for host-side array operations.
//
// Operations submitted to one stream execute strictly in submission order
// on a single goroutine, matching the queuing semantics of a device
// stream. Operations on different streams are unordered with respect to
// each other.
//
// Host transfers (CopyFrom, CopyTo, Fill) run on the array's stream and
// return only when the queued operation has completed, so their errors
// surface at the call site. Kernel launches are asynchronous: Launch
// returns after enqueueing; call Synchronize to wait for completion.
//
// The zero value is not usable; create streams with NewStream. Arrays
// constructed without WithStream share the process-wide default stream.
type Stream struct {
	mu     sync.Mutex
	tasks  chan task
	done   chan struct{}
	closed bool
}

// NewStream creates a new execution stream and starts its run loop.
// Close the stream when it is no longer needed.
func NewStream() *Stream {
	s := &Stream{
		tasks: make(chan task, streamQueueDepth),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// defaultStream is created on first use and lives for the process.
var (
	defaultStreamOnce sync.Once
	defaultStream     *Stream
)

// DefaultStream returns the process-wide default stream. It is created on
// first use and is never closed.
func DefaultStream() *Stream {
	defaultStreamOnce.Do(func() {
		defaultStream = NewStream()
	})
	return defaultStream
}

// run executes queued tasks in FIFO order until the task channel closes.
func (s *Stream) run() {
	defer close(s.done)
	for t := range s.tasks {
		err := t.run()
		if t.errc != nil {
			t.errc <- err
		} else if err != nil {
			Logger().Warn("surf3d: asynchronous stream operation failed", "error", err)
		}
	}
}

// enqueue places a task on the stream. Returns ErrStreamClosed if the
// stream has been closed.
func (s *Stream) enqueue(t task) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStreamClosed
	}
	s.tasks <- t
	s.mu.Unlock()
	return nil
}

// submit queues fn for asynchronous execution.
func (s *Stream) submit(fn func() error) error {
	return s.enqueue(task{run: fn})
}

// do queues fn and waits for it to execute, returning its error.
func (s *Stream) do(fn func() error) error {
	errc := make(chan error, 1)
	if err := s.enqueue(task{run: fn, errc: errc}); err != nil {
		return err
	}
	return <-errc
}

// Synchronize blocks until every operation submitted to the stream before
// this call has completed.
func (s *Stream) Synchronize() error {
	return s.do(func() error { return nil })
}

// Close drains the stream and stops its run loop. Operations already
// queued still execute; later submissions return ErrStreamClosed.
// Close is idempotent.
func (s *Stream) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()
	<-s.done
}
