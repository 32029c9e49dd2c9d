package eventqueue

import "fmt"

// Writer appends events to the active buffer of one queue.
// It holds no state of its own and may be copied freely.
type Writer[T any] struct {
	s *store[T]
	g *guard // set for writers handed out by Checked.Produce
}

// Write appends v, growing the buffer if needed.
// Must not be called concurrently with any other write, with a read or with
// Swap. Inside Checked.Produce it panics with ErrBorrowConflict unless the
// caller is the only producer.
func (w Writer[T]) Write(v T) {
	w.s.mustBeOpen()
	if w.g != nil {
		if err := w.g.beginGrowingWrite(); err != nil {
			panic(err)
		}
		defer w.g.endGrowingWrite()
	}
	w.s.write(v)
}

// WriteNoGrow appends v without ever reallocating.
// May be called concurrently from many goroutines and alongside reads,
// capacity must have been reserved with EnsureCapacity beforehand. Panics
// with ErrCapacityExceeded if the buffer is full.
func (w Writer[T]) WriteNoGrow(v T) {
	if !w.TryWriteNoGrow(v) {
		panic(fmt.Errorf("%w: %s: capacity %d", ErrCapacityExceeded, w.s.name, w.s.writeList().cap()))
	}
}

// TryWriteNoGrow is WriteNoGrow returning false instead of panicking when
// the buffer is full.
func (w Writer[T]) TryWriteNoGrow(v T) bool {
	w.s.mustBeOpen()
	return w.s.writeNoGrow(v)
}
