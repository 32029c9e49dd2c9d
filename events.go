package eventqueue

import (
	"fmt"
	"reflect"
)

// Events owns the double-buffered storage for one event type.
//
// The host must call Swap exactly once per cycle, after every writer of the
// cycle finished, and Close once all handles are dropped.
type Events[T any] struct {
	s *store[T]
}

// New allocates a queue with both buffers at the given capacity.
func New[T any](capacity int, opts ...Option) (*Events[T], error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = reflect.TypeFor[T]().String()
	}

	e := &Events[T]{s: newStore[T](capacity, o.name, o.logger)}
	o.logger.Debug().
		Str("events", o.name).
		Int("capacity", capacity).
		Log("events created")

	return e, nil
}

// IsCreated reports whether the queue is allocated and not yet closed.
func (e *Events[T]) IsCreated() bool {
	return e != nil && e.s != nil && !e.s.closed
}

// Name returns the name used in logs.
func (e *Events[T]) Name() string {
	return e.s.name
}

// Writer returns a write handle.
func (e *Events[T]) Writer() Writer[T] {
	e.s.mustBeOpen()
	return Writer[T]{s: e.s}
}

// Reader returns a read handle whose cursor starts at the last swap.
func (e *Events[T]) Reader() Reader[T] {
	e.s.mustBeOpen()
	return Reader[T]{s: e.s, cursor: e.s.cutoff}
}

// Swap ends the current cycle: the active buffer becomes the previous one and
// the other buffer is cleared to receive the next cycle's writes.
// Must not overlap any write, read or iteration.
func (e *Events[T]) Swap() {
	e.s.mustBeOpen()
	e.s.swap()
	e.s.log.Trace().
		Str("events", e.s.name).
		Uint64("epoch", e.s.epoch).
		Uint64("cutoff", e.s.cutoff).
		Log("swapped")
}

// EnsureCapacity grows both buffers until each can hold n events without
// reallocating. Must not be called while any writer is active.
func (e *Events[T]) EnsureCapacity(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, n)
	}
	if !e.IsCreated() {
		return ErrClosed
	}
	if e.s.reserve(n) {
		e.s.log.Debug().
			Str("events", e.s.name).
			Int("requested", n).
			Int("capacity", e.s.writeList().cap()).
			Log("capacity reserved")
	}
	return nil
}

// Len returns the number of events written in the current cycle.
func (e *Events[T]) Len() int {
	e.s.mustBeOpen()
	return e.s.writeList().len()
}

// Capacity returns the capacity of the active buffer.
func (e *Events[T]) Capacity() int {
	e.s.mustBeOpen()
	return e.s.writeList().cap()
}

// WriteCounter returns the id the next write will receive.
func (e *Events[T]) WriteCounter() uint64 {
	e.s.mustBeOpen()
	return e.s.writeCounter()
}

// Epoch returns the number of swaps so far.
func (e *Events[T]) Epoch() uint64 {
	e.s.mustBeOpen()
	return e.s.epoch
}

// Close frees both buffers. Handles must not be used afterwards, doing so
// panics with ErrClosed.
func (e *Events[T]) Close() error {
	if !e.IsCreated() {
		return ErrClosed
	}
	e.s.close()
	e.s.log.Debug().
		Str("events", e.s.name).
		Uint64("epoch", e.s.epoch).
		Log("events closed")
	return nil
}
