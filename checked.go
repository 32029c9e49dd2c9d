package eventqueue

import (
	"errors"
	"fmt"
)

// Checked wraps Events with access validation for development builds.
//
// Writes happen inside Produce, reads inside Consume, and Swap,
// EnsureCapacity and Close need exclusive access. A conflicting call fails
// with ErrBorrowConflict instead of racing, and any use after Close fails with
// ErrClosed. Many producers may hold the queue at once, as may many consumers,
// but never both. The unchecked Events underneath is unaffected.
type Checked[T any] struct {
	events *Events[T]
	g      guard
}

// NewChecked allocates a checked queue, see New.
func NewChecked[T any](capacity int, opts ...Option) (*Checked[T], error) {
	events, err := New[T](capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &Checked[T]{events: events}, nil
}

// Reader returns a read handle for use with Consume.
func (c *Checked[T]) Reader() (Reader[T], error) {
	if err := c.g.acquire(accessRead); err != nil {
		return Reader[T]{}, err
	}
	defer c.g.release(accessRead)
	return c.events.Reader(), nil
}

// Produce calls fn with a writer while holding a shared write borrow.
// Many Produce calls may run at once as long as they only use WriteNoGrow.
// A growing Write while another producer holds the queue is returned as
// ErrBorrowConflict, a WriteNoGrow overflow as ErrCapacityExceeded.
func (c *Checked[T]) Produce(fn func(w Writer[T]) error) (err error) {
	if err := c.g.acquire(accessWrite); err != nil {
		return err
	}
	defer c.g.release(accessWrite)

	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok || !(errors.Is(e, ErrCapacityExceeded) || errors.Is(e, ErrBorrowConflict)) {
				panic(r)
			}
			c.events.s.log.Err().
				Str("events", c.events.s.name).
				Err(e).
				Log("write rejected")
			err = e
		}
	}()

	w := c.events.Writer()
	w.g = &c.g
	return fn(w)
}

// Consume reads r and calls fn with the resulting iterator while holding a
// shared read borrow. The iterator must not be retained after fn returns.
func (c *Checked[T]) Consume(r *Reader[T], fn func(it *Iterator[T]) error) error {
	if err := c.g.acquire(accessRead); err != nil {
		return err
	}
	defer c.g.release(accessRead)

	if r.s != c.events.s {
		return fmt.Errorf("%w: %s", ErrForeignReader, c.events.s.name)
	}

	it := r.Read()
	if err := fn(&it); err != nil {
		return err
	}
	return it.Err()
}

// Swap ends the cycle, see Events.Swap.
func (c *Checked[T]) Swap() error {
	if err := c.g.acquire(accessExclusive); err != nil {
		return err
	}
	defer c.g.release(accessExclusive)
	c.events.Swap()
	return nil
}

// EnsureCapacity reserves capacity, see Events.EnsureCapacity.
func (c *Checked[T]) EnsureCapacity(n int) error {
	if err := c.g.acquire(accessExclusive); err != nil {
		return err
	}
	defer c.g.release(accessExclusive)
	return c.events.EnsureCapacity(n)
}

// Stats returns the statistics of the underlying queue.
func (c *Checked[T]) Stats() (Stats, error) {
	if err := c.g.acquire(accessRead); err != nil {
		return Stats{}, err
	}
	defer c.g.release(accessRead)
	return c.events.Stats(), nil
}

// Close frees the queue. Every later call fails with ErrClosed.
func (c *Checked[T]) Close() error {
	if err := c.g.acquire(accessExclusive); err != nil {
		return err
	}
	if err := c.events.Close(); err != nil {
		c.g.release(accessExclusive)
		return err
	}
	c.g.close()
	return nil
}

// Closed reports whether Close succeeded.
func (c *Checked[T]) Closed() bool {
	return c.g.closed()
}
