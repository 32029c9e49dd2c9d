package eventqueue

// Reader drains the events of one queue it has not seen yet.
//
// A new reader starts at the cutoff of the last swap, so its first read
// returns everything written in the current cycle so far. Events from before
// the swap count as consumed. Readers are independent: each keeps its own
// cursor.
type Reader[T any] struct {
	s      *store[T]
	cursor uint64
}

// Read returns the events written since the previous Read and moves the
// cursor to the current write counter. Two reads with no write in between
// yield an empty second iterator.
func (r *Reader[T]) Read() Iterator[T] {
	r.s.mustBeOpen()
	it := r.s.readSince(r.cursor)
	r.cursor = it.until
	r.s.reads.Add(1)
	return it
}

// Pending returns the number of events the next Read would yield.
func (r *Reader[T]) Pending() int {
	r.s.mustBeOpen()
	return r.s.pending(r.cursor)
}

// Cursor returns the id of the first event this reader has not consumed.
func (r *Reader[T]) Cursor() uint64 {
	return r.cursor
}
