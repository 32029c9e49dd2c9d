package eventqueue

import "iter"

// Iterator yields the events of one read: the qualifying records of the
// previous buffer, then those of the active buffer. It is not restartable.
//
// Records written after the read was taken, or still being stored by a
// WriteNoGrow when it was taken, are left for the next read. If the store is
// swapped (or closed) before the iterator is exhausted, it stops and Err
// reports why.
type Iterator[T any] struct {
	s     *store[T]
	err   error
	bufs  [2]buffer // previous, active at creation
	bases [2]uint64 // id of index 0 in each list
	ends  [2]int    // records of each list below until
	from  uint64
	until uint64
	epoch uint64
	pass  int
	off   int // -1 until the current list has been seeked
}

// Next returns the next unseen event.
func (it *Iterator[T]) Next() (T, bool) {
	var zero T
	if it.s == nil || it.err != nil {
		return zero, false
	}
	if it.s.epoch != it.epoch {
		if it.s.closed {
			it.err = ErrClosed
		} else {
			it.err = ErrStaleIterator
		}
		return zero, false
	}

	// Ids are contiguous from each list's base, so [from, until) maps to an
	// index range and no record outside it is ever touched.
	for it.pass < len(it.bufs) {
		end := it.ends[it.pass]
		if it.off < 0 {
			it.off = seek(it.bases[it.pass], it.from, end)
		}
		if it.off < end {
			r := it.s.lists[it.bufs[it.pass]].at(it.off)
			it.off++
			return r.val, true
		}
		it.pass++
		it.off = -1
	}

	return zero, false
}

// seek returns the first index whose id is >= from, capped at n.
func seek(base, from uint64, n int) int {
	if from <= base {
		return 0
	}
	if d := from - base; d < uint64(n) {
		return int(d)
	}
	return n
}

// Len returns the number of events Next would still yield, or 0 once the
// iterator has been cut short.
func (it *Iterator[T]) Len() int {
	if it.s == nil || it.err != nil || it.s.epoch != it.epoch {
		return 0
	}
	var n int
	for p := it.pass; p < len(it.bufs); p++ {
		off := it.off
		if p != it.pass || off < 0 {
			off = seek(it.bases[p], it.from, it.ends[p])
		}
		n += it.ends[p] - off
	}
	return n
}

// All returns a single-use sequence draining the iterator.
func (it *Iterator[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := it.Next()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// AppendTo drains the iterator into dst.
func (it *Iterator[T]) AppendTo(dst []T) []T {
	for {
		v, ok := it.Next()
		if !ok {
			return dst
		}
		dst = append(dst, v)
	}
}

// Err returns ErrStaleIterator or ErrClosed if iteration was cut short.
func (it *Iterator[T]) Err() error {
	return it.err
}
