package eventqueue

import (
	"runtime"
	"sync/atomic"
)

const goschedEvery = 64 // reduce runtime.Gosched() frequency in the claim loop

// slotList is an append-only array of records with a fixed capacity.
// Clearing only resets the length. Growth reallocates, so it must never
// overlap any other access to the list.
type slotList[T any] struct {
	recs []record[T] // len(recs) is the capacity
	_    [64]byte
	n    atomic.Uint64 // logical length, claimed by producers
	_    [64]byte
}

func newSlotList[T any](capacity int) slotList[T] {
	return slotList[T]{recs: make([]record[T], capacity)}
}

func (l *slotList[T]) len() int {
	return int(l.n.Load())
}

func (l *slotList[T]) cap() int {
	return len(l.recs)
}

func (l *slotList[T]) at(i int) *record[T] {
	return &l.recs[i]
}

// append stores v under id base+index, doubling the capacity when full.
// Reports whether the list had to grow.
// NOT safe for concurrent callers.
func (l *slotList[T]) append(v T, base uint64) (uint64, bool) {
	pos := l.n.Load()
	grew := pos == uint64(len(l.recs)) && l.grow(len(l.recs)+1)
	id := base + pos
	l.recs[pos].publish(v, id)
	l.n.Store(pos + 1)
	return id, grew
}

// appendNoGrow claims the next free index and stores v under id base+index.
// Returns false if the list is full (overflow).
// May be called concurrently from many goroutines.
func (l *slotList[T]) appendNoGrow(v T, base uint64) (uint64, bool) {
	var spins uint32
	for {
		pos := l.n.Load()
		if pos >= uint64(len(l.recs)) {
			return 0, false
		}
		if l.n.CompareAndSwap(pos, pos+1) {
			// We own index pos, nobody else will ever claim it this cycle.
			// Readers ignore it until seq says id.
			id := base + pos
			l.recs[pos].publish(v, id)
			return id, true
		}
		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// clear drops all records but keeps the capacity.
// Old records stay reachable until they are overwritten or the list is released.
func (l *slotList[T]) clear() {
	l.n.Store(0)
}

// grow doubles the capacity until it can hold at least n records.
// Existing records keep their positions and ids.
func (l *slotList[T]) grow(n int) bool {
	c := len(l.recs)
	if n <= c {
		return false
	}
	if c == 0 {
		c = 1
	}
	for c < n {
		c *= 2
	}
	recs := make([]record[T], c)
	for i := range l.len() {
		recs[i].publish(l.recs[i].val, l.recs[i].id())
	}
	l.recs = recs
	return true
}

// publishedFrom returns the first index >= i whose record is not yet
// published under base+index, or the length if every record is.
func (l *slotList[T]) publishedFrom(i int, base uint64) int {
	n := l.len()
	for ; i < n; i++ {
		if !l.recs[i].published(base + uint64(i)) {
			break
		}
	}
	return i
}

// release frees the backing array.
func (l *slotList[T]) release() {
	l.recs = nil
	l.n.Store(0)
}
