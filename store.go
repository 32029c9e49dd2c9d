package eventqueue

import (
	"sync/atomic"

	"github.com/joeycumines/logiface"
)

// buffer selects one of the two physical slot lists of a store.
type buffer uint8

const (
	bufA buffer = iota
	bufB
)

func (b buffer) other() buffer { return b ^ 1 }

// store is the dual-slot engine: one list receives writes (active), the other
// holds the events of the cycle before the last swap (previous).
//
// Ids are linearized with slots: the record at index i of the active list has
// id cutoff+i, so the write counter is cutoff+len(active) and the previous
// list holds the contiguous ids [cutoff-len(previous), cutoff).
type store[T any] struct {
	lists  [2]slotList[T]
	active buffer
	cutoff uint64 // write counter captured by the last swap
	epoch  uint64 // number of swaps, bumped again on close
	closed bool

	name string
	log  *logiface.Logger[logiface.Event]

	grows     atomic.Uint64
	overflows atomic.Uint64
	reads     atomic.Uint64
}

func newStore[T any](capacity int, name string, log *logiface.Logger[logiface.Event]) *store[T] {
	return &store[T]{
		lists: [2]slotList[T]{newSlotList[T](capacity), newSlotList[T](capacity)},
		name:  name,
		log:   log,
	}
}

func (s *store[T]) mustBeOpen() {
	if s == nil || s.closed {
		panic(ErrClosed)
	}
}

func (s *store[T]) writeList() *slotList[T] { return &s.lists[s.active] }
func (s *store[T]) readList() *slotList[T]  { return &s.lists[s.active.other()] }

// writeCounter is the id the next write will receive.
func (s *store[T]) writeCounter() uint64 {
	return s.cutoff + uint64(s.writeList().len())
}

// oldest is the smallest id still stored.
func (s *store[T]) oldest() uint64 {
	return s.cutoff - uint64(s.readList().len())
}

func (s *store[T]) write(v T) {
	l := s.writeList()
	if _, grew := l.append(v, s.cutoff); grew {
		s.grows.Add(1)
		s.log.Debug().
			Str("events", s.name).
			Int("capacity", l.cap()).
			Log("buffer grown on write")
	}
}

func (s *store[T]) writeNoGrow(v T) bool {
	if _, ok := s.writeList().appendNoGrow(v, s.cutoff); !ok {
		s.overflows.Add(1)
		return false
	}
	return true
}

// swap retires the active list and clears the other one, which becomes the
// new write target. The retired list stays untouched until the next swap.
func (s *store[T]) swap() {
	wc := s.writeCounter()
	s.active = s.active.other()
	s.writeList().clear()
	s.cutoff = wc
	s.epoch++
}

// reserve grows both lists until each holds at least n records.
func (s *store[T]) reserve(n int) bool {
	var grew bool
	for i := range s.lists {
		if s.lists[i].grow(n) {
			s.grows.Add(1)
			grew = true
		}
	}
	return grew
}

// watermark is the end of the run of published ids starting at cursor. It
// equals the write counter unless a WriteNoGrow has claimed a slot and not
// stored it yet.
func (s *store[T]) watermark(cursor uint64) uint64 {
	l := s.writeList()
	var i int
	if cursor > s.cutoff {
		i = int(min(cursor-s.cutoff, uint64(l.len())))
	}
	return s.cutoff + uint64(l.publishedFrom(i, s.cutoff))
}

// readSince returns the events with cursor <= id < watermark, previous list
// first.
func (s *store[T]) readSince(cursor uint64) Iterator[T] {
	until := max(s.watermark(cursor), cursor)
	return Iterator[T]{
		s:     s,
		bufs:  [2]buffer{s.active.other(), s.active},
		bases: [2]uint64{s.oldest(), s.cutoff},
		ends:  [2]int{s.readList().len(), int(until - s.cutoff)},
		from:  cursor,
		until: until,
		epoch: s.epoch,
		off:   -1,
	}
}

// pending is the number of published events with id >= cursor.
func (s *store[T]) pending(cursor uint64) int {
	wm := s.watermark(cursor)
	from := max(cursor, s.oldest())
	if from >= wm {
		return 0
	}
	return int(wm - from)
}

func (s *store[T]) close() {
	s.closed = true
	s.epoch++
	for i := range s.lists {
		s.lists[i].release()
	}
}
