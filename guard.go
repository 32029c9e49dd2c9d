package eventqueue

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

type access uint8

const (
	accessRead access = iota
	accessWrite
	accessExclusive
)

func (a access) String() string {
	switch a {
	case accessRead:
		return "read"
	case accessWrite:
		return "write"
	case accessExclusive:
		return "exclusive"
	default:
		return fmt.Sprintf("access(%d)", a)
	}
}

// guard tracks the borrows of one queue in a single word:
// bit 63 closed, bit 62 exclusive, bit 61 a growing write in progress,
// bits 32..60 writers, bits 0..31 readers.
type guard struct {
	state atomic.Uint64
}

const (
	guardClosed     = uint64(1) << 63
	guardExclusive  = uint64(1) << 62
	guardGrowing    = uint64(1) << 61
	guardWriter     = uint64(1) << 32
	guardReader     = uint64(1)
	guardReaderMask = guardWriter - 1
	guardWriterMask = (guardGrowing - 1) &^ guardReaderMask
)

func (a access) delta() uint64 {
	switch a {
	case accessRead:
		return guardReader
	case accessWrite:
		return guardWriter
	default:
		return guardExclusive
	}
}

func conflicts(a access, s uint64) bool {
	readers, writers := s&guardReaderMask, s&guardWriterMask
	switch a {
	case accessRead:
		return s&guardExclusive != 0 || writers != 0
	case accessWrite:
		return s&(guardExclusive|guardGrowing) != 0 || readers != 0
	default:
		return s&(guardExclusive|guardGrowing|guardWriterMask|guardReaderMask) != 0
	}
}

func describe(s uint64) string {
	return fmt.Sprintf("readers=%d writers=%d exclusive=%t growing=%t",
		s&guardReaderMask, (s&guardWriterMask)>>32, s&guardExclusive != 0, s&guardGrowing != 0)
}

// acquire takes a borrow of kind a, failing fast on conflict.
func (g *guard) acquire(a access) error {
	var spins uint32
	for {
		s := g.state.Load()
		if s&guardClosed != 0 {
			return ErrClosed
		}
		if conflicts(a, s) {
			return fmt.Errorf("%w: %s requested with %s", ErrBorrowConflict, a, describe(s))
		}
		if g.state.CompareAndSwap(s, s+a.delta()) {
			return nil
		}
		spins++
		if spins%goschedEvery == 0 {
			runtime.Gosched()
		}
	}
}

// beginGrowingWrite marks a growing write by the holder of a write borrow.
// It fails unless that holder is the only writer, and while it is marked no
// other writer can join.
func (g *guard) beginGrowingWrite() error {
	for {
		s := g.state.Load()
		if s&guardClosed != 0 {
			return ErrClosed
		}
		if s&guardGrowing != 0 || s&guardWriterMask != guardWriter {
			return fmt.Errorf("%w: growing write requested with %s", ErrBorrowConflict, describe(s))
		}
		if g.state.CompareAndSwap(s, s|guardGrowing) {
			return nil
		}
	}
}

func (g *guard) endGrowingWrite() {
	g.state.And(^guardGrowing)
}

func (g *guard) release(a access) {
	g.state.Add(^(a.delta() - 1))
}

// close turns an exclusive borrow into the terminal closed state.
func (g *guard) close() {
	g.state.Store(guardClosed)
}

func (g *guard) closed() bool {
	return g.state.Load()&guardClosed != 0
}
