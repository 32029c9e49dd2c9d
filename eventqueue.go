// Package eventqueue is a double-buffered, per-cycle event queue.
//
// Producers append values during a cycle, the host calls Swap once per cycle,
// and any number of readers drain the events they have not seen yet. Each
// reader owns a single cursor; nothing else is tracked per consumer.
//
// Cycle contract: Swap is a barrier. Writers for a cycle must be finished
// before Swap is called, and no Write, Read or iteration may overlap it.
// Readers must drain at least once per cycle, events older than one swap are
// gone. Growing writes (Write, EnsureCapacity) are single-writer operations
// and must not overlap reads either. WriteNoGrow may be called from many
// goroutines at once, provided capacity was reserved beforehand, and readers
// may run alongside it: a read stops before the first slot that has been
// claimed but not yet stored, leaving it and everything after it for the next
// read.
//
//	events, _ := eventqueue.New[Hit](eventqueue.DefaultCapacity)
//	w, r := events.Writer(), events.Reader()
//
//	w.Write(Hit{Damage: 10})
//	events.Swap()
//
//	it := r.Read()
//	for hit := range it.All() {
//		_ = hit
//	}
package eventqueue

import "sync/atomic"

// DefaultCapacity is the per-buffer capacity used when none is configured.
const DefaultCapacity = 512

// record is one stored event.
// seq is id+1 once val is stored, 0 before the first store. Ids are staleness
// markers compared against reader cursors, never indexes.
type record[T any] struct {
	val T
	seq atomic.Uint64
}

// publish stores v, then makes it visible under id.
func (r *record[T]) publish(v T, id uint64) {
	r.val = v
	r.seq.Store(id + 1)
}

// published reports whether r currently holds the value written under id.
// A slot still holding an earlier cycle's record has a smaller seq.
func (r *record[T]) published(id uint64) bool {
	return r.seq.Load() == id+1
}

func (r *record[T]) id() uint64 {
	return r.seq.Load() - 1
}
