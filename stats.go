package eventqueue

// Stats is a point-in-time view of one queue.
type Stats struct {
	Written   uint64 // ids allocated so far, i.e. the write counter
	Swaps     uint64
	Grows     uint64 // reallocations, on write or reserve
	Overflows uint64 // non-growing writes rejected for lack of capacity
	Reads     uint64
	Len       int // events in the active buffer
	Capacity  int // capacity of the active buffer
}

// Stats retrieves the current statistics of the queue.
// Like every accessor it must not overlap Swap.
func (e *Events[T]) Stats() Stats {
	e.s.mustBeOpen()
	l := e.s.writeList()
	return Stats{
		Written:   e.s.writeCounter(),
		Swaps:     e.s.epoch,
		Grows:     e.s.grows.Load(),
		Overflows: e.s.overflows.Load(),
		Reads:     e.s.reads.Load(),
		Len:       l.len(),
		Capacity:  l.cap(),
	}
}
