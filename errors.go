package eventqueue

import "fmt"

var (
	ErrInvalidCapacity  = fmt.Errorf("invalid capacity")
	ErrClosed           = fmt.Errorf("events closed")
	ErrCapacityExceeded = fmt.Errorf("capacity exceeded on non-growing write")
	ErrStaleIterator    = fmt.Errorf("iterator used across a swap")
	ErrBorrowConflict   = fmt.Errorf("conflicting access")
	ErrForeignReader    = fmt.Errorf("reader belongs to another queue")
)
