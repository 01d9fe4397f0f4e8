// Readiness multiplexer for non-blocking sockets
package poller

import "time"

// Readiness of one registered descriptor
type Event struct {
	FD          int
	Readable    bool // data, pending connection, or peer hangup
	Exceptional bool // error or out-of-band condition
}

// Level-triggered readiness notification over a set of descriptors.
// Descriptors are registered for read and exceptional interest.
type Poller interface {
	Add(fd int) error
	Remove(fd int) error
	// Blocks up to timeout and fills events with ready descriptors.
	// An interrupted wait reports zero events without error.
	Wait(timeout time.Duration, events []Event) (n int, err error)
	Close() error
}
