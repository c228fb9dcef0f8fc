// File: reactor/reactor.go
// License: Apache-2.0
//
// Platform-neutral poller interface backing the rotor event loop.

package reactor

import (
	"errors"
	"time"
)

// Errors shared by the poller backends.
var (
	ErrUnsupported       = errors.New("reactor: this platform is not supported")
	ErrClosed            = errors.New("reactor: poller closed")
	ErrNotRegistered     = errors.New("reactor: fd not registered")
	ErrAlreadyRegistered = errors.New("reactor: fd already registered")
)

// Events is the readiness interest/result mask at the poller level.
type Events uint8

const (
	// EventRead requests or reports read readiness.
	EventRead Events = 1 << iota
	// EventWrite requests or reports write readiness.
	EventWrite
	// EventError reports an error condition; always delivered, never
	// requested.
	EventError
	// EventHangup reports peer hangup; always delivered, never requested.
	EventHangup
)

// Event is one readiness notification returned by Wait.
type Event struct {
	Token  uint64 // opaque value supplied at registration
	Events Events
}

// Poller multiplexes readiness notifications for registered file
// descriptors. Register, Modify and Deregister are safe for concurrent use;
// Wait must be called from a single goroutine. Wake is safe from any
// goroutine and forces a blocked Wait to return early.
type Poller interface {
	// Register adds fd to the watch set with the given interest. The token
	// is returned verbatim in events for this fd.
	Register(fd uintptr, token uint64, events Events) error

	// Modify replaces the interest set and token for a registered fd.
	Modify(fd uintptr, token uint64, events Events) error

	// Deregister removes fd from the watch set.
	Deregister(fd uintptr) error

	// Wait blocks until readiness events are available, the timeout
	// elapses, or Wake is called, and fills buf. A negative timeout blocks
	// indefinitely. Returns the number of events written; zero with a nil
	// error means timeout, wakeup, or signal interruption.
	Wait(buf []Event, timeout time.Duration) (int, error)

	// Wake unblocks a concurrent Wait.
	Wake() error

	// Close releases the poller backend. Pending Wait calls return
	// ErrClosed.
	Close() error
}
