// File: machine.go
// License: Apache-2.0
//
// Driver-facing contracts: Machine, Creator, EventSet, Token.

package rotor

import "fmt"

// EventSet is the readiness mask delivered to a machine's Ready callback.
type EventSet uint8

const (
	// Readable indicates the registered resource is ready for reading.
	Readable EventSet = 1 << iota
	// Writable indicates the registered resource is ready for writing.
	Writable
	// Errored indicates an error condition on the registered resource.
	Errored
	// Hangup indicates the peer closed its end of the resource.
	Hangup
)

// IsReadable reports whether the set contains Readable.
func (e EventSet) IsReadable() bool { return e&Readable != 0 }

// IsWritable reports whether the set contains Writable.
func (e EventSet) IsWritable() bool { return e&Writable != 0 }

// IsError reports whether the set contains Errored.
func (e EventSet) IsError() bool { return e&Errored != 0 }

// IsHangup reports whether the set contains Hangup.
func (e EventSet) IsHangup() bool { return e&Hangup != 0 }

// Token identifies a machine slot inside a driver. It is opaque to
// machines; the core uses it only to attribute diagnostics. The driver
// packs a slot index and a generation counter so a recycled slot never
// aliases a dead machine's token.
type Token uint64

func (t Token) index() uint32      { return uint32(t) }
func (t Token) generation() uint32 { return uint32(t >> 32) }

// String renders the token for logs as "machine#index.generation".
func (t Token) String() string {
	return fmt.Sprintf("machine#%d.%d", t.index(), t.generation())
}

// Machine is a unit of cooperative non-blocking logic, advanced one trigger
// at a time. Each callback consumes the machine: the implementation must
// not retain or reuse the receiver after returning, and the returned
// Response carries the machine state the driver stores for the next
// trigger. No callback may block; a machine suspends by returning a
// continuing Response and waiting for the next trigger.
//
// C is the shared loop context reachable through the Scope.
type Machine[C any] interface {
	// Ready is called when registered I/O interest is satisfied.
	Ready(scope *Scope[C], events EventSet) Response[Machine[C], Creator[C]]

	// Spawned is called once, immediately after a machine created via a
	// Spawn response has been registered with the driver, before any I/O
	// is attributed to it. Acceptor-style machines typically probe for
	// immediately available work here; machines that need a deadline set
	// it here, since a Spawn response cannot carry one.
	Spawned(scope *Scope[C]) Response[Machine[C], Creator[C]]

	// Timeout is called when the machine's previously set deadline
	// elapses.
	Timeout(scope *Scope[C]) Response[Machine[C], Creator[C]]

	// Wakeup is called on an out-of-band notification unrelated to I/O or
	// timers, delivered through the loop's Notifier.
	Wakeup(scope *Scope[C]) Response[Machine[C], Creator[C]]
}

// Creator is the lightweight spawn payload a Spawn response hands to the
// driver. The driver consumes it exactly once to materialize the new
// machine, passing a Scope already bound to the child's token so the
// creator can register file descriptors. A creation error tears down the
// reserved slot and is reported as a *SpawnError, distinct from an ordinary
// machine failure: it happens before the machine exists.
type Creator[C any] interface {
	Create(scope *Scope[C]) (Machine[C], error)
}
