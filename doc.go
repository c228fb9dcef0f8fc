// File: doc.go
// License: Apache-2.0

// Package rotor is the control-flow contract between non-blocking state
// machines and an event-loop driver.
//
// A state machine is a unit of application logic advanced one trigger at a
// time: I/O readiness, a deadline firing, an out-of-band wakeup, or the
// post-spawn notification. Every callback consumes the machine and returns
// exactly one Response describing what happened and what the driver should
// do next: keep the machine, keep it with a new deadline, spawn a child,
// stop cleanly, or stop with an error.
//
// The Response value is the only legal channel between a machine and the
// driver. Decompose unpacks it into the driver-actionable parts and is the
// single trusted boundary: the driver never observes an invalid combination
// of effects (for example a spawn request carrying a deadline).
//
// The Loop type is a single-threaded reference driver built on the poller
// backends in the reactor subpackage. Machines never block; they suspend by
// returning a continuing Response and are re-invoked on the next matching
// trigger.
package rotor
