// File: decompose.go
// License: Apache-2.0
//
// Decompose is the trusted boundary between a machine's Response and the
// driver's bookkeeping.

package rotor

import "time"

// Continuation is the first component of a decomposed Response: either the
// surviving machine, or a stopped marker carrying the failure cause when
// there is one. Plain termination and failure both decompose to "no
// continuation"; only failure carries an error.
type Continuation[M any] struct {
	machine M
	alive   bool
	cause   error
}

// Machine returns the surviving machine and true, or the zero machine and
// false when the response stopped the machine.
func (c Continuation[M]) Machine() (M, bool) {
	return c.machine, c.alive
}

// Stopped reports whether the machine terminated.
func (c Continuation[M]) Stopped() bool {
	return !c.alive
}

// Cause returns the failure cause for a machine stopped by Error, and nil
// for a surviving machine or a plain Done.
func (c Continuation[M]) Cause() error {
	return c.cause
}

// Decompose consumes a Response and splits it into driver actions: the
// continuation (surviving machine or termination), an optional spawn payload
// and an optional deadline. The token is used only to attribute diagnostics.
//
// Decompose is total over the five variants and never panics on any of
// them; at most one of spawn and deadline is non-nil, so the driver can
// never observe a spawn request combined with a deadline request. Its only
// side effect is a warn-level log entry for the Error variant, emitted when
// diagnostic logging is enabled via SetLogger.
func Decompose[M, N any](token Token, r *Response[M, N]) (next Continuation[M], spawn *N, deadline *time.Time) {
	r.ensureLive("Decompose")
	switch r.kind {
	case kindOk:
		next = Continuation[M]{machine: r.machine, alive: true}
	case kindDeadline:
		next = Continuation[M]{machine: r.machine, alive: true}
		t := r.deadline
		deadline = &t
	case kindSpawn:
		next = Continuation[M]{machine: r.machine, alive: true}
		n := r.spawn
		spawn = &n
	case kindDone:
		next = Continuation[M]{}
	case kindError:
		lg := getLogger()
		lg.Warn().
			Stringer("machine", token).
			Err(r.cause).
			Msg("state machine exited with error")
		next = Continuation[M]{cause: r.cause}
	default:
		// ensureLive rejects Invalid and Consumed; the switch above is
		// exhaustive over the remaining variants.
		panic("rotor: unreachable response variant " + r.kind.String())
	}
	r.consume()
	return next, spawn, deadline
}
