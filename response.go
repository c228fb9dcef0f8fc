// File: response.go
// License: Apache-2.0
//
// Response is the outcome value every state-machine callback returns.

package rotor

import (
	"fmt"
	"time"
)

// kind tags the active Response variant. The zero value is invalid so a
// forgotten return surfaces immediately instead of masquerading as Ok.
type kind uint8

const (
	kindInvalid kind = iota
	kindOk
	kindDeadline
	kindSpawn
	kindDone
	kindError
	kindConsumed
)

func (k kind) String() string {
	switch k {
	case kindInvalid:
		return "Invalid"
	case kindOk:
		return "Ok"
	case kindDeadline:
		return "Deadline"
	case kindSpawn:
		return "Spawn"
	case kindDone:
		return "Done"
	case kindError:
		return "Error"
	case kindConsumed:
		return "Consumed"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Response is the single value a state machine returns from any callback.
// Exactly one variant holds at a time: the machine survives (optionally with
// a new deadline or a spawn request), or it stopped (cleanly or with an
// error).
//
// A Response owns its payloads and is single-use: once decomposed or
// extracted it is consumed, and any further access panics. M is the machine
// type, N the spawn payload handed to the driver to materialize a child.
type Response[M, N any] struct {
	kind     kind
	machine  M
	spawn    N
	deadline time.Time
	cause    error
}

// Ok reports that the machine survives with no deadline change and no spawn.
func Ok[M, N any](machine M) Response[M, N] {
	return Response[M, N]{kind: kindOk, machine: machine}
}

// Spawn reports that the machine survives and hands the driver a payload to
// materialize as a new machine. A spawn cannot carry a deadline; set one in
// the Spawned handler of the machine that requested it.
func Spawn[M, N any](machine M, payload N) Response[M, N] {
	return Response[M, N]{kind: kindSpawn, machine: machine, spawn: payload}
}

// Done reports that the machine finished cleanly.
func Done[M, N any]() Response[M, N] {
	return Response[M, N]{kind: kindDone}
}

// Error reports that the machine finished because of err. The error is
// carried for diagnostics only, never for control flow: if diagnostic
// logging is enabled, Decompose logs it at warn level.
func Error[M, N any](err error) Response[M, N] {
	return Response[M, N]{kind: kindError, cause: err}
}

// WithDeadline attaches an absolute deadline to a continuing Response,
// replacing any deadline set earlier. The driver honors the most recently
// returned deadline and discards previous ones.
//
// Attaching a deadline to Spawn, Done or Error is a programming error and
// panics: those variants have no future in which the deadline could fire,
// and silently dropping the request would hide a real bug.
func (r Response[M, N]) WithDeadline(t time.Time) Response[M, N] {
	switch r.kind {
	case kindOk, kindDeadline:
		r.kind = kindDeadline
		r.deadline = t
		return r
	case kindSpawn:
		panic("rotor: cannot attach a deadline to Spawn: the spawn action is synchronous, set the deadline in the Spawned handler")
	case kindDone:
		panic("rotor: cannot attach a deadline to Done: the machine is finished, the timeout would never fire")
	case kindError:
		panic("rotor: cannot attach a deadline to Error: the machine is finished, the timeout would never fire")
	default:
		panic("rotor: cannot attach a deadline to a " + r.kind.String() + " response")
	}
}

// IsStopped reports whether the machine finished, i.e. the Response was
// built with Done or Error. Derived from the variant, never stored.
func (r *Response[M, N]) IsStopped() bool {
	r.ensureLive("IsStopped")
	return r.kind == kindDone || r.kind == kindError
}

// Cause returns the error carried by an Error response and nil for every
// other variant. Mostly useful for printing.
func (r *Response[M, N]) Cause() error {
	r.ensureLive("Cause")
	return r.cause
}

// ExpectMachine returns the surviving machine of an Ok or Deadline response
// and panics naming the actual variant otherwise. Diagnostic helper for
// tests, not part of the production control path.
func (r *Response[M, N]) ExpectMachine() M {
	r.ensureLive("ExpectMachine")
	switch r.kind {
	case kindOk, kindDeadline:
		m := r.machine
		r.consume()
		return m
	default:
		panic("rotor: expected a machine (Ok or Deadline), got " + r.kind.String())
	}
}

// ExpectSpawn returns the machine and spawn payload of a Spawn response and
// panics naming the actual variant otherwise. Test helper.
func (r *Response[M, N]) ExpectSpawn() (M, N) {
	r.ensureLive("ExpectSpawn")
	if r.kind != kindSpawn {
		panic("rotor: expected Spawn, got " + r.kind.String())
	}
	m, n := r.machine, r.spawn
	r.consume()
	return m, n
}

// ExpectDone panics naming the actual variant unless the response is Done.
// Test helper.
func (r *Response[M, N]) ExpectDone() {
	r.ensureLive("ExpectDone")
	if r.kind != kindDone {
		panic("rotor: expected Done, got " + r.kind.String())
	}
	r.consume()
}

// ExpectError returns the carried error of an Error response and panics
// naming the actual variant otherwise. Test helper.
func (r *Response[M, N]) ExpectError() error {
	r.ensureLive("ExpectError")
	if r.kind != kindError {
		panic("rotor: expected Error, got " + r.kind.String())
	}
	err := r.cause
	r.consume()
	return err
}

func (r *Response[M, N]) ensureLive(op string) {
	switch r.kind {
	case kindConsumed:
		panic("rotor: " + op + " on an already consumed response")
	case kindInvalid:
		panic("rotor: " + op + " on a zero-valued response; use one of the constructors")
	}
}

// consume clears payloads so a retained machine or error cannot be aliased
// through a decomposed response.
func (r *Response[M, N]) consume() {
	*r = Response[M, N]{kind: kindConsumed}
}
