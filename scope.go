// File: scope.go
// License: Apache-2.0

package rotor

// Scope is the per-machine handle into the driver, passed to every machine
// callback and to Creator.Create. It carries the machine's token and gives
// access to registration, the shared loop context, and the notifier. A
// Scope is only valid on the loop goroutine for the duration of the call it
// was passed to; machines must not retain it.
type Scope[C any] struct {
	token Token
	loop  *Loop[C]
}

// Token returns the identity of the machine this scope belongs to. Hand it
// to other goroutines together with Notifier to wake this machine up.
func (s *Scope[C]) Token() Token {
	return s.token
}

// Context returns the loop-wide shared context.
func (s *Scope[C]) Context() *C {
	return s.loop.ctx
}

// Notifier returns the loop's notifier for out-of-band wakeups.
func (s *Scope[C]) Notifier() *Notifier {
	return s.loop.notifier
}

// Register adds fd to the poller with the given interest, attributing its
// readiness events to this machine. The fd is deregistered automatically
// when the machine stops.
func (s *Scope[C]) Register(fd uintptr, interest EventSet) error {
	return s.loop.registerFD(s.token, fd, interest)
}

// Modify replaces the interest set for an fd registered through this scope.
func (s *Scope[C]) Modify(fd uintptr, interest EventSet) error {
	return s.loop.modifyFD(s.token, fd, interest)
}

// Deregister removes an fd registered through this scope.
func (s *Scope[C]) Deregister(fd uintptr) error {
	return s.loop.deregisterFD(s.token, fd)
}

// Shutdown asks the loop to stop after the current iteration.
func (s *Scope[C]) Shutdown() {
	s.loop.Stop()
}
