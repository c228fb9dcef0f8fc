// File: loop.go
// License: Apache-2.0
//
// Single-threaded cooperative driver: polls the reactor backend, dispatches
// triggers, and turns decomposed responses into bookkeeping.

package rotor

import (
	"container/heap"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/allchain/rotor/reactor"
)

// machineSlot is the driver-side state for one live machine: the machine
// itself, the fds it registered, and the sequence number validating its
// pending deadline entries.
type machineSlot[C any] struct {
	machine  Machine[C]
	fds      []uintptr
	timerSeq uint64
}

// Loop drives machines over a reactor poller. All machine callbacks run on
// the goroutine that called Run; a machine executes one callback to
// completion before the loop touches anything else, so machines need no
// locking of their own. Cross-goroutine input goes through the Notifier.
type Loop[C any] struct {
	cfg      *Config
	ctx      *C
	poller   reactor.Poller
	machines *slab[machineSlot[C]]
	timers   deadlineHeap
	notifier *Notifier

	stopped atomic.Bool
	running atomic.Bool

	// scratch buffers reused across iterations
	due     []deadlineEntry
	wakeups []Token
}

// NewLoop builds a loop around the shared context ctx. Without a WithPoller
// option the platform poller from reactor.New is used.
func NewLoop[C any](ctx *C, opts ...Option[C]) (*Loop[C], error) {
	l := &Loop[C]{
		cfg:      DefaultConfig(),
		ctx:      ctx,
		machines: newSlab[machineSlot[C]](),
	}
	for _, o := range opts {
		o(l)
	}
	if l.poller == nil {
		p, err := reactor.New()
		if err != nil {
			return nil, err
		}
		l.poller = p
	}
	l.notifier = newNotifier(l.poller)
	return l, nil
}

// Context returns the shared loop context.
func (l *Loop[C]) Context() *C {
	return l.ctx
}

// Notifier returns the handle other goroutines use to wake machines up.
func (l *Loop[C]) Notifier() *Notifier {
	return l.notifier
}

// Machines returns the number of live machines.
func (l *Loop[C]) Machines() int {
	return l.machines.len()
}

// Add materializes a machine from creator and delivers its Spawned trigger
// before returning, so the machine observes its registration before any
// I/O. Valid before Run or from machine callbacks on the loop goroutine;
// it must not be called from other goroutines while the loop runs.
func (l *Loop[C]) Add(creator Creator[C]) error {
	_, err := l.spawn(creator)
	return err
}

// Run polls and dispatches until Stop is called or the poller fails. Only
// one Run may be active at a time.
func (l *Loop[C]) Run() error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	events := make([]reactor.Event, l.cfg.BatchSize)
	for !l.stopped.Load() {
		n, err := l.poller.Wait(events, l.nextTimeout(time.Now()))
		if err != nil {
			return fmt.Errorf("rotor: poll: %w", err)
		}

		l.fireDeadlines(time.Now())

		l.wakeups = l.notifier.drain(l.wakeups[:0])
		for _, tok := range l.wakeups {
			l.dispatch(tok, func(m Machine[C], s *Scope[C]) Response[Machine[C], Creator[C]] {
				return m.Wakeup(s)
			})
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			es := fromReactorEvents(ev.Events)
			l.dispatch(Token(ev.Token), func(m Machine[C], s *Scope[C]) Response[Machine[C], Creator[C]] {
				return m.Ready(s, es)
			})
		}
	}
	return nil
}

// Stop makes Run return after the current iteration. Safe from any
// goroutine.
func (l *Loop[C]) Stop() {
	l.stopped.Store(true)
	_ = l.poller.Wake()
}

// Close releases the poller backend. Call after Run has returned.
func (l *Loop[C]) Close() error {
	return l.poller.Close()
}

// dispatch takes exclusive ownership of the machine in tok's slot, runs one
// trigger callback, and applies the resulting response. A stale token
// belongs to a machine already terminated in this iteration and is ignored.
func (l *Loop[C]) dispatch(tok Token, call func(Machine[C], *Scope[C]) Response[Machine[C], Creator[C]]) {
	slot, ok := l.machines.get(tok)
	if !ok || slot.value.machine == nil {
		return
	}
	m := slot.value.machine
	// The slot holds no reference while the callback runs: the response is
	// the only owner of the machine state.
	slot.value.machine = nil
	scope := &Scope[C]{token: tok, loop: l}
	res := call(m, scope)
	l.apply(tok, &res)
}

// apply decomposes one response and updates the bookkeeping: store the
// surviving machine, honor a deadline replacement, service a spawn request,
// or release the slot of a terminated machine. Spawns are serviced here,
// synchronously, so a child machine always sees its Spawned trigger before
// the loop dispatches any further event.
func (l *Loop[C]) apply(tok Token, res *Response[Machine[C], Creator[C]]) {
	next, spawnPayload, deadline := Decompose(tok, res)
	m, alive := next.Machine()
	if !alive {
		l.release(tok)
		return
	}
	if slot, ok := l.machines.get(tok); ok {
		slot.value.machine = m
	}
	if deadline != nil {
		l.setDeadline(tok, *deadline)
	}
	if spawnPayload != nil {
		// A failed spawn is already logged; the requesting machine keeps
		// running and the loop keeps polling.
		_, _ = l.spawn(*spawnPayload)
	}
}

// spawn reserves a slot, materializes the machine via the creator, and
// delivers its Spawned trigger. On creation failure the slot is released
// and a *SpawnError is returned.
func (l *Loop[C]) spawn(creator Creator[C]) (Token, error) {
	tok := l.machines.insert(machineSlot[C]{})
	scope := &Scope[C]{token: tok, loop: l}
	m, err := creator.Create(scope)
	if err != nil {
		l.release(tok)
		serr := &SpawnError{Err: err}
		lg := getLogger()
		lg.Warn().
			Stringer("machine", tok).
			Err(err).
			Msg("creator failed to materialize machine")
		return 0, serr
	}
	if slot, ok := l.machines.get(tok); ok {
		slot.value.machine = m
	}
	l.dispatch(tok, func(m Machine[C], s *Scope[C]) Response[Machine[C], Creator[C]] {
		return m.Spawned(s)
	})
	return tok, nil
}

// release frees a terminated machine's slot: deregisters its fds,
// invalidates pending deadline entries, and recycles the token.
func (l *Loop[C]) release(tok Token) {
	slot, ok := l.machines.get(tok)
	if !ok {
		return
	}
	for _, fd := range slot.value.fds {
		_ = l.poller.Deregister(fd)
	}
	slot.value.timerSeq++
	l.machines.remove(tok)
}

// setDeadline replaces the machine's pending deadline. The old heap entry
// stays behind with a stale sequence number and is discarded when it
// surfaces.
func (l *Loop[C]) setDeadline(tok Token, t time.Time) {
	slot, ok := l.machines.get(tok)
	if !ok {
		return
	}
	slot.value.timerSeq++
	heap.Push(&l.timers, deadlineEntry{when: t, token: tok, seq: slot.value.timerSeq})
}

// nextTimeout derives the poll timeout from the earliest live deadline.
// Negative means block indefinitely.
func (l *Loop[C]) nextTimeout(now time.Time) time.Duration {
	for l.timers.Len() > 0 {
		top := l.timers[0]
		slot, ok := l.machines.get(top.token)
		if !ok || slot.value.timerSeq != top.seq {
			heap.Pop(&l.timers)
			continue
		}
		if d := top.when.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return -1
}

// fireDeadlines dispatches Timeout for every deadline due at now. Due
// entries are collected first so a machine re-arming itself with an
// already-elapsed deadline waits for the next iteration instead of spinning
// this one.
func (l *Loop[C]) fireDeadlines(now time.Time) {
	l.due = l.due[:0]
	for l.timers.Len() > 0 {
		top := l.timers[0]
		if top.when.After(now) {
			break
		}
		heap.Pop(&l.timers)
		slot, ok := l.machines.get(top.token)
		if !ok || slot.value.timerSeq != top.seq {
			continue
		}
		// Firing consumes the deadline; a machine that wants another one
		// returns a fresh WithDeadline from its Timeout callback.
		slot.value.timerSeq++
		l.due = append(l.due, top)
	}
	for _, entry := range l.due {
		l.dispatch(entry.token, func(m Machine[C], s *Scope[C]) Response[Machine[C], Creator[C]] {
			return m.Timeout(s)
		})
	}
}

// registerFD attributes fd's readiness to the machine behind tok.
func (l *Loop[C]) registerFD(tok Token, fd uintptr, interest EventSet) error {
	slot, ok := l.machines.get(tok)
	if !ok {
		return reactor.ErrNotRegistered
	}
	if err := l.poller.Register(fd, uint64(tok), toReactorEvents(interest)); err != nil {
		return err
	}
	slot.value.fds = append(slot.value.fds, fd)
	return nil
}

func (l *Loop[C]) modifyFD(tok Token, fd uintptr, interest EventSet) error {
	if _, ok := l.machines.get(tok); !ok {
		return reactor.ErrNotRegistered
	}
	return l.poller.Modify(fd, uint64(tok), toReactorEvents(interest))
}

func (l *Loop[C]) deregisterFD(tok Token, fd uintptr) error {
	slot, ok := l.machines.get(tok)
	if !ok {
		return reactor.ErrNotRegistered
	}
	if err := l.poller.Deregister(fd); err != nil {
		return err
	}
	for i, registered := range slot.value.fds {
		if registered == fd {
			slot.value.fds = append(slot.value.fds[:i], slot.value.fds[i+1:]...)
			break
		}
	}
	return nil
}

func toReactorEvents(e EventSet) reactor.Events {
	var out reactor.Events
	if e&Readable != 0 {
		out |= reactor.EventRead
	}
	if e&Writable != 0 {
		out |= reactor.EventWrite
	}
	return out
}

func fromReactorEvents(e reactor.Events) EventSet {
	var out EventSet
	if e&reactor.EventRead != 0 {
		out |= Readable
	}
	if e&reactor.EventWrite != 0 {
		out |= Writable
	}
	if e&reactor.EventError != 0 {
		out |= Errored
	}
	if e&reactor.EventHangup != 0 {
		out |= Hangup
	}
	return out
}
