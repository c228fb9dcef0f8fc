//go:build linux

// File: reactor/epoll_linux.go
// License: Apache-2.0
//
// Linux epoll backend. Wakeups ride on an eventfd registered alongside the
// watched descriptors.

package reactor

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

type epollPoller struct {
	epfd   int
	wakefd int

	mu     sync.Mutex
	tokens map[int32]uint64
	closed bool

	// scratch buffer for EpollWait; Wait is single-goroutine.
	events []unix.EpollEvent
}

// New returns the platform poller, an epoll instance on Linux.
func New() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("reactor: epoll create: %w", err)
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: eventfd: %w", err)
	}
	p := &epollPoller{
		epfd:   epfd,
		wakefd: wakefd,
		tokens: make(map[int32]uint64),
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, &ev); err != nil {
		unix.Close(wakefd)
		unix.Close(epfd)
		return nil, fmt.Errorf("reactor: epoll ctl add wakefd: %w", err)
	}
	return p, nil
}

func epollMask(events Events) uint32 {
	var mask uint32
	if events&EventRead != 0 {
		mask |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		mask |= unix.EPOLLOUT
	}
	return mask | unix.EPOLLRDHUP
}

func (p *epollPoller) Register(fd uintptr, token uint64, events Events) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.tokens[int32(fd)]; ok {
		return ErrAlreadyRegistered
	}
	ev := unix.EpollEvent{Events: epollMask(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("reactor: epoll ctl add: %w", err)
	}
	p.tokens[int32(fd)] = token
	return nil
}

func (p *epollPoller) Modify(fd uintptr, token uint64, events Events) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.tokens[int32(fd)]; !ok {
		return ErrNotRegistered
	}
	ev := unix.EpollEvent{Events: epollMask(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
		return fmt.Errorf("reactor: epoll ctl mod: %w", err)
	}
	p.tokens[int32(fd)] = token
	return nil
}

func (p *epollPoller) Deregister(fd uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	if _, ok := p.tokens[int32(fd)]; !ok {
		return ErrNotRegistered
	}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		return fmt.Errorf("reactor: epoll ctl del: %w", err)
	}
	delete(p.tokens, int32(fd))
	return nil
}

func (p *epollPoller) Wait(buf []Event, timeout time.Duration) (int, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, ErrClosed
	}
	// +1 leaves room for the wake eventfd.
	if cap(p.events) < len(buf)+1 {
		p.events = make([]unix.EpollEvent, len(buf)+1)
	}
	p.mu.Unlock()

	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
		if timeout > 0 && ms == 0 {
			ms = 1
		}
	}
	n, err := unix.EpollWait(p.epfd, p.events[:len(buf)+1], ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("reactor: epoll wait: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	out := 0
	for i := 0; i < n; i++ {
		ev := p.events[i]
		if int(ev.Fd) == p.wakefd {
			p.drainWake()
			continue
		}
		if out == len(buf) {
			// The kernel returned more ready fds than buf holds; leave
			// the rest unconsumed, level-triggered epoll re-reports them
			// on the next Wait.
			break
		}
		token, ok := p.tokens[ev.Fd]
		if !ok {
			// Deregistered between EpollWait returning and now.
			continue
		}
		var events Events
		if ev.Events&unix.EPOLLIN != 0 {
			events |= EventRead
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			events |= EventWrite
		}
		if ev.Events&unix.EPOLLERR != 0 {
			events |= EventError
		}
		if ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
			events |= EventHangup
		}
		buf[out] = Event{Token: token, Events: events}
		out++
	}
	return out, nil
}

func (p *epollPoller) drainWake() {
	var b [8]byte
	for {
		if _, err := unix.Read(p.wakefd, b[:]); err != nil {
			return
		}
	}
}

func (p *epollPoller) Wake() error {
	// Increment the eventfd counter; EAGAIN means the counter is already
	// nonzero and the poller will wake anyway.
	one := [8]byte{1}
	_, err := unix.Write(p.wakefd, one[:])
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("reactor: wake: %w", err)
	}
	return nil
}

func (p *epollPoller) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	unix.Close(p.wakefd)
	return unix.Close(p.epfd)
}
