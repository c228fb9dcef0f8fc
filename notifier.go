// File: notifier.go
// License: Apache-2.0

package rotor

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/allchain/rotor/reactor"
)

// Notifier injects out-of-band wakeups into a running loop. It is the only
// channel into the loop that is safe from other goroutines; machines woken
// this way receive a Wakeup trigger on the loop thread, in the order the
// notifications were issued.
type Notifier struct {
	mu     sync.Mutex
	queue  *queue.Queue
	poller reactor.Poller
}

func newNotifier(p reactor.Poller) *Notifier {
	return &Notifier{queue: queue.New(), poller: p}
}

// Wakeup schedules a Wakeup trigger for the machine identified by token.
// Stale tokens are dropped silently when drained. Safe for concurrent use.
func (n *Notifier) Wakeup(token Token) error {
	n.mu.Lock()
	n.queue.Add(token)
	n.mu.Unlock()
	return n.poller.Wake()
}

// drain moves all pending wakeup tokens into buf, preserving FIFO order.
func (n *Notifier) drain(buf []Token) []Token {
	n.mu.Lock()
	defer n.mu.Unlock()
	for n.queue.Length() > 0 {
		buf = append(buf, n.queue.Remove().(Token))
	}
	return buf
}
