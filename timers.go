// File: timers.go
// License: Apache-2.0
//
// Deadline min-heap for the loop. Replaced deadlines are invalidated
// lazily: each entry carries the sequence number current when it was
// pushed, and entries whose sequence no longer matches the slot are
// discarded when they surface.

package rotor

import "time"

type deadlineEntry struct {
	when  time.Time
	token Token
	seq   uint64
}

type deadlineHeap []deadlineEntry

func (h deadlineHeap) Len() int { return len(h) }

func (h deadlineHeap) Less(i, j int) bool { return h[i].when.Before(h[j].when) }

func (h deadlineHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *deadlineHeap) Push(x any) {
	*h = append(*h, x.(deadlineEntry))
}

func (h *deadlineHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}
