// File: slab.go
// License: Apache-2.0
//
// Token-indexed machine storage with generation counters.

package rotor

// slabSlot holds one value plus the bookkeeping that makes recycled slots
// safe: a slot's generation is bumped on free, so a stale Token can never
// reach the value of a later occupant.
type slabSlot[T any] struct {
	value T
	gen   uint32
	next  int32 // free-list link, -1 terminates
	live  bool
}

type slab[T any] struct {
	slots []slabSlot[T]
	free  int32
	count int
}

func newSlab[T any]() *slab[T] {
	return &slab[T]{free: -1}
}

func (s *slab[T]) insert(v T) Token {
	var idx int32
	if s.free >= 0 {
		idx = s.free
		s.free = s.slots[idx].next
	} else {
		s.slots = append(s.slots, slabSlot[T]{next: -1})
		idx = int32(len(s.slots) - 1)
	}
	slot := &s.slots[idx]
	slot.value = v
	slot.live = true
	s.count++
	return Token(uint64(slot.gen)<<32 | uint64(uint32(idx)))
}

// get returns the slot for a token, or false if the token is stale: out of
// range, freed, or from a previous occupant of the same index.
func (s *slab[T]) get(tok Token) (*slabSlot[T], bool) {
	idx := tok.index()
	if int(idx) >= len(s.slots) {
		return nil, false
	}
	slot := &s.slots[idx]
	if !slot.live || slot.gen != tok.generation() {
		return nil, false
	}
	return slot, true
}

func (s *slab[T]) remove(tok Token) bool {
	slot, ok := s.get(tok)
	if !ok {
		return false
	}
	var zero T
	slot.value = zero
	slot.live = false
	slot.gen++
	slot.next = s.free
	s.free = int32(tok.index())
	s.count--
	return true
}

func (s *slab[T]) len() int {
	return s.count
}
