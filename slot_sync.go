package hashcons

import "sync/atomic"

// Slot state machine, packed into one atomic word:
//
//	empty:  both halves zero
//	busy:   low half 1, high half 0 (a fill is mid-flight)
//	full:   both halves nonzero; the halves are key words 0 and 1
//
// The busy encoding cannot collide with a real key because every key word
// is nonzero, so a full state always has a nonzero high half. Packing the
// first two key words into the state means a reader that loads "full" has
// already read a quarter of the key with the same load that synchronized
// with the writer.
const (
	slotEmpty uint64 = 0
	slotBusy  uint64 = 1
)

func packState(w0, w1 uint32) uint64 {
	return uint64(w0) | uint64(w1)<<32
}

func unpackState(s uint64) (w0, w1 uint32) {
	return uint32(s), uint32(s >> 32)
}

// SyncSlot is the lock-free slot backend, safe for any number of concurrent
// readers and fillers. fill transitions empty -> busy with a CAS, writes
// the remaining key words and the entry with plain stores, then publishes
// by storing the full state with release ordering. Writers and readers that
// observe busy back off with delay() until the winner publishes; the wait
// is bounded because a winning fill is a handful of stores. Contention is
// resolved entirely with atomics, never an OS lock.
//
// The zero value is an empty slot, so a freshly allocated slot array is
// ready for use.
type SyncSlot[V any] struct {
	state atomic.Uint64
	// key words 2..7; valid only in the full state, published by the
	// release store of state.
	rest  [6]uint32
	entry Entry[V]
}

func (s *SyncSlot[V]) loadKey(w0, w1 uint32) BaseKey {
	return keyFromWords([8]uint32{
		w0, w1,
		s.rest[0], s.rest[1], s.rest[2], s.rest[3], s.rest[4], s.rest[5],
	})
}

func (s *SyncSlot[V]) get() (BaseKey, *Entry[V], bool) {
	spins := 0
	for {
		switch st := s.state.Load(); st {
		case slotEmpty:
			return BaseKey{}, nil, false
		case slotBusy:
			// another goroutine is filling this slot
			delay(&spins)
		default:
			w0, w1 := unpackState(st)
			return s.loadKey(w0, w1), &s.entry, true
		}
	}
}

func (s *SyncSlot[V]) fill(key BaseKey, e Entry[V]) (*Entry[V], BaseKey, bool) {
	for {
		if s.state.CompareAndSwap(slotEmpty, slotBusy) {
			break
		}
		switch st := s.state.Load(); st {
		case slotEmpty:
			// state moved between the failed CAS and this load; try again
		case slotBusy:
			// another goroutine is filling this slot; get waits for the
			// winner to publish, then we report its entry
			occupant, stored, ok := s.get()
			if !ok {
				panic("hashcons: slot emptied during concurrent fill")
			}
			return stored, occupant, false
		default:
			w0, w1 := unpackState(st)
			return &s.entry, s.loadKey(w0, w1), false
		}
	}
	// we own the busy state: no other fill can proceed until the store
	// below, so plain writes are safe
	w := key.words()
	s.rest = [6]uint32{w[2], w[3], w[4], w[5], w[6], w[7]}
	s.entry = e
	s.state.Store(packState(w[0], w[1]))
	return &s.entry, key, true
}

func (s *SyncSlot[V]) take() (BaseKey, Entry[V], bool) {
	switch st := s.state.Load(); st {
	case slotEmpty:
		return BaseKey{}, Entry[V]{}, false
	case slotBusy:
		panic("hashcons: take during concurrent fill")
	default:
		w0, w1 := unpackState(st)
		key := s.loadKey(w0, w1)
		e := s.entry
		s.entry = Entry[V]{}
		s.rest = [6]uint32{}
		s.state.Store(slotEmpty)
		return key, e, true
	}
}
