package hashcons

// LocalSlot is the single-goroutine slot backend: plain fields, no atomics,
// no waiting. Key word 0 doubles as the occupancy flag (zero is not a valid
// id, so a stored key always has it nonzero). The external contract matches
// SyncSlot exactly; only the synchronization differs.
//
// A LocalSlot-backed table must never be shared between goroutines. Go has
// no way to reject that at compile time; run tests with -race and reach for
// SyncSlot whenever in doubt.
type LocalSlot[V any] struct {
	key   [8]uint32
	entry Entry[V]
}

func (s *LocalSlot[V]) get() (BaseKey, *Entry[V], bool) {
	if s.key[0] == 0 {
		return BaseKey{}, nil, false
	}
	return keyFromWords(s.key), &s.entry, true
}

func (s *LocalSlot[V]) fill(key BaseKey, e Entry[V]) (*Entry[V], BaseKey, bool) {
	if s.key[0] != 0 {
		return &s.entry, keyFromWords(s.key), false
	}
	s.key = key.words()
	s.entry = e
	return &s.entry, key, true
}

func (s *LocalSlot[V]) take() (BaseKey, Entry[V], bool) {
	if s.key[0] == 0 {
		return BaseKey{}, Entry[V]{}, false
	}
	key := keyFromWords(s.key)
	e := s.entry
	s.key = [8]uint32{}
	s.entry = Entry[V]{}
	return key, e, true
}
