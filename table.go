package hashcons

import (
	"hash/maphash"
	"iter"
)

const defaultSearchLimit = 32

// Config carries table construction options.
type Config struct {
	searchLimit int
	seed        maphash.Seed
	seedSet     bool
}

// WithSearchLimit bounds how many probe steps an insertion attempts before
// reporting ErrTableFull. The default is 32. A smaller limit tightens the
// worst-case insertion latency at the cost of more "full" outcomes on a
// partially occupied table; lookups are unaffected and always probe as far
// as needed.
func WithSearchLimit(n int) func(*Config) {
	return func(c *Config) {
		c.searchLimit = n
	}
}

// WithSeed fixes the hash seed instead of drawing a random one. Useful for
// reproducing a probe layout; identical seeds give identical bucket
// assignments across runs.
func WithSeed(seed maphash.Seed) func(*Config) {
	return func(c *Config) {
		c.seed = seed
		c.seedSet = true
	}
}

// Table is a fixed-capacity canonicalizing hash table: an array of slots,
// linear probing, no growth, no rehash, no eviction. The slot backend S
// decides the concurrency contract; see SyncTable and LocalTable.
//
// A Table is shared by reference among any number of readers and inserters
// (with the SyncSlot backend). Only Drain demands exclusive access, and
// that is the caller's invariant to uphold: the table does no tracking to
// enforce it.
type Table[V any, S any, PS Slot[V, S]] struct {
	slots       []S
	seed        maphash.Seed
	mask        uint64
	searchLimit int
}

// SyncTable is a Table on the lock-free slot backend, safe for concurrent
// use by any number of goroutines.
type SyncTable[V any] = Table[V, SyncSlot[V], *SyncSlot[V]]

// LocalTable is a Table on the single-goroutine slot backend. It must not
// be shared between goroutines.
type LocalTable[V any] = Table[V, LocalSlot[V], *LocalSlot[V]]

// NewTable builds a table with capacity rounded up to the next power of
// two. It panics if the rounding overflows: sizing is the caller's explicit
// decision, and a table that silently got a different size would defeat the
// point of the fixed-capacity design.
func NewTable[V any, S any, PS Slot[V, S]](capacity int, options ...func(*Config)) *Table[V, S, PS] {
	c := Config{searchLimit: defaultSearchLimit}
	for _, opt := range options {
		opt(&c)
	}
	if c.searchLimit < 1 {
		panic("hashcons: search limit must be positive")
	}
	n := nextPowOf2(capacity)
	if n < 1 || n < capacity {
		panic("hashcons: capacity too big")
	}
	if !c.seedSet {
		c.seed = maphash.MakeSeed()
	}
	return &Table[V, S, PS]{
		slots:       make([]S, n),
		seed:        c.seed,
		mask:        uint64(n - 1),
		searchLimit: c.searchLimit,
	}
}

// NewSyncTable builds a concurrent table; see NewTable.
func NewSyncTable[V any](capacity int, options ...func(*Config)) *SyncTable[V] {
	return NewTable[V, SyncSlot[V]](capacity, options...)
}

// NewLocalTable builds a single-goroutine table; see NewTable.
func NewLocalTable[V any](capacity int, options ...func(*Config)) *LocalTable[V] {
	return NewTable[V, LocalSlot[V]](capacity, options...)
}

// Capacity returns the slot count (a power of two).
func (t *Table[V, S, PS]) Capacity() int { return len(t.slots) }

// SearchLimit returns the current insert search limit.
func (t *Table[V, S, PS]) SearchLimit() int { return t.searchLimit }

// SetSearchLimit adjusts the insert search limit for future insertions.
// Keys inserted under a larger historical limit stay findable, since
// lookups never apply the limit.
func (t *Table[V, S, PS]) SetSearchLimit(n int) {
	if n < 1 {
		panic("hashcons: search limit must be positive")
	}
	t.searchLimit = n
}

// Seed returns the table's hash seed.
func (t *Table[V, S, PS]) Seed() maphash.Seed { return t.seed }

func (t *Table[V, S, PS]) startIndex(key BaseKey) uint64 {
	return maphash.Comparable(t.seed, key) & t.mask
}

// Find returns the entry stored for key, if present. It probes from the
// key's start index, stopping at the first empty slot or after a full
// table's worth of steps; occupied slots with other keys are skipped. The
// returned pointer stays valid until the table is drained or discarded.
func (t *Table[V, S, PS]) Find(key BaseKey) (*Entry[V], bool) {
	key.check()
	idx := t.startIndex(key)
	for range t.slots {
		k, e, ok := PS(&t.slots[idx]).get()
		if !ok {
			return nil, false
		}
		if k == key {
			return e, true
		}
		idx = (idx + 1) & t.mask
	}
	return nil, false
}

// Insert stores value under key if the key is absent, probing at most
// min(capacity, searchLimit) steps.
//
// Success returns the freshly stored entry. If the key is already present,
// Insert returns the canonical entry together with ErrAlreadyInTable; the
// caller's value is not stored and remains the caller's to dispose of — the
// table never merges values. If every probed slot holds some other key,
// Insert returns ErrTableFull; the table has not changed and will not retry.
func (t *Table[V, S, PS]) Insert(key BaseKey, value V) (*Entry[V], error) {
	key.check()
	limit := t.searchLimit
	if limit > len(t.slots) {
		limit = len(t.slots)
	}
	idx := t.startIndex(key)
	for range limit {
		stored, occupant, ok := PS(&t.slots[idx]).fill(key, Entry[V]{early: value})
		if ok {
			return stored, nil
		}
		if occupant == key {
			return stored, ErrAlreadyInTable
		}
		idx = (idx + 1) & t.mask
	}
	return nil, ErrTableFull
}

// GetOrInsert canonicalizes: it returns the entry stored for key, inserting
// value if the key was absent. inserted reports whether this call's value
// became the stored one; when false the caller's value was not consumed.
// The only error is ErrTableFull.
func (t *Table[V, S, PS]) GetOrInsert(key BaseKey, value V) (e *Entry[V], inserted bool, err error) {
	e, err = t.Insert(key, value)
	switch err {
	case nil:
		return e, true, nil
	case ErrAlreadyInTable:
		return e, false, nil
	default:
		return nil, false, err
	}
}

// Range calls f for every occupied slot, in slot order (the order carries
// no meaning), until f returns false. Concurrent insertions during a Range
// may or may not be observed.
func (t *Table[V, S, PS]) Range(f func(BaseKey, *Entry[V]) bool) {
	for i := range t.slots {
		k, e, ok := PS(&t.slots[i]).get()
		if !ok {
			continue
		}
		if !f(k, e) {
			return
		}
	}
}

// All returns a restartable iterator over the occupied slots.
func (t *Table[V, S, PS]) All() iter.Seq2[BaseKey, *Entry[V]] {
	return t.Range
}

// Len counts the occupied slots by traversal; it is O(capacity).
func (t *Table[V, S, PS]) Len() int {
	n := 0
	t.Range(func(BaseKey, *Entry[V]) bool {
		n++
		return true
	})
	return n
}

// Drain returns a one-shot sequence that removes and yields every entry.
// It requires exclusive access: no other operation may touch the table
// while the sequence runs. Once iteration starts, the table ends up empty
// even if the caller breaks out early — the remaining entries are taken and
// discarded on the way out. A sequence that is never iterated removes
// nothing.
func (t *Table[V, S, PS]) Drain() iter.Seq2[BaseKey, Entry[V]] {
	i := 0
	return func(yield func(BaseKey, Entry[V]) bool) {
		for ; i < len(t.slots); i++ {
			k, e, ok := PS(&t.slots[i]).take()
			if !ok {
				continue
			}
			if !yield(k, e) {
				for i++; i < len(t.slots); i++ {
					PS(&t.slots[i]).take()
				}
				return
			}
		}
	}
}
