package hashcons

import "iter"

// levelTable pads each per-level table header out to its own cache line so
// that insertions at adjacent levels do not false-share the headers.
type levelTable[V any, S any, PS Slot[V, S]] struct {
	Table[V, S, PS]
	_ [CacheLineSize]byte
}

// Tables holds one table per tree depth. The table at index d stores keys
// built from level-d ids, i.e. the nodes at depth d+1. Access goes through
// TableFor, which ties the key type to the level at compile time.
type Tables[V any, S any, PS Slot[V, S]] struct {
	tables []levelTable[V, S, PS]
}

// SyncTables is a per-level collection on the lock-free backend.
type SyncTables[V any] = Tables[V, SyncSlot[V], *SyncSlot[V]]

// LocalTables is a per-level collection on the single-goroutine backend.
type LocalTables[V any] = Tables[V, LocalSlot[V], *LocalSlot[V]]

// NewTables builds a collection of levels tables, each with the same
// capacity and options. Size generously: the tables never grow, and a
// deeper simulation usually wants capacity skewed toward the lower levels,
// which NewTablesFunc allows.
func NewTables[V any, S any, PS Slot[V, S]](levels, capacity int, options ...func(*Config)) *Tables[V, S, PS] {
	return NewTablesFunc[V, S, PS](levels, func(int) int { return capacity }, options...)
}

// NewTablesFunc is NewTables with a per-depth capacity function.
func NewTablesFunc[V any, S any, PS Slot[V, S]](levels int, capacity func(depth int) int, options ...func(*Config)) *Tables[V, S, PS] {
	if levels < 1 {
		panic("hashcons: need at least one level")
	}
	ts := &Tables[V, S, PS]{tables: make([]levelTable[V, S, PS], levels)}
	for d := range ts.tables {
		ts.tables[d].Table = *NewTable[V, S, PS](capacity(d), options...)
	}
	return ts
}

// NewSyncTables builds a concurrent per-level collection; see NewTables.
func NewSyncTables[V any](levels, capacity int, options ...func(*Config)) *SyncTables[V] {
	return NewTables[V, SyncSlot[V]](levels, capacity, options...)
}

// NewLocalTables builds a single-goroutine per-level collection; see
// NewTables.
func NewLocalTables[V any](levels, capacity int, options ...func(*Config)) *LocalTables[V] {
	return NewTables[V, LocalSlot[V]](levels, capacity, options...)
}

// Levels returns how many per-depth tables the collection holds.
func (ts *Tables[V, S, PS]) Levels() int { return len(ts.tables) }

// TableFor returns the typed view of the table storing Key[L], the one at
// index Depth[L](). The level tag does all the work: a Key[Level2] cannot
// be passed to the Level3 view, the mistake fails to compile. Panics if the
// collection was built with too few levels to contain L.
func TableFor[L Level, V any, S any, PS Slot[V, S]](ts *Tables[V, S, PS]) View[L, V, S, PS] {
	d := Depth[L]()
	if d >= len(ts.tables) {
		panic("hashcons: level deeper than the collection")
	}
	return View[L, V, S, PS]{t: &ts.tables[d].Table}
}

// View is the strongly typed facade over one level's table. It is a value;
// copy it freely. All operations delegate to the underlying Table with the
// level tag erased, which is free: tagging and untagging never change bit
// patterns.
type View[L Level, V any, S any, PS Slot[V, S]] struct {
	t *Table[V, S, PS]
}

// Table exposes the underlying untyped table.
func (w View[L, V, S, PS]) Table() *Table[V, S, PS] { return w.t }

// Find looks up the entry for key; see Table.Find.
func (w View[L, V, S, PS]) Find(key Key[L]) (*Entry[V], bool) {
	return w.t.Find(key.Base())
}

// Insert stores value under key; see Table.Insert.
func (w View[L, V, S, PS]) Insert(key Key[L], value V) (*Entry[V], error) {
	return w.t.Insert(key.Base(), value)
}

// GetOrInsert canonicalizes key; see Table.GetOrInsert.
func (w View[L, V, S, PS]) GetOrInsert(key Key[L], value V) (*Entry[V], bool, error) {
	return w.t.GetOrInsert(key.Base(), value)
}

// All iterates the occupied entries with typed keys.
func (w View[L, V, S, PS]) All() iter.Seq2[Key[L], *Entry[V]] {
	return func(yield func(Key[L], *Entry[V]) bool) {
		w.t.Range(func(k BaseKey, e *Entry[V]) bool {
			return yield(TypedKey[L](k), e)
		})
	}
}

// Successor reads the entry's late value as a typed id. A node keyed by
// level-L children sits at depth L+1, and its memoized successor — the
// center of the node advanced by the level's time step — is one level down
// again, hence Id[L].
func (w View[L, V, S, PS]) Successor(e *Entry[V]) (Id[L], bool) {
	v, ok := e.Late()
	return Id[L](v), ok
}

// SetSuccessor publishes the entry's memoized successor. Set it at most
// once, after insertion; readers of the early value never wait on it.
func (w View[L, V, S, PS]) SetSuccessor(e *Entry[V], id Id[L]) {
	e.SetLate(id.Raw())
}
