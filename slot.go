package hashcons

// Slot is the constraint a table slot backend must satisfy. S is the slot
// struct itself; the constraint binds its pointer type so the table can
// operate on slots in place inside its backing array.
//
// The contract, for either backend:
//
//   - get returns the slot's key and entry if it is occupied. It never
//     returns a torn entry: the concurrent backend waits out an in-flight
//     fill on this slot before answering.
//   - fill installs (key, entry) if the slot is empty; at most one fill can
//     ever win a given slot. On success it returns the stored entry and
//     ok=true. If the slot is already occupied, ok=false and it returns the
//     occupant's key and entry instead; the caller keeps the value it
//     passed in, nothing is consumed.
//   - take empties the slot, returning its contents. It requires exclusive
//     access: no get, fill or other take may run concurrently. Used only by
//     Drain.
//
// The interface is sealed; the two implementations are SyncSlot and
// LocalSlot.
type Slot[V any, S any] interface {
	*S
	get() (BaseKey, *Entry[V], bool)
	fill(key BaseKey, e Entry[V]) (stored *Entry[V], occupant BaseKey, ok bool)
	take() (BaseKey, Entry[V], bool)
}
