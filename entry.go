package hashcons

// Entry is the payload stored against a key: an early value fixed when the
// slot is filled, and a late value that starts unset and may be set once
// afterwards. The late value is a raw nonzero word at this layer (zero
// means unset); the typed View layer dresses it up as the id of the node's
// computed successor.
//
// The early value is published together with the slot's key: any reader
// that can see the entry sees the complete early value. The late value uses
// its own independent publication (loadUint32/storeUint32), so setting it
// after insertion needs no new critical section and readers that do not ask
// for it never wait on it.
type Entry[V any] struct {
	early V
	late  uint32
}

// Early returns the immutable early value. The pointer stays valid until
// the owning table is drained or discarded.
func (e *Entry[V]) Early() *V { return &e.early }

// Late returns the late value, if it has been set.
func (e *Entry[V]) Late() (uint32, bool) {
	v := loadUint32(&e.late)
	return v, v != 0
}

// SetLate publishes the late value. v must be nonzero. Intended to be
// called at most once per entry; the last write wins if that is violated.
func (e *Entry[V]) SetLate(v uint32) {
	if v == 0 {
		panic("hashcons: zero late value")
	}
	storeUint32(&e.late, v)
}
