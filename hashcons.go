// Package hashcons implements a canonicalizing (hash-consing) store for the
// nodes of a recursively subdivided spatial structure, as used by
// HashLife-style accelerated cellular-automaton simulation. Every distinct
// sub-structure is stored exactly once and is thereafter referred to by a
// small integer Id instead of by its contents, so that repeated sub-patterns
// collapse into a single entry and memoized results attach to that entry.
//
// The store is built from three layers:
//
//   - A Slot is the atomic unit of storage: one optional (key, entry) pair
//     plus the bookkeeping needed to publish it safely. Two interchangeable
//     backends exist. SyncSlot is lock-free: a single 64-bit atomic state
//     word encodes empty / modification-in-progress / full, and in the full
//     state the word itself carries the first two key words, so readers
//     reconstruct the key without a second synchronized load. LocalSlot uses
//     plain fields and is for single-goroutine use only.
//
//   - A Table is a fixed, power-of-two sized array of slots with linear
//     probing. It never grows and never rehashes: insertion probes at most
//     the insert search limit (default 32) steps and reports ErrTableFull
//     when no slot is found, which callers must treat as a normal outcome.
//     Lookups probe without that bound so keys inserted under a shorter
//     historical limit stay reachable.
//
//   - The Level / Id / Key types tag everything with a compile-time tree
//     depth, and Tables holds one table per depth with a statically typed
//     accessor, so an identifier or key from one depth cannot be handed to
//     the table of another.
//
// Entries carry an early value, fixed at insertion, and an optional late
// value that may be set once afterwards (typically the id of the node's
// computed successor) without disturbing concurrent readers.
package hashcons

import "errors"

var (
	// ErrAlreadyInTable reports that Insert found the key already present.
	// It is a normal outcome, not a fault: the returned entry is the
	// canonical one and the caller keeps its own value.
	ErrAlreadyInTable = errors.New("hashcons: key already in table")

	// ErrTableFull reports that an insertion ran out of free slots within
	// the insert search limit. The table never resizes or retries; the
	// caller decides whether to fail, retry elsewhere, or rebuild larger.
	ErrTableFull = errors.New("hashcons: table full or insert search limit hit")
)

// BaseKey is the untyped key shape shared by every table: the 2x2x2 cube of
// child identifiers, as raw words. All eight words must be nonzero (zero is
// the reserved "no id" value); the typed Key[L] layer guarantees this, and
// the untyped layer panics if handed a key that violates it.
type BaseKey [2][2][2]uint32

// words flattens the cube in x-major order. Words 0 and 1 are the pair the
// concurrent slot packs into its state word.
func (k BaseKey) words() [8]uint32 {
	return [8]uint32{
		k[0][0][0], k[0][0][1], k[0][1][0], k[0][1][1],
		k[1][0][0], k[1][0][1], k[1][1][0], k[1][1][1],
	}
}

func keyFromWords(w [8]uint32) BaseKey {
	return BaseKey{
		{{w[0], w[1]}, {w[2], w[3]}},
		{{w[4], w[5]}, {w[6], w[7]}},
	}
}

func (k BaseKey) check() {
	for _, w := range k.words() {
		if w == 0 {
			panic("hashcons: key contains a zero id")
		}
	}
}
