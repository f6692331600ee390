package hashcons

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Joiner is the fork/join contract a recursive stepping driver uses to
// evaluate the eight children of a node: run both functions, return after
// both complete. Whether they actually run in parallel is the strategy's
// business; the contract is synchronous-or-parallel, never asynchronous.
type Joiner interface {
	Join(left, right func())
}

// SerialJoiner runs left then right on the calling goroutine.
type SerialJoiner struct{}

func (SerialJoiner) Join(left, right func()) {
	left()
	right()
}

// ParallelJoiner forks right onto its own goroutine and runs left inline.
type ParallelJoiner struct{}

func (ParallelJoiner) Join(left, right func()) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		right()
	}()
	left()
	wg.Wait()
}

// Join2 adapts a Joiner to functions with results.
func Join2[A, B any](j Joiner, left func() A, right func() B) (A, B) {
	var a A
	var b B
	j.Join(
		func() { a = left() },
		func() { b = right() },
	)
	return a, b
}

// LeafTransition computes the next state of the center leaf from its 3x3x3
// neighborhood of leaf ids. It is supplied by the simulation rule; this
// package never calls it itself, it only carries it to the driver.
type LeafTransition func(neighborhood *[3][3][3]Id[Leaf]) (Id[Leaf], error)

// MemoConfig carries Memo construction options.
type MemoConfig struct {
	joiner Joiner
	leaf   LeafTransition
	logger *zap.Logger
}

// WithJoiner selects the fork/join strategy. The default is SerialJoiner.
func WithJoiner(j Joiner) func(*MemoConfig) {
	return func(c *MemoConfig) {
		c.joiner = j
	}
}

// WithLeafTransition supplies the simulation rule's leaf transition.
func WithLeafTransition(f LeafTransition) func(*MemoConfig) {
	return func(c *MemoConfig) {
		c.leaf = f
	}
}

// WithLogger supplies a logger for canonicalization pressure events. The
// default discards them.
func WithLogger(l *zap.Logger) func(*MemoConfig) {
	return func(c *MemoConfig) {
		c.logger = l
	}
}

// Memo is the thin shim between a recursive stepping driver and the
// per-level tables: it routes each canonicalization to the table matching
// the node's depth and reports table pressure. The recursion itself, and
// the transition rule, live outside this package.
type Memo[V any, S any, PS Slot[V, S]] struct {
	tables *Tables[V, S, PS]
	joiner Joiner
	leaf   LeafTransition
	logger *zap.Logger
}

// SyncMemo is a Memo over the lock-free backend.
type SyncMemo[V any] = Memo[V, SyncSlot[V], *SyncSlot[V]]

// NewMemo binds a per-level collection to a fork/join strategy and an
// optional leaf transition.
func NewMemo[V any, S any, PS Slot[V, S]](tables *Tables[V, S, PS], options ...func(*MemoConfig)) *Memo[V, S, PS] {
	c := MemoConfig{
		joiner: SerialJoiner{},
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(&c)
	}
	return &Memo[V, S, PS]{
		tables: tables,
		joiner: c.joiner,
		leaf:   c.leaf,
		logger: c.logger,
	}
}

// Tables returns the bound per-level collection.
func (m *Memo[V, S, PS]) Tables() *Tables[V, S, PS] { return m.tables }

// Joiner returns the bound fork/join strategy.
func (m *Memo[V, S, PS]) Joiner() Joiner { return m.joiner }

// LeafTransition returns the bound transition, or nil if none was supplied.
func (m *Memo[V, S, PS]) LeafTransition() LeafTransition { return m.leaf }

// Canon canonicalizes a node at the level of key, inserting value if the
// node is new. A full table is reported with the level attached; callers
// should treat it as the signal to rebuild with more capacity, not as a
// crash. Duplicate keys are not an error here at all: the canonical entry
// comes back either way.
func Canon[L Level, V any, S any, PS Slot[V, S]](m *Memo[V, S, PS], key Key[L], value V) (*Entry[V], error) {
	w := TableFor[L](m.tables)
	e, _, err := w.GetOrInsert(key, value)
	if err != nil {
		m.logger.Warn("node table full",
			zap.Int("level", Depth[L]()),
			zap.Int("capacity", w.Table().Capacity()),
			zap.Int("searchLimit", w.Table().SearchLimit()),
		)
		return nil, errors.Wrapf(err, "canonicalize node at level %d", Depth[L]())
	}
	return e, nil
}
