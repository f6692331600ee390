package hashcons

// Level is the compile-time ladder of tree depths. Leaf is depth 0;
// NonLeaf[L] is depth 1 + depth(L). The levels are zero-sized markers: the
// numeric depth is derived from the type alone and never stored. The
// interface is sealed (the depth method is unexported) so the ladder is
// closed to this package.
type Level interface {
	comparable
	depth() int
}

// Leaf is depth 0, the base of the ladder. A leaf holds raw cell content
// rather than a key of children, so the level-indexed tables start at the
// keys built from leaf ids.
type Leaf struct{}

func (Leaf) depth() int { return 0 }

// NonLeaf lifts a level by one. NonLeaf[Leaf], NonLeaf[NonLeaf[Leaf]], ...
// are all distinct types, which is what keeps per-depth ids and keys from
// mixing.
type NonLeaf[L Level] struct{}

func (NonLeaf[L]) depth() int {
	var child L
	return 1 + child.depth()
}

// Depth returns the numeric depth of level L.
func Depth[L Level]() int {
	var l L
	return l.depth()
}

// The named rungs of the ladder. Seventeen levels cover the reference
// configuration; extending the ladder is a matter of adding aliases, the
// depth of each rung always being derived, never declared.
type (
	Level0  = Leaf
	Level1  = NonLeaf[Level0]
	Level2  = NonLeaf[Level1]
	Level3  = NonLeaf[Level2]
	Level4  = NonLeaf[Level3]
	Level5  = NonLeaf[Level4]
	Level6  = NonLeaf[Level5]
	Level7  = NonLeaf[Level6]
	Level8  = NonLeaf[Level7]
	Level9  = NonLeaf[Level8]
	Level10 = NonLeaf[Level9]
	Level11 = NonLeaf[Level10]
	Level12 = NonLeaf[Level11]
	Level13 = NonLeaf[Level12]
	Level14 = NonLeaf[Level13]
	Level15 = NonLeaf[Level14]
	Level16 = NonLeaf[Level15]
)

// NumLevels is the number of named rungs, Level0 through Level16.
const NumLevels = 17

// Id is an opaque handle to a canonical node at level L. The zero value is
// reserved to mean "no id", so an optional Id needs no extra flag. Ids carry
// no ownership: the table exclusively owns every entry.
type Id[L Level] uint32

// Raw returns the untyped word. Zero means "no id".
func (id Id[L]) Raw() uint32 { return uint32(id) }

// IsNil reports whether id is the reserved "no id" value.
func (id Id[L]) IsNil() bool { return id == 0 }

// Key is the 2x2x2 cube of level-L child ids naming a node one level up.
// Keys are plain values, structurally comparable, never mutated after
// construction. A Key[L] with any nil id is invalid and is rejected loudly
// by the table layer.
type Key[L Level] [2][2][2]Id[L]

// Base erases the level tag. The conversion is total and lossless: bit
// patterns are unchanged in both directions.
func (k Key[L]) Base() BaseKey {
	return BaseKey{
		{{uint32(k[0][0][0]), uint32(k[0][0][1])}, {uint32(k[0][1][0]), uint32(k[0][1][1])}},
		{{uint32(k[1][0][0]), uint32(k[1][0][1])}, {uint32(k[1][1][0]), uint32(k[1][1][1])}},
	}
}

// TypedKey restores the level tag on an untyped key.
func TypedKey[L Level](k BaseKey) Key[L] {
	return Key[L]{
		{{Id[L](k[0][0][0]), Id[L](k[0][0][1])}, {Id[L](k[0][1][0]), Id[L](k[0][1][1])}},
		{{Id[L](k[1][0][0]), Id[L](k[1][0][1])}, {Id[L](k[1][1][0]), Id[L](k[1][1][1])}},
	}
}
