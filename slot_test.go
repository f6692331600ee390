package hashcons

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

// testKey builds a valid key whose eight words are base..base+7.
func testKey(base uint32) BaseKey {
	if base == 0 {
		panic("base must be nonzero")
	}
	return keyFromWords([8]uint32{
		base, base + 1, base + 2, base + 3,
		base + 4, base + 5, base + 6, base + 7,
	})
}

// uniformKey builds a valid key with all eight words equal to w.
func uniformKey(w uint32) BaseKey {
	return keyFromWords([8]uint32{w, w, w, w, w, w, w, w})
}

func TestSyncSlotContract(t *testing.T) {
	testSlotContract[SyncSlot[int]](t)
}

func TestLocalSlotContract(t *testing.T) {
	testSlotContract[LocalSlot[int]](t)
}

// testSlotContract drives the shared slot contract over a backend: the
// zero value is empty, the first fill wins and publishes, a second fill
// reports the occupant without consuming anything, and take empties.
func testSlotContract[S any, PS Slot[int, S]](t *testing.T) {
	var s S
	ps := PS(&s)
	key := testKey(9)

	if _, _, ok := ps.get(); ok {
		t.Fatal("zero slot is not empty")
	}
	if _, _, ok := ps.take(); ok {
		t.Fatal("take on empty slot succeeded")
	}

	stored, occupant, ok := ps.fill(key, Entry[int]{early: 11})
	if !ok {
		t.Fatal("fill of empty slot failed")
	}
	if occupant != key {
		t.Fatalf("fill reported occupant %v, want %v", occupant, key)
	}
	if got := *stored.Early(); got != 11 {
		t.Fatalf("early value = %d, want 11", got)
	}

	k, e, ok := ps.get()
	if !ok || k != key || e != stored {
		t.Fatalf("get = (%v, %p, %v), want (%v, %p, true)", k, e, ok, key, stored)
	}

	again, occupant, ok := ps.fill(key, Entry[int]{early: 22})
	if ok {
		t.Fatal("second fill won an occupied slot")
	}
	if occupant != key || again != stored {
		t.Fatalf("losing fill reported (%v, %p), want (%v, %p)", occupant, again, key, stored)
	}
	if got := *stored.Early(); got != 11 {
		t.Fatalf("losing fill changed the early value to %d", got)
	}

	if _, ok := stored.Late(); ok {
		t.Fatal("late value set before SetLate")
	}
	stored.SetLate(7)
	if v, ok := stored.Late(); !ok || v != 7 {
		t.Fatalf("late value = (%d, %v), want (7, true)", v, ok)
	}

	tk, te, ok := ps.take()
	if !ok || tk != key {
		t.Fatalf("take = (%v, _, %v), want (%v, _, true)", tk, ok, key)
	}
	if got := *te.Early(); got != 11 {
		t.Fatalf("taken early value = %d, want 11", got)
	}
	if v, ok := te.Late(); !ok || v != 7 {
		t.Fatalf("taken late value = (%d, %v), want (7, true)", v, ok)
	}

	if _, _, ok := ps.get(); ok {
		t.Fatal("slot still occupied after take")
	}
	if _, _, ok := ps.take(); ok {
		t.Fatal("second take succeeded")
	}

	// refill after take works
	if _, _, ok := ps.fill(key, Entry[int]{early: 33}); !ok {
		t.Fatal("fill after take failed")
	}
}

func TestSyncSlotStateEncoding(t *testing.T) {
	if slotBusy == slotEmpty {
		t.Fatal("busy state equals empty state")
	}
	w0, w1 := unpackState(slotBusy)
	if w0 == 0 && w1 == 0 {
		t.Fatal("busy state unpacks to all-zero")
	}
	// a full state always has both halves nonzero, so busy must not
	if w0 != 0 && w1 != 0 {
		t.Fatal("busy state is indistinguishable from a full key")
	}
	if got := packState(unpackState(packState(12345, 2))); got != packState(12345, 2) {
		t.Fatalf("pack/unpack not a round trip: %#x", got)
	}
}

func TestSyncSlotSize(t *testing.T) {
	t.Logf("CacheLineSize : %d", CacheLineSize)
	var s SyncSlot[uint32]
	t.Logf("SyncSlot[uint32] size: %d", unsafe.Sizeof(s))
	var l LocalSlot[uint32]
	t.Logf("LocalSlot[uint32] size: %d", unsafe.Sizeof(l))
	if unsafe.Sizeof(s.state)%8 != 0 {
		t.Fatal("state word is not 8 bytes")
	}
}

// At most one concurrent fill may win, and every loser must observe the
// winner's entry.
func TestSyncSlotConcurrentFill(t *testing.T) {
	const numGoroutines = 16
	const numIters = 2000

	for iter := 0; iter < numIters; iter++ {
		var s SyncSlot[uint32]
		key := uniformKey(uint32(iter) + 1)
		var wins int32
		var winner atomic.Pointer[Entry[uint32]]
		cdone := make(chan bool)
		for g := 0; g < numGoroutines; g++ {
			go func(g int) {
				stored, occupant, ok := s.fill(key, Entry[uint32]{early: uint32(g) + 1})
				if ok {
					atomic.AddInt32(&wins, 1)
					winner.Store(stored)
				} else if occupant != key {
					t.Errorf("loser observed key %v, want %v", occupant, key)
				}
				cdone <- true
			}(g)
		}
		for g := 0; g < numGoroutines; g++ {
			<-cdone
		}
		if wins != 1 {
			t.Fatalf("%d fills won, want exactly 1", wins)
		}
		k, e, ok := s.get()
		if !ok || k != key {
			t.Fatalf("slot not occupied by %v after the race", key)
		}
		if e != winner.Load() {
			t.Fatal("stored entry is not the winner's")
		}
		if v := *e.Early(); v < 1 || v > numGoroutines {
			t.Fatalf("early value %d is not one of the contenders'", v)
		}
	}
}

// A reader racing a fill must never observe a torn entry: whenever get
// succeeds, the key and the early value must be the matched pair the
// winning fill wrote.
func TestSyncSlotNoTornReads(t *testing.T) {
	const numIters = 5000
	numReaders := runtime.GOMAXPROCS(0)
	if numReaders < 2 {
		numReaders = 2
	}

	for iter := 0; iter < numIters; iter++ {
		var s SyncSlot[[8]uint32]
		key := testKey(uint32(iter)*8 + 1)
		var wg sync.WaitGroup
		for r := 0; r < numReaders; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					k, e, ok := s.get()
					if !ok {
						continue
					}
					if k != key {
						t.Errorf("read key %v, want %v", k, key)
						return
					}
					if *e.Early() != key.words() {
						t.Errorf("early value %v does not match key %v", *e.Early(), key)
					}
					return
				}
			}()
		}
		// the value is the key's own words, so any mismatch is a tear
		s.fill(key, Entry[[8]uint32]{early: key.words()})
		wg.Wait()
	}
}

// The late value is published independently of the slot state: readers see
// either "unset" or the full word, never garbage, and a set value is seen
// by every subsequent reader.
func TestSyncSlotLateValueVisibility(t *testing.T) {
	var s SyncSlot[int]
	key := testKey(1)
	stored, _, ok := s.fill(key, Entry[int]{early: 1})
	if !ok {
		t.Fatal("fill failed")
	}

	const want = 0xBEEF
	cdone := make(chan bool)
	go func() {
		for {
			v, ok := stored.Late()
			if !ok {
				continue
			}
			if v != want {
				t.Errorf("late value = %#x, want %#x", v, want)
			}
			break
		}
		cdone <- true
	}()
	stored.SetLate(want)
	<-cdone
	if v, ok := stored.Late(); !ok || v != want {
		t.Fatalf("late value = (%#x, %v) after publication", v, ok)
	}
}
