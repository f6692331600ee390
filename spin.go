package hashcons

import (
	"time"
	_ "unsafe"
)

// enableSpin controls whether spinning is attempted before sleeping in the
// slot wait loop. Spinning uses the CPU's PAUSE instruction through the
// runtime and only pays off when the writer being waited on finishes within
// a few dozen cycles, which is the expected case here: a winning fill is a
// handful of plain stores.
const enableSpin = true

// delay backs off while another goroutine finishes publishing a slot.
// Spin while the runtime says it is productive, then sleep; a non-zero
// sleep works well as backoff under high concurrency.
func delay(spins *int) {
	const yieldSleep = 500 * time.Microsecond
	if enableSpin && runtime_canSpin(*spins) {
		runtime_doSpin()
		*spins++
	} else {
		time.Sleep(yieldSleep)
		*spins = 0
	}
}

// nolint:all
//
//go:linkname runtime_canSpin sync.runtime_canSpin
//go:nosplit
func runtime_canSpin(i int) bool

// nolint:all
//
//go:linkname runtime_doSpin sync.runtime_doSpin
//go:nosplit
func runtime_doSpin()
