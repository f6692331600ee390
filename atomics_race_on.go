//go:build race

package hashcons

import "sync/atomic"

// Under race detector, disable TSO optimizations and use conservative
// atomic loads/stores
const isTSO = false

//go:nosplit
func loadUint32(addr *uint32) uint32 {
	return atomic.LoadUint32(addr)
}

//go:nosplit
func storeUint32(addr *uint32, val uint32) {
	atomic.StoreUint32(addr, val)
}
