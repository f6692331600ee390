//go:build !race

package hashcons

import (
	"runtime"
	"sync/atomic"
)

// Detect TSO architectures; on TSO, plain reads/writes of aligned
// native-word-or-smaller integers are safe
const isTSO = runtime.GOARCH == "amd64" ||
	runtime.GOARCH == "386" ||
	runtime.GOARCH == "s390x"

// TSO: plain load; non-TSO: atomic.LoadUint32
//
//go:nosplit
func loadUint32(addr *uint32) uint32 {
	if isTSO {
		return *addr
	}
	return atomic.LoadUint32(addr)
}

// TSO: plain store; non-TSO: atomic.StoreUint32
//
//go:nosplit
func storeUint32(addr *uint32, val uint32) {
	if isTSO {
		*addr = val
	} else {
		atomic.StoreUint32(addr, val)
	}
}
