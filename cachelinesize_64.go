//go:build hashcons_opt_cachelinesize_64

package hashcons

// Manual override for machines whose coherence granule is 64 bytes.
const CacheLineSize = 64
