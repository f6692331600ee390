//go:build hashcons_opt_cachelinesize_128

package hashcons

// Manual override for machines whose coherence granule is 128 bytes,
// e.g. Apple silicon and some POWER configurations.
const CacheLineSize = 128
