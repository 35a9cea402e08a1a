// Package constants holds the fixed sizes, default timings, and wire verb
// names used across the zunkdb client.
package constants

import "time"

// Data sizing.
const (
	// ChunkSize is the fixed size in bytes of every chunk this client
	// reads or writes.
	ChunkSize = 1024 * 1024 // 1 MiB

	// DigestSize is the size in bytes of a chunk digest.
	DigestSize = 32

	// HexDigestLen is the length of a digest rendered as lowercase hex.
	HexDigestLen = DigestSize * 2

	// HashAlgorithm names the default digest scheme (see pkg/digest).
	HashAlgorithm = "blake3-256"
)

// Node cache and dead-set timing.
const (
	// CacheMax is the maximum number of idle nodes held in the
	// process-wide node cache.
	CacheMax = 100

	// DeadSetTTL is how long a peer stays in the dead set after a failed
	// connect attempt.
	DeadSetTTL = 60 * time.Second
)

// Request engine defaults, used when a config spec omits the option.
const (
	DefaultTimeout = 60 * time.Second

	// DefaultConcurrency stands in for "unbounded" fan-out.
	DefaultConcurrency = 1 << 20
)

// Wire protocol verb names.
const (
	VerbFindChunk   = "find_chunk"
	VerbStoreChunk  = "store_chunk"
	VerbRequestDone = "request_done"
	VerbStoreNode   = "store_node"
)
