// Package cache models a chain of cache levels ending in an always-hit
// backing memory. Blocks only carry metadata; no data is stored.
package cache

// SetWayBlk is a block of a set-associative cache. It occupies one way of
// one set for its whole life.
type SetWayBlk struct {
	Tag   uint64
	Valid bool
	// Tick is the recency marker maintained by the replacement policy.
	Tick uint64
	Set  int
	Way  int
}

// FABlk is a block of a fully-associative cache. Blocks are linked into a
// recency list whose head is the most recently used block.
type FABlk struct {
	Tag   uint64
	Valid bool
	Tick  uint64
	// Set is always 0; the whole cache is one set.
	Set int

	Prev *FABlk
	Next *FABlk

	linked bool
}
