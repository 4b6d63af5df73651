// Package expire implements nightkv's expiry index: a key->deadline map
// sampled by a bounded, probabilistic sweep (spec §4.7).
package expire

import (
	"math/rand"
)

// DefaultMaxLookupsPerCycle is MAX_EXPIRE_LOOKUPS_PER_CYCLE from spec §4.7.
const DefaultMaxLookupsPerCycle = 20

// Index maps a key to its absolute deadline in milliseconds since epoch.
// It does not own the keyspace; sweeping calls back into a supplied deletion
// function so the two structures stay consistent (spec §3's invariant: every
// key in the expiry index is also in the keyspace).
type Index struct {
	deadlines map[string]int64
	keys      []string // stable iteration order for round-robin sampling
	cursor    int
}

// New creates an empty expiry index.
func New() *Index {
	return &Index{deadlines: make(map[string]int64)}
}

// Set records key's deadline, in milliseconds since epoch.
func (idx *Index) Set(key string, deadlineMs int64) {
	if _, exists := idx.deadlines[key]; !exists {
		idx.keys = append(idx.keys, key)
	}
	idx.deadlines[key] = deadlineMs
}

// Get returns key's deadline, if any.
func (idx *Index) Get(key string) (int64, bool) {
	d, ok := idx.deadlines[key]
	return d, ok
}

// Remove drops key from the index (no-op if absent). Does not compact the
// backing slice eagerly; compaction happens lazily during sweeps.
func (idx *Index) Remove(key string) {
	delete(idx.deadlines, key)
}

// Len returns the number of keys that have a deadline. Keys dropped with
// Remove are not counted, even before compaction removes them from the
// sampling slice.
func (idx *Index) Len() int {
	return len(idx.deadlines)
}

// Sweep samples up to limit entries and invokes onExpired(key) for each
// whose deadline is at or before nowMs, after which the caller is expected
// to have removed the key from both the keyspace and this index (via
// Remove). Sampling advances a cursor across calls so repeated sweeps make
// progress over the whole index rather than resampling the same prefix.
func (idx *Index) Sweep(nowMs int64, limit int, onExpired func(key string)) {
	idx.compact()
	if len(idx.keys) == 0 {
		return
	}
	if limit > len(idx.keys) {
		limit = len(idx.keys)
	}

	checked := 0
	for checked < limit {
		if idx.cursor >= len(idx.keys) {
			idx.cursor = 0
		}
		key := idx.keys[idx.cursor]
		idx.cursor++
		checked++

		deadline, ok := idx.deadlines[key]
		if !ok {
			continue // already removed since keys[] was built
		}
		if deadline <= nowMs {
			onExpired(key)
		}
	}
}

// compact drops keys[] entries whose deadline no longer exists, keeping the
// sampling slice from growing unboundedly with tombstones.
func (idx *Index) compact() {
	if len(idx.keys) <= 2*len(idx.deadlines)+8 {
		return
	}
	fresh := make([]string, 0, len(idx.deadlines))
	for _, k := range idx.keys {
		if _, ok := idx.deadlines[k]; ok {
			fresh = append(fresh, k)
		}
	}
	idx.keys = fresh
	idx.cursor = 0
}

// RandomKey returns a random key that still has a deadline, drawn from the
// sampling slice independently of Sweep's round-robin cursor. ok is false
// when no key has a deadline.
func (idx *Index) RandomKey(rng *rand.Rand) (string, bool) {
	idx.compact()
	if len(idx.deadlines) == 0 {
		return "", false
	}
	for {
		key := idx.keys[rng.Intn(len(idx.keys))]
		if _, ok := idx.deadlines[key]; ok {
			return key, true
		}
	}
}
