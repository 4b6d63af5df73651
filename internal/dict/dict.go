// Package dict implements the incrementally-rehashing chained hash table
// that backs nightkv's keyspace and hash values.
package dict

import (
	"math/rand"

	"github.com/nightkv/nightkv/internal/siphash"
)

const initialSize = 4

// maxSize is the hard cap on table capacity above which insertion must fail.
const maxSize = 1 << 62

type entry struct {
	key   string
	value any
	next  *entry
}

type table struct {
	buckets  []*entry
	sizemask uint64
	used     int
}

func newTable(size uint64) *table {
	if size == 0 {
		return &table{}
	}
	return &table{
		buckets:  make([]*entry, size),
		sizemask: size - 1,
	}
}

func (t *table) capacity() uint64 {
	return uint64(len(t.buckets))
}

// Dict is a two-table chained hash map keyed by string, with incremental
// rehashing between T0 and T1 driven either implicitly (one step per
// insert/get/delete) or explicitly via RehashMilliseconds.
type Dict struct {
	t0, t1    *table
	rehashidx int64 // -1 means idle
	hashKey   siphash.Key
	rng       *rand.Rand
}

// New creates an empty, idle Dict keyed with hashKey.
func New(hashKey siphash.Key) *Dict {
	return &Dict{
		t0:        newTable(initialSize),
		t1:        newTable(0),
		rehashidx: -1,
		hashKey:   hashKey,
		rng:       rand.New(rand.NewSource(int64(siphash.Sum64String(hashKey, "seed")))),
	}
}

func (d *Dict) isRehashing() bool {
	return d.rehashidx != -1
}

func (d *Dict) hash(key string) uint64 {
	return siphash.Sum64String(d.hashKey, key)
}

// Used returns the number of live entries across both tables.
func (d *Dict) Used() int {
	return d.t0.used + d.t1.used
}

// IsRehashing reports whether a rehash is in progress.
func (d *Dict) IsRehashing() bool {
	return d.isRehashing()
}

func nextPowerOfTwo(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// expandIfNeeded grows T0 into a fresh T1 and begins rehashing when the
// table is idle and at or above capacity.
func (d *Dict) expandIfNeeded() {
	if d.isRehashing() {
		return
	}
	if uint64(d.t0.used) < d.t0.capacity() {
		return
	}
	newSize := nextPowerOfTwo(uint64(d.t0.used) * 2)
	if newSize < initialSize {
		newSize = initialSize
	}
	d.beginRehash(newSize)
}

func (d *Dict) beginRehash(newSize uint64) {
	d.t1 = newTable(newSize)
	d.rehashidx = 0
}

// rehashStep moves up to n non-empty buckets from T0 to T1, skipping at
// most n*10 empty buckets per call. Returns true if more rehash work
// remains after this call.
func (d *Dict) rehashStep(n int) bool {
	if !d.isRehashing() {
		return false
	}

	emptyVisits := n * 10
	for n > 0 {
		if d.t0.used == 0 {
			break
		}
		for uint64(d.rehashidx) < d.t0.capacity() && d.t0.buckets[d.rehashidx] == nil {
			d.rehashidx++
			emptyVisits--
			if emptyVisits <= 0 {
				return true
			}
		}
		if uint64(d.rehashidx) >= d.t0.capacity() {
			break
		}

		bucket := d.t0.buckets[d.rehashidx]
		for bucket != nil {
			next := bucket.next
			idx := d.hash(bucket.key) & d.t1.sizemask
			bucket.next = d.t1.buckets[idx]
			d.t1.buckets[idx] = bucket
			d.t0.used--
			d.t1.used++
			bucket = next
		}
		d.t0.buckets[d.rehashidx] = nil
		d.rehashidx++
		n--
	}

	if d.t0.used == 0 {
		d.t0 = d.t1
		d.t1 = newTable(0)
		d.rehashidx = -1
		return false
	}
	return true
}

// Rehash performs up to n rehash steps (see rehashStep) and reports whether
// rehashing is still in progress afterward.
func (d *Dict) Rehash(n int) bool {
	return d.rehashStep(n)
}

// Insert adds or overwrites k -> v. Overwriting an existing key does not
// change Used(). One incremental rehash step runs first. Reports false only
// when the table has hit its hard capacity (maxSize) and k is not already
// present; insertion of an existing or new key below the cap never fails.
func (d *Dict) Insert(k string, v any) bool {
	d.rehashStep(1)

	if e := d.find(k); e != nil {
		e.value = v
		return true
	}

	if uint64(d.Used()) >= maxSize {
		return false
	}

	d.expandIfNeeded()

	target := d.t0
	if d.isRehashing() {
		target = d.t1
	}

	h := d.hash(k)
	idx := h & target.sizemask
	target.buckets[idx] = &entry{key: k, value: v, next: target.buckets[idx]}
	target.used++
	return true
}

func (d *Dict) find(k string) *entry {
	if d.t0.used == 0 && d.t1.used == 0 {
		return nil
	}

	h := d.hash(k)

	idx := h & d.t0.sizemask
	for e := d.t0.buckets[idx]; e != nil; e = e.next {
		if e.key == k {
			return e
		}
	}

	if d.isRehashing() {
		idx = h & d.t1.sizemask
		for e := d.t1.buckets[idx]; e != nil; e = e.next {
			if e.key == k {
				return e
			}
		}
	}
	return nil
}

// Get looks up k, performing one incremental rehash step first.
func (d *Dict) Get(k string) (any, bool) {
	if d.t0.used == 0 && d.t1.used == 0 {
		return nil, false
	}
	d.rehashStep(1)

	if e := d.find(k); e != nil {
		return e.value, true
	}
	return nil, false
}

// Delete removes k, performing one incremental rehash step first. Reports
// whether the key was present.
func (d *Dict) Delete(k string) (any, bool) {
	d.rehashStep(1)

	h := d.hash(k)

	if v, ok := deleteFrom(d.t0, h&d.t0.sizemask, k); ok {
		d.t0.used--
		return v, true
	}
	if d.isRehashing() {
		if v, ok := deleteFrom(d.t1, h&d.t1.sizemask, k); ok {
			d.t1.used--
			return v, true
		}
	}
	return nil, false
}

func deleteFrom(t *table, idx uint64, k string) (any, bool) {
	var prev *entry
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == k {
			if prev == nil {
				t.buckets[idx] = e.next
			} else {
				prev.next = e.next
			}
			return e.value, true
		}
		prev = e
	}
	return nil, false
}

// Iterate visits every live entry exactly once, in unspecified order,
// calling f(key, value) for each. f must not mutate the Dict.
func (d *Dict) Iterate(f func(key string, value any)) {
	for _, e := range d.t0.buckets {
		for ; e != nil; e = e.next {
			f(e.key, e.value)
		}
	}
	if d.isRehashing() {
		for _, e := range d.t1.buckets {
			for ; e != nil; e = e.next {
				f(e.key, e.value)
			}
		}
	}
}

// Keys returns every live key. Convenience wrapper over Iterate.
func (d *Dict) Keys() []string {
	keys := make([]string, 0, d.Used())
	d.Iterate(func(k string, _ any) {
		keys = append(keys, k)
	})
	return keys
}

// RandomEntry returns a random live entry, used by set operations and
// SPOP-style random-eviction commands. Ok is false for an empty Dict. The
// choice is not exactly uniform: it takes the first non-empty bucket found
// from a random starting bucket, so entries in a bucket that follows a run
// of empty buckets are picked more often.
func (d *Dict) RandomEntry() (key string, value any, ok bool) {
	used := d.Used()
	if used == 0 {
		return "", nil, false
	}

	// Uniform-over-tables-by-load, then linear scan within the chosen
	// table's buckets starting at a random offset: mirrors how a real
	// chained hash table samples without materializing every key.
	table := d.t0
	if d.isRehashing() && d.rng.Intn(used) < d.t1.used {
		table = d.t1
	}
	if table.used == 0 {
		table = d.t0
	}

	if len(table.buckets) == 0 {
		return "", nil, false
	}
	start := d.rng.Intn(len(table.buckets))
	for i := 0; i < len(table.buckets); i++ {
		idx := (start + i) % len(table.buckets)
		if e := table.buckets[idx]; e != nil {
			// Walk a random distance into the chain so long chains don't
			// always yield their head entry.
			steps := d.rng.Intn(chainLen(e))
			for steps > 0 {
				e = e.next
				steps--
			}
			return e.key, e.value, true
		}
	}
	return "", nil, false
}

func chainLen(e *entry) int {
	n := 0
	for ; e != nil; e = e.next {
		n++
	}
	return n
}

// Resize shrinks T0 to the smallest power of two >= max(initialSize, Used)
// when idle. It is an operator-triggered compaction, never automatic.
func (d *Dict) Resize() {
	if d.isRehashing() {
		return
	}
	target := nextPowerOfTwo(uint64(d.Used()))
	if target < initialSize {
		target = initialSize
	}
	if target == d.t0.capacity() {
		return
	}
	old := d.t0
	d.t1 = newTable(target)
	d.rehashidx = 0
	for _, e := range old.buckets {
		for e != nil {
			next := e.next
			idx := d.hash(e.key) & d.t1.sizemask
			e.next = d.t1.buckets[idx]
			d.t1.buckets[idx] = e
			d.t1.used++
			e = next
		}
	}
	d.t0 = d.t1
	d.t1 = newTable(0)
	d.rehashidx = -1
}
