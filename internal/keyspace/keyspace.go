// Package keyspace wires together internal/dict and internal/expire into the
// typed-value keyspace nightkv's command handlers operate on: every key maps
// to exactly one of a string, a Hash, or a Set (spec.md §3's ownership
// rules), with expiry tracked alongside rather than inside the value.
package keyspace

import (
	"errors"
	"time"

	"github.com/nightkv/nightkv/internal/dict"
	"github.com/nightkv/nightkv/internal/expire"
	"github.com/nightkv/nightkv/internal/hashval"
	"github.com/nightkv/nightkv/internal/setval"
	"github.com/nightkv/nightkv/internal/siphash"
)

// Kind tags which variant an entry holds.
type Kind int

const (
	KindString Kind = iota
	KindHash
	KindSet
)

// ErrWrongType is returned when a command targets a key holding a different
// Kind than the command expects (spec §7's WRONGTYPE error category).
var ErrWrongType = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")

// entry is the tagged union stored in the keyspace Dict. Only the field
// matching Kind is meaningful.
type entry struct {
	kind Kind
	str  []byte
	hash *hashval.Hash
	set  *setval.Set
}

// Keyspace is the single top-level store: one Dict of entry plus one expiry
// Index, both keyed by the same string keys (spec §3's invariant that every
// expiry-tracked key is also a live keyspace key).
type Keyspace struct {
	data        *dict.Dict
	expires     *expire.Index
	maxListSize int
}

// New creates an empty Keyspace. maxListSize is the IntSet->Dict upgrade
// threshold new Sets are created with (spec §6 SET_MAX_ZIPLIST_ENTRIES).
func New(maxListSize int) *Keyspace {
	return &Keyspace{
		data:        dict.New(siphash.RandomKey()),
		expires:     expire.New(),
		maxListSize: maxListSize,
	}
}

// nowMs returns the current wall-clock time in milliseconds since epoch,
// the clock every expiry check in this package uses.
func nowMs() int64 {
	return time.Now().UnixMilli()
}

// lookup fetches key's live entry, evicting it first if its deadline has
// passed. This is the lazy side of expiry (spec §3); the active sweep in
// background.go is the other half.
func (ks *Keyspace) lookup(key string) (*entry, bool) {
	if deadline, ok := ks.expires.Get(key); ok && deadline <= nowMs() {
		ks.data.Delete(key)
		ks.expires.Remove(key)
		return nil, false
	}
	v, ok := ks.data.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*entry), true
}

func (ks *Keyspace) store(key string, e *entry) {
	ks.data.Insert(key, e)
}

// Exists reports whether key is present (and unexpired).
func (ks *Keyspace) Exists(key string) bool {
	_, ok := ks.lookup(key)
	return ok
}

// Type returns the RESP TYPE name for key, or "" if absent.
func (ks *Keyspace) Type(key string) (string, bool) {
	e, ok := ks.lookup(key)
	if !ok {
		return "", false
	}
	switch e.kind {
	case KindString:
		return "string", true
	case KindHash:
		return "hash", true
	case KindSet:
		return "set", true
	default:
		return "", true
	}
}

// Del removes keys, returning how many were actually present.
func (ks *Keyspace) Del(keys ...string) int64 {
	var n int64
	for _, k := range keys {
		if _, ok := ks.lookup(k); ok {
			ks.data.Delete(k)
			ks.expires.Remove(k)
			n++
		}
	}
	return n
}

// Persist removes key's TTL, if any. Reports whether a TTL was actually
// cleared.
func (ks *Keyspace) Persist(key string) bool {
	if !ks.Exists(key) {
		return false
	}
	if _, ok := ks.expires.Get(key); !ok {
		return false
	}
	ks.expires.Remove(key)
	return true
}

// ExpireAt sets key's deadline to deadlineMs. Reports false if key is
// absent. A deadline already in the past deletes the key immediately,
// mirroring Redis' "set a TTL in the past" behavior.
func (ks *Keyspace) ExpireAt(key string, deadlineMs int64) bool {
	if !ks.Exists(key) {
		return false
	}
	if deadlineMs <= nowMs() {
		ks.data.Delete(key)
		ks.expires.Remove(key)
		return true
	}
	ks.expires.Set(key, deadlineMs)
	return true
}

// TTLMillis returns the remaining time to live in milliseconds: -2 if key is
// absent, -1 if it has no expiry, else the remaining ms (spec §7 TTL codes).
func (ks *Keyspace) TTLMillis(key string) int64 {
	if !ks.Exists(key) {
		return -2
	}
	deadline, ok := ks.expires.Get(key)
	if !ok {
		return -1
	}
	remaining := deadline - nowMs()
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Keys returns every live top-level key, excluding lazily-unswept expired
// ones (an O(n) Exists check per key, used only by KEYS/introspection).
func (ks *Keyspace) Keys() []string {
	all := ks.data.Keys()
	out := make([]string, 0, len(all))
	for _, k := range all {
		if ks.Exists(k) {
			out = append(out, k)
		}
	}
	return out
}

// Len returns the raw Dict entry count, including not-yet-swept expired
// keys (cheap; used for INFO-style reporting, not for correctness checks).
func (ks *Keyspace) Len() int {
	return ks.data.Used()
}
