package keyspace

import (
	"github.com/nightkv/nightkv/internal/hashval"
	"github.com/nightkv/nightkv/internal/setval"
)

// Hash returns the Hash stored at key. ok is false if absent; wrongType is
// true if key holds a non-hash value.
func (ks *Keyspace) Hash(key string) (h *hashval.Hash, ok bool, wrongType bool) {
	e, found := ks.lookup(key)
	if !found {
		return nil, false, false
	}
	if e.kind != KindHash {
		return nil, false, true
	}
	return e.hash, true, false
}

// HashForWrite returns the Hash at key, creating an empty one if absent.
// wrongType is true if key holds a non-hash value, in which case the
// keyspace is left unmodified.
func (ks *Keyspace) HashForWrite(key string) (h *hashval.Hash, wrongType bool) {
	e, found := ks.lookup(key)
	if found {
		if e.kind != KindHash {
			return nil, true
		}
		return e.hash, false
	}
	h = hashval.New()
	ks.store(key, &entry{kind: KindHash, hash: h})
	return h, false
}

// DelEmptyHash removes key if its Hash is now empty, matching Redis'
// convention that a hash emptied by HDEL disappears entirely.
func (ks *Keyspace) DelEmptyHash(key string) {
	if h, ok, wt := ks.Hash(key); ok && !wt && h.Len() == 0 {
		ks.data.Delete(key)
		ks.expires.Remove(key)
	}
}

// Set returns the Set stored at key. ok is false if absent; wrongType is
// true if key holds a non-set value.
func (ks *Keyspace) Set(key string) (s *setval.Set, ok bool, wrongType bool) {
	e, found := ks.lookup(key)
	if !found {
		return nil, false, false
	}
	if e.kind != KindSet {
		return nil, false, true
	}
	return e.set, true, false
}

// SetForWrite returns the Set at key, creating an empty one if absent.
func (ks *Keyspace) SetForWrite(key string) (s *setval.Set, wrongType bool) {
	e, found := ks.lookup(key)
	if found {
		if e.kind != KindSet {
			return nil, true
		}
		return e.set, false
	}
	s = setval.New(ks.maxListSize)
	ks.store(key, &entry{kind: KindSet, set: s})
	return s, false
}

// DelEmptySet removes key if its Set is now empty.
func (ks *Keyspace) DelEmptySet(key string) {
	if s, ok, wt := ks.Set(key); ok && !wt && s.Cardinality() == 0 {
		ks.data.Delete(key)
		ks.expires.Remove(key)
	}
}

// StoreSet overwrites key with an already-built Set, as used by
// SINTERSTORE/SUNIONSTORE/SDIFFSTORE-style destination writes. An empty
// result set deletes the destination key instead of storing an empty set.
func (ks *Keyspace) StoreSet(key string, s *setval.Set) {
	if s.Cardinality() == 0 {
		ks.data.Delete(key)
		ks.expires.Remove(key)
		return
	}
	ks.store(key, &entry{kind: KindSet, set: s})
	ks.expires.Remove(key)
}
