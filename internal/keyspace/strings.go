package keyspace

// GetString returns the raw bytes stored at key. ok is false if key is
// absent or holds a non-string kind, in which case wrongType reports which.
func (ks *Keyspace) GetString(key string) (val []byte, ok bool, wrongType bool) {
	e, found := ks.lookup(key)
	if !found {
		return nil, false, false
	}
	if e.kind != KindString {
		return nil, false, true
	}
	return e.str, true, false
}

// SetString stores val at key as a string, replacing whatever was there
// (including a different kind). If keepTTL is false any existing expiry is
// cleared, matching plain SET's default semantics; keepTTL true preserves
// it, for the KEEPTTL option.
func (ks *Keyspace) SetString(key string, val []byte, keepTTL bool) {
	ks.store(key, &entry{kind: KindString, str: val})
	if !keepTTL {
		ks.expires.Remove(key)
	}
}

// GetSet reads the current string and, if the type matches, writes a new
// one, returning the old value. If key holds a non-string value nothing is
// written and wrongType is true. A missing key reads as present=false but
// the write still proceeds (GETSET on an absent key behaves like SET).
func (ks *Keyspace) GetSet(key string, val []byte) (old []byte, present bool, wrongType bool) {
	e, found := ks.lookup(key)
	if found && e.kind != KindString {
		return nil, false, true
	}
	if found {
		old = e.str
		present = true
	}
	ks.store(key, &entry{kind: KindString, str: val})
	ks.expires.Remove(key)
	return old, present, false
}

// Append appends suffix to the string at key (creating it as empty first if
// absent), returning the resulting length. TTL, if any, is left untouched.
func (ks *Keyspace) Append(key string, suffix []byte) (newLen int64, wrongType bool) {
	e, found := ks.lookup(key)
	if found && e.kind != KindString {
		return 0, true
	}
	if !found {
		e = &entry{kind: KindString}
	}
	e.str = append(append([]byte{}, e.str...), suffix...)
	ks.store(key, e)
	return int64(len(e.str)), false
}

// StrLen returns the length of the string at key, 0 if absent.
func (ks *Keyspace) StrLen(key string) (length int64, wrongType bool) {
	e, found := ks.lookup(key)
	if !found {
		return 0, false
	}
	if e.kind != KindString {
		return 0, true
	}
	return int64(len(e.str)), false
}

// MutateString fetches the current bytes at key (nil if absent or of a
// different, non-string-yet kind only applies to absent keys — a present
// non-string key is rejected), applies fn, and stores the result. Used by
// bit-level commands (SETBIT/BITOP/BITFIELD) that grow or rewrite a string
// in place. TTL is preserved.
func (ks *Keyspace) MutateString(key string, fn func(cur []byte) []byte) (wrongType bool) {
	e, found := ks.lookup(key)
	if found && e.kind != KindString {
		return true
	}
	var cur []byte
	if found {
		cur = e.str
	}
	next := fn(cur)
	if !found {
		e = &entry{kind: KindString}
	}
	e.str = next
	e.kind = KindString
	ks.store(key, e)
	return false
}
