// Package hashval implements nightkv's Hash value type: a field->value
// mapping backed by internal/dict.
package hashval

import (
	"github.com/nightkv/nightkv/internal/dict"
	"github.com/nightkv/nightkv/internal/siphash"
)

// Hash wraps a Dict keyed by field name, values stored as strings.
type Hash struct {
	fields *dict.Dict
}

// New creates an empty Hash.
func New() *Hash {
	return &Hash{fields: dict.New(siphash.RandomKey())}
}

// Set writes field -> value. Reports whether the field was newly created.
func (h *Hash) Set(field, value string) bool {
	_, existed := h.fields.Get(field)
	h.fields.Insert(field, value)
	return !existed
}

// SetNX writes field -> value only if field does not already exist.
// Reports whether the write happened.
func (h *Hash) SetNX(field, value string) bool {
	if _, existed := h.fields.Get(field); existed {
		return false
	}
	h.fields.Insert(field, value)
	return true
}

// Get returns the value stored at field.
func (h *Hash) Get(field string) (string, bool) {
	v, ok := h.fields.Get(field)
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Del removes fields, returning the count actually removed.
func (h *Hash) Del(fields []string) int64 {
	var n int64
	for _, f := range fields {
		if _, ok := h.fields.Delete(f); ok {
			n++
		}
	}
	return n
}

// Exists reports whether field is present.
func (h *Hash) Exists(field string) bool {
	_, ok := h.fields.Get(field)
	return ok
}

// Len returns the number of fields.
func (h *Hash) Len() int64 {
	return int64(h.fields.Used())
}

// Keys returns every field name.
func (h *Hash) Keys() []string {
	return h.fields.Keys()
}

// Vals returns every value, in the same iteration order as Keys would
// produce on an unmutated Hash (Dict.Iterate order is otherwise
// unspecified between two separate calls in general, so callers wanting a
// paired Keys/Vals view should use All instead).
func (h *Hash) Vals() []string {
	vals := make([]string, 0, h.Len())
	h.fields.Iterate(func(_ string, v any) {
		vals = append(vals, v.(string))
	})
	return vals
}

// All returns every field/value pair as alternating (field, value) entries,
// matching HGETALL's wire shape, with pair order stable within this call.
func (h *Hash) All() []string {
	out := make([]string, 0, h.Len()*2)
	h.fields.Iterate(func(k string, v any) {
		out = append(out, k, v.(string))
	})
	return out
}

// StrLen returns the length of the value stored at field, or 0 if absent.
func (h *Hash) StrLen(field string) int {
	v, ok := h.Get(field)
	if !ok {
		return 0
	}
	return len(v)
}
