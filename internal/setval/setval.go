// Package setval implements nightkv's adaptive Set: a container that begins
// as a packed IntSet and upgrades one-way to a Dict once it holds a
// non-integer member or grows past the configured size ceiling.
package setval

import (
	"math/rand"
	"strconv"

	"github.com/nightkv/nightkv/internal/dict"
	"github.com/nightkv/nightkv/internal/intset"
	"github.com/nightkv/nightkv/internal/siphash"
)

// Set is a tagged variant over IntSet or Dict. Once upgraded to Dict it
// never reverts.
type Set struct {
	intset      *intset.IntSet // non-nil iff encoding is IntSet
	dict        *dict.Dict     // non-nil iff encoding is Dict
	maxListSize int
	rng         *rand.Rand
}

// New creates an empty Set that begins in IntSet encoding.
func New(maxListSize int) *Set {
	return &Set{
		intset:      intset.New(),
		maxListSize: maxListSize,
		rng:         rand.New(rand.NewSource(rand.Int63())),
	}
}

// IsIntSet reports the current encoding.
func (s *Set) IsIntSet() bool {
	return s.intset != nil
}

// Cardinality returns the member count.
func (s *Set) Cardinality() int {
	if s.IsIntSet() {
		return s.intset.Len()
	}
	return s.dict.Used()
}

func parseInt(member string) (int64, bool) {
	v, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return 0, false
	}
	// Reject non-canonical forms ("+5", "01", " 5") the same way an
	// integer-only encoding must to keep round-tripping exact.
	if strconv.FormatInt(v, 10) != member {
		return 0, false
	}
	return v, true
}

// upgrade transitions from IntSet to Dict, re-inserting every member as its
// decimal string. One-way: calling upgrade on an already-Dict Set is a no-op.
func (s *Set) upgrade() {
	if !s.IsIntSet() {
		return
	}
	d := dict.New(siphash.RandomKey())
	for _, v := range s.intset.Members() {
		d.Insert(strconv.FormatInt(v, 10), nil)
	}
	s.dict = d
	s.intset = nil
}

// Add inserts member, upgrading the encoding when required. Reports whether
// the member was newly added.
func (s *Set) Add(member string) bool {
	if s.IsIntSet() {
		if v, ok := parseInt(member); ok {
			added := s.intset.Add(v)
			if added && s.intset.Len() > s.maxListSize {
				s.upgrade()
			}
			return added
		}
		s.upgrade()
	}
	if _, exists := s.dict.Get(member); exists {
		return false
	}
	s.dict.Insert(member, nil)
	return true
}

// Contains reports set membership.
func (s *Set) Contains(member string) bool {
	if s.IsIntSet() {
		v, ok := parseInt(member)
		if !ok {
			return false
		}
		return s.intset.Contains(v)
	}
	_, ok := s.dict.Get(member)
	return ok
}

// Remove deletes member if present.
func (s *Set) Remove(member string) bool {
	if s.IsIntSet() {
		v, ok := parseInt(member)
		if !ok {
			return false
		}
		return s.intset.Remove(v)
	}
	_, ok := s.dict.Delete(member)
	return ok
}

// Members returns every member as a string, in unspecified order (ascending
// for IntSet encoding as a side effect of its packed representation).
func (s *Set) Members() []string {
	out := make([]string, 0, s.Cardinality())
	s.Each(func(m string) {
		out = append(out, m)
	})
	return out
}

// Each visits every member exactly once.
func (s *Set) Each(f func(member string)) {
	if s.IsIntSet() {
		for _, v := range s.intset.Members() {
			f(strconv.FormatInt(v, 10))
		}
		return
	}
	s.dict.Iterate(func(k string, _ any) {
		f(k)
	})
}

// RandomMember returns one random member (uniform in IntSet encoding; see
// dict.RandomEntry for the Dict encoding). ok is false if empty.
func (s *Set) RandomMember() (string, bool) {
	if s.IsIntSet() {
		v, ok := s.intset.RandomMember(s.rng)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	}
	k, _, ok := s.dict.RandomEntry()
	return k, ok
}

// Pop removes and returns one random member (uniform in IntSet encoding;
// see dict.RandomEntry for the Dict encoding).
func (s *Set) Pop() (string, bool) {
	if s.IsIntSet() {
		v, ok := s.intset.Pop(s.rng)
		if !ok {
			return "", false
		}
		return strconv.FormatInt(v, 10), true
	}
	key, _, found := s.dict.RandomEntry()
	if !found {
		return "", false
	}
	s.dict.Delete(key)
	return key, true
}
