package dict_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/nightkv/nightkv/internal/dict"
	"github.com/nightkv/nightkv/internal/siphash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDict() *dict.Dict {
	return dict.New(siphash.RandomKey())
}

func TestInsertGetDelete(t *testing.T) {
	d := newDict()

	d.Insert("a", 1)
	d.Insert("b", 2)

	v, ok := d.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = d.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, v)

	old, ok := d.Delete("a")
	require.True(t, ok)
	assert.Equal(t, 1, old)

	_, ok = d.Get("a")
	assert.False(t, ok)

	assert.Equal(t, 1, d.Used())
}

func TestInsertOverwriteDoesNotChangeUsed(t *testing.T) {
	d := newDict()
	d.Insert("k", "v1")
	assert.Equal(t, 1, d.Used())
	d.Insert("k", "v2")
	assert.Equal(t, 1, d.Used())

	v, _ := d.Get("k")
	assert.Equal(t, "v2", v)
}

func TestIterateVisitsEveryKeyOnce(t *testing.T) {
	d := newDict()
	want := map[string]bool{}
	for i := 0; i < 1000; i++ {
		k := fmt.Sprintf("key-%d", i)
		d.Insert(k, i)
		want[k] = true
	}

	seen := map[string]bool{}
	d.Iterate(func(k string, _ any) {
		assert.False(t, seen[k], "key %s visited twice", k)
		seen[k] = true
	})

	assert.Equal(t, want, seen)
}

func TestRehashInvariant_UsedMatchesCardinality(t *testing.T) {
	d := newDict()

	live := map[string]int{}
	rng := rand.New(rand.NewSource(1))

	// Insert enough keys to force at least one rehash (initial capacity 4).
	for i := 0; i < 1000; i++ {
		k := fmt.Sprintf("mixed-%d", i)
		switch rng.Intn(3) {
		case 0, 1:
			d.Insert(k, i)
			live[k] = i
		case 2:
			if len(live) > 0 {
				// delete a random existing key
				for existing := range live {
					d.Delete(existing)
					delete(live, existing)
					break
				}
			}
		}

		assert.Equal(t, len(live), d.Used())

		for key, val := range live {
			got, ok := d.Get(key)
			require.True(t, ok, "key %s should still be reachable", key)
			assert.Equal(t, val, got)
		}
	}
}

func TestRandomEntryOnEmptyDict(t *testing.T) {
	d := newDict()
	_, _, ok := d.RandomEntry()
	assert.False(t, ok)
}

func TestRandomEntryReturnsLiveKey(t *testing.T) {
	d := newDict()
	want := map[string]bool{"a": true, "b": true, "c": true}
	for k := range want {
		d.Insert(k, nil)
	}

	k, _, ok := d.RandomEntry()
	require.True(t, ok)
	assert.True(t, want[k])
}

func TestResizeShrinksWithoutLosingData(t *testing.T) {
	d := newDict()
	for i := 0; i < 200; i++ {
		d.Insert(fmt.Sprintf("k%d", i), i)
	}
	for i := 0; i < 190; i++ {
		d.Delete(fmt.Sprintf("k%d", i))
	}

	d.Resize()

	for i := 190; i < 200; i++ {
		v, ok := d.Get(fmt.Sprintf("k%d", i))
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, 10, d.Used())
}

func TestRehashMillisecondsCompletesRehash(t *testing.T) {
	d := newDict()
	for i := 0; i < 2000; i++ {
		d.Insert(fmt.Sprintf("k%d", i), i)
	}
	d.RehashMilliseconds(50)
	assert.False(t, d.IsRehashing())
}
