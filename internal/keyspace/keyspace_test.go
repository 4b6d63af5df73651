package keyspace_test

import (
	"testing"
	"time"

	"github.com/nightkv/nightkv/internal/keyspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSetGetDel(t *testing.T) {
	ks := keyspace.New(256)

	_, ok, wt := ks.GetString("missing")
	assert.False(t, ok)
	assert.False(t, wt)

	ks.SetString("foo", []byte("bar"), false)
	val, ok, wt := ks.GetString("foo")
	require.True(t, ok)
	require.False(t, wt)
	assert.Equal(t, "bar", string(val))

	assert.Equal(t, int64(1), ks.Del("foo"))
	_, ok, _ = ks.GetString("foo")
	assert.False(t, ok)
}

func TestWrongType(t *testing.T) {
	ks := keyspace.New(256)
	ks.SetString("k", []byte("v"), false)

	_, _, wt := ks.Hash("k")
	assert.True(t, wt)

	_, wt = ks.HashForWrite("k")
	assert.True(t, wt)
}

func TestExpirePersistTTL(t *testing.T) {
	ks := keyspace.New(256)
	ks.SetString("k", []byte("v"), false)

	assert.Equal(t, int64(-1), ks.TTLMillis("k"))

	future := time.Now().Add(time.Hour).UnixMilli()
	assert.True(t, ks.ExpireAt("k", future))
	ttl := ks.TTLMillis("k")
	assert.Greater(t, ttl, int64(0))

	assert.True(t, ks.Persist("k"))
	assert.Equal(t, int64(-1), ks.TTLMillis("k"))

	assert.Equal(t, int64(-2), ks.TTLMillis("missing"))
}

func TestExpireInPastDeletesImmediately(t *testing.T) {
	ks := keyspace.New(256)
	ks.SetString("k", []byte("v"), false)

	assert.True(t, ks.ExpireAt("k", time.Now().Add(-time.Second).UnixMilli()))
	assert.False(t, ks.Exists("k"))
}

func TestKeepTTL(t *testing.T) {
	ks := keyspace.New(256)
	ks.SetString("k", []byte("v1"), false)
	ks.ExpireAt("k", time.Now().Add(time.Hour).UnixMilli())

	ks.SetString("k", []byte("v2"), true)
	assert.Greater(t, ks.TTLMillis("k"), int64(0))

	ks.SetString("k", []byte("v3"), false)
	assert.Equal(t, int64(-1), ks.TTLMillis("k"))
}

func TestLazyExpiryOnLookup(t *testing.T) {
	ks := keyspace.New(256)
	ks.SetString("k", []byte("v"), false)
	ks.ExpireAt("k", time.Now().Add(time.Millisecond).UnixMilli())

	time.Sleep(5 * time.Millisecond)
	_, ok, _ := ks.GetString("k")
	assert.False(t, ok)
	assert.Equal(t, 0, ks.Len())
}

func TestHashCreatesAndDeletesWhenEmpty(t *testing.T) {
	ks := keyspace.New(256)
	h, wt := ks.HashForWrite("h")
	require.False(t, wt)
	h.Set("f", "v")

	assert.True(t, ks.Exists("h"))
	h.Del([]string{"f"})
	ks.DelEmptyHash("h")
	assert.False(t, ks.Exists("h"))
}

func TestSetStoreEmptyDeletesDestination(t *testing.T) {
	ks := keyspace.New(256)
	s, _ := ks.SetForWrite("dest")
	s.Add("1")
	s.Remove("1")

	empty, _, _ := ks.Set("dest")
	ks.StoreSet("dest", empty)
	assert.False(t, ks.Exists("dest"))
}

func TestCronIsNoOpAfterEagerExpiry(t *testing.T) {
	ks := keyspace.New(256)
	for i := 0; i < 10; i++ {
		ks.SetString("k", []byte("v"), false)
	}
	ks.SetString("expired", []byte("v"), false)
	ks.ExpireAt("expired", time.Now().Add(-time.Second).UnixMilli())

	// ExpireAt on a past deadline already deletes eagerly; re-add it bypassing
	// that fast path to exercise the sweep itself via a future-then-rewound
	// deadline is awkward without a clock seam, so assert the eager path
	// instead: the key is already gone, and Cron must be a no-op on it.
	n := ks.Cron(20, 1)
	assert.Equal(t, 0, n)
}

func TestAppendAndStrLen(t *testing.T) {
	ks := keyspace.New(256)
	n, wt := ks.Append("k", []byte("hello"))
	require.False(t, wt)
	assert.Equal(t, int64(5), n)

	n, wt = ks.Append("k", []byte(" world"))
	require.False(t, wt)
	assert.Equal(t, int64(11), n)

	length, wt := ks.StrLen("k")
	require.False(t, wt)
	assert.Equal(t, int64(11), length)
}

func TestGetSet(t *testing.T) {
	ks := keyspace.New(256)
	old, present, wt := ks.GetSet("k", []byte("new"))
	require.False(t, wt)
	assert.False(t, present)
	assert.Nil(t, old)

	old, present, wt = ks.GetSet("k", []byte("newer"))
	require.False(t, wt)
	assert.True(t, present)
	assert.Equal(t, "new", string(old))

	val, _, _ := ks.GetString("k")
	assert.Equal(t, "newer", string(val))
}
