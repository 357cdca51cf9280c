package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golox/pkg/value"
)

func internedString(s string) *value.ObjString {
	return value.NewObjString(s, hashFNV(s))
}

// hashFNV duplicates the VM's string-hash algorithm for test setup only;
// production code always hashes through intern.HashString.
func hashFNV(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func TestSetGet(t *testing.T) {
	tab := New()
	key := internedString("greeting")

	isNew := tab.Set(key, value.Number(1))
	assert.True(t, isNew)

	got, ok := tab.Get(key)
	require.True(t, ok)
	assert.True(t, value.Equal(got, value.Number(1)))

	isNew = tab.Set(key, value.Number(2))
	assert.False(t, isNew, "re-setting an existing key is not a new key")

	got, ok = tab.Get(key)
	require.True(t, ok)
	assert.True(t, value.Equal(got, value.Number(2)))
}

func TestGetMissing(t *testing.T) {
	tab := New()
	_, ok := tab.Get(internedString("nope"))
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	tab := New()
	key := internedString("x")
	tab.Set(key, value.Bool(true))

	assert.True(t, tab.Delete(key))
	_, ok := tab.Get(key)
	assert.False(t, ok, "deleted key must not be found")

	assert.False(t, tab.Delete(key), "deleting twice reports not-present")
}

func TestDeleteThenProbeContinuesPastTombstone(t *testing.T) {
	tab := New()
	// "a" and "i" share a home slot at capacity 8, so "i" is placed one
	// slot past "a" and finding it means probing through a's tombstone.
	a, b := internedString("a"), internedString("i")
	tab.Set(a, value.Number(1))
	tab.Set(b, value.Number(2))

	require.True(t, tab.Delete(a))

	got, ok := tab.Get(b)
	require.True(t, ok, "tombstone left by deleting a must not block lookups of b")
	assert.True(t, value.Equal(got, value.Number(2)))
}

func TestGrowthPreservesAllEntries(t *testing.T) {
	tab := New()
	keys := make([]*value.ObjString, 0, 64)
	for i := 0; i < 64; i++ {
		k := internedString(string(rune('a' + i%26)) + string(rune(i)))
		keys = append(keys, k)
		tab.Set(k, value.Number(float64(i)))
	}

	for i, k := range keys {
		got, ok := tab.Get(k)
		require.True(t, ok)
		assert.True(t, value.Equal(got, value.Number(float64(i))))
	}
	assert.Equal(t, 64, tab.Count())
}

func TestAddAll(t *testing.T) {
	from := New()
	from.Set(internedString("a"), value.Number(1))
	from.Set(internedString("b"), value.Number(2))

	to := New()
	to.AddAll(from)

	got, ok := to.Get(internedString("a"))
	require.True(t, ok)
	assert.True(t, value.Equal(got, value.Number(1)))
}

func TestFindString(t *testing.T) {
	tab := New()
	key := internedString("hello")
	tab.Set(key, value.Nil)

	found := tab.FindString("hello", key.Hash)
	require.NotNil(t, found)
	assert.Same(t, key, found)

	assert.Nil(t, tab.FindString("goodbye", hashFNV("goodbye")))
}
