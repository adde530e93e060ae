package flatbuffers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildKeyedVector writes n tables {key: int32, val: int32} in ascending
// key order (key = 2*i) and finishes a root table whose slot 0 holds the
// vector. It returns the finished buffer and the absolute position of the
// vector's count field.
func buildKeyedVector(t *testing.T, n int) ([]byte, UOffsetT) {
	t.Helper()
	b := NewBuilder(0)
	offs := make([]TableOffset, n)
	for i := 0; i < n; i++ {
		b.StartObject(2)
		b.PrependInt32Slot(0, int32(2*i), 0)
		b.PrependInt32Slot(1, int32(1000+i), 0)
		offs[i] = b.EndObject()
	}
	vec := b.CreateVectorOfTables(offs)
	b.StartObject(1)
	b.PrependVectorOffsetSlot(0, vec)
	root := b.EndObject()
	b.Finish(root)

	buf := b.FinishedBytes()
	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)
	off, err := tab.Offset(fieldVOffset(0))
	require.NoError(t, err)
	require.NotZero(t, off)
	vecPos, err := tab.Indirect(tab.Pos + UOffsetT(off))
	require.NoError(t, err)
	return buf, vecPos
}

// countingCompare wraps a KeyCompare and counts invocations; each
// invocation is one table dereference.
func countingCompare(cmp KeyCompare, n *int) KeyCompare {
	return func(t Table) (int, error) {
		*n++
		return cmp(t)
	}
}

func TestLookupByIntKey(t *testing.T) {
	const n = 64
	buf, vecPos := buildKeyedVector(t, n)

	for i := 0; i < n; i++ {
		comparisons := 0
		tab, ok, err := LookupByKey(buf, vecPos, countingCompare(Int32KeyCompare(fieldVOffset(0), int32(2*i)), &comparisons))
		require.NoError(t, err)
		require.True(t, ok, "key %d", 2*i)
		v, err := tab.GetInt32Slot(fieldVOffset(1), 0)
		require.NoError(t, err)
		assert.Equal(t, int32(1000+i), v)
		assert.LessOrEqual(t, comparisons, 7, "log2(64)+1 bound")
	}
}

func TestLookupAbsentIntKey(t *testing.T) {
	const n = 64
	buf, vecPos := buildKeyedVector(t, n)

	for _, key := range []int32{-1, 1, 63, 127, 1 << 20} {
		comparisons := 0
		_, ok, err := LookupByKey(buf, vecPos, countingCompare(Int32KeyCompare(fieldVOffset(0), key), &comparisons))
		require.NoError(t, err)
		assert.False(t, ok, "key %d", key)
		assert.LessOrEqual(t, comparisons, 7)
	}
}

func TestLookupByStringKey(t *testing.T) {
	// Bytewise order: a shared prefix sorts before its extensions.
	keys := []string{"ab", "abc", "b", "ba"}

	b := NewBuilder(0)
	offs := make([]TableOffset, len(keys))
	for i, k := range keys {
		s := b.CreateString(k)
		b.StartObject(2)
		b.PrependStringOffsetSlot(0, s)
		b.PrependInt32Slot(1, int32(i), 0)
		offs[i] = b.EndObject()
	}
	vec := b.CreateVectorOfTables(offs)
	b.StartObject(1)
	b.PrependVectorOffsetSlot(0, vec)
	root := b.EndObject()
	b.Finish(root)

	buf := b.FinishedBytes()
	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)
	off, err := tab.Offset(fieldVOffset(0))
	require.NoError(t, err)
	vecPos, err := tab.Indirect(tab.Pos + UOffsetT(off))
	require.NoError(t, err)

	for i, k := range keys {
		got, ok, err := LookupByKey(buf, vecPos, StringKeyCompare(fieldVOffset(0), []byte(k)))
		require.NoError(t, err)
		require.True(t, ok, "key %q", k)
		v, err := got.GetInt32Slot(fieldVOffset(1), -1)
		require.NoError(t, err)
		assert.Equal(t, int32(i), v)
	}

	for _, k := range []string{"", "a", "aa", "abcd", "c"} {
		_, ok, err := LookupByKey(buf, vecPos, StringKeyCompare(fieldVOffset(0), []byte(k)))
		require.NoError(t, err)
		assert.False(t, ok, "key %q", k)
	}
}

func TestLookupEmptyVector(t *testing.T) {
	buf, vecPos := buildKeyedVector(t, 0)
	_, ok, err := LookupByKey(buf, vecPos, Int64KeyCompare(fieldVOffset(0), 1))
	require.NoError(t, err)
	assert.False(t, ok)
}
