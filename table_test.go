package flatbuffers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func buildScoreTable(t *testing.T, score int32) []byte {
	t.Helper()
	b := NewBuilder(0)
	name := b.CreateString("ab")
	b.StartObject(2)
	b.PrependStringOffsetSlot(0, name)
	b.PrependInt32Slot(1, score, 0)
	obj := b.EndObject()
	b.Finish(obj)
	return b.FinishedBytes()
}

func TestGetRootTruncatedBuffer(t *testing.T) {
	_, err := GetRootTable([]byte{1, 2}, 0)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrOutOfBounds))

	var derr *DecodeError
	assert.True(t, xerrors.As(err, &derr))
}

func TestGetRootOffsetPastEnd(t *testing.T) {
	// Root offset pointing far outside the buffer.
	_, err := GetRootTable([]byte{0xff, 0xff, 0xff, 0x7f}, 0)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrOutOfBounds))
}

func TestCorruptVtableOffset(t *testing.T) {
	buf := buildScoreTable(t, 42)
	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)

	// Point the table's vtable soffset forward past the buffer start.
	NewRawBuffer(buf).PutSOffsetT(tab.Pos, SOffsetT(len(buf))+100)
	_, err = tab.Offset(fieldVOffset(1))
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrOutOfBounds))

	_, err = tab.GetInt32Slot(fieldVOffset(1), 0)
	require.Error(t, err, "slot getters must propagate vtable corruption")
}

func TestInvalidUTF8String(t *testing.T) {
	buf := buildScoreTable(t, 1)
	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)

	off, err := tab.Offset(fieldVOffset(0))
	require.NoError(t, err)
	strPos, err := tab.Indirect(tab.Pos + UOffsetT(off))
	require.NoError(t, err)

	// Clobber the two string bytes with an invalid sequence.
	buf[strPos+SizeUOffsetT] = 0xff
	buf[strPos+SizeUOffsetT+1] = 0xfe

	_, err = tab.String(tab.Pos + UOffsetT(off))
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrInvalidUTF8))

	// The raw bytes stay reachable for callers that want them anyway.
	raw, err := tab.ByteVector(tab.Pos + UOffsetT(off))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe}, raw)
}

func TestOversizedVectorLength(t *testing.T) {
	b := NewBuilder(0)
	vec := b.CreateByteVector([]byte{1, 2, 3})
	b.StartObject(1)
	b.PrependVectorOffsetSlot(0, vec)
	obj := b.EndObject()
	b.Finish(obj)
	buf := b.FinishedBytes()

	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)
	off, err := tab.Offset(fieldVOffset(0))
	require.NoError(t, err)
	vecPos, err := tab.Indirect(tab.Pos + UOffsetT(off))
	require.NoError(t, err)

	// Inflate the element count beyond the buffer.
	NewRawBuffer(buf).PutUOffsetT(vecPos, 1<<20)
	_, err = tab.ByteVector(tab.Pos + UOffsetT(off))
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrOutOfBounds))
}

func TestSchemaEvolutionReadsDefault(t *testing.T) {
	// A reader compiled against a newer schema asks for a field the old
	// writer never knew about; the short vtable resolves it as absent.
	buf := buildScoreTable(t, 3)
	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)

	newField := fieldVOffset(5)
	off, err := tab.Offset(newField)
	require.NoError(t, err)
	assert.Zero(t, off)
	v, err := tab.GetInt64Slot(newField, -1)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)
}

func TestMutateSlots(t *testing.T) {
	buf := buildScoreTable(t, 42)
	tab, err := GetRootTable(buf, 0)
	require.NoError(t, err)

	ok, err := tab.MutateInt32Slot(fieldVOffset(1), 43)
	require.NoError(t, err)
	require.True(t, ok)
	v, err := tab.GetInt32Slot(fieldVOffset(1), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(43), v)

	// An absent slot has no storage to update.
	ok, err = tab.MutateInt32Slot(fieldVOffset(5), 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetRootAsCapability(t *testing.T) {
	buf := buildScoreTable(t, 9)

	var view scoreView
	require.NoError(t, GetRootAs(buf, 0, &view))
	v, err := view.tab.GetInt32Slot(fieldVOffset(1), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(9), v)
}

// scoreView is the shape of a generated accessor type: a named wrapper that
// takes on a table position via Init.
type scoreView struct {
	tab Table
}

func (v *scoreView) Table() Table { return v.tab }

func (v *scoreView) Init(buf []byte, i UOffsetT) {
	v.tab.Bytes = buf
	v.tab.Pos = i
}
