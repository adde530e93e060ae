package flatbuffers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestRawBufferLittleEndian(t *testing.T) {
	rb := NewRawBuffer(make([]byte, 16))

	rb.PutUint32(0, 0x01020304)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, rb.Data()[:4])
	assert.Equal(t, uint32(0x01020304), rb.Uint32(0))

	rb.PutUint16(4, 0xbeef)
	assert.Equal(t, []byte{0xef, 0xbe}, rb.Data()[4:6])

	rb.PutUint64(8, 0x1122334455667788)
	assert.Equal(t, uint64(0x1122334455667788), rb.Uint64(8))
}

func TestRawBufferScalars(t *testing.T) {
	rb := NewRawBuffer(make([]byte, 32))

	rb.PutInt16(0, -2)
	assert.Equal(t, int16(-2), rb.Int16(0))
	rb.PutInt32(4, -3)
	assert.Equal(t, int32(-3), rb.Int32(4))
	rb.PutInt64(8, -4)
	assert.Equal(t, int64(-4), rb.Int64(8))
	rb.PutFloat32(16, 1.5)
	assert.Equal(t, float32(1.5), rb.Float32(16))
	rb.PutFloat64(24, -2.25)
	assert.Equal(t, float64(-2.25), rb.Float64(24))
	rb.PutBool(20, true)
	assert.True(t, rb.Bool(20))
	rb.PutInt8(21, -5)
	assert.Equal(t, int8(-5), rb.Int8(21))

	rb.PutSOffsetT(0, -12)
	assert.Equal(t, SOffsetT(-12), rb.SOffsetT(0))
	rb.PutUOffsetT(4, 12)
	assert.Equal(t, UOffsetT(12), rb.UOffsetT(4))
	rb.PutVOffsetT(2, 6)
	assert.Equal(t, VOffsetT(6), rb.VOffsetT(2))
}

func TestRawBufferBounds(t *testing.T) {
	rb := NewRawBuffer(make([]byte, 4))

	assert.Panics(t, func() { rb.PutUint32(1, 0) })
	assert.Panics(t, func() { rb.Uint64(0) })
	assert.Panics(t, func() { rb.Byte(4) })
	assert.NotPanics(t, func() { rb.PutUint32(0, 1) })

	err := rb.check(2, SizeUint32)
	require.Error(t, err)
	assert.True(t, xerrors.Is(err, ErrOutOfBounds))
	assert.NoError(t, rb.check(0, SizeUint32))
}

func TestGoAllocatorAlignment(t *testing.T) {
	a := NewGoAllocator()
	for _, size := range []int{0, 1, 63, 64, 4096} {
		buf := a.Allocate(size)
		require.Len(t, buf, size)
		if size > 0 {
			assert.Zero(t, int(addressOf(buf))%allocAlignment)
		}
	}

	buf := a.Allocate(8)
	copy(buf, "12345678")
	grown := a.Reallocate(16, buf)
	require.Len(t, grown, 16)
	assert.Equal(t, []byte("12345678"), grown[:8])
}
